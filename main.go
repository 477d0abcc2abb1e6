// main.go - Demo entry point for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func boilerPlate() {
	fmt.Println("Prisma Viewport - double-buffered cross-thread frame exchange")
	fmt.Println("https://github.com/prismaviz/PrismaViewport")
	fmt.Println("License: GPLv3 or later")
}

func parseBackend(name string) (int, error) {
	switch name {
	case "ebiten":
		return DISPLAY_BACKEND_EBITEN, nil
	case "terminal":
		return DISPLAY_BACKEND_TERMINAL, nil
	case "headless":
		return DISPLAY_BACKEND_HEADLESS, nil
	}
	return 0, fmt.Errorf("unknown backend %q (want ebiten, terminal or headless)", name)
}

func parseFormat(name string) (PixelFormat, error) {
	switch name {
	case "rgba8":
		return FormatRGBA8, nil
	case "bgra8":
		return FormatBGRA8, nil
	case "rgb8":
		return FormatRGB8, nil
	case "bgr8":
		return FormatBGR8, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q (want rgba8, bgra8, rgb8 or bgr8)", name)
}

func main() {
	backendFlag := flag.String("backend", "ebiten", "display backend: ebiten, terminal or headless")
	patternFlag := flag.String("pattern", "waves", "demo pattern: waves, spiral, plasma or ripples")
	scriptFlag := flag.String("script", "", "path to a Lua render script (overrides -pattern)")
	formatFlag := flag.String("format", "rgba8", "pixel format: rgba8, bgra8, rgb8 or bgr8")
	widthFlag := flag.Int("width", 640, "viewport width in pixels")
	heightFlag := flag.Int("height", 480, "viewport height in pixels")
	scaleFlag := flag.Int("scale", 1, "integer window scale factor")
	fpsFlag := flag.Int("fps", 60, "producer target frames per second")
	speedFlag := flag.Float64("speed", 2.0, "pattern animation speed")
	flag.Parse()

	boilerPlate()

	backend, err := parseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	format, err := parseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	_, producer, consumer, err := NewViewportSurface(*widthFlag, *heightFlag, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create viewport: %v\n", err)
		os.Exit(1)
	}

	var engine RenderEngine
	if *scriptFlag != "" {
		luaEngine, err := NewLuaEngineFromFile(*scriptFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load render script: %v\n", err)
			os.Exit(1)
		}
		defer luaEngine.Close()
		engine = luaEngine
	} else {
		pattern, ok := ParsePattern(*patternFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown pattern %q (want waves, spiral, plasma or ripples)\n", *patternFlag)
			os.Exit(1)
		}
		waves := NewWavesEngine(pattern)
		waves.SetSpeed(*speedFlag)
		engine = waves
	}

	output, err := NewDisplayOutput(backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create display output: %v\n", err)
		os.Exit(1)
	}
	output.Attach(consumer)
	if err := output.SetDisplayConfig(DisplayConfig{
		Width:       *widthFlag,
		Height:      *heightFlag,
		Scale:       *scaleFlag,
		RefreshRate: 60,
		PixelFormat: format,
		VSync:       true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure display: %v\n", err)
		os.Exit(1)
	}

	// The producer goroutine owns its handle; nothing else touches the
	// back surface while the loop runs.
	loop := NewRenderLoop(producer, engine, *fpsFlag)
	loop.Start()
	if err := output.Start(); err != nil {
		loop.Stop()
		fmt.Fprintf(os.Stderr, "failed to start display: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-output.Done():
	}

	// Teardown order matters: quiesce the producer first, then the
	// display, then let the viewport go.
	loop.Stop()
	if err := output.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "display close: %v\n", err)
	}

	m := consumer.Metrics()
	fmt.Printf("frames %d  swaps %d  uploads %d  dropped %d\n",
		m.FrameCount, m.BufferSwaps, m.TextureUpdates, m.DroppedFrames)
}
