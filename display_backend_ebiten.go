//go:build !headless

// display_backend_ebiten.go - Ebiten windowed display backend for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

// EbitenOutput displays the front surface in a window. Each Draw call
// checks the refresh signal; when a new frame was published it copies
// the front snapshot into an RGBA staging buffer and uploads it to the
// window texture. Clean frames skip the upload entirely.
type EbitenOutput struct {
	running     bool
	window      *ebiten.Image
	width       int
	height      int
	scale       int
	windowedW   int
	windowedH   int
	fullscreen  bool
	format      PixelFormat
	staging     []byte
	consumer    *ConsumerHandle
	mu          sync.RWMutex
	frameCount  uint64
	refreshRate int
	refreshChan chan struct{}
	vsyncChan   chan struct{}
	done        chan struct{}

	lastGeneration uint64
	havePixels     bool

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool
}

func NewEbitenOutput() (DisplayOutput, error) {
	return &EbitenOutput{
		width:         640,
		height:        480,
		scale:         1,
		windowedW:     640,
		windowedH:     480,
		format:        FormatRGBA8,
		staging:       make([]byte, 640*480*4),
		refreshRate:   60,
		refreshChan:   make(chan struct{}, 1),
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
	}, nil
}

func (eo *EbitenOutput) Attach(consumer *ConsumerHandle) {
	eo.mu.Lock()
	eo.consumer = consumer
	eo.mu.Unlock()
	// The wake runs on the producer thread and must not block: a full
	// channel just means a refresh is already queued.
	consumer.Register(func() {
		select {
		case eo.refreshChan <- struct{}{}:
		default:
		}
	})
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.mu.Lock()
	eo.done = make(chan struct{})
	eo.mu.Unlock()
	eo.running = true
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle("Prisma Viewport")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		defer func() {
			eo.running = false
			eo.mu.RLock()
			done := eo.done
			eo.mu.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil && err != ebiten.Termination {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	eo.mu.RLock()
	done := eo.done
	eo.mu.RUnlock()
	return done
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.mu.Lock()
	width := config.Width
	height := config.Height
	if width <= 0 {
		width = eo.width
	}
	if height <= 0 {
		height = eo.height
	}
	eo.width = width
	eo.height = height
	eo.format = config.PixelFormat
	eo.scale = clampScale(config.Scale)
	if config.RefreshRate > 0 {
		eo.refreshRate = config.RefreshRate
	}

	newSize := eo.width * eo.height * 4
	if len(eo.staging) != newSize {
		eo.staging = make([]byte, newSize)
	}
	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	eo.fullscreen = config.Fullscreen
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	eo.havePixels = false
	consumer := eo.consumer
	eo.mu.Unlock()

	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	}

	// Display geometry drives the viewport shape: this is the resize
	// path of the exchange. The producer loop must be quiesced by the
	// caller when shrinking/growing a live viewport.
	if consumer != nil {
		if w, h, _ := consumer.Shape(); w != width || h != height {
			return consumer.Resize(width, height)
		}
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return DisplayConfig{
		Width:       eo.width,
		Height:      eo.height,
		Scale:       eo.scale,
		PixelFormat: eo.format,
		RefreshRate: eo.refreshRate,
		VSync:       true,
		Fullscreen:  eo.fullscreen,
	}
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	return eo.frameCount
}

func (eo *EbitenOutput) GetRefreshRate() int {
	return eo.refreshRate
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !eo.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.mu.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
		}
		eo.mu.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.mu.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.mu.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF8) {
		eo.copyScreenshotToClipboard()
	}
	return nil
}

// copyScreenshotToClipboard exports the current front frame as PNG to
// the system clipboard.
func (eo *EbitenOutput) copyScreenshotToClipboard() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	eo.mu.RLock()
	consumer := eo.consumer
	eo.mu.RUnlock()
	if !eo.clipboardOK || consumer == nil {
		return
	}
	snap := consumer.Snapshot()
	pngBytes, err := encodeSnapshotPNG(snap)
	if err != nil {
		fmt.Printf("screenshot encode failed: %v\n", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, pngBytes)
}

// pullFrame uploads the latest published frame, if any, into the
// window texture.
func (eo *EbitenOutput) pullFrame() {
	eo.mu.RLock()
	consumer := eo.consumer
	eo.mu.RUnlock()
	if consumer == nil {
		return
	}

	pending := false
	select {
	case <-eo.refreshChan:
		pending = true
	default:
	}
	if !pending && !consumer.PollAndClear() {
		return
	}

	snap := consumer.Snapshot()
	if snap.Width <= 0 || snap.Height <= 0 {
		return
	}

	eo.mu.Lock()
	defer eo.mu.Unlock()
	resized := snap.Generation != eo.lastGeneration ||
		snap.Width != eo.width || snap.Height != eo.height
	if resized {
		eo.lastGeneration = snap.Generation
		eo.width = snap.Width
		eo.height = snap.Height
		if len(eo.staging) != snap.Width*snap.Height*4 {
			eo.staging = make([]byte, snap.Width*snap.Height*4)
		}
		if eo.window != nil {
			eo.window.Dispose()
			eo.window = nil
		}
		eo.havePixels = false
	}
	if snap.Dirty.None() && eo.havePixels {
		return // nothing changed since the last upload
	}

	convertToRGBA(snap.Buffer, snap.Width, snap.Height, snap.Stride, snap.Format, eo.staging)
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}
	eo.window.WritePixels(eo.staging)
	eo.havePixels = true
	consumer.countTextureUpdate()
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	eo.pullFrame()

	eo.mu.RLock()
	window := eo.window
	showStatusBar := eo.showStatusBar
	eo.mu.RUnlock()

	if window != nil {
		screen.DrawImage(window, nil)
	}
	if showStatusBar {
		eo.drawStatusBar(screen)
	}

	eo.frameCount++
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}

func (eo *EbitenOutput) drawStatusBar(screen *ebiten.Image) {
	eo.mu.RLock()
	consumer := eo.consumer
	width := eo.width
	height := eo.height
	format := eo.format
	eo.mu.RUnlock()
	if consumer == nil {
		return
	}
	m := consumer.Metrics()

	barHeight := 18
	if barHeight >= height {
		return
	}
	y := height - barHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(width), float64(barHeight), color.RGBA{0, 0, 0, 180})

	face := basicfont.Face7x13
	line := fmt.Sprintf("%dx%d %s  fps %0.1f  frames %d  swaps %d  uploads %d  dropped %d  gen %d",
		width, height, format,
		ebiten.CurrentFPS(),
		m.FrameCount, m.BufferSwaps, m.TextureUpdates, m.DroppedFrames,
		consumer.Generation())
	text.Draw(screen, line, face, 6, y+13, color.RGBA{190, 190, 190, 255})

	legend := "F8 Screenshot  F11 Fullscreen  F12 Status Bar"
	legendW := text.BoundString(face, legend).Dx()
	legendX := max(width-legendW-6, 6)
	if legendX > text.BoundString(face, line).Dx()+20 {
		text.Draw(screen, legend, face, legendX, y+13, color.RGBA{160, 160, 160, 255})
	}
}
