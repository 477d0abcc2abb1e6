// viewport_render_loop_test.go - Producer loop tests for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"testing"
	"time"
)

func TestRenderLoop_PublishesFrames(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(16, 16, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}

	loop := NewRenderLoop(producer, NewWavesEngine(PatternWaves), 240)
	loop.Start()
	defer loop.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return consumer.Metrics().BufferSwaps >= 3
	})
	if !consumer.PollAndClear() {
		t.Fatal("published frames must leave a pending refresh")
	}
}

func TestRenderLoop_StopQuiesces(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(8, 8, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}

	loop := NewRenderLoop(producer, NewWavesEngine(PatternPlasma), 240)
	loop.Start()
	waitFor(t, 2*time.Second, func() bool {
		return consumer.Metrics().FrameCount >= 1
	})
	loop.Stop()

	// After Stop returns no producer write is in flight; the counters
	// must hold still and a resize is safe.
	count := consumer.Metrics().FrameCount
	time.Sleep(50 * time.Millisecond)
	if consumer.Metrics().FrameCount != count {
		t.Fatal("frames rendered after Stop returned")
	}
	if err := consumer.Resize(32, 32); err != nil {
		t.Fatalf("resize after quiesce: %v", err)
	}

	loop.Stop() // second Stop is a no-op
}
