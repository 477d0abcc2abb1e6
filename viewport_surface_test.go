// viewport_surface_test.go - Viewport handle test suite for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"errors"
	"runtime"
	"testing"
)

// TestViewport_ProduceConsumeCycle walks two full frames through the
// handle pair: red published and observed, then green published and
// observed, with the refresh flag pending exactly when a frame is.
func TestViewport_ProduceConsumeCycle(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}

	red := [4]byte{255, 0, 0, 255}
	green := [4]byte{0, 255, 0, 255}

	if !producer.RenderFrame(func(s *PixelSurface) { s.Clear(red) }) {
		t.Fatal("first frame must publish")
	}
	if !consumer.PollAndClear() {
		t.Fatal("refresh must be pending after publish")
	}
	consumer.WithFront(func(s *PixelSurface) {
		if got := s.PixelAt(2, 2); got != red {
			t.Fatalf("front pixel = %v, want red", got)
		}
	})

	if !producer.RenderFrame(func(s *PixelSurface) { s.Clear(green) }) {
		t.Fatal("second frame must publish")
	}
	if !consumer.PollAndClear() {
		t.Fatal("refresh must be pending after second publish")
	}
	consumer.WithFront(func(s *PixelSurface) {
		if got := s.PixelAt(0, 3); got != green {
			t.Fatalf("front pixel = %v, want green", got)
		}
	})

	if consumer.PollAndClear() {
		t.Fatal("no third frame was published, nothing may be pending")
	}
}

func TestViewport_SnapshotCopiesAndConsumesDirty(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(8, 4, FormatBGRA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}
	producer.RenderFrame(func(s *PixelSurface) {
		s.Clear([4]byte{10, 20, 30, 255})
	})

	snap := consumer.Snapshot()
	if snap.Width != 8 || snap.Height != 4 {
		t.Fatalf("snapshot shape %dx%d, want 8x4", snap.Width, snap.Height)
	}
	if snap.Format != FormatBGRA8 {
		t.Fatalf("snapshot format %v, want BGRA8", snap.Format)
	}
	if snap.Dirty.None() {
		t.Fatal("first snapshot after a full clear must carry dirty state")
	}
	if !snap.Dirty.Full {
		t.Fatal("clear marks the whole frame dirty")
	}

	// The copy must be detached from the live surface.
	snap.Buffer[0] = 99
	consumer.WithFront(func(s *PixelSurface) {
		if s.Bytes[0] == 99 {
			t.Fatal("snapshot buffer aliases the live front surface")
		}
	})

	again := consumer.Snapshot()
	if !again.Dirty.None() {
		t.Fatal("dirty state must be consumed by the first snapshot")
	}
}

func TestViewport_ResizeBumpsGeneration(t *testing.T) {
	_, _, consumer, err := NewViewportSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}

	gen := consumer.Generation()
	if err := consumer.ValidateGeneration(gen); err != nil {
		t.Fatalf("current generation must validate: %v", err)
	}

	if err := consumer.Resize(16, 8); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if consumer.Generation() != gen+1 {
		t.Fatalf("generation = %d after resize, want %d", consumer.Generation(), gen+1)
	}
	if err := consumer.ValidateGeneration(gen); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("pre-resize generation must be stale, got %v", err)
	}

	w, h, _ := consumer.Shape()
	if w != 16 || h != 8 {
		t.Fatalf("shape after resize %dx%d, want 16x8", w, h)
	}
}

func TestViewport_ResizeInvalidDimensions(t *testing.T) {
	_, _, consumer, err := NewViewportSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}
	gen := consumer.Generation()
	if err := consumer.Resize(0, 8); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("Resize(0,8) = %v, want ErrInvalidDimensions", err)
	}
	if consumer.Generation() != gen {
		t.Fatal("rejected resize must not bump the generation")
	}
}

// TestViewport_RenderFrameDiscardsAcrossResize drives a resize from
// inside the render callback, so the frame deterministically overlaps
// the resize transaction. The generation bump precedes the surface
// swap-out, so the producer must observe the new epoch, skip the swap
// and wake, and count the frame as dropped.
func TestViewport_RenderFrameDiscardsAcrossResize(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}

	published := producer.RenderFrame(func(s *PixelSurface) {
		s.Clear([4]byte{255, 0, 0, 255})
		// Resize only bumps the epoch before it touches the surface
		// locks; calling it here models a resize landing mid-frame.
		go func() {
			_ = consumer.Resize(8, 8)
		}()
		for producer.Generation() == 0 {
			runtime.Gosched()
		}
	})
	if published {
		t.Fatal("a frame overlapping a resize must be discarded")
	}
	if consumer.PollAndClear() {
		t.Fatal("a discarded frame must not wake the consumer")
	}

	m := consumer.Metrics()
	if m.DroppedFrames != 1 {
		t.Fatalf("dropped frames = %d, want 1", m.DroppedFrames)
	}
	if m.BufferSwaps != 0 {
		t.Fatalf("buffer swaps = %d, want 0", m.BufferSwaps)
	}
	if m.FrameCount != 1 {
		t.Fatalf("frame count = %d, want 1", m.FrameCount)
	}
}

func TestViewport_MetricsCountPublishedFrames(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}
	for i := 0; i < 3; i++ {
		producer.RenderFrame(func(s *PixelSurface) {
			s.Clear([4]byte{byte(i), 0, 0, 255})
		})
	}
	m := consumer.Metrics()
	if m.FrameCount != 3 || m.BufferSwaps != 3 || m.DroppedFrames != 0 {
		t.Fatalf("metrics = %+v, want 3 frames, 3 swaps, 0 dropped", m)
	}
}

func TestViewport_SnapshotGenerationTracksResize(t *testing.T) {
	_, producer, consumer, err := NewViewportSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewViewportSurface: %v", err)
	}
	producer.RenderFrame(func(s *PixelSurface) {
		s.Clear([4]byte{1, 2, 3, 255})
	})
	before := consumer.Snapshot()

	if err := consumer.Resize(8, 8); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := consumer.ValidateGeneration(before.Generation); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("pre-resize snapshot generation must be stale, got %v", err)
	}

	after := consumer.Snapshot()
	if after.Generation != consumer.Generation() {
		t.Fatal("post-resize snapshot must carry the new generation")
	}
	if after.Width != 8 || after.Height != 8 {
		t.Fatalf("post-resize snapshot shape %dx%d, want 8x8", after.Width, after.Height)
	}
}
