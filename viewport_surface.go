// viewport_surface.go - Consumer-facing viewport handle for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ViewportSurface binds a SurfaceExchange and a RefreshSignal together,
// mediates resize, and exposes the current front surface for display.
// One ViewportSurface exists per display surface; the producer side is
// handed an owned ProducerHandle at spawn time, the consumer side a
// ConsumerHandle - there is no ambient or global lookup.
type ViewportSurface struct {
	exchange *SurfaceExchange
	signal   *RefreshSignal

	// generation is the surface size epoch: bumped at the start of every
	// resize transaction so a producer frame in flight across a resize
	// can detect it must be discarded, not merged.
	generation atomic.Uint64

	metrics ViewportMetrics
}

// ProducerHandle is the render thread's whole world: "render, then
// publish, then wake" as one ergonomic unit. Exactly one producer
// thread may use it.
type ProducerHandle struct {
	vp   *ViewportSurface
	back *BackHandle
}

// ConsumerHandle is the display loop's view: front snapshots, refresh
// notification, resize.
type ConsumerHandle struct {
	vp    *ViewportSurface
	front *FrontHandle
}

// NewViewportSurface composes the exchange and signal for a display
// surface of the given initial shape.
func NewViewportSurface(width, height int, format PixelFormat) (*ViewportSurface, *ProducerHandle, *ConsumerHandle, error) {
	ex, back, front, err := NewSurfaceExchange(width, height, format)
	if err != nil {
		return nil, nil, nil, err
	}
	vp := &ViewportSurface{
		exchange: ex,
		signal:   &RefreshSignal{},
	}
	return vp,
		&ProducerHandle{vp: vp, back: back},
		&ConsumerHandle{vp: vp, front: front},
		nil
}

// Generation returns the current size epoch.
func (vp *ViewportSurface) Generation() uint64 {
	return vp.generation.Load()
}

// Metrics returns a copy of the exchange counters.
func (vp *ViewportSurface) Metrics() ViewportMetricsSnapshot {
	return vp.metrics.Snapshot()
}

func (p *ProducerHandle) WithBack(fn func(*PixelSurface)) {
	p.back.WithBack(fn)
}

func (p *ProducerHandle) Swap() {
	p.back.Swap()
	p.vp.metrics.bufferSwaps.Add(1)
}

func (p *ProducerHandle) Notify() {
	p.vp.signal.Notify()
}

func (p *ProducerHandle) Generation() uint64 {
	return p.vp.Generation()
}

// RenderFrame runs one full producer cadence: render into the back
// surface, swap, wake the consumer. A resize that started while the
// frame was being rendered makes the frame stale - it targeted a
// surface of the old shape - so the swap and wake are skipped and the
// frame is counted as dropped. Returns whether the frame was published.
func (p *ProducerHandle) RenderFrame(render func(*PixelSurface)) bool {
	gen := p.vp.Generation()
	p.back.WithBack(render)
	p.vp.metrics.frameCount.Add(1)
	if p.vp.Generation() != gen {
		p.vp.metrics.droppedFrames.Add(1)
		return false
	}
	p.Swap()
	p.Notify()
	return true
}

func (c *ConsumerHandle) WithFront(fn func(*PixelSurface)) {
	c.front.WithFront(fn)
}

// FrontSurfaceSnapshot runs fn with read access to the current front
// surface and the generation it belongs to. A generation older than the
// latest resize is advisory: the pixels remain valid memory, just
// possibly the wrong size for current display geometry.
func (c *ConsumerHandle) FrontSurfaceSnapshot(fn func(surface *PixelSurface, generation uint64)) {
	gen := c.vp.Generation()
	c.front.WithFront(func(s *PixelSurface) {
		fn(s, gen)
	})
}

// Snapshot copies the current front frame out, consuming its dirty
// state. The returned buffer is owned by the caller.
func (c *ConsumerHandle) Snapshot() FrameSnapshot {
	var snap FrameSnapshot
	gen := c.vp.Generation()
	c.vp.exchange.withFrontExclusive(func(s *PixelSurface) {
		snap = FrameSnapshot{
			Buffer:     make([]byte, len(s.Bytes)),
			Width:      s.Width,
			Height:     s.Height,
			Stride:     s.Stride,
			Format:     s.Format,
			Dirty:      s.TakeDirty(),
			Generation: gen,
			Timestamp:  time.Now(),
		}
		copy(snap.Buffer, s.Bytes)
	})
	return snap
}

// Register installs the consumer's wake callback on the refresh signal.
func (c *ConsumerHandle) Register(wake func()) {
	c.vp.signal.Register(wake)
}

// PollAndClear reports and clears a pending refresh.
func (c *ConsumerHandle) PollAndClear() bool {
	return c.vp.signal.PollAndClear()
}

// Generation returns the current size epoch.
func (c *ConsumerHandle) Generation() uint64 {
	return c.vp.Generation()
}

// ValidateGeneration reports ErrStaleGeneration when gen predates the
// latest resize. Advisory: the caller should refetch sizing before the
// next use rather than abandon the frame it already has.
func (c *ConsumerHandle) ValidateGeneration(gen uint64) error {
	current := c.vp.Generation()
	if gen != current {
		return &ViewportError{
			Operation: "generation check",
			Details:   fmt.Sprintf("snapshot generation %d, current %d", gen, current),
			Err:       ErrStaleGeneration,
		}
	}
	return nil
}

// Resize atomically replaces both underlying surfaces with freshly
// sized ones. Consumer-only, with a documented precondition that no
// producer is mid-write: quiesce the render loop first. The generation
// bump happens before the surfaces are reallocated, so a producer frame
// overlapping the transaction always observes the epoch change and
// discards itself.
func (c *ConsumerHandle) Resize(newWidth, newHeight int) error {
	if newWidth <= 0 || newHeight <= 0 {
		return &ViewportError{
			Operation: "resize",
			Details:   fmt.Sprintf("%dx%d", newWidth, newHeight),
			Err:       ErrInvalidDimensions,
		}
	}
	c.vp.generation.Add(1)
	return c.vp.exchange.Resize(newWidth, newHeight)
}

// Shape reports the current surface dimensions and format.
func (c *ConsumerHandle) Shape() (width, height int, format PixelFormat) {
	return c.vp.exchange.Shape()
}

// Metrics returns a copy of the exchange counters.
func (c *ConsumerHandle) Metrics() ViewportMetricsSnapshot {
	return c.vp.Metrics()
}

// countTextureUpdate is called by display backends after an actual
// upload, so skipped (clean) frames are visible in the metrics.
func (c *ConsumerHandle) countTextureUpdate() {
	c.vp.metrics.textureUpdates.Add(1)
}
