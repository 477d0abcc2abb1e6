// viewport_exchange.go - Double-buffered surface pair with atomic role swap for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"sync"
	"sync/atomic"
)

// SurfaceExchange owns exactly two identically shaped PixelSurfaces and
// an atomic role indicator saying which one is currently front. The
// producer writes the back surface, the consumer reads the front, and
// Swap flips the roles in O(1) without touching pixel bytes.
//
// Each surface carries its own lock, so the steady state never blocks:
// the two sides hold distinct buffers until the next swap reassigns
// them. The only contention window is a consumer still reading the old
// front when the producer reacquires it as back - the producer then
// waits for that read to finish, which is what prevents tearing.
//
// WithBack/WithFront scopes are not reentrant. Calling either from
// inside an active scope on the same exchange deadlocks; that is a
// programming-contract violation, not a runtime condition.
type SurfaceExchange struct {
	front    atomic.Int32 // 0 or 1: index of the current front surface
	surfaces [2]*PixelSurface
	locks    [2]sync.RWMutex
}

// BackHandle grants exclusive producer access to whichever surface is
// currently back. The handle is a stable identity; what it points at
// changes across swaps.
type BackHandle struct {
	ex *SurfaceExchange
}

// FrontHandle grants consumer access to whichever surface is currently
// front.
type FrontHandle struct {
	ex *SurfaceExchange
}

// NewSurfaceExchange allocates both surfaces and returns the exchange
// plus its two capability handles.
func NewSurfaceExchange(width, height int, format PixelFormat) (*SurfaceExchange, *BackHandle, *FrontHandle, error) {
	a, err := NewPixelSurface(width, height, format)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := NewPixelSurface(width, height, format)
	if err != nil {
		return nil, nil, nil, err
	}
	ex := &SurfaceExchange{surfaces: [2]*PixelSurface{a, b}}
	return ex, &BackHandle{ex: ex}, &FrontHandle{ex: ex}, nil
}

// WithBack runs fn with exclusive access to the current back surface.
func (ex *SurfaceExchange) WithBack(fn func(*PixelSurface)) {
	idx := 1 - ex.front.Load()
	ex.locks[idx].Lock()
	defer ex.locks[idx].Unlock()
	fn(ex.surfaces[idx])
}

// WithFront runs fn with shared read access to the current front
// surface. A swap issued while fn runs does not affect it: the surface
// was pinned when the scope began, so the read stays consistent with
// the pre-swap state for the call's duration.
func (ex *SurfaceExchange) WithFront(fn func(*PixelSurface)) {
	idx := ex.front.Load()
	ex.locks[idx].RLock()
	defer ex.locks[idx].RUnlock()
	fn(ex.surfaces[idx])
}

// withFrontExclusive is WithFront with a write lock, for consumer
// operations that mutate surface state (taking the dirty marker).
func (ex *SurfaceExchange) withFrontExclusive(fn func(*PixelSurface)) {
	idx := ex.front.Load()
	ex.locks[idx].Lock()
	defer ex.locks[idx].Unlock()
	fn(ex.surfaces[idx])
}

// Swap atomically flips which surface is front and which is back. No
// pixel data moves. The atomic store pairs with the load in
// WithFront, so a consumer that begins a read after Swap returns is
// guaranteed to observe everything written before it.
func (ex *SurfaceExchange) Swap() {
	ex.front.Store(1 - ex.front.Load())
}

// Resize tears both surfaces down and rebuilds them at the new shape.
// Precondition: both sides are quiescent - no WithBack/WithFront scope
// may be active on the calling thread. The surface locks are held for
// the reallocation so a racing scope on another thread serializes
// against it rather than observing a half-replaced pair.
func (ex *SurfaceExchange) Resize(width, height int) error {
	format := ex.surfaces[0].Format
	a, err := NewPixelSurface(width, height, format)
	if err != nil {
		return err
	}
	b, err := NewPixelSurface(width, height, format)
	if err != nil {
		return err
	}
	ex.locks[0].Lock()
	ex.locks[1].Lock()
	ex.surfaces[0] = a
	ex.surfaces[1] = b
	ex.locks[1].Unlock()
	ex.locks[0].Unlock()
	return nil
}

// Shape reports the current surface dimensions and format.
func (ex *SurfaceExchange) Shape() (width, height int, format PixelFormat) {
	idx := ex.front.Load()
	ex.locks[idx].RLock()
	defer ex.locks[idx].RUnlock()
	s := ex.surfaces[idx]
	return s.Width, s.Height, s.Format
}

func (h *BackHandle) WithBack(fn func(*PixelSurface)) {
	h.ex.WithBack(fn)
}

func (h *BackHandle) Swap() {
	h.ex.Swap()
}

func (h *FrontHandle) WithFront(fn func(*PixelSurface)) {
	h.ex.WithFront(fn)
}
