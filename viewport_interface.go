// viewport_interface.go - Shared viewport types for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"time"
)

// ViewportError provides detailed error context for viewport operations
type ViewportError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *ViewportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("viewport %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("viewport %s failed: %s", e.Operation, e.Details)
}

func (e *ViewportError) Unwrap() error {
	return e.Err
}

// Error kinds callers can test for with errors.Is. No error here is
// user-facing text; callers translate kinds into their own diagnostics.
var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrOutOfBounds       = errors.New("region out of bounds")
	ErrStaleGeneration   = errors.New("stale surface generation")
)

type PixelFormat int

const (
	FormatRGBA8 PixelFormat = iota
	FormatBGRA8
	FormatRGB8
	FormatBGR8
)

// BytesPerPixel returns 4 for the alpha-carrying formats, 3 otherwise.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8, FormatBGRA8:
		return 4
	case FormatRGB8, FormatBGR8:
		return 3
	}
	return 0
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatRGB8:
		return "RGB8"
	case FormatBGR8:
		return "BGR8"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// encodePixel writes color (always given as R,G,B,A) into dst in the
// format's channel order. dst must hold at least BytesPerPixel bytes.
func (f PixelFormat) encodePixel(color [4]byte, dst []byte) {
	switch f {
	case FormatRGBA8:
		dst[0], dst[1], dst[2], dst[3] = color[0], color[1], color[2], color[3]
	case FormatBGRA8:
		dst[0], dst[1], dst[2], dst[3] = color[2], color[1], color[0], color[3]
	case FormatRGB8:
		dst[0], dst[1], dst[2] = color[0], color[1], color[2]
	case FormatBGR8:
		dst[0], dst[1], dst[2] = color[2], color[1], color[0]
	}
}

// decodePixel reads a pixel in the format's channel order and returns it
// as R,G,B,A. Formats without alpha decode with A=255.
func (f PixelFormat) decodePixel(src []byte) [4]byte {
	switch f {
	case FormatRGBA8:
		return [4]byte{src[0], src[1], src[2], src[3]}
	case FormatBGRA8:
		return [4]byte{src[2], src[1], src[0], src[3]}
	case FormatRGB8:
		return [4]byte{src[0], src[1], src[2], 255}
	case FormatBGR8:
		return [4]byte{src[2], src[1], src[0], 255}
	}
	return [4]byte{}
}

// Rect is a pixel-space rectangle. W and H are extents, not corners.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect clips r to the given bounds. The result is empty when the
// rectangles do not overlap.
func (r Rect) Intersect(bounds Rect) Rect {
	x0 := max(r.X, bounds.X)
	y0 := max(r.Y, bounds.Y)
	x1 := min(r.X+r.W, bounds.X+bounds.W)
	y1 := min(r.Y+r.H, bounds.Y+bounds.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.W, other.X+other.W)
	y1 := max(r.Y+r.H, other.Y+other.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// DirtyState tracks what changed on a surface since the consumer last
// acted on it: nothing, everything, or a single accumulated rectangle.
type DirtyState struct {
	Full bool
	Rect Rect // meaningful only when !Full
}

func (d DirtyState) None() bool {
	return !d.Full && d.Rect.Empty()
}

// extend grows the dirty state to cover r. Once the accumulated
// rectangle spans the whole surface it degrades to Full.
func (d DirtyState) extend(r Rect, bounds Rect) DirtyState {
	if d.Full {
		return d
	}
	if r.Empty() {
		return d
	}
	u := d.Rect.Union(r)
	if u.X <= bounds.X && u.Y <= bounds.Y &&
		u.W >= bounds.W && u.H >= bounds.H {
		return DirtyState{Full: true}
	}
	return DirtyState{Rect: u}
}

// FrameSnapshot encapsulates a copied-out frame: the consumer-side unit
// for texture upload, screenshots or clipboard export.
type FrameSnapshot struct {
	Buffer     []byte // Raw pixel data in Format's channel order
	Width      int    // Frame width in pixels
	Height     int    // Frame height in pixels
	Stride     int    // Bytes per row
	Format     PixelFormat
	Dirty      DirtyState // Dirty state taken at snapshot time
	Generation uint64     // Size epoch the snapshot was taken in
	Timestamp  time.Time  // When the snapshot was taken
}

// RenderEngine is the minimal producer contract: given exclusive write
// access to a surface of known shape, fill it and mark what changed.
// Implementations must not retain the surface beyond the call.
type RenderEngine interface {
	Render(surface *PixelSurface)
}
