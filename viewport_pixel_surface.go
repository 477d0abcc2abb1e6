// viewport_pixel_surface.go - Owned pixel buffer with dirty tracking for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import "fmt"

// PixelSurface is a fixed-shape byte buffer plus format metadata and a
// dirty-region marker. Pure data: all cross-thread discipline lives in
// SurfaceExchange.
type PixelSurface struct {
	Width  int
	Height int
	Format PixelFormat
	Stride int    // bytes per row, >= Width * BytesPerPixel
	Bytes  []byte // len(Bytes) == Stride * Height, exclusively owned

	dirty DirtyState
}

// NewPixelSurface allocates a zero-filled surface. Rows are packed with
// no padding; Stride is retained separately so callers that blit rows
// never assume Width*bpp.
func NewPixelSurface(width, height int, format PixelFormat) (*PixelSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, &ViewportError{
			Operation: "surface creation",
			Details:   fmt.Sprintf("%dx%d", width, height),
			Err:       ErrInvalidDimensions,
		}
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, &ViewportError{
			Operation: "surface creation",
			Details:   fmt.Sprintf("unknown pixel format %d", int(format)),
			Err:       ErrInvalidDimensions,
		}
	}
	stride := width * bpp
	return &PixelSurface{
		Width:  width,
		Height: height,
		Format: format,
		Stride: stride,
		Bytes:  make([]byte, stride*height),
	}, nil
}

func (s *PixelSurface) bounds() Rect {
	return Rect{W: s.Width, H: s.Height}
}

// Clear fills every pixel with the given color (given as R,G,B,A and
// stored in the surface's channel order) and marks the whole frame dirty.
func (s *PixelSurface) Clear(color [4]byte) {
	bpp := s.Format.BytesPerPixel()
	var px [4]byte
	s.Format.encodePixel(color, px[:])
	for y := 0; y < s.Height; y++ {
		row := s.Bytes[y*s.Stride : y*s.Stride+s.Width*bpp]
		for x := 0; x < len(row); x += bpp {
			copy(row[x:x+bpp], px[:bpp])
		}
	}
	s.dirty = DirtyState{Full: true}
}

// SetPixel writes one pixel; out-of-bounds coordinates are ignored.
func (s *PixelSurface) SetPixel(x, y int, color [4]byte) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return
	}
	off := y*s.Stride + x*s.Format.BytesPerPixel()
	s.Format.encodePixel(color, s.Bytes[off:])
	s.dirty = s.dirty.extend(Rect{X: x, Y: y, W: 1, H: 1}, s.bounds())
}

// PixelAt reads one pixel back as R,G,B,A. Out-of-bounds reads return
// transparent black.
func (s *PixelSurface) PixelAt(x, y int) [4]byte {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return [4]byte{}
	}
	off := y*s.Stride + x*s.Format.BytesPerPixel()
	return s.Format.decodePixel(s.Bytes[off:])
}

// WriteRegion copies caller-supplied pixel data (tightly packed rows in
// the surface's own format) into the given rectangle. Rectangles
// partially outside the surface are clipped to the overlap; a rectangle
// with no overlap at all reports ErrOutOfBounds and leaves the surface
// untouched. The dirty state grows to cover at least the written area.
func (s *PixelSurface) WriteRegion(x, y, w, h int, pixels []byte) error {
	if w <= 0 || h <= 0 {
		return &ViewportError{
			Operation: "region write",
			Details:   fmt.Sprintf("empty rectangle %dx%d", w, h),
			Err:       ErrInvalidDimensions,
		}
	}
	bpp := s.Format.BytesPerPixel()
	if len(pixels) < w*h*bpp {
		return &ViewportError{
			Operation: "region write",
			Details:   fmt.Sprintf("pixel data holds %d bytes, rectangle needs %d", len(pixels), w*h*bpp),
			Err:       ErrInvalidDimensions,
		}
	}
	src := Rect{X: x, Y: y, W: w, H: h}
	clipped := src.Intersect(s.bounds())
	if clipped.Empty() {
		return &ViewportError{
			Operation: "region write",
			Details:   fmt.Sprintf("rectangle (%d,%d %dx%d) outside %dx%d surface", x, y, w, h, s.Width, s.Height),
			Err:       ErrOutOfBounds,
		}
	}

	srcRowOff := (clipped.Y - y) * w * bpp
	srcColOff := (clipped.X - x) * bpp
	for row := 0; row < clipped.H; row++ {
		dst := (clipped.Y+row)*s.Stride + clipped.X*bpp
		from := srcRowOff + row*w*bpp + srcColOff
		copy(s.Bytes[dst:dst+clipped.W*bpp], pixels[from:from+clipped.W*bpp])
	}
	s.dirty = s.dirty.extend(clipped, s.bounds())
	return nil
}

// MarkDirty records that the given region changed through raw Bytes
// access. A nil region means the whole frame.
func (s *PixelSurface) MarkDirty(region *Rect) {
	if region == nil {
		s.dirty = DirtyState{Full: true}
		return
	}
	clipped := region.Intersect(s.bounds())
	s.dirty = s.dirty.extend(clipped, s.bounds())
}

// TakeDirty returns the accumulated dirty state and resets it to none.
// Called by the consumer after it has copied pixels out, e.g. to limit
// a texture upload to the changed sub-rectangle.
func (s *PixelSurface) TakeDirty() DirtyState {
	d := s.dirty
	s.dirty = DirtyState{}
	return d
}

// Dirty reports the accumulated dirty state without consuming it.
func (s *PixelSurface) Dirty() DirtyState {
	return s.dirty
}
