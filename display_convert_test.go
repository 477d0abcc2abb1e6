// display_convert_test.go - Conversion and terminal rendering tests

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func TestConvertToRGBA_BGRA(t *testing.T) {
	src := []byte{
		0x03, 0x02, 0x01, 0xFF, // B G R A
		0x30, 0x20, 0x10, 0x80,
	}
	dst := make([]byte, 8)
	convertToRGBA(src, 2, 1, 8, FormatBGRA8, dst)

	want := []byte{0x01, 0x02, 0x03, 0xFF, 0x10, 0x20, 0x30, 0x80}
	if !bytes.Equal(dst, want) {
		t.Fatalf("converted = % x, want % x", dst, want)
	}
}

func TestConvertToRGBA_ThreeByteFormatsGainOpaqueAlpha(t *testing.T) {
	src := []byte{10, 20, 30}
	dst := make([]byte, 4)

	convertToRGBA(src, 1, 1, 3, FormatRGB8, dst)
	if !bytes.Equal(dst, []byte{10, 20, 30, 255}) {
		t.Fatalf("RGB8 converted = % x", dst)
	}

	convertToRGBA(src, 1, 1, 3, FormatBGR8, dst)
	if !bytes.Equal(dst, []byte{30, 20, 10, 255}) {
		t.Fatalf("BGR8 converted = % x", dst)
	}
}

func TestConvertToRGBA_RGBAPassthrough(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 8)
	convertToRGBA(src, 2, 1, 8, FormatRGBA8, dst)
	if !bytes.Equal(dst, src) {
		t.Fatalf("converted = % x, want passthrough", dst)
	}
}

func TestSnapshotToImage(t *testing.T) {
	s, err := NewPixelSurface(2, 2, FormatBGRA8)
	if err != nil {
		t.Fatalf("NewPixelSurface: %v", err)
	}
	s.Clear([4]byte{200, 100, 50, 255})

	snap := FrameSnapshot{
		Buffer:    append([]byte(nil), s.Bytes...),
		Width:     s.Width,
		Height:    s.Height,
		Stride:    s.Stride,
		Format:    s.Format,
		Timestamp: time.Now(),
	}
	img := snapshotToImage(snap)
	if got := img.RGBAAt(1, 1); got != (color.RGBA{200, 100, 50, 255}) {
		t.Fatalf("image pixel = %v, want {200 100 50 255}", got)
	}
}

func TestEncodeSnapshotPNG_RoundTrip(t *testing.T) {
	s, err := NewPixelSurface(3, 3, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewPixelSurface: %v", err)
	}
	s.Clear([4]byte{0, 0, 255, 255})

	data, err := encodeSnapshotPNG(FrameSnapshot{
		Buffer: s.Bytes,
		Width:  s.Width,
		Height: s.Height,
		Stride: s.Stride,
		Format: s.Format,
	})
	if err != nil {
		t.Fatalf("encodeSnapshotPNG: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	r, g, b, a := decoded.At(1, 1).RGBA()
	if r != 0 || g != 0 || b != 0xFFFF || a != 0xFFFF {
		t.Fatalf("decoded pixel = %d %d %d %d, want pure blue", r, g, b, a)
	}
}

func TestRenderHalfBlocks_ColorPairs(t *testing.T) {
	// Top half red, bottom half blue; at 2 columns by 1 text row each
	// cell pairs a red top pixel with a blue bottom pixel.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.SetRGBA(x, 0, color.RGBA{255, 0, 0, 255})
		img.SetRGBA(x, 1, color.RGBA{0, 0, 255, 255})
	}

	out := string(renderHalfBlocks(img, 2, 1))
	if !bytes.Contains([]byte(out), []byte("\x1b[38;2;255;0;0m")) {
		t.Fatalf("output missing red foreground sequence: %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("\x1b[48;2;0;0;255m")) {
		t.Fatalf("output missing blue background sequence: %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("▀")) {
		t.Fatalf("output missing half-block glyph: %q", out)
	}
	if !bytes.HasSuffix([]byte(out), []byte("\x1b[0m\n")) {
		t.Fatalf("each row must end with a reset: %q", out)
	}
}

func TestRenderHalfBlocks_EmptyGeometry(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if out := renderHalfBlocks(img, 0, 5); out != nil {
		t.Fatal("zero columns must yield no output")
	}
	if out := renderHalfBlocks(img, 5, 0); out != nil {
		t.Fatal("zero rows must yield no output")
	}
}
