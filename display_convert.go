// display_convert.go - Pixel format conversion helpers for display backends

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
	"image/png"
)

// convertToRGBA expands a frame in any supported format into tightly
// packed RGBA8 rows. dst must hold width*height*4 bytes. Display
// backends keep one staging buffer and reuse it across frames; the
// core itself never converts (composition and color conversion are the
// collaborators' job).
func convertToRGBA(buf []byte, width, height, stride int, format PixelFormat, dst []byte) {
	for y := 0; y < height; y++ {
		src := buf[y*stride:]
		out := dst[y*width*4:]
		switch format {
		case FormatRGBA8:
			copy(out[:width*4], src[:width*4])
		case FormatBGRA8:
			for x := 0; x < width; x++ {
				s := src[x*4 : x*4+4]
				d := out[x*4 : x*4+4]
				d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
			}
		case FormatRGB8:
			for x := 0; x < width; x++ {
				s := src[x*3 : x*3+3]
				d := out[x*4 : x*4+4]
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 255
			}
		case FormatBGR8:
			for x := 0; x < width; x++ {
				s := src[x*3 : x*3+3]
				d := out[x*4 : x*4+4]
				d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 255
			}
		}
	}
}

// snapshotToImage turns a copied-out frame into an image.RGBA, the
// common currency for scaling, screenshots and clipboard export.
func snapshotToImage(snap FrameSnapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, snap.Width, snap.Height))
	convertToRGBA(snap.Buffer, snap.Width, snap.Height, snap.Stride, snap.Format, img.Pix)
	return img
}

// encodeSnapshotPNG renders a frame snapshot to PNG bytes.
func encodeSnapshotPNG(snap FrameSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, snapshotToImage(snap)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
