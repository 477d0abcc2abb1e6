// render_engine_test.go - Render engine test suite for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"strings"
	"testing"
)

func TestParsePattern(t *testing.T) {
	cases := map[string]PatternType{
		"waves":   PatternWaves,
		"spiral":  PatternSpiral,
		"plasma":  PatternPlasma,
		"ripples": PatternRipples,
	}
	for name, want := range cases {
		got, ok := ParsePattern(name)
		if !ok || got != want {
			t.Errorf("ParsePattern(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParsePattern("mandelbrot"); ok {
		t.Error("unknown pattern name must not parse")
	}
}

func TestWavesEngine_FillsSurfaceAndMarksDirty(t *testing.T) {
	for _, format := range []PixelFormat{FormatRGBA8, FormatBGRA8, FormatRGB8, FormatBGR8} {
		s, err := NewPixelSurface(16, 16, format)
		if err != nil {
			t.Fatalf("NewPixelSurface(%v): %v", format, err)
		}
		engine := NewWavesEngine(PatternWaves)
		engine.Render(s)

		if !s.Dirty().Full {
			t.Errorf("%v: render must mark the full frame dirty", format)
		}
		if engine.FrameCount() != 1 {
			t.Errorf("%v: frame count = %d, want 1", format, engine.FrameCount())
		}

		nonZero := false
		for _, b := range s.Bytes {
			if b != 0 {
				nonZero = true
				break
			}
		}
		if !nonZero {
			t.Errorf("%v: render left the surface black", format)
		}
	}
}

func TestWavesEngine_OpaqueOutput(t *testing.T) {
	s, err := NewPixelSurface(8, 8, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewPixelSurface: %v", err)
	}
	engine := NewWavesEngine(PatternPlasma)
	engine.Render(s)

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if c := s.PixelAt(x, y); c[3] != 255 {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, y, c[3])
			}
		}
	}
}

func TestWavesEngine_SetSpeedClamps(t *testing.T) {
	engine := NewWavesEngine(PatternRipples)
	engine.SetSpeed(100.0)
	if engine.speed != 10.0 {
		t.Fatalf("speed = %v, want clamp to 10.0", engine.speed)
	}
	engine.SetSpeed(0.0)
	if engine.speed != 0.1 {
		t.Fatalf("speed = %v, want clamp to 0.1", engine.speed)
	}
}

func TestHSVToRGBA(t *testing.T) {
	cases := []struct {
		h, s, v float64
		want    [4]byte
	}{
		{0, 1, 1, [4]byte{255, 0, 0, 255}},
		{120, 1, 1, [4]byte{0, 255, 0, 255}},
		{240, 1, 1, [4]byte{0, 0, 255, 255}},
		{0, 0, 0, [4]byte{0, 0, 0, 255}},
		{0, 0, 1, [4]byte{255, 255, 255, 255}},
	}
	for _, tc := range cases {
		if got := hsvToRGBA(tc.h, tc.s, tc.v); got != tc.want {
			t.Errorf("hsvToRGBA(%v,%v,%v) = %v, want %v", tc.h, tc.s, tc.v, got, tc.want)
		}
	}
}

func TestLuaEngine_RendersThroughSurfaceAPI(t *testing.T) {
	const script = `
function render(width, height, t)
	clear(0, 0, 0)
	set_pixel(1, 1, 255, 0, 0)
	fill_rect(2, 0, 2, 2, 0, 255, 0, 128)
end
`
	engine, err := NewLuaEngine(script)
	if err != nil {
		t.Fatalf("NewLuaEngine: %v", err)
	}
	defer engine.Close()

	s, err := NewPixelSurface(4, 4, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewPixelSurface: %v", err)
	}
	engine.Render(s)

	if got := s.PixelAt(1, 1); got != ([4]byte{255, 0, 0, 255}) {
		t.Fatalf("set_pixel result = %v, want opaque red", got)
	}
	if got := s.PixelAt(3, 1); got != ([4]byte{0, 255, 0, 128}) {
		t.Fatalf("fill_rect result = %v, want half-transparent green", got)
	}
	if got := s.PixelAt(0, 3); got != ([4]byte{0, 0, 0, 255}) {
		t.Fatalf("cleared pixel = %v, want opaque black", got)
	}
	if s.Dirty().None() {
		t.Fatal("script drawing must leave dirty state behind")
	}
}

func TestLuaEngine_ColorClamping(t *testing.T) {
	const script = `
function render(width, height, t)
	set_pixel(0, 0, 999, -5, 128)
end
`
	engine, err := NewLuaEngine(script)
	if err != nil {
		t.Fatalf("NewLuaEngine: %v", err)
	}
	defer engine.Close()

	s, _ := NewPixelSurface(2, 2, FormatRGBA8)
	engine.Render(s)
	if got := s.PixelAt(0, 0); got != ([4]byte{255, 0, 128, 255}) {
		t.Fatalf("clamped color = %v, want {255 0 128 255}", got)
	}
}

func TestLuaEngine_RejectsBadScripts(t *testing.T) {
	if _, err := NewLuaEngine("this is not lua"); err == nil {
		t.Fatal("syntax errors must fail engine construction")
	}
	if _, err := NewLuaEngine("x = 1"); err == nil {
		t.Fatal("a script without a render function must fail construction")
	}
	_, err := NewLuaEngine(`render = "not a function"`)
	if err == nil || !strings.Contains(err.Error(), "render") {
		t.Fatalf("non-function render global must fail construction, got %v", err)
	}
}
