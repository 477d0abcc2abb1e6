// render_engine_waves.go - Animated pattern render engine for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"math"
	"time"
)

type PatternType int

const (
	PatternWaves PatternType = iota
	PatternSpiral
	PatternPlasma
	PatternRipples
)

func ParsePattern(name string) (PatternType, bool) {
	switch name {
	case "waves":
		return PatternWaves, true
	case "spiral":
		return PatternSpiral, true
	case "plasma":
		return PatternPlasma, true
	case "ripples":
		return PatternRipples, true
	}
	return PatternWaves, false
}

// WavesEngine fills the back surface with a time-animated color
// pattern. It writes through the surface's raw bytes in the surface's
// own channel order, so every supported pixel format renders without a
// conversion pass.
type WavesEngine struct {
	pattern    PatternType
	speed      float64
	start      time.Time
	frameCount uint64
}

func NewWavesEngine(pattern PatternType) *WavesEngine {
	return &WavesEngine{
		pattern: pattern,
		speed:   2.0,
		start:   time.Now(),
	}
}

// SetSpeed clamps to a sane animation range.
func (we *WavesEngine) SetSpeed(speed float64) {
	we.speed = math.Min(math.Max(speed, 0.1), 10.0)
}

func (we *WavesEngine) FrameCount() uint64 {
	return we.frameCount
}

func (we *WavesEngine) Render(s *PixelSurface) {
	we.frameCount++
	t := time.Since(we.start).Seconds() * we.speed

	bpp := s.Format.BytesPerPixel()
	for y := 0; y < s.Height; y++ {
		yn := float64(y) / float64(s.Height)
		row := s.Bytes[y*s.Stride:]
		for x := 0; x < s.Width; x++ {
			xn := float64(x) / float64(s.Width)

			var c [4]byte
			switch we.pattern {
			case PatternWaves:
				c = wavesPattern(xn, yn, t)
			case PatternSpiral:
				c = spiralPattern(xn, yn, t)
			case PatternPlasma:
				c = plasmaPattern(xn, yn, t)
			case PatternRipples:
				c = ripplesPattern(xn, yn, t)
			}
			s.Format.encodePixel(c, row[x*bpp:])
		}
	}
	s.MarkDirty(nil)
}

func wavesPattern(x, y, t float64) [4]byte {
	wave1 := math.Sin(x*8.0+t*2.0)*0.5 + 0.5
	wave2 := math.Sin(y*6.0+t*1.5)*0.5 + 0.5
	return hsvToRGBA((wave1+wave2)*0.5*360.0, 0.8, 0.9)
}

func spiralPattern(x, y, t float64) [4]byte {
	dx := x - 0.5
	dy := y - 0.5
	angle := math.Atan2(dy, dx)
	dist := math.Sqrt(dx*dx + dy*dy)
	hue := math.Mod((angle/math.Pi+1.0)*180.0+dist*720.0-t*120.0, 360.0)
	if hue < 0 {
		hue += 360.0
	}
	return hsvToRGBA(hue, 0.9, 1.0-dist*0.8)
}

func plasmaPattern(x, y, t float64) [4]byte {
	v := math.Sin(x*10.0+t) +
		math.Sin(y*10.0+t*1.3) +
		math.Sin((x+y)*10.0+t*0.7) +
		math.Sin(math.Sqrt(x*x+y*y)*20.0+t*1.1)
	return hsvToRGBA(math.Mod((v+4.0)/8.0*360.0, 360.0), 0.85, 0.95)
}

func ripplesPattern(x, y, t float64) [4]byte {
	dx := x - 0.5
	dy := y - 0.5
	dist := math.Sqrt(dx*dx + dy*dy)
	ripple := math.Sin(dist*40.0-t*4.0)*0.5 + 0.5
	return hsvToRGBA(ripple*260.0+t*20.0, 0.75, 0.4+ripple*0.6)
}

// hsvToRGBA converts hue [0,360), saturation and value [0,1] to an
// opaque R,G,B,A quad.
func hsvToRGBA(h, s, v float64) [4]byte {
	h = math.Mod(h, 360.0)
	if h < 0 {
		h += 360.0
	}
	c := v * s
	x := c * (1.0 - math.Abs(math.Mod(h/60.0, 2.0)-1.0))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return [4]byte{
		byte((r + m) * 255.0),
		byte((g + m) * 255.0),
		byte((b + m) * 255.0),
		255,
	}
}
