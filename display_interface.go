// display_interface.go - Display backend interface for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import "fmt"

// DisplayConfig contains backend-independent display configuration
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int // Integer scaling factor for output
	RefreshRate int // Target refresh rate in Hz
	PixelFormat PixelFormat
	VSync       bool // Whether to sync uploads to display refresh
	Fullscreen  bool
}

// DisplayOutput defines the minimal interface display backends must
// implement. A backend is the consumer side of one ViewportSurface: it
// attaches the ConsumerHandle, then pulls front snapshots on its own
// cadence (or when woken) and pushes them at the screen.
type DisplayOutput interface {
	// Lifecycle management
	Start() error
	Stop() error
	Close() error
	IsStarted() bool
	Done() <-chan struct{}

	// Viewport binding - must happen before Start
	Attach(consumer *ConsumerHandle)

	// Core display operations
	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig

	// Timing and statistics
	GetFrameCount() uint64
	GetRefreshRate() int
}

// Predefined display backend types
const (
	DISPLAY_BACKEND_EBITEN   = iota // Windowed Ebiten backend
	DISPLAY_BACKEND_TERMINAL        // ANSI truecolor terminal preview
	DISPLAY_BACKEND_HEADLESS        // Counting sink for tests and CI
)

// NewDisplayOutput creates a display output using the specified backend
func NewDisplayOutput(backend int) (DisplayOutput, error) {
	switch backend {
	case DISPLAY_BACKEND_EBITEN:
		return NewEbitenOutput()
	case DISPLAY_BACKEND_TERMINAL:
		return NewTerminalOutput()
	case DISPLAY_BACKEND_HEADLESS:
		return NewHeadlessOutput()
	}
	return nil, &ViewportError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}

func clampScale(scale int) int {
	if scale < 1 {
		return 1
	}
	if scale > 8 {
		return 8
	}
	return scale
}
