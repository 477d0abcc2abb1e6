//go:build headless

// display_backend_ebiten_headless.go - Headless stand-in for the windowed backend

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

func NewEbitenOutput() (DisplayOutput, error) {
	return NewHeadlessOutput()
}
