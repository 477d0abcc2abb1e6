// viewport_metrics.go - Frame exchange counters for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import "sync/atomic"

// ViewportMetrics counts what moved through the exchange. All counters
// are safe to bump from either side.
type ViewportMetrics struct {
	frameCount     atomic.Uint64 // producer frames rendered
	bufferSwaps    atomic.Uint64 // successful swaps published
	textureUpdates atomic.Uint64 // consumer uploads actually performed
	droppedFrames  atomic.Uint64 // frames discarded (stale generation)
}

// ViewportMetricsSnapshot is a point-in-time copy of the counters.
type ViewportMetricsSnapshot struct {
	FrameCount     uint64
	BufferSwaps    uint64
	TextureUpdates uint64
	DroppedFrames  uint64
}

func (m *ViewportMetrics) Snapshot() ViewportMetricsSnapshot {
	return ViewportMetricsSnapshot{
		FrameCount:     m.frameCount.Load(),
		BufferSwaps:    m.bufferSwaps.Load(),
		TextureUpdates: m.textureUpdates.Load(),
		DroppedFrames:  m.droppedFrames.Load(),
	}
}
