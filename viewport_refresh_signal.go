// viewport_refresh_signal.go - Coalescing cross-thread refresh notification for Prisma Viewport

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

// RefreshSignal is a fire-and-forget notification capsule: the producer
// calls Notify after a successful swap, the consumer either installs a
// wake callback or polls at its own redraw cadence.
//
// Bursts coalesce into at most one pending notification. Delivery count
// never equals notify count and is not meant to - the consumer always
// holds the latest front surface on its next check, so a lost wake
// costs nothing ("latest frame wins", not a message queue).
type RefreshSignal struct {
	pending atomic.Bool

	mu   sync.Mutex
	wake func()
}

// Notify sets the pending flag and fires the registered wake at most
// once per unconsumed pending state. Never blocks the caller; the wake
// callback may run on the producer thread and must not block either.
func (rs *RefreshSignal) Notify() {
	if !rs.pending.CompareAndSwap(false, true) {
		return // already pending, coalesce
	}
	rs.mu.Lock()
	wake := rs.wake
	rs.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Register installs (or replaces) the consumer's wake callback. At most
// one callback is active at a time; nil uninstalls.
func (rs *RefreshSignal) Register(wake func()) {
	rs.mu.Lock()
	rs.wake = wake
	rs.mu.Unlock()
}

// PollAndClear reports whether a refresh was pending and clears it.
func (rs *RefreshSignal) PollAndClear() bool {
	return rs.pending.Swap(false)
}
