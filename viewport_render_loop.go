// viewport_render_loop.go - Producer-side frame loop for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"sync"
	"time"
)

// RenderLoop owns the producer thread: a ticker-driven goroutine that
// runs the engine against the back surface once per tick and publishes
// the result. The loop is handed its ProducerHandle at construction;
// nothing else may touch the producer side while it runs.
//
// Shutdown is cooperative. Stop blocks until the goroutine has exited,
// which is the quiesce point the resize and teardown preconditions ask
// for: after Stop returns, no producer write is in flight.
type RenderLoop struct {
	producer *ProducerHandle
	engine   RenderEngine
	interval time.Duration

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	started  bool
}

// NewRenderLoop targets the given frames per second; fps <= 0 falls
// back to 60.
func NewRenderLoop(producer *ProducerHandle, engine RenderEngine, fps int) *RenderLoop {
	if fps <= 0 {
		fps = 60
	}
	return &RenderLoop{
		producer: producer,
		engine:   engine,
		interval: time.Second / time.Duration(fps),
		done:     make(chan struct{}),
	}
}

// Start spawns the producer goroutine. Calling Start twice is a no-op.
func (rl *RenderLoop) Start() {
	if rl.started {
		return
	}
	rl.started = true
	rl.wg.Add(1)
	go rl.loop()
}

// Stop signals the goroutine and waits for it to exit.
func (rl *RenderLoop) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
	rl.wg.Wait()
}

func (rl *RenderLoop) loop() {
	defer rl.wg.Done()
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.producer.RenderFrame(rl.engine.Render)
		}
	}
}
