// display_backend_headless.go - Counting display sink for tests and CI

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
	"time"
)

// HeadlessOutput consumes frames without a screen: it polls the refresh
// signal at its target rate, takes front snapshots and keeps the most
// recent one for inspection. Used by the test suite and by CI runs of
// the demo binary.
type HeadlessOutput struct {
	mu       sync.RWMutex
	started  bool
	config   DisplayConfig
	consumer *ConsumerHandle
	last     FrameSnapshot
	hasLast  bool

	frameCount  atomic.Uint64
	refreshRate int
	done        chan struct{}
	loopDone    chan struct{}
	stopOnce    *sync.Once
}

func NewHeadlessOutput() (DisplayOutput, error) {
	return &HeadlessOutput{refreshRate: 60}, nil
}

func (h *HeadlessOutput) Attach(consumer *ConsumerHandle) {
	h.mu.Lock()
	h.consumer = consumer
	h.mu.Unlock()
}

func (h *HeadlessOutput) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	h.started = true
	h.done = make(chan struct{})
	h.loopDone = make(chan struct{})
	h.stopOnce = &sync.Once{}
	go h.loop(h.done, h.loopDone)
	return nil
}

func (h *HeadlessOutput) loop(done, loopDone chan struct{}) {
	defer close(loopDone)
	ticker := time.NewTicker(time.Second / time.Duration(h.GetRefreshRate()))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.mu.RLock()
			consumer := h.consumer
			h.mu.RUnlock()
			if consumer == nil || !consumer.PollAndClear() {
				continue
			}
			snap := consumer.Snapshot()
			consumer.countTextureUpdate()
			h.frameCount.Add(1)
			h.mu.Lock()
			h.last = snap
			h.hasLast = true
			h.mu.Unlock()
		}
	}
}

func (h *HeadlessOutput) Stop() error {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return nil
	}
	h.started = false
	done, loopDone, once := h.done, h.loopDone, h.stopOnce
	h.mu.Unlock()

	once.Do(func() { close(done) })
	<-loopDone
	return nil
}

func (h *HeadlessOutput) Close() error {
	return h.Stop()
}

func (h *HeadlessOutput) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started
}

func (h *HeadlessOutput) Done() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loopDone
}

func (h *HeadlessOutput) SetDisplayConfig(config DisplayConfig) error {
	h.mu.Lock()
	h.config = config
	if config.RefreshRate > 0 {
		h.refreshRate = config.RefreshRate
	}
	consumer := h.consumer
	h.mu.Unlock()

	if consumer != nil && config.Width > 0 && config.Height > 0 {
		if w, hgt, _ := consumer.Shape(); w != config.Width || hgt != config.Height {
			return consumer.Resize(config.Width, config.Height)
		}
	}
	return nil
}

func (h *HeadlessOutput) GetDisplayConfig() DisplayConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

func (h *HeadlessOutput) GetFrameCount() uint64 {
	return h.frameCount.Load()
}

func (h *HeadlessOutput) GetRefreshRate() int {
	if h.refreshRate == 0 {
		return 60
	}
	return h.refreshRate
}

// LastSnapshot returns the most recently consumed frame, if any.
func (h *HeadlessOutput) LastSnapshot() (FrameSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.hasLast
}
