// display_backend_terminal.go - ANSI truecolor terminal preview backend for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/term"
)

// TerminalOutput previews the front surface in the terminal using
// half-block glyphs: each character cell carries two vertically stacked
// pixels via foreground and background truecolor escapes. The frame is
// downscaled to the cell grid with a bilinear scaler before encoding.
//
// Intended for quick checks over SSH where no display server exists;
// it is a preview, not a display path for real use.
type TerminalOutput struct {
	mu       sync.RWMutex
	started  bool
	config   DisplayConfig
	consumer *ConsumerHandle
	out      *os.File
	cols     int
	rows     int

	frameCount  atomic.Uint64
	refreshRate int
	done        chan struct{}
	loopDone    chan struct{}
	stopOnce    *sync.Once
}

func NewTerminalOutput() (DisplayOutput, error) {
	out := os.Stdout
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return nil, &ViewportError{
			Operation: "backend creation",
			Details:   "stdout is not a terminal",
		}
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return nil, &ViewportError{
			Operation: "backend creation",
			Details:   "could not query terminal size",
			Err:       err,
		}
	}
	return &TerminalOutput{
		out:         out,
		cols:        cols,
		rows:        rows - 1, // bottom line left for the shell prompt
		refreshRate: 30,
	}, nil
}

func (to *TerminalOutput) Attach(consumer *ConsumerHandle) {
	to.mu.Lock()
	to.consumer = consumer
	to.mu.Unlock()
}

func (to *TerminalOutput) Start() error {
	to.mu.Lock()
	defer to.mu.Unlock()
	if to.started {
		return nil
	}
	to.started = true
	to.done = make(chan struct{})
	to.loopDone = make(chan struct{})
	to.stopOnce = &sync.Once{}

	// Hide the cursor and clear once; each frame then repaints from the
	// home position instead of scrolling.
	fmt.Fprint(to.out, "\x1b[?25l\x1b[2J")
	go to.loop(to.done, to.loopDone)
	return nil
}

func (to *TerminalOutput) loop(done, loopDone chan struct{}) {
	defer close(loopDone)
	ticker := time.NewTicker(time.Second / time.Duration(to.GetRefreshRate()))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			to.mu.RLock()
			consumer := to.consumer
			cols, rows := to.cols, to.rows
			to.mu.RUnlock()
			if consumer == nil || !consumer.PollAndClear() {
				continue
			}
			snap := consumer.Snapshot()
			if snap.Width <= 0 || snap.Height <= 0 {
				continue
			}
			frame := renderHalfBlocks(snapshotToImage(snap), cols, rows)
			fmt.Fprint(to.out, "\x1b[H")
			to.out.Write(frame)
			consumer.countTextureUpdate()
			to.frameCount.Add(1)
		}
	}
}

func (to *TerminalOutput) Stop() error {
	to.mu.Lock()
	if !to.started {
		to.mu.Unlock()
		return nil
	}
	to.started = false
	done, loopDone, once := to.done, to.loopDone, to.stopOnce
	to.mu.Unlock()

	once.Do(func() { close(done) })
	<-loopDone
	// Restore the cursor and drop out of the frame area cleanly.
	fmt.Fprint(to.out, "\x1b[0m\x1b[?25h\n")
	return nil
}

func (to *TerminalOutput) Close() error {
	return to.Stop()
}

func (to *TerminalOutput) IsStarted() bool {
	to.mu.RLock()
	defer to.mu.RUnlock()
	return to.started
}

func (to *TerminalOutput) Done() <-chan struct{} {
	to.mu.RLock()
	defer to.mu.RUnlock()
	return to.loopDone
}

func (to *TerminalOutput) SetDisplayConfig(config DisplayConfig) error {
	to.mu.Lock()
	to.config = config
	if config.RefreshRate > 0 {
		to.refreshRate = config.RefreshRate
	}
	consumer := to.consumer
	to.mu.Unlock()

	if consumer != nil && config.Width > 0 && config.Height > 0 {
		if w, h, _ := consumer.Shape(); w != config.Width || h != config.Height {
			return consumer.Resize(config.Width, config.Height)
		}
	}
	return nil
}

func (to *TerminalOutput) GetDisplayConfig() DisplayConfig {
	to.mu.RLock()
	defer to.mu.RUnlock()
	return to.config
}

func (to *TerminalOutput) GetFrameCount() uint64 {
	return to.frameCount.Load()
}

func (to *TerminalOutput) GetRefreshRate() int {
	if to.refreshRate == 0 {
		return 30
	}
	return to.refreshRate
}

// renderHalfBlocks downscales the image to cols x rows*2 pixels and
// encodes it as ANSI truecolor half-block lines. Each output cell shows
// the upper pixel as foreground over the lower pixel as background.
func renderHalfBlocks(img *image.RGBA, cols, rows int) []byte {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var sb strings.Builder
	sb.Grow(rows * cols * 40)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := scaled.RGBAAt(col, row*2)
			bot := scaled.RGBAAt(col, row*2+1)
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		sb.WriteString("\x1b[0m\n")
	}
	return []byte(sb.String())
}
