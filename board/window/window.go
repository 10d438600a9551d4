// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package window implements a board rendered in a desktop window.
//
// The encoder value is adjusted with the arrow keys or the mouse wheel. Typed
// characters are reported by Key. Closing the window reports the Quit key.
//
package window

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/pkg/errors"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"
)

// Window size.
const (
	Width  = 640
	Height = 400
)

const (
	plotLen = 256
	plotTop = 48
	plotH   = 256
	barTop  = plotTop + plotH + 24
)

var (
	bgColor    = color.RGBA{0x10, 0x10, 0x18, 0xff}
	textColor  = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	gridColor  = color.RGBA{0x30, 0x30, 0x40, 0xff}
	ledOn      = color.RGBA{0xff, 0x30, 0x20, 0xff}
	ledOff     = color.RGBA{0x40, 0x10, 0x10, 0xff}
	plotColors = []color.RGBA{
		{0x40, 0xe0, 0x40, 0xff},
		{0xe0, 0xe0, 0x40, 0xff},
		{0x40, 0xa0, 0xff, 0xff},
		{0xff, 0x60, 0xff, 0xff},
	}
)

// A Board is a window board. Its board.Board methods are safe to call from a
// goroutine other than the one running the window.
//
type Board struct {
	// Quit is the key reported when the window is closed.
	Quit rune
	// Step is the encoder increment per key press or wheel notch.
	Step int

	mu     sync.Mutex
	title  string
	value  int
	traces [][]float64 // per plot channel, normalized to [0, 1]
	ch     int
	bar    uint8
	cycle  int
	keys   []rune
	quit   bool // quit key queued
	done   bool // board closed, window terminates
}

// New returns a new board with the given window title.
//
func New(title string) *Board {
	return &Board{Quit: 'q', Step: 1, title: title}
}

// Run opens a window for a new board and calls fn with it on a separate
// goroutine. Run must be called from the main goroutine. The window stays
// open until fn returns or the board is closed.
//
func Run(title string, fn func(b *Board) error) error {
	b := New(title)
	var g errgroup.Group
	g.Go(func() error {
		defer b.Close()
		return fn(b)
	})
	ebiten.SetWindowSize(Width, Height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	err := ebiten.RunGame(b)
	if err != nil {
		// fn may be waiting on the window
		b.closing()
	}
	if gerr := g.Wait(); gerr != nil {
		return gerr
	}
	return errors.Wrap(err, "window board")
}

// Header implements board.Board.
//
func (b *Board) Header(title string) {
	b.mu.Lock()
	b.title = title
	b.mu.Unlock()
}

// Value implements board.Board.
//
func (b *Board) Value() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Plot implements board.Board. Each Plot call between two Cycle calls draws
// on its own trace.
//
func (b *Board) Plot(v, min, max int) {
	var f float64
	if max > min {
		f = float64(v-min) / float64(max-min)
	}
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.traces) <= b.ch {
		b.traces = append(b.traces, nil)
	}
	t := append(b.traces[b.ch], f)
	if len(t) > plotLen {
		t = t[len(t)-plotLen:]
	}
	b.traces[b.ch] = t
	b.ch++
}

// Bar implements board.Board.
//
func (b *Board) Bar(v uint8) {
	b.mu.Lock()
	b.bar = v
	b.mu.Unlock()
}

// Cycle implements board.Board.
//
func (b *Board) Cycle(n int) {
	b.mu.Lock()
	b.cycle = n
	b.ch = 0
	b.mu.Unlock()
}

// Key implements board.Board.
//
func (b *Board) Key() (rune, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.keys) == 0 {
		return 0, false
	}
	r := b.keys[0]
	b.keys = b.keys[1:]
	return r, true
}

// Err implements board.Board. A window board never fails once open.
//
func (b *Board) Err() error { return nil }

// Close implements board.Board. It terminates the window.
//
func (b *Board) Close() error {
	b.mu.Lock()
	b.done = true
	b.mu.Unlock()
	return nil
}

// input handles user input gathered during one window update.
//
func (b *Board) input(chars []rune, notches int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value += notches * b.Step
	b.keys = append(b.keys, chars...)
}

// closing queues the quit key once.
//
func (b *Board) closing() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.quit {
		b.quit = true
		b.keys = append(b.keys, b.Quit)
	}
}

// Update implements ebiten.Game.
//
func (b *Board) Update() error {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	if done {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() {
		b.closing()
	}
	n := 0
	for _, k := range []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyArrowRight} {
		if inpututil.IsKeyJustPressed(k) {
			n++
		}
	}
	for _, k := range []ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyArrowLeft} {
		if inpututil.IsKeyJustPressed(k) {
			n--
		}
	}
	if _, dy := ebiten.Wheel(); dy > 0 {
		n++
	} else if dy < 0 {
		n--
	}
	chars := ebiten.AppendInputChars(nil)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		chars = append(chars, b.Quit)
	}
	if n != 0 || len(chars) > 0 {
		b.input(chars, n)
	}
	return nil
}

// status returns the status line.
//
func (b *Board) status() string {
	return fmt.Sprintf("cycle %d   value %d", b.cycle, b.value)
}

// Draw implements ebiten.Game.
//
func (b *Board) Draw(screen *ebiten.Image) {
	b.mu.Lock()
	defer b.mu.Unlock()

	screen.Fill(bgColor)
	face := basicfont.Face7x13
	text.Draw(screen, b.title, face, 8, 20, textColor)
	st := b.status()
	text.Draw(screen, st, face, Width-8-text.BoundString(face, st).Dx(), 20, textColor)

	x0 := float64(Width-plotLen*2) / 2
	for _, y := range []float64{plotTop, plotTop + plotH/2, plotTop + plotH} {
		ebitenutil.DrawLine(screen, x0, y, x0+plotLen*2, y, gridColor)
	}
	for i, t := range b.traces {
		c := plotColors[i%len(plotColors)]
		for j := 1; j < len(t); j++ {
			ebitenutil.DrawLine(screen,
				x0+float64(j-1)*2, plotTop+plotH*(1-t[j-1]),
				x0+float64(j)*2, plotTop+plotH*(1-t[j]), c)
		}
	}

	const led = 24
	lx := float64(Width-8*led*2) / 2
	for i := 0; i < 8; i++ {
		c := ledOff
		if b.bar&(0x80>>uint(i)) != 0 {
			c = ledOn
		}
		ebitenutil.DrawRect(screen, lx+float64(i*led*2)+led/2, barTop, led, led, c)
	}
}

// Layout implements ebiten.Game.
//
func (b *Board) Layout(_, _ int) (int, int) {
	return Width, Height
}
