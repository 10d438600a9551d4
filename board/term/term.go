// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package term implements a board rendered on a terminal status line.
//
// The encoder value is adjusted with '+' and '-' (or ']' and '['), other
// keys are reported by Key. Ctrl-C is reported as the Interrupt key.
//
package term

import (
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// DefaultWidth is the number of plot points shown.
	DefaultWidth = 48
	// DefaultInterval is the minimum delay between two renderings.
	DefaultInterval = 40 * time.Millisecond
	// DefaultInterrupt is the key reported for Ctrl-C.
	DefaultInterrupt = 'q'
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// A Board is a terminal board.
//
type Board struct {
	// Interrupt is the key reported when Ctrl-C is pressed.
	Interrupt rune
	// Step is the encoder increment per key press. Defaults to 1.
	Step int
	// Interval is the minimum delay between two renderings.
	Interval time.Duration

	in    func([]byte) (int, error)
	out   io.Writer
	close func() error

	title  string
	value  int
	width  int
	trace  [][]rune // per plot channel
	ch     int      // plot channel of the next Plot call
	bar    uint8
	cycle  int
	keys   []rune
	pend   []byte // incomplete utf-8 sequence
	last   time.Time
	err    error
	closed bool
}

// NewBoard returns a board that polls input with read and renders to w. read
// must not block; it returns 0 bytes when no input is available.
//
func NewBoard(read func([]byte) (int, error), w io.Writer) *Board {
	return &Board{
		Interrupt: DefaultInterrupt,
		Step:      1,
		Interval:  DefaultInterval,
		in:        read,
		out:       w,
		width:     DefaultWidth,
	}
}

func (b *Board) ok() bool {
	if b.closed && b.err == nil {
		b.err = errors.New("term board: closed")
	}
	return b.err == nil
}

// poll reads pending input.
//
func (b *Board) poll() {
	if b.in == nil {
		return
	}
	var buf [64]byte
	for b.err == nil {
		n, err := b.in(buf[:])
		if n > 0 {
			b.input(buf[:n])
		}
		if err != nil {
			b.err = errors.Wrap(err, "term board")
			return
		}
		if n < len(buf) {
			return
		}
	}
}

// input handles raw key input.
//
func (b *Board) input(p []byte) {
	if len(b.pend) > 0 {
		p = append(b.pend, p...)
		b.pend = nil
	}
	for len(p) > 0 {
		if !utf8.FullRune(p) {
			b.pend = append([]byte(nil), p...)
			return
		}
		r, sz := utf8.DecodeRune(p)
		p = p[sz:]
		switch r {
		case '+', '=', ']':
			b.value += b.Step
		case '-', '_', '[':
			b.value -= b.Step
		case 3: // Ctrl-C
			b.keys = append(b.keys, b.Interrupt)
		default:
			b.keys = append(b.keys, r)
		}
	}
}

// Header implements board.Board.
//
func (b *Board) Header(title string) {
	if b.ok() {
		b.title = title
	}
}

// Value implements board.Board.
//
func (b *Board) Value() int {
	if b.ok() {
		b.poll()
	}
	return b.value
}

// Plot implements board.Board. Each Plot call between two Cycle calls
// draws on its own trace.
//
func (b *Board) Plot(v, min, max int) {
	if !b.ok() {
		return
	}
	for len(b.trace) <= b.ch {
		b.trace = append(b.trace, nil)
	}
	t := append(b.trace[b.ch], spark(v, min, max))
	if len(t) > b.width {
		t = t[len(t)-b.width:]
	}
	b.trace[b.ch] = t
	b.ch++
}

func spark(v, min, max int) rune {
	if max <= min {
		return sparks[0]
	}
	if v < min {
		v = min
	} else if v > max {
		v = max
	}
	return sparks[(v-min)*(len(sparks)-1)/(max-min)]
}

// Bar implements board.Board.
//
func (b *Board) Bar(v uint8) {
	if b.ok() {
		b.bar = v
	}
}

// Cycle implements board.Board. The board is rendered on Cycle, at most
// once per Interval.
//
func (b *Board) Cycle(n int) {
	if !b.ok() {
		return
	}
	b.cycle = n
	b.ch = 0
	if now := time.Now(); now.Sub(b.last) >= b.Interval {
		b.last = now
		b.render()
	}
}

// Key implements board.Board.
//
func (b *Board) Key() (rune, bool) {
	if !b.ok() {
		return 0, false
	}
	b.poll()
	if len(b.keys) == 0 {
		return 0, false
	}
	r := b.keys[0]
	b.keys = b.keys[1:]
	return r, true
}

// Err implements board.Board.
//
func (b *Board) Err() error {
	return b.err
}

// Close renders the last state and restores the terminal.
//
func (b *Board) Close() error {
	if b.closed {
		return nil
	}
	if b.err == nil {
		b.render()
		b.write("\r\n")
	}
	b.closed = true
	err := b.err
	if b.close != nil {
		if cerr := b.close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "term board")
		}
	}
	return err
}

func (b *Board) write(s string) {
	if b.err != nil {
		return
	}
	if _, err := io.WriteString(b.out, s); err != nil {
		b.err = errors.Wrap(err, "term board")
	}
}

// Line returns the status line.
//
func (b *Board) Line() string {
	var s strings.Builder
	if b.title != "" {
		s.WriteString(b.title)
		s.WriteString(" | ")
	}
	s.WriteString("cycle ")
	s.WriteString(strconv.Itoa(b.cycle))
	s.WriteString(" | value ")
	s.WriteString(strconv.Itoa(b.value))
	s.WriteString(" | ")
	for i := 7; i >= 0; i-- {
		if b.bar&(1<<uint(i)) != 0 {
			s.WriteRune('●')
		} else {
			s.WriteRune('○')
		}
	}
	for _, t := range b.trace {
		s.WriteString(" | ")
		s.WriteString(string(t))
	}
	return s.String()
}

func (b *Board) render() {
	b.write("\r\x1b[2K" + b.Line())
}
