// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package board

import (
	"log"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Headless is a board with no device attached. Its encoder value is fixed
// and key presses are scripted by cycle number.
//
type Headless struct {
	// Val is the value returned by Value.
	Val int
	// Keys maps cycle numbers to a key reported by the first call to Key
	// following the display of that cycle.
	Keys map[int]rune
	// Log receives the title and a summary on Close. May be nil.
	Log *log.Logger

	title  string
	cycle  int
	shown  bool
	plots  int
	bars   int
	last   uint8
	closed bool
	err    error
}

// Header implements Board.
//
func (h *Headless) Header(title string) {
	if h.check() {
		h.title = title
		h.logf("%s", title)
	}
}

// Value implements Board.
//
func (h *Headless) Value() int {
	h.check()
	return h.Val
}

// Plot implements Board.
//
func (h *Headless) Plot(v, min, max int) {
	if h.check() {
		h.plots++
	}
}

// Bar implements Board.
//
func (h *Headless) Bar(v uint8) {
	if h.check() {
		h.bars++
		h.last = v
	}
}

// Cycle implements Board.
//
func (h *Headless) Cycle(n int) {
	if h.check() {
		h.cycle = n
		h.shown = true
	}
}

// Key implements Board.
//
func (h *Headless) Key() (rune, bool) {
	if !h.check() || !h.shown {
		return 0, false
	}
	h.shown = false
	r, ok := h.Keys[h.cycle]
	return r, ok
}

// Err implements Board.
//
func (h *Headless) Err() error {
	return h.err
}

// Close implements Board.
//
func (h *Headless) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.logf("%s: %d plots, %d bar updates, last cycle %d", h.title, h.plots, h.bars, h.cycle)
	return nil
}

func (h *Headless) check() bool {
	if h.closed && h.err == nil {
		h.err = errors.New("board closed")
	}
	return h.err == nil
}

func (h *Headless) logf(format string, args ...interface{}) {
	if h.Log != nil {
		h.Log.Printf("headless board: "+format, args...)
	}
}

// ParseKeys parses a key script of the form "cycle:key, ...", for example
// "100:q" to press q once cycle 100 is displayed.
//
func ParseKeys(s string) (map[int]rune, error) {
	keys := make(map[int]rune)
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i := strings.IndexByte(f, ':')
		if i < 0 {
			return nil, errors.Errorf("invalid key %q: expected cycle:key", f)
		}
		n, err := strconv.Atoi(f[:i])
		if err != nil || n < 0 {
			return nil, errors.Errorf("invalid cycle number in %q", f)
		}
		k := f[i+1:]
		if utf8.RuneCountInString(k) != 1 {
			return nil, errors.Errorf("invalid key in %q", f)
		}
		r, _ := utf8.DecodeRuneInString(k)
		keys[n] = r
	}
	return keys, nil
}

// FormatKeys is the inverse of ParseKeys.
//
func FormatKeys(keys map[int]rune) string {
	cs := make([]int, 0, len(keys))
	for c := range keys {
		cs = append(cs, c)
	}
	sort.Ints(cs)
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
		b.WriteByte(':')
		b.WriteRune(keys[c])
	}
	return b.String()
}
