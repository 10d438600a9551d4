// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package board defines the interface to Vbuddy style display boards: a
// rotary encoder value, a plotting area, an 8 LED bar, a cycle counter and a
// key poll.
//
// Implementations live in sub packages: serial (the real board on a tty),
// term (a terminal rendition), window (a graphical window) and audio (a
// monitor that plays plotted values). Headless is a board without a device.
//
package board

// A Board is a display board.
//
// Display methods do not return errors. Instead, the first I/O error is
// retained and returned by Err; once an error occurred, further calls are
// no-ops.
//
type Board interface {
	// Header sets the title shown on the board.
	Header(title string)
	// Value returns the current value of the rotary encoder.
	Value() int
	// Plot adds a point to the plotting area. The plot range is [min, max].
	Plot(v, min, max int)
	// Bar shows v on the LED bar, one LED per bit.
	Bar(v uint8)
	// Cycle shows the cycle counter.
	Cycle(n int)
	// Key returns the last key pressed since the previous call, if any.
	Key() (rune, bool)
	// Err returns the first error encountered by the board.
	Err() error
	// Close releases the board.
	Close() error
}
