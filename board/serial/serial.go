// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package serial drives a Vbuddy board connected to a serial port.
//
// Commands are text lines starting with '$', parameters are comma
// separated:
//
//	$H,<title>            set the header
//	$V                    query the encoder value, answered by "<int>"
//	$P,<v>,<min>,<max>    plot a point
//	$B,<v>                set the LED bar
//	$C,<n>                show the cycle counter
//	$K                    poll a key, answered by "<char>" or an empty line
//	$Q                    release the board
//
package serial

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Defaults for Open.
//
const (
	DefaultBaud = 115200
	ConfigFile  = "vbuddy.cfg"
)

// ReadConfig returns the serial port path stored in the named configuration
// file: its first non blank line.
//
func ReadConfig(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", errors.Wrap(err, "vbuddy config")
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			return l, nil
		}
	}
	if err = sc.Err(); err != nil {
		return "", errors.Wrap(err, "vbuddy config")
	}
	return "", errors.Errorf("vbuddy config %s: no port name", name)
}

// A Board is a Vbuddy board.
//
type Board struct {
	w      io.Writer
	r      *bufio.Reader
	c      io.Closer
	value  int
	err    error
	closed bool
}

// NewBoard returns a Board talking to a Vbuddy through rw. If rw is an
// io.Closer, Close closes it.
//
func NewBoard(rw io.ReadWriter) *Board {
	b := &Board{w: rw, r: bufio.NewReader(rw)}
	if c, ok := rw.(io.Closer); ok {
		b.c = c
	}
	return b
}

// Open opens and configures the named serial port.
//
func Open(port string, baud int) (*Board, error) {
	f, err := openPort(port, baud)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", port)
	}
	return NewBoard(f), nil
}

func (b *Board) send(cmd string, args ...int) bool {
	if b.err != nil {
		return false
	}
	if b.closed {
		b.err = errors.New("vbuddy: board closed")
		return false
	}
	buf := make([]byte, 0, 32)
	buf = append(buf, cmd...)
	for _, a := range args {
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(a), 10)
	}
	buf = append(buf, '\n')
	if _, err := b.w.Write(buf); err != nil {
		b.err = errors.Wrap(err, "vbuddy")
		return false
	}
	return true
}

func (b *Board) reply() (string, bool) {
	l, err := b.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		b.err = errors.Wrap(err, "vbuddy: no reply")
		return "", false
	}
	return strings.TrimRight(l, "\r\n"), true
}

// Header implements board.Board.
//
func (b *Board) Header(title string) {
	title = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, title)
	b.send("$H," + title)
}

// Value implements board.Board. The last valid value is returned on error.
//
func (b *Board) Value() int {
	if !b.send("$V") {
		return b.value
	}
	l, ok := b.reply()
	if !ok {
		return b.value
	}
	v, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil {
		b.err = errors.Errorf("vbuddy: invalid value %q", l)
		return b.value
	}
	b.value = v
	return v
}

// Plot implements board.Board.
//
func (b *Board) Plot(v, min, max int) { b.send("$P", v, min, max) }

// Bar implements board.Board.
//
func (b *Board) Bar(v uint8) { b.send("$B", int(v)) }

// Cycle implements board.Board.
//
func (b *Board) Cycle(n int) { b.send("$C", n) }

// Key implements board.Board.
//
func (b *Board) Key() (rune, bool) {
	if !b.send("$K") {
		return 0, false
	}
	l, ok := b.reply()
	if !ok || l == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l)
	return r, true
}

// Err implements board.Board.
//
func (b *Board) Err() error {
	return b.err
}

// Close sends the release command and closes the underlying port.
//
func (b *Board) Close() error {
	if b.closed {
		return nil
	}
	b.send("$Q")
	b.closed = true
	err := b.err
	if b.c != nil {
		if cerr := b.c.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "vbuddy")
		}
	}
	return err
}
