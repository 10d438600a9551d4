// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd writes Value Change Dump waveform files (IEEE 1364) as read by
// waveform viewers like GTKWave.
//
// Signals are registered with a callback returning their current value. Each
// call to Dump samples all signals and writes those that changed since the
// previous dump.
//
package vcd

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrTimestamp is returned by Dump when the timestamp is not greater than the
// previous one.
//
var ErrTimestamp = errors.New("vcd: timestamp not increasing")

// AllLevels is the Depth that records every scope level.
//
const AllLevels = 99

type variable struct {
	name  string
	width int
	id    string
	value func() uint64
	prev  uint64
}

type scope struct {
	name   string
	vars   []*variable
	scopes []*scope
}

func (s *scope) child(name string) *scope {
	for _, c := range s.scopes {
		if c.name == name {
			return c
		}
	}
	c := &scope{name: name}
	s.scopes = append(s.scopes, c)
	return c
}

// A Writer writes a VCD file.
//
type Writer struct {
	w         *bufio.Writer
	c         io.Closer
	depth     int
	timescale string
	version   string

	root    scope
	vars    []*variable
	started bool
	last    uint64
	err     error
	closed  bool
}

// An Option configures a Writer.
//
type Option func(*Writer)

// Depth sets the number of scope levels recorded. Signals registered in a
// scope nested deeper than n are ignored. The default is AllLevels.
//
func Depth(n int) Option {
	return func(w *Writer) { w.depth = n }
}

// Timescale sets the time unit of timestamps. The default is "1ps".
//
func Timescale(ts string) Option {
	return func(w *Writer) { w.timescale = ts }
}

// Version sets the content of the $version header section.
//
func Version(v string) Option {
	return func(w *Writer) { w.version = v }
}

// NewWriter returns a new Writer writing to w. If w is an io.Closer, Close
// closes it.
//
func NewWriter(w io.Writer, opts ...Option) *Writer {
	vw := &Writer{
		w:         bufio.NewWriter(w),
		depth:     AllLevels,
		timescale: "1ps",
		version:   "vbsim",
	}
	if c, ok := w.(io.Closer); ok {
		vw.c = c
	}
	for _, o := range opts {
		o(vw)
	}
	return vw
}

// Create creates the named file and returns a Writer for it.
//
func Create(name string, opts ...Option) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrap(err, "vcd")
	}
	return NewWriter(f, opts...), nil
}

// Register registers a signal of the given bit width in the given scope
// path. value is called on every Dump. Signals must be registered before the
// first call to Dump.
//
func (w *Writer) Register(scope []string, name string, width int, value func() uint64) error {
	switch {
	case w.started:
		return errors.Errorf("vcd: register %s after first dump", name)
	case len(scope) == 0:
		return errors.Errorf("vcd: register %s: empty scope", name)
	case width < 1 || width > 64:
		return errors.Errorf("vcd: register %s: invalid width %d", name, width)
	case name == "" || strings.ContainsAny(name, " \t\n"):
		return errors.Errorf("vcd: invalid signal name %q", name)
	}
	if len(scope) > w.depth {
		return nil
	}
	s := &w.root
	for _, n := range scope {
		s = s.child(n)
	}
	v := &variable{name: name, width: width, id: identifier(len(w.vars)), value: value}
	s.vars = append(s.vars, v)
	w.vars = append(w.vars, v)
	return nil
}

// identifier returns the short identifier code for the n-th variable, using
// the printable ASCII characters '!' to '~'.
//
func identifier(n int) string {
	const base = '~' - '!' + 1
	var b []byte
	for {
		b = append(b, byte('!'+n%base))
		n /= base
		if n == 0 {
			break
		}
		n--
	}
	return string(b)
}

func (w *Writer) header() {
	b := w.w
	b.WriteString("$version\n\t" + w.version + "\n$end\n")
	b.WriteString("$timescale\n\t" + w.timescale + "\n$end\n")
	for _, s := range w.root.scopes {
		w.writeScope(s)
	}
	b.WriteString("$enddefinitions $end\n")
}

func (w *Writer) writeScope(s *scope) {
	b := w.w
	b.WriteString("$scope module " + s.name + " $end\n")
	for _, v := range s.vars {
		b.WriteString("$var wire " + strconv.Itoa(v.width) + " " + v.id + " " + v.name)
		if v.width > 1 {
			b.WriteString(" [" + strconv.Itoa(v.width-1) + ":0]")
		}
		b.WriteString(" $end\n")
	}
	for _, c := range s.scopes {
		w.writeScope(c)
	}
	b.WriteString("$upscope $end\n")
}

func (w *Writer) writeValue(v *variable, val uint64) {
	b := w.w
	if v.width == 1 {
		b.WriteByte('0' + byte(val&1))
		b.WriteString(v.id)
		b.WriteByte('\n')
		return
	}
	b.WriteByte('b')
	for i := v.width - 1; i >= 0; i-- {
		b.WriteByte('0' + byte(val>>uint(i)&1))
	}
	b.WriteByte(' ')
	b.WriteString(v.id)
	b.WriteByte('\n')
}

func mask(width int, v uint64) uint64 {
	if width >= 64 {
		return v
	}
	return v & (1<<uint(width) - 1)
}

// Dump samples all signals at time t. The first Dump writes the file header
// and the value of all signals; subsequent calls write only the signals that
// changed. t must be greater than the timestamp of the previous Dump.
//
func (w *Writer) Dump(t uint64) error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return errors.New("vcd: dump on closed writer")
	}
	if w.started && t <= w.last {
		return errors.Wrapf(ErrTimestamp, "dump at %d after %d", t, w.last)
	}
	b := w.w
	if !w.started {
		w.header()
		b.WriteString("#" + strconv.FormatUint(t, 10) + "\n$dumpvars\n")
		for _, v := range w.vars {
			v.prev = mask(v.width, v.value())
			w.writeValue(v, v.prev)
		}
		b.WriteString("$end\n")
		w.started = true
	} else {
		b.WriteString("#" + strconv.FormatUint(t, 10) + "\n")
		for _, v := range w.vars {
			if val := mask(v.width, v.value()); val != v.prev {
				v.prev = val
				w.writeValue(v, val)
			}
		}
	}
	w.last = t
	// bufio errors are sticky: checking the last write is enough.
	if _, err := b.WriteString(""); err != nil {
		w.err = errors.Wrap(err, "vcd")
	}
	return w.err
}

// Flush writes any buffered data to the underlying writer.
//
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "vcd")
	}
	return w.err
}

// Close flushes buffered data and closes the underlying writer if it is an
// io.Closer. Calling Close more than once is a no-op.
//
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "vcd")
		}
	}
	return err
}
