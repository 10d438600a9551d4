// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type keyboard struct {
	in  []byte
	err error
}

func (k *keyboard) read(p []byte) (int, error) {
	n := copy(p, k.in)
	k.in = k.in[n:]
	if n == 0 {
		return 0, k.err
	}
	return n, nil
}

func TestBoard(t *testing.T) {
	var (
		kb  keyboard
		out bytes.Buffer
	)
	b := NewBoard(kb.read, &out)
	b.Interval = 0
	b.Header("Lab 3")

	kb.in = []byte("++-+")
	if v := b.Value(); v != 2 {
		t.Fatalf("expected value 2, got %d", v)
	}
	b.Step = 10
	kb.in = []byte("]x\x03")
	if v := b.Value(); v != 12 {
		t.Fatalf("expected value 12, got %d", v)
	}
	for _, exp := range []rune{'x', 'q'} {
		k, ok := b.Key()
		if !ok || k != exp {
			t.Fatalf("expected key %q, got %q, %v", exp, k, ok)
		}
	}
	if _, ok := b.Key(); ok {
		t.Fatal("unexpected key")
	}

	// split utf-8 sequence
	kb.in = []byte("é")[:1]
	if _, ok := b.Key(); ok {
		t.Fatal("unexpected key on partial input")
	}
	kb.in = []byte("é")[1:]
	if k, ok := b.Key(); !ok || k != 'é' {
		t.Fatalf("expected key 'é', got %q, %v", k, ok)
	}

	b.Plot(0, 0, 255)
	b.Plot(255, 0, 255)
	b.Bar(0x81)
	b.Cycle(7)
	exp := "Lab 3 | cycle 7 | value 12 | ●○○○○○○● | ▁ | █"
	if l := b.Line(); l != exp {
		t.Fatalf("expected line %q, got %q", exp, l)
	}
	if !strings.HasSuffix(out.String(), "\r\x1b[2K"+exp) {
		t.Fatalf("unexpected output %q", out.String())
	}
	b.Plot(128, 0, 255)
	b.Cycle(8)
	if l := b.Line(); !strings.HasSuffix(l, "| ▁▄ | █") {
		t.Fatalf("unexpected line %q", l)
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	b.Bar(1)
	if b.Err() == nil {
		t.Fatal("expected error after Close")
	}
}

func TestBoard_width(t *testing.T) {
	b := NewBoard(nil, &bytes.Buffer{})
	b.width = 4
	for i := 0; i < 10; i++ {
		b.Plot(i, 0, 7)
		b.Cycle(i)
	}
	if s := string(b.trace[0]); s != "▇███" {
		t.Fatalf("unexpected trace %q", s)
	}
}

func TestBoard_readError(t *testing.T) {
	kb := keyboard{err: errors.New("eof")}
	b := NewBoard(kb.read, &bytes.Buffer{})
	if _, ok := b.Key(); ok {
		t.Fatal("unexpected key")
	}
	if b.Err() == nil {
		t.Fatal("expected error")
	}
	if err := b.Close(); err == nil {
		t.Fatal("expected error from Close")
	}
}

func Test_spark(t *testing.T) {
	td := []struct {
		v, min, max int
		r           rune
	}{
		{0, 0, 255, '▁'},
		{-5, 0, 255, '▁'},
		{255, 0, 255, '█'},
		{300, 0, 255, '█'},
		{127, 0, 254, '▄'},
		{5, 5, 5, '▁'},
	}
	for _, d := range td {
		if r := spark(d.v, d.min, d.max); r != d.r {
			t.Errorf("spark(%d, %d, %d) = %q, expected %q", d.v, d.min, d.max, r, d.r)
		}
	}
}
