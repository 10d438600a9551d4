// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl_test

import (
	"strings"
	"testing"

	"github.com/iclabs/vbsim/hwlib"
	"github.com/iclabs/vbsim/model"
	"github.com/iclabs/vbsim/rtl"
)

func newModel(t *testing.T, spec model.Spec, err error) *model.Model {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.New(spec)
	if err != nil {
		t.Fatal(err)
	}
	m.Set(spec.Clock, 1)
	return m
}

func cycle(t *testing.T, m *model.Model) {
	t.Helper()
	for e := 0; e < 2; e++ {
		m.Set("clk", m.Get("clk")^1)
		if err := m.Eval(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSineTable(t *testing.T) {
	tbl := rtl.SineTable()
	if len(tbl) != rtl.SineTableSize {
		t.Fatalf("len = %d", len(tbl))
	}
	td := []struct {
		i int
		v uint64
	}{
		{0, 254}, {64, 127}, {128, 0}, {192, 127},
	}
	for _, d := range td {
		if tbl[d.i] != d.v {
			t.Errorf("tbl[%d] = %d, expected %d", d.i, tbl[d.i], d.v)
		}
	}
	for i, v := range tbl {
		if v > 254 {
			t.Fatalf("tbl[%d] = %d out of range", i, v)
		}
		if i > 0 && i < 128 && v > tbl[i-1] {
			t.Fatalf("tbl[%d] = %d not decreasing", i, v)
		}
	}
}

func TestSineGen(t *testing.T) {
	spec, err := rtl.SineGen(nil)
	m := newModel(t, spec, err)
	defer m.Close()

	tbl := rtl.SineTable()
	m.Set("en", 1)
	m.Set("incr", 5)
	for k := 1; k <= 300; k++ {
		offset := uint64(k * 7 % 256)
		m.Set("offset", offset)
		cycle(t, m)
		addr := uint64(5*k) & 0xff
		if got := m.Get("addr"); got != addr {
			t.Fatalf("cycle %d: addr = %d, expected %d", k, got, addr)
		}
		if got := m.Get("dout1"); got != tbl[addr] {
			t.Fatalf("cycle %d: dout1 = %d, expected %d", k, got, tbl[addr])
		}
		if got, exp := m.Get("dout2"), tbl[(addr+offset)&0xff]; got != exp {
			t.Fatalf("cycle %d: dout2 = %d, expected %d", k, got, exp)
		}
	}

	m.Set("rst", 1)
	cycle(t, m)
	if got := m.Get("addr"); got != 0 {
		t.Fatalf("addr = %d after reset", got)
	}
	m.Set("rst", 0)
	m.Set("en", 0)
	cycle(t, m)
	if got := m.Get("addr"); got != 0 {
		t.Fatalf("addr = %d with en low", got)
	}
}

func TestSineGen_rom(t *testing.T) {
	rom, err := hwlib.ReadHex(strings.NewReader("10 20 30 40"))
	if err != nil {
		t.Fatal(err)
	}
	spec, err := rtl.SineGen(rom)
	m := newModel(t, spec, err)
	defer m.Close()

	m.Set("en", 1)
	m.Set("incr", 1)
	m.Set("offset", 2)
	exp := []uint64{0x20, 0x30, 0x40, 0}
	exp2 := []uint64{0x40, 0, 0, 0}
	for k := range exp {
		cycle(t, m)
		if d1, d2 := m.Get("dout1"), m.Get("dout2"); d1 != exp[k] || d2 != exp2[k] {
			t.Fatalf("cycle %d: dout1, dout2 = %#x, %#x, expected %#x, %#x", k, d1, d2, exp[k], exp2[k])
		}
	}
}

func TestSineGen_badROM(t *testing.T) {
	if _, err := rtl.SineGen(make([]uint64, 257)); err == nil {
		t.Fatal("expected error for oversized rom")
	}
	if _, err := rtl.SineGen([]uint64{0, 256}); err == nil {
		t.Fatal("expected error for out of range word")
	}
}

func TestClkTick(t *testing.T) {
	spec, err := rtl.ClkTick()
	m := newModel(t, spec, err)
	defer m.Close()

	const n = 24
	m.Set("N", n)
	m.Set("en", 1)
	ticks := 0
	for i := 0; i < 200; i++ {
		rst := uint64(0)
		if i < 2 {
			rst = 1
		}
		m.Set("rst", rst)
		cycle(t, m)
		exp := uint64(0)
		if i >= 2 {
			exp = uint64(i-1) % n
		}
		if got := m.Get("dout"); got != exp {
			t.Fatalf("cycle %d: dout = %d, expected %d", i, got, exp)
		}
		if m.Get("tick") == 1 {
			if exp != n-1 {
				t.Fatalf("cycle %d: tick with dout = %d", i, exp)
			}
			ticks++
		}
	}
	// dout reaches 23 at cycles 24, 48, ..., 192
	if ticks != 8 {
		t.Fatalf("ticks = %d, expected 8", ticks)
	}
}

func TestClkTick_disabled(t *testing.T) {
	spec, err := rtl.ClkTick()
	m := newModel(t, spec, err)
	defer m.Close()

	m.Set("N", 4)
	m.Set("en", 0)
	for i := 0; i < 10; i++ {
		cycle(t, m)
		if got := m.Get("dout"); got != 0 {
			t.Fatalf("cycle %d: dout = %d with en low", i, got)
		}
	}
}
