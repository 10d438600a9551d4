// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package model_test

import (
	"strings"
	"testing"

	"github.com/iclabs/vbsim"
	hl "github.com/iclabs/vbsim/hwlib"
	"github.com/iclabs/vbsim/model"
)

// counterSpec returns a 4 bits counter that finishes when it reaches 5.
func counterSpec(t *testing.T) model.Spec {
	t.Helper()
	cnt, err := vbsim.Chip("counter", "en, rst", "q[4], done",
		hl.IncN(4)("in=q, out=inc"),
		hl.MuxN(4)("a=inc, b=false, sel=rst, out=d"),
		hl.Or("a=en, b=rst, out=load"),
		hl.RegisterN(4)("in=d, load=load, out=q"),
		hl.EqualN(4)("a=q, b[0]=true, b[2]=true, out=done"),
		hl.Finish("in=done"),
	)
	if err != nil {
		t.Fatal(err)
	}
	return model.Spec{
		Name:      "counter",
		Clock:     "clk",
		Inputs:    []model.Port{{"en", 1}, {"rst", 1}},
		Outputs:   []model.Port{{"q", 4}},
		Internals: []model.Port{{"done", 1}},
		Part:      cnt,
	}
}

func newCounter(t *testing.T, opts ...model.Option) *model.Model {
	t.Helper()
	m, err := model.New(counterSpec(t), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func halfEdge(t *testing.T, m *model.Model) {
	t.Helper()
	m.Set("clk", m.Get("clk")^1)
	if err := m.Eval(); err != nil {
		t.Fatal(err)
	}
}

func TestModel_counter(t *testing.T) {
	for _, workers := range []int{1, 3} {
		m := newCounter(t, model.Workers(workers))
		m.Set("clk", 1)
		m.Set("en", 1)
		for i := 1; i <= 5; i++ {
			halfEdge(t, m)
			// falling edge: no change
			if q := m.Get("q"); q != uint64(i-1) {
				t.Fatalf("workers %d, cycle %d: q = %d after falling edge", workers, i, q)
			}
			if m.Finished() {
				t.Fatalf("workers %d: finished at cycle %d", workers, i)
			}
			halfEdge(t, m)
			if q := m.Get("q"); q != uint64(i) {
				t.Fatalf("workers %d, cycle %d: q = %d after rising edge", workers, i, q)
			}
		}
		if !m.Finished() || m.Get("done") != 1 {
			t.Fatalf("workers %d: expected finish at q = 5", workers)
		}
		if m.Steps() == 0 {
			t.Fatal("no steps run")
		}
		if err := m.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestModel_inputsBeforeEdge(t *testing.T) {
	m := newCounter(t)
	defer m.Close()
	m.Set("clk", 1)
	m.Set("en", 1)
	halfEdge(t, m)
	halfEdge(t, m)
	if q := m.Get("q"); q != 1 {
		t.Fatalf("q = %d, expected 1", q)
	}
	halfEdge(t, m)
	// inputs changed together with the rising edge are sampled by it.
	m.Set("en", 0)
	halfEdge(t, m)
	if q := m.Get("q"); q != 1 {
		t.Fatalf("q = %d, expected 1", q)
	}
	m.Set("rst", 1)
	halfEdge(t, m)
	halfEdge(t, m)
	if q := m.Get("q"); q != 0 {
		t.Fatalf("q = %d after reset, expected 0", q)
	}
}

func TestModel_Set(t *testing.T) {
	m := newCounter(t)
	defer m.Close()

	m.Set("en", 3)
	if v := m.Get("en"); v != 1 {
		t.Fatalf("en = %d, expected truncation to 1", v)
	}
	m.Set("clk", 2)
	if v := m.Get("clk"); v != 0 {
		t.Fatalf("clk = %d, expected truncation to 0", v)
	}
	for n, in := range map[string]bool{"en": true, "rst": true, "clk": true, "q": false, "nope": false} {
		if m.IsInput(n) != in {
			t.Fatalf("IsInput(%q) != %v", n, in)
		}
	}
	for _, f := range []func(){
		func() { m.Set("q", 1) },
		func() { m.Set("nope", 1) },
		func() { m.Get("nope") },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			f()
		}()
	}
}

func TestModel_Close(t *testing.T) {
	m := newCounter(t)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Eval(); err == nil {
		t.Fatal("expected error from Eval after Close")
	}
}

func TestNew_errors(t *testing.T) {
	good := counterSpec(t)
	td := []struct {
		name string
		edit func(s *model.Spec)
		err  string
	}{
		{"no_part", func(s *model.Spec) { s.Part = nil }, "no part"},
		{"no_clock", func(s *model.Spec) { s.Clock = "" }, "no clock"},
		{"width", func(s *model.Spec) { s.Inputs = []model.Port{{"en", 0}, {"rst", 1}} }, "invalid width"},
		{"dup", func(s *model.Spec) { s.Outputs = []model.Port{{"en", 4}} }, "duplicate port"},
		{"clock_reserved", func(s *model.Spec) { s.Inputs = []model.Port{{"clk", 1}} }, "invalid port name"},
		{"clock_dup", func(s *model.Spec) { s.Clock = "ck"; s.Inputs = []model.Port{{"ck", 1}} }, "duplicate port"},
		{"name", func(s *model.Spec) { s.Internals = []model.Port{{"a[0]", 1}} }, "invalid port name"},
		{"constant", func(s *model.Spec) { s.Internals = []model.Port{{"true", 1}} }, "invalid port name"},
		{"unknown_pin", func(s *model.Spec) { s.Internals = []model.Port{{"foo", 1}} }, "invalid pin name"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			s := good
			d.edit(&s)
			m, err := model.New(s)
			if err == nil {
				m.Close()
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), d.err) {
				t.Fatalf("got error %q, expected %q", err, d.err)
			}
		})
	}
}

type signal struct {
	scope string
	name  string
	width int
	value func() uint64
}

type registrar []signal

func (r *registrar) Register(scope []string, name string, width int, value func() uint64) error {
	*r = append(*r, signal{strings.Join(scope, "."), name, width, value})
	return nil
}

func TestModel_Trace(t *testing.T) {
	m := newCounter(t)
	defer m.Close()

	var r registrar
	if err := m.Trace(&r); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range r {
		names = append(names, s.scope+"."+s.name)
	}
	exp := "TOP.clk TOP.en TOP.rst TOP.q TOP.counter.clk TOP.counter.en TOP.counter.rst TOP.counter.q TOP.counter.done"
	if got := strings.Join(names, " "); got != exp {
		t.Fatalf("got %s\nexpected %s", got, exp)
	}

	m.Set("clk", 1)
	m.Set("en", 1)
	halfEdge(t, m)
	halfEdge(t, m)
	for _, s := range r {
		if s.name == "q" && s.value() != 1 {
			t.Fatalf("%s.q = %d, expected 1", s.scope, s.value())
		}
		if s.name == "clk" && s.value() != 1 {
			t.Fatalf("%s.clk = %d, expected 1", s.scope, s.value())
		}
		if s.name == "q" && s.width != 4 {
			t.Fatalf("%s.q: width %d", s.scope, s.width)
		}
	}
}
