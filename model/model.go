// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package model wraps a circuit into a clocked model with named input and
// output signals.
//
// A model is driven the way a compiled HDL model is: set inputs, toggle the
// clock input, call Eval and read outputs.
//
//	m, err := model.New(spec)
//	...
//	m.Set("clk", 1)
//	m.Set("en", 1)
//	for i := 0; i < 10; i++ {
//		m.Set("clk", 0)
//		m.Eval()
//		m.Set("clk", 1)
//		m.Eval()
//		fmt.Println(m.Get("dout"))
//	}
//
package model

import (
	"strings"

	"github.com/iclabs/vbsim"
	"github.com/iclabs/vbsim/hwlib"
	"github.com/pkg/errors"
)

// TopScope is the name of the top level scope in traces.
//
const TopScope = "TOP"

// A Port is a named signal of a model.
//
type Port struct {
	Name  string
	Width int // in bits, 1 to 64
}

// Spec describes a model.
//
type Spec struct {
	// Model name. Also used as the design scope in traces.
	Name string
	// Clock input name. The clock is not a pin of Part: registers in Part
	// react to the circuit clock.
	Clock string
	// Data inputs, connected to the Part pins of the same name.
	Inputs []Port
	// Outputs, connected to the Part pins of the same name.
	Outputs []Port
	// Internals are Part outputs that are traced in the design scope but are
	// not visible in the top scope.
	Internals []Port
	// Part builds the design.
	Part vbsim.NewPartFn
}

type signal struct {
	Port
	v    uint64
	mask uint64
}

func newSignal(p Port) *signal {
	mask := ^uint64(0)
	if p.Width < 64 {
		mask = 1<<uint(p.Width) - 1
	}
	return &signal{Port: p, mask: mask}
}

// A Model is a clocked circuit with named signals. Model methods must not be
// called concurrently.
//
type Model struct {
	spec   Spec
	c      *vbsim.Circuit
	clk    uint64
	ins    map[string]*signal
	outs   map[string]*signal
	closed bool
}

type config struct {
	workers int
	limit   int
}

// An Option configures a Model.
//
type Option func(*config)

// Workers sets the number of goroutines used to update the circuit. The
// default is 1: components are updated on the caller's goroutine. See
// vbsim.NewCircuit.
//
func Workers(n int) Option {
	return func(c *config) { c.workers = n }
}

// SettleLimit sets the maximum number of simulation steps per settle.
//
func SettleLimit(n int) Option {
	return func(c *config) { c.limit = n }
}

func checkPorts(seen map[string]bool, ps []Port) error {
	for _, p := range ps {
		switch {
		case p.Name == "" || strings.ContainsAny(p.Name, "[]=,. \t"),
			p.Name == vbsim.True || p.Name == vbsim.False || p.Name == vbsim.Clk:
			return errors.Errorf("invalid port name %q", p.Name)
		case p.Width < 1 || p.Width > 64:
			return errors.Errorf("port %s: invalid width %d", p.Name, p.Width)
		case seen[p.Name]:
			return errors.Errorf("duplicate port name %s", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// New builds a new model. The returned model must be closed once no longer
// needed.
//
func New(spec Spec, opts ...Option) (*Model, error) {
	cfg := config{workers: 1, limit: vbsim.DefaultSettleLimit}
	for _, o := range opts {
		o(&cfg)
	}
	if spec.Part == nil {
		return nil, errors.Errorf("model %s: no part", spec.Name)
	}
	seen := map[string]bool{spec.Clock: true}
	if spec.Clock == "" {
		return nil, errors.Errorf("model %s: no clock", spec.Name)
	}
	for _, ps := range [][]Port{spec.Inputs, spec.Outputs, spec.Internals} {
		if err := checkPorts(seen, ps); err != nil {
			return nil, errors.Wrap(err, "model "+spec.Name)
		}
	}

	m := &Model{
		spec: spec,
		ins:  make(map[string]*signal, len(spec.Inputs)),
		outs: make(map[string]*signal, len(spec.Outputs)+len(spec.Internals)),
	}

	var (
		parts vbsim.Parts
		conns []string
	)
	for _, p := range spec.Inputs {
		s := newSignal(p)
		m.ins[p.Name] = s
		parts = append(parts, hwlib.InputN(p.Width, func() int64 { return int64(s.v) })("out="+p.Name))
		conns = append(conns, p.Name+"="+p.Name)
	}
	for _, ps := range [][]Port{spec.Outputs, spec.Internals} {
		for _, p := range ps {
			s := newSignal(p)
			m.outs[p.Name] = s
			parts = append(parts, hwlib.OutputN(p.Width, func(v int64) { s.v = uint64(v) & s.mask })("in="+p.Name))
			conns = append(conns, p.Name+"="+p.Name)
		}
	}
	parts = append(parts, spec.Part(strings.Join(conns, ", ")))

	c, err := vbsim.NewCircuit(cfg.workers, parts...)
	if err != nil {
		return nil, errors.Wrap(err, "model "+spec.Name)
	}
	c.SetSettleLimit(cfg.limit)
	m.c = c
	return m, nil
}

// Name returns the model name.
//
func (m *Model) Name() string { return m.spec.Name }

// Set sets the value of an input or of the clock. Bits that do not fit in the
// input width are dropped. The new value is seen by the circuit on the next
// call to Eval.
//
// Set panics if name is not an input.
//
func (m *Model) Set(name string, v uint64) {
	if name == m.spec.Clock {
		m.clk = v & 1
		return
	}
	s, ok := m.ins[name]
	if !ok {
		panic("model " + m.spec.Name + ": no input named " + name)
	}
	s.v = v & s.mask
}

// IsInput returns true if name is an input or the clock of the model.
//
func (m *Model) IsInput(name string) bool {
	_, ok := m.ins[name]
	return ok || name == m.spec.Clock
}

// Get returns the value of a signal as of the last call to Eval.
//
// Get panics if name is not a signal of the model.
//
func (m *Model) Get(name string) uint64 {
	if name == m.spec.Clock {
		return m.clk
	}
	if s, ok := m.outs[name]; ok {
		return s.v
	}
	if s, ok := m.ins[name]; ok {
		return s.v
	}
	panic("model " + m.spec.Name + ": no signal named " + name)
}

// Eval evaluates the model. Data inputs are settled first, then the clock
// level is applied and the circuit settles again, so that registers sample
// the inputs set before the call.
//
func (m *Model) Eval() error {
	if m.closed {
		return errors.Errorf("model %s: closed", m.spec.Name)
	}
	if _, err := m.c.Settle(); err != nil {
		return errors.Wrap(err, "model "+m.spec.Name)
	}
	m.c.SetClock(m.clk != 0)
	if _, err := m.c.Settle(); err != nil {
		return errors.Wrap(err, "model "+m.spec.Name)
	}
	return nil
}

// Finished returns true once a Finish part of the design has been triggered.
//
func (m *Model) Finished() bool {
	return m.c.Finished()
}

// Steps returns the number of simulation steps run so far.
//
func (m *Model) Steps() uint {
	return m.c.Steps()
}

// Close releases the resources held by the model. It is safe to call Close
// more than once.
//
func (m *Model) Close() error {
	if !m.closed {
		m.closed = true
		m.c.Dispose()
	}
	return nil
}
