// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package bench

import (
	"sort"

	"github.com/iclabs/vbsim/board"
	"github.com/pkg/errors"
)

// Testbench defaults.
const (
	DefaultIncr = 5
	DefaultN    = 24
)

// SineGen drives a sine generator: the phase increment is fixed, the phase
// offset of the second output follows the board's rotary encoder.
//
//	Inputs: rst, en, incr, offset
//	Outputs: dout1, dout2
//
type SineGen struct {
	// Incr is the phase increment. Defaults to DefaultIncr.
	Incr uint64
}

// Init implements Testbench.
//
func (s SineGen) Init(m Model) {
	incr := s.Incr
	if incr == 0 {
		incr = DefaultIncr
	}
	m.Set("incr", incr)
	m.Set("rst", 0)
	m.Set("en", 1)
}

// Stimulus implements Testbench. The board value is applied as is; the model
// truncates it to the offset width.
//
func (SineGen) Stimulus(cycle int, m Model, b board.Board) error {
	m.Set("offset", uint64(b.Value()))
	return nil
}

// Forward implements Testbench.
//
func (SineGen) Forward(cycle int, m Model, b board.Board) {
	b.Plot(int(m.Get("dout1")), 0, 255)
	b.Plot(int(m.Get("dout2")), 0, 255)
	b.Cycle(cycle)
}

// ClkTick drives a modulo N counter. Reset is high during the first two
// cycles, and forced low during all the following ones.
//
//	Inputs: N, rst, en
//	Outputs: dout
//
type ClkTick struct {
	// N is the counter modulus. Defaults to DefaultN.
	N uint64
}

// Init implements Testbench.
//
func (c ClkTick) Init(m Model) {
	n := c.N
	if n == 0 {
		n = DefaultN
	}
	m.Set("N", n)
	m.Set("rst", 0)
	m.Set("en", 1)
}

// Stimulus implements Testbench.
//
func (ClkTick) Stimulus(cycle int, m Model, b board.Board) error {
	var rst uint64
	if cycle < 2 {
		rst = 1
	}
	m.Set("rst", rst)
	return nil
}

// Forward implements Testbench.
//
func (ClkTick) Forward(cycle int, m Model, b board.Board) {
	b.Bar(uint8(m.Get("dout") & 0xFF))
	b.Cycle(cycle)
}

// A Stimulator returns input values to apply at a given cycle.
//
type Stimulator interface {
	Stimulus(cycle int) (map[string]uint64, error)
}

// Scripted adds stimulus from a Stimulator to a testbench. Stimulator values
// are applied first so that the wrapped testbench has the last word on the
// inputs it drives.
//
type Scripted struct {
	Testbench
	Script Stimulator
}

// Stimulus implements Testbench.
//
func (s Scripted) Stimulus(cycle int, m Model, b board.Board) error {
	vs, err := s.Script.Stimulus(cycle)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(vs))
	for n := range vs {
		names = append(names, n)
	}
	sort.Strings(names)
	in, _ := m.(interface{ IsInput(string) bool })
	for _, n := range names {
		if in != nil && !in.IsInput(n) {
			return errors.Errorf("no input named %s", n)
		}
		m.Set(n, vs[n])
	}
	return s.Testbench.Stimulus(cycle, m, b)
}
