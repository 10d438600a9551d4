// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for vbsim circuits:
// logic gates, multiplexers, adders, comparators, registers and ROMs, as well
// as function based inputs and outputs to interface a circuit with Go code.
//
package hwlib

import (
	"strconv"

	"github.com/iclabs/vbsim"
)

// common pin names
const (
	pA    = "a"
	pB    = "b"
	pIn   = "in"
	pSel  = "sel"
	pOut  = "out"
	pLoad = "load"
)

// make a bus name
func bus(bits int, names ...string) []string {
	b := make([]string, len(names)*bits)
	for i, n := range names {
		for j := 0; j < bits; j++ {
			b[i*bits+j] = vbsim.BusPinName(n, j)
		}
	}
	return b
}

var notGate = &vbsim.PartSpec{
	Name:    "NOT",
	Inputs:  vbsim.Inputs{pIn},
	Outputs: vbsim.Outputs{pOut},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		return []vbsim.Component{
			func(c *vbsim.Circuit) { c.Set(out, !c.Get(in)) },
		}
	},
}

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(w string) vbsim.Part {
	return notGate.NewPart(w)
}

// A truthTable is the truth table of a two input gate: bit a<<1|b holds the
// output for inputs a and b.
type truthTable uint8

// Two input gate truth tables.
const (
	ttAnd  truthTable = 0x8
	ttNand truthTable = 0x7
	ttOr   truthTable = 0xe
	ttNor  truthTable = 0x1
	ttXor  truthTable = 0x6
	ttXnor truthTable = 0x9
)

func (tt truthTable) eval(a, b bool) bool {
	var i uint
	if a {
		i = 2
	}
	if b {
		i |= 1
	}
	return tt>>i&1 != 0
}

func (tt truthTable) spec(name string) *vbsim.PartSpec {
	return &vbsim.PartSpec{
		Name:    name,
		Inputs:  vbsim.Inputs{pA, pB},
		Outputs: vbsim.Outputs{pOut},
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
			return []vbsim.Component{
				func(c *vbsim.Circuit) { c.Set(out, tt.eval(c.Get(a), c.Get(b))) },
			}
		},
	}
}

var (
	and  = ttAnd.spec("AND")
	nand = ttNand.spec("NAND")
	or   = ttOr.spec("OR")
	nor  = ttNor.spec("NOR")
	xor  = ttXor.spec("XOR")
	xnor = ttXnor.spec("XNOR")
)

// Two input gates. They all have inputs a and b and output out.

// And returns an AND gate: out = a && b.
func And(w string) vbsim.Part { return and.NewPart(w) }

// Nand returns a NAND gate: out = !(a && b).
func Nand(w string) vbsim.Part { return nand.NewPart(w) }

// Or returns an OR gate: out = a || b.
func Or(w string) vbsim.Part { return or.NewPart(w) }

// Nor returns a NOR gate: out = !(a || b).
func Nor(w string) vbsim.Part { return nor.NewPart(w) }

// Xor returns a XOR gate: out = a != b.
func Xor(w string) vbsim.Part { return xor.NewPart(w) }

// Xnor returns a XNOR gate: out = a == b.
func Xnor(w string) vbsim.Part { return xnor.NewPart(w) }

// NotN returns a N-bits NOT gate.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: for i := range out { out[i] = !in[i] }
//
func NotN(bits int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "NOT" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: bus(bits, pOut),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			ins, outs := s.Bus(pIn, bits), s.Bus(pOut, bits)
			return []vbsim.Component{func(c *vbsim.Circuit) {
				for i, pin := range ins {
					c.Set(outs[i], !c.Get(pin))
				}
			}}
		}}).NewPart
}

type gateN struct {
	bits int
	fn   func(bool, bool) bool
}

func (g *gateN) mount(s *vbsim.Socket) []vbsim.Component {
	a, b, out := s.Bus(pA, g.bits), s.Bus(pB, g.bits), s.Bus(pOut, g.bits)
	return []vbsim.Component{
		func(c *vbsim.Circuit) {
			for i := range a {
				c.Set(out[i], g.fn(c.Get(a[i]), c.Get(b[i])))
			}
		},
	}
}

// GateN returns a N-bits logic gate.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits]
//	Function: for i := range out { out[i] = f(a[i], b[i]) }
//
func GateN(name string, bits int, f func(bool, bool) bool) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    name + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: bus(bits, pOut),
		Mount:   (&gateN{bits, f}).mount,
	}).NewPart
}

// OrNWay returns a N-Way OR gate.
//
//	Inputs: in[ways]
//	Outputs: out
//	Function: out = in[0] || in[1] || ... || in[ways-1]
//
func OrNWay(ways int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "OR" + strconv.Itoa(ways) + "Way",
		Inputs:  bus(ways, pIn),
		Outputs: vbsim.Outputs{pOut},
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			in, out := s.Bus(pIn, ways), s.Pin(pOut)
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					for _, i := range in {
						if c.Get(i) {
							c.Set(out, true)
							return
						}
					}
					c.Set(out, false)
				}}
		}}).NewPart
}
