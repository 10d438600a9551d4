// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/iclabs/vbsim"
)

var hAdder = &vbsim.PartSpec{
	Name:    "HalfAdder",
	Inputs:  vbsim.Inputs{pA, pB},
	Outputs: vbsim.Outputs{"s", "c"},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		a, b := s.Pin(pA), s.Pin(pB)
		sum, cout := s.Pin("s"), s.Pin("c")
		return []vbsim.Component{
			func(c *vbsim.Circuit) {
				va, vb := c.Get(a), c.Get(b)
				c.Set(sum, va != vb)
				c.Set(cout, va && vb)
			}}
	}}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(c string) vbsim.Part {
	return hAdder.NewPart(c)
}

var adder = &vbsim.PartSpec{
	Name:    "FullAdder",
	Inputs:  vbsim.Inputs{pA, pB, "cin"},
	Outputs: vbsim.Outputs{"s", "cout"},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		a, b, cin := s.Pin(pA), s.Pin(pB), s.Pin("cin")
		sum, cout := s.Pin("s"), s.Pin("cout")
		return []vbsim.Component{
			func(c *vbsim.Circuit) {
				va, vb, vc := c.Get(a), c.Get(b), c.Get(cin)
				s := va != vb
				c.Set(sum, s != vc)
				c.Set(cout, s && vc || va && vb)
			}}
	}}

// FullAdder returns a 3 bits adder.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder(c string) vbsim.Part {
	return adder.NewPart(c)
}

// AdderN returns a N-bits adder. The carry out is discarded when c is left
// unconnected, so the sum wraps around modulo 2^bits.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits], c
//	Function: out = lsb(a + b), c = carry out
//
func AdderN(bits int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "ADDER" + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: append(bus(bits, pOut), "c"),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			a, b := s.Bus(pA, bits), s.Bus(pB, bits)
			out, cout := s.Bus(pOut, bits), s.Pin("c")
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					cc := false
					for i, o := range out {
						va, vb := c.Get(a[i]), c.Get(b[i])
						s0 := va != vb
						c.Set(o, s0 != cc)
						cc = va && vb || s0 && cc
					}
					c.Set(cout, cc)
				}}
		}}).NewPart
}

// IncN returns a N-bits incrementer.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: out = lsb(in + 1)
//
func IncN(bits int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "INC" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: bus(bits, pOut),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			in, out := s.Bus(pIn, bits), s.Bus(pOut, bits)
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					cc := true
					for i, o := range out {
						v := c.Get(in[i])
						c.Set(o, v != cc)
						cc = v && cc
					}
				}}
		}}).NewPart
}

// EqualN returns a N-bits equality comparator.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out
//	Function: out = a == b
//
func EqualN(bits int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "EQ" + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: vbsim.Outputs{pOut},
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			a, b, out := s.Bus(pA, bits), s.Bus(pB, bits), s.Pin(pOut)
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					for i := range a {
						if c.Get(a[i]) != c.Get(b[i]) {
							c.Set(out, false)
							return
						}
					}
					c.Set(out, true)
				}}
		}}).NewPart
}
