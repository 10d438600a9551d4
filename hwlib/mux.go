// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/iclabs/vbsim"
)

var mux = &vbsim.PartSpec{
	Name:    "MUX",
	Inputs:  vbsim.Inputs{pA, pB, pSel},
	Outputs: vbsim.Outputs{pOut},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		a, b, sel, out := s.Pin(pA), s.Pin(pB), s.Pin(pSel), s.Pin(pOut)
		return []vbsim.Component{func(c *vbsim.Circuit) {
			if c.Get(sel) {
				c.Set(out, c.Get(b))
			} else {
				c.Set(out, c.Get(a))
			}
		}}
	},
}

// Mux returns a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(w string) vbsim.Part { return mux.NewPart(w) }

var dmux = &vbsim.PartSpec{
	Name:    "DMUX",
	Inputs:  vbsim.Inputs{pIn, pSel},
	Outputs: vbsim.Outputs{pA, pB},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		in, sel, a, b := s.Pin(pIn), s.Pin(pSel), s.Pin(pA), s.Pin(pB)
		return []vbsim.Component{func(c *vbsim.Circuit) {
			v := c.Get(in)
			c.Set(a, v && !c.Get(sel))
			c.Set(b, v && c.Get(sel))
		}}
	},
}

// DMux returns a demultiplexer.
//
//	Inputs: in, sel
//	Outputs: a, b
//	Function: if sel == 0 { a = in; b = 0 } else { a = 0; b = in }
//
func DMux(w string) vbsim.Part { return dmux.NewPart(w) }

// MuxN returns a N-bits Mux.
//
//	Inputs: a[bits], b[bits], sel
//	Outputs: out[bits]
//	Function: for i := range out { if sel == 0 { out[i] = a[i] } else { out[i] = b[i] } }
//
func MuxN(bits int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "MUX" + strconv.Itoa(bits),
		Inputs:  append(bus(bits, pA, pB), pSel),
		Outputs: bus(bits, pOut),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			a, b, sel := s.Bus(pA, bits), s.Bus(pB, bits), s.Pin(pSel)
			o := s.Bus(pOut, bits)
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					src := a
					if c.Get(sel) {
						src = b
					}
					for i := range o {
						c.Set(o[i], c.Get(src[i]))
					}
				}}
		}}).NewPart
}
