// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/iclabs/vbsim"
)

var dff = &vbsim.PartSpec{
	Name:    "DFF",
	Inputs:  vbsim.Inputs{pIn},
	Outputs: vbsim.Outputs{pOut},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		var curOut bool
		return []vbsim.Component{
			func(c *vbsim.Circuit) {
				if c.Rising() {
					curOut = c.Get(in)
				}
				c.Set(out, curOut)
			}}
	}}

// DFF returns a data flip flop triggered on the rising edge of the circuit
// clock.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) vbsim.Part { return dff.NewPart(w) }

// RegisterN returns a N-bits register with load enable, triggered on the
// rising edge of the circuit clock. Its initial value is 0.
//
//	Inputs: in[bits], load
//	Outputs: out[bits]
//	Function: if load(t-1) { out(t) = in(t-1) } else { out(t) = out(t-1) }
//
func RegisterN(bits int) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "REGISTER" + strconv.Itoa(bits),
		Inputs:  append(bus(bits, pIn), pLoad),
		Outputs: bus(bits, pOut),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			in, load, out := s.Bus(pIn, bits), s.Pin(pLoad), s.Bus(pOut, bits)
			cur := make([]bool, bits)
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					if c.Rising() && c.Get(load) {
						for i, p := range in {
							cur[i] = c.Get(p)
						}
					}
					for i, p := range out {
						c.Set(p, cur[i])
					}
				}}
		}}).NewPart
}
