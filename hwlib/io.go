// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/iclabs/vbsim"
)

// Input creates a function based input.
//
//	Outputs: out
//	Function: out = f()
//
func Input(f func() bool) vbsim.NewPartFn {
	p := &vbsim.PartSpec{
		Name:    "INPUT",
		Outputs: vbsim.Outputs{pOut},
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			pin := s.Pin(pOut)
			return []vbsim.Component{
				func(c *vbsim.Circuit) {
					c.Set(pin, f())
				},
			}
		},
	}
	return p.NewPart
}

// Output creates an output or probe. The fn function is
// called with the named pin state on every circuit update.
//
//	Inputs: in
//	Function: f(in)
//
func Output(f func(bool)) vbsim.NewPartFn {
	p := &vbsim.PartSpec{
		Name:   "OUTPUT",
		Inputs: vbsim.Inputs{pIn},
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			in := s.Pin(pIn)
			return []vbsim.Component{
				func(c *vbsim.Circuit) { f(c.Get(in)) },
			}
		},
	}
	return p.NewPart
}

// InputN creates an input bus of the given bits size. Bits of the value
// returned by f above the bus width are ignored.
//
//	Outputs: out[bits]
//	Function: out = f()
//
func InputN(bits int, f func() int64) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:    "INPUT" + strconv.Itoa(bits),
		Outputs: bus(bits, pOut),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			pins := s.Bus(pOut, bits)
			return []vbsim.Component{func(c *vbsim.Circuit) {
				c.SetInt64(pins, f())
			}}
		}}).NewPart
}

// OutputN creates an output bus of the given bits size.
//
//	Inputs: in[bits]
//	Function: f(in)
//
func OutputN(bits int, f func(int64)) vbsim.NewPartFn {
	return (&vbsim.PartSpec{
		Name:   "OUTPUT" + strconv.Itoa(bits),
		Inputs: bus(bits, pIn),
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			pins := s.Bus(pIn, bits)
			return []vbsim.Component{func(c *vbsim.Circuit) {
				f(c.Int64(pins))
			}}
		}}).NewPart
}

// Finish creates a part that ends the simulation when its input is high, the
// way $finish does in Verilog. See Circuit.Finished.
//
//	Inputs: in
//	Function: if in { finish() }
//
func Finish(w string) vbsim.Part { return finish.NewPart(w) }

var finish = &vbsim.PartSpec{
	Name:   "FINISH",
	Inputs: vbsim.Inputs{pIn},
	Mount: func(s *vbsim.Socket) []vbsim.Component {
		in := s.Pin(pIn)
		return []vbsim.Component{
			func(c *vbsim.Circuit) {
				if c.Get(in) {
					c.Finish()
				}
			},
		}
	},
}
