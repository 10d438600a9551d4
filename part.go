// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vbsim

import (
	"github.com/iclabs/vbsim/internal/hdl"
	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set states. It is
// called once per simulation step and must Set all the output pins it drives.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query
// the socket for assigned pin numbers and return closures around
// these pin numbers.
//
// For example, a Not gate can be defined like this:
//
//	not := &PartSpec{
//		Name: "Not",
//		Inputs: IO("in"),
//		Outputs: IO("out"),
//		Mount: func (s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func (c *Circuit) { c.Set(out, !c.Get(in)) },
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// Inputs is a list of input pin names. Use IO to build one from a pin
// specification.
//
type Inputs []string

// Outputs is a list of output pin names.
//
type Outputs []string

// A PartSpec wraps a part specification (its blueprint).
//
// Custom parts are implemented by creating a PartSpec:
//
//	notSpec := &vbsim.PartSpec{
//		Name: "Not",
//		Inputs: vbsim.IO("in"),
//		Outputs: vbsim.IO("out"),
//		Mount: func (s *vbsim.Socket) []vbsim.Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []vbsim.Component{
//				func (c *vbsim.Circuit) { c.Set(out, !c.Get(in)) },
//			}
//		}}
//
// Then get a NewPartFn for that PartSpec:
//
//	var notGate = notSpec.NewPart
//
// Which can the be used when building other chips:
//
//	c, _ := Chip("dummy", "a, b", "c, d",
//		notGate("in=a, out=c"),
//		notGate("in=b, out=d"),
//	)
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Must be distinct pin names.
	// Use the IO() function to expand an input description like
	// "a, b, bus[2]" to []string{"a", "b", "bus[0]", "bus[1]"}
	Inputs Inputs
	// Output pin names. Must be distinct pin names.
	Outputs Outputs
	// Mount function (see MountFn).
	Mount MountFn
}

// A Connection connects a part pin PP to one or more chip wires CP. Only
// output pins can be connected to more than one wire.
//
type Connection struct {
	PP string
	CP []string
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// See ParseConnections for the syntax of the connection string. NewPart
// panics on syntax errors.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := p.ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, conns}
}

// ParseConnections parses a connection configuration string of the form
// "pp=cp, ..." where pp is a pin of p and cp a wire name in the host chip.
//
// Both sides accept a single pin "a", an indexed bus pin "a[2]" or a bus
// range "a[0..3]". A bare name on the part side that matches a bus of p
// expands to the whole bus; the same bare name on the chip side then expands
// to a bus of the same width:
//
//	"in=addr"              // in[0..7]=addr[0..7] if in is an 8 bits bus
//	"a[0..3]=x[4..7]"      // many to many
//	"b=false"              // all pins of bus b grounded
//	"out=x, out=y[0..1]"   // an output can drive several wires
//
func (p *PartSpec) ParseConnections(connections string) ([]Connection, error) {
	asg, err := hdl.ParseConnections(connections)
	if err != nil {
		return nil, err
	}
	pins := make(map[string]bool, len(p.Inputs)+len(p.Outputs))
	for _, n := range p.Inputs {
		pins[n] = true
	}
	for _, n := range p.Outputs {
		pins[n] = true
	}

	var conns []Connection
	for _, a := range asg {
		ks := expandPartPin(a.LHS, pins)
		vs := expandWire(a.RHS, len(ks))
		switch {
		case len(ks) == len(vs):
			for i := range ks {
				conns = append(conns, Connection{ks[i], []string{vs[i]}})
			}
		case len(vs) == 1:
			for _, k := range ks {
				conns = append(conns, Connection{k, vs})
			}
		case len(ks) == 1:
			conns = append(conns, Connection{ks[0], vs})
		default:
			return nil, errors.Errorf("pin count mismatch in connection %s=%s", a.LHS, a.RHS)
		}
	}
	return conns, nil
}

func expandPartPin(p hdl.Pin, pins map[string]bool) []string {
	if p.IsBus() {
		return expandRange(p)
	}
	if pins[p.Name] || !pins[BusPinName(p.Name, 0)] {
		return []string{p.Name}
	}
	var out []string
	for i := 0; pins[BusPinName(p.Name, i)]; i++ {
		out = append(out, BusPinName(p.Name, i))
	}
	return out
}

func expandWire(p hdl.Pin, width int) []string {
	if p.IsBus() {
		return expandRange(p)
	}
	if width <= 1 || isConstant(p.Name) {
		return []string{p.Name}
	}
	out := make([]string, width)
	for i := range out {
		out[i] = BusPinName(p.Name, i)
	}
	return out
}

func expandRange(p hdl.Pin) []string {
	out := make([]string, 0, p.End-p.Start+1)
	for i := p.Start; i <= p.End; i++ {
		out = append(out, BusPinName(p.Name, i))
	}
	return out
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a host
// chip.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a convenience wrapper for []Part.
//
type Parts []Part
