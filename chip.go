// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vbsim

import (
	"github.com/iclabs/vbsim/internal/hdl"
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec             // PartSpec for this chip
	parts    []*PartSpec // sub parts
	ins      map[pin]string
	outs     map[pin][]string
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component

	subs := make([]*Socket, len(c.parts))
	for i := range c.parts {
		subs[i] = newSocket(s.c)
	}
	// outputs first: a part output driving several wires gets a single pin,
	// and all the wires alias it unless the host chip already assigned them.
	for i, p := range c.parts {
		sub := subs[i]
		for _, k := range p.Outputs {
			ws := c.outs[pin{i, k}]
			if len(ws) == 0 {
				sub.m[k] = s.c.allocPin()
				continue
			}
			n := s.PinOrNew(ws[0])
			sub.m[k] = n
			for _, w := range ws[1:] {
				if m, ok := s.m[w]; ok && m != n {
					updaters = append(updaters, buffer(n, m))
					continue
				}
				s.m[w] = n
			}
		}
	}
	for i, p := range c.parts {
		sub := subs[i]
		for _, k := range p.Inputs {
			if w, ok := c.ins[pin{i, k}]; ok {
				sub.m[k] = s.PinOrNew(w)
			} else {
				// unconnected inputs are grounded.
				sub.m[k] = cstFalse
			}
		}
	}
	for i, p := range c.parts {
		updaters = append(updaters, p.Mount(subs[i])...)
	}
	return updaters
}

func buffer(in, out int) Component {
	return func(c *Circuit) { c.Set(out, c.Get(in)) }
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// A XOR gate could be created like this:
//
//	xor, err := vbsim.Chip(
//		"XOR",
//		"a, b",
//		"out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := vbsim.Chip(
//		"XNOR",
//		"a, b",
//		"out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
// Part input pins left unconnected are grounded.
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := hdl.ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" inputs")
	}
	outs, err := hdl.ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" outputs")
	}

	spcs := make([]*PartSpec, len(parts))
	for pnum := range parts {
		spcs[pnum] = parts[pnum].PartSpec
	}
	wr := newWiring(ins, outs, spcs)

	for pnum, p := range parts {
		sp := p.PartSpec
		isIn := make(map[string]bool, len(sp.Inputs))
		for _, k := range sp.Inputs {
			isIn[k] = true
		}
		isOut := make(map[string]bool, len(sp.Outputs))
		for _, k := range sp.Outputs {
			isOut[k] = true
		}
		seen := make(map[string]bool)
		for _, cn := range p.Conns {
			pp := pin{pnum, cn.PP}
			switch {
			case isIn[cn.PP]:
				if seen[cn.PP] || len(cn.CP) > 1 {
					return nil, errors.New(sp.Name + " input pin " + cn.PP + " connected to more than one output")
				}
				seen[cn.PP] = true
				wr.addInput(pp, cn.CP[0])
			case isOut[cn.PP]:
				for _, w := range cn.CP {
					if err = wr.addOutput(pp, w); err != nil {
						return nil, err
					}
				}
			default:
				return nil, errors.New("invalid pin name " + cn.PP + " for part " + sp.Name)
			}
		}
	}

	if err = wr.check(); err != nil {
		return nil, err
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts: spcs,
		ins:   wr.inputs(),
		outs:  wr.outputs(),
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
