// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vbsim

import (
	"sort"

	"github.com/pkg/errors"
)

// a pin is identified by the part it belongs to and its name in that part's interface
type pin struct {
	p    int
	name string
}

const (
	typeInternal = iota
	typeInput
	typeOutput
)

// a wire is a named signal within a chip.
type wire struct {
	name  string
	typ   int
	src   *pin  // part output pin driving the wire
	sinks []pin // part input pins reading the wire
}

type wiring struct {
	spcs  []*PartSpec
	wires map[string]*wire
	order []string // wire creation order, for stable error messages
}

func newWiring(ins Inputs, outs Outputs, spcs []*PartSpec) *wiring {
	wr := &wiring{spcs: spcs, wires: make(map[string]*wire, len(ins)+len(outs)+cstCount)}
	for _, c := range []string{False, True, Clk} {
		wr.get(c).typ = typeInput
	}
	for _, in := range ins {
		wr.get(in).typ = typeInput
	}
	for _, out := range outs {
		wr.get(out).typ = typeOutput
	}
	return wr
}

func (wr *wiring) get(name string) *wire {
	w := wr.wires[name]
	if w == nil {
		w = &wire{name: name}
		wr.wires[name] = w
		wr.order = append(wr.order, name)
	}
	return w
}

func (wr *wiring) pinName(p pin) string {
	if p.p < 0 {
		return p.name
	}
	return wr.spcs[p.p].Name + "." + p.name
}

// addInput connects part input pin p to wire name.
//
func (wr *wiring) addInput(p pin, name string) {
	w := wr.get(name)
	w.sinks = append(w.sinks, p)
}

// addOutput connects part output pin p to wire name.
//
func (wr *wiring) addOutput(p pin, name string) error {
	prefix := wr.pinName(p) + ":" + name
	switch name {
	case False, True, Clk:
		return errors.New(prefix + ": output pin connected to constant " + name + " input")
	}
	w := wr.get(name)
	switch {
	case w.typ == typeInput:
		return errors.New(prefix + ": chip input pin used as output")
	case w.src != nil:
		return errors.New(prefix + ": output pin already used as output")
	}
	src := p
	w.src = &src
	return nil
}

// check verifies that all wires read by a part are driven and that internal
// wires driven by a part are used.
//
func (wr *wiring) check() error {
	for _, name := range wr.order {
		w := wr.wires[name]
		switch {
		case w.typ == typeInput:
		case w.src == nil && len(w.sinks) > 0:
			return errors.New("pin " + name + " not connected to any output")
		case w.typ == typeInternal && w.src != nil && len(w.sinks) == 0:
			return errors.New("pin " + name + " not connected to any input")
		}
	}
	return nil
}

// outputs returns the wire names driven by each part output pin.
//
func (wr *wiring) outputs() map[pin][]string {
	r := make(map[pin][]string)
	for _, name := range wr.order {
		if w := wr.wires[name]; w.src != nil {
			r[*w.src] = append(r[*w.src], name)
		}
	}
	// chip outputs first so that they get the pin numbers allocated by the
	// host chip and internal wires alias them.
	for p, ws := range r {
		sort.SliceStable(ws, func(i, j int) bool {
			return wr.wires[ws[i]].typ == typeOutput && wr.wires[ws[j]].typ != typeOutput
		})
		r[p] = ws
	}
	return r
}

// inputs returns the wire name read by each part input pin.
//
func (wr *wiring) inputs() map[pin]string {
	r := make(map[pin]string)
	for _, w := range wr.wires {
		for _, s := range w.sinks {
			r[s] = w.name
		}
	}
	return r
}
