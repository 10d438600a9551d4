// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package model

import "github.com/pkg/errors"

// A Registrar records signals for tracing. vcd.Writer implements Registrar.
//
type Registrar interface {
	Register(scope []string, name string, width int, value func() uint64) error
}

// Trace registers the model signals with r.
//
// The clock and ports are registered in the top scope, then the clock, ports
// and internal signals are registered again in a scope named after the
// model, nested in the top scope.
//
func (m *Model) Trace(r Registrar) error {
	top := []string{TopScope}
	design := []string{TopScope, m.spec.Name}

	clk := func() uint64 { return m.clk }
	reg := func(scope []string, ps ...[]Port) error {
		if err := r.Register(scope, m.spec.Clock, 1, clk); err != nil {
			return err
		}
		for _, l := range ps {
			for _, p := range l {
				if err := r.Register(scope, p.Name, p.Width, m.valueFn(p.Name)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := reg(top, m.spec.Inputs, m.spec.Outputs); err != nil {
		return errors.Wrap(err, "trace "+m.spec.Name)
	}
	if err := reg(design, m.spec.Inputs, m.spec.Outputs, m.spec.Internals); err != nil {
		return errors.Wrap(err, "trace "+m.spec.Name)
	}
	return nil
}

func (m *Model) valueFn(name string) func() uint64 {
	s := m.outs[name]
	if s == nil {
		s = m.ins[name]
	}
	return func() uint64 { return s.v }
}
