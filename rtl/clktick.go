// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"github.com/iclabs/vbsim"
	hl "github.com/iclabs/vbsim/hwlib"
	"github.com/iclabs/vbsim/model"
	"github.com/pkg/errors"
)

// ClkTick returns the clock tick counter design: a modulo N counter.
//
//	Inputs: N[8], rst, en
//	Outputs: dout[8]
//	Internals: tick
//	Function: on rising clk: if rst { dout = 0 } else if en { dout = (dout + 1) % N }
//	          tick = en && dout+1 == N
//
func ClkTick() (model.Spec, error) {
	ct, err := vbsim.Chip("f1_clktick", "N[8], rst, en", "dout[8], tick",
		hl.IncN(8)("in=dout, out=inc"),
		hl.EqualN(8)("a=inc, b=N, out=wrap"),
		hl.And("a=wrap, b=en, out=tick"),
		hl.Or("a=wrap, b=rst, out=clr"),
		hl.MuxN(8)("a=inc, b=false, sel=clr, out=d"),
		hl.Or("a=en, b=rst, out=load"),
		hl.RegisterN(8)("in=d, load=load, out=dout"),
	)
	if err != nil {
		return model.Spec{}, errors.Wrap(err, "f1_clktick")
	}
	return model.Spec{
		Name:  "f1_clktick",
		Clock: "clk",
		Inputs: []model.Port{
			{Name: "N", Width: 8},
			{Name: "rst", Width: 1},
			{Name: "en", Width: 1},
		},
		Outputs: []model.Port{
			{Name: "dout", Width: 8},
		},
		Internals: []model.Port{
			{Name: "tick", Width: 1},
		},
		Part: ct,
	}, nil
}
