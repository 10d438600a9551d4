// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"math"

	"github.com/iclabs/vbsim"
	hl "github.com/iclabs/vbsim/hwlib"
	"github.com/iclabs/vbsim/model"
	"github.com/pkg/errors"
)

// SineTableSize is the number of entries in the sine ROM.
//
const SineTableSize = 256

// SineTable returns one period of a cosine wave sampled over 256 addresses,
// scaled to [0, 254]: 127 + 127*cos(2*pi*i/256).
//
func SineTable() []uint64 {
	t := make([]uint64, SineTableSize)
	for i := range t {
		t[i] = uint64(math.Round(127 + 127*math.Cos(2*math.Pi*float64(i)/SineTableSize)))
	}
	return t
}

// SineGen returns the sine generator design. rom holds the wave samples, at
// most 256 8 bits words; a nil rom uses SineTable.
//
//	Inputs: rst, en, incr[8], offset[8]
//	Outputs: dout1[8], dout2[8]
//	Internals: addr[8]
//	Function: on rising clk: if rst { addr = 0 } else if en { addr += incr }
//	          dout1 = rom[addr]
//	          dout2 = rom[addr+offset]
//
func SineGen(rom []uint64) (model.Spec, error) {
	if rom == nil {
		rom = SineTable()
	}
	if len(rom) > SineTableSize {
		return model.Spec{}, errors.Errorf("sine rom: %d words, at most %d", len(rom), SineTableSize)
	}
	for i, v := range rom {
		if v > 0xff {
			return model.Spec{}, errors.Errorf("sine rom: word %d: value %#x does not fit in 8 bits", i, v)
		}
	}

	sg, err := vbsim.Chip("sinegen", "rst, en, incr[8], offset[8]", "dout1[8], dout2[8], addr[8]",
		// phase accumulator
		hl.AdderN(8)("a=addr, b=incr, out=next"),
		hl.MuxN(8)("a=next, b=false, sel=rst, out=d"),
		hl.Or("a=en, b=rst, out=load"),
		hl.RegisterN(8)("in=d, load=load, out=addr"),
		// second read port
		hl.AdderN(8)("a=addr, b=offset, out=addr2"),
		hl.DualROM(8, 8, rom)("addr1=addr, addr2=addr2, dout1=dout1, dout2=dout2"),
	)
	if err != nil {
		return model.Spec{}, errors.Wrap(err, "sinegen")
	}
	return model.Spec{
		Name:  "sinegen",
		Clock: "clk",
		Inputs: []model.Port{
			{Name: "rst", Width: 1},
			{Name: "en", Width: 1},
			{Name: "incr", Width: 8},
			{Name: "offset", Width: 8},
		},
		Outputs: []model.Port{
			{Name: "dout1", Width: 8},
			{Name: "dout2", Width: 8},
		},
		Internals: []model.Port{
			{Name: "addr", Width: 8},
		},
		Part: sg,
	}, nil
}
