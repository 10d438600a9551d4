// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest_test

import (
	"testing"

	hw "github.com/iclabs/vbsim"
	hl "github.com/iclabs/vbsim/hwlib"
	"github.com/iclabs/vbsim/hwtest"
)

func TestComparePart(t *testing.T) {
	or, err := hw.Chip("custom_or", "a,b", "out",
		hl.Nand("a=a, b=a, out=notA"),
		hl.Nand("a=b, b=b, out=notB"),
		hl.Nand("a=notA, b=notB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.Or, or)
}

func TestComparePart_clocked(t *testing.T) {
	reg2, err := hw.Chip("custom_reg2", "in[2], load", "out[2]",
		hl.Mux("a=out[0], b=in[0], sel=load, out=d0"),
		hl.Mux("a=out[1], b=in[1], sel=load, out=d1"),
		hl.DFF("in=d0, out=out[0]"),
		hl.DFF("in=d1, out=out[1]"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.RegisterN(2), reg2)
}
