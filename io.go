// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vbsim

import (
	"github.com/iclabs/vbsim/internal/hdl"
)

// IO parses a pin specification string and returns individual pin names in a
// slice, expanding bus declarations to individual pin names. For example:
//
//	IO("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
// IO panics if the specification is invalid.
//
func IO(spec string) []string {
	pins, err := hdl.ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// BusPinName returns the pin name for the n-th bit of the named bus.
//
//	BusPinName("addr", 3) // returns "addr[3]"
//
func BusPinName(bus string, n int) string {
	return hdl.BusPinName(bus, n)
}

// Int64 returns the state of the given pins as an int64. pins[0] is the lsb.
//
func (c *Circuit) Int64(pins []int) int64 {
	var out int64
	for bit, p := range pins {
		if c.Get(p) {
			out |= 1 << uint(bit)
		}
	}
	return out
}

// SetInt64 sets the given pins to the bits of v. pins[0] receives the lsb;
// higher bits of v that do not fit are dropped.
//
func (c *Circuit) SetInt64(pins []int, v int64) {
	for bit, p := range pins {
		c.Set(p, v&(1<<uint(bit)) != 0)
	}
}
