// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iclabs/vbsim"
	"github.com/pkg/errors"
)

func romSpec(name string, addrBits, dataBits int, data []uint64, ports ...string) *vbsim.PartSpec {
	mem := make([]uint64, 1<<uint(addrBits))
	copy(mem, data)
	var ins, outs []string
	for _, p := range ports {
		ins = append(ins, bus(addrBits, "addr"+p)...)
		outs = append(outs, bus(dataBits, "dout"+p)...)
	}
	return &vbsim.PartSpec{
		Name:    name + strconv.Itoa(len(mem)) + "x" + strconv.Itoa(dataBits),
		Inputs:  ins,
		Outputs: outs,
		Mount: func(s *vbsim.Socket) []vbsim.Component {
			var cs []vbsim.Component
			for _, p := range ports {
				addr, dout := s.Bus("addr"+p, addrBits), s.Bus("dout"+p, dataBits)
				cs = append(cs, func(c *vbsim.Circuit) {
					c.SetInt64(dout, int64(mem[c.Int64(addr)]))
				})
			}
			return cs
		}}
}

// ROM returns an asynchronous read-only memory of 2^addrBits words of dataBits
// bits. data is copied; missing words are 0.
//
//	Inputs: addr[addrBits]
//	Outputs: dout[dataBits]
//	Function: dout = data[addr]
//
func ROM(addrBits, dataBits int, data []uint64) vbsim.NewPartFn {
	return romSpec("ROM", addrBits, dataBits, data, "").NewPart
}

// DualROM returns a dual-port asynchronous read-only memory.
//
//	Inputs: addr1[addrBits], addr2[addrBits]
//	Outputs: dout1[dataBits], dout2[dataBits]
//	Function: dout1 = data[addr1]
//	          dout2 = data[addr2]
//
func DualROM(addrBits, dataBits int, data []uint64) vbsim.NewPartFn {
	return romSpec("DUALROM", addrBits, dataBits, data, "1", "2").NewPart
}

// ReadHex reads memory contents in the format of Verilog's $readmemh:
// whitespace separated hexadecimal words, "//" line comments, "/* */" block
// comments and "@addr" directives that move the load address. Underscores
// within numbers are ignored.
//
func ReadHex(r io.Reader) ([]uint64, error) {
	var (
		mem   []uint64
		addr  int
		block bool
		line  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		for len(text) > 0 {
			if block {
				i := strings.Index(text, "*/")
				if i < 0 {
					break
				}
				text, block = text[i+2:], false
				continue
			}
			words := text
			text = ""
			lc, bc := strings.Index(words, "//"), strings.Index(words, "/*")
			switch {
			case bc >= 0 && (lc < 0 || bc < lc):
				words, text, block = words[:bc], words[bc+2:], true
			case lc >= 0:
				words = words[:lc]
			}
			if err := parseHexWords(words, &mem, &addr, line); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read hex")
	}
	return mem, nil
}

func parseHexWords(text string, mem *[]uint64, addr *int, line int) error {
	for _, f := range strings.Fields(text) {
		if f[0] == '@' {
			a, err := strconv.ParseUint(f[1:], 16, 32)
			if err != nil {
				return errors.Errorf("line %d: invalid address %q", line, f)
			}
			*addr = int(a)
			continue
		}
		v, err := strconv.ParseUint(strings.ReplaceAll(f, "_", ""), 16, 64)
		if err != nil {
			return errors.Errorf("line %d: invalid value %q", line, f)
		}
		for len(*mem) <= *addr {
			*mem = append(*mem, 0)
		}
		(*mem)[*addr] = v
		*addr++
	}
	return nil
}

// LoadHex loads a $readmemh style memory file. See ReadHex.
//
func LoadHex(name string) ([]uint64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mem, err := ReadHex(f)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return mem, nil
}
