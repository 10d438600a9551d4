// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Command sinegen runs the sine generator testbench.
//
// The board's rotary encoder sets the phase offset of the second output.
// Both outputs are plotted on the board.
//
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/iclabs/vbsim/bench"
	"github.com/iclabs/vbsim/hwlib"
	"github.com/iclabs/vbsim/internal/cli"
	"github.com/iclabs/vbsim/model"
	"github.com/iclabs/vbsim/rtl"
)

var (
	opts cli.Options
	incr uint
	rom  string
)

func init() {
	log.SetFlags(0)
	log.SetPrefix(filepath.Base(os.Args[0]) + ": ")
	log.SetOutput(os.Stderr)
}

func init() {
	opts.Register(flag.CommandLine, "sinegen.vcd")
	flag.UintVar(&incr, "incr", bench.DefaultIncr, "phase increment")
	flag.StringVar(&rom, "rom", "", "sine ROM `file` in $readmemh format. Defaults to a built-in table")
}

func sinegen() int {
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		return cli.ExitError
	}
	if incr == 0 || incr > 0xff {
		log.Printf("invalid phase increment %d", incr)
		return cli.ExitError
	}
	var data []uint64
	if rom != "" {
		var err error
		if data, err = hwlib.LoadHex(rom); err != nil {
			log.Print(err)
			return cli.ExitError
		}
	}
	return cli.Run(cli.Program{
		Title: "Lab 2: SineGen",
		Bench: bench.SineGen{Incr: uint64(incr)},
		Spec:  func() (model.Spec, error) { return rtl.SineGen(data) },
	}, &opts)
}

func main() {
	os.Exit(sinegen())
}
