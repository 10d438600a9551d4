// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Command clktick runs the F1 clock tick counter testbench. The counter value
// is shown on the board's LED bar.
//
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/iclabs/vbsim/bench"
	"github.com/iclabs/vbsim/internal/cli"
	"github.com/iclabs/vbsim/rtl"
)

var (
	opts cli.Options
	n    uint
)

func init() {
	log.SetFlags(0)
	log.SetPrefix(filepath.Base(os.Args[0]) + ": ")
	log.SetOutput(os.Stderr)
}

func init() {
	opts.Register(flag.CommandLine, "f1_fsm.vcd")
	flag.UintVar(&n, "n", bench.DefaultN, "counter modulus")
}

func clktick() int {
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		return cli.ExitError
	}
	if n == 0 || n > 0xff {
		log.Printf("invalid modulus %d", n)
		return cli.ExitError
	}
	return cli.Run(cli.Program{
		Title: "Lab 3: F1 FSM",
		Bench: bench.ClkTick{N: uint64(n)},
		Spec:  rtl.ClkTick,
	}, &opts)
}

func main() {
	os.Exit(clktick())
}
