// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package cli implements the command line shared by the testbench programs.
//
package cli

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/iclabs/vbsim/bench"
	"github.com/iclabs/vbsim/board"
	"github.com/iclabs/vbsim/board/audio"
	"github.com/iclabs/vbsim/board/serial"
	"github.com/iclabs/vbsim/board/term"
	"github.com/iclabs/vbsim/board/window"
	"github.com/iclabs/vbsim/model"
	"github.com/iclabs/vbsim/script"
	"github.com/iclabs/vbsim/vcd"
	"github.com/pkg/errors"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitBoard = -1
)

// Board kinds.
const (
	Serial   = "serial"
	Term     = "term"
	Window   = "window"
	Headless = "headless"
)

// progress is the number of cycles between progress lines in verbose mode.
const progress = 100000

// Options holds the command line options common to all programs.
//
type Options struct {
	Board   string
	Port    string
	Cfg     string
	VCD     string
	Depth   int
	Cycles  int
	Workers int
	Script  string
	Audio   bool
	Value   int
	Keys    string
	Verbose bool
}

// Register registers the common flags in fs. vcdName is the default name of
// the waveform file.
//
func (o *Options) Register(fs *flag.FlagSet, vcdName string) {
	fs.StringVar(&o.Board, "board", Serial, "board `kind`: serial, term, window or headless")
	fs.StringVar(&o.Port, "port", "", "serial port of the board. Read from the -cfg file if empty")
	fs.StringVar(&o.Cfg, "cfg", serial.ConfigFile, "board configuration `file`")
	fs.StringVar(&o.VCD, "vcd", vcdName, "waveform output `file`. No waveform is written if empty")
	fs.IntVar(&o.Depth, "depth", vcd.AllLevels, "waveform scope depth")
	fs.IntVar(&o.Cycles, "cycles", bench.DefaultMaxCycles, "maximum number of clock cycles")
	fs.IntVar(&o.Workers, "workers", 1, "number of simulation worker goroutines")
	fs.StringVar(&o.Script, "script", "", "Lua stimulus script `file`")
	fs.BoolVar(&o.Audio, "audio", false, "play the first plot channel as sound")
	fs.IntVar(&o.Value, "value", 0, "rotary encoder value of the headless board")
	fs.StringVar(&o.Keys, "keys", "", "headless board key presses, as `cycle:key,...`")
	fs.BoolVar(&o.Verbose, "v", false, "verbose output")
}

// A Program describes a testbench program.
//
type Program struct {
	// Title is shown on the board.
	Title string
	// Bench drives the model.
	Bench bench.Testbench
	// Spec returns the model specification.
	Spec func() (model.Spec, error)
}

// Run runs the program with the given options and returns the process exit
// code. It stops on interrupt.
//
func Run(p Program, o *Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, p, o)
}

func run(ctx context.Context, p Program, o *Options) int {
	cfg, done, err := config(p, o)
	if err != nil {
		log.Print(err)
		return ExitError
	}
	defer done()

	var st bench.Status
	if o.Board == Window {
		err = window.Run(p.Title, func(w *window.Board) error {
			cfg.Board = func() (board.Board, error) { return withAudio(w, o) }
			st, err = bench.Run(ctx, cfg)
			return err
		})
	} else {
		st, err = bench.Run(ctx, cfg)
	}
	if err != nil {
		log.Print(err)
		if _, ok := err.(*bench.BoardError); ok {
			return ExitBoard
		}
		return ExitError
	}
	if o.Verbose {
		log.Print(st)
	}
	return ExitOK
}

// config returns the bench configuration for p. done releases the resources
// held by the configuration.
//
func config(p Program, o *Options) (cfg bench.Config, done func(), err error) {
	done = func() {}
	cfg = bench.Config{
		Title:     p.Title,
		MaxCycles: o.Cycles,
		Bench:     p.Bench,
		Model: func() (bench.Model, error) {
			spec, err := p.Spec()
			if err != nil {
				return nil, err
			}
			m, err := model.New(spec, model.Workers(o.Workers))
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	}
	if o.Verbose {
		cfg.Log = log.Default()
		cfg.Progress = progress
	}
	if o.VCD != "" {
		cfg.Trace = func(m bench.Model) (bench.Recorder, error) {
			return trace(m, o.VCD, o.Depth)
		}
	}

	switch o.Board {
	case Serial, Term, Window:
	case Headless:
		keys, err := board.ParseKeys(o.Keys)
		if err != nil {
			return cfg, done, err
		}
		h := &board.Headless{Val: o.Value, Keys: keys}
		if o.Verbose {
			h.Log = log.Default()
		}
		cfg.Board = func() (board.Board, error) { return withAudio(h, o) }
	default:
		return cfg, done, errors.Errorf("unknown board kind %q", o.Board)
	}
	if o.Board == Serial || o.Board == Term {
		cfg.Board = func() (board.Board, error) {
			b, err := open(o)
			if err != nil {
				return nil, err
			}
			return withAudio(b, o)
		}
	}

	if o.Script != "" {
		s, err := script.Load(o.Script)
		if err != nil {
			return cfg, done, err
		}
		cfg.Bench = bench.Scripted{Testbench: p.Bench, Script: s}
		done = func() { s.Close() }
	}
	return cfg, done, nil
}

func open(o *Options) (board.Board, error) {
	if o.Board == Term {
		b, err := term.Open()
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	port := o.Port
	if port == "" {
		var err error
		if port, err = serial.ReadConfig(o.Cfg); err != nil {
			return nil, err
		}
	}
	b, err := serial.Open(port, serial.DefaultBaud)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func withAudio(b board.Board, o *Options) (board.Board, error) {
	if !o.Audio {
		return b, nil
	}
	m, err := audio.Open(b, audio.DefaultSampleRate)
	if err != nil {
		b.Close()
		return nil, err
	}
	return m, nil
}

type tracer interface {
	Trace(r model.Registrar) error
}

func trace(m bench.Model, name string, depth int) (bench.Recorder, error) {
	t, ok := m.(tracer)
	if !ok {
		return nil, errors.New("model does not support tracing")
	}
	w, err := vcd.Create(name, vcd.Depth(depth))
	if err != nil {
		return nil, err
	}
	if err = t.Trace(w); err != nil {
		w.Close()
		return nil, errors.Wrap(err, name)
	}
	return w, nil
}
