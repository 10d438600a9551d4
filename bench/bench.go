// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package bench implements the testbench driver loop: it clocks a model cycle
// by cycle, records a waveform of each half cycle, and forwards the model
// outputs to a display board until the model finishes, the quit key is
// pressed or the cycle limit is reached.
//
package bench

import (
	"context"
	"io"
	"log"
	"strconv"

	"github.com/iclabs/vbsim/board"
	"github.com/pkg/errors"
)

// Defaults for Config.
const (
	DefaultClock     = "clk"
	DefaultMaxCycles = 1000000
	DefaultQuitKey   = 'q'
)

// A Model is a clocked hardware model with named signals.
//
type Model interface {
	// Set sets an input value, seen by the model on the next call to Eval.
	Set(name string, v uint64)
	// Get returns the value of a signal.
	Get(name string) uint64
	// Eval evaluates the model.
	Eval() error
	// Finished returns true once the model requested the end of the
	// simulation.
	Finished() bool
	Close() error
}

// A Recorder records a snapshot of the model signals at increasing
// timestamps.
//
type Recorder interface {
	Dump(t uint64) error
	Close() error
}

// A Testbench drives the inputs of a specific model and displays its
// outputs.
//
type Testbench interface {
	// Init sets the initial input values.
	Init(m Model)
	// Stimulus is called at the start of each cycle, before the clock edges.
	Stimulus(cycle int, m Model, b board.Board) error
	// Forward is called after both clock edges of a cycle.
	Forward(cycle int, m Model, b board.Board)
}

// Config configures a testbench run.
//
type Config struct {
	// Title is shown on the board.
	Title string
	// Clock is the name of the clock input. Defaults to DefaultClock.
	Clock string
	// MaxCycles is the maximum number of cycles to run. Defaults to
	// DefaultMaxCycles.
	MaxCycles int
	// QuitKey is the board key that ends the run. Defaults to DefaultQuitKey.
	QuitKey rune
	// Progress is the number of cycles between two progress log lines. Zero
	// disables progress logging.
	Progress int

	Bench Testbench

	// Board opens the display board.
	Board func() (board.Board, error)
	// Model creates the model.
	Model func() (Model, error)
	// Trace creates the waveform recorder for the given model. If nil, no
	// waveform is recorded.
	Trace func(m Model) (Recorder, error)

	// Log receives start and stop messages. Defaults to a discarding logger.
	Log *log.Logger
}

// Status is the termination status of a run.
//
type Status int

// Run statuses.
const (
	Running       Status = iota // not terminated; returned along with an error
	Finished                    // the model finished
	QuitRequested               // the quit key was pressed or the run was canceled
	Exhausted                   // the cycle limit was reached
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	case QuitRequested:
		return "quit requested"
	case Exhausted:
		return "cycle limit reached"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// BoardError is returned by Run when the board cannot be opened.
//
type BoardError struct {
	Err error
}

func (e *BoardError) Error() string { return "open board: " + e.Err.Error() }

// Cause returns the underlying error.
//
func (e *BoardError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
//
func (e *BoardError) Unwrap() error { return e.Err }

type nopRecorder struct{}

func (nopRecorder) Dump(uint64) error { return nil }
func (nopRecorder) Close() error      { return nil }

func (cfg *Config) defaults() {
	if cfg.Clock == "" {
		cfg.Clock = DefaultClock
	}
	if cfg.MaxCycles <= 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	if cfg.QuitKey == 0 {
		cfg.QuitKey = DefaultQuitKey
	}
	if cfg.Log == nil {
		cfg.Log = log.New(io.Discard, "", 0)
	}
	if cfg.Trace == nil {
		cfg.Trace = func(Model) (Recorder, error) { return nopRecorder{}, nil }
	}
}

// Run runs a testbench.
//
// The board is opened first; if that fails, Run returns a *BoardError and
// neither the model nor the recorder are created. Then the model and the
// recorder are created and the testbench inputs initialized. The clock input
// starts high.
//
// Each cycle i runs the testbench stimulus, then two half cycles, each one
// recording a snapshot at timestamp 2*i+e before inverting the clock and
// evaluating the model. The testbench then forwards outputs to the board. The
// run ends after the first cycle where the model has finished, the quit key
// was pressed or ctx is done, or after MaxCycles cycles.
//
// On return, the board, the recorder and the model are closed in this order.
// This is not the reverse of the acquisition order: the board goes first so
// that the display stops before the waveform file is finalized, and the
// model goes last since the recorder samples it until closed. If an error
// occurs, the returned status is Running.
//
func Run(ctx context.Context, cfg Config) (st Status, err error) {
	cfg.defaults()
	if cfg.Bench == nil || cfg.Board == nil || cfg.Model == nil {
		return Running, errors.New("bench: incomplete configuration")
	}

	b, err := cfg.Board()
	if err != nil {
		return Running, &BoardError{err}
	}
	var (
		m   Model
		rec Recorder
		i   int
	)
	defer func() {
		if err = release(err, b, rec, m); err != nil {
			st = Running
		} else {
			cfg.Log.Printf("%s: %v after %d cycles", cfg.Title, st, i)
		}
	}()

	b.Header(cfg.Title)
	if m, err = cfg.Model(); err != nil {
		return Running, errors.Wrap(err, "create model")
	}
	if rec, err = cfg.Trace(m); err != nil {
		return Running, errors.Wrap(err, "create recorder")
	}
	cfg.Bench.Init(m)
	clk := uint64(1)
	m.Set(cfg.Clock, clk)
	cfg.Log.Printf("%s: started", cfg.Title)

	for ; i < cfg.MaxCycles; i++ {
		if err = cfg.Bench.Stimulus(i, m, b); err != nil {
			return Running, errors.Wrapf(err, "cycle %d: stimulus", i)
		}
		for e := 0; e < 2; e++ {
			if err = rec.Dump(uint64(2*i + e)); err != nil {
				return Running, errors.Wrapf(err, "cycle %d: record", i)
			}
			clk ^= 1
			m.Set(cfg.Clock, clk)
			if err = m.Eval(); err != nil {
				return Running, errors.Wrapf(err, "cycle %d: eval", i)
			}
		}
		cfg.Bench.Forward(i, m, b)
		if err = b.Err(); err != nil {
			return Running, errors.Wrapf(err, "cycle %d: board", i)
		}
		if cfg.Progress > 0 && (i+1)%cfg.Progress == 0 {
			cfg.Log.Printf("%s: cycle %d", cfg.Title, i+1)
		}
		if m.Finished() {
			i++
			return Finished, nil
		}
		if k, ok := b.Key(); ok && k == cfg.QuitKey {
			i++
			return QuitRequested, nil
		}
		select {
		case <-ctx.Done():
			i++
			return QuitRequested, nil
		default:
		}
	}
	return Exhausted, nil
}

// release closes the run resources and returns the first error.
//
func release(err error, b board.Board, rec Recorder, m Model) error {
	if cerr := b.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "close board")
	}
	if rec != nil {
		if cerr := rec.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close recorder")
		}
	}
	if m != nil {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close model")
		}
	}
	return err
}
