// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package bench_test

import (
	"context"
	"strings"
	"testing"

	"github.com/iclabs/vbsim/bench"
	"github.com/iclabs/vbsim/board"
	"github.com/pkg/errors"
)

// events is a shared call log.
type events struct {
	t      *testing.T
	log    []string
	closed map[string]bool
}

func (e *events) add(who, what string) {
	if e.closed[who] {
		e.t.Errorf("%s.%s called after Close", who, what)
	}
	if what == "Close" {
		if e.closed == nil {
			e.closed = make(map[string]bool)
		}
		e.closed[who] = true
	}
	e.log = append(e.log, who+"."+what)
}

type fakeModel struct {
	ev      *events
	vals    map[string]uint64
	finish  int // finish after that many Eval calls if > 0
	evals   int
	evalErr error
	// input values seen at each Eval
	seen []map[string]uint64
}

func (m *fakeModel) Set(name string, v uint64) {
	m.ev.add("model", "Set")
	m.vals[name] = v
}

func (m *fakeModel) Get(name string) uint64 {
	m.ev.add("model", "Get")
	return m.vals[name]
}

func (m *fakeModel) Eval() error {
	m.ev.add("model", "Eval")
	if m.evalErr != nil {
		return m.evalErr
	}
	m.evals++
	s := make(map[string]uint64, len(m.vals))
	for k, v := range m.vals {
		s[k] = v
	}
	m.seen = append(m.seen, s)
	return nil
}

func (m *fakeModel) Finished() bool {
	m.ev.add("model", "Finished")
	return m.finish > 0 && m.evals >= m.finish
}

func (m *fakeModel) Close() error {
	m.ev.add("model", "Close")
	return nil
}

type fakeBoard struct {
	ev    *events
	value func(cycle int) int
	keys  map[int]rune
	errAt int // Err fails from that cycle if > 0
	cycle int
	title string
	plots [][2]int // cycle, value
	bars  []uint8
}

func (b *fakeBoard) Header(title string) { b.ev.add("board", "Header"); b.title = title }
func (b *fakeBoard) Value() int {
	b.ev.add("board", "Value")
	if b.value == nil {
		return 0
	}
	return b.value(b.cycle)
}
func (b *fakeBoard) Plot(v, min, max int) {
	b.ev.add("board", "Plot")
	b.plots = append(b.plots, [2]int{b.cycle, v})
}
func (b *fakeBoard) Bar(v uint8) { b.ev.add("board", "Bar"); b.bars = append(b.bars, v) }
func (b *fakeBoard) Cycle(n int) {
	b.ev.add("board", "Cycle")
	if n != b.cycle {
		b.ev.t.Errorf("Cycle(%d), expected %d", n, b.cycle)
	}
}
func (b *fakeBoard) Key() (rune, bool) {
	b.ev.add("board", "Key")
	k, ok := b.keys[b.cycle]
	b.cycle++
	return k, ok
}
func (b *fakeBoard) Err() error {
	b.ev.add("board", "Err")
	if b.errAt > 0 && b.cycle >= b.errAt {
		return errors.New("device unplugged")
	}
	return nil
}
func (b *fakeBoard) Close() error { b.ev.add("board", "Close"); return nil }

type fakeRecorder struct {
	ev   *events
	m    *fakeModel
	ts   []uint64
	clks []uint64 // clock value at each Dump
	err  error
}

func (r *fakeRecorder) Dump(t uint64) error {
	r.ev.add("rec", "Dump")
	if r.err != nil {
		return r.err
	}
	r.ts = append(r.ts, t)
	r.clks = append(r.clks, r.m.vals["clk"])
	return nil
}

func (r *fakeRecorder) Close() error { r.ev.add("rec", "Close"); return nil }

type fixture struct {
	ev  *events
	m   *fakeModel
	b   *fakeBoard
	rec *fakeRecorder
	cfg bench.Config
}

func newFixture(t *testing.T, tb bench.Testbench) *fixture {
	ev := &events{t: t}
	f := &fixture{
		ev: ev,
		m:  &fakeModel{ev: ev, vals: make(map[string]uint64)},
		b:  &fakeBoard{ev: ev},
	}
	f.rec = &fakeRecorder{ev: ev, m: f.m}
	f.cfg = bench.Config{
		Title:     "test",
		MaxCycles: 10,
		Bench:     tb,
		Board:     func() (board.Board, error) { return f.b, nil },
		Model:     func() (bench.Model, error) { return f.m, nil },
		Trace:     func(bench.Model) (bench.Recorder, error) { return f.rec, nil },
	}
	return f
}

func (f *fixture) run(t *testing.T) (bench.Status, error) {
	t.Helper()
	st, err := bench.Run(context.Background(), f.cfg)
	f.checkRelease(t)
	return st, err
}

// checkRelease checks that the last calls are the release of the board, the
// recorder and the model, in this order.
func (f *fixture) checkRelease(t *testing.T) {
	t.Helper()
	l := f.ev.log
	if len(l) < 3 {
		t.Fatalf("short call log: %v", l)
	}
	if tail := strings.Join(l[len(l)-3:], " "); tail != "board.Close rec.Close model.Close" {
		t.Fatalf("unexpected release order: %s", tail)
	}
}

func TestRun_timestamps(t *testing.T) {
	for _, k := range []int{1, 2, 7, 10} {
		f := newFixture(t, bench.ClkTick{})
		f.cfg.MaxCycles = k
		st, err := f.run(t)
		if err != nil {
			t.Fatal(err)
		}
		if st != bench.Exhausted {
			t.Fatalf("expected status %v, got %v", bench.Exhausted, st)
		}
		if len(f.rec.ts) != 2*k {
			t.Fatalf("expected %d timestamps, got %d", 2*k, len(f.rec.ts))
		}
		for i, ts := range f.rec.ts {
			if ts != uint64(i) {
				t.Fatalf("timestamp %d = %d", i, ts)
			}
			// clock starts high and is inverted before each Eval
			if exp := uint64(1 - i&1); f.rec.clks[i] != exp {
				t.Fatalf("clock at timestamp %d = %d, expected %d", i, f.rec.clks[i], exp)
			}
		}
		// two toggles per cycle: the clock is back high after each cycle
		if f.m.vals["clk"] != 1 {
			t.Fatalf("clock after %d cycles = %d, expected 1", k, f.m.vals["clk"])
		}
		if f.m.evals != 2*k {
			t.Fatalf("expected %d evals, got %d", 2*k, f.m.evals)
		}
	}
}

func TestRun_defaults(t *testing.T) {
	f := newFixture(t, bench.ClkTick{})
	f.cfg.MaxCycles = 0
	f.m.finish = 2 * 3
	if _, err := f.run(t); err != nil {
		t.Fatal(err)
	}
	if f.m.vals["N"] != bench.DefaultN {
		t.Fatalf("expected N=%d, got %d", bench.DefaultN, f.m.vals["N"])
	}
	if f.b.title != "test" {
		t.Fatalf("unexpected title %q", f.b.title)
	}
	if _, ok := f.m.vals[bench.DefaultClock]; !ok {
		t.Fatal("default clock not driven")
	}
}

type stim map[int]map[string]uint64

func (s stim) Stimulus(cycle int) (map[string]uint64, error) {
	return s[cycle], nil
}

func TestRun_clkTickReset(t *testing.T) {
	// the script asserts rst past cycle 2, the testbench must override it
	f := newFixture(t, bench.Scripted{
		Testbench: bench.ClkTick{N: 10},
		Script:    stim{0: {"rst": 0}, 5: {"rst": 1, "en": 0}},
	})
	if _, err := f.run(t); err != nil {
		t.Fatal(err)
	}
	for i, s := range f.m.seen {
		cycle := i / 2
		exp := uint64(0)
		if cycle < 2 {
			exp = 1
		}
		if s["rst"] != exp {
			t.Fatalf("cycle %d: rst = %d, expected %d", cycle, s["rst"], exp)
		}
		if s["N"] != 10 {
			t.Fatalf("cycle %d: N = %d", cycle, s["N"])
		}
		if exp := uint64(1); cycle >= 5 {
			if s["en"] != 0 {
				t.Fatalf("cycle %d: scripted en not applied", cycle)
			}
		} else if s["en"] != exp {
			t.Fatalf("cycle %d: en = %d", cycle, s["en"])
		}
	}
}

func TestRun_sineOffset(t *testing.T) {
	f := newFixture(t, bench.SineGen{Incr: 3})
	f.b.value = func(cycle int) int { return cycle*7 - 20 }
	f.m.vals["dout1"] = 12
	f.m.vals["dout2"] = 34
	if _, err := f.run(t); err != nil {
		t.Fatal(err)
	}
	for i, s := range f.m.seen {
		cycle := i / 2
		if exp := uint64(cycle*7 - 20); s["offset"] != exp {
			t.Fatalf("cycle %d: offset = %d, expected %d", cycle, s["offset"], exp)
		}
		if s["incr"] != 3 || s["en"] != 1 || s["rst"] != 0 {
			t.Fatalf("cycle %d: bad fixed inputs %v", cycle, s)
		}
	}
	if len(f.b.plots) != 2*f.cfg.MaxCycles {
		t.Fatalf("expected %d plots, got %d", 2*f.cfg.MaxCycles, len(f.b.plots))
	}
	if p := f.b.plots[0]; p[1] != 12 {
		t.Fatalf("unexpected first plot %v", p)
	}
	if p := f.b.plots[1]; p[1] != 34 {
		t.Fatalf("unexpected second plot %v", p)
	}
}

func TestRun_termination(t *testing.T) {
	td := []struct {
		name   string
		finish int
		keys   map[int]rune
		st     bench.Status
		cycles int
	}{
		{"finish", 2*4 + 1, nil, bench.Finished, 5},
		{"quit", 0, map[int]rune{2: 'x', 6: 'q'}, bench.QuitRequested, 7},
		{"finish_first", 2, map[int]rune{0: 'q'}, bench.Finished, 1},
		{"other_key", 0, map[int]rune{3: 'Q'}, bench.Exhausted, 10},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			f := newFixture(t, bench.ClkTick{})
			f.m.finish = d.finish
			f.b.keys = d.keys
			st, err := f.run(t)
			if err != nil {
				t.Fatal(err)
			}
			if st != d.st {
				t.Fatalf("expected status %v, got %v", d.st, st)
			}
			if len(f.rec.ts) != 2*d.cycles {
				t.Fatalf("expected %d cycles, got %d", d.cycles, len(f.rec.ts)/2)
			}
		})
	}
}

func TestRun_canceled(t *testing.T) {
	f := newFixture(t, bench.ClkTick{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, err := bench.Run(ctx, f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.checkRelease(t)
	if st != bench.QuitRequested {
		t.Fatalf("expected status %v, got %v", bench.QuitRequested, st)
	}
	if len(f.rec.ts) != 2 {
		t.Fatalf("expected 1 cycle, got %d", len(f.rec.ts)/2)
	}
}

func TestRun_boardError(t *testing.T) {
	f := newFixture(t, bench.ClkTick{})
	cause := errors.New("no device")
	f.cfg.Board = func() (board.Board, error) { return nil, cause }
	f.cfg.Model = func() (bench.Model, error) {
		t.Fatal("model created after board failure")
		return nil, nil
	}
	f.cfg.Trace = func(bench.Model) (bench.Recorder, error) {
		t.Fatal("recorder created after board failure")
		return nil, nil
	}
	st, err := bench.Run(context.Background(), f.cfg)
	if _, ok := err.(*bench.BoardError); !ok {
		t.Fatalf("expected *BoardError, got %#v", err)
	}
	if errors.Cause(err) != cause {
		t.Fatalf("unexpected cause %v", errors.Cause(err))
	}
	if st != bench.Running {
		t.Fatalf("unexpected status %v", st)
	}
	if len(f.ev.log) != 0 {
		t.Fatalf("unexpected calls: %v", f.ev.log)
	}
}

func TestRun_errors(t *testing.T) {
	boom := errors.New("boom")
	td := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"eval", func(f *fixture) { f.m.evalErr = boom }},
		{"record", func(f *fixture) { f.rec.err = boom }},
		{"board", func(f *fixture) { f.b.errAt = 3 }},
		{"stimulus", func(f *fixture) {
			f.cfg.Bench = bench.Scripted{Testbench: bench.ClkTick{}, Script: failStim{boom}}
		}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			f := newFixture(t, bench.ClkTick{})
			d.setup(f)
			st, err := f.run(t)
			if err == nil {
				t.Fatal("expected error")
			}
			if st != bench.Running {
				t.Fatalf("unexpected status %v", st)
			}
			if _, ok := err.(*bench.BoardError); ok {
				t.Fatalf("unexpected board error %v", err)
			}
		})
	}
}

func TestRun_modelError(t *testing.T) {
	f := newFixture(t, bench.ClkTick{})
	f.cfg.Model = func() (bench.Model, error) { return nil, errors.New("bad design") }
	if _, err := bench.Run(context.Background(), f.cfg); err == nil {
		t.Fatal("expected error")
	}
	if l := strings.Join(f.ev.log, " "); l != "board.Header board.Close" {
		t.Fatalf("unexpected calls %s", l)
	}
}

func TestRun_recorderError(t *testing.T) {
	f := newFixture(t, bench.ClkTick{})
	f.cfg.Trace = func(bench.Model) (bench.Recorder, error) { return nil, errors.New("disk full") }
	if _, err := bench.Run(context.Background(), f.cfg); err == nil {
		t.Fatal("expected error")
	}
	if l := strings.Join(f.ev.log, " "); l != "board.Header board.Close model.Close" {
		t.Fatalf("unexpected calls %s", l)
	}
}

type failStim struct{ err error }

func (s failStim) Stimulus(int) (map[string]uint64, error) { return nil, s.err }

func TestStatus_String(t *testing.T) {
	for st, s := range map[bench.Status]string{
		bench.Running:       "running",
		bench.Finished:      "finished",
		bench.QuitRequested: "quit requested",
		bench.Exhausted:     "cycle limit reached",
		bench.Status(42):    "Status(42)",
	} {
		if st.String() != s {
			t.Errorf("expected %q, got %q", s, st.String())
		}
	}
}
