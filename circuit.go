// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vbsim

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// DefaultSettleLimit is the default maximum number of steps Settle will run
// before giving up.
//
const DefaultSettleLimit = 1024

// ErrUnstable is returned by Settle when the circuit state does not converge.
//
var ErrUnstable = errors.New("circuit did not settle")

// Circuit is a runnable circuit simulation.
//
// The clock is external: callers set its level with SetClock and the change
// takes effect on the next Step. During that step, Rising or Falling report
// the edge to clocked components.
//
type Circuit struct {
	s0    []bool // wire states frame #0
	s1    []bool // wire states frame #1
	cs    []Component
	count int // wire count
	steps uint
	limit int

	clk     bool // requested clock level
	rising  bool
	falling bool
	changed bool

	finished atomic.Bool

	wc       []chan struct{}
	wg       sync.WaitGroup
	disposed bool
}

// NewCircuit builds a new circuit based on the given parts.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If 0, the value of GOMAXPROCS will be used.
// With a single worker, components are updated on the caller's goroutine.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}

	// new circuit with room for constant value pins.
	cc := &Circuit{count: cstCount, limit: DefaultSettleLimit}
	wrap, err := Chip("CIRCUIT", "", "", parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	ups := wrap("").Mount(newSocket(cc))
	cc.cs = ups
	cc.s0 = make([]bool, cc.count)
	cc.s1 = make([]bool, cc.count)
	cc.s0[cstTrue] = true
	cc.s1[cstTrue] = true

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 1 {
		return cc, nil
	}
	for len(ups) > 0 {
		size := len(ups) / workers
		if size*workers < len(ups) {
			size++
		}
		wc := make(chan struct{}, 1)
		cc.wc = append(cc.wc, wc)
		go worker(cc, ups[:size], wc)
		ups = ups[size:]
	}

	return cc, nil
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// alloc allocates a pin and returns its number.
//
func (c *Circuit) allocPin() int {
	cnt := c.count
	c.count++
	return cnt
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint {
	return c.steps
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Get returns the state of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// Set sets the state s of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = s
}

// Toggle toggles the state of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Toggle(n int) {
	c.s1[n] = !c.s0[n]
}

// SetClock sets the clock level. The change is applied at the next Step.
//
func (c *Circuit) SetClock(level bool) {
	c.clk = level
}

// Clock returns the current clock level as seen by components.
//
func (c *Circuit) Clock() bool {
	return c.s0[cstClk]
}

// Rising returns true during the step that applies a low to high clock
// transition.
//
func (c *Circuit) Rising() bool {
	return c.rising
}

// Falling returns true during the step that applies a high to low clock
// transition.
//
func (c *Circuit) Falling() bool {
	return c.falling
}

// Finish marks the simulation as finished. It is safe to call from
// components running on different workers.
//
func (c *Circuit) Finish() {
	c.finished.Store(true)
}

// Finished returns true once a component has called Finish.
//
func (c *Circuit) Finished() bool {
	return c.finished.Load()
}

// SetSettleLimit sets the maximum number of steps run by Settle.
//
func (c *Circuit) SetSettleLimit(steps int) {
	if steps < 1 {
		steps = 1
	}
	c.limit = steps
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	if c.s0[cstFalse] || !c.s0[cstTrue] {
		panic("true or false constants have been overwritten")
	}

	prev := c.s0[cstClk]
	c.rising = c.clk && !prev
	c.falling = !c.clk && prev
	c.s0[cstClk] = c.clk
	c.s1[cstClk] = c.clk

	if len(c.wc) == 0 {
		for _, f := range c.cs {
			f(c)
		}
	} else {
		c.wg.Add(len(c.wc))
		for _, wc := range c.wc {
			wc <- struct{}{}
		}
		c.wg.Wait()
	}

	c.steps++
	c.s0, c.s1 = c.s1, c.s0
	c.changed = c.rising || c.falling || !slices.Equal(c.s0, c.s1)
	c.rising, c.falling = false, false
}

// Settle runs simulation steps until the wire states stop changing and
// returns the number of steps run. It returns ErrUnstable if the circuit is
// still changing after the settle limit.
//
func (c *Circuit) Settle() (int, error) {
	for n := 1; n <= c.limit; n++ {
		c.Step()
		if !c.changed {
			return n, nil
		}
	}
	return c.limit, errors.Wrapf(ErrUnstable, "after %d steps", c.limit)
}

// Tick drives the clock low and settles the circuit.
//
func (c *Circuit) Tick() error {
	c.SetClock(false)
	_, err := c.Settle()
	return err
}

// Tock drives the clock high and settles the circuit. Once Tock returns, the
// output of clocked components has been updated.
//
func (c *Circuit) Tock() error {
	c.SetClock(true)
	_, err := c.Settle()
	return err
}

// TickTock runs the simulation for a whole clock cycle.
//
func (c *Circuit) TickTock() error {
	if err := c.Tick(); err != nil {
		return err
	}
	return c.Tock()
}
