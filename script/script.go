// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package script runs Lua stimulus scripts.
//
// A script defines a global function stimulus(cycle) that returns a table of
// signal values to apply at the given cycle, or nil:
//
//	function stimulus(cycle)
//		if cycle == 100 then
//			return { en = false }
//		end
//		return { offset = cycle % 256 }
//	end
//
// Values are booleans (0 or 1) or non negative integers. Scripts can call
// log(...) to print a message. Only the base, package, table, string and math
// libraries are available.
//
package script

import (
	"log"
	"math"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// FuncName is the name of the Lua stimulus function.
const FuncName = "stimulus"

// A Script is a loaded Lua stimulus script. It is not safe for concurrent use.
//
type Script struct {
	name string
	l    *lua.LState
	fn   lua.LValue
}

// An Option configures a Script.
//
type Option func(*config)

type config struct {
	log *log.Logger
}

// Logger sets the logger used by the Lua log function. Defaults to the
// standard logger.
//
func Logger(l *log.Logger) Option {
	return func(c *config) { c.log = l }
}

// Load loads the script file name.
//
func Load(name string, opts ...Option) (*Script, error) {
	return load(name, func(l *lua.LState) error { return l.DoFile(name) }, opts)
}

// LoadString loads a script from source text.
//
func LoadString(src string, opts ...Option) (*Script, error) {
	return load("<string>", func(l *lua.LState) error { return l.DoString(src) }, opts)
}

func load(name string, do func(*lua.LState) error, opts []Option) (*Script, error) {
	cfg := config{log: log.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := l.CallByParam(lua.P{Fn: l.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			l.Close()
			return nil, errors.Wrapf(err, "%s: open %s library", name, lib.name)
		}
	}
	lg := cfg.log
	l.SetGlobal("log", l.NewFunction(func(l *lua.LState) int {
		n := l.GetTop()
		args := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			args = append(args, l.ToStringMeta(l.Get(i)).String())
		}
		lg.Printf("%s: %s", name, strings.Join(args, " "))
		return 0
	}))
	if err := do(l); err != nil {
		l.Close()
		return nil, errors.Wrap(err, name)
	}
	fn := l.GetGlobal(FuncName)
	if fn.Type() != lua.LTFunction {
		l.Close()
		return nil, errors.Errorf("%s: function %s not defined", name, FuncName)
	}
	return &Script{name: name, l: l, fn: fn}, nil
}

// Name returns the script name.
//
func (s *Script) Name() string { return s.name }

// Stimulus calls the script's stimulus function for the given cycle and
// returns the signal values to apply.
//
func (s *Script) Stimulus(cycle int) (map[string]uint64, error) {
	if s.l == nil {
		return nil, errors.Errorf("%s: script closed", s.name)
	}
	if err := s.l.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(cycle)); err != nil {
		return nil, errors.Wrapf(err, "%s: cycle %d", s.name, cycle)
	}
	ret := s.l.Get(-1)
	s.l.Pop(1)

	vs := make(map[string]uint64)
	switch ret := ret.(type) {
	case *lua.LNilType:
		return vs, nil
	case *lua.LTable:
		var err error
		ret.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			name, ok := k.(lua.LString)
			if !ok {
				err = errors.Errorf("%s: cycle %d: invalid signal name %v", s.name, cycle, k)
				return
			}
			var x uint64
			if x, err = value(v); err != nil {
				err = errors.Wrapf(err, "%s: cycle %d: signal %s", s.name, cycle, name)
				return
			}
			vs[string(name)] = x
		})
		if err != nil {
			return nil, err
		}
		return vs, nil
	default:
		return nil, errors.Errorf("%s: cycle %d: %s returned a %s, expected a table", s.name, cycle, FuncName, ret.Type())
	}
}

func value(v lua.LValue) (uint64, error) {
	switch v := v.(type) {
	case lua.LBool:
		if v {
			return 1, nil
		}
		return 0, nil
	case lua.LNumber:
		f := float64(v)
		if f < 0 || f != math.Trunc(f) || f >= 1<<64 {
			return 0, errors.Errorf("invalid value %v", v)
		}
		return uint64(f), nil
	}
	return 0, errors.Errorf("invalid %s value", v.Type())
}

// Close releases the Lua state. Close is idempotent.
//
func (s *Script) Close() error {
	if s.l != nil {
		s.l.Close()
		s.l = nil
	}
	return nil
}
