// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements the lexer and parser for pin specifications and
// connection strings.
//
package hdl

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Type is a token type.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Range:        "'..'",
	Equal:        "'='",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "token(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// Item is a lexed token. Value is a string for Ident and Raw, an int for Int.
//
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.Quote(i.Value.(string))
	}
	return i.Type.String()
}

// Lexer splits pin specs and connection strings into tokens.
//
type Lexer struct {
	in  string
	pos int
}

// NewLexer returns a new lexer for i/o specs and connection descriptions.
//
func NewLexer(input string) *Lexer {
	return &Lexer{in: input}
}

// Lex returns the next token. Once the input is exhausted, it keeps returning
// EOF.
//
func (l *Lexer) Lex() Item {
	for l.pos < len(l.in) {
		r, n := utf8.DecodeRuneInString(l.in[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += n
	}
	if l.pos >= len(l.in) {
		return Item{EOF, l.pos, nil}
	}
	start := l.pos
	r, n := utf8.DecodeRuneInString(l.in[l.pos:])
	l.pos += n
	switch {
	case unicode.IsLetter(r) || r == '_':
		for l.pos < len(l.in) {
			r, n := utf8.DecodeRuneInString(l.in[l.pos:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			l.pos += n
		}
		return Item{Ident, start, l.in[start:l.pos]}
	case '0' <= r && r <= '9':
		v := int(r - '0')
		for l.pos < len(l.in) && '0' <= l.in[l.pos] && l.in[l.pos] <= '9' {
			v = v*10 + int(l.in[l.pos]-'0')
			l.pos++
		}
		return Item{Int, start, v}
	case r == '[':
		return Item{BracketOpen, start, "["}
	case r == ']':
		return Item{BracketClose, start, "]"}
	case r == ',':
		return Item{Comma, start, ","}
	case r == '=':
		return Item{Equal, start, "="}
	case r == '.' && strings.HasPrefix(l.in[l.pos:], "."):
		l.pos++
		return Item{Range, start, ".."}
	}
	return Item{Raw, start, string(r)}
}

// Pin is a pin reference: name, name[index] or name[start..end].
// Start and End are -1 for a plain pin name. Both are equal for an index.
//
type Pin struct {
	Name  string
	Start int
	End   int
	Pos   int
}

// IsBus returns true if p is an index or range reference.
//
func (p Pin) IsBus() bool { return p.Start >= 0 }

// IsRange returns true if p is a range reference.
//
func (p Pin) IsRange() bool { return p.Start >= 0 && p.End != p.Start }

func (p Pin) String() string {
	switch {
	case p.Start < 0:
		return p.Name
	case p.Start == p.End:
		return p.Name + "[" + strconv.Itoa(p.Start) + "]"
	}
	return p.Name + "[" + strconv.Itoa(p.Start) + ".." + strconv.Itoa(p.End) + "]"
}

// Assignment is a part pin to chip pin assignment: pp=cp.
//
type Assignment struct {
	LHS Pin
	RHS Pin
}

// Parser is a simplistic parser for comma separated pin lists.
//
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	done  bool
}

// NewParser returns a parser for the given input.
//
func NewParser(input string) *Parser {
	return &Parser{Input: input, l: NewLexer(input)}
}

// ParseIOSpec parses a pin specification string such as "a, b, bus[8]" and
// returns individual pin names, expanding bus declarations:
//
//	ParseIOSpec("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
func ParseIOSpec(spec string) ([]string, error) {
	var out []string
	p := NewParser(spec)
	for {
		pin, err := p.next(false)
		if err != nil {
			return nil, err
		}
		if pin == nil {
			return out, nil
		}
		lhs := pin.(Pin)
		switch {
		case !lhs.IsBus():
			out = append(out, lhs.Name)
		case lhs.IsRange():
			return nil, parseError(spec, lhs.Pos, "bus range in pin declaration")
		case lhs.Start == 0:
			return nil, parseError(spec, lhs.Pos, "bus size must be at least 1")
		default:
			for i := 0; i < lhs.Start; i++ {
				out = append(out, BusPinName(lhs.Name, i))
			}
		}
	}
}

// ParseConnections parses a connection string such as
// "a=x, b[0..3]=y[4..7], c=true".
//
func ParseConnections(conns string) ([]Assignment, error) {
	var out []Assignment
	p := NewParser(conns)
	for {
		a, err := p.next(true)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return out, nil
		}
		asg, ok := a.(Assignment)
		if !ok {
			pin := a.(Pin)
			return nil, parseError(conns, pin.Pos, "expected '=' after "+pin.String())
		}
		out = append(out, asg)
	}
}

// BusPinName returns the pin name for the n-th bit of the named bus.
//
func BusPinName(bus string, n int) string {
	return bus + "[" + strconv.Itoa(n) + "]"
}

// next returns the next Pin or Assignment in the input. It returns nil, nil
// at the end of input.
//
func (p *Parser) next(allowConns bool) (interface{}, error) {
	if p.done {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}
	p.i = p.l.Lex()
	if p.i.Type == EOF {
		p.done = true
		return nil, nil
	}

	pin, err := p.getPin()
	if err != nil {
		p.done = true
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.done = true
		fallthrough
	case Comma:
		return pin, nil
	case Equal:
		if allowConns {
			break
		}
		fallthrough
	default:
		p.done = true
		return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
	}

	p.i = p.l.Lex()
	pin2, err := p.getPin()
	if err != nil {
		p.done = true
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.done = true
		fallthrough
	case Comma:
		return Assignment{pin, pin2}, nil
	}
	p.done = true
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) getPin() (Pin, error) {
	if p.i.Type != Ident {
		return Pin{}, parseError(p.Input, p.i.Pos, "expected pin name, got "+p.i.String())
	}
	pin := Pin{Name: p.i.Value.(string), Start: -1, End: -1, Pos: p.i.Pos}
	// after ident, expect ',', '[', '=' or EOF
	p.i = p.l.Lex()
	if p.i.Type != BracketOpen {
		return pin, nil
	}
	p.i = p.l.Lex()
	if p.i.Type != Int {
		return Pin{}, parseError(p.Input, p.i.Pos, "integer value expected after '['")
	}
	pin.Start = p.i.Value.(int)
	pin.End = pin.Start
	p.i = p.l.Lex()
	if p.i.Type == Range {
		p.i = p.l.Lex()
		if p.i.Type != Int {
			return Pin{}, parseError(p.Input, p.i.Pos, "integer value expected after '..'")
		}
		pin.End = p.i.Value.(int)
		if pin.End < pin.Start {
			return Pin{}, parseError(p.Input, p.i.Pos, "invalid range end")
		}
		p.i = p.l.Lex()
	}
	if p.i.Type != BracketClose {
		return Pin{}, parseError(p.Input, p.i.Pos, "closing ']' expected after index or range")
	}
	p.i = p.l.Lex()
	return pin, nil
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
