package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseTerm reads a term literal like
//
//   ping(?X, 1, "hi", [1, 2], point(3, 4), true)
//
// Variables start with '?'.  Lists may only contain constants.
//
// This is only a notation for terms.  It's not a syntax for whole
// protocols.
func ParseTerm(s string) (*Term, error) {
	p := &literalParser{s: s}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	p.space()
	if !p.done() {
		return nil, p.errorf("junk after term")
	}
	return t, nil
}

// MustParseTerm is ParseTerm that panics on an error.  For tests and
// canned protocols.
func MustParseTerm(s string) *Term {
	t, err := ParseTerm(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseArgument reads a single argument: a Variable, a constant, or a
// term.
func ParseArgument(s string) (Argument, error) {
	p := &literalParser{s: s}
	a, err := p.arg()
	if err != nil {
		return nil, err
	}
	p.space()
	if !p.done() {
		return nil, p.errorf("junk after argument")
	}
	return a, nil
}

type literalParser struct {
	s string
	i int
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("at %d in %q: %s", p.i, p.s, fmt.Sprintf(format, args...))
}

func (p *literalParser) done() bool {
	return len(p.s) <= p.i
}

func (p *literalParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.s[p.i]
}

func (p *literalParser) space() {
	for !p.done() && unicode.IsSpace(rune(p.s[p.i])) {
		p.i++
	}
}

func (p *literalParser) expect(c byte) error {
	p.space()
	if p.peek() != c {
		return p.errorf("wanted '%c'", c)
	}
	p.i++
	return nil
}

func isNameByte(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_':
		return true
	case '0' <= c && c <= '9', c == '-':
		return !first
	}
	return false
}

func (p *literalParser) name() (string, error) {
	p.space()
	start := p.i
	for !p.done() && isNameByte(p.s[p.i], p.i == start) {
		p.i++
	}
	if p.i == start {
		return "", p.errorf("wanted a name")
	}
	return p.s[start:p.i], nil
}

func (p *literalParser) term() (*Term, error) {
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	t := NewTerm(name)
	p.space()
	if p.peek() != '(' {
		return t, nil
	}
	p.i++
	p.space()
	if p.peek() == ')' {
		p.i++
		return t, nil
	}
	for {
		a, err := p.arg()
		if err != nil {
			return nil, err
		}
		t.Args = append(t.Args, a)
		p.space()
		switch p.peek() {
		case ',':
			p.i++
		case ')':
			p.i++
			return t, nil
		default:
			return nil, p.errorf("wanted ',' or ')'")
		}
	}
}

func (p *literalParser) arg() (Argument, error) {
	p.space()
	switch c := p.peek(); {
	case c == '?':
		p.i++
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		return Var(name), nil
	case c == '"', c == '[', c == '-', '0' <= c && c <= '9':
		x, err := p.constant()
		if err != nil {
			return nil, err
		}
		return Val(x), nil
	}

	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if len(t.Args) == 0 {
		switch t.Name {
		case "true":
			return Val(true), nil
		case "false":
			return Val(false), nil
		}
	}
	return t, nil
}

func (p *literalParser) constant() (interface{}, error) {
	p.space()
	switch c := p.peek(); {
	case c == '"':
		return p.str()
	case c == '[':
		return p.list()
	case c == '-', '0' <= c && c <= '9':
		return p.number()
	}

	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if len(t.Args) == 0 {
		switch t.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	for _, a := range t.Args {
		if _, is := a.(Variable); is {
			return nil, p.errorf("variable in a constant")
		}
	}
	return t, nil
}

func (p *literalParser) str() (string, error) {
	start := p.i
	p.i++
	for !p.done() {
		switch p.s[p.i] {
		case '\\':
			p.i += 2
			continue
		case '"':
			p.i++
			return strconv.Unquote(p.s[start:p.i])
		}
		p.i++
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) number() (interface{}, error) {
	start := p.i
	if p.peek() == '-' {
		p.i++
	}
	for !p.done() && strings.IndexByte("0123456789.eE+-", p.s[p.i]) >= 0 {
		p.i++
	}
	lit := p.s[start:p.i]
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return int(n), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, p.errorf("bad number %q", lit)
	}
	return f, nil
}

func (p *literalParser) list() ([]interface{}, error) {
	p.i++
	acc := make([]interface{}, 0, 4)
	p.space()
	if p.peek() == ']' {
		p.i++
		return acc, nil
	}
	for {
		x, err := p.constant()
		if err != nil {
			return nil, err
		}
		acc = append(acc, x)
		p.space()
		switch p.peek() {
		case ',':
			p.i++
		case ']':
			p.i++
			return acc, nil
		default:
			return nil, p.errorf("wanted ',' or ']'")
		}
	}
}

// ParseValue reads a constant: a number, a quoted string, true or
// false, a list, or a ground term.
func ParseValue(s string) (interface{}, error) {
	p := &literalParser{s: s}
	x, err := p.constant()
	if err != nil {
		return nil, err
	}
	p.space()
	if !p.done() {
		return nil, p.errorf("junk after value")
	}
	return x, nil
}
