package core

import (
	"fmt"
	"strings"
)

// TriState is the result of evaluating a step, a constraint, or a
// whole clause.
//
// Maybe is the zero value: a node that hasn't been evaluated yet (or
// was Reset) reports Maybe.  Maybe is never an error.  It just means
// "not yet decidable, poll again".
type TriState int

const (
	Maybe TriState = iota
	True
	False
)

func (s TriState) String() string {
	switch s {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	case Maybe:
		return "MAYBE"
	default:
		return fmt.Sprintf("TriState(%d)", int(s))
	}
}

// MarshalText renders the state as "TRUE", "FALSE", or "MAYBE".
func (s TriState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *TriState) UnmarshalText(bs []byte) error {
	x, err := AsTriState(string(bs))
	if err != nil {
		return err
	}
	*s = x
	return nil
}

// FromBool maps true to True and false to False.
func FromBool(b bool) TriState {
	if b {
		return True
	}
	return False
}

// AsTriState coerces what a capability returned into a TriState.
//
// Booleans map to True/False.  TriStates pass through.  Strings
// "true", "false", and "maybe" (any case) are accepted too since
// that's what scripted capabilities tend to return.
func AsTriState(x interface{}) (TriState, error) {
	switch vv := x.(type) {
	case TriState:
		return vv, nil
	case bool:
		return FromBool(vv), nil
	case string:
		switch strings.ToLower(vv) {
		case "true":
			return True, nil
		case "false":
			return False, nil
		case "maybe":
			return Maybe, nil
		}
		return Maybe, fmt.Errorf("can't make a TriState from %q", vv)
	default:
		return Maybe, fmt.Errorf("can't make a TriState from a %T", x)
	}
}
