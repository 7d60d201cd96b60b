package core

import (
	"errors"
	"strconv"
)

// Kind says how a Role takes part in a protocol.
type Kind string

const (
	// Initial roles must be subscribed before the protocol starts.
	// A protocol must declare one.
	Initial Kind = "initial"

	// Necessary roles must also be subscribed before the start.
	Necessary Kind = "necessary"

	Optional  Kind = "optional"
	Auxiliary Kind = "auxiliary"

	// Cyclic clauses restart from scratch after every pass that
	// doesn't end FALSE.
	Cyclic Kind = "cyclic"

	// Uncommitted clauses are evaluated once, and whatever that
	// evaluation returns (even MAYBE) is the result.
	Uncommitted Kind = "uncommitted"
)

// Valid returns an error if the Kind isn't one of the known kinds.
func (k Kind) Valid() error {
	switch k {
	case Initial, Necessary, Optional, Auxiliary, Cyclic, Uncommitted:
		return nil
	}
	return errors.New("unknown role kind '" + string(k) + "'")
}

// Required reports whether a subscriber is needed before the start.
func (k Kind) Required() bool {
	return k == Initial || k == Necessary
}

// Role is a declared participant category.
type Role struct {
	Type *Term `json:"type"`
	Kind Kind  `json:"kind"`

	// Min and Max bound the number of agents for the role.  Max
	// isn't enforced at runtime.
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`

	// Doc describes the role in English and Markdown.
	Doc string `json:"doc,omitempty"`
}

// NewRole makes a Role with the given name and no arguments.
func NewRole(name string, kind Kind, min, max int) *Role {
	return &Role{
		Type: NewTerm(name),
		Kind: kind,
		Min:  min,
		Max:  max,
	}
}

// Needed is the number of subscribers that must be present before
// the protocol starts.
func (r *Role) Needed() int {
	if !r.Kind.Required() {
		return 0
	}
	if r.Min < 1 {
		return 1
	}
	return r.Min
}

func (r *Role) String() string {
	return "r(" + r.Type.String() + ", " + string(r.Kind) + ", " +
		strconv.Itoa(r.Min) + ", " + strconv.Itoa(r.Max) + ")"
}
