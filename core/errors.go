package core

// Protocol definition errors are reported when a Protocol is built or
// an agent subscribes.  Execution faults end the offending agent's
// run.  Neither is ever used for FALSE, which is just a result.

import (
	"errors"
	"fmt"
)

// DuplicateRole occurs when a Protocol gets a second Role with the
// same name/arity.
type DuplicateRole struct {
	Role string
}

func (e *DuplicateRole) Error() string {
	return `duplicate role "` + e.Role + `"`
}

// DuplicateClause occurs when a Protocol gets a second Clause for a
// role.
type DuplicateClause struct {
	Role string
}

func (e *DuplicateClause) Error() string {
	return `duplicate clause for role "` + e.Role + `"`
}

// MissingRole occurs when a Clause is added for a role that the
// Protocol hasn't declared.
type MissingRole struct {
	Role string
}

func (e *MissingRole) Error() string {
	return `no role declared for clause "` + e.Role + `"`
}

// UnknownRole occurs when an agent tries to subscribe to a role that
// isn't declared.
type UnknownRole struct {
	Role string
}

func (e *UnknownRole) Error() string {
	return `unknown role "` + e.Role + `"`
}

// UnknownClause occurs when a role has no clause to instantiate.
type UnknownClause struct {
	Role string
}

func (e *UnknownClause) Error() string {
	return `no clause for role "` + e.Role + `"`
}

// NoInitialRole occurs when a Protocol doesn't declare an initial
// role.
var NoInitialRole = errors.New("protocol has no initial role")

// BadSignature occurs when a clause signature has a role argument or
// an ID that isn't a Variable.  Also used when a clause is
// instantiated with the wrong number of arguments.
type BadSignature struct {
	Clause string
	Msg    string
}

func (e *BadSignature) Error() string {
	return `bad signature for clause "` + e.Clause + `": ` + e.Msg
}

// ComparisonFault occurs when a Comparison sees an unset value or
// two values of different types.
type ComparisonFault struct {
	Comparison  string
	Left, Right interface{}
}

func (e *ComparisonFault) Error() string {
	return fmt.Sprintf("can't compare %s and %s in %s",
		FormatValue(e.Left), FormatValue(e.Right), e.Comparison)
}

// AssignmentFault occurs when the left side of an Assignment isn't a
// Variable.
type AssignmentFault struct {
	Assignment string
}

func (e *AssignmentFault) Error() string {
	return `left side of "` + e.Assignment + `" isn't a variable`
}

// UnresolvedID occurs when a role switch's ID is unset.
type UnresolvedID struct {
	Switch string
}

func (e *UnresolvedID) Error() string {
	return `unresolved agent ID in "` + e.Switch + `"`
}

// UnknownMethod occurs when neither the built-in capabilities nor the
// agent's capabilities have the named method.
type UnknownMethod struct {
	Method string
}

func (e *UnknownMethod) Error() string {
	return `unknown method "` + e.Method + `"`
}

// MethodFault occurs when a capability itself fails.
type MethodFault struct {
	Method string
	Err    error
}

func (e *MethodFault) Error() string {
	return `method "` + e.Method + `" failed: ` + e.Err.Error()
}

func (e *MethodFault) Unwrap() error {
	return e.Err
}

// AccessorFault occurs when a capability tries to write through an
// Accessor that's bound to a constant.
type AccessorFault struct {
	Arg string
}

func (e *AccessorFault) Error() string {
	return `can't assign to "` + e.Arg + `"`
}
