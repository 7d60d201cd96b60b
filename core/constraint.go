package core

import (
	"strings"
)

// Constraint gates a Def.  There are four: Assignment, Comparison,
// ListCons, and MethodCall.
//
// Constraints are checked by Check, which see.
type Constraint interface {
	CopyConstraint() Constraint
	String() string
}

// Assignment binds the Variable on the left to the value of the
// argument on the right.
//
// Left is an Argument rather than a Variable because a protocol can
// say "1 = ?X", which is a fault at runtime.
type Assignment struct {
	Left  Argument `json:"left"`
	Right Argument `json:"right"`
}

// Assign makes an Assignment.
func Assign(left, right Argument) *Assignment {
	return &Assignment{
		Left:  left,
		Right: right,
	}
}

func (c *Assignment) CopyConstraint() Constraint {
	return &Assignment{
		Left:  copyArg(c.Left),
		Right: copyArg(c.Right),
	}
}

func (c *Assignment) String() string {
	return argString(c.Left) + " = " + argString(c.Right)
}

// CompOp is a comparison operator.
type CompOp string

const (
	Lt CompOp = "<"
	Gt CompOp = ">"
	Eq CompOp = "=="
	Ne CompOp = "!="
)

// Comparison tests the two arguments.
type Comparison struct {
	Op    CompOp   `json:"op"`
	Left  Argument `json:"left"`
	Right Argument `json:"right"`
}

// Compare makes a Comparison.
func Compare(left Argument, op CompOp, right Argument) *Comparison {
	return &Comparison{
		Op:    op,
		Left:  left,
		Right: right,
	}
}

func (c *Comparison) CopyConstraint() Constraint {
	return &Comparison{
		Op:    c.Op,
		Left:  copyArg(c.Left),
		Right: copyArg(c.Right),
	}
}

func (c *Comparison) String() string {
	return argString(c.Left) + " " + string(c.Op) + " " + argString(c.Right)
}

// ListCons builds a list from Head and Tail when List is unset.
// Otherwise it splits List into Head (the first element) and Tail
// (the rest).
type ListCons struct {
	List Variable `json:"list"`
	Head Argument `json:"head"`
	Tail Argument `json:"tail"`
}

// Cons makes a ListCons.
func Cons(list Variable, head, tail Argument) *ListCons {
	return &ListCons{
		List: list,
		Head: head,
		Tail: tail,
	}
}

func (c *ListCons) CopyConstraint() Constraint {
	return &ListCons{
		List: c.List,
		Head: copyArg(c.Head),
		Tail: copyArg(c.Tail),
	}
}

func (c *ListCons) String() string {
	return c.List.String() + " = [" + argString(c.Head) + " | " + argString(c.Tail) + "]"
}

// MethodCall invokes the capability named by the Term's name with
// one Accessor per argument.
type MethodCall struct {
	Term *Term `json:"term"`
}

// Call makes a MethodCall.
func Call(name string, args ...Argument) *MethodCall {
	return &MethodCall{
		Term: NewTerm(name, args...),
	}
}

func (c *MethodCall) CopyConstraint() Constraint {
	return &MethodCall{
		Term: c.Term.CopyTerm(),
	}
}

func (c *MethodCall) String() string {
	return c.Term.String()
}

// ConstraintsString renders constraints in order, separated by
// "and".
func ConstraintsString(cs []Constraint) string {
	acc := make([]string, len(cs))
	for i, c := range cs {
		acc[i] = c.String()
	}
	return strings.Join(acc, " and ")
}

func copyArg(a Argument) Argument {
	if a == nil {
		return nil
	}
	return a.Copy()
}

func argString(a Argument) string {
	if a == nil {
		return "nil"
	}
	return a.String()
}
