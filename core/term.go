/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Argument is what can appear as an argument of a Term or a
// Constraint: a *Term, a Variable, or a Value.
type Argument interface {
	// Copy makes a deep copy.  Clause templates are shared, so
	// every instantiation works with its own copy.
	Copy() Argument

	String() string
}

// Variable names a slot in a clause's Bindings.
type Variable struct {
	Name string `json:"var"`
}

// Var makes a Variable.  A leading '?' is dropped.
func Var(name string) Variable {
	return Variable{Name: Unquestion(name)}
}

func (v Variable) Copy() Argument {
	return v
}

func (v Variable) String() string {
	return "?" + v.Name
}

// Value is a constant.
//
// Runtime values are nil (unset), bool, string, numbers, lists
// ([]interface{}), and ground *Terms.
type Value struct {
	X interface{} `json:"val"`
}

// Val makes a Value.
func Val(x interface{}) Value {
	return Value{X: x}
}

func (v Value) Copy() Argument {
	return Value{X: CopyValue(v.X)}
}

func (v Value) String() string {
	return FormatValue(v.X)
}

// Term is a name with an ordered sequence of arguments, like
// "ping(?X, 1)".
//
// Terms are used for message contents, role types, and method
// calls.  They are immutable once built.
type Term struct {
	Name string     `json:"name"`
	Args []Argument `json:"args,omitempty"`
}

// NewTerm makes a Term.
func NewTerm(name string, args ...Argument) *Term {
	return &Term{
		Name: name,
		Args: args,
	}
}

// Arity is the number of arguments.
func (t *Term) Arity() int {
	if t == nil {
		return 0
	}
	return len(t.Args)
}

// Key is "name/arity", which is what identifies roles and clauses.
func (t *Term) Key() string {
	return t.Name + "/" + strconv.Itoa(t.Arity())
}

// Matches reports whether the two Terms have the same shape: equal
// names and arities, and recursively matching arguments wherever
// both arguments are Terms.  Argument values are not compared.
func (t *Term) Matches(other *Term) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.Name != other.Name || len(t.Args) != len(other.Args) {
		return false
	}
	for i, a := range t.Args {
		x, is := a.(*Term)
		if !is {
			continue
		}
		y, is := other.Args[i].(*Term)
		if !is {
			continue
		}
		if !x.Matches(y) {
			return false
		}
	}
	return true
}

// Copy implements Argument.
func (t *Term) Copy() Argument {
	return t.CopyTerm()
}

// CopyTerm makes a deep copy of the Term.
func (t *Term) CopyTerm() *Term {
	if t == nil {
		return nil
	}
	args := make([]Argument, len(t.Args))
	for i, a := range t.Args {
		if a != nil {
			args[i] = a.Copy()
		}
	}
	return &Term{
		Name: t.Name,
		Args: args,
	}
}

func (t *Term) String() string {
	if t == nil {
		return "nil"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	acc := make([]string, len(t.Args))
	for i, a := range t.Args {
		if a == nil {
			acc[i] = "nil"
			continue
		}
		acc[i] = a.String()
	}
	return t.Name + "(" + strings.Join(acc, ", ") + ")"
}

// Variables returns the Variables that appear (recursively) in the
// Term's arguments.
func (t *Term) Variables() []Variable {
	acc := make([]Variable, 0, len(t.Args))
	for _, a := range t.Args {
		switch vv := a.(type) {
		case Variable:
			acc = append(acc, vv)
		case *Term:
			acc = append(acc, vv.Variables()...)
		}
	}
	return acc
}

// CopyValue makes a deep copy of lists and Terms.  Other values are
// returned as is.
func CopyValue(x interface{}) interface{} {
	switch vv := x.(type) {
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = CopyValue(y)
		}
		return acc
	case *Term:
		return vv.CopyTerm()
	default:
		return x
	}
}

// FormatValue renders a runtime value.
func FormatValue(x interface{}) string {
	switch vv := x.(type) {
	case nil:
		return "unset"
	case string:
		return strconv.Quote(vv)
	case []interface{}:
		acc := make([]string, len(vv))
		for i, y := range vv {
			acc[i] = FormatValue(y)
		}
		return "[" + strings.Join(acc, ", ") + "]"
	case *Term:
		return vv.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// IsVariable reports if the string represents a variable.
//
// Variables start with a '?'.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// Unquestion removes (so to speak) a leading question mark (if any).
func Unquestion(p string) string {
	if strings.HasPrefix(p, "?") {
		return p[1:]
	}
	return p
}
