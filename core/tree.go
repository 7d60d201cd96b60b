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
	"errors"
	"fmt"
)

// Operator is the payload of an interior tree Node (Then, Or) or a
// grouping token that only exists while a tree is being built
// (OpenParen, CloseParen).
type Operator int

const (
	OpenParen Operator = iota + 1
	CloseParen
	Or
	Then
)

// Precedence is used when converting an infix token stream to RPN.
// Higher binds tighter.
func (o Operator) Precedence() int {
	switch o {
	case OpenParen, CloseParen:
		return 2
	case Or:
		return 3
	case Then:
		return 4
	}
	return 0
}

func (o Operator) CopyToken() Token {
	return o
}

func (o Operator) String() string {
	switch o {
	case OpenParen:
		return "("
	case CloseParen:
		return ")"
	case Or:
		return "or"
	case Then:
		return "then"
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator accepts "then", ">", "or", "|", "(", and ")".
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "then", ">", "Then", "THEN":
		return Then, true
	case "or", "|", "Or", "OR":
		return Or, true
	case "(":
		return OpenParen, true
	case ")":
		return CloseParen, true
	}
	return 0, false
}

// Node is a clause tree node.  Leaves hold a Def.  Interior nodes hold
// a Then or an Or.
//
// A Node remembers the result of its last evaluation.  Only a node
// whose remembered result is Maybe is evaluated again.  Reset clears
// that memory.
type Node struct {
	Token Token `json:"token"`
	Left  *Node `json:"left,omitempty"`
	Right *Node `json:"right,omitempty"`

	result TriState
}

// Leaf makes a Node for the Def.
func Leaf(d Def) *Node {
	return &Node{
		Token: d,
	}
}

// Join makes an interior Node.
func Join(op Operator, left, right *Node) *Node {
	return &Node{
		Token: op,
		Left:  left,
		Right: right,
	}
}

// Seq joins the nodes with Then, associating to the right.
func Seq(ns ...*Node) *Node {
	return chain(Then, ns)
}

// Alt joins the nodes with Or, associating to the right.
func Alt(ns ...*Node) *Node {
	return chain(Or, ns)
}

func chain(op Operator, ns []*Node) *Node {
	switch len(ns) {
	case 0:
		return nil
	case 1:
		return ns[0]
	}
	return Join(op, ns[0], chain(op, ns[1:]))
}

// Def returns the leaf's Def (or nil for an interior node).
func (n *Node) Def() Def {
	d, _ := n.Token.(Def)
	return d
}

// Result is the remembered result of the last evaluation.
func (n *Node) Result() TriState {
	return n.result
}

// Reset sets the remembered result of this node and all of its
// descendants to Maybe.
func (n *Node) Reset() {
	if n == nil {
		return
	}
	n.result = Maybe
	n.Left.Reset()
	n.Right.Reset()
}

// Copy makes a deep copy of the tree.  The copy's evaluation state is
// fresh.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	return &Node{
		Token: n.Token.CopyToken(),
		Left:  n.Left.Copy(),
		Right: n.Right.Copy(),
	}
}

// Walk calls the function on every node, parents before children,
// lefts before rights.
func (n *Node) Walk(f func(*Node)) {
	if n == nil {
		return
	}
	f(n)
	n.Left.Walk(f)
	n.Right.Walk(f)
}

// Defs returns the leaves' Defs in order.
func (n *Node) Defs() []Def {
	var acc []Def
	n.Walk(func(m *Node) {
		if d := m.Def(); d != nil {
			acc = append(acc, d)
		}
	})
	return acc
}

func (n *Node) String() string {
	if n == nil {
		return "nil"
	}
	if n.Left == nil && n.Right == nil {
		return n.Token.String()
	}
	return "(" + n.Left.String() + " " + n.Token.String() + " " + n.Right.String() + ")"
}

var (
	// UnbalancedParens occurs when a TreeBuilder gets a CloseParen
	// without an OpenParen or vice versa.
	UnbalancedParens = errors.New("unbalanced parentheses")

	// MalformedTree occurs when the tokens given to a TreeBuilder
	// don't alternate between steps and operators.
	MalformedTree = errors.New("malformed clause tree")
)

// TreeBuilder assembles a clause tree from an infix stream of Defs
// and Operators.
//
// Tokens are converted to Reverse-Polish order as they arrive.  A new
// operator first moves operators of higher precedence from the stack
// to the output, so Then binds tighter than Or and operators of equal
// precedence associate to the right.
type TreeBuilder struct {
	out []Token
	ops []Operator
	err error
}

// Push adds a Def or an Operator.
func (b *TreeBuilder) Push(t Token) {
	if b.err != nil {
		return
	}
	switch vv := t.(type) {
	case Operator:
		switch vv {
		case OpenParen:
			b.ops = append(b.ops, vv)
		case CloseParen:
			for {
				if len(b.ops) == 0 {
					b.err = UnbalancedParens
					return
				}
				top := b.pop()
				if top == OpenParen {
					break
				}
				b.out = append(b.out, top)
			}
		case Then, Or:
			for 0 < len(b.ops) {
				top := b.ops[len(b.ops)-1]
				if top == OpenParen || top.Precedence() <= vv.Precedence() {
					break
				}
				b.out = append(b.out, b.pop())
			}
			b.ops = append(b.ops, vv)
		default:
			b.err = fmt.Errorf("unknown operator %v", vv)
		}
	case Def:
		b.out = append(b.out, vv)
	default:
		b.err = fmt.Errorf("can't add a %T to a clause tree", t)
	}
}

func (b *TreeBuilder) pop() Operator {
	top := b.ops[len(b.ops)-1]
	b.ops = b.ops[:len(b.ops)-1]
	return top
}

// RPN returns the tokens in Reverse-Polish order so far.
func (b *TreeBuilder) RPN() []Token {
	return b.out
}

// Root purges the operator stack and assembles the tree.
func (b *TreeBuilder) Root() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	for 0 < len(b.ops) {
		top := b.pop()
		if top == OpenParen {
			return nil, UnbalancedParens
		}
		b.out = append(b.out, top)
	}

	var stack []*Node
	for _, t := range b.out {
		switch vv := t.(type) {
		case Operator:
			if len(stack) < 2 {
				return nil, MalformedTree
			}
			left, right := stack[len(stack)-2], stack[len(stack)-1]
			stack = append(stack[:len(stack)-2], Join(vv, left, right))
		case Def:
			stack = append(stack, Leaf(vv))
		}
	}
	if len(stack) != 1 {
		return nil, MalformedTree
	}
	return stack[0], nil
}

// BuildTree is a convenience function that pushes all of the tokens
// and returns the Root.
func BuildTree(ts ...Token) (*Node, error) {
	b := &TreeBuilder{}
	for _, t := range ts {
		b.Push(t)
	}
	return b.Root()
}
