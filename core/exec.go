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
	"context"
	"sync/atomic"
)

// Env is what an Execution needs from the world around it.  The crew
// package provides one.
type Env interface {
	// Instantiate makes a fresh ClauseInstance for the named role.
	Instantiate(role string, args []interface{}, id interface{}) (*ClauseInstance, error)

	// Post adds a Letter to the mailbox.
	Post(l *Letter)

	// Collect removes and returns the first pending Letter that
	// matches the query.
	Collect(q PostData) (*Letter, bool)

	// Builtins returns the runtime's own capabilities as seen by
	// the given Execution.  These are consulted before the agent's
	// capabilities.
	Builtins(x *Execution) Capabilities

	// Pause waits a little (or until something changes) before an
	// evaluation that returned Maybe is tried again.
	Pause(ctx context.Context) error

	// Trace records an event for the given Execution.
	Trace(x *Execution, format string, args ...interface{})
}

// Execution is the context that one agent threads through every
// evaluation: the agent's capabilities and the stack of clause
// instances that role switches push and pop.
//
// An Execution is used by a single goroutine.
type Execution struct {
	Env  Env
	Caps Capabilities

	// Agent identifies the agent for logging.
	Agent string

	stack []*ClauseInstance

	// at is the current position, which other goroutines can
	// read.
	at atomic.Value
}

// position is the current clause's role and ID.
type position struct {
	role string
	id   interface{}
}

// NewExecution makes an Execution.
func NewExecution(env Env, caps Capabilities, agent string) *Execution {
	if caps == nil {
		caps = NoCapabilities
	}
	return &Execution{
		Env:   env,
		Caps:  caps,
		Agent: agent,
	}
}

// Current returns the clause instance that's executing now.
func (x *Execution) Current() *ClauseInstance {
	if len(x.stack) == 0 {
		return nil
	}
	return x.stack[len(x.stack)-1]
}

// Depth is the number of clause instances on the stack.
func (x *Execution) Depth() int {
	return len(x.stack)
}

// Role returns the name of the role that's executing now (or "").
// Unlike Current, Role is safe to call from any goroutine.
func (x *Execution) Role() string {
	p, _ := x.at.Load().(position)
	return p.role
}

// ID returns the agent ID of the clause that's executing now (or
// nil).  A role switch can run a clause under another ID.  Like
// Role, ID is safe to call from any goroutine.
func (x *Execution) ID() interface{} {
	p, _ := x.at.Load().(position)
	return p.id
}

func (x *Execution) push(ci *ClauseInstance) {
	x.stack = append(x.stack, ci)
	x.at.Store(position{
		role: ci.Role(),
		id:   CopyValue(ci.ID()),
	})
}

func (x *Execution) pop() {
	x.stack = x.stack[:len(x.stack)-1]
	var p position
	if ci := x.Current(); ci != nil {
		p = position{
			role: ci.Role(),
			id:   CopyValue(ci.ID()),
		}
	}
	x.at.Store(p)
}

func (x *Execution) logf(format string, args ...interface{}) {
	if x.Env != nil {
		x.Env.Trace(x, format, args...)
	}
}

// Run drives the clause instance to a definitive result.
//
// The instance's tree is evaluated until it's not Maybe, pausing
// between attempts.  An Uncommitted instance is evaluated exactly
// once.  A Cyclic instance starts over after every pass that doesn't
// end in False.
//
// Run returns an error only for a fault, which ends the run.
func (x *Execution) Run(ctx context.Context, ci *ClauseInstance) (TriState, error) {
	x.push(ci)
	defer x.pop()

	for {
		ci.Clause.Root.Reset()

		var (
			r   TriState
			err error
		)
		for {
			if r, err = x.Evaluate(ctx, ci.Clause.Root); err != nil {
				return Maybe, err
			}
			if ci.Kind == Uncommitted || r != Maybe {
				break
			}
			if err = x.Env.Pause(ctx); err != nil {
				return Maybe, err
			}
		}

		if ci.Kind != Cyclic || r == False {
			return r, nil
		}
		if err = ctx.Err(); err != nil {
			return Maybe, err
		}
		x.logf("restarting cyclic clause %s", ci.Role())
	}
}

// Evaluate returns the result of the tree rooted at the node.
//
// A node that has already reached True or False isn't evaluated
// again until it's Reset.
func (x *Execution) Evaluate(ctx context.Context, n *Node) (TriState, error) {
	if n == nil {
		return True, nil
	}
	if n.result != Maybe {
		return n.result, nil
	}

	var (
		r   TriState
		err error
	)

	switch vv := n.Token.(type) {
	case Def:
		r, err = x.Step(ctx, vv)
	case Operator:
		switch vv {
		case Then:
			r, err = x.then(ctx, n)
		case Or:
			r, err = x.or(ctx, n)
		default:
			err = MalformedTree
		}
	default:
		err = MalformedTree
	}

	if err != nil {
		return Maybe, err
	}
	n.result = r
	return r, nil
}

func (x *Execution) then(ctx context.Context, n *Node) (TriState, error) {
	left, err := x.Evaluate(ctx, n.Left)
	if err != nil {
		return Maybe, err
	}
	switch left {
	case True:
		return x.Evaluate(ctx, n.Right)
	case False:
		return False, nil
	}
	return Maybe, nil
}

func (x *Execution) or(ctx context.Context, n *Node) (TriState, error) {
	left, err := x.Evaluate(ctx, n.Left)
	if err != nil {
		return Maybe, err
	}
	switch left {
	case True:
		return True, nil
	case False:
		return x.Evaluate(ctx, n.Right)
	}
	right, err := x.Evaluate(ctx, n.Right)
	if err != nil {
		return Maybe, err
	}
	if right == True {
		return True, nil
	}
	return Maybe, nil
}
