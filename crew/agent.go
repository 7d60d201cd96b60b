/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package crew

import (
	"sync"

	"github.com/Comcast/lcc/core"
)

// Status is where an Agent is in its life.
type Status string

const (
	Subscribed Status = "subscribed"
	Running    Status = "running"
	Finished   Status = "finished"
	Failed     Status = "failed"
)

// Agent is one participant: an ID, the role it subscribed to, and
// the capabilities that back its decisions.
type Agent struct {
	sync.Mutex

	ID   string
	Role string
	Caps core.Capabilities

	status   Status
	x        *core.Execution
	result   core.TriState
	returns  *core.Returns
	bindings core.Bindings
	err      error
	done     chan struct{}
}

func newAgent(id, role string, caps core.Capabilities) *Agent {
	if caps == nil {
		caps = core.NoCapabilities
	}
	return &Agent{
		ID:     id,
		Role:   role,
		Caps:   caps,
		status: Subscribed,
		done:   make(chan struct{}),
	}
}

// AgentInfo is a snapshot of an Agent.
type AgentInfo struct {
	ID   string `json:"id"`
	Role string `json:"role"`

	// Current is the role the agent is playing now, which differs
	// from Role during a role switch.
	Current string `json:"current"`

	// CurrentID is the ID the agent is playing Current under.
	CurrentID interface{} `json:"currentId,omitempty"`

	Status   Status        `json:"status"`
	Result   core.TriState `json:"result"`
	Returns  *core.Returns `json:"returns,omitempty"`
	Bindings core.Bindings `json:"bindings,omitempty"`
	Err      string        `json:"err,omitempty"`
}

// Info returns a snapshot.
func (a *Agent) Info() AgentInfo {
	a.Lock()
	defer a.Unlock()

	info := AgentInfo{
		ID:        a.ID,
		Role:      a.Role,
		Current:   a.current(),
		CurrentID: a.currentID(),
		Status:    a.status,
		Result:    a.result,
		Returns:   a.returns,
	}
	if a.bindings != nil {
		info.Bindings = a.bindings.Copy()
	}
	if a.err != nil {
		info.Err = a.err.Error()
	}
	return info
}

// current returns the role the agent is playing now.  Lock held.
func (a *Agent) current() string {
	if a.x != nil {
		if r := a.x.Role(); r != "" {
			return r
		}
	}
	return a.Role
}

// currentID returns the ID the agent is playing its current role
// under.  Lock held.
func (a *Agent) currentID() interface{} {
	if a.x != nil {
		if id := a.x.ID(); id != nil {
			return id
		}
	}
	return a.ID
}

// CurrentID returns the ID of the clause the agent is running now,
// which differs from ID when a role switch gave it another one.
func (a *Agent) CurrentID() interface{} {
	a.Lock()
	defer a.Unlock()
	return a.currentID()
}

// Current returns the role the agent is playing now.
func (a *Agent) Current() string {
	a.Lock()
	defer a.Unlock()
	return a.current()
}

// Result returns the agent's final result and its top-level clause's
// final Bindings.  Both are only meaningful once the agent is Done.
func (a *Agent) Result() (core.TriState, core.Bindings, error) {
	a.Lock()
	defer a.Unlock()
	return a.result, a.bindings, a.err
}

// Done returns a channel that's closed when the agent finishes.
func (a *Agent) Done() <-chan struct{} {
	return a.done
}

func (a *Agent) start(x *core.Execution) {
	a.Lock()
	a.x = x
	a.status = Running
	a.Unlock()
}

func (a *Agent) finish(r core.TriState, ci *core.ClauseInstance, err error) {
	a.Lock()
	a.result = r
	a.err = err
	if ci != nil {
		a.returns = ci.Returns()
		a.bindings = ci.Bindings
	}
	if err != nil {
		a.status = Failed
	} else {
		a.status = Finished
	}
	a.Unlock()
	close(a.done)
}

// is reports whether the agent has the given Execution.
func (a *Agent) is(x *core.Execution) bool {
	a.Lock()
	defer a.Unlock()
	return a.x == x
}
