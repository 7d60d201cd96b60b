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

// Package crew runs a protocol: it holds the protocol, the roster of
// subscribed agents, and the mailbox that connects them.
//
// Agents Subscribe to roles.  Run waits until every initial and
// necessary role has enough subscribers and then starts every agent
// in its own goroutine.  An agent that subscribes after that starts
// right away.
package crew

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/mailbox"
	"github.com/Comcast/lcc/monitor"

	"golang.org/x/sync/errgroup"
)

// DefaultID is the agent ID used when none is given.
const DefaultID = "default"

// AlreadyRunning occurs when Run is called twice.
var AlreadyRunning = errors.New("crew already running")

// Crew is a protocol, its agents, and their mailbox.
type Crew struct {
	sync.Mutex

	Protocol *core.Protocol
	Conf     *Conf
	Mailbox  *mailbox.Mailbox
	Log      *monitor.Log

	agents  []*Agent
	cond    *sync.Cond
	started bool
	ctx     context.Context
	group   errgroup.Group
}

// New makes a Crew for the Protocol, which must have an initial role.
func New(p *core.Protocol, conf *Conf) (*Crew, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if conf == nil {
		conf = DefaultConf()
	}
	c := &Crew{
		Protocol: p,
		Conf:     conf,
		Mailbox:  mailbox.New(),
		Log:      monitor.NewLog(conf.LogLimit),
		agents:   make([]*Agent, 0, 8),
	}
	c.cond = sync.NewCond(c)

	c.Mailbox.Observe(func(op mailbox.Op, l *core.Letter) {
		switch op {
		case mailbox.Added:
			monitor.LettersPosted.Inc()
		case mailbox.Removed:
			monitor.LettersCollected.Inc()
		}
	})

	return c, nil
}

// Logf logs if c.Conf.Verbose.
func (c *Crew) Logf(format string, args ...interface{}) {
	if !c.Conf.Verbose {
		return
	}
	log.Printf(format, args...)
}

// event adds to the event log (and logs).
func (c *Crew) event(source, format string, args ...interface{}) {
	e := c.Log.Addf(source, format, args...)
	c.Logf("%s", e)
}

// Subscribe registers an agent for the named role.
//
// An empty id means DefaultID.  If the crew is already running, the
// agent starts immediately.
func (c *Crew) Subscribe(role string, caps core.Capabilities, id string) (*Agent, error) {
	if _, have := c.Protocol.Role(role); !have {
		return nil, &core.UnknownRole{Role: role}
	}
	if _, have := c.Protocol.Clause(role); !have {
		return nil, &core.UnknownClause{Role: role}
	}
	if id == "" {
		id = DefaultID
	}

	a := newAgent(id, role, caps)

	c.Lock()
	c.agents = append(c.agents, a)
	started := c.started
	c.cond.Broadcast()
	c.Unlock()

	c.event("crew", "%s subscribed to %s", id, role)

	if started {
		c.start(a)
	}

	return a, nil
}

// missing lists the required roles that don't have enough subscribers
// yet, as "role (have/needed)".  Lock held.
func (c *Crew) missing() []string {
	have := make(map[string]int, len(c.agents))
	for _, a := range c.agents {
		have[a.Role]++
	}
	var acc []string
	for _, r := range c.Protocol.Roles() {
		name := r.Type.Name
		if n := r.Needed(); have[name] < n {
			acc = append(acc, fmt.Sprintf("%s (%d/%d)", name, have[name], n))
		}
	}
	return acc
}

// covered reports whether every required role has enough
// subscribers.  Lock held.
func (c *Crew) covered() bool {
	return len(c.missing()) == 0
}

// Run blocks until every initial and necessary role has at least
// max(min,1) subscribers and then starts every subscribed agent.
//
// Run returns once the agents have started.  Use Wait to wait for
// them to finish.  Cancelling the context stops the waiting and,
// later, the agents.
func (c *Crew) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		c.Lock()
		c.cond.Broadcast()
		c.Unlock()
	})
	defer stop()

	c.Lock()
	if c.started {
		c.Unlock()
		return AlreadyRunning
	}

	if missing := c.missing(); 0 < len(missing) {
		c.Unlock()
		c.event("crew", "waiting for required roles: %s", strings.Join(missing, ", "))
		c.Lock()
	}
	for !c.covered() {
		if err := ctx.Err(); err != nil {
			c.Unlock()
			return err
		}
		c.cond.Wait()
	}

	c.started = true
	c.ctx = ctx
	agents := make([]*Agent, len(c.agents))
	copy(agents, c.agents)
	c.Unlock()

	c.event("crew", "all required roles subscribed")

	for _, a := range agents {
		c.start(a)
	}

	return nil
}

// Wait blocks until every started agent has finished.  It returns the
// first fault (if any).
func (c *Crew) Wait() error {
	return c.group.Wait()
}

func (c *Crew) start(a *Agent) {
	c.group.Go(func() error {
		return c.runAgent(c.ctx, a)
	})
}

func (c *Crew) runAgent(ctx context.Context, a *Agent) error {
	x := core.NewExecution(c, a.Caps, a.ID)
	a.start(x)

	monitor.AgentsStarted.WithLabelValues(a.Role).Inc()
	c.event(a.ID, "starting as %s", a.Role)

	clause, _ := c.Protocol.Clause(a.Role)
	ci, err := c.Instantiate(a.Role, make([]interface{}, clause.Signature.Type.Arity()), a.ID)
	if err != nil {
		c.fail(a, nil, err)
		return err
	}

	r, err := x.Run(ctx, ci)
	if err != nil {
		c.fail(a, ci, err)
		return fmt.Errorf("agent %s (%s): %w", a.ID, a.Role, err)
	}

	a.finish(r, ci, nil)
	monitor.AgentsFinished.WithLabelValues(a.Role, r.String()).Inc()
	c.event(a.ID, "finished %s %s", r, ci.Bindings)

	return nil
}

func (c *Crew) fail(a *Agent, ci *core.ClauseInstance, err error) {
	a.finish(core.Maybe, ci, err)
	monitor.AgentsFinished.WithLabelValues(a.Role, "fault").Inc()
	monitor.Faults.WithLabelValues(monitor.FaultName(err)).Inc()
	c.event(a.ID, "fault: %s", err)
}

// Agents returns a snapshot of the roster in subscription order.
func (c *Crew) Agents() []AgentInfo {
	c.Lock()
	agents := make([]*Agent, len(c.agents))
	copy(agents, c.agents)
	c.Unlock()

	acc := make([]AgentInfo, len(agents))
	for i, a := range agents {
		acc[i] = a.Info()
	}
	return acc
}

// Agent returns the first agent with the given ID.
func (c *Crew) Agent(id string) (*Agent, bool) {
	c.Lock()
	defer c.Unlock()
	for _, a := range c.agents {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Snapshot is what a monitor sees.
type Snapshot struct {
	Agents  []AgentInfo    `json:"agents"`
	Letters []*core.Letter `json:"letters"`
}

// Snapshot returns the roster and the pending letters.
func (c *Crew) Snapshot() *Snapshot {
	return &Snapshot{
		Agents:  c.Agents(),
		Letters: c.Mailbox.Snapshot(),
	}
}

// Instantiate implements core.Env.
func (c *Crew) Instantiate(role string, args []interface{}, id interface{}) (*core.ClauseInstance, error) {
	clause, have := c.Protocol.Clause(role)
	if !have {
		return nil, &core.UnknownClause{Role: role}
	}
	return core.Instantiate(clause, c.Protocol.Kind(role), args, id)
}

// Post implements core.Env.
func (c *Crew) Post(l *core.Letter) {
	c.Mailbox.Put(l)
	c.event("mailbox", "+ %s", l)
}

// Collect implements core.Env.
func (c *Crew) Collect(q core.PostData) (*core.Letter, bool) {
	l, found := c.Mailbox.Take(q)
	if found {
		c.event("mailbox", "- %s", l)
	}
	return l, found
}

// Pause implements core.Env.
//
// Waits for Conf.PollInterval or, if Conf.WakeOnMail, until a letter
// is posted.
func (c *Crew) Pause(ctx context.Context) error {
	monitor.Polls.Inc()

	var changed <-chan struct{}
	if c.Conf.WakeOnMail {
		changed = c.Mailbox.Changed()
	}

	timer := time.NewTimer(c.Conf.PollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case <-changed:
	}
	return nil
}

// Trace implements core.Env.
func (c *Crew) Trace(x *core.Execution, format string, args ...interface{}) {
	c.event(x.Agent, format, args...)
}
