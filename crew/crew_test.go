package crew

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Comcast/lcc/core"
)

func testConf() *Conf {
	conf := DefaultConf()
	conf.PollInterval = time.Millisecond
	return conf
}

func pingPongCrew(t *testing.T) *Crew {
	p, err := core.PingPongProtocol()
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(p, testConf())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func wait(t *testing.T, c *Crew) error {
	done := make(chan error, 1)
	go func() {
		done <- c.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("agents didn't finish")
	}
	return nil
}

func TestCrewPingPong(t *testing.T) {
	c := pingPongCrew(t)

	pinger, err := c.Subscribe("pinger", nil, "p1")
	if err != nil {
		t.Fatal(err)
	}
	ponger, err := c.Subscribe("ponger", core.PingPongCapabilities(), "q1")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = c.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err = wait(t, c); err != nil {
		t.Fatal(err)
	}

	r, bs, err := pinger.Result()
	if err != nil {
		t.Fatal(err)
	}
	if r != core.True {
		t.Fatal(r)
	}
	if y := bs["Y"]; !core.Equal(y, 2) {
		t.Fatal(bs)
	}
	if p := bs["P"]; p != "q1" {
		t.Fatal(bs)
	}

	if r, _, err = ponger.Result(); err != nil || r != core.True {
		t.Fatal(r, err)
	}

	if n := c.Mailbox.Len(); n != 0 {
		t.Fatal(n)
	}

	for _, info := range c.Agents() {
		if info.Status != Finished {
			t.Fatal(info)
		}
	}

	if c.Run(ctx) != AlreadyRunning {
		t.Fatal("ran twice")
	}
}

func TestCrewGating(t *testing.T) {
	c := pingPongCrew(t)

	if _, err := c.Subscribe("pinger", nil, "p1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ran := make(chan error, 1)
	go func() {
		ran <- c.Run(ctx)
	}()

	select {
	case err := <-ran:
		t.Fatal("started without a ponger", err)
	case <-time.After(50 * time.Millisecond):
	}

	if info := c.Agents()[0]; info.Status != Subscribed {
		t.Fatal(info)
	}

	waiting := false
	for _, e := range c.Log.Events() {
		if strings.Contains(e.Text, "waiting for required roles: ponger (0/1)") {
			waiting = true
		}
	}
	if !waiting {
		t.Fatal(c.Log.Events())
	}

	if _, err := c.Subscribe("ponger", core.PingPongCapabilities(), "q1"); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-ran:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("didn't start")
	}

	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}
}

func TestCrewGatingCancelled(t *testing.T) {
	c := pingPongCrew(t)

	if _, err := c.Subscribe("pinger", nil, "p1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan error, 1)
	go func() {
		ran <- c.Run(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-ran:
		if !errors.Is(err, context.Canceled) {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("still waiting")
	}
}

func TestCrewLateSubscriber(t *testing.T) {
	c := pingPongCrew(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.Subscribe("pinger", nil, "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Subscribe("ponger", core.PingPongCapabilities(), "q1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(ctx); err != nil {
		t.Fatal(err)
	}

	late := make([]*Agent, 0, 2)
	for _, s := range []struct {
		role string
		id   string
		caps core.Capabilities
	}{
		{"pinger", "p2", nil},
		{"ponger", "q2", core.PingPongCapabilities()},
	} {
		a, err := c.Subscribe(s.role, s.caps, s.id)
		if err != nil {
			t.Fatal(err)
		}
		late = append(late, a)
	}

	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}

	for _, a := range late {
		if r, _, err := a.Result(); err != nil || r != core.True {
			t.Fatal(a.ID, r, err)
		}
	}
	if n := len(c.Agents()); n != 4 {
		t.Fatal(n)
	}
}

func TestCrewSubscribeErrors(t *testing.T) {
	c := pingPongCrew(t)

	_, err := c.Subscribe("juggler", nil, "j")
	var unknown *core.UnknownRole
	if !errors.As(err, &unknown) || unknown.Role != "juggler" {
		t.Fatal(err)
	}

	a, err := c.Subscribe("pinger", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != DefaultID {
		t.Fatal(a.ID)
	}
	if _, have := c.Agent(DefaultID); !have {
		t.Fatal("not found")
	}
}

func TestCrewNoInitialRole(t *testing.T) {
	p := core.NewProtocol("empty")
	if err := p.AddRole(core.NewRole("x", core.Optional, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := New(p, nil); err != core.NoInitialRole {
		t.Fatal(err)
	}
}

// faultyProtocol is ping-pong plus an optional role whose clause
// calls a method nobody has.
func faultyProtocol(t *testing.T) *core.Protocol {
	p, err := core.PingPongProtocol()
	if err != nil {
		t.Fatal(err)
	}
	if err = p.AddRole(core.NewRole("broken", core.Optional, 0, 1)); err != nil {
		t.Fatal(err)
	}
	err = p.AddClause(&core.Clause{
		Signature: core.A(core.NewTerm("broken"), core.Var("I")),
		Root:      core.Leaf(&core.NullOp{If: []core.Constraint{core.Call("nope")}}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCrewFaultIsolation(t *testing.T) {
	c, err := New(faultyProtocol(t), testConf())
	if err != nil {
		t.Fatal(err)
	}

	pinger, _ := c.Subscribe("pinger", nil, "p1")
	c.Subscribe("ponger", core.PingPongCapabilities(), "q1")
	broken, _ := c.Subscribe("broken", nil, "b1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = c.Run(ctx); err != nil {
		t.Fatal(err)
	}

	err = wait(t, c)
	var unknown *core.UnknownMethod
	if !errors.As(err, &unknown) || unknown.Method != "nope" {
		t.Fatal(err)
	}

	if _, _, err = broken.Result(); err == nil {
		t.Fatal("expected a fault")
	}
	if info := broken.Info(); info.Status != Failed || info.Err == "" {
		t.Fatal(info)
	}

	if r, _, err := pinger.Result(); err != nil || r != core.True {
		t.Fatal(r, err)
	}
}

func TestCrewFindPeers(t *testing.T) {
	c := pingPongCrew(t)

	c.Subscribe("pinger", nil, "p1")
	c.Subscribe("ponger", nil, "q1")
	c.Subscribe("ponger", nil, "q2")

	x := core.NewExecution(c, nil, "p1")
	if a, have := c.Agent("p1"); have {
		a.start(x)
	} else {
		t.Fatal("no p1")
	}

	m, have := c.Builtins(x).Method("_findPeers")
	if !have {
		t.Fatal("no _findPeers")
	}

	tests := []struct {
		role  interface{}
		want  []interface{}
		state core.TriState
	}{
		{"ponger", []interface{}{"q1", "q2"}, core.True},
		{core.NewTerm("ponger"), []interface{}{"q1", "q2"}, core.True},
		{nil, []interface{}{"q1", "q2"}, core.True},
		{core.NewTerm("_"), []interface{}{"q1", "q2"}, core.True},
		{"pinger", []interface{}{}, core.False},
		{"juggler", []interface{}{}, core.False},
	}

	for _, tst := range tests {
		bs := core.NewBindings()
		bs.Set(core.Var("R"), tst.role)
		args := core.Accessors(bs, []core.Argument{core.Var("R"), core.Var("Ps")})
		r, err := m(context.Background(), args)
		if err != nil {
			t.Fatal(err)
		}
		if r != tst.state {
			t.Fatalf("%v: %s", tst.role, r)
		}
		if !core.Equal(bs["Ps"], tst.want) {
			t.Fatalf("%v: %v", tst.role, bs["Ps"])
		}
	}

	if _, err := m(context.Background(), nil); err == nil {
		t.Fatal("expected an arity error")
	}
}

// aliasProtocol has a host that switches to guest under the ID
// "alias" and a caller that finds the guest with _findPeers.
func aliasProtocol(t *testing.T) *core.Protocol {
	p := core.NewProtocol("alias")
	for _, r := range []*core.Role{
		core.NewRole("host", core.Initial, 1, 1),
		core.NewRole("caller", core.Necessary, 1, 1),
		core.NewRole("guest", core.Auxiliary, 0, 1),
	} {
		if err := p.AddRole(r); err != nil {
			t.Fatal(err)
		}
	}

	clauses := []*core.Clause{
		{
			Signature: core.A(core.NewTerm("host"), core.Var("I")),
			Root: core.Leaf(&core.Switch{
				Agent: core.A(core.NewTerm("guest"), core.Val("alias")),
			}),
		},
		{
			Signature: core.A(core.NewTerm("guest"), core.Var("I")),
			Root: core.Leaf(core.Recv(core.NewTerm("hi"),
				core.A(core.NewTerm("caller"), core.Var("C")))),
		},
		{
			Signature: core.A(core.NewTerm("caller"), core.Var("I")),
			Root: core.Seq(
				core.Leaf(&core.NullOp{If: []core.Constraint{
					core.Call("hostSwitched"),
				}}),
				core.Leaf(&core.NullOp{If: []core.Constraint{
					core.Call("_findPeers", core.Val("guest"), core.Var("L")),
					core.Cons(core.Var("L"), core.Var("P"), core.Var("Rest")),
				}}),
				core.Leaf(core.Send(core.NewTerm("hi"),
					core.A(core.NewTerm("guest"), core.Var("P")))),
			),
		},
	}
	for _, c := range clauses {
		if err := p.AddClause(c); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestCrewFindPeersAfterSwitch(t *testing.T) {
	c, err := New(aliasProtocol(t), testConf())
	if err != nil {
		t.Fatal(err)
	}

	host, err := c.Subscribe("host", nil, "h1")
	if err != nil {
		t.Fatal(err)
	}

	caps := core.Methods{
		"hostSwitched": func(ctx context.Context, args []core.Accessor) (core.TriState, error) {
			if host.Current() == "guest" {
				return core.True, nil
			}
			return core.Maybe, nil
		},
	}
	caller, err := c.Subscribe("caller", caps, "c1")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = c.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err = wait(t, c); err != nil {
		t.Fatal(err)
	}

	r, bs, err := caller.Result()
	if err != nil || r != core.True {
		t.Fatal(r, err)
	}
	if p := bs["P"]; p != "alias" {
		t.Fatal(bs)
	}

	if r, _, err = host.Result(); err != nil || r != core.True {
		t.Fatal(r, err)
	}
	if n := c.Mailbox.Len(); n != 0 {
		t.Fatal(n)
	}
}

func TestCrewSnapshot(t *testing.T) {
	c := pingPongCrew(t)
	c.Subscribe("pinger", nil, "p1")
	c.Post(&core.Letter{
		PostData: core.PostData{
			Type: core.NewTerm("ping", core.Val(1)),
			From: core.Party{Role: "pinger", ID: "p1"},
			To:   core.Party{Role: "ponger"},
		},
		Payload: []interface{}{1},
	})

	s := c.Snapshot()
	if len(s.Agents) != 1 || len(s.Letters) != 1 {
		t.Fatal(s)
	}
	if 0 == c.Log.Len() {
		t.Fatal("no events")
	}
}

func TestParseConf(t *testing.T) {
	conf, err := ParseConf([]byte("verbose: true\nlogLimit: 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !conf.Verbose || conf.LogLimit != 5 {
		t.Fatal(conf)
	}
	if conf.PollInterval != DefaultConf().PollInterval || !conf.WakeOnMail {
		t.Fatal(conf)
	}

	if conf, err = ParseConf([]byte(`{"wakeOnMail":false}`)); err != nil {
		t.Fatal(err)
	}
	if conf.WakeOnMail {
		t.Fatal(conf)
	}
}
