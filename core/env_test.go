package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

// testEnv is a minimal single-threaded-ish Env for tests.
type testEnv struct {
	sync.Mutex

	protocol *Protocol
	letters  []*Letter
	builtins Methods
	pauses   int

	// maxPauses makes Pause fail after that many pauses so a
	// stuck test doesn't hang.
	maxPauses int
}

func newTestEnv(p *Protocol) *testEnv {
	return &testEnv{
		protocol:  p,
		builtins:  Methods{},
		maxPauses: 10000,
	}
}

func (e *testEnv) Instantiate(role string, args []interface{}, id interface{}) (*ClauseInstance, error) {
	c, have := e.protocol.Clause(role)
	if !have {
		return nil, &UnknownClause{Role: role}
	}
	return Instantiate(c, e.protocol.Kind(role), args, id)
}

func (e *testEnv) Post(l *Letter) {
	e.Lock()
	e.letters = append(e.letters, l)
	e.Unlock()
}

func (e *testEnv) Collect(q PostData) (*Letter, bool) {
	e.Lock()
	defer e.Unlock()
	for i, l := range e.letters {
		if l.Matches(q) {
			e.letters = append(e.letters[:i], e.letters[i+1:]...)
			return l, true
		}
	}
	return nil, false
}

func (e *testEnv) Builtins(x *Execution) Capabilities {
	return e.builtins
}

func (e *testEnv) Pause(ctx context.Context) error {
	e.Lock()
	e.pauses++
	n := e.pauses
	e.Unlock()
	if e.maxPauses <= n {
		return context.DeadlineExceeded
	}
	time.Sleep(100 * time.Microsecond)
	return ctx.Err()
}

func (e *testEnv) Trace(x *Execution, format string, args ...interface{}) {
}

// runClause instantiates and runs the role's clause.
func runClause(t *testing.T, env *testEnv, caps Capabilities, role string, id interface{}, args ...interface{}) (TriState, *ClauseInstance, error) {
	ci, err := env.Instantiate(role, args, id)
	if err != nil {
		t.Fatal(err)
	}
	x := NewExecution(env, caps, role)
	r, err := x.Run(context.Background(), ci)
	return r, ci, err
}
