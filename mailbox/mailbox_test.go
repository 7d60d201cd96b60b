package mailbox

import (
	"sync"
	"testing"
	"time"

	"github.com/Comcast/lcc/core"
)

func letter(typ string, from, to core.Party, payload ...interface{}) *core.Letter {
	return &core.Letter{
		PostData: core.PostData{
			Type: core.MustParseTerm(typ),
			From: from,
			To:   to,
		},
		Payload: payload,
	}
}

func TestPutTake(t *testing.T) {
	m := New()
	l := letter("ping(1)", core.Party{Role: "pinger", ID: "p1"}, core.Party{Role: "ponger"}, 1)
	m.Put(l)

	q := core.PostData{
		Type: core.MustParseTerm("ping(?X)"),
		From: core.Party{Role: "pinger", ID: "p1"},
		To:   core.Party{Role: "ponger", ID: "q1"},
	}
	got, found := m.Take(q)
	if !found {
		t.Fatal("not found")
	}
	if got != l {
		t.Fatal(got)
	}
	if m.Len() != 0 {
		t.Fatal(m.Len())
	}
}

func TestTakeNoMatch(t *testing.T) {
	m := New()
	m.Put(letter("ping(1)", core.Party{Role: "pinger", ID: "p1"}, core.Party{Role: "ponger"}, 1))

	q := core.PostData{
		Type: core.MustParseTerm("pong(?X)"),
		From: core.Party{Role: "pinger"},
		To:   core.Party{Role: "ponger"},
	}
	if _, found := m.Take(q); found {
		t.Fatal("found")
	}
	if m.Len() != 1 {
		t.Fatal(m.Len())
	}
}

func TestTakeArrivalOrder(t *testing.T) {
	m := New()
	for _, id := range []string{"a", "b", "c"} {
		m.Put(letter("ping(1)", core.Party{Role: "pinger", ID: id}, core.Party{Role: "ponger"}, id))
	}

	q := core.PostData{
		Type: core.MustParseTerm("ping(?X)"),
		From: core.Party{Role: "pinger"},
		To:   core.Party{Role: "ponger", ID: "q1"},
	}
	for _, want := range []string{"a", "b", "c"} {
		l, found := m.Take(q)
		if !found {
			t.Fatal(want)
		}
		if l.From.ID != want {
			t.Fatal(l)
		}
	}
}

func TestSnapshotAndObserver(t *testing.T) {
	m := New()
	var ops []Op
	m.Observe(func(op Op, l *core.Letter) {
		ops = append(ops, op)
	})

	m.Put(letter("ping(1)", core.Party{Role: "pinger", ID: "p1"}, core.Party{Role: "ponger"}, []interface{}{1}))
	snap := m.Snapshot()
	if len(snap) != 1 {
		t.Fatal(snap)
	}
	snap[0].Payload[0].([]interface{})[0] = 2
	if m.letters[0].Payload[0].([]interface{})[0] != 1 {
		t.Fatal("snapshot isn't a copy")
	}

	m.Take(core.PostData{Type: core.MustParseTerm("ping(?X)")})
	if len(ops) != 2 || ops[0] != Added || ops[1] != Removed {
		t.Fatal(ops)
	}
}

func TestChanged(t *testing.T) {
	m := New()
	c := m.Changed()
	select {
	case <-c:
		t.Fatal("changed already")
	default:
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-c:
		case <-time.After(5 * time.Second):
			t.Error("no change")
		}
	}()

	m.Put(letter("ping", core.Party{}, core.Party{}))
	wg.Wait()
}

func TestConcurrentTake(t *testing.T) {
	m := New()
	n := 100
	for i := 0; i < n; i++ {
		m.Put(letter("ping(?X)", core.Party{Role: "pinger", ID: i}, core.Party{Role: "ponger"}, i))
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken = make(map[interface{}]bool)
	)
	q := core.PostData{
		Type: core.MustParseTerm("ping(?X)"),
		To:   core.Party{Role: "ponger"},
	}
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				l, found := m.Take(q)
				if !found {
					return
				}
				mu.Lock()
				if taken[l.From.ID] {
					t.Errorf("%v taken twice", l.From.ID)
				}
				taken[l.From.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(taken) != n {
		t.Fatal(len(taken))
	}
}
