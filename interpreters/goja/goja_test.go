package goja

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/crew"
)

const succSrc = `
return {
  succ: function(x, y) {
    if (x.get() === null) return MAYBE;
    y.set(x.get() + 1);
    return TRUE;
  },
  big: function(x) {
    return 10 < x.get();
  },
  no: function() {
    return FALSE;
  },
  oops: function() {
    throw "oops";
  },
  nothing: function() {
  },
  termName: function(t, name) {
    name.set(t.get().name);
    return TRUE;
  },
  mkTerm: function(t) {
    t.set({name: "point", args: [1, 2]});
    return TRUE;
  },
  setConst: function(x) {
    x.set(1);
    return TRUE;
  }
};
`

func load(t *testing.T, src interface{}) *Capabilities {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	c, err := i.Load(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func call(t *testing.T, c core.Capabilities, name string, bs core.Bindings, args ...core.Argument) (core.TriState, error) {
	m, have := c.Method(name)
	if !have {
		t.Fatalf("no %s", name)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return m(ctx, core.Accessors(bs, args))
}

func TestSucc(t *testing.T) {
	c := load(t, succSrc)

	bs := core.NewBindings()
	r, err := call(t, c, "succ", bs, core.Var("X"), core.Var("Y"))
	if err != nil {
		t.Fatal(err)
	}
	if r != core.Maybe {
		t.Fatal(r)
	}

	bs.Set(core.Var("X"), 1)
	if r, err = call(t, c, "succ", bs, core.Var("X"), core.Var("Y")); err != nil {
		t.Fatal(err)
	}
	if r != core.True {
		t.Fatal(r)
	}
	if y, is := bs["Y"].(int); !is || y != 2 {
		t.Fatalf("%#v", bs["Y"])
	}
}

func TestResults(t *testing.T) {
	c := load(t, succSrc)

	tests := []struct {
		name string
		args []core.Argument
		want core.TriState
		err  bool
	}{
		{"big", []core.Argument{core.Val(11)}, core.True, false},
		{"big", []core.Argument{core.Val(9)}, core.False, false},
		{"no", nil, core.False, false},
		{"oops", nil, core.Maybe, true},
		{"nothing", nil, core.Maybe, true},
		{"setConst", []core.Argument{core.Val(2)}, core.Maybe, true},
	}

	for _, tst := range tests {
		r, err := call(t, c, tst.name, core.NewBindings(), tst.args...)
		if (err != nil) != tst.err {
			t.Fatalf("%s: %v", tst.name, err)
		}
		if r != tst.want {
			t.Fatalf("%s: %s", tst.name, r)
		}
	}

	if _, have := c.Method("missing"); have {
		t.Fatal("found missing")
	}
	if n := len(c.Names()); n != 8 {
		t.Fatal(c.Names())
	}
}

func TestTerms(t *testing.T) {
	c := load(t, succSrc)

	bs := core.NewBindings()
	bs.Set(core.Var("T"), core.MustParseTerm(`ping(1, "x")`))
	if _, err := call(t, c, "termName", bs, core.Var("T"), core.Var("N")); err != nil {
		t.Fatal(err)
	}
	if bs["N"] != "ping" {
		t.Fatal(bs)
	}

	if _, err := call(t, c, "mkTerm", bs, core.Var("P")); err != nil {
		t.Fatal(err)
	}
	p, is := bs["P"].(*core.Term)
	if !is {
		t.Fatalf("%#v", bs["P"])
	}
	if s := p.String(); s != "point(1, 2)" {
		t.Fatal(s)
	}
}

func TestTimeout(t *testing.T) {
	c := load(t, `return {
  spin: function() { for (;;) { sleep(10); } },
  no: function() { return FALSE; }
};`)

	m, _ := c.Method("spin")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := m(ctx, nil)
	if err != Interrupted {
		t.Fatal(err)
	}

	// The runtime is still usable.
	if r, err := call(t, c, "no", core.NewBindings()); err != nil || r != core.False {
		t.Fatal(r, err)
	}
}

func TestLoadErrors(t *testing.T) {
	i := NewInterpreter()
	ctx := context.Background()

	for _, src := range []interface{}{
		`return 1 +;`,
		`return null;`,
		`likes + tacos;`,
		42,
		map[string]interface{}{"requires": "x"},
	} {
		if _, err := i.Load(ctx, src); err == nil {
			t.Fatalf("%#v: didn't protest", src)
		}
	}
}

func TestCron(t *testing.T) {
	since := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339Nano)
	c := load(t, `
return {
  next: function(x) { x.set(cronNext("* * * * *")); return TRUE; },
  due: function(since) { return cronDue("* * * * *", since.get()); },
  bad: function() { cronNext("bad"); return TRUE; }
};`)

	bs := core.NewBindings()
	if _, err := call(t, c, "next", bs, core.Var("N")); err != nil {
		t.Fatal(err)
	}
	s, _ := bs["N"].(string)
	next, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatal(err)
	}
	if !time.Now().Before(next) {
		t.Fatal(next)
	}

	r, err := call(t, c, "due", bs, core.Val(since))
	if err != nil {
		t.Fatal(err)
	}
	if r != core.True {
		t.Fatal(r)
	}

	if _, err = call(t, c, "bad", bs); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestRequires(t *testing.T) {
	i := NewInterpreter()
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"foo": `function foo() { return "chips"; }`,
		"bar": `function bar() { return TRUE; }`,
	})

	src := map[string]interface{}{
		"requires": []interface{}{"foo"},
		"code": `require("bar");
return {
  likes: function(x) { x.set(foo()); return bar(); }
};`,
	}

	c, err := i.Load(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	bs := core.NewBindings()
	r, err := call(t, c, "likes", bs, core.Var("L"))
	if err != nil {
		t.Fatal(err)
	}
	if r != core.True || bs["L"] != "chips" {
		t.Fatal(r, bs)
	}

	src["requires"] = "baz"
	if _, err = i.Load(context.Background(), src); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestCrewWithScriptedPonger(t *testing.T) {
	p, err := core.PingPongProtocol()
	if err != nil {
		t.Fatal(err)
	}
	conf := crew.DefaultConf()
	conf.PollInterval = time.Millisecond
	c, err := crew.New(p, conf)
	if err != nil {
		t.Fatal(err)
	}

	pinger, _ := c.Subscribe("pinger", nil, "p1")
	c.Subscribe("ponger", load(t, succSrc), "q1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = c.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err = c.Wait(); err != nil {
		t.Fatal(err)
	}

	r, bs, err := pinger.Result()
	if err != nil || r != core.True {
		t.Fatal(r, err)
	}
	if !core.Equal(bs["Y"], 2) {
		t.Fatal(bs)
	}
}
