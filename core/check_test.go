package core

import (
	"context"
	"errors"
	"testing"

	. "github.com/Comcast/lcc/util/testutil"
)

func checker(bs Bindings, caps Capabilities) (*Execution, *testEnv) {
	env := newTestEnv(NewProtocol("test"))
	x := NewExecution(env, caps, "tester")
	x.push(&ClauseInstance{
		Clause: &Clause{
			Signature: A(NewTerm("test"), Var("I")),
			Root:      Leaf(&NullOp{}),
		},
		Bindings: bs,
	})
	return x, env
}

func TestCheckAssignment(t *testing.T) {
	bs := NewBindings().Extend("Y", 42)
	x, _ := checker(bs, nil)
	ctx := context.Background()

	r, err := x.Check(ctx, Assign(Var("X"), Var("Y")))
	if err != nil {
		t.Fatal(err)
	}
	if r != True {
		t.Fatal(r)
	}
	if bs["X"] != 42 {
		t.Fatal(bs)
	}

	if _, err = x.Check(ctx, Assign(Val(1), Var("Y"))); err == nil {
		t.Fatal("should have complained")
	}
	var fault *AssignmentFault
	if !errors.As(err, &fault) {
		t.Fatalf("%#v", err)
	}
}

func TestCheckComparison(t *testing.T) {
	type test struct {
		left  interface{}
		op    CompOp
		right interface{}
		want  TriState
	}
	tests := []test{
		{1, Lt, 2, True},
		{2, Lt, 1, False},
		{2, Gt, 1, True},
		{1, Eq, 1, True},
		{1, Eq, float64(1), True},
		{int64(3), Gt, 2.5, True},
		{1, Ne, 2, True},
		{1, Ne, 1, False},
		{"a", Lt, "b", True},
		{"a", Eq, "a", True},
		{"a", Ne, "b", True},
		{false, Lt, true, True},
		{[]interface{}{1, 2}, Eq, []interface{}{1, 2}, True},
		{[]interface{}{1, 2}, Eq, []interface{}{1, 3}, False},
		{[]interface{}{1, 2}, Eq, []interface{}{1}, False},
		{[]interface{}{1, 2}, Lt, []interface{}{2, 3}, True},
		{[]interface{}{1, 4}, Lt, []interface{}{2, 3}, False},
		{[]interface{}{1, 2}, Ne, []interface{}{1, 2}, False},
		{[]interface{}{1, 2}, Ne, []interface{}{1, 3}, True},
		{[]interface{}{[]interface{}{1}}, Eq, []interface{}{[]interface{}{1}}, True},
	}

	for i, tst := range tests {
		bs := NewBindings().Extend("L", tst.left).Extend("R", tst.right)
		x, _ := checker(bs, nil)
		got, err := x.Check(context.Background(), Compare(Var("L"), tst.op, Var("R")))
		if err != nil {
			t.Fatalf("%d %s: %s", i, JS(tst), err)
		}
		if got != tst.want {
			t.Fatalf("%d: %v %s %v: %s, not %s", i, tst.left, tst.op, tst.right, got, tst.want)
		}
	}
}

func TestCheckComparisonFaults(t *testing.T) {
	tests := []struct {
		left, right interface{}
	}{
		{nil, 1},
		{1, nil},
		{1, "1"},
		{true, 1},
		{[]interface{}{1}, 1},
		{[]interface{}{1}, []interface{}{"1"}},
	}
	for i, tst := range tests {
		bs := NewBindings().Extend("L", tst.left).Extend("R", tst.right)
		x, _ := checker(bs, nil)
		_, err := x.Check(context.Background(), Compare(Var("L"), Eq, Var("R")))
		var fault *ComparisonFault
		if !errors.As(err, &fault) {
			t.Fatalf("%d: %#v", i, err)
		}
	}
}

func TestCheckListRoundTrip(t *testing.T) {
	ctx := context.Background()

	bs := NewBindings().Extend("H", "h").Extend("T", []interface{}{"t1", "t2"})
	x, _ := checker(bs, nil)
	r, err := x.Check(ctx, Cons(Var("L"), Var("H"), Var("T")))
	if err != nil {
		t.Fatal(err)
	}
	if r != True {
		t.Fatal(r)
	}
	if !Equal(bs["L"], []interface{}{"h", "t1", "t2"}) {
		t.Fatal(bs)
	}

	bs = NewBindings().Extend("L", []interface{}{"h", "t1", "t2"})
	x, _ = checker(bs, nil)
	if r, err = x.Check(ctx, Cons(Var("L"), Var("H"), Var("T"))); err != nil {
		t.Fatal(err)
	}
	if r != True {
		t.Fatal(r)
	}
	if bs["H"] != "h" {
		t.Fatal(bs)
	}
	if !Equal(bs["T"], []interface{}{"t1", "t2"}) {
		t.Fatal(bs)
	}

	bs = NewBindings().Extend("L", []interface{}{})
	x, _ = checker(bs, nil)
	if r, err = x.Check(ctx, Cons(Var("L"), Var("H"), Var("T"))); err != nil {
		t.Fatal(err)
	}
	if r != False {
		t.Fatal(r)
	}
}

func TestCheckListUnsetParts(t *testing.T) {
	bs := NewBindings().Extend("H", 1)
	x, _ := checker(bs, nil)
	if _, err := x.Check(context.Background(), Cons(Var("L"), Var("H"), Var("T"))); err != nil {
		t.Fatal(err)
	}
	if !Equal(bs["L"], []interface{}{1}) {
		t.Fatal(bs)
	}
}

func TestCheckMethodCall(t *testing.T) {
	ctx := context.Background()
	bs := NewBindings().Extend("X", 1)

	var agentCalls int
	caps := Methods{
		"same": func(ctx context.Context, args []Accessor) (TriState, error) {
			agentCalls++
			return False, nil
		},
		"even": BoolMethod(func(ctx context.Context, args []Accessor) (bool, error) {
			n, _ := Number(args[0].Get())
			return int(n)%2 == 0, nil
		}),
		"broken": func(ctx context.Context, args []Accessor) (TriState, error) {
			return Maybe, errors.New("chips")
		},
		"succ": Succ,
	}
	x, env := checker(bs, caps)
	env.builtins["same"] = func(ctx context.Context, args []Accessor) (TriState, error) {
		return True, nil
	}

	if r, err := x.Check(ctx, Call("same")); err != nil || r != True {
		t.Fatal(r, err)
	}
	if agentCalls != 0 {
		t.Fatal("built-in didn't come first")
	}

	if r, err := x.Check(ctx, Call("even", Var("X"))); err != nil || r != False {
		t.Fatal(r, err)
	}

	if r, err := x.Check(ctx, Call("succ", Var("X"), Var("Y"))); err != nil || r != True {
		t.Fatal(r, err)
	}
	if bs["Y"] != 2 {
		t.Fatal(bs)
	}

	_, err := x.Check(ctx, Call("missing"))
	var unknown *UnknownMethod
	if !errors.As(err, &unknown) {
		t.Fatalf("%#v", err)
	}

	_, err = x.Check(ctx, Call("broken"))
	var fault *MethodFault
	if !errors.As(err, &fault) {
		t.Fatalf("%#v", err)
	}

	_, err = x.Check(ctx, Call("succ", Var("X"), Val(3)))
	var acc *AccessorFault
	if !errors.As(err, &acc) {
		t.Fatalf("%#v", err)
	}
}

func TestCheckAllOrder(t *testing.T) {
	ctx := context.Background()
	var calls []string
	record := func(name string, r TriState) Method {
		return func(ctx context.Context, args []Accessor) (TriState, error) {
			calls = append(calls, name)
			return r, nil
		}
	}
	x, _ := checker(NewBindings(), Methods{
		"t": record("t", True),
		"f": record("f", False),
		"m": record("m", Maybe),
	})

	r, err := x.CheckAll(ctx, []Constraint{Call("m"), Call("t")})
	if err != nil || r != Maybe {
		t.Fatal(r, err)
	}
	r, err = x.CheckAll(ctx, []Constraint{Call("m"), Call("f"), Call("t")})
	if err != nil || r != False {
		t.Fatal(r, err)
	}
	if JS(calls) != `["m","t","m","f"]` {
		t.Fatal(JS(calls))
	}
}
