package core

import (
	"context"
	"fmt"
)

// PingPongProtocol makes an example Protocol that's useful to have
// around.
//
// The pinger sends ping(1) to a ponger and then waits for a pong.
// The ponger receives a ping(X) and answers with pong(X+1), which it
// computes with the "succ" capability (see PingPongCapabilities).
//
//   a(pinger, ?I) :: ping(?X) => a(ponger, ?P) <- ?X = 1
//                    then pong(?Y) <= a(ponger, ?P)
//
//   a(ponger, ?I) :: ping(?X) <= a(pinger, ?Q)
//                    then pong(?Y) => a(pinger, ?Q) <- succ(?X, ?Y)
func PingPongProtocol() (*Protocol, error) {
	p := NewProtocol("pingpong")
	p.Doc = "A pinger pings a ponger, which pongs back with the successor."

	if err := p.AddRole(NewRole("pinger", Initial, 1, 1)); err != nil {
		return nil, err
	}
	if err := p.AddRole(NewRole("ponger", Necessary, 1, 1)); err != nil {
		return nil, err
	}

	thePonger := A(NewTerm("ponger"), Var("P"))
	thePinger := A(NewTerm("pinger"), Var("Q"))

	clauses := []*Clause{
		{
			Signature: A(NewTerm("pinger"), Var("I")),
			Root: Seq(
				Leaf(Send(NewTerm("ping", Var("X")), thePonger, Assign(Var("X"), Val(1)))),
				Leaf(Recv(NewTerm("pong", Var("Y")), thePonger)),
			),
			Doc: "Sends `ping(1)` and waits for the `pong`.",
		},
		{
			Signature: A(NewTerm("ponger"), Var("I")),
			Root: Seq(
				Leaf(Recv(NewTerm("ping", Var("X")), thePinger)),
				Leaf(Send(NewTerm("pong", Var("Y")), thePinger, Call("succ", Var("X"), Var("Y")))),
			),
			Doc: "Answers a `ping(X)` with `pong(X+1)`.",
		},
	}
	for _, c := range clauses {
		if err := p.AddClause(c); err != nil {
			return nil, err
		}
	}

	return p, p.Validate()
}

// PingPongCapabilities has the "succ" capability that the ponger
// needs.
//
// succ(X, Y) binds Y to X+1.  It's Maybe while X is unset.
func PingPongCapabilities() Methods {
	return Methods{
		"succ": Succ,
	}
}

// Succ binds its second argument to the successor of its first.
func Succ(ctx context.Context, args []Accessor) (TriState, error) {
	if len(args) != 2 {
		return Maybe, fmt.Errorf("succ wants 2 arguments, not %d", len(args))
	}
	var y interface{}
	switch vv := args[0].Get().(type) {
	case nil:
		return Maybe, nil
	case int:
		y = vv + 1
	case int64:
		y = vv + 1
	default:
		n, is := Number(vv)
		if !is {
			return Maybe, fmt.Errorf("succ wants a number, not a %T", vv)
		}
		y = n + 1
	}
	if err := args[1].Set(y); err != nil {
		return Maybe, err
	}
	return True, nil
}
