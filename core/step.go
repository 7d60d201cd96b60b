package core

import (
	"context"
)

// Step executes one Def.
//
// The Def's constraints are checked first, in order.  If one is
// False, the step is False.  Otherwise if one is Maybe, the step is
// Maybe and doesn't fire.  Once all constraints are True, the step
// fires:
//
//   NullOp is simply True.
//
//   Switch runs the target role's clause as a nested call and then
//   returns its result.
//
//   An outgoing Message is posted and is True.
//
//   An incoming Message is True when a matching Letter is collected
//   and Maybe when there isn't one yet.
func (x *Execution) Step(ctx context.Context, d Def) (TriState, error) {
	if cs := d.Constraints(); 0 < len(cs) {
		r, err := x.CheckAll(ctx, cs)
		x.logf("? %s: %s", ConstraintsString(cs), r)
		if err != nil || r != True {
			return r, err
		}
	}

	switch vv := d.(type) {
	case *NullOp:
		x.logf("# %s", vv)
		return True, nil
	case *Switch:
		return x.switchRole(ctx, vv)
	case *Message:
		if vv.Outgoing {
			return x.send(ctx, vv)
		}
		return x.receive(ctx, vv)
	}

	return Maybe, MalformedTree
}

func (x *Execution) switchRole(ctx context.Context, d *Switch) (TriState, error) {
	ci := x.Current()

	args := make([]interface{}, len(d.Type.Args))
	for i, a := range d.Type.Args {
		v, err := ci.Bindings.Resolve(a)
		if err != nil {
			return Maybe, err
		}
		args[i] = CopyValue(v)
	}

	id, err := ci.Bindings.Resolve(d.ID)
	if err != nil {
		return Maybe, err
	}
	if id == nil {
		return Maybe, &UnresolvedID{Switch: d.String()}
	}

	sub, err := x.Env.Instantiate(d.Type.Name, args, id)
	if err != nil {
		return Maybe, err
	}

	x.logf("# switching to %s", d.Agent)
	r, err := x.Run(ctx, sub)
	if err != nil {
		return Maybe, err
	}

	rets := sub.Returns()
	for i, a := range d.Type.Args {
		if v, is := a.(Variable); is {
			ci.Bindings.Set(v, rets.Args[i])
		}
	}
	x.logf("# returned from %s: %s %s", d.Agent, r, ci.Bindings)

	return r, nil
}

func (x *Execution) send(ctx context.Context, d *Message) (TriState, error) {
	ci := x.Current()

	content, err := ci.Bindings.ground(d.Content)
	if err != nil {
		return Maybe, err
	}
	payload := make([]interface{}, len(content.Args))
	for i, a := range content.Args {
		switch vv := a.(type) {
		case Value:
			payload[i] = vv.X
		default:
			payload[i] = vv
		}
	}

	to, err := ci.Bindings.Resolve(d.Peer.ID)
	if err != nil {
		return Maybe, err
	}

	l := &Letter{
		PostData: PostData{
			Type: content,
			From: ci.Self(),
			To: Party{
				Role: d.Peer.Type.Name,
				ID:   CopyValue(to),
			},
		},
		Payload: payload,
	}

	x.logf("# %s", d)
	x.Env.Post(l)

	return True, nil
}

func (x *Execution) receive(ctx context.Context, d *Message) (TriState, error) {
	ci := x.Current()

	from, err := ci.Bindings.Resolve(d.Peer.ID)
	if err != nil {
		return Maybe, err
	}

	q := PostData{
		Type: d.Content,
		From: Party{
			Role: d.Peer.Type.Name,
			ID:   from,
		},
		To: ci.Self(),
	}

	l, found := x.Env.Collect(q)
	if !found {
		return Maybe, nil
	}

	if v, is := d.Peer.ID.(Variable); is && !ci.Bindings.IsSet(v) {
		ci.Bindings.Set(v, l.From.ID)
	}
	for i, a := range d.Content.Args {
		v, is := a.(Variable)
		if !is || len(l.Payload) <= i {
			continue
		}
		ci.Bindings.Set(v, l.Payload[i])
	}

	x.logf("# %s", d)

	return True, nil
}
