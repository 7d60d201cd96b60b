package core

import (
	"strconv"
)

// ClauseInstance is one execution of a Clause: a private copy of the
// template's tree and the Bindings that go with it.
type ClauseInstance struct {
	Clause   *Clause
	Kind     Kind
	Bindings Bindings
}

// Instantiate copies the Clause and binds its signature to the given
// role arguments and agent ID.
func Instantiate(c *Clause, kind Kind, args []interface{}, id interface{}) (*ClauseInstance, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	if len(args) != c.Signature.Type.Arity() {
		return nil, &BadSignature{
			Clause: c.Role(),
			Msg: "wanted " + strconv.Itoa(c.Signature.Type.Arity()) +
				" arguments, not " + strconv.Itoa(len(args)),
		}
	}

	ci := &ClauseInstance{
		Clause:   c.Copy(),
		Kind:     kind,
		Bindings: NewBindings(),
	}
	for i, a := range ci.Clause.Signature.Type.Args {
		ci.Bindings.Set(a.(Variable), CopyValue(args[i]))
	}
	ci.Bindings.Set(ci.Clause.Signature.ID.(Variable), id)
	ci.Clause.Root.Reset()

	return ci, nil
}

// Role is the name of the role the instance plays.
func (ci *ClauseInstance) Role() string {
	return ci.Clause.Role()
}

// ID is the current value of the signature's ID.
func (ci *ClauseInstance) ID() interface{} {
	v, is := ci.Clause.Signature.ID.(Variable)
	if !is {
		return nil
	}
	return ci.Bindings[v.Name]
}

// Self is the instance as a Party.
func (ci *ClauseInstance) Self() Party {
	return Party{
		Role: ci.Role(),
		ID:   ci.ID(),
	}
}

// Returns is what a clause hands back to its caller: the current
// values of its signature's arguments and ID.
type Returns struct {
	Args []interface{} `json:"args"`
	ID   interface{}   `json:"id"`
}

// Returns collects the signature's current values.
func (ci *ClauseInstance) Returns() *Returns {
	args := ci.Clause.Signature.Type.Args
	acc := &Returns{
		Args: make([]interface{}, len(args)),
		ID:   ci.ID(),
	}
	for i, a := range args {
		acc.Args[i] = CopyValue(ci.Bindings.Get(a.(Variable)))
	}
	return acc
}
