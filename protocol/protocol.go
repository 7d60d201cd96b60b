package protocol

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/Comcast/lcc/core"

	"github.com/jsccast/yaml"
)

// Doc is a protocol document.
type Doc struct {
	Name    string       `json:"name" yaml:"name"`
	Doc     string       `json:"doc,omitempty" yaml:"doc,omitempty"`
	Roles   []*RoleDoc   `json:"roles" yaml:"roles"`
	Clauses []*ClauseDoc `json:"clauses" yaml:"clauses"`
}

// RoleDoc declares a role.
type RoleDoc struct {
	// Name is a term literal, usually just a name.
	Name string    `json:"name" yaml:"name"`
	Kind core.Kind `json:"kind" yaml:"kind"`
	Min  int       `json:"min,omitempty" yaml:"min,omitempty"`
	Max  int       `json:"max,omitempty" yaml:"max,omitempty"`
	Doc  string    `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// ClauseDoc is the clause for a role.
type ClauseDoc struct {
	// Signature is an agent literal like "a(buyer(?Budget), ?I)".
	Signature string `json:"signature" yaml:"signature"`

	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Body is a list of operator strings and steps.
	Body []interface{} `json:"body" yaml:"body"`
}

// StepDoc is one step in a clause body.
type StepDoc struct {
	Send   string           `json:"send,omitempty" yaml:"send,omitempty"`
	To     string           `json:"to,omitempty" yaml:"to,omitempty"`
	Recv   string           `json:"recv,omitempty" yaml:"recv,omitempty"`
	From   string           `json:"from,omitempty" yaml:"from,omitempty"`
	Switch string           `json:"switch,omitempty" yaml:"switch,omitempty"`
	Noop   bool             `json:"noop,omitempty" yaml:"noop,omitempty"`
	If     []*ConstraintDoc `json:"if,omitempty" yaml:"if,omitempty"`
}

// ConstraintDoc is one constraint.
type ConstraintDoc struct {
	Assign []interface{} `json:"assign,omitempty" yaml:"assign,omitempty"`
	Lt     []interface{} `json:"lt,omitempty" yaml:"lt,omitempty"`
	Gt     []interface{} `json:"gt,omitempty" yaml:"gt,omitempty"`
	Eq     []interface{} `json:"eq,omitempty" yaml:"eq,omitempty"`
	Ne     []interface{} `json:"ne,omitempty" yaml:"ne,omitempty"`
	Cons   *ConsDoc      `json:"cons,omitempty" yaml:"cons,omitempty"`
	Call   string        `json:"call,omitempty" yaml:"call,omitempty"`
}

// ConsDoc is a list construction or destruction.
type ConsDoc struct {
	List string      `json:"list" yaml:"list"`
	Head interface{} `json:"head" yaml:"head"`
	Tail interface{} `json:"tail" yaml:"tail"`
}

// Load reads and compiles a protocol document.
func Load(filename string) (*core.Protocol, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(bs)
}

// Parse parses and compiles a protocol document.
func Parse(bs []byte) (*core.Protocol, error) {
	var d Doc
	if err := yaml.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	return d.Compile()
}

// Compile builds and validates the Protocol.
func (d *Doc) Compile() (*core.Protocol, error) {
	p := core.NewProtocol(d.Name)
	p.Doc = d.Doc

	for i, rd := range d.Roles {
		r, err := rd.Compile()
		if err != nil {
			return nil, fmt.Errorf("role %d: %w", i, err)
		}
		if err = p.AddRole(r); err != nil {
			return nil, err
		}
	}

	for i, cd := range d.Clauses {
		c, err := cd.Compile()
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		if err = p.AddClause(c); err != nil {
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Compile makes the Role.
func (rd *RoleDoc) Compile() (*core.Role, error) {
	t, err := core.ParseTerm(rd.Name)
	if err != nil {
		return nil, err
	}
	kind := rd.Kind
	if kind == "" {
		kind = core.Optional
	}
	return &core.Role{
		Type: t,
		Kind: kind,
		Min:  rd.Min,
		Max:  rd.Max,
		Doc:  rd.Doc,
	}, nil
}

// Compile makes the Clause.
func (cd *ClauseDoc) Compile() (*core.Clause, error) {
	sig, err := ParseAgent(cd.Signature)
	if err != nil {
		return nil, err
	}

	b := &core.TreeBuilder{}
	for i, x := range cd.Body {
		t, err := bodyToken(x)
		if err != nil {
			return nil, fmt.Errorf("%s body item %d: %w", sig.Type.Name, i, err)
		}
		b.Push(t)
	}
	root, err := b.Root()
	if err != nil {
		return nil, fmt.Errorf("%s body: %w", sig.Type.Name, err)
	}

	c := &core.Clause{
		Signature: sig,
		Root:      root,
		Doc:       cd.Doc,
	}
	if err = c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

func bodyToken(x interface{}) (core.Token, error) {
	if s, is := x.(string); is {
		op, ok := core.ParseOperator(s)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", s)
		}
		return op, nil
	}

	// Let the YAML package do the work of turning a generic map
	// into a StepDoc.
	bs, err := yaml.Marshal(x)
	if err != nil {
		return nil, err
	}
	var sd StepDoc
	if err = yaml.Unmarshal(bs, &sd); err != nil {
		return nil, err
	}
	return sd.Compile()
}

// NoStep occurs when a step is none of send, recv, switch, or noop.
var NoStep = errors.New("step needs one of send, recv, switch, noop")

// Compile makes the Def.
func (sd *StepDoc) Compile() (core.Def, error) {
	var (
		cs  = make([]core.Constraint, 0, len(sd.If))
		n   int
		def core.Def
	)

	for i, cd := range sd.If {
		c, err := cd.Compile()
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		cs = append(cs, c)
	}
	if len(cs) == 0 {
		cs = nil
	}

	if sd.Send != "" {
		n++
		content, err := core.ParseTerm(sd.Send)
		if err != nil {
			return nil, err
		}
		to, err := ParseAgent(sd.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		def = core.Send(content, to, cs...)
	}

	if sd.Recv != "" {
		n++
		content, err := core.ParseTerm(sd.Recv)
		if err != nil {
			return nil, err
		}
		from, err := ParseAgent(sd.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		def = core.Recv(content, from, cs...)
	}

	if sd.Switch != "" {
		n++
		a, err := ParseAgent(sd.Switch)
		if err != nil {
			return nil, err
		}
		def = &core.Switch{
			Agent: a,
			If:    cs,
		}
	}

	if sd.Noop {
		n++
		def = &core.NullOp{
			If: cs,
		}
	}

	switch n {
	case 0:
		return nil, NoStep
	case 1:
		return def, nil
	}
	return nil, fmt.Errorf("step has %d kinds", n)
}

// Compile makes the Constraint.
func (cd *ConstraintDoc) Compile() (core.Constraint, error) {
	var (
		acc []core.Constraint
		err error
	)

	binary := func(xs []interface{}, f func(l, r core.Argument) core.Constraint) {
		if xs == nil || err != nil {
			return
		}
		if len(xs) != 2 {
			err = fmt.Errorf("wanted 2 arguments, not %d", len(xs))
			return
		}
		var l, r core.Argument
		if l, err = ParseArgument(xs[0]); err != nil {
			return
		}
		if r, err = ParseArgument(xs[1]); err != nil {
			return
		}
		acc = append(acc, f(l, r))
	}

	comparison := func(op core.CompOp) func(l, r core.Argument) core.Constraint {
		return func(l, r core.Argument) core.Constraint {
			return core.Compare(l, op, r)
		}
	}

	binary(cd.Assign, func(l, r core.Argument) core.Constraint {
		return core.Assign(l, r)
	})
	binary(cd.Lt, comparison(core.Lt))
	binary(cd.Gt, comparison(core.Gt))
	binary(cd.Eq, comparison(core.Eq))
	binary(cd.Ne, comparison(core.Ne))
	if err != nil {
		return nil, err
	}

	if cd.Cons != nil {
		c, err := cd.Cons.Compile()
		if err != nil {
			return nil, err
		}
		acc = append(acc, c)
	}

	if cd.Call != "" {
		t, err := core.ParseTerm(cd.Call)
		if err != nil {
			return nil, err
		}
		acc = append(acc, &core.MethodCall{Term: t})
	}

	if len(acc) != 1 {
		return nil, fmt.Errorf("constraint needs exactly one kind, not %d", len(acc))
	}
	return acc[0], nil
}

// Compile makes the ListCons.
func (cd *ConsDoc) Compile() (*core.ListCons, error) {
	a, err := core.ParseArgument(cd.List)
	if err != nil {
		return nil, err
	}
	list, is := a.(core.Variable)
	if !is {
		return nil, fmt.Errorf("cons list %q isn't a variable", cd.List)
	}
	head, err := ParseArgument(cd.Head)
	if err != nil {
		return nil, err
	}
	tail, err := ParseArgument(cd.Tail)
	if err != nil {
		return nil, err
	}
	return core.Cons(list, head, tail), nil
}

// ParseArgument makes an Argument from a document value.  A string
// is an argument literal.  Anything else is a constant.
func ParseArgument(x interface{}) (core.Argument, error) {
	switch vv := x.(type) {
	case nil:
		return nil, nil
	case string:
		return core.ParseArgument(vv)
	}
	return core.Val(x), nil
}

// ParseAgent reads an agent literal like "a(ponger, ?P)".
//
// The ID is optional, and "_" means no ID.
func ParseAgent(s string) (core.Agent, error) {
	var a core.Agent
	t, err := core.ParseTerm(s)
	if err != nil {
		return a, err
	}
	if t.Name != "a" || len(t.Args) < 1 || 2 < len(t.Args) {
		return a, fmt.Errorf("%q isn't an agent a(TYPE, ID)", s)
	}
	typ, is := t.Args[0].(*core.Term)
	if !is {
		return a, fmt.Errorf("agent type in %q isn't a term", s)
	}
	a.Type = typ
	if len(t.Args) == 2 {
		id := t.Args[1]
		if u, is := id.(*core.Term); is && u.Name == "_" && len(u.Args) == 0 {
			id = nil
		}
		a.ID = id
	}
	return a, nil
}
