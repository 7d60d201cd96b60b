package core

// Token is what a tree Node holds: a Def (a leaf) or an Operator.
type Token interface {
	CopyToken() Token
	String() string
}

// Def is one protocol step.  There are three: NullOp, Switch, and
// Message.
//
// Every Def carries an ordered list of constraints that must hold
// before the step fires.
type Def interface {
	Token

	// Constraints returns the constraints that gate the step.
	Constraints() []Constraint
}

// Agent is a role type together with an agent ID, as in
// "a(ponger, ?P)".
//
// Agents are used for clause signatures, message correspondents, and
// role switches.  In a clause signature, the type's arguments and
// the ID must be Variables.
type Agent struct {
	Type *Term    `json:"type"`
	ID   Argument `json:"id,omitempty"`
}

// A makes an Agent.
func A(typ *Term, id Argument) Agent {
	return Agent{
		Type: typ,
		ID:   id,
	}
}

// Copy makes a deep copy.
func (a Agent) Copy() Agent {
	acc := Agent{
		Type: a.Type.CopyTerm(),
	}
	if a.ID != nil {
		acc.ID = a.ID.Copy()
	}
	return acc
}

func (a Agent) String() string {
	id := "_"
	if a.ID != nil {
		id = a.ID.String()
	}
	return "a(" + a.Type.String() + ", " + id + ")"
}

func copyConstraints(cs []Constraint) []Constraint {
	if cs == nil {
		return nil
	}
	acc := make([]Constraint, len(cs))
	for i, c := range cs {
		acc[i] = c.CopyConstraint()
	}
	return acc
}

func constraintsString(cs []Constraint) string {
	if len(cs) == 0 {
		return ""
	}
	return " <- " + ConstraintsString(cs)
}

// NullOp always succeeds once its constraints hold.
type NullOp struct {
	If []Constraint `json:"if,omitempty"`
}

func (d *NullOp) Constraints() []Constraint {
	return d.If
}

func (d *NullOp) CopyToken() Token {
	return &NullOp{
		If: copyConstraints(d.If),
	}
}

func (d *NullOp) String() string {
	return "null" + constraintsString(d.If)
}

// Switch is a role switch: the agent executes the clause for another
// role as a nested call and then continues.
type Switch struct {
	Agent
	If []Constraint `json:"if,omitempty"`
}

func (d *Switch) Constraints() []Constraint {
	return d.If
}

func (d *Switch) CopyToken() Token {
	return &Switch{
		Agent: d.Agent.Copy(),
		If:    copyConstraints(d.If),
	}
}

func (d *Switch) String() string {
	return d.Agent.String() + constraintsString(d.If)
}

// Message is a send (Outgoing) or a receive of a message with the
// given Content to or from the Peer.
type Message struct {
	Content  *Term        `json:"content"`
	Peer     Agent        `json:"peer"`
	Outgoing bool         `json:"outgoing,omitempty"`
	If       []Constraint `json:"if,omitempty"`
}

// Send makes an outgoing Message.
func Send(content *Term, to Agent, cs ...Constraint) *Message {
	return &Message{
		Content:  content,
		Peer:     to,
		Outgoing: true,
		If:       cs,
	}
}

// Recv makes an incoming Message.
func Recv(content *Term, from Agent, cs ...Constraint) *Message {
	return &Message{
		Content: content,
		Peer:    from,
		If:      cs,
	}
}

func (d *Message) Constraints() []Constraint {
	return d.If
}

func (d *Message) CopyToken() Token {
	return &Message{
		Content:  d.Content.CopyTerm(),
		Peer:     d.Peer.Copy(),
		Outgoing: d.Outgoing,
		If:       copyConstraints(d.If),
	}
}

func (d *Message) String() string {
	arrow := " <= "
	if d.Outgoing {
		arrow = " => "
	}
	return d.Content.String() + arrow + d.Peer.String() + constraintsString(d.If)
}
