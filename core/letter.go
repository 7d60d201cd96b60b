package core

import (
	"fmt"
)

// Party is a sender or a recipient: a role name and an agent ID.
//
// An empty Role or a nil ID is a wildcard.
type Party struct {
	Role string      `json:"role,omitempty"`
	ID   interface{} `json:"id,omitempty"`
}

// Matches reports whether the two Parties could be the same.  Fields
// match when either side is a wildcard or when both are equal.
func (p Party) Matches(q Party) bool {
	if p.Role != "" && q.Role != "" && p.Role != q.Role {
		return false
	}
	if p.ID == nil || q.ID == nil {
		return true
	}
	return Equal(p.ID, q.ID)
}

func (p Party) String() string {
	role := p.Role
	if role == "" {
		role = "_"
	}
	id := "_"
	if p.ID != nil {
		id = FormatValue(p.ID)
	}
	return role + "/" + id
}

// PostData is the addressing of a Letter: the message type, the
// sender, and the recipient.
type PostData struct {
	Type *Term `json:"type"`
	From Party `json:"from"`
	To   Party `json:"to"`
}

// Matches reports whether the letter's PostData satisfies the query.
//
// Message types must have the same shape (see Term.Matches).  The
// parties match as described by Party.Matches.
func (p PostData) Matches(q PostData) bool {
	if !p.Type.Matches(q.Type) {
		return false
	}
	return p.From.Matches(q.From) && p.To.Matches(q.To)
}

func (p PostData) String() string {
	return p.Type.Key() + " " + p.From.String() + " -> " + p.To.String()
}

// Letter is a message in flight.
type Letter struct {
	PostData

	// Payload holds the values of the content's arguments.
	Payload []interface{} `json:"payload"`
}

// Copy makes a deep copy.
func (l *Letter) Copy() *Letter {
	payload := make([]interface{}, len(l.Payload))
	for i, x := range l.Payload {
		payload[i] = CopyValue(x)
	}
	return &Letter{
		PostData: PostData{
			Type: l.Type.CopyTerm(),
			From: l.From,
			To:   l.To,
		},
		Payload: payload,
	}
}

func (l *Letter) String() string {
	acc := make([]interface{}, len(l.Payload))
	for i, x := range l.Payload {
		acc[i] = FormatValue(x)
	}
	return fmt.Sprintf("%s%v from %s to %s", l.Type.Name, acc, l.From, l.To)
}
