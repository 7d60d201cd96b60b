/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

// Clause pairs a role signature with the root of the tree that governs
// an agent playing that role.
//
// A Clause is a template.  It's shared by every agent that plays the
// role, so it's never evaluated directly.  See Instantiate.
type Clause struct {
	// Signature is the role type and the agent ID.  The type's
	// arguments and the ID must be Variables.
	Signature Agent `json:"signature"`

	Root *Node `json:"root"`

	// Doc describes the clause in English and Markdown.
	Doc string `json:"doc,omitempty"`
}

// Role returns the name of the role the clause governs, or "" if the
// signature has no type.
func (c *Clause) Role() string {
	if c.Signature.Type == nil {
		return ""
	}
	return c.Signature.Type.Name
}

// Check verifies the signature.
func (c *Clause) Check() error {
	if c.Signature.Type == nil {
		return &BadSignature{Msg: "no role type"}
	}
	for _, a := range c.Signature.Type.Args {
		if _, is := a.(Variable); !is {
			return &BadSignature{
				Clause: c.Role(),
				Msg:    "argument " + argString(a) + " isn't a variable",
			}
		}
	}
	if _, is := c.Signature.ID.(Variable); !is {
		return &BadSignature{
			Clause: c.Role(),
			Msg:    "ID " + argString(c.Signature.ID) + " isn't a variable",
		}
	}
	if c.Root == nil {
		return &BadSignature{
			Clause: c.Role(),
			Msg:    "no body",
		}
	}
	return nil
}

// Copy makes a deep copy.
func (c *Clause) Copy() *Clause {
	return &Clause{
		Signature: c.Signature.Copy(),
		Root:      c.Root.Copy(),
		Doc:       c.Doc,
	}
}

func (c *Clause) String() string {
	return c.Signature.String() + " :: " + c.Root.String()
}

// Protocol is a set of Roles and a Clause for each of them.
//
// A Protocol is built once and then only read.  Roles and clauses are
// identified by the role type's name.
type Protocol struct {
	Name string `json:"name,omitempty"`
	Doc  string `json:"doc,omitempty"`

	roles   map[string]*Role
	clauses map[string]*Clause

	// order remembers the order in which roles were added.
	order []string
}

// NewProtocol makes an empty Protocol.
func NewProtocol(name string) *Protocol {
	return &Protocol{
		Name:    name,
		roles:   make(map[string]*Role),
		clauses: make(map[string]*Clause),
	}
}

// AddRole declares a Role.
func (p *Protocol) AddRole(r *Role) error {
	if r.Type == nil {
		return &UnknownRole{Role: "nil"}
	}
	if err := r.Kind.Valid(); err != nil {
		return err
	}
	name := r.Type.Name
	if _, have := p.roles[name]; have {
		return &DuplicateRole{Role: name}
	}
	p.roles[name] = r
	p.order = append(p.order, name)
	return nil
}

// AddClause adds the Clause for an already declared role.
func (p *Protocol) AddClause(c *Clause) error {
	if err := c.Check(); err != nil {
		return err
	}
	name := c.Role()
	if _, have := p.roles[name]; !have {
		return &MissingRole{Role: name}
	}
	if _, have := p.clauses[name]; have {
		return &DuplicateClause{Role: name}
	}
	p.clauses[name] = c
	return nil
}

// Role returns the Role with the given name.
func (p *Protocol) Role(name string) (*Role, bool) {
	r, have := p.roles[name]
	return r, have
}

// Clause returns the Clause for the role with the given name.
func (p *Protocol) Clause(name string) (*Clause, bool) {
	c, have := p.clauses[name]
	return c, have
}

// Roles returns the Roles in declaration order.
func (p *Protocol) Roles() []*Role {
	acc := make([]*Role, len(p.order))
	for i, name := range p.order {
		acc[i] = p.roles[name]
	}
	return acc
}

// Clauses returns the Clauses in role declaration order.
func (p *Protocol) Clauses() []*Clause {
	acc := make([]*Clause, 0, len(p.clauses))
	for _, name := range p.order {
		if c, have := p.clauses[name]; have {
			acc = append(acc, c)
		}
	}
	return acc
}

// InitialRole returns the first declared initial role.
func (p *Protocol) InitialRole() (*Role, error) {
	for _, name := range p.order {
		if r := p.roles[name]; r.Kind == Initial {
			return r, nil
		}
	}
	return nil, NoInitialRole
}

// Kind returns the kind of the named role.  An undeclared role is
// treated as Optional.
func (p *Protocol) Kind(role string) Kind {
	if r, have := p.roles[role]; have {
		return r.Kind
	}
	return Optional
}

// Validate checks that there is an initial role and that every
// required role has a clause.
func (p *Protocol) Validate() error {
	if _, err := p.InitialRole(); err != nil {
		return err
	}
	for _, name := range p.order {
		if !p.roles[name].Kind.Required() {
			continue
		}
		if _, have := p.clauses[name]; !have {
			return &UnknownClause{Role: name}
		}
	}
	return nil
}
