package tools

import (
	"fmt"

	"github.com/Comcast/lcc/core"
)

// graphNode is a clause tree node with an ID that's good for dot and
// mermaid.
type graphNode struct {
	ID   string
	Node *core.Node
}

// clauseGraph is one clause's tree, flattened.
type clauseGraph struct {
	ID     string
	Clause *core.Clause
	Root   string
	Nodes  []*graphNode
	Edges  [][2]string
}

// link is an edge between clauses: a message from a send to a
// receive or a role switch to the clause it runs.
type link struct {
	From, To string
	Label    string
	Switch   bool
}

// graph is the whole protocol, flattened.
type graph struct {
	Clauses []*clauseGraph
	Links   []link
}

func newGraph(p *core.Protocol) *graph {
	g := &graph{}

	roots := make(map[string]string)
	for i, c := range p.Clauses() {
		cg := &clauseGraph{
			ID:     fmt.Sprintf("c%d", i),
			Clause: c,
		}
		cg.Root = cg.add(c.Root)
		roots[c.Role()] = cg.Root
		g.Clauses = append(g.Clauses, cg)
	}

	for _, cg := range g.Clauses {
		for _, n := range cg.Nodes {
			switch vv := n.Node.Token.(type) {
			case *core.Switch:
				if to, have := roots[vv.Type.Name]; have {
					g.Links = append(g.Links, link{
						From:   n.ID,
						To:     to,
						Label:  vv.Type.Name,
						Switch: true,
					})
				}
			case *core.Message:
				if !vv.Outgoing {
					continue
				}
				for _, other := range g.Clauses {
					if other.Clause.Role() != vv.Peer.Type.Name {
						continue
					}
					for _, m := range other.Nodes {
						if receives(m.Node, cg.Clause.Role(), vv.Content) {
							g.Links = append(g.Links, link{
								From:  n.ID,
								To:    m.ID,
								Label: vv.Content.Key(),
							})
						}
					}
				}
			}
		}
	}

	return g
}

// receives reports whether the node receives the content from the
// role.
func receives(n *core.Node, role string, content *core.Term) bool {
	m, is := n.Token.(*core.Message)
	if !is || m.Outgoing {
		return false
	}
	return m.Peer.Type.Name == role && m.Content.Matches(content)
}

func (cg *clauseGraph) add(n *core.Node) string {
	if n == nil {
		return ""
	}
	gn := &graphNode{
		ID:   fmt.Sprintf("%s_n%d", cg.ID, len(cg.Nodes)),
		Node: n,
	}
	cg.Nodes = append(cg.Nodes, gn)
	if _, is := n.Token.(core.Operator); is {
		if left := cg.add(n.Left); left != "" {
			cg.Edges = append(cg.Edges, [2]string{gn.ID, left})
		}
		if right := cg.add(n.Right); right != "" {
			cg.Edges = append(cg.Edges, [2]string{gn.ID, right})
		}
	}
	return gn.ID
}

// stepLabel is the step without its constraints.
func stepLabel(d core.Def) string {
	switch vv := d.(type) {
	case *core.NullOp:
		return "null"
	case *core.Switch:
		return vv.Agent.String()
	case *core.Message:
		if vv.Outgoing {
			return vv.Content.String() + " => " + vv.Peer.String()
		}
		return vv.Content.String() + " <= " + vv.Peer.String()
	}
	return d.String()
}
