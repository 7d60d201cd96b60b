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

package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/util"
)

type MermaidOpts struct {
	// ShowConstraints will add a step's constraints to its node
	// label.
	ShowConstraints bool `json:"showConstraints"`

	// ShowMessages will draw an edge from each send to every
	// receive that could accept it.
	ShowMessages bool `json:"showMessages"`

	// SwitchFill is the fill color of role switch nodes.
	SwitchFill string `json:"switchFill,omitempty"`

	// SendFill is the fill color of send nodes.
	SendFill string `json:"sendFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given protocol.
func Mermaid(p *core.Protocol, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowConstraints: true,
			ShowMessages:    true,
			SwitchFill:      "#bcf2db",
			SendFill:        "#9fd5e3",
		}
	}

	g := newGraph(p)

	util.Logf("mermaid: processing %d clauses", len(g.Clauses))

	fmt.Fprintf(w, "graph TB\n")

	for _, cg := range g.Clauses {
		fmt.Fprintf(w, "  subgraph %s [\"%s\"]\n", cg.ID, quote(cg.Clause.Signature.String()))
		for _, n := range cg.Nodes {
			if op, is := n.Node.Token.(core.Operator); is {
				fmt.Fprintf(w, "    %s((%s))\n", n.ID, op)
				continue
			}
			d := n.Node.Def()
			label := quote(stepLabel(d))
			if opts.ShowConstraints && 0 < len(d.Constraints()) {
				cs := make([]string, 0, len(d.Constraints()))
				for _, c := range d.Constraints() {
					cs = append(cs, c.String())
				}
				bs, err := json.Marshal(cs)
				if err != nil {
					return err
				}
				label += "<br/>" + quote(string(bs))
			}
			if _, is := d.(*core.Switch); is {
				fmt.Fprintf(w, "    %s[[\"%s\"]]\n", n.ID, label)
				if opts.SwitchFill != "" {
					fmt.Fprintf(w, "    style %s fill:%s\n", n.ID, opts.SwitchFill)
				}
				continue
			}
			fmt.Fprintf(w, "    %s(\"%s\")\n", n.ID, label)
			if m, is := d.(*core.Message); is && m.Outgoing && opts.SendFill != "" {
				fmt.Fprintf(w, "    style %s fill:%s\n", n.ID, opts.SendFill)
			}
		}
		for _, e := range cg.Edges {
			fmt.Fprintf(w, "    %s --> %s\n", e[0], e[1])
		}
		fmt.Fprintf(w, "  end\n")
	}

	for _, l := range g.Links {
		if l.Switch {
			fmt.Fprintf(w, "  %s -.-> %s\n", l.From, l.To)
			continue
		}
		if opts.ShowMessages {
			fmt.Fprintf(w, "  %s -. \"%s\" .-> %s\n", l.From, quote(l.Label), l.To)
		}
	}

	fmt.Fprintf(w, "\n")
	util.Logf("mermaid gen done")

	return w.Close()
}

func quote(s string) string {
	s = strings.Replace(s, `"`, "#quot;", -1)
	s = strings.Replace(s, "<", "#lt;", -1)
	s = strings.Replace(s, ">", "#gt;", -1)
	return s
}
