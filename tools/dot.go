package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/util"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given protocol.
//
// Each clause is a cluster that holds the clause's tree.  Dotted
// edges go from sends to the receives that could accept them, and
// dashed edges go from role switches to the clause they run.
//
// The optional highlight is a role name.  If not empty, that role's
// cluster will be red.
func Dot(p *core.Protocol, w io.WriteCloser, highlight string) error {

	g := newGraph(p)

	util.Logf("dot: processing %d clauses", len(g.Clauses))

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6,compound=true]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	for _, cg := range g.Clauses {
		role := cg.Clause.Role()
		color := "black"
		if role == highlight {
			color = "red"
		}
		label := escape(cg.Clause.Signature.String())
		if r, have := p.Role(role); have {
			label += ` (` + string(r.Kind) + `)`
			if r.Doc != "" {
				label += `\n` + escape(util.Summary(r.Doc, 40))
			}
		}
		fmt.Fprintf(w, "  subgraph cluster_%s {\n", cg.ID)
		fmt.Fprintf(w, "    label=\"%s\"\n    color=\"%s\"\n", label, color)

		for _, n := range cg.Nodes {
			if op, is := n.Node.Token.(core.Operator); is {
				fmt.Fprintf(w, "    %s [shape=\"circle\", style=\"filled\", fillcolor=\"#dddddd\", label=\"%s\"]\n",
					n.ID, op)
				continue
			}
			d := n.Node.Def()
			fmt.Fprintf(w, "    %s [shape=\"%s\", style=\"rounded,filled\", fillcolor=\"%s\", label=<%s>]\n",
				n.ID, shape(d), fillcolor(d), defLabel(d))
		}
		for _, e := range cg.Edges {
			fmt.Fprintf(w, "    %s -> %s\n", e[0], e[1])
		}
		fmt.Fprintf(w, "  }\n")
	}

	for _, l := range g.Links {
		style := "dotted"
		color := "#2d93ad"
		if l.Switch {
			style = "dashed"
			color = "#52aa5e"
		}
		fmt.Fprintf(w, "  %s -> %s [style=\"%s\", color=\"%s\", constraint=false, label=\"%s\"]\n",
			l.From, l.To, style, color, escape(l.Label))
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

func shape(d core.Def) string {
	if _, is := d.(*core.Switch); is {
		return "box3d"
	}
	return "record"
}

func fillcolor(d core.Def) string {
	switch vv := d.(type) {
	case *core.Message:
		if vv.Outgoing {
			return "#2d93ad"
		}
		return "#99ddc8"
	case *core.Switch:
		return "#52aa5e"
	}
	return "#eeeeee"
}

// defLabel is an HTML-like label with the step and then its
// constraints rendered as YAML.
func defLabel(d core.Def) string {
	label := html(stepLabel(d))

	cs := d.Constraints()
	if len(cs) == 0 {
		return label
	}

	srcs := make([]string, len(cs))
	for i, c := range cs {
		srcs[i] = c.String()
	}
	bs, err := yaml.Marshal(srcs)
	if err != nil {
		bs = []byte(err.Error())
	}
	src := html(string(bs))
	label += `<FONT POINT-SIZE="8"><BR/>` +
		strings.Replace(src, "\n", `<BR ALIGN="LEFT"/>`, -1) +
		`</FONT>`
	return label
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(p *core.Protocol, basename string, highlight string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(p, dotfile, highlight); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escape(s string) string {
	return strings.Replace(s, `"`, `\"`, -1)
}

func html(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
