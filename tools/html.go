package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/protocol"

	md "github.com/russross/blackfriday/v2"
)

// RenderHTML writes an HTML fragment that documents the protocol:
// its doc, a table of roles, and each clause with its tree.
//
// Docs are Markdown.
func RenderHTML(p *core.Protocol, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="protocolDoc doc">%s</div>`, md.Run([]byte(p.Doc)))

	{ // Roles
		f(`<div class="roles"><table>`)
		f(`<tr><th>role</th><th>kind</th><th>min</th><th>max</th><th></th></tr>`)
		for _, r := range p.Roles() {
			name := r.Type.Name
			f(`<tr class="role"><td><a href="#%s"><code>%s</code></a></td>`, name, html(r.Type.String()))
			f(`<td class="kind">%s</td><td>%d</td><td>%d</td>`, r.Kind, r.Min, r.Max)
			f(`<td><div class="roleDoc doc">%s</div></td></tr>`, md.Run([]byte(r.Doc)))
		}
		f(`</table></div>`)
	}

	{ // Clauses
		f(`<div class="clauses"><table>`)
		for _, c := range p.Clauses() {
			f(`<tr class="clause"><td><span id="%s" class="signature"><code>%s</code></span></td><td>`,
				c.Role(), html(c.Signature.String()))
			if c.Doc != "" {
				f(`<div class="clauseDoc doc">%s</div>`, md.Run([]byte(c.Doc)))
			}
			f(`<div class="code"><pre>%s</pre></div>`, html(c.Root.String()))

			if switches := switchTargets(c); 0 < len(switches) {
				f(`<div class="switches">switches to`)
				for _, role := range switches {
					f(` <a href="#%s"><code>%s</code></a>`, role, role)
				}
				f(`</div>`)
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	return nil
}

// switchTargets returns the roles that the clause switches to, in
// order and without duplicates.
func switchTargets(c *core.Clause) []string {
	var (
		seen = make(map[string]bool)
		acc  []string
	)
	for _, d := range c.Root.Defs() {
		s, is := d.(*core.Switch)
		if !is || seen[s.Type.Name] {
			continue
		}
		seen[s.Type.Name] = true
		acc = append(acc, s.Type.Name)
	}
	return acc
}

// RenderPage writes a complete HTML page for the protocol.
//
// If includeGraph is true, the page carries the protocol's Mermaid
// source and a script to render it.
func RenderPage(p *core.Protocol, out io.Writer, cssFiles []string, includeGraph bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/protocol.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html(p.Name))

	if includeGraph {
		var src strings.Builder
		if err := Mermaid(p, nopCloser{&src}, nil); err != nil {
			return err
		}
		js, err := json.Marshal(src.String())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `
  <script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
  <script>
  var thisProtocol = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html(p.Name))

	if includeGraph {
		fmt.Fprintf(out, `<div id="graph" class="mermaid"></div>
<script>
  document.getElementById("graph").textContent = thisProtocol;
  mermaid.initialize({startOnLoad: true});
</script>
`)
	}

	if err := RenderHTML(p, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderPage loads a protocol document and renders it with
// RenderPage.
func ReadAndRenderPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	p, err := protocol.Load(filename)
	if err != nil {
		return err
	}
	return RenderPage(p, out, cssFiles, includeGraph)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
