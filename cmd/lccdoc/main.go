// Command lccdoc renders a protocol document.
//
//   lccdoc dot FILE          Graphviz dot on stdout
//   lccdoc png FILE BASE     BASE.dot and BASE.png (needs dot)
//   lccdoc mermaid FILE      Mermaid on stdout
//   lccdoc html FILE [CSS]   an HTML page on stdout
//   lccdoc check FILE        load the document and list its clauses
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Comcast/lcc/protocol"
	"github.com/Comcast/lcc/tools"
)

func Usage() {
	fmt.Fprintf(os.Stderr, `Usage: lccdoc dot|png|mermaid|html|check FILE [ARG]
`)
}

func main() {

	if len(os.Args) < 3 {
		Usage()
		os.Exit(1)
	}

	if err := render(os.Args[1], os.Args[2], os.Args[3:], stdout{os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stdout is os.Stdout that doesn't close.
type stdout struct {
	io.Writer
}

func (stdout) Close() error {
	return nil
}

func render(cmd, filename string, args []string, w io.WriteCloser) error {
	p, err := protocol.Load(filename)
	if err != nil {
		return err
	}

	switch cmd {
	case "dot":
		return tools.Dot(p, w, "")

	case "png":
		if len(args) != 1 {
			return fmt.Errorf("png wants a basename")
		}
		pngname, err := tools.PNG(p, args[0], "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, pngname)
		return err

	case "mermaid":
		return tools.Mermaid(p, w, nil)

	case "html":
		var css []string
		if 0 < len(args) {
			css = args
		}
		return tools.RenderPage(p, w, css, true)

	case "check":
		for _, r := range p.Roles() {
			c, have := p.Clause(r.Type.Name)
			if !have {
				fmt.Fprintf(w, "%s\t(no clause)\n", r)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d steps\n", r, c.Signature, len(c.Root.Defs()))
		}
		return nil

	default:
		return fmt.Errorf("unknown command '%s'", cmd)
	}
}
