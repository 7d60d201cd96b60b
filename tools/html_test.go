package tools

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/Comcast/lcc/util/testutil"
)

func TestRenderHTML(t *testing.T) {

	t.Run("withoutGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		if err := RenderPage(pingPong(t), out, []string{"protocol.css"}, false); err != nil {
			t.Fatal(err)
		}

		s := out.String()
		Contains(t, s,
			"<h1>pingpong</h1>",
			`href="protocol.css"`,
			`<code>ping(1)</code>`,
			`<td class="kind">necessary</td>`,
			`id="ponger"`)
		if strings.Contains(s, "mermaid") {
			t.Fatal("graph included")
		}
	})

	t.Run("withGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		if err := ReadAndRenderPage("../protocol/testdata/gather.yaml", nil, out, true); err != nil {
			t.Fatal(err)
		}

		Contains(t, out.String(),
			"mermaid.min.js",
			"var thisProtocol = ",
			"/static/protocol.css",
			"switches to",
			`href="#asker"`)
	})

	t.Run("missing", func(t *testing.T) {
		if err := ReadAndRenderPage("nope.yaml", nil, &bytes.Buffer{}, false); err == nil {
			t.Fatal("didn't protest")
		}
	})
}
