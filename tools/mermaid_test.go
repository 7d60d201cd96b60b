package tools

import (
	"strings"
	"testing"

	"github.com/Comcast/lcc/protocol"
	. "github.com/Comcast/lcc/util/testutil"
)

func TestMermaid(t *testing.T) {
	var out strings.Builder

	if err := Mermaid(pingPong(t), nopCloser{&out}, nil); err != nil {
		t.Fatal(err)
	}

	Contains(t, out.String(),
		"graph TB",
		`subgraph c0 ["a(pinger, ?I)"]`,
		"c0_n0((then))",
		`c0_n1 -. "ping/1" .-> c1_n1`,
		"style c0_n1 fill:",
		"#gt;")
}

func TestMermaidSwitches(t *testing.T) {
	p, err := protocol.Load("../protocol/testdata/gather.yaml")
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	opts := &MermaidOpts{
		SwitchFill: "#bcf2db",
	}
	if err := Mermaid(p, nopCloser{&out}, opts); err != nil {
		t.Fatal(err)
	}

	s := out.String()
	Contains(t, s, "[[", "-.->", "style ")
	if strings.Contains(s, `-. "`) {
		t.Fatal("messages shown")
	}
}
