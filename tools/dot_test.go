/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/lcc/core"
	. "github.com/Comcast/lcc/util/testutil"
)

func pingPong(t *testing.T) *core.Protocol {
	p, err := core.PingPongProtocol()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "g.dot")

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	if err := Dot(pingPong(t), out, "ponger"); err != nil {
		t.Fatal(err)
	}

	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}

	Contains(t, string(bs),
		"digraph G {",
		"subgraph cluster_c0",
		"subgraph cluster_c1",
		`color="red"`,
		"c0_n0 -> c0_n1",
		"c0_n1 -> c1_n1",
		"c1_n2 -> c0_n2",
		"ping/1",
		"succ(",
		"&lt;=")
}

func TestGraphLinks(t *testing.T) {
	g := newGraph(pingPong(t))

	if n := len(g.Clauses); n != 2 {
		t.Fatal(n)
	}
	for _, cg := range g.Clauses {
		if n := len(cg.Nodes); n != 3 {
			t.Fatal(cg.Clause.Role(), n)
		}
	}

	want := []link{
		{From: "c0_n1", To: "c1_n1", Label: "ping/1"},
		{From: "c1_n2", To: "c0_n2", Label: "pong/1"},
	}
	if len(g.Links) != len(want) {
		t.Fatal(g.Links)
	}
	for i, l := range want {
		if g.Links[i] != l {
			t.Fatal(i, g.Links[i])
		}
	}
}
