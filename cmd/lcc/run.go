package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/crew"
	"github.com/Comcast/lcc/interpreters"
	"github.com/Comcast/lcc/interpreters/goja"
	"github.com/Comcast/lcc/protocol"

	"github.com/jsccast/yaml"
)

// RunDoc describes a run: a protocol document and the agents that
// subscribe to it.
type RunDoc struct {
	// Protocol is the filename of the protocol document.
	// Relative names are relative to the run file's directory.
	Protocol string `json:"protocol" yaml:"protocol"`

	// Libraries is the directory for scripts' "file://" requires.
	Libraries string `json:"libraries,omitempty" yaml:"libraries,omitempty"`

	Agents []*AgentDoc `json:"agents" yaml:"agents"`

	dir string
}

// AgentDoc is one subscriber.
//
// An agent's capabilities come from a script (Source or File in
// Lang), from a named Builtin set, or from nowhere.
type AgentDoc struct {
	Role string `json:"role" yaml:"role"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`

	Lang   string      `json:"lang,omitempty" yaml:"lang,omitempty"`
	Source interface{} `json:"source,omitempty" yaml:"source,omitempty"`
	File   string      `json:"file,omitempty" yaml:"file,omitempty"`

	Builtin string `json:"builtin,omitempty" yaml:"builtin,omitempty"`
}

// Builtins are capability sets that a run file can name.
var Builtins = map[string]func() core.Methods{
	"pingpong": core.PingPongCapabilities,
}

var NoAgents = errors.New("run has no agents")

// LoadRun reads a run file.
func LoadRun(filename string) (*RunDoc, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseRun(bs, filepath.Dir(filename))
}

// ParseRun parses a run file.  Relative filenames in the run are
// resolved against dir.
func ParseRun(bs []byte, dir string) (*RunDoc, error) {
	var r RunDoc
	if err := yaml.Unmarshal(bs, &r); err != nil {
		return nil, err
	}
	if r.Protocol == "" {
		return nil, errors.New("run has no protocol")
	}
	if len(r.Agents) == 0 {
		return nil, NoAgents
	}
	for i, a := range r.Agents {
		if a.Role == "" {
			return nil, fmt.Errorf("agent %d has no role", i)
		}
		if a.Source != nil && a.File != "" {
			return nil, fmt.Errorf("agent %d has both source and file", i)
		}
		if a.Builtin != "" {
			if _, have := Builtins[a.Builtin]; !have {
				return nil, fmt.Errorf("agent %d: unknown builtin '%s'", i, a.Builtin)
			}
		}
	}
	r.dir = dir
	return &r, nil
}

func (r *RunDoc) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.dir, name)
}

// LoadProtocol loads the run's protocol document.
func (r *RunDoc) LoadProtocol() (*core.Protocol, error) {
	return protocol.Load(r.path(r.Protocol))
}

// Loaders returns the standard loaders with requires resolved in the
// run's library directory.
func (r *RunDoc) Loaders() interpreters.Loaders {
	dir := r.Libraries
	if dir == "" {
		dir = "."
	}
	return interpreters.WithLibraries(goja.MakeFileLibraryProvider(r.path(dir)))
}

// Capabilities makes the agent's capabilities.
func (a *AgentDoc) Capabilities(ctx context.Context, r *RunDoc, ls interpreters.Loaders) (core.Capabilities, error) {
	if a.Builtin != "" {
		return Builtins[a.Builtin](), nil
	}

	src := a.Source
	if a.File != "" {
		bs, err := ioutil.ReadFile(r.path(a.File))
		if err != nil {
			return nil, err
		}
		src = string(bs)
	}
	if src == nil {
		return core.NoCapabilities, nil
	}

	lang := a.Lang
	if lang == "" {
		lang = "goja"
	}
	return ls.Load(ctx, lang, src)
}

// Subscribe subscribes every agent in the run.
func (r *RunDoc) Subscribe(ctx context.Context, c *crew.Crew) ([]*crew.Agent, error) {
	ls := r.Loaders()
	acc := make([]*crew.Agent, 0, len(r.Agents))
	for _, a := range r.Agents {
		caps, err := a.Capabilities(ctx, r, ls)
		if err != nil {
			return nil, fmt.Errorf("agent %s (%s): %w", a.ID, a.Role, err)
		}
		agent, err := c.Subscribe(a.Role, caps, a.ID)
		if err != nil {
			return nil, err
		}
		acc = append(acc, agent)
	}
	return acc, nil
}

// Report writes one line per agent: its ID, role, result, and final
// bindings (as JSON).  A failed agent's line ends with its error.
func Report(w io.Writer, agents []*crew.Agent) error {
	for _, a := range agents {
		info := a.Info()
		js, err := json.Marshal(info.Bindings)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", info.ID, info.Role, info.Result, js)
		if info.Err != "" {
			line += "\t" + info.Err
		}
		if _, err = fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
