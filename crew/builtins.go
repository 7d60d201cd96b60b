package crew

import (
	"context"
	"fmt"

	"github.com/Comcast/lcc/core"
)

// Builtins implements core.Env.
//
// The crew provides
//
//	_findPeers(Role, Peers)
//
// which binds Peers to the current IDs of the other agents currently playing
// Role (or of all other agents when Role is unset, "", or _).  It's True
// if it found any and False otherwise.
func (c *Crew) Builtins(x *core.Execution) core.Capabilities {
	return core.Methods{
		"_findPeers": func(ctx context.Context, args []core.Accessor) (core.TriState, error) {
			return c.findPeers(x, args)
		},
	}
}

func (c *Crew) findPeers(x *core.Execution, args []core.Accessor) (core.TriState, error) {
	if len(args) != 2 {
		return core.Maybe, fmt.Errorf("_findPeers wants 2 arguments, not %d", len(args))
	}

	var role string
	switch vv := args[0].Get().(type) {
	case nil:
	case string:
		role = vv
	case *core.Term:
		role = vv.Name
	default:
		return core.Maybe, fmt.Errorf("_findPeers wants a role name, not a %T", vv)
	}

	if role == "_" {
		role = ""
	}

	c.Lock()
	agents := make([]*Agent, len(c.agents))
	copy(agents, c.agents)
	c.Unlock()

	peers := make([]interface{}, 0, len(agents))
	for _, a := range agents {
		if a.is(x) {
			continue
		}
		if role != "" && a.Current() != role {
			continue
		}
		peers = append(peers, a.CurrentID())
	}

	if err := args[1].Set(peers); err != nil {
		return core.Maybe, err
	}

	return core.FromBool(0 < len(peers)), nil
}
