package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Bindings is a clause instance's variable store: a map from variable
// names to runtime values.
//
// A nil value means "unset".  Reading a variable that isn't there
// creates it as unset; it never fails.
//
// Bindings are owned by a single clause instance and aren't safe for
// concurrent use.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Get returns the value of the variable, creating it as unset if
// necessary.
func (bs Bindings) Get(v Variable) interface{} {
	x, have := bs[v.Name]
	if !have {
		bs[v.Name] = nil
	}
	return x
}

// Set binds the variable; modifies and returns the Bindings.
func (bs Bindings) Set(v Variable, x interface{}) Bindings {
	bs[v.Name] = x
	return bs
}

// Extend adds the property; modifies and returns the Bindings.
func (bs Bindings) Extend(p string, x interface{}) Bindings {
	bs[Unquestion(p)] = x
	return bs
}

// IsSet reports whether the variable has a non-nil value.
func (bs Bindings) IsSet(v Variable) bool {
	return bs[v.Name] != nil
}

// Resolve returns the runtime value of the given argument.
//
// A Variable resolves to its binding (nil if unset), a Value to
// itself, and a Term to a ground copy with every Variable replaced
// by its binding.
func (bs Bindings) Resolve(a Argument) (interface{}, error) {
	switch vv := a.(type) {
	case nil:
		return nil, nil
	case Variable:
		return bs.Get(vv), nil
	case Value:
		return vv.X, nil
	case *Term:
		return bs.ground(vv)
	default:
		return nil, fmt.Errorf("invalid argument %T", a)
	}
}

func (bs Bindings) ground(t *Term) (*Term, error) {
	args := make([]Argument, len(t.Args))
	for i, a := range t.Args {
		switch vv := a.(type) {
		case *Term:
			g, err := bs.ground(vv)
			if err != nil {
				return nil, err
			}
			args[i] = g
		default:
			x, err := bs.Resolve(a)
			if err != nil {
				return nil, err
			}
			args[i] = Val(CopyValue(x))
		}
	}
	return &Term{
		Name: t.Name,
		Args: args,
	}, nil
}

// Copy makes a copy of the Bindings.  Lists and Terms are copied
// deeply.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = CopyValue(v)
	}
	return acc
}

// String renders the Bindings with sorted variable names.
func (bs Bindings) String() string {
	ks := make([]string, 0, len(bs))
	for k := range bs {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	acc := make([]string, len(ks))
	for i, k := range ks {
		acc[i] = k + "=" + FormatValue(bs[k])
	}
	return "{" + strings.Join(acc, ", ") + "}"
}

// MarshalJSON renders Terms as strings so the output stays readable.
func (bs Bindings) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(bs))
	for k, v := range bs {
		m[k] = jsonable(v)
	}
	return json.Marshal(m)
}

func jsonable(x interface{}) interface{} {
	switch vv := x.(type) {
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = jsonable(y)
		}
		return acc
	case *Term:
		return vv.String()
	default:
		return x
	}
}
