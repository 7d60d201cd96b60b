package core

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// CheckAll checks the constraints in order against the current
// clause instance.  The first False stops the checking.  If none is
// False, any Maybe makes the result Maybe.
func (x *Execution) CheckAll(ctx context.Context, cs []Constraint) (TriState, error) {
	acc := True
	for _, c := range cs {
		r, err := x.Check(ctx, c)
		if err != nil {
			return Maybe, err
		}
		switch r {
		case False:
			return False, nil
		case Maybe:
			acc = Maybe
		}
	}
	return acc, nil
}

// Check evaluates a single constraint.
//
// A fault (see errors.go) is returned as an error and is never the
// same as False.
func (x *Execution) Check(ctx context.Context, c Constraint) (TriState, error) {
	bs := x.Current().Bindings

	switch vv := c.(type) {
	case *Assignment:
		v, is := vv.Left.(Variable)
		if !is {
			return Maybe, &AssignmentFault{Assignment: vv.String()}
		}
		y, err := bs.Resolve(vv.Right)
		if err != nil {
			return Maybe, err
		}
		bs.Set(v, CopyValue(y))
		return True, nil

	case *Comparison:
		left, err := bs.Resolve(vv.Left)
		if err != nil {
			return Maybe, err
		}
		right, err := bs.Resolve(vv.Right)
		if err != nil {
			return Maybe, err
		}
		return compare(vv, left, right)

	case *ListCons:
		return cons(bs, vv)

	case *MethodCall:
		return x.call(ctx, vv)
	}

	return Maybe, fmt.Errorf("unknown constraint %T", c)
}

func (x *Execution) call(ctx context.Context, c *MethodCall) (TriState, error) {
	name := c.Term.Name

	var m Method
	if x.Env != nil {
		m, _ = x.Env.Builtins(x).Method(name)
	}
	if m == nil {
		m, _ = x.Caps.Method(name)
	}
	if m == nil {
		return Maybe, &UnknownMethod{Method: name}
	}

	r, err := m(ctx, Accessors(x.Current().Bindings, c.Term.Args))
	if err != nil {
		return Maybe, &MethodFault{
			Method: name,
			Err:    err,
		}
	}
	return r, nil
}

func cons(bs Bindings, c *ListCons) (TriState, error) {
	list := bs.Get(c.List)

	if list == nil {
		head, err := bs.Resolve(c.Head)
		if err != nil {
			return Maybe, err
		}
		tail, err := bs.Resolve(c.Tail)
		if err != nil {
			return Maybe, err
		}
		acc := make([]interface{}, 0, 8)
		acc = appendFlat(acc, head)
		acc = appendFlat(acc, tail)
		bs.Set(c.List, acc)
		return True, nil
	}

	xs := appendFlat(nil, list)
	if len(xs) == 0 {
		return False, nil
	}

	h, is := c.Head.(Variable)
	if !is {
		return Maybe, &AssignmentFault{Assignment: c.String()}
	}
	t, is := c.Tail.(Variable)
	if !is {
		return Maybe, &AssignmentFault{Assignment: c.String()}
	}

	bs.Set(h, CopyValue(xs[0]))
	tail := make([]interface{}, len(xs)-1)
	for i, y := range xs[1:] {
		tail[i] = CopyValue(y)
	}
	bs.Set(t, tail)

	return True, nil
}

// appendFlat appends the elements of a list or a single non-nil value.
func appendFlat(acc []interface{}, x interface{}) []interface{} {
	switch vv := x.(type) {
	case nil:
		return acc
	case []interface{}:
		return append(acc, vv...)
	default:
		return append(acc, x)
	}
}

// Category is the runtime type of a value as far as comparisons are
// concerned.  All Go numeric types are "number".
func Category(x interface{}) string {
	switch x.(type) {
	case nil:
		return "unset"
	case bool:
		return "bool"
	case string:
		return "string"
	case []interface{}:
		return "list"
	case *Term:
		return "term"
	}
	if _, is := number(x); is {
		return "number"
	}
	return fmt.Sprintf("%T", x)
}

func number(x interface{}) (float64, bool) {
	switch vv := x.(type) {
	case int:
		return float64(vv), true
	case int8:
		return float64(vv), true
	case int16:
		return float64(vv), true
	case int32:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case uint:
		return float64(vv), true
	case uint8:
		return float64(vv), true
	case uint16:
		return float64(vv), true
	case uint32:
		return float64(vv), true
	case uint64:
		return float64(vv), true
	case float32:
		return float64(vv), true
	case float64:
		return vv, true
	}
	return math.NaN(), false
}

// Number returns the value as a float64 if it's a number.
func Number(x interface{}) (float64, bool) {
	return number(x)
}

// Equal reports whether two runtime values are equal.  Numbers of
// different Go types are equal when their values are.
func Equal(x, y interface{}) bool {
	if Category(x) != Category(y) {
		return false
	}
	c, err := order(x, y)
	return err == nil && c == 0
}

// order returns -1, 0, or 1.  Values must be of the same category.
func order(x, y interface{}) (int, error) {
	switch vv := x.(type) {
	case nil:
		return 0, nil
	case bool:
		w := y.(bool)
		switch {
		case vv == w:
			return 0, nil
		case !vv:
			return -1, nil
		}
		return 1, nil
	case string:
		return strings.Compare(vv, y.(string)), nil
	case *Term:
		return strings.Compare(vv.String(), y.(*Term).String()), nil
	case []interface{}:
		w := y.([]interface{})
		for i := 0; i < len(vv) && i < len(w); i++ {
			if Category(vv[i]) != Category(w[i]) {
				return 0, fmt.Errorf("can't order %T and %T", vv[i], w[i])
			}
			c, err := order(vv[i], w[i])
			if err != nil || c != 0 {
				return c, err
			}
		}
		switch {
		case len(vv) < len(w):
			return -1, nil
		case len(w) < len(vv):
			return 1, nil
		}
		return 0, nil
	}

	a, is := number(x)
	if !is {
		return 0, fmt.Errorf("can't order a %T", x)
	}
	b, _ := number(y)
	switch {
	case a < b:
		return -1, nil
	case b < a:
		return 1, nil
	}
	return 0, nil
}

func compare(c *Comparison, left, right interface{}) (TriState, error) {
	if left == nil || right == nil || Category(left) != Category(right) {
		return Maybe, &ComparisonFault{
			Comparison: c.String(),
			Left:       left,
			Right:      right,
		}
	}

	if xs, is := left.([]interface{}); is {
		ys := right.([]interface{})
		if c.Op == Ne {
			if len(xs) != len(ys) {
				return True, nil
			}
			for i := range xs {
				r, err := compare(&Comparison{Op: Eq, Left: c.Left, Right: c.Right}, xs[i], ys[i])
				if err != nil {
					return Maybe, err
				}
				if r == False {
					return True, nil
				}
			}
			return False, nil
		}
		if len(xs) != len(ys) {
			return False, nil
		}
		for i := range xs {
			r, err := compare(c, xs[i], ys[i])
			if err != nil {
				return Maybe, err
			}
			if r == False {
				return False, nil
			}
		}
		return True, nil
	}

	o, err := order(left, right)
	if err != nil {
		return Maybe, &ComparisonFault{
			Comparison: c.String(),
			Left:       left,
			Right:      right,
		}
	}

	switch c.Op {
	case Lt:
		return FromBool(o < 0), nil
	case Gt:
		return FromBool(0 < o), nil
	case Eq:
		return FromBool(o == 0), nil
	case Ne:
		return FromBool(o != 0), nil
	}
	return Maybe, fmt.Errorf("unknown comparison operator %q", c.Op)
}
