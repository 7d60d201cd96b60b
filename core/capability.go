package core

import (
	"context"
)

// Accessor gives a capability read/write access to one argument of a
// MethodCall.
type Accessor interface {
	// Get returns the argument's current value (nil if unset).
	Get() interface{}

	// Set binds the argument, which must be a Variable.
	Set(x interface{}) error

	String() string
}

// Method is a named capability.
type Method func(ctx context.Context, args []Accessor) (TriState, error)

// BoolMethod makes a Method from a function that returns a bool.
func BoolMethod(f func(ctx context.Context, args []Accessor) (bool, error)) Method {
	return func(ctx context.Context, args []Accessor) (TriState, error) {
		b, err := f(ctx, args)
		if err != nil {
			return Maybe, err
		}
		return FromBool(b), nil
	}
}

// Capabilities is a named-method lookup.
//
// The runtime has its own Capabilities (see Env.Builtins), and every
// agent brings its own.
type Capabilities interface {
	Method(name string) (Method, bool)
}

// Methods is a simple Capabilities.
type Methods map[string]Method

func (ms Methods) Method(name string) (Method, bool) {
	m, have := ms[name]
	return m, have
}

// NoCapabilities has no methods at all.
var NoCapabilities = Methods{}

type argAccessor struct {
	bs  Bindings
	arg Argument
}

func (a *argAccessor) Get() interface{} {
	x, err := a.bs.Resolve(a.arg)
	if err != nil {
		return nil
	}
	return x
}

func (a *argAccessor) Set(x interface{}) error {
	v, is := a.arg.(Variable)
	if !is {
		return &AccessorFault{Arg: argString(a.arg)}
	}
	a.bs.Set(v, x)
	return nil
}

func (a *argAccessor) String() string {
	return argString(a.arg)
}

// Accessors makes one Accessor per argument, all reading and writing
// the given Bindings.
func Accessors(bs Bindings, args []Argument) []Accessor {
	acc := make([]Accessor, len(args))
	for i, a := range args {
		acc[i] = &argAccessor{
			bs:  bs,
			arg: a,
		}
	}
	return acc
}
