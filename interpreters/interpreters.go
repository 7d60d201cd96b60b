// Package interpreters maps script languages to capability loaders.
package interpreters

import (
	"context"
	"fmt"

	"github.com/Comcast/lcc/core"
	"github.com/Comcast/lcc/interpreters/goja"
)

// Loader makes Capabilities from a source.
type Loader func(ctx context.Context, src interface{}) (core.Capabilities, error)

// Loaders maps language names to Loaders.
type Loaders map[string]Loader

// Standard returns the Loaders for the languages we support.
//
// "none" (or "") ignores its source and gives core.NoCapabilities.
func Standard() Loaders {
	return WithLibraries(goja.DefaultLibraryProvider)
}

// WithLibraries is like Standard, but scripts resolve their required
// libraries with the given provider.
func WithLibraries(provider func(context.Context, *goja.Interpreter, string) (string, error)) Loaders {
	ls := make(Loaders)

	es := goja.NewInterpreter()
	es.LibraryProvider = provider
	ecmascript := func(ctx context.Context, src interface{}) (core.Capabilities, error) {
		caps, err := es.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		return caps, nil
	}
	ls["ecmascript"] = ecmascript
	ls["ecmascript-5.1"] = ecmascript
	ls["goja"] = ecmascript

	none := func(ctx context.Context, src interface{}) (core.Capabilities, error) {
		return core.NoCapabilities, nil
	}
	ls["none"] = none
	ls[""] = none

	return ls
}

// Load uses the Loader for the given language.
func (ls Loaders) Load(ctx context.Context, lang string, src interface{}) (core.Capabilities, error) {
	l, have := ls[lang]
	if !have {
		return nil, fmt.Errorf("unknown language '%s'", lang)
	}
	return l(ctx, src)
}
