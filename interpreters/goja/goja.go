// Package goja makes agent capabilities from ECMAScript.
//
// A capability source is the body of a function that returns an
// object of methods:
//
//   return {
//     succ: function(x, y) {
//       if (x.get() === null) return MAYBE;
//       y.set(x.get() + 1);
//       return TRUE;
//     }
//   };
//
// Every method argument is an accessor with get() and set(v)
// functions (and a name property).  A method returns TRUE, FALSE,
// MAYBE, or a boolean.  A thrown exception is a method fault.
//
// The runtime also provides
//
//   log(x): log x as JSON.
//   cronNext(expr): the next time (RFC3339) the cron expression fires.
//   cronDue(expr, since): whether the expression has fired since the
//     given RFC3339 time.
//
// and, for testing, sleep(ms).
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Comcast/lcc/core"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by a method if its context is done
	// before the method returns.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter makes Capabilities using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool

	// LibraryProvider resolves names given in "requires" (and in
	// top-level require() calls).  If nil, DefaultLibraryProvider
	// is used.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// ProvideLibrary resolves the library name into source.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a library provider that supports
// (barely) names that are URLs with protocols of "file", "http", and
// "https".  File names are relative to the given directory.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch parts[0] {
		case "file":
			bs, err := ioutil.ReadFile(dir + "/" + parts[1])
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequest("GET", name, nil)
			if err != nil {
				return "", err
			}
			resp, err := http.DefaultClient.Do(req.WithContext(ctx))
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("library fetch status %s %d",
					resp.Status, resp.StatusCode)
			}
			bs, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		default:
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
	}
}

// MakeMapLibraryProvider makes a library provider backed by a map.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return wrapperPrefix + src + "\n}());\n"
}

// parseSource looks into the given map to try to find "requires" and
// "code" properties.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	s, is := vv["code"].(string)
	if !is {
		err = errors.New("bad Goja code")
		return
	}
	code = s

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = errors.New("bad library")
				return
			}
			libs = append(libs, s)
		}
	default:
		err = fmt.Errorf("bad requires (%T)", vv)
	}

	return
}

// AsSource accepts a string (just code) or a map with "code" and
// optional "requires" properties.
//
// The YAML parser https://github.com/go-yaml/yaml returns
// map[interface{}]interface{}, and its fork
// https://github.com/jsccast/yaml returns map[string]interface{}.
// Both work here.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[interface{}]interface{}:
		m := make(map[string]interface{})
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad Goja source (%T)", src)
		return
	}
}

// Compile resolves libraries and compiles the source.
//
// Libraries named in "requires" come first.  Top-level require()
// calls in the code are replaced by the libraries they name.
//
// This method can block if the interpreter's library provider blocks
// in order to obtain external libraries.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (*goja.Program, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	provide := func(ctx context.Context, name string) (string, error) {
		return i.ProvideLibrary(ctx, name)
	}
	if code, err = InlineRequires(ctx, code, provide); err != nil {
		return nil, err
	}

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := i.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}

	code = wrapSrc(libsSrc + code)

	p, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return p, nil
}

// Capabilities is a set of methods defined by a script.
//
// A Goja runtime isn't safe for concurrent use, so calls are
// serialized.
type Capabilities struct {
	sync.Mutex

	rt      *goja.Runtime
	methods map[string]goja.Callable
}

// Load compiles and runs the source, which must return an object of
// functions.
func (i *Interpreter) Load(ctx context.Context, src interface{}) (*Capabilities, error) {
	p, err := i.Compile(ctx, src)
	if err != nil {
		return nil, err
	}

	rt := goja.New()
	i.install(rt)

	v, err := run(ctx, rt, func() (goja.Value, error) {
		return rt.RunProgram(p)
	})
	if err != nil {
		return nil, err
	}

	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, errors.New("capability source returned nothing")
	}
	obj := v.ToObject(rt)

	c := &Capabilities{
		rt:      rt,
		methods: make(map[string]goja.Callable),
	}
	for _, name := range obj.Keys() {
		f, is := goja.AssertFunction(obj.Get(name))
		if !is {
			continue
		}
		c.methods[name] = f
	}

	return c, nil
}

// Names returns the names of the methods.
func (c *Capabilities) Names() []string {
	acc := make([]string, 0, len(c.methods))
	for name := range c.methods {
		acc = append(acc, name)
	}
	return acc
}

// Method implements core.Capabilities.
func (c *Capabilities) Method(name string) (core.Method, bool) {
	f, have := c.methods[name]
	if !have {
		return nil, false
	}
	return func(ctx context.Context, args []core.Accessor) (core.TriState, error) {
		return c.call(ctx, f, args)
	}, true
}

func (c *Capabilities) call(ctx context.Context, f goja.Callable, args []core.Accessor) (core.TriState, error) {
	c.Lock()
	defer c.Unlock()

	rt := c.rt
	vs := make([]goja.Value, len(args))
	for i, a := range args {
		vs[i] = accessor(rt, a)
	}

	v, err := run(ctx, rt, func() (goja.Value, error) {
		return f(goja.Undefined(), vs...)
	})
	if err != nil {
		return core.Maybe, err
	}

	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return core.Maybe, errors.New("method returned nothing")
	}
	return core.AsTriState(v.Export())
}

// run calls f and interrupts it if the context is done first.
func run(ctx context.Context, rt *goja.Runtime, f func() (goja.Value, error)) (goja.Value, error) {
	ictx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ictx.Done()
		if ctx.Err() != nil {
			rt.Interrupt(InterruptedMessage)
		}
	}()

	v, err := f()
	cancel()
	<-done
	rt.ClearInterrupt()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}
	return v, nil
}

// accessor makes the JS object for an Accessor.
func accessor(rt *goja.Runtime, a core.Accessor) goja.Value {
	obj := rt.NewObject()
	obj.Set("name", a.String())
	obj.Set("get", func() interface{} {
		return toJS(a.Get())
	})
	obj.Set("set", func(v goja.Value) interface{} {
		x, err := fromJS(v.Export())
		if err == nil {
			err = a.Set(x)
		}
		if err != nil {
			protest(rt, err.Error())
		}
		return v
	})
	return obj
}

// toJS converts a runtime value for a script.  Terms become objects
// with name and args properties.
func toJS(x interface{}) interface{} {
	switch vv := x.(type) {
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = toJS(y)
		}
		return acc
	case *core.Term:
		args := make([]interface{}, len(vv.Args))
		for i, a := range vv.Args {
			if v, is := a.(core.Value); is {
				args[i] = toJS(v.X)
			}
		}
		return map[string]interface{}{
			"name": vv.Name,
			"args": args,
		}
	}
	return x
}

// fromJS is the inverse of toJS.
func fromJS(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case nil, bool, string, float64, int:
		return x, nil
	case int64:
		return int(vv), nil
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			z, err := fromJS(y)
			if err != nil {
				return nil, err
			}
			acc[i] = z
		}
		return acc, nil
	case map[string]interface{}:
		name, is := vv["name"].(string)
		if !is {
			return nil, errors.New("an object needs a name to be a term")
		}
		t := core.NewTerm(name)
		if args, is := vv["args"].([]interface{}); is {
			for _, y := range args {
				z, err := fromJS(y)
				if err != nil {
					return nil, err
				}
				t.Args = append(t.Args, core.Val(z))
			}
		}
		return t, nil
	}
	return nil, fmt.Errorf("can't use a %T", x)
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func str(o *goja.Runtime, x goja.Value) string {
	s, is := x.Export().(string)
	if !is {
		protest(o, "not a string")
	}
	return s
}

// install adds the runtime's own functions and constants.
func (i *Interpreter) install(o *goja.Runtime) {
	o.Set("TRUE", core.True.String())
	o.Set("FALSE", core.False.String())
	o.Set("MAYBE", core.Maybe.String())

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	o.Set("cronNext", func(x goja.Value) interface{} {
		c, err := cronexpr.Parse(str(o, x))
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	})

	o.Set("cronDue", func(x, since goja.Value) interface{} {
		c, err := cronexpr.Parse(str(o, x))
		if err != nil {
			protest(o, err.Error())
		}
		t, err := time.Parse(time.RFC3339Nano, str(o, since))
		if err != nil {
			protest(o, err.Error())
		}
		next := c.Next(t)
		return !next.IsZero() && !time.Now().Before(next)
	})

	o.Set("log", func(x goja.Value) interface{} {
		y := x.Export()
		js, err := json.Marshal(&y)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return x
	})
}
