package bridge

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	nameRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Function is a registered bridge function.
type Function struct {
	// Name is the endpoint name.
	Name string

	// Params are the JSON parameter types in call order.
	Params []reflect.Type

	// ParamNames are the parameter names used by generated clients.
	ParamNames []string

	// Result is the result type.
	Result reflect.Type

	fn         reflect.Value
	takesCtx   bool
	returnsErr bool
}

// Arity returns the number of JSON arguments the function takes.
func (f *Function) Arity() int {
	return len(f.Params)
}

// Call invokes the function with decoded arguments.
func (f *Function) Call(ctx context.Context, args []reflect.Value) (any, error) {
	in := args
	if f.takesCtx {
		in = append([]reflect.Value{reflect.ValueOf(ctx)}, args...)
	}
	out := f.fn.Call(in)
	if f.returnsErr {
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
	}
	return out[0].Interface(), nil
}

// Registry holds bridge functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]*Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Register adds fn under name. fn must be a non-variadic function returning
// a single value or a value and an error; it may take a context.Context as
// its first parameter, which is not part of the JSON arguments. paramNames
// name the JSON arguments for generated clients and default to arg0, arg1...
func (r *Registry) Register(name string, fn any, paramNames ...string) error {
	if !nameRe.MatchString(name) {
		return errors.New("E162").WithDetail(fmt.Sprintf("%q is not an identifier.", name))
	}

	f, err := newFunction(name, fn, paramNames)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.funcs[name]; dup {
		return errors.New("E161").WithDetail(fmt.Sprintf("%q is already registered.", name))
	}
	r.funcs[name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn any, paramNames ...string) {
	if err := r.Register(name, fn, paramNames...); err != nil {
		panic(err)
	}
}

func newFunction(name string, fn any, paramNames []string) (*Function, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.New("E160").WithDetail(fmt.Sprintf("%s: %T is not a function.", name, fn))
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, errors.New("E160").WithDetail(name + ": variadic functions cannot be called with a fixed argument array.")
	}

	f := &Function{Name: name, fn: v}
	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		f.takesCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		if t.In(i) == contextType {
			return nil, errors.New("E160").WithDetail(name + ": context.Context must be the first parameter.")
		}
		f.Params = append(f.Params, t.In(i))
	}

	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType && t.Out(0) != errorType:
		f.returnsErr = true
	default:
		return nil, errors.New("E160").
			WithDetail(name + ": must return a value, or a value and an error.").
			WithSuggestion("Return a result such as bool or struct{} when there is nothing to report")
	}
	f.Result = t.Out(0)

	if len(paramNames) > 0 && len(paramNames) != len(f.Params) {
		return nil, errors.New("E160").WithDetail(fmt.Sprintf("%s: %d parameter names for %d parameters.", name, len(paramNames), len(f.Params)))
	}
	for i := range f.Params {
		pn := fmt.Sprintf("arg%d", i)
		if len(paramNames) > 0 {
			if !nameRe.MatchString(paramNames[i]) {
				return nil, errors.New("E162").WithDetail(fmt.Sprintf("%s: parameter name %q is not an identifier.", name, paramNames[i]))
			}
			pn = paramNames[i]
		}
		f.ParamNames = append(f.ParamNames, pn)
	}
	return f, nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	return f, ok
}

// Functions returns all functions sorted by name.
func (r *Registry) Functions() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Function, 0, len(r.funcs))
	for _, f := range r.funcs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
