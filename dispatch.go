package ignore

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrArguments is returned when the arguments following the ignore spec
	// fit none of the accepted call shapes.
	ErrArguments = errors.New("invalid arguments")

	// ErrExecutor is returned when the function to execute cannot be called
	// without arguments or returns something other than (), (T), (error) or
	// (T, error).
	ErrExecutor = errors.New("invalid executor")
)

// Mode is the way a Dispatch call is served.
type Mode int

const (
	// ModeFactory returns a *Handler for errors produced later.
	ModeFactory Mode = iota

	// ModeExecute runs a function immediately and handles its failure.
	ModeExecute
)

func (m Mode) String() string {
	switch m {
	case ModeFactory:
		return "factory"
	case ModeExecute:
		return "execute"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// call is a classified Dispatch invocation.
type call struct {
	mode Mode
	def  any
	fn   any
}

// classify resolves the arguments that follow the ignore spec:
//
//	()          factory, nil default
//	(def)       factory with default
//	(fn)        execute fn, nil default
//	(def, fn)   execute fn with default
//	(fn, nil)   execute fn, nil default
//
// Any func value counts as a function. Everything else is ErrArguments.
func classify(args []any) (call, error) {
	var second, third any
	switch len(args) {
	case 0:
	case 1:
		second = args[0]
	case 2:
		second, third = args[0], args[1]
	default:
		return call{}, fmt.Errorf("ignore: %w: got %d arguments after the spec, want at most 2", ErrArguments, len(args))
	}

	switch {
	case callable(third):
		return call{mode: ModeExecute, def: second, fn: third}, nil
	case third != nil:
		return call{}, fmt.Errorf("ignore: %w: last argument of type %T is not a function", ErrArguments, third)
	case callable(second):
		return call{mode: ModeExecute, fn: second}, nil
	default:
		return call{mode: ModeFactory, def: second}, nil
	}
}

func callable(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// Dispatch serves one of four call shapes for attr and spec:
//
//	Dispatch(attr, spec)            -> *Handler returning nil for ignored errors
//	Dispatch(attr, spec, def)       -> *Handler returning def for ignored errors
//	Dispatch(attr, spec, fn)        -> fn's result, or nil if fn failed with an ignored error
//	Dispatch(attr, spec, def, fn)   -> fn's result, or def if fn failed with an ignored error
//
// fn fails when it returns a non-nil error or panics with an error value. A
// failure that is not ignored is handed back unchanged: a returned error is
// returned, a panic is resumed with the same value. Panics with non-error
// values are never recovered.
//
// The error result is only non-nil for a malformed call or a failure of fn
// that is not ignored.
func (e *Engine) Dispatch(attr Attribute, spec any, args ...any) (any, error) {
	c, err := classify(args)
	if err != nil {
		return nil, err
	}
	list, err := NewList(spec)
	if err != nil {
		return nil, err
	}

	if c.mode == ModeFactory {
		return e.handler(attr, list, c.def), nil
	}

	thunk, err := adapt(c.fn)
	if err != nil {
		return nil, err
	}
	return execute(newHandler(attr, list, c.def), thunk)
}

// execute runs thunk and passes its failure through h.
func execute(h *Handler, thunk func() (any, error)) (any, error) {
	res, err, recovered := guard(thunk)
	if err == nil {
		return res, nil
	}
	if h.Match(err) {
		return h.def, nil
	}
	if recovered != nil {
		panic(recovered)
	}
	return nil, err
}

// guard calls thunk and recovers panics carrying an error. recovered holds
// the original panic value so it can be resumed unchanged.
func guard(thunk func() (any, error)) (res any, err error, recovered any) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			res, err, recovered = nil, e, r
		}
	}()
	res, err = thunk()
	return
}

var errorType = reflect.TypeFor[error]()

// adapt turns a func value into a thunk. The common shapes avoid reflection.
func adapt(fn any) (func() (any, error), error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("ignore: %w: %T is not a function", ErrExecutor, fn)
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("ignore: %w: nil %T", ErrExecutor, fn)
	}

	switch f := fn.(type) {
	case func() (any, error):
		return f, nil
	case func() error:
		return func() (any, error) { return nil, f() }, nil
	case func() any:
		return func() (any, error) { return f(), nil }, nil
	case func():
		return func() (any, error) { f(); return nil, nil }, nil
	}

	t := rv.Type()
	if t.NumIn() > 1 || (t.NumIn() == 1 && !t.IsVariadic()) {
		return nil, fmt.Errorf("ignore: %w: %s takes arguments", ErrExecutor, t)
	}
	switch {
	case t.NumOut() == 0:
		return func() (any, error) {
			rv.Call(nil)
			return nil, nil
		}, nil
	case t.NumOut() == 1 && t.Out(0).Implements(errorType):
		return func() (any, error) {
			return nil, asError(rv.Call(nil)[0])
		}, nil
	case t.NumOut() == 1:
		return func() (any, error) {
			return rv.Call(nil)[0].Interface(), nil
		}, nil
	case t.NumOut() == 2 && t.Out(1).Implements(errorType):
		return func() (any, error) {
			out := rv.Call(nil)
			if err := asError(out[1]); err != nil {
				return nil, err
			}
			return out[0].Interface(), nil
		}, nil
	}
	return nil, fmt.Errorf("ignore: %w: unsupported results of %s", ErrExecutor, t)
}

// asError converts a result implementing error. Typed nil pointers count as
// no error.
func asError(v reflect.Value) error {
	if isNil(v) {
		return nil
	}
	return v.Interface().(error)
}
