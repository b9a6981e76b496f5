// Package ignore suppresses expected errors by one of their attributes and
// hands every other error back untouched.
//
// It replaces the "check err, compare its code, otherwise return it"
// boilerplate with a single expression. An error is ignored when its code,
// message or status matches an allow-list of exact values (strings or numbers)
// and patterns (*regexp.Regexp, matched anywhere in the value).
//
// # Quick Start
//
// Run a function and ignore some of its failures:
//
//	data, err := ignore.Code("ENOENT", func() ([]byte, error) {
//	    return os.ReadFile("config.yaml")
//	})
//	// data == nil, err == nil when the file does not exist
//
//	v, err := ignore.Status([]int{404, 410}, "gone", fetch)
//	// v == "gone" when fetch failed with status 404 or 410
//
// Build a reusable handler for errors produced elsewhere:
//
//	v, _ := ignore.Message(regexp.MustCompile("connection reset"))
//	h := v.(*ignore.Handler)
//	if err := h.Err(g.Wait()); err != nil {
//	    return err
//	}
//
// The typed helpers avoid the dynamic call shapes:
//
//	h := ignore.MustHandler(ignore.AttrCode, "ENOENT", nil)
//	data, err := ignore.Try(h, func() ([]byte, error) { return os.ReadFile(p) })
//
// # Call Shapes
//
// Code, Message and Status accept the same four shapes:
//
//	Code(spec)            *Handler, ignored errors yield nil
//	Code(spec, def)       *Handler, ignored errors yield def
//	Code(spec, fn)        runs fn, an ignored failure yields nil
//	Code(spec, def, fn)   runs fn, an ignored failure yields def
//
// A nil spec ignores nothing. A failure of fn is a non-nil returned error or
// a panic with an error value; failures that are not ignored are returned (or
// re-panicked) unchanged, never wrapped.
//
// # Attributes
//
// The message is err.Error(). Codes and statuses are read from the error or
// the errors it wraps; see Lookup for the sources. syscall errors expose their
// symbolic name as code, gRPC errors their status code as status.
//
// # Concurrency
//
// Handlers are immutable and safe for concurrent use. Handlers are memoized
// by an Engine; the default engine needs no configuration, and New builds
// engines with a different cache size or none at all.
package ignore

// Code ignores errors by their code. See the package documentation for the
// accepted call shapes.
func Code(spec any, args ...any) (any, error) {
	return Default().Dispatch(AttrCode, spec, args...)
}

// Message ignores errors by their message.
func Message(spec any, args ...any) (any, error) {
	return Default().Dispatch(AttrMessage, spec, args...)
}

// Status ignores errors by their status.
func Status(spec any, args ...any) (any, error) {
	return Default().Dispatch(AttrStatus, spec, args...)
}

// Dispatch is Engine.Dispatch on the default engine.
func Dispatch(attr Attribute, spec any, args ...any) (any, error) {
	return Default().Dispatch(attr, spec, args...)
}
