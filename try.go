package ignore

// NewHandler returns a handler from the default engine for attr that ignores
// the values in spec and returns def for the errors it ignores.
func NewHandler(attr Attribute, spec any, def any) (*Handler, error) {
	return Default().NewHandler(attr, spec, def)
}

// MustHandler is like NewHandler but panics if spec is invalid.
func MustHandler(attr Attribute, spec any, def any) *Handler {
	h, err := NewHandler(attr, spec, def)
	if err != nil {
		panic(err)
	}
	return h
}

// Try runs fn and passes its failure through h. When the failure is ignored,
// Try returns the handler's default value if it is a T and the zero T
// otherwise. Failures are handled as in Dispatch: errors returned by fn and
// error panics; a panic that is not ignored is resumed.
func Try[T any](h *Handler, fn func() (T, error)) (T, error) {
	def, _ := h.def.(T)
	return TryOr(h, def, fn)
}

// TryOr is like Try but returns def when the failure is ignored.
func TryOr[T any](h *Handler, def T, fn func() (T, error)) (T, error) {
	var out, zero T
	_, err, recovered := guard(func() (any, error) {
		v, err := fn()
		out = v
		return nil, err
	})
	if err == nil {
		return out, nil
	}
	if h.Match(err) {
		return def, nil
	}
	if recovered != nil {
		panic(recovered)
	}
	return zero, err
}
