package ignore

// AggregateHandler layers multi-error handling on top of a Handler: an error
// that joins other errors (it implements Unwrap() []error, as errors.Join
// results do) is ignored only if every joined error is ignored.
//
// Without this layer a joined error has no code or status, so a Handler
// returns it unchanged.
type AggregateHandler struct {
	h *Handler
}

// Aggregate wraps h with multi-error handling.
func Aggregate(h *Handler) *AggregateHandler {
	return &AggregateHandler{h: h}
}

// Match reports whether err is ignored. Nested joins are flattened.
func (a *AggregateHandler) Match(err error) bool {
	if m, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := m.Unwrap(); len(errs) > 0 {
			for _, e := range errs {
				if !a.Match(e) {
					return false
				}
			}
			return true
		}
	}
	return a.h.Match(err)
}

// Handle returns the wrapped handler's default value and a nil error when err
// is ignored, and nil and err itself otherwise.
func (a *AggregateHandler) Handle(err error) (any, error) {
	if a.Match(err) {
		return a.h.def, nil
	}
	return nil, err
}

// Err returns nil when err is ignored and err itself otherwise.
func (a *AggregateHandler) Err(err error) error {
	if a.Match(err) {
		return nil
	}
	return err
}
