package ignore

import "fmt"

// Matches reports whether observed is ignored by allowed.
//
// An absent value (present == false) never matches. A pattern matches when it
// finds a match anywhere in the observed value, numbers being tested in their
// decimal form. Any other entry matches when it equals the observed value;
// strings only equal strings and numbers only equal numbers, so "802" does
// not match 802. An empty list matches nothing.
func Matches(allowed List, observed any, present bool) bool {
	if !present || len(allowed.entries) == 0 {
		return false
	}
	observed, present = normalizeValue(observed)
	if !present {
		return false
	}

	var (
		text     string
		rendered bool
	)
	for _, e := range allowed.entries {
		if e.re == nil {
			if e.value == observed {
				return true
			}
			continue
		}
		if !rendered {
			text, rendered = render(observed), true
		}
		if e.re.MatchString(text) {
			return true
		}
	}
	return false
}

func render(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	}
	return ""
}

// Handler decides the fate of errors: it suppresses the errors whose
// attribute matches its List and hands every other error back unchanged.
//
// A Handler is immutable and safe for concurrent use. Handlers obtained from
// an Engine with equal attribute, list and default value may be the same
// instance.
type Handler struct {
	attr Attribute
	list List
	def  any
}

func newHandler(attr Attribute, list List, def any) *Handler {
	return &Handler{attr: attr, list: list, def: def}
}

// Attribute returns the attribute the handler inspects.
func (h *Handler) Attribute() Attribute { return h.attr }

// List returns the values the handler ignores.
func (h *Handler) List() List { return h.list }

// Default returns the value returned for ignored errors.
func (h *Handler) Default() any { return h.def }

// Match reports whether err is ignored. A nil error is never ignored, and a
// handler with an empty list ignores nothing without reading the attribute.
func (h *Handler) Match(err error) bool {
	if err == nil || len(h.list.entries) == 0 {
		return false
	}
	v, ok := Lookup(err, h.attr)
	return Matches(h.list, v, ok)
}

// Handle returns the default value and a nil error when err is ignored, and
// nil and err itself otherwise.
func (h *Handler) Handle(err error) (any, error) {
	if h.Match(err) {
		return h.def, nil
	}
	return nil, err
}

// Err returns nil when err is ignored and err itself otherwise.
//
//	if err := ignore.MustHandler(ignore.AttrCode, "ENOENT", nil).Err(os.Remove(p)); err != nil {
//	    return err
//	}
func (h *Handler) Err(err error) error {
	if h.Match(err) {
		return nil
	}
	return err
}

// Filter returns the errors from errs that are NOT ignored, in order. Nil
// entries are dropped.
func (h *Handler) Filter(errs []error) []error {
	var kept []error
	for _, err := range errs {
		if err != nil && !h.Match(err) {
			kept = append(kept, err)
		}
	}
	return kept
}

// String describes the handler, e.g. `code in ["ENOENT","EEXIST"]`.
func (h *Handler) String() string {
	return fmt.Sprintf("%s in %s", h.attr, h.list)
}
