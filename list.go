package ignore

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSpec is returned when an ignore specification holds a value that
// is neither a string, a number nor a *regexp.Regexp.
var ErrInvalidSpec = errors.New("invalid ignore spec")

// entry is one allowed value: either a pattern or an exact string/float64.
type entry struct {
	re    *regexp.Regexp
	value any
}

// List is a normalized ignore specification. The zero List is empty and
// ignores nothing. A List is immutable and safe for concurrent use.
type List struct {
	entries []entry
}

// NewList normalizes spec into a List:
//
//   - nil becomes the empty List;
//   - a List is returned as is;
//   - a string, a number or a *regexp.Regexp becomes a one-element List;
//   - a slice or array becomes a List of its elements, in order.
//
// Named string and numeric types are accepted, so a `type Code string`
// constant can be passed directly. Any other value yields ErrInvalidSpec.
func NewList(spec any) (List, error) {
	switch s := spec.(type) {
	case nil:
		return List{}, nil
	case List:
		return s, nil
	case *regexp.Regexp:
		e, err := newEntry(s)
		if err != nil {
			return List{}, err
		}
		return List{entries: []entry{e}}, nil
	}

	rv := reflect.ValueOf(spec)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		e, err := newEntry(spec)
		if err != nil {
			return List{}, err
		}
		return List{entries: []entry{e}}, nil
	}

	entries := make([]entry, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		e, err := newEntry(rv.Index(i).Interface())
		if err != nil {
			return List{}, fmt.Errorf("ignore: element %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return List{entries: entries}, nil
}

// MustList is like NewList but panics if spec is invalid. It simplifies
// initialization of package-level lists.
func MustList(spec any) List {
	l, err := NewList(spec)
	if err != nil {
		panic(err)
	}
	return l
}

func newEntry(v any) (entry, error) {
	if re, ok := v.(*regexp.Regexp); ok {
		if re == nil {
			return entry{}, fmt.Errorf("%w: nil pattern", ErrInvalidSpec)
		}
		return entry{re: re}, nil
	}
	if v == nil {
		return entry{}, fmt.Errorf("%w: nil value", ErrInvalidSpec)
	}
	if s, ok := scalar(reflect.ValueOf(v)); ok {
		return entry{value: s}, nil
	}
	return entry{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidSpec, v)
}

// Len returns the number of allowed values.
func (l List) Len() int {
	return len(l.entries)
}

// String renders the list in a canonical form: strings quoted, numbers in
// their shortest decimal form, patterns between slashes. Lists that match
// the same values render identically.
func (l List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range l.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		switch v := e.value.(type) {
		case nil:
			b.WriteByte('/')
			b.WriteString(strconv.Quote(e.re.String()))
			b.WriteByte('/')
		case string:
			b.WriteString(strconv.Quote(v))
		case float64:
			b.WriteString(formatNumber(v))
		}
	}
	b.WriteByte(']')
	return b.String()
}

// formatNumber renders f the way it reads in source: integers without an
// exponent up to 1e21, everything else in the shortest form.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
