package ignore

import (
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/grpc/status"
)

// Attribute names the property of an error that a Handler inspects.
type Attribute string

const (
	// AttrCode selects the error code, e.g. "ENOENT" or an application code.
	AttrCode Attribute = "code"

	// AttrMessage selects the error message, which is always err.Error().
	AttrMessage Attribute = "message"

	// AttrStatus selects a numeric status, e.g. an HTTP or gRPC status code.
	AttrStatus Attribute = "status"
)

// Attributer is implemented by errors that expose their attributes by name.
// The second result reports whether the attribute is present.
type Attributer interface {
	Attribute(name string) (any, bool)
}

// StatusCoder is implemented by errors that carry an HTTP status code. It has
// the same shape as the interface used by go-kit transports.
type StatusCoder interface {
	StatusCode() int
}

type grpcStatuser interface {
	GRPCStatus() *status.Status
}

// Lookup returns the value of attr on err, normalized to either a string or a
// float64. The second result is false when the attribute is absent.
//
// The message is err.Error() itself. Other attributes are searched for in err
// and then down its Unwrap() error chain; the first error that carries the
// attribute wins. The chain stops at an error joining several others
// (Unwrap() []error): unless that error carries the attribute itself, Lookup
// reports it absent. Aggregate inspects the joined errors. On each error the
// sources are, in order:
//
//   - the Attributer interface;
//   - well-known carriers: gRPC statuses and StatusCoder for "status",
//     syscall.Errno (as its symbolic name, e.g. "ENOENT") for "code";
//   - a method without arguments named after the attribute, e.g. Code();
//   - an exported struct field named after the attribute, e.g. Code.
func Lookup(err error, attr Attribute) (any, bool) {
	if err == nil {
		return nil, false
	}
	if attr == AttrMessage {
		return err.Error(), true
	}

	for err != nil {
		if v, ok := lookupOne(err, attr); ok {
			return v, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}

func lookupOne(err error, attr Attribute) (any, bool) {
	if a, ok := err.(Attributer); ok {
		if v, ok := a.Attribute(string(attr)); ok {
			if v, ok := normalizeValue(v); ok {
				return v, true
			}
		}
	}

	switch attr {
	case AttrStatus:
		if gs, ok := err.(grpcStatuser); ok {
			if s := gs.GRPCStatus(); s != nil {
				return float64(s.Code()), true
			}
		}
		if sc, ok := err.(StatusCoder); ok {
			return float64(sc.StatusCode()), true
		}
	case AttrCode:
		if name, ok := errnoCode(err); ok {
			return name, true
		}
	}

	return reflectAttribute(err, attr)
}

// reflectAttribute reads attr through a same-named method or exported field.
// Panics raised by the method are treated as an absent attribute.
func reflectAttribute(err error, attr Attribute) (v any, ok bool) {
	name := exportedName(string(attr))
	if name == "" {
		return nil, false
	}

	rv := reflect.ValueOf(err)
	if isNil(rv) {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			v, ok = nil, false
		}
	}()

	if m := rv.MethodByName(name); m.IsValid() {
		t := m.Type()
		if t.NumIn() == 0 && t.NumOut() == 1 {
			return normalizeValue(m.Call(nil)[0].Interface())
		}
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	sf, found := rv.Type().FieldByName(name)
	if !found || !sf.IsExported() {
		return nil, false
	}
	fv, ferr := rv.FieldByIndexErr(sf.Index)
	if ferr != nil || !fv.CanInterface() {
		return nil, false
	}
	return normalizeValue(fv.Interface())
}

func exportedName(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// normalizeValue maps an attribute value onto the two comparable shapes the
// matcher knows: string and float64. Numeric kinds win over fmt.Stringer, so
// a gRPC codes.Code compares as a number.
func normalizeValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if s, ok := scalar(rv); ok {
		return s, true
	}
	if isNil(rv) {
		return nil, false
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), true
	}
	if rv.Kind() == reflect.Pointer {
		return normalizeValue(rv.Elem().Interface())
	}
	return nil, false
}

// scalar converts string and numeric kinds, including named types such as
// syscall.Errno or type Code string.
func scalar(rv reflect.Value) (any, bool) {
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return nil, false
}

func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
