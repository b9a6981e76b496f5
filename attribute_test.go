package ignore

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// codedError exposes its code through a method with a named result type.
type codedError struct{ code appCode }

func (e *codedError) Error() string { return "coded: " + string(e.code) }
func (e *codedError) Code() appCode { return e.code }

// fieldError exposes its attributes as exported fields.
type fieldError struct {
	Code   int
	Status string
}

func (e fieldError) Error() string { return "field error" }

type httpError struct{ code int }

func (e httpError) Error() string   { return http.StatusText(e.code) }
func (e httpError) StatusCode() int { return e.code }

// panickyError panics when asked for its code.
type panickyError struct{}

func (panickyError) Error() string { return "panicky" }
func (panickyError) Code() string  { panic("boom") }

// setterError has a Code method that is a setter, not a getter.
type setterError struct{}

func (setterError) Error() string           { return "setter" }
func (setterError) Code(string) setterError { return setterError{} }

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

// ---------------------------------------------------------------------------
// Lookup sources
// ---------------------------------------------------------------------------

func TestLookup(t *testing.T) {
	var nilCoded *codedError

	tests := []struct {
		name    string
		err     error
		attr    Attribute
		want    any
		present bool
	}{
		{"nil error", nil, AttrCode, nil, false},
		{"message", errSimple, AttrMessage, "Cannot complete operation.", true},
		{"message of wrapper", fmt.Errorf("ctx: %w", errSimple), AttrMessage, "ctx: Cannot complete operation.", true},
		{"attributer code", errCannot, AttrCode, "CANNOT", true},
		{"attributer status", errCannot, AttrStatus, 802.0, true},
		{"attributer absent", &testError{msg: "x"}, AttrCode, nil, false},
		{"attributer stringer", &testError{msg: "x", code: stringer{"S"}}, AttrCode, "S", true},
		{"attributer unsupported value", &testError{msg: "x", code: struct{}{}}, AttrCode, nil, false},
		{"plain error has no code", errSimple, AttrCode, nil, false},
		{"method with named type", &codedError{code: "not_found"}, AttrCode, "not_found", true},
		{"typed nil pointer", nilCoded, AttrCode, nil, false},
		{"exported field", fieldError{Code: 7, Status: "failed"}, AttrCode, 7.0, true},
		{"exported string field", fieldError{Status: "failed"}, AttrStatus, "failed", true},
		{"status coder", httpError{code: http.StatusNotFound}, AttrStatus, 404.0, true},
		{"panicking method", panickyError{}, AttrCode, nil, false},
		{"setter method", setterError{}, AttrCode, nil, false},
		{"custom attribute", &testError{msg: "x"}, Attribute("other"), nil, false},
		{"empty attribute", errCannot, Attribute(""), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Lookup(tc.err, tc.attr)
			assert.Equal(t, tc.present, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookupGRPCStatus(t *testing.T) {
	err := status.Error(codes.NotFound, "no such user")

	got, ok := Lookup(err, AttrStatus)
	require.True(t, ok)
	assert.Equal(t, float64(codes.NotFound), got)

	got, ok = Lookup(fmt.Errorf("get user: %w", err), AttrStatus)
	require.True(t, ok)
	assert.Equal(t, float64(codes.NotFound), got)

	_, ok = Lookup(err, AttrCode)
	assert.False(t, ok)

	h := asHandler(t)(Status([]codes.Code{codes.NotFound, codes.AlreadyExists}, "default"))
	v, herr := h.Handle(err)
	require.NoError(t, herr)
	assert.Equal(t, "default", v)

	_, herr = h.Handle(status.Error(codes.Internal, "boom"))
	assert.Error(t, herr)
}

// ---------------------------------------------------------------------------
// Wrapped errors
// ---------------------------------------------------------------------------

func TestLookupWrapped(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"fmt wrap", fmt.Errorf("saving: %w", errCannot)},
		{"double fmt wrap", fmt.Errorf("a: %w", fmt.Errorf("b: %w", errCannot))},
		{"pkg/errors wrap", pkgerrors.Wrap(errCannot, "saving")},
		{"pkg/errors with stack", pkgerrors.WithStack(errCannot)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Lookup(tc.err, AttrCode)
			require.True(t, ok)
			assert.Equal(t, "CANNOT", got)
		})
	}
}

func TestLookupStopsAtJoin(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"join", errors.Join(errCannot, errCannot)},
		{"wrapped join", fmt.Errorf("saving: %w", errors.Join(errCannot))},
		{"multiple %w", fmt.Errorf("%w and %w", errCannot, errSimple)},
		{"multi error", errAggregate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Lookup(tc.err, AttrCode)
			assert.False(t, ok)

			msg, ok := Lookup(tc.err, AttrMessage)
			require.True(t, ok)
			assert.Equal(t, tc.err.Error(), msg)
		})
	}

	// A joining error that carries the attribute itself still reports it.
	own := &wrapJoin{testError: &testError{msg: "own", code: "OWN"}, errs: []error{errCannot}}
	got, ok := Lookup(own, AttrCode)
	require.True(t, ok)
	assert.Equal(t, "OWN", got)
}

type wrapJoin struct {
	*testError
	errs []error
}

func (e *wrapJoin) Unwrap() []error { return e.errs }

func TestLookupOuterErrorWins(t *testing.T) {
	outer := &testError{msg: "outer", code: "OUTER", status: 500}
	inner := &testError{msg: "inner", code: "INNER"}
	err := &wrapError{testError: outer, cause: inner}

	got, ok := Lookup(err, AttrCode)
	require.True(t, ok)
	assert.Equal(t, "OUTER", got)
}

type wrapError struct {
	*testError
	cause error
}

func (e *wrapError) Unwrap() error { return e.cause }

func TestMessageOfWrappedError(t *testing.T) {
	err := pkgerrors.Wrap(errSimple, "loading config")
	h := asHandler(t)(Message(regexp.MustCompile("^loading config: ")))
	assert.NoError(t, h.Err(err))
}
