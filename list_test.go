package ignore

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appCode string

func TestNewList(t *testing.T) {
	re := regexp.MustCompile("x+")

	tests := []struct {
		name string
		spec any
		want string
	}{
		{"nil", nil, "[]"},
		{"string", "CANNOT", `["CANNOT"]`},
		{"named string", appCode("not_found"), `["not_found"]`},
		{"int", 802, "[802]"},
		{"uint8", uint8(7), "[7]"},
		{"float", 1.5, "[1.5]"},
		{"pattern", re, `[/"x+"/]`},
		{"string slice keeps order", []string{"B", "A"}, `["B","A"]`},
		{"int array", [2]int{802, 803}, "[802,803]"},
		{"mixed", []any{"a", 802, 1.5, re}, `["a",802,1.5,/"x+"/]`},
		{"empty slice", []string{}, "[]"},
		{"large number", 1e21, "[1e+21]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewList(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, l.String())
		})
	}
}

func TestNewListPassesListThrough(t *testing.T) {
	l := MustList([]string{"A", "B"})
	got, err := NewList(l)
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestNewListEqualNumbersRenderAlike(t *testing.T) {
	assert.Equal(t, MustList(802).String(), MustList(uint16(802)).String())
	assert.Equal(t, MustList(802).String(), MustList(802.0).String())
	assert.NotEqual(t, MustList(802).String(), MustList("802").String())
}

func TestNewListInvalid(t *testing.T) {
	tests := []struct {
		name string
		spec any
	}{
		{"bool", true},
		{"struct", struct{}{}},
		{"map", map[string]int{"a": 1}},
		{"func", func() {}},
		{"nil pattern", (*regexp.Regexp)(nil)},
		{"nil element", []any{"a", nil}},
		{"nested slice", []any{"a", []string{"b"}}},
		{"pointer", new(string)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewList(tc.spec)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestNewListInvalidElementIndex(t *testing.T) {
	_, err := NewList([]any{"a", "b", true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 2")
}

func TestMustListPanics(t *testing.T) {
	assert.Panics(t, func() { MustList(true) })
	assert.NotPanics(t, func() { MustList("ok") })
}

func TestListZeroValue(t *testing.T) {
	var l List
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, "[]", l.String())
	assert.False(t, Matches(l, "anything", true))
}
