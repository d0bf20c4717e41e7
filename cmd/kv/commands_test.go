package kv

import (
	"reflect"
	"testing"
)

// TestParseValue tests that arguments keep their JSON type where possible.
func TestParseValue(t *testing.T) {
	tests := []struct {
		raw      string
		expected any
	}{
		{"42", float64(42)},
		{"2.5", 2.5},
		{"true", true},
		{"false", false},
		{"null", nil},
		{`"quoted"`, "quoted"},
		{`[1, 2, 3]`, []any{float64(1), float64(2), float64(3)}},
		{`{"a": 1}`, map[string]any{"a": float64(1)}},
		{"dark", "dark"},
		{"", ""},
		{"not json {", "not json {"},
	}

	for _, tc := range tests {
		if got := parseValue(tc.raw); !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("parseValue(%q) = %v (%T), expected %v (%T)", tc.raw, got, got, tc.expected, tc.expected)
		}
	}
}

// TestRenderValue tests terminal rendering of store values.
func TestRenderValue(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "null"},
		{"dark", `"dark"`},
		{float64(42), "42"},
		{true, "true"},
		{[]any{"a", "b"}, `["a","b"]`},
		{map[string]any{"a": float64(1)}, `{"a":1}`},
	}

	for _, tc := range tests {
		if got := renderValue(tc.value); got != tc.expected {
			t.Errorf("renderValue(%v) = %q, expected %q", tc.value, got, tc.expected)
		}
	}
}
