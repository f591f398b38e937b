package domain

import (
	"fmt"
	"reflect"
)

// State is one node of the machine's control graph.
// States are values: they are created by a Registry and never change afterwards.
// The zero State means "unset" (before the first assignment, or after End).
type State struct {
	name    string
	value   any
	virtual bool
}

// NewState builds a free-standing State. It is mainly useful for comparisons and
// for Assign, which maps it back onto the registered State with the same identity.
func NewState(name string, value any) State {
	return State{name: name, value: value}
}

// Name returns the declared name.
func (s State) Name() string { return s.name }

// Value returns the declared value.
func (s State) Value() any { return s.value }

// Virtual reports whether the state auto-advances without external stimulus.
func (s State) Virtual() bool { return s.virtual }

// IsZero reports whether s is the unset State.
func (s State) IsZero() bool { return s.name == "" }

// Equal reports whether both states share name and value.
func (s State) Equal(other State) bool {
	return s.name == other.name && valuesEqual(s.value, other.value)
}

// Matches reports whether v equals the state's value.
// The comparison is one-directional: a bare value never "contains" a State.
func (s State) Matches(v any) bool {
	if other, ok := v.(State); ok {
		return s.Equal(other)
	}
	return valuesEqual(s.value, v)
}

func (s State) String() string {
	if s.IsZero() {
		return "<unset>"
	}
	return s.name
}

// GoString renders the state with its value, for debugging output.
func (s State) GoString() string {
	if s.virtual {
		return fmt.Sprintf("<State %s (virtual)>", s.name)
	}
	return fmt.Sprintf("<State %s=%#v>", s.name, s.value)
}

// key is the hashable identity used by registries and tables.
type key struct {
	name  string
	value any
}

func (s State) key() key {
	return key{name: s.name, value: s.value}
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// valuesEqual compares two opaque values without panicking on non-comparable types.
func valuesEqual(a, b any) bool {
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}
