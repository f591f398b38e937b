package domain

import "fmt"

// TargetKind tags the outcome carried by a Target.
type TargetKind uint8

const (
	// TargetInvalid is the zero Target. Returning it is a contract violation.
	TargetInvalid TargetKind = iota
	// TargetState moves the machine to a State.
	TargetState
	// TargetChain defers the decision to another resolver.
	TargetChain
	// TargetEnd finishes the machine.
	TargetEnd
)

func (k TargetKind) String() string {
	switch k {
	case TargetState:
		return "state"
	case TargetChain:
		return "chain"
	case TargetEnd:
		return "end"
	default:
		return "invalid"
	}
}

// Target is what a resolver returns: a State, a chain to another resolver, or End.
// The annotation is a human-readable label for graphs and logs; it never affects control flow.
type Target struct {
	kind  TargetKind
	state State
	chain ResolverID
	note  string
}

// To targets a state.
func To(s State) Target {
	return Target{kind: TargetState, state: s}
}

// ChainTo hands the decision to the resolver registered under id.
func ChainTo(id ResolverID) Target {
	return Target{kind: TargetChain, chain: id}
}

// End finishes the machine.
func End() Target {
	return Target{kind: TargetEnd}
}

// Annotate returns a copy of t labelled with note.
func (t Target) Annotate(note string) Target {
	t.note = note
	return t
}

// Kind returns the tag.
func (t Target) Kind() TargetKind { return t.kind }

// State returns the targeted state (zero unless Kind is TargetState).
func (t Target) State() State { return t.state }

// Chain returns the resolver to chain to (empty unless Kind is TargetChain).
func (t Target) Chain() ResolverID { return t.chain }

// Annotation returns the label attached with Annotate.
func (t Target) Annotation() string { return t.note }

// IsEnd reports whether t finishes the machine.
func (t Target) IsEnd() bool { return t.kind == TargetEnd }

// Equal compares kind, destination and annotation.
func (t Target) Equal(o Target) bool {
	return t.kind == o.kind && t.state.Equal(o.state) && t.chain == o.chain && t.note == o.note
}

func (t Target) String() string {
	var s string
	switch t.kind {
	case TargetState:
		s = t.state.Name()
	case TargetChain:
		s = "->" + string(t.chain)
	case TargetEnd:
		s = "End"
	default:
		s = "<invalid>"
	}
	if t.note != "" {
		s = fmt.Sprintf("%s (%q)", s, t.note)
	}
	return s
}
