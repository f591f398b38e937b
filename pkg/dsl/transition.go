package dsl

import "github.com/aretw0/switchyard/pkg/definition"

// TransitionBuilder binds one state. Each state takes exactly one of To or Resolve.
type TransitionBuilder struct {
	builder *Builder
	from    string
}

// To binds the state to a fixed target.
func (t *TransitionBuilder) To(target string) *Builder {
	return t.bind(definition.TransitionDoc{From: t.from, To: target})
}

// Resolve binds the state to a resolver.
func (t *TransitionBuilder) Resolve(id string) *Builder {
	return t.bind(definition.TransitionDoc{From: t.from, Resolver: id})
}

func (t *TransitionBuilder) bind(td definition.TransitionDoc) *Builder {
	t.builder.doc.Transitions = append(t.builder.doc.Transitions, td)
	return t.builder
}

// ResolverBuilder provides a fluent API for the branches of a resolver.
type ResolverBuilder struct {
	doc definition.ResolverDoc
}

// BranchBuilder completes a branch started by When or Otherwise.
type BranchBuilder struct {
	resolver *ResolverBuilder
	when     string
}

// When starts a branch taken when condition holds ("go", "!go", "n == 3").
func (r *ResolverBuilder) When(condition string) *BranchBuilder {
	return &BranchBuilder{resolver: r, when: condition}
}

// Otherwise starts the branch taken when no earlier branch matched.
func (r *ResolverBuilder) Otherwise() *BranchBuilder {
	return &BranchBuilder{resolver: r}
}

// Note annotates the most recent branch.
func (r *ResolverBuilder) Note(note string) *ResolverBuilder {
	if n := len(r.doc.Branches); n > 0 {
		r.doc.Branches[n-1].Note = note
	}
	return r
}

// To targets a state.
func (b *BranchBuilder) To(state string) *ResolverBuilder {
	return b.add(definition.BranchDoc{To: state})
}

// Chain hands the call over to another resolver.
func (b *BranchBuilder) Chain(id string) *ResolverBuilder {
	return b.add(definition.BranchDoc{Chain: id})
}

// End finishes the machine.
func (b *BranchBuilder) End() *ResolverBuilder {
	return b.add(definition.BranchDoc{End: true})
}

func (b *BranchBuilder) add(br definition.BranchDoc) *ResolverBuilder {
	br.When = b.when
	b.resolver.doc.Branches = append(b.resolver.doc.Branches, br)
	return b.resolver
}
