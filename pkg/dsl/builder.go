package dsl

import (
	"context"
	"fmt"

	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
)

// Builder manages the document construction.
// Declaration order is kept: the first state is the default initial state.
type Builder struct {
	doc       definition.Document
	resolvers []*ResolverBuilder
}

// New creates a builder for the machine name.
func New(name string) *Builder {
	return &Builder{doc: definition.Document{Name: name}}
}

// Describe sets the machine description.
func (b *Builder) Describe(text string) *Builder {
	b.doc.Description = text
	return b
}

// State declares a valued state.
func (b *Builder) State(name string, value any) *Builder {
	b.doc.States = append(b.doc.States, definition.StateDoc{Name: name, Value: definition.Normalize(value)})
	return b
}

// Virtual declares a virtual state: it is never rested on and has no value.
func (b *Builder) Virtual(name string) *Builder {
	b.doc.States = append(b.doc.States, definition.StateDoc{Name: name, Virtual: true})
	return b
}

// VirtualValue sets the value virtual states report.
func (b *Builder) VirtualValue(v any) *Builder {
	b.doc.VirtualValue = definition.Normalize(v)
	return b
}

// Initial overrides the initial state.
func (b *Builder) Initial(name string) *Builder {
	b.doc.Initial = name
	return b
}

// From starts the binding of a state.
func (b *Builder) From(state string) *TransitionBuilder {
	return &TransitionBuilder{builder: b, from: state}
}

// Resolver declares a resolver with its parameter names. Branches are added in
// evaluation order.
func (b *Builder) Resolver(id string, params ...string) *ResolverBuilder {
	rb := &ResolverBuilder{doc: definition.ResolverDoc{ID: id, Params: params}}
	b.resolvers = append(b.resolvers, rb)
	return rb
}

// Document returns a copy of the document built so far, without checking it.
func (b *Builder) Document() *definition.Document {
	doc := b.doc
	doc.States = append([]definition.StateDoc(nil), b.doc.States...)
	doc.Transitions = append([]definition.TransitionDoc(nil), b.doc.Transitions...)
	doc.Resolvers = nil
	for _, rb := range b.resolvers {
		rd := rb.doc
		rd.Branches = append([]definition.BranchDoc(nil), rb.doc.Branches...)
		doc.Resolvers = append(doc.Resolvers, rd)
	}
	return &doc
}

// Build returns the document after checking it compiles.
// Resolvers implemented in Go are not needed for the check.
func (b *Builder) Build() (*definition.Document, error) {
	doc := b.Document()
	if _, err := definition.Compile(doc, placeholders(doc)...); err != nil {
		return nil, fmt.Errorf("failed to build machine %s: %w", doc.Name, err)
	}
	return doc, nil
}

// Compile builds the document and compiles it with opts.
func (b *Builder) Compile(opts ...definition.CompileOption) (domain.Definition, error) {
	doc, err := b.Build()
	if err != nil {
		return domain.Definition{}, err
	}
	return definition.Compile(doc, opts...)
}

// placeholders stands in for referenced resolvers that have no declarative branches.
func placeholders(doc *definition.Document) []definition.CompileOption {
	declared := map[string]bool{}
	for _, rd := range doc.Resolvers {
		declared[rd.ID] = true
	}
	var opts []definition.CompileOption
	add := func(id string) {
		if id == "" || declared[id] {
			return
		}
		declared[id] = true
		opts = append(opts, definition.WithResolver(domain.ResolverID(id), func(context.Context, domain.Call) (domain.Target, error) {
			return domain.End(), nil
		}))
	}
	for _, t := range doc.Transitions {
		add(t.Resolver)
	}
	for _, rd := range doc.Resolvers {
		for _, br := range rd.Branches {
			add(br.Chain)
		}
	}
	return opts
}
