package registry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/ports"
)

// Global is the machine name of registrations shared by every machine.
const Global = ""

// Registry manages the Go code (resolvers and hooks) that catalog machines
// are compiled with.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]map[domain.ResolverID]domain.ResolveFunc
	hooks     map[string]*domain.Hooks
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		resolvers: make(map[string]map[domain.ResolverID]domain.ResolveFunc),
		hooks:     make(map[string]*domain.Hooks),
	}
}

// RegisterResolver implements resolver id for machine, or for every machine
// that references it when machine is Global.
// If a resolver with the same ID exists, it is overwritten.
func (r *Registry) RegisterResolver(machine string, id domain.ResolverID, fn domain.ResolveFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolvers[machine] == nil {
		r.resolvers[machine] = make(map[domain.ResolverID]domain.ResolveFunc)
	}
	r.resolvers[machine][id] = fn
}

// RegisterHooks attaches hooks to machine, or to every machine when machine is Global.
// Hooks registered twice under the same name both run.
func (r *Registry) RegisterHooks(machine string, h *domain.Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[machine] = r.hooks[machine].Merge(h)
}

// CompileOptions returns the options compiling doc with the registered code.
// Global resolvers are only included when doc references their ID.
func (r *Registry) CompileOptions(doc *definition.Document) []definition.CompileOption {
	r.mu.RLock()
	defer r.mu.RUnlock()

	referenced := map[domain.ResolverID]bool{}
	for _, t := range doc.Transitions {
		if t.Resolver != "" {
			referenced[domain.ResolverID(t.Resolver)] = true
		}
	}
	for _, rd := range doc.Resolvers {
		referenced[domain.ResolverID(rd.ID)] = true
		for _, b := range rd.Branches {
			if b.Chain != "" {
				referenced[domain.ResolverID(b.Chain)] = true
			}
		}
	}

	fns := map[domain.ResolverID]domain.ResolveFunc{}
	for id, fn := range r.resolvers[Global] {
		if referenced[id] {
			fns[id] = fn
		}
	}
	maps.Copy(fns, r.resolvers[doc.Name])

	var opts []definition.CompileOption
	for _, id := range slices.Sorted(maps.Keys(fns)) {
		opts = append(opts, definition.WithResolver(id, fns[id]))
	}
	hooks := r.hooks[Global].Merge(r.hooks[doc.Name])
	return append(opts, definition.WithHooks(hooks))
}

// Definition loads name from catalog and compiles it with the registered code.
func (r *Registry) Definition(ctx context.Context, catalog ports.Catalog, name string) (domain.Definition, *definition.Document, error) {
	doc, err := catalog.Load(ctx, name)
	if err != nil {
		return domain.Definition{}, nil, err
	}
	def, err := definition.Compile(doc, r.CompileOptions(doc)...)
	if err != nil {
		return domain.Definition{}, nil, fmt.Errorf("machine %s: %w", name, err)
	}
	return def, doc, nil
}
