package domain

import "fmt"

// Binding is the transition declared for one source state.
type Binding struct {
	Source State
	// Direct is the constant destination, zero when the transition is computed.
	Direct   State
	Resolver *Resolver

	constant bool
}

// IsConstant reports whether the binding maps straight to another state.
func (b Binding) IsConstant() bool {
	return b.constant
}

// TableBuilder accumulates bindings until Build freezes them.
type TableBuilder struct {
	reg       *Registry
	bindings  []Binding
	resolvers []*Resolver
}

// NewTable starts a transition table over reg.
func NewTable(reg *Registry) *TableBuilder {
	return &TableBuilder{reg: reg}
}

// Bind declares a constant transition src → dst.
func (b *TableBuilder) Bind(src, dst State) *TableBuilder {
	b.bindings = append(b.bindings, Binding{
		Source:   src,
		Direct:   dst,
		Resolver: Constant(dst),
		constant: true,
	})
	return b
}

// BindResolver declares a computed transition from src.
func (b *TableBuilder) BindResolver(src State, r *Resolver) *TableBuilder {
	b.bindings = append(b.bindings, Binding{Source: src, Resolver: r})
	return b.Register(r)
}

// Register makes r available to ChainTo without binding it to a state.
func (b *TableBuilder) Register(r *Resolver) *TableBuilder {
	b.resolvers = append(b.resolvers, r)
	return b
}

// Table is the frozen mapping from source state to resolver.
type Table struct {
	reg        *Registry
	bindings   []Binding
	bySource   map[key]int
	resolvers  []*Resolver
	byResolver map[ResolverID]*Resolver
}

// Build validates every binding and freezes the table.
// All failures are reported together in an *AggregateError.
func (b *TableBuilder) Build() (*Table, error) {
	if b.reg == nil {
		return nil, fmt.Errorf("%w: transition table needs a registry", ErrConfiguration)
	}

	t := &Table{
		reg:        b.reg,
		bySource:   make(map[key]int, len(b.bindings)),
		byResolver: make(map[ResolverID]*Resolver, len(b.resolvers)),
	}

	var c collector
	if len(b.bindings) == 0 {
		c.addf(ErrConfiguration, "empty transition table")
	}

	for _, r := range b.resolvers {
		switch {
		case r == nil:
			c.addf(ErrConfiguration, "nil resolver")
		case r.ID == "":
			c.addf(ErrConfiguration, "resolver without ID")
		case r.Fn == nil:
			c.addf(ErrConfiguration, "resolver %q has no function", r.ID)
		default:
			if prev, dup := t.byResolver[r.ID]; dup {
				if prev != r {
					c.addf(ErrConfiguration, "resolver ID %q registered twice", r.ID)
				}
				continue
			}
			t.byResolver[r.ID] = r
			t.resolvers = append(t.resolvers, r)
		}
	}

	for _, bnd := range b.bindings {
		src, ok := b.reg.Canonical(bnd.Source)
		if !ok {
			c.addf(ErrInvalidState, "transition source %v is not registered", bnd.Source)
			continue
		}
		bnd.Source = src
		if bnd.IsConstant() {
			dst, ok := b.reg.Canonical(bnd.Direct)
			if !ok {
				c.addf(ErrInvalidState, "transition %s -> %v targets an unregistered state", src.Name(), bnd.Direct)
				continue
			}
			bnd.Direct = dst
			bnd.Resolver = Constant(dst)
		}
		if bnd.Resolver == nil {
			// Already reported while registering resolvers.
			continue
		}
		if _, dup := t.bySource[src.key()]; dup {
			c.addf(ErrDuplicateTransition, "state %q", src.Name())
			continue
		}
		t.bySource[src.key()] = len(t.bindings)
		t.bindings = append(t.bindings, bnd)
	}

	for _, r := range t.resolvers {
		for _, br := range r.Branches {
			c.add(t.checkBranch(r.ID, br.Target))
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) checkBranch(id ResolverID, target Target) error {
	switch target.Kind() {
	case TargetState:
		if !t.reg.Contains(target.State()) {
			return fmt.Errorf("%w: resolver %q declares unregistered state %v", ErrConfiguration, id, target.State())
		}
	case TargetChain:
		if _, ok := t.byResolver[target.Chain()]; !ok {
			return fmt.Errorf("%w: resolver %q declares unknown chain target %q", ErrConfiguration, id, target.Chain())
		}
	case TargetEnd:
	default:
		return fmt.Errorf("%w: resolver %q declares an invalid branch", ErrConfiguration, id)
	}
	return nil
}

// Registry returns the registry the table was built over.
func (t *Table) Registry() *Registry { return t.reg }

// Lookup returns the binding for src.
func (t *Table) Lookup(src State) (Binding, bool) {
	canonical, ok := t.reg.Canonical(src)
	if !ok {
		return Binding{}, false
	}
	i, ok := t.bySource[canonical.key()]
	if !ok {
		return Binding{}, false
	}
	return t.bindings[i], true
}

// Direct returns the constant destination of src, if its transition is constant.
func (t *Table) Direct(src State) (State, bool) {
	b, ok := t.Lookup(src)
	if !ok || !b.IsConstant() {
		return State{}, false
	}
	return b.Direct, true
}

// Resolver returns the resolver registered under id.
func (t *Table) Resolver(id ResolverID) (*Resolver, bool) {
	r, ok := t.byResolver[id]
	return r, ok
}

// Bindings returns the bindings in declaration order.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// Resolvers returns the named resolvers in registration order.
func (t *Table) Resolvers() []*Resolver {
	out := make([]*Resolver, len(t.resolvers))
	copy(out, t.resolvers)
	return out
}
