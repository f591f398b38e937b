package domain

import "fmt"

// Declaration is one (name, value, virtual) triple of a state declaration.
type Declaration struct {
	Name    string
	Value   any
	Virtual bool
}

// Declare declares a state; it becomes virtual when value equals the registry sentinel.
func Declare(name string, value any) Declaration {
	return Declaration{Name: name, Value: value}
}

// DeclareVirtual declares a state that is virtual regardless of its value.
func DeclareVirtual(name string) Declaration {
	return Declaration{Name: name, Virtual: true}
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	sentinel any
}

// WithVirtualSentinel sets the value marking virtual states (default nil).
func WithVirtualSentinel(v any) RegistryOption {
	return func(c *registryConfig) {
		c.sentinel = v
	}
}

// Registry is the ordered, frozen collection of declared States.
type Registry struct {
	states   []State
	byName   map[string]int
	byValue  map[any]int
	sentinel any
}

// NewRegistry builds a Registry from ordered declarations.
// Virtual states share the sentinel value, so they are reachable by name only.
func NewRegistry(decls []Declaration, opts ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !isComparable(cfg.sentinel) {
		return nil, fmt.Errorf("%w: virtual sentinel of type %T is not comparable", ErrConfiguration, cfg.sentinel)
	}

	r := &Registry{
		states:   make([]State, 0, len(decls)),
		byName:   make(map[string]int, len(decls)),
		byValue:  make(map[any]int, len(decls)),
		sentinel: cfg.sentinel,
	}

	var c collector
	if len(decls) == 0 {
		c.addf(ErrConfiguration, "no states declared")
	}
	for _, d := range decls {
		if d.Name == "" {
			c.addf(ErrConfiguration, "state with empty name")
			continue
		}
		if _, dup := r.byName[d.Name]; dup {
			c.addf(ErrConfiguration, "state %q declared twice", d.Name)
			continue
		}
		if !isComparable(d.Value) {
			c.addf(ErrConfiguration, "state %q has non-comparable value of type %T", d.Name, d.Value)
			continue
		}

		s := State{
			name:    d.Name,
			value:   d.Value,
			virtual: d.Virtual || valuesEqual(d.Value, cfg.sentinel),
		}
		if s.virtual {
			s.value = cfg.sentinel
		} else {
			if prev, dup := r.byValue[d.Value]; dup {
				c.addf(ErrConfiguration, "states %q and %q share value %#v", r.states[prev].name, d.Name, d.Value)
				continue
			}
			r.byValue[d.Value] = len(r.states)
		}
		r.byName[d.Name] = len(r.states)
		r.states = append(r.states, s)
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for package-level declarations.
func MustRegistry(decls []Declaration, opts ...RegistryOption) *Registry {
	r, err := NewRegistry(decls, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// States returns the declared states in declaration order.
func (r *Registry) States() []State {
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

// Len returns the number of declared states.
func (r *Registry) Len() int { return len(r.states) }

// Sentinel returns the value marking virtual states.
func (r *Registry) Sentinel() any { return r.sentinel }

// ByName returns the state declared with name.
func (r *Registry) ByName(name string) (State, bool) {
	i, ok := r.byName[name]
	if !ok {
		return State{}, false
	}
	return r.states[i], true
}

// MustByName is like ByName but panics when the state is unknown.
func (r *Registry) MustByName(name string) State {
	s, ok := r.ByName(name)
	if !ok {
		panic(fmt.Sprintf("switchyard: unknown state %q", name))
	}
	return s
}

// Lookup returns the state whose value equals v.
func (r *Registry) Lookup(v any) (State, error) {
	if !isComparable(v) {
		return State{}, fmt.Errorf("%w: value of type %T is not comparable", ErrInvalidState, v)
	}
	i, ok := r.byValue[v]
	if !ok {
		return State{}, fmt.Errorf("%w: no state has value %#v", ErrInvalidState, v)
	}
	return r.states[i], nil
}

// Canonical maps s onto the registered state with the same name and value.
func (r *Registry) Canonical(s State) (State, bool) {
	reg, ok := r.ByName(s.name)
	if !ok {
		return State{}, false
	}
	// Virtual values are normalised to the sentinel.
	if reg.virtual && s.virtual {
		return reg, true
	}
	if !valuesEqual(reg.value, s.value) {
		return State{}, false
	}
	return reg, true
}

// Contains reports whether s is registered.
func (r *Registry) Contains(s State) bool {
	_, ok := r.Canonical(s)
	return ok
}
