package domain

import "fmt"

// Definition is the immutable blueprint a machine is constructed from.
type Definition struct {
	Name    string
	Table   *Table
	Initial State
	Hooks   *Hooks
}

// Registry is a shortcut for d.Table.Registry().
func (d Definition) Registry() *Registry {
	if d.Table == nil {
		return nil
	}
	return d.Table.Registry()
}

// Validate checks that the definition can drive a machine.
func (d Definition) Validate() error {
	var c collector
	if d.Table == nil {
		c.addf(ErrConfiguration, "missing transition table")
		return c.err()
	}
	if d.Initial.IsZero() {
		c.addf(ErrConfiguration, "missing initial state")
	} else if !d.Table.Registry().Contains(d.Initial) {
		c.addf(ErrConfiguration, "initial state %v is not registered", d.Initial)
	}
	return c.err()
}

// WithHooks returns a copy of d whose hooks also include extra.
func (d Definition) WithHooks(extra *Hooks) Definition {
	d.Hooks = d.Hooks.Merge(extra)
	return d
}

// Snapshot returns a copy whose hook table is independent of later registrations.
func (d Definition) Snapshot() Definition {
	d.Hooks = d.Hooks.clone()
	return d
}

func (d Definition) String() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("machine(%d states)", d.Registry().Len())
}
