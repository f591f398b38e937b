package domain

import (
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Args is the call-time argument bag forwarded to resolvers and hooks.
// Positional values bind to declared parameter names in order; named values
// reach only callees that declare them.
type Args struct {
	positional []any
	named      map[string]any
}

// NamedArg is a keyword argument for ArgsOf.
type NamedArg struct {
	Name  string
	Value any
}

// Named builds a keyword argument.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// ArgsOf builds an Args from plain values (positional) and NamedArg values (keyword).
func ArgsOf(values ...any) Args {
	var a Args
	for _, v := range values {
		if n, ok := v.(NamedArg); ok {
			a = a.With(n.Name, n.Value)
			continue
		}
		a.positional = append(a.positional, v)
	}
	return a
}

// With returns a copy of a with the keyword argument set.
func (a Args) With(name string, value any) Args {
	named := make(map[string]any, len(a.named)+1)
	for k, v := range a.named {
		named[k] = v
	}
	named[name] = value
	return Args{positional: a.positional, named: named}
}

// Get returns a named (or positionally bound) value.
func (a Args) Get(name string) (any, bool) {
	v, ok := a.named[name]
	return v, ok
}

// At returns the positional value at i.
func (a Args) At(i int) (any, bool) {
	if i < 0 || i >= len(a.positional) {
		return nil, false
	}
	return a.positional[i], true
}

// Bool returns the named value as a bool, or def when absent or of another type.
func (a Args) Bool(name string, def bool) bool {
	if v, ok := a.named[name].(bool); ok {
		return v
	}
	return def
}

// Text returns the named value as a string, or def when absent or of another type.
func (a Args) Text(name string, def string) string {
	if v, ok := a.named[name].(string); ok {
		return v
	}
	return def
}

// Positional returns a copy of the positional values.
func (a Args) Positional() []any {
	return slices.Clone(a.positional)
}

// Map returns a copy of the named values.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a.named))
	for k, v := range a.named {
		out[k] = v
	}
	return out
}

// Len returns the number of positional plus named values.
func (a Args) Len() int {
	return len(a.positional) + len(a.named)
}

// Decode copies the named values into out (a pointer to a struct or map) using
// mapstructure tags.
func (a Args) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create args decoder: %w", err)
	}
	if err := dec.Decode(a.named); err != nil {
		return fmt.Errorf("failed to decode args: %w", err)
	}
	return nil
}

// Signature declares the parameters a resolver or hook accepts.
type Signature struct {
	// Params are the accepted parameter names, in positional order.
	Params []string
	// Variadic callees receive the whole bag unfiltered.
	Variadic bool
}

// Bind filters a down to the parameters declared by sig.
func (sig Signature) Bind(a Args) (Args, error) {
	if sig.Variadic {
		return Args{positional: a.Positional(), named: a.Map()}, nil
	}

	out := Args{named: make(map[string]any, len(sig.Params))}
	n := min(len(a.positional), len(sig.Params))
	out.positional = slices.Clone(a.positional[:n])
	for i := 0; i < n; i++ {
		out.named[sig.Params[i]] = a.positional[i]
	}
	for k, v := range a.named {
		idx := slices.Index(sig.Params, k)
		if idx < 0 {
			continue
		}
		if idx < n {
			return Args{}, fmt.Errorf("%w: %q", ErrArgumentConflict, k)
		}
		out.named[k] = v
	}
	return out, nil
}
