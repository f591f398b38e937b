package domain

import (
	"context"
	"maps"
)

// HookKind identifies where a hook fires.
type HookKind string

const (
	HookBefore HookKind = "before"
	HookAfter  HookKind = "after"
	HookOn     HookKind = "on"
	HookStart  HookKind = "on_start"
	HookEnd    HookKind = "on_end"
)

// HookName returns the convention name of a state hook ("before_a", "after_a", "on_a").
// For HookStart and HookEnd the state name is ignored.
func HookName(kind HookKind, state string) string {
	switch kind {
	case HookStart, HookEnd:
		return string(kind)
	default:
		return string(kind) + "_" + state
	}
}

// HookEvent is what a hook receives.
type HookEvent struct {
	Name string
	Kind HookKind
	From State // State being left (zero on the first assignment)
	To   State // State being entered (zero on End)
	Args Args  // Filtered by the hook's Signature
}

// HookFunc is a side effect bound to a hook name.
type HookFunc func(ctx context.Context, ev HookEvent) error

// Hook is a HookFunc with its declared parameters.
type Hook struct {
	Signature
	Fn HookFunc
}

// Hooks maps convention names to side effects. Missing hooks are no-ops.
type Hooks struct {
	byName map[string]Hook
}

// NewHooks creates an empty hook table.
func NewHooks() *Hooks {
	return &Hooks{byName: make(map[string]Hook)}
}

// Set registers h under name, replacing any previous hook.
func (h *Hooks) Set(name string, hook Hook) *Hooks {
	h.byName[name] = hook
	return h
}

// Before registers a before_<state> hook receiving every forwarded argument.
func (h *Hooks) Before(state string, fn HookFunc) *Hooks {
	return h.Set(HookName(HookBefore, state), Hook{Signature: Signature{Variadic: true}, Fn: fn})
}

// After registers an after_<state> hook receiving every forwarded argument.
func (h *Hooks) After(state string, fn HookFunc) *Hooks {
	return h.Set(HookName(HookAfter, state), Hook{Signature: Signature{Variadic: true}, Fn: fn})
}

// On registers an on_<state> hook receiving every forwarded argument.
func (h *Hooks) On(state string, fn HookFunc) *Hooks {
	return h.Set(HookName(HookOn, state), Hook{Signature: Signature{Variadic: true}, Fn: fn})
}

// OnStart registers the machine-wide start hook.
func (h *Hooks) OnStart(fn HookFunc) *Hooks {
	return h.Set(string(HookStart), Hook{Fn: fn})
}

// OnEnd registers the machine-wide end hook.
func (h *Hooks) OnEnd(fn HookFunc) *Hooks {
	return h.Set(string(HookEnd), Hook{Signature: Signature{Variadic: true}, Fn: fn})
}

// Lookup returns the hook registered under name.
func (h *Hooks) Lookup(name string) (Hook, bool) {
	if h == nil {
		return Hook{}, false
	}
	hook, ok := h.byName[name]
	return hook, ok && hook.Fn != nil
}

// Names returns the registered hook names.
func (h *Hooks) Names() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.byName))
	for name := range h.byName {
		names = append(names, name)
	}
	return names
}

// Merge returns a new table with the hooks of h and other; on a name clash both run, h first.
func (h *Hooks) Merge(other *Hooks) *Hooks {
	out := NewHooks()
	if h != nil {
		maps.Copy(out.byName, h.byName)
	}
	if other == nil {
		return out
	}
	for name, hook := range other.byName {
		first, ok := out.byName[name]
		if !ok {
			out.byName[name] = hook
			continue
		}
		out.byName[name] = Hook{
			Signature: Signature{Variadic: true},
			Fn:        sequence(first, hook),
		}
	}
	return out
}

// sequence runs two hooks in order, binding each to its own signature.
func sequence(a, b Hook) HookFunc {
	return func(ctx context.Context, ev HookEvent) error {
		for _, hook := range []Hook{a, b} {
			args, err := hook.Bind(ev.Args)
			if err != nil {
				return err
			}
			bound := ev
			bound.Args = args
			if err := hook.Fn(ctx, bound); err != nil {
				return err
			}
		}
		return nil
	}
}

// clone returns an independent copy so a machine is unaffected by later registrations.
func (h *Hooks) clone() *Hooks {
	out := NewHooks()
	if h != nil {
		maps.Copy(out.byName, h.byName)
	}
	return out
}
