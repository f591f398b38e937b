package domain

import "context"

// ResolverID names a resolver inside a Table.
type ResolverID string

// Call is what a resolver receives: the state being left and its filtered arguments.
type Call struct {
	From State
	Args Args
}

// ResolveFunc computes the next Target.
type ResolveFunc func(ctx context.Context, call Call) (Target, error)

// Branch is one statically declared outcome of a resolver.
type Branch struct {
	// Label describes when the branch is taken (e.g. "decider"). Optional.
	Label  string
	Target Target
}

// Resolver is a delegate computing the next state of a transition.
type Resolver struct {
	ID ResolverID
	Signature
	Fn ResolveFunc
	// Branches lists every Target Fn can return, for graph extraction.
	Branches []Branch
	// Symbol is the Go function implementing Fn, for source-level extraction.
	// Defaults to ID.
	Symbol string
}

// NewResolver builds a resolver accepting params.
func NewResolver(id ResolverID, fn ResolveFunc, params ...string) *Resolver {
	return &Resolver{
		ID:        id,
		Signature: Signature{Params: params},
		Fn:        fn,
	}
}

// Declares appends statically declared branches and returns r.
func (r *Resolver) Declares(branches ...Branch) *Resolver {
	r.Branches = append(r.Branches, branches...)
	return r
}

// SymbolName returns the Go function name used by source extraction.
func (r *Resolver) SymbolName() string {
	if r.Symbol != "" {
		return r.Symbol
	}
	return string(r.ID)
}

// Constant returns an anonymous resolver that always targets s.
func Constant(s State) *Resolver {
	t := To(s)
	return &Resolver{
		Fn: func(context.Context, Call) (Target, error) {
			return t, nil
		},
		Branches: []Branch{{Target: t}},
	}
}
