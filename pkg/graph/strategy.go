package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Strategy lists every outcome a resolver can produce, without calling it.
type Strategy interface {
	Branches(t *domain.Table, r *domain.Resolver) ([]domain.Branch, error)
}

// Declared reads the branches each resolver declares.
type Declared struct{}

// Branches implements Strategy.
func (Declared) Branches(_ *domain.Table, r *domain.Resolver) ([]domain.Branch, error) {
	if len(r.Branches) == 0 {
		return nil, fmt.Errorf("%w: resolver %q declares no branches", domain.ErrExtractionAmbiguity, r.ID)
	}
	return slices.Clone(r.Branches), nil
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(t *domain.Table, r *domain.Resolver) ([]domain.Branch, error)

// Branches implements Strategy.
func (f StrategyFunc) Branches(t *domain.Table, r *domain.Resolver) ([]domain.Branch, error) {
	return f(t, r)
}

// Fallback tries each strategy in order and returns the first success.
func Fallback(strategies ...Strategy) Strategy {
	return StrategyFunc(func(t *domain.Table, r *domain.Resolver) ([]domain.Branch, error) {
		var errs []error
		for _, s := range strategies {
			branches, err := s.Branches(t, r)
			if err == nil {
				return branches, nil
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			return nil, fmt.Errorf("%w: no strategy for resolver %q", domain.ErrExtractionAmbiguity, r.ID)
		}
		return nil, &domain.AggregateError{Errors: errs}
	})
}

// Mismatch lists the targets only one of two strategies found for a resolver.
type Mismatch struct {
	Resolver domain.ResolverID
	OnlyA    []domain.Target
	OnlyB    []domain.Target
}

// Compare runs both strategies over every resolver of t and reports those
// whose target sets differ. Labels are not compared.
func Compare(t *domain.Table, a, b Strategy) ([]Mismatch, error) {
	var out []Mismatch
	for _, r := range t.Resolvers() {
		ba, err := a.Branches(t, r)
		if err != nil {
			return nil, err
		}
		bb, err := b.Branches(t, r)
		if err != nil {
			return nil, err
		}
		onlyA := missing(ba, bb)
		onlyB := missing(bb, ba)
		if len(onlyA) > 0 || len(onlyB) > 0 {
			out = append(out, Mismatch{Resolver: r.ID, OnlyA: onlyA, OnlyB: onlyB})
		}
	}
	return out, nil
}

// missing returns the targets of from that are absent in other.
func missing(from, other []domain.Branch) []domain.Target {
	var out []domain.Target
	for _, br := range from {
		found := slices.ContainsFunc(other, func(o domain.Branch) bool {
			return o.Target.Equal(br.Target)
		})
		if !found {
			out = append(out, br.Target)
		}
	}
	return out
}
