package graph

import (
	"fmt"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Report summarises the reachability of a machine.
type Report struct {
	// Unreachable lists states no path from the initial state reaches.
	Unreachable []string `json:"unreachable,omitempty" yaml:"unreachable,omitempty"`
	// DeadEnds lists reachable states without an outgoing transition.
	// Advancing from one of them fails at runtime.
	DeadEnds []string `json:"dead_ends,omitempty" yaml:"dead_ends,omitempty"`
	// CanFinish reports whether End is reachable.
	CanFinish bool `json:"can_finish" yaml:"can_finish"`
}

// OK reports whether the machine has no unreachable states or dead ends.
func (r Report) OK() bool {
	return len(r.Unreachable) == 0 && len(r.DeadEnds) == 0
}

// Analyze crawls the transition graph breadth-first from initial.
func Analyze(t *domain.Table, initial domain.State, opts ...Option) (Report, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	reg := t.Registry()

	start, ok := reg.Canonical(initial)
	if !ok {
		return Report{}, fmt.Errorf("%w: initial state %v is not registered", domain.ErrInvalidState, initial)
	}

	var report Report
	visited := map[string]bool{}
	queue := []domain.State{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current.Name()] {
			continue
		}
		visited[current.Name()] = true

		bnd, ok := t.Lookup(current)
		if !ok {
			report.DeadEnds = append(report.DeadEnds, current.Name())
			continue
		}
		if bnd.IsConstant() {
			queue = append(queue, bnd.Direct)
			continue
		}

		next, finishes, err := successors(t, cfg.strategy, bnd.Resolver)
		if err != nil {
			return Report{}, err
		}
		report.CanFinish = report.CanFinish || finishes
		queue = append(queue, next...)
	}

	for _, s := range reg.States() {
		if !visited[s.Name()] {
			report.Unreachable = append(report.Unreachable, s.Name())
		}
	}
	return report, nil
}

// successors follows chain branches of r and returns the states it can settle on.
func successors(t *domain.Table, strategy Strategy, r *domain.Resolver) ([]domain.State, bool, error) {
	var states []domain.State
	finishes := false

	pending := []*domain.Resolver{r}
	local := map[domain.ResolverID]bool{}
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		if local[cur.ID] {
			continue
		}
		local[cur.ID] = true

		branches, err := strategy.Branches(t, cur)
		if err != nil {
			return nil, false, err
		}
		for _, br := range branches {
			switch br.Target.Kind() {
			case domain.TargetEnd:
				finishes = true
			case domain.TargetState:
				if s, ok := t.Registry().Canonical(br.Target.State()); ok {
					states = append(states, s)
				}
			case domain.TargetChain:
				if next, ok := t.Resolver(br.Target.Chain()); ok {
					pending = append(pending, next)
				}
			}
		}
	}
	return states, finishes, nil
}
