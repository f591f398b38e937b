package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Assign moves the machine directly to v, firing hooks unless WithoutSideEffects is given.
//
// v may be a domain.State, a domain.Target (its annotation is ignored), nil (End),
// or a raw value resolved through the registry. Assigning a virtual state does not
// advance past it; the next Advance continues from there.
func (e *Engine) Assign(ctx context.Context, v any, opts ...AssignOption) (domain.State, error) {
	if err := e.checkLive(); err != nil {
		return e.current, err
	}
	cfg := assignConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	target, err := e.targetOf(v)
	if err != nil {
		return e.current, &domain.TransitionError{Op: "assign", State: e.current.Name(), Err: err}
	}

	err = e.commit(ctx, transition{
		from:   e.current,
		target: target,
		args:   cfg.args,
		silent: cfg.silent,
	})
	return e.current, err
}

func (e *Engine) targetOf(v any) (domain.Target, error) {
	switch x := v.(type) {
	case nil:
		return domain.End(), nil
	case domain.State:
		if x.IsZero() {
			return domain.End(), nil
		}
		s, ok := e.reg.Canonical(x)
		if !ok {
			return domain.Target{}, fmt.Errorf("%w: %#v is not registered", domain.ErrInvalidState, x)
		}
		return domain.To(s), nil
	case domain.Target:
		switch x.Kind() {
		case domain.TargetEnd:
			return domain.End(), nil
		case domain.TargetState:
			return e.targetOf(x.State())
		default:
			return domain.Target{}, fmt.Errorf("%w: cannot assign %s target", domain.ErrContractViolation, x.Kind())
		}
	default:
		s, err := e.reg.Lookup(v)
		if err != nil {
			return domain.Target{}, err
		}
		return domain.To(s), nil
	}
}
