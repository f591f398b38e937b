package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Advance resolves the transition out of the current state, commits the result
// and keeps going while the machine sits on a virtual state.
// It returns the state the machine stopped on, or the zero State if it finished.
func (e *Engine) Advance(ctx context.Context, args domain.Args) (domain.State, error) {
	if err := e.checkLive(); err != nil {
		return domain.State{}, err
	}

	steps := 0
	for hop := 0; ; hop++ {
		from := e.current

		bnd, ok := e.table.Lookup(from)
		if !ok {
			return from, &domain.TransitionError{
				Op:    "lookup",
				State: from.Name(),
				Err:   fmt.Errorf("%w: no transition declared", domain.ErrInvalidState),
			}
		}

		target, err := e.resolve(ctx, from, bnd.Resolver, args, &steps)
		if err != nil {
			e.logger.Warn("transition failed", "from", from.Name(), "err", err)
			return from, err
		}

		if err := e.commit(ctx, transition{from: from, target: target, args: args, depth: hop}); err != nil {
			return e.current, err
		}
		if e.finished || !e.current.Virtual() {
			return e.current, nil
		}

		steps++
		if steps > e.maxDepth {
			return e.current, e.exhausted(e.current)
		}
	}
}

// resolve invokes r and follows chain targets until it settles on a state or End.
func (e *Engine) resolve(ctx context.Context, from domain.State, r *domain.Resolver, args domain.Args, steps *int) (domain.Target, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Target{}, err
		}
		*steps++
		if *steps > e.maxDepth {
			return domain.Target{}, e.exhausted(from)
		}

		target, err := e.invoke(ctx, from, r, args)
		if err != nil {
			return domain.Target{}, err
		}

		switch target.Kind() {
		case domain.TargetChain:
			next, ok := e.table.Resolver(target.Chain())
			if !ok {
				return domain.Target{}, &domain.TransitionError{
					Op:       "resolve",
					State:    from.Name(),
					Resolver: r.ID,
					Err:      fmt.Errorf("%w: unknown resolver %q", domain.ErrContractViolation, target.Chain()),
				}
			}
			r = next
		case domain.TargetEnd:
			return target, nil
		case domain.TargetState:
			s, ok := e.reg.Canonical(target.State())
			if !ok {
				return domain.Target{}, &domain.TransitionError{
					Op:       "resolve",
					State:    from.Name(),
					Resolver: r.ID,
					Err:      fmt.Errorf("%w: %#v is not a registered state", domain.ErrContractViolation, target.State()),
				}
			}
			return domain.To(s).Annotate(target.Annotation()), nil
		default:
			return domain.Target{}, &domain.TransitionError{
				Op:       "resolve",
				State:    from.Name(),
				Resolver: r.ID,
				Err:      fmt.Errorf("%w: resolver returned no target", domain.ErrContractViolation),
			}
		}
	}
}

func (e *Engine) invoke(ctx context.Context, from domain.State, r *domain.Resolver, args domain.Args) (domain.Target, error) {
	bound, err := r.Bind(args)
	if err != nil {
		return domain.Target{}, &domain.TransitionError{Op: "resolve", State: from.Name(), Resolver: r.ID, Err: err}
	}

	began := time.Now()
	target, err := r.Fn(ctx, domain.Call{From: from, Args: bound})

	if e.lifecycle.OnResolve != nil {
		e.lifecycle.OnResolve(ctx, &domain.ResolveEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventResolve},
			From:      from,
			Resolver:  r.ID,
			Result:    target,
			Duration:  time.Since(began),
			Err:       err,
		})
	}

	if err != nil {
		return domain.Target{}, &domain.TransitionError{Op: "resolve", State: from.Name(), Resolver: r.ID, Err: err}
	}
	return target, nil
}
