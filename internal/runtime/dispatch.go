package runtime

import (
	"context"
	"time"

	"github.com/aretw0/switchyard/pkg/domain"
)

type transition struct {
	from   domain.State
	target domain.Target
	args   domain.Args
	silent bool
	depth  int
}

type hookCall struct {
	kind     domain.HookKind
	from, to domain.State
	args     domain.Args
}

// commit stores the target and then fires its hooks: after_<from>, before_<to>, on_<to>.
// A failing hook skips the remaining ones; the new state stays committed.
func (e *Engine) commit(ctx context.Context, t transition) error {
	if t.target.IsEnd() {
		return e.finish(ctx, t)
	}

	to := t.target.State()
	e.current = to
	e.logger.Debug("transition",
		"from", t.from.String(),
		"to", to.Name(),
		"annotation", t.target.Annotation(),
		"depth", t.depth,
	)
	if e.lifecycle.OnTransition != nil {
		e.lifecycle.OnTransition(ctx, &domain.TransitionEvent{
			EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition},
			From:       t.from,
			To:         to,
			Annotation: t.target.Annotation(),
			Depth:      t.depth,
			Silent:     t.silent,
		})
	}

	if t.silent {
		return nil
	}
	calls := make([]hookCall, 0, 3)
	if !t.from.IsZero() {
		calls = append(calls, hookCall{kind: domain.HookAfter, from: t.from, to: to, args: t.args})
	}
	calls = append(calls,
		hookCall{kind: domain.HookBefore, from: t.from, to: to, args: t.args},
		hookCall{kind: domain.HookOn, from: t.from, to: to, args: t.args},
	)
	for _, c := range calls {
		if err := e.fire(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// finish marks the machine finished and fires on_end. Leaving a state for End
// does not fire its after_ hook.
func (e *Engine) finish(ctx context.Context, t transition) error {
	e.current = domain.State{}
	e.finished = true
	e.logger.Debug("machine finished", "from", t.from.String(), "annotation", t.target.Annotation())
	if e.lifecycle.OnFinish != nil {
		e.lifecycle.OnFinish(ctx, &domain.FinishEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFinish},
			From:      t.from,
		})
	}
	return e.fire(ctx, hookCall{kind: domain.HookEnd, from: t.from, args: t.args})
}

// fire runs the hook registered for c, if any, with arguments filtered to its signature.
func (e *Engine) fire(ctx context.Context, c hookCall) error {
	subject := c.to
	if c.kind == domain.HookAfter {
		subject = c.from
	}
	name := domain.HookName(c.kind, subject.Name())

	hook, ok := e.hooks.Lookup(name)
	if !ok {
		return nil
	}
	args, err := hook.Bind(c.args)
	if err == nil {
		err = hook.Fn(ctx, domain.HookEvent{
			Name: name,
			Kind: c.kind,
			From: c.from,
			To:   c.to,
			Args: args,
		})
	}
	if err != nil {
		e.logger.Warn("hook failed", "hook", name, "err", err)
		return &domain.TransitionError{Op: "hook", State: subject.Name(), Hook: name, Err: err}
	}
	return nil
}
