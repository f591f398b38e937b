package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventResolve    EventType = "resolve"
	EventTransition EventType = "transition"
	EventFinish     EventType = "finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ResolveEvent reports one resolver invocation.
type ResolveEvent struct {
	EventBase
	From     State         `json:"-"`
	Resolver ResolverID    `json:"resolver"`
	Result   Target        `json:"-"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// TransitionEvent reports a committed state change.
type TransitionEvent struct {
	EventBase
	From       State  `json:"-"`
	To         State  `json:"-"`
	Annotation string `json:"annotation,omitempty"`
	// Depth counts the virtual hops taken so far within one Advance call.
	Depth  int  `json:"depth"`
	Silent bool `json:"silent,omitempty"`
}

// FinishEvent reports that the machine reached End.
type FinishEvent struct {
	EventBase
	From State `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// They run synchronously and never affect control flow.
type LifecycleHooks struct {
	OnResolve    func(context.Context, *ResolveEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnFinish     func(context.Context, *FinishEvent)
}

// Combine returns hooks calling h first, then other.
func (h LifecycleHooks) Combine(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnResolve: func(ctx context.Context, e *ResolveEvent) {
			if h.OnResolve != nil {
				h.OnResolve(ctx, e)
			}
			if other.OnResolve != nil {
				other.OnResolve(ctx, e)
			}
		},
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			if h.OnTransition != nil {
				h.OnTransition(ctx, e)
			}
			if other.OnTransition != nil {
				other.OnTransition(ctx, e)
			}
		},
		OnFinish: func(ctx context.Context, e *FinishEvent) {
			if h.OnFinish != nil {
				h.OnFinish(ctx, e)
			}
			if other.OnFinish != nil {
				other.OnFinish(ctx, e)
			}
		},
	}
}
