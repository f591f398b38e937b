package observability

import (
	"context"
	"sync"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Step is one recorded event of a Recorder trace.
type Step struct {
	Type       domain.EventType `json:"type" yaml:"type"`
	From       string           `json:"from,omitempty" yaml:"from,omitempty"`
	To         string           `json:"to,omitempty" yaml:"to,omitempty"`
	Resolver   string           `json:"resolver,omitempty" yaml:"resolver,omitempty"`
	Annotation string           `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Recorder keeps every lifecycle event in memory. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hooks returns the lifecycle hooks feeding r.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			s := Step{Type: e.Type, From: name(e.From), Resolver: string(e.Resolver)}
			if e.Err != nil {
				s.Error = e.Err.Error()
			} else {
				s.To = e.Result.String()
			}
			r.add(s)
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			r.add(Step{Type: e.Type, From: name(e.From), To: name(e.To), Annotation: e.Annotation})
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			r.add(Step{Type: e.Type, From: name(e.From)})
		},
	}
}

// Steps returns a copy of the recorded trace.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Reset drops the recorded trace.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

func (r *Recorder) add(s Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
}

func name(s domain.State) string {
	if s.IsZero() {
		return ""
	}
	return s.Name()
}
