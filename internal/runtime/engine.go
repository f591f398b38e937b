package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Engine is the core state machine runner.
// It is not safe for concurrent use; callers sharing an Engine must serialize access.
type Engine struct {
	def       domain.Definition
	reg       *domain.Registry
	table     *domain.Table
	hooks     *domain.Hooks
	logger    *slog.Logger
	lifecycle domain.LifecycleHooks
	maxDepth  int

	current  domain.State
	started  bool
	finished bool
}

// NewEngine validates def and creates an engine that has not started yet.
func NewEngine(def domain.Definition, opts ...EngineOption) (*Engine, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def = def.Snapshot()

	e := &Engine{
		def:      def,
		reg:      def.Registry(),
		table:    def.Table,
		hooks:    def.Hooks,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxChainDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if def.Name != "" {
		e.logger = e.logger.With("machine", def.Name)
	}

	initial, _ := e.reg.Canonical(def.Initial)
	e.def.Initial = initial
	return e, nil
}

// Start fires on_start and assigns the initial state.
// With sideEffects false the initial assignment fires no state hooks.
func (e *Engine) Start(ctx context.Context, sideEffects bool) error {
	if e.started {
		return domain.ErrAlreadyStarted
	}
	e.logger.Debug("machine starting", "initial", e.def.Initial.Name())

	// A failed on_start leaves the engine unstarted so Start can be retried.
	if err := e.fire(ctx, hookCall{kind: domain.HookStart, to: e.def.Initial}); err != nil {
		return err
	}
	e.started = true
	return e.commit(ctx, transition{
		from:   domain.State{},
		target: domain.To(e.def.Initial),
		silent: !sideEffects,
	})
}

// Current returns the current state, or the zero State before Start and after End.
func (e *Engine) Current() domain.State { return e.current }

// Started reports whether Start ran.
func (e *Engine) Started() bool { return e.started }

// Finished reports whether the machine reached End.
func (e *Engine) Finished() bool { return e.finished }

// Definition returns the definition the engine was built from.
func (e *Engine) Definition() domain.Definition { return e.def }

// Table returns the transition table driving the engine.
func (e *Engine) Table() *domain.Table { return e.table }

func (e *Engine) checkLive() error {
	if e.finished {
		return domain.ErrFinished
	}
	if !e.started {
		return domain.ErrNotStarted
	}
	return nil
}

func (e *Engine) exhausted(from domain.State) error {
	return &domain.TransitionError{
		Op:    "advance",
		State: from.Name(),
		Err:   fmt.Errorf("%w after %d steps", domain.ErrRecursionExhausted, e.maxDepth),
	}
}
