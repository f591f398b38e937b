package runtime

import (
	"log/slog"

	"github.com/aretw0/switchyard/pkg/domain"
)

// DefaultMaxChainDepth bounds resolver invocations plus virtual hops per call.
const DefaultMaxChainDepth = 10000

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.lifecycle = hooks
	}
}

// WithMaxChainDepth limits how many resolvers and virtual states a single
// Advance may go through before failing with domain.ErrRecursionExhausted.
// Values below 1 restore the default.
func WithMaxChainDepth(n int) EngineOption {
	return func(e *Engine) {
		if n < 1 {
			n = DefaultMaxChainDepth
		}
		e.maxDepth = n
	}
}

// AssignOption configures a single Assign call.
type AssignOption func(*assignConfig)

type assignConfig struct {
	silent bool
	args   domain.Args
}

// WithoutSideEffects skips the state hooks of the assignment. on_end still fires on End.
func WithoutSideEffects() AssignOption {
	return func(c *assignConfig) {
		c.silent = true
	}
}

// WithArgs forwards args to the hooks fired by the assignment.
func WithArgs(args domain.Args) AssignOption {
	return func(c *assignConfig) {
		c.args = args
	}
}
