package switchyard

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/switchyard/internal/runtime"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/graph"
)

// Machine is the high-level entry point of the library.
// It wraps the internal runtime and is not safe for concurrent use.
type Machine struct {
	engine             *runtime.Engine
	def                domain.Definition
	hooks              domain.LifecycleHooks
	logger             *slog.Logger
	maxDepth           int
	startImmediately   bool
	initialSideEffects bool
}

// Option defines a functional option for configuring a Machine.
type Option func(*Machine)

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithStartImmediately controls whether New calls Start (default true).
func WithStartImmediately(v bool) Option {
	return func(m *Machine) {
		m.startImmediately = v
	}
}

// WithInitialSideEffects controls whether the initial assignment fires the
// hooks of the initial state (default true). on_start always fires.
func WithInitialSideEffects(v bool) Option {
	return func(m *Machine) {
		m.initialSideEffects = v
	}
}

// WithMaxChainDepth bounds resolver invocations plus virtual hops per Advance.
func WithMaxChainDepth(n int) Option {
	return func(m *Machine) {
		m.maxDepth = n
	}
}

// New creates a machine from def and, unless WithStartImmediately(false) is
// given, starts it.
func New(ctx context.Context, def domain.Definition, opts ...Option) (*Machine, error) {
	m := &Machine{
		startImmediately:   true,
		initialSideEffects: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engine, err := runtime.NewEngine(def,
		runtime.WithLogger(m.logger),
		runtime.WithLifecycleHooks(m.hooks),
		runtime.WithMaxChainDepth(m.maxDepth),
	)
	if err != nil {
		return nil, err
	}
	m.engine = engine
	m.def = engine.Definition()

	if m.startImmediately {
		if err := m.Start(ctx); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load parses and compiles the machine document at path, then calls New.
func Load(ctx context.Context, path string, compile []definition.CompileOption, opts ...Option) (*Machine, error) {
	doc, err := definition.ParseFile(path)
	if err != nil {
		return nil, err
	}
	def, err := definition.Compile(doc, compile...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}
	return New(ctx, def, opts...)
}

// Start fires on_start and enters the initial state.
func (m *Machine) Start(ctx context.Context) error {
	return m.engine.Start(ctx, m.initialSideEffects)
}

// Advance resolves the next state from the current one, forwarding args to
// resolvers and hooks. It returns the zero State once the machine finished.
func (m *Machine) Advance(ctx context.Context, args domain.Args) (domain.State, error) {
	return m.engine.Advance(ctx, args)
}

// Next is Advance with arguments built by domain.ArgsOf: plain values are
// positional and domain.Named values are keywords.
func (m *Machine) Next(ctx context.Context, values ...any) (domain.State, error) {
	return m.engine.Advance(ctx, domain.ArgsOf(values...))
}

// AssignOption configures a single Assign call.
type AssignOption = runtime.AssignOption

// WithoutSideEffects skips the state hooks of an assignment.
func WithoutSideEffects() AssignOption { return runtime.WithoutSideEffects() }

// WithArgs forwards args to the hooks fired by an assignment.
func WithArgs(args domain.Args) AssignOption { return runtime.WithArgs(args) }

// Assign moves the machine directly to v: a domain.State, a domain.Target,
// nil for End, or a raw value declared in the registry.
func (m *Machine) Assign(ctx context.Context, v any, opts ...AssignOption) (domain.State, error) {
	return m.engine.Assign(ctx, v, opts...)
}

// Current returns the current state, or the zero State before Start and after End.
func (m *Machine) Current() domain.State { return m.engine.Current() }

// Started reports whether the machine has started.
func (m *Machine) Started() bool { return m.engine.Started() }

// Finished reports whether the machine reached End.
func (m *Machine) Finished() bool { return m.engine.Finished() }

// Definition returns the definition the machine runs.
func (m *Machine) Definition() domain.Definition { return m.def }

// Name returns the machine name.
func (m *Machine) Name() string { return m.def.String() }

// Graph extracts the static graph of the machine. The current state is
// highlighted unless an option overrides it.
func (m *Machine) Graph(opts ...graph.Option) (*graph.Graph, error) {
	opts = append([]graph.Option{graph.Highlight(m.Current())}, opts...)
	g, err := graph.Extract(m.def.Table, m.def.Initial, opts...)
	if err != nil {
		return nil, err
	}
	g.Name = m.def.Name
	return g, nil
}

// Analyze reports unreachable states and dead ends.
func (m *Machine) Analyze(opts ...graph.Option) (graph.Report, error) {
	return graph.Analyze(m.def.Table, m.def.Initial, opts...)
}
