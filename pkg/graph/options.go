package graph

import "github.com/aretw0/switchyard/pkg/domain"

type config struct {
	strategy          Strategy
	includeStart      bool
	useNames          bool
	splitEnds         bool
	disconnectVirtual bool
	highlight         domain.State
}

func defaultConfig() config {
	return config{
		strategy:     Declared{},
		includeStart: true,
		useNames:     true,
		splitEnds:    true,
	}
}

// Option configures Build.
type Option func(*config)

// WithStrategy selects how resolver branches are discovered (default Declared).
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		if s != nil {
			c.strategy = s
		}
	}
}

// IncludeStart adds a Start node pointing at the initial state (default true).
func IncludeStart(v bool) Option {
	return func(c *config) { c.includeStart = v }
}

// UseNames labels states by name and resolvers by ID (default true). When
// false, states are labelled by value and resolver IDs are spaced out.
func UseNames(v bool) Option {
	return func(c *config) { c.useNames = v }
}

// SplitEnds gives every End edge its own end node (default true).
func SplitEnds(v bool) Option {
	return func(c *config) { c.splitEnds = v }
}

// DisconnectVirtual draws a separate node for every edge entering a virtual state.
func DisconnectVirtual(v bool) Option {
	return func(c *config) { c.disconnectVirtual = v }
}

// Highlight marks s in the output. The zero State disables highlighting.
func Highlight(s domain.State) Option {
	return func(c *config) { c.highlight = s }
}
