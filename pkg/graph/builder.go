package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Node IDs of the fixed nodes.
const (
	StartID = "start"
	EndID   = "end"
)

// StateID returns the node ID of a state.
func StateID(s domain.State) string { return "state/" + s.Name() }

// ResolverID returns the node ID of a resolver.
func ResolverID(id domain.ResolverID) string { return "resolver/" + string(id) }

type builder struct {
	cfg   config
	table *domain.Table
	sink  Sink

	emitted  map[string]bool
	visited  map[domain.ResolverID]bool
	copies   map[string]int
	endCount int
}

// Build writes the graph of t into sink, starting from initial.
// Constant transitions become state edges; resolvers are expanded through the
// configured Strategy, each at most once.
func Build(t *domain.Table, initial domain.State, sink Sink, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &builder{
		cfg:     cfg,
		table:   t,
		sink:    sink,
		emitted: map[string]bool{},
		visited: map[domain.ResolverID]bool{},
		copies:  map[string]int{},
	}

	if cfg.includeStart {
		start, ok := t.Registry().Canonical(initial)
		if !ok {
			return fmt.Errorf("%w: initial state %v is not registered", domain.ErrConfiguration, initial)
		}
		b.node(Node{ID: StartID, Label: "Start", Kind: KindStart})
		b.stateNode(start)
		sink.Edge(Edge{From: StartID, To: StateID(start)})
	}

	for _, bnd := range t.Bindings() {
		src := StateID(bnd.Source)
		b.stateNode(bnd.Source)
		if bnd.IsConstant() {
			sink.Edge(Edge{From: src, To: b.destination(bnd.Direct)})
			continue
		}
		b.resolverNode(bnd.Resolver.ID)
		sink.Edge(Edge{From: src, To: ResolverID(bnd.Resolver.ID)})
		if err := b.expand(bnd.Resolver); err != nil {
			return err
		}
	}

	if !cfg.highlight.IsZero() {
		if s, ok := t.Registry().Canonical(cfg.highlight); ok {
			sink.Highlight(StateID(s))
		}
	}
	return nil
}

// Extract is Build into a fresh Graph.
func Extract(t *domain.Table, initial domain.State, opts ...Option) (*Graph, error) {
	g := New("")
	if err := Build(t, initial, g, opts...); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *builder) expand(r *domain.Resolver) error {
	if b.visited[r.ID] {
		return nil
	}
	b.visited[r.ID] = true

	branches, err := b.cfg.strategy.Branches(b.table, r)
	if err != nil {
		return err
	}

	from := ResolverID(r.ID)
	for _, br := range branches {
		edge := Edge{From: from, Label: br.Target.Annotation(), Guard: br.Label}
		switch br.Target.Kind() {
		case domain.TargetEnd:
			edge.To = b.end()
		case domain.TargetState:
			s, ok := b.table.Registry().Canonical(br.Target.State())
			if !ok {
				return fmt.Errorf("%w: resolver %q returns unregistered state %v", domain.ErrConfiguration, r.ID, br.Target.State())
			}
			edge.To = b.destination(s)
		case domain.TargetChain:
			next, ok := b.table.Resolver(br.Target.Chain())
			if !ok {
				return fmt.Errorf("%w: resolver %q chains to unknown resolver %q", domain.ErrConfiguration, r.ID, br.Target.Chain())
			}
			b.resolverNode(next.ID)
			edge.To = ResolverID(next.ID)
			b.sink.Edge(edge)
			if err := b.expand(next); err != nil {
				return err
			}
			continue
		default:
			return fmt.Errorf("%w: resolver %q has an invalid branch", domain.ErrExtractionAmbiguity, r.ID)
		}
		b.sink.Edge(edge)
	}
	return nil
}

func (b *builder) node(n Node) {
	if b.emitted[n.ID] {
		return
	}
	b.emitted[n.ID] = true
	b.sink.Node(n)
}

func (b *builder) stateNode(s domain.State) {
	kind := KindState
	if s.Virtual() {
		kind = KindVirtual
	}
	b.node(Node{ID: StateID(s), Label: b.stateLabel(s), Kind: kind})
}

func (b *builder) resolverNode(id domain.ResolverID) {
	label := string(id)
	if !b.cfg.useNames {
		label = strings.ReplaceAll(label, "_", " ")
	}
	b.node(Node{ID: ResolverID(id), Label: label, Kind: KindResolver})
}

// destination returns the node an edge into s should point at.
func (b *builder) destination(s domain.State) string {
	if !s.Virtual() || !b.cfg.disconnectVirtual {
		b.stateNode(s)
		return StateID(s)
	}
	n := b.copies[s.Name()]
	b.copies[s.Name()]++
	id := StateID(s) + "/" + strconv.Itoa(n)
	b.node(Node{ID: id, Label: b.stateLabel(s), Kind: KindVirtual})
	return id
}

func (b *builder) end() string {
	if !b.cfg.splitEnds {
		b.node(Node{ID: EndID, Label: "End", Kind: KindEnd})
		return EndID
	}
	id := EndID + "/" + strconv.Itoa(b.endCount)
	b.endCount++
	b.node(Node{ID: id, Label: "End", Kind: KindEnd})
	return id
}

func (b *builder) stateLabel(s domain.State) string {
	if b.cfg.useNames || s.Virtual() || s.Value() == nil {
		return s.Name()
	}
	return fmt.Sprint(s.Value())
}
