// Package graph reconstructs the transition graph of a machine without
// running any of its resolvers, and writes it into a Sink.
package graph

// NodeKind is the role a node plays in the rendered graph.
type NodeKind string

const (
	KindState    NodeKind = "state"
	KindVirtual  NodeKind = "virtual"
	KindResolver NodeKind = "resolver"
	KindStart    NodeKind = "start"
	KindEnd      NodeKind = "end"
)

// Node is a vertex of the graph. IDs are unique within a graph and
// path-like ("state/a", "resolver/decide", "end/0").
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Label       string   `json:"label" yaml:"label"`
	Kind        NodeKind `json:"kind" yaml:"kind"`
	Highlighted bool     `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`
}

// Edge is a directed connection. Label carries the resolver annotation and
// Guard the branch condition, both optional.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Guard string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Sink receives graph events in emission order. Every node is emitted before
// the first edge that references it.
type Sink interface {
	Node(n Node)
	Edge(e Edge)
	Highlight(id string)
}

// Graph is an in-memory Sink that can be serialized or replayed.
type Graph struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`

	index map[string]int
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{Name: name, Nodes: []Node{}, Edges: []Edge{}, index: map[string]int{}}
}

// Node adds n, or replaces the node with the same ID.
func (g *Graph) Node(n Node) {
	if g.index == nil {
		g.reindex()
	}
	if i, ok := g.index[n.ID]; ok {
		n.Highlighted = n.Highlighted || g.Nodes[i].Highlighted
		g.Nodes[i] = n
		return
	}
	g.index[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

// Edge appends e.
func (g *Graph) Edge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// Highlight marks the node with id. Unknown IDs are ignored.
func (g *Graph) Highlight(id string) {
	if g.index == nil {
		g.reindex()
	}
	if i, ok := g.index[id]; ok {
		g.Nodes[i].Highlighted = true
	}
}

// Lookup returns the node with id.
func (g *Graph) Lookup(id string) (Node, bool) {
	if g.index == nil {
		g.reindex()
	}
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Out returns the edges leaving id, in emission order.
func (g *Graph) Out(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Emit replays the graph into s. Highlights follow the edges, as Build emits them.
func (g *Graph) Emit(s Sink) {
	var highlighted []string
	for _, n := range g.Nodes {
		if n.Highlighted {
			highlighted = append(highlighted, n.ID)
			n.Highlighted = false
		}
		s.Node(n)
	}
	for _, e := range g.Edges {
		s.Edge(e)
	}
	for _, id := range highlighted {
		s.Highlight(id)
	}
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.ID] = i
	}
}
