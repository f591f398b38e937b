package graph

import (
	"fmt"
	"strings"

	model "github.com/aretw0/switchyard/pkg/graph"
)

// Mermaid renders graph events as a Mermaid flowchart.
// It applies semantic styling:
// - Start: ((Circle))
// - End: (((Double circle)))
// - Resolver: {{Hexagon}}
// - State: (Rounded); virtual states are dashed and entered by dotted arrows
// Highlighted nodes get the "current" overlay class.
type Mermaid struct {
	body    strings.Builder
	ids     map[string]string // graph ID -> Mermaid ID
	taken   map[string]bool
	kinds   map[string]model.NodeKind
	virtual []string
	current []string
}

// NewMermaid creates an empty Mermaid sink.
func NewMermaid() *Mermaid {
	return &Mermaid{
		ids:   map[string]string{},
		taken: map[string]bool{},
		kinds: map[string]model.NodeKind{},
	}
}

// Node implements model.Sink.
func (m *Mermaid) Node(n model.Node) {
	safeID := m.id(n.ID)
	m.kinds[n.ID] = n.Kind

	opener, closer := "(", ")"
	switch n.Kind {
	case model.KindStart:
		opener, closer = "((", "))"
	case model.KindEnd:
		opener, closer = "(((", ")))"
	case model.KindResolver:
		opener, closer = "{{", "}}"
	case model.KindVirtual:
		m.virtual = append(m.virtual, safeID)
	}
	fmt.Fprintf(&m.body, "    %s%s\"%s\"%s\n", safeID, opener, escapeMermaid(n.Label), closer)
}

// Edge implements model.Sink.
func (m *Mermaid) Edge(e model.Edge) {
	from, to := m.id(e.From), m.id(e.To)
	dotted := m.kinds[e.To] == model.KindVirtual

	arrow := "-->"
	if dotted {
		arrow = "-.->"
	}
	if text := edgeText(e); text != "" {
		safeText := escapeMermaid(text)
		arrow = fmt.Sprintf("-- \"%s\" -->", safeText)
		if dotted {
			arrow = fmt.Sprintf("-. \"%s\" .->", safeText)
		}
	}
	fmt.Fprintf(&m.body, "    %s %s %s\n", from, arrow, to)
}

// Highlight implements model.Sink.
func (m *Mermaid) Highlight(id string) {
	m.current = append(m.current, m.id(id))
}

// String returns the flowchart source.
func (m *Mermaid) String() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(m.body.String())

	if len(m.virtual) == 0 && len(m.current) == 0 {
		return sb.String()
	}
	sb.WriteString("\n    %% Styles\n")
	if len(m.virtual) > 0 {
		sb.WriteString("    classDef virtual stroke-dasharray:5 5;\n")
		for _, id := range m.virtual {
			fmt.Fprintf(&sb, "    class %s virtual;\n", id)
		}
	}
	if len(m.current) > 0 {
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range m.current {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}
	return sb.String()
}

// id maps a graph ID to a Mermaid ID. IDs that sanitize to an ID already in
// use get a numeric suffix, so distinct graph IDs stay distinct.
func (m *Mermaid) id(raw string) string {
	if id, ok := m.ids[raw]; ok {
		return id
	}
	base := sanitizeMermaidID(raw)
	id := base
	for n := 2; m.taken[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	m.ids[raw] = id
	m.taken[id] = true
	return id
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	// "end" is a Mermaid keyword.
	if s == "end" {
		s = "end_"
	}
	return s
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// edgeText joins the branch guard and the annotation.
func edgeText(e model.Edge) string {
	switch {
	case e.Guard != "" && e.Label != "":
		return e.Guard + ": " + e.Label
	case e.Guard != "":
		return e.Guard
	default:
		return e.Label
	}
}
