package graph

import (
	"fmt"
	"strings"

	model "github.com/aretw0/switchyard/pkg/graph"
)

// Attr is one Graphviz attribute.
type Attr struct {
	Key, Value string
}

// DOTStyle holds the attributes applied per node kind.
type DOTStyle struct {
	State, Virtual, Resolver, Start, End, Highlight []Attr
}

// DefaultDOTStyle returns the stock node attributes.
func DefaultDOTStyle() DOTStyle {
	return DOTStyle{
		State:     []Attr{{"shape", "box"}, {"style", "rounded"}},
		Virtual:   []Attr{{"shape", "box"}, {"style", "dotted"}},
		Resolver:  []Attr{{"shape", "oval"}, {"style", "filled"}, {"fillcolor", "grey80"}},
		Start:     []Attr{{"shape", "box"}, {"style", "filled"}, {"fillcolor", "green"}},
		End:       []Attr{{"shape", "triangle"}, {"style", "filled"}, {"fillcolor", "red"}},
		Highlight: []Attr{{"color", "blue"}, {"style", "bold"}},
	}
}

// DOT renders graph events as a Graphviz digraph.
type DOT struct {
	name  string
	style DOTStyle
	body  strings.Builder
}

// NewDOT creates a DOT sink. An empty name produces an anonymous digraph.
func NewDOT(name string, style DOTStyle) *DOT {
	return &DOT{name: name, style: style}
}

// Node implements model.Sink.
func (d *DOT) Node(n model.Node) {
	var attrs []Attr
	switch n.Kind {
	case model.KindStart:
		attrs = d.style.Start
	case model.KindEnd:
		attrs = d.style.End
	case model.KindResolver:
		attrs = d.style.Resolver
	case model.KindVirtual:
		attrs = d.style.Virtual
	default:
		attrs = d.style.State
	}
	all := append([]Attr{{"label", n.Label}}, attrs...)
	fmt.Fprintf(&d.body, "\t%s [%s];\n", dotQuote(n.ID), formatAttrs(all))
}

// Edge implements model.Sink.
func (d *DOT) Edge(e model.Edge) {
	fmt.Fprintf(&d.body, "\t%s -> %s", dotQuote(e.From), dotQuote(e.To))
	if text := edgeText(e); text != "" {
		fmt.Fprintf(&d.body, " [%s]", formatAttrs([]Attr{{"label", text}}))
	}
	d.body.WriteString(";\n")
}

// Highlight implements model.Sink.
func (d *DOT) Highlight(id string) {
	fmt.Fprintf(&d.body, "\t%s [%s];\n", dotQuote(id), formatAttrs(d.style.Highlight))
}

// String returns the digraph source.
func (d *DOT) String() string {
	var sb strings.Builder
	if d.name != "" {
		fmt.Fprintf(&sb, "digraph %s {\n", dotQuote(d.name))
	} else {
		sb.WriteString("digraph {\n")
	}
	sb.WriteString(d.body.String())
	sb.WriteString("}\n")
	return sb.String()
}

func formatAttrs(attrs []Attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		v := a.Value
		if a.Key == "label" {
			v = dotQuote(v)
		}
		parts[i] = a.Key + "=" + v
	}
	return strings.Join(parts, ", ")
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
