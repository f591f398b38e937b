package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	model "github.com/aretw0/switchyard/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatMermaid, FormatDOT, FormatJSON, FormatYAML}

// ParseFormat validates a user supplied format name. Empty means Mermaid.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatMermaid, nil
	}
	f := Format(strings.ToLower(s))
	switch f {
	case FormatMermaid, FormatDOT, FormatJSON, FormatYAML:
		return f, nil
	case "graphviz", "gv":
		return FormatDOT, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown graph format %q (want one of %v)", s, Formats)
}

// Render serializes g in the given format.
func Render(g *model.Graph, format Format) (string, error) {
	switch format {
	case FormatMermaid:
		m := NewMermaid()
		g.Emit(m)
		return m.String(), nil
	case FormatDOT:
		d := NewDOT(g.Name, DefaultDOTStyle())
		g.Emit(d)
		return d.String(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode graph: %w", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := yaml.Marshal(g)
		if err != nil {
			return "", fmt.Errorf("failed to encode graph: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown graph format %q", format)
	}
}
