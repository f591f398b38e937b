package definition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a machine.
type Document struct {
	Name         string          `json:"name" yaml:"name" mapstructure:"name"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Initial      string          `json:"initial,omitempty" yaml:"initial,omitempty" mapstructure:"initial"`
	VirtualValue any             `json:"virtual_value,omitempty" yaml:"virtual_value,omitempty" mapstructure:"virtual_value"`
	States       []StateDoc      `json:"states" yaml:"states" mapstructure:"states"`
	Transitions  []TransitionDoc `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	Resolvers    []ResolverDoc   `json:"resolvers,omitempty" yaml:"resolvers,omitempty" mapstructure:"resolvers"`
}

// StateDoc declares one state. A missing value makes the state virtual
// unless the document sets its own virtual_value.
type StateDoc struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Virtual bool   `json:"virtual,omitempty" yaml:"virtual,omitempty" mapstructure:"virtual"`
}

// TransitionDoc binds a source state to a destination state or a resolver.
type TransitionDoc struct {
	From     string `json:"from" yaml:"from" mapstructure:"from"`
	To       string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
	Resolver string `json:"resolver,omitempty" yaml:"resolver,omitempty" mapstructure:"resolver"`
}

// ResolverDoc describes a rule-based resolver.
type ResolverDoc struct {
	ID       string      `json:"id" yaml:"id" mapstructure:"id"`
	Params   []string    `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	Branches []BranchDoc `json:"branches" yaml:"branches" mapstructure:"branches"`
}

// BranchDoc is one rule. Exactly one of To, Chain and End must be set.
type BranchDoc struct {
	When  string `json:"when,omitempty" yaml:"when,omitempty" mapstructure:"when"`
	To    string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
	Chain string `json:"chain,omitempty" yaml:"chain,omitempty" mapstructure:"chain"`
	End   bool   `json:"end,omitempty" yaml:"end,omitempty" mapstructure:"end"`
	Note  string `json:"note,omitempty" yaml:"note,omitempty" mapstructure:"note"`
}

var frontMatterDelim = []byte("---")

// Parse reads a YAML document, or a Markdown file with YAML front matter
// whose body becomes the description.
func Parse(data []byte) (*Document, error) {
	meta, body := splitFrontMatter(data)

	var doc Document
	if err := yaml.Unmarshal(meta, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse machine document: %w", err)
	}
	if doc.Description == "" {
		doc.Description = strings.TrimSpace(string(body))
	}
	return &doc, nil
}

// ParseFile reads and parses path. The file name (without extension) is
// used when the document has no name.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Decode builds a Document from generic metadata, such as a front matter map.
func Decode(meta map[string]any) (*Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(meta); err != nil {
		return nil, fmt.Errorf("failed to decode machine document: %w", err)
	}
	return &doc, nil
}

// Marshal renders the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

func splitFrontMatter(data []byte) (meta, body []byte) {
	trimmed := bytes.TrimLeft(data, "\ufeff \t\r\n")
	if !bytes.HasPrefix(trimmed, frontMatterDelim) {
		return data, nil
	}
	rest := trimmed[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		// "---" followed by content on the same line is a plain YAML document.
		return data, nil
	}
	rest = rest[nl+1:]

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return rest, nil
	}
	meta = rest[:end]
	body = rest[end+len("\n---"):]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return meta, body
}
