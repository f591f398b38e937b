package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/ports"
)

// Catalog implements ports.Catalog using an in-memory map.
type Catalog struct {
	docs map[string]*definition.Document
}

// NewCatalog creates a catalog from documents, keyed by their names.
func NewCatalog(docs ...*definition.Document) (*Catalog, error) {
	c := &Catalog{docs: make(map[string]*definition.Document, len(docs))}
	for _, d := range docs {
		if d.Name == "" {
			return nil, fmt.Errorf("document missing name")
		}
		if _, dup := c.docs[d.Name]; dup {
			return nil, fmt.Errorf("collision detected: machine %q defined twice", d.Name)
		}
		c.docs[d.Name] = d
	}
	return c, nil
}

// NewCatalogFromYAML parses raw documents keyed by machine name.
// This improves DX for tests and embedded machines.
func NewCatalogFromYAML(data map[string]string) (*Catalog, error) {
	docs := make([]*definition.Document, 0, len(data))
	for name, raw := range data {
		doc, err := definition.Parse([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", name, err)
		}
		if doc.Name == "" {
			doc.Name = name
		}
		docs = append(docs, doc)
	}
	return NewCatalog(docs...)
}

// List returns all machine names.
func (c *Catalog) List(context.Context) ([]string, error) {
	names := make([]string, 0, len(c.docs))
	for name := range c.docs {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// Load returns the named document.
func (c *Catalog) Load(_ context.Context, name string) (*definition.Document, error) {
	doc, ok := c.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrMachineNotFound, name)
	}
	return doc, nil
}
