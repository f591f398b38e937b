package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/ports"
)

// Catalog adapts a Loam repository to the ports.Catalog interface.
// Every Markdown, JSON or YAML document in the repository is one machine.
type Catalog struct {
	Repo *loam.TypedRepository[definition.Document]
}

// New creates a new Loam catalog.
func New(repo *loam.TypedRepository[definition.Document]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode makes every adapter return json.Number for numerics, which
	// definition.Normalize folds into int64/float64. The catalog never writes.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[definition.Document](repo)), nil
}

// entry is a listed document with its resolved machine name.
type entry struct {
	name string
	path string
	doc  definition.Document
	body string
}

func (c *Catalog) entries(ctx context.Context) (map[string]entry, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]entry, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := out[name]; ok {
			return nil, fmt.Errorf("collision detected: machine '%s' is defined in both '%s' and '%s'", name, existing.path, doc.ID)
		}
		out[name] = entry{name: name, path: doc.ID, doc: doc.Data, body: doc.Content}
	}
	return out, nil
}

// List returns the machine names found in the repository.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	entries, err := c.entries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the named machine document. The Markdown body, if any,
// becomes the description.
func (c *Catalog) Load(ctx context.Context, name string) (*definition.Document, error) {
	entries, err := c.entries(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrMachineNotFound, name)
	}

	doc := e.doc
	doc.Name = e.name
	if doc.Description == "" {
		doc.Description = strings.TrimSpace(e.body)
	}
	doc.VirtualValue = definition.Normalize(doc.VirtualValue)
	states := make([]definition.StateDoc, len(doc.States))
	for i, s := range doc.States {
		s.Value = definition.Normalize(s.Value)
		states[i] = s
	}
	doc.States = states
	return &doc, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable. The channel carries changed document IDs
// with their extension stripped.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
