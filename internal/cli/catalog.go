package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/adapters/loam"
	"github.com/aretw0/switchyard/pkg/adapters/memory"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/observability"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/aretw0/switchyard/pkg/registry"
)

// Source selects where machines come from: a single document file, or a
// directory catalog.
type Source struct {
	Dir  string
	File string
}

// OpenCatalog opens the catalog described by src. A file takes precedence.
func OpenCatalog(src Source) (ports.Catalog, error) {
	if src.File != "" {
		doc, err := definition.ParseFile(src.File)
		if err != nil {
			return nil, err
		}
		if doc.Name == "" {
			doc.Name = "main"
		}
		return memory.NewCatalog(doc)
	}
	dir := src.Dir
	if dir == "" {
		dir = "."
	}
	c, err := loam.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", dir, err)
	}
	return c, nil
}

// ResolveName returns name, or the only machine of catalog when name is empty.
func ResolveName(ctx context.Context, catalog ports.Catalog, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	names, err := catalog.List(ctx)
	if err != nil {
		return "", err
	}
	switch len(names) {
	case 0:
		return "", errors.New("catalog is empty")
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("catalog has %d machines, pick one of %v", len(names), names)
	}
}

// MachineOptions configures NewMachine.
type MachineOptions struct {
	Logger        *slog.Logger
	Debug         bool
	MaxChainDepth int
	Hooks         domain.LifecycleHooks
}

// NewMachine compiles the named machine with code and starts it.
func NewMachine(ctx context.Context, catalog ports.Catalog, code *registry.Registry, name string, opts MachineOptions) (*switchyard.Machine, error) {
	if code == nil {
		code = registry.NewRegistry()
	}
	def, _, err := code.Definition(ctx, catalog, name)
	if err != nil {
		return nil, err
	}

	hooks := opts.Hooks
	logger := opts.Logger
	if logger == nil {
		logger = CreateLogger(opts.Debug)
	}
	if opts.Debug {
		hooks = hooks.Combine(observability.Log(logger))
	}
	return switchyard.New(ctx, def,
		switchyard.WithLogger(logger),
		switchyard.WithLifecycleHooks(hooks),
		switchyard.WithMaxChainDepth(opts.MaxChainDepth),
		switchyard.WithStartImmediately(false),
	)
}
