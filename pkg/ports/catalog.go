package ports

import (
	"context"
	"errors"

	"github.com/aretw0/switchyard/pkg/definition"
)

// ErrMachineNotFound is returned when a catalog has no document with the requested name.
var ErrMachineNotFound = errors.New("machine not found")

// Catalog defines where machine documents come from.
type Catalog interface {
	// List returns the names of all machines, sorted.
	List(ctx context.Context) ([]string, error)

	// Load returns the document of the named machine.
	// Returns an error wrapping ErrMachineNotFound if it does not exist.
	Load(ctx context.Context, name string) (*definition.Document, error)
}

// Watchable defines an interface for catalogs that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel receiving the name of every changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
