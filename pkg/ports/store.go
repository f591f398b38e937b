package ports

import (
	"context"
	"errors"

	"github.com/aretw0/switchyard"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps running machines by session ID.
// Machines are live objects: stores hand back the same instance, so callers
// must serialize access per session (see package session).
type SessionStore interface {
	// Save stores m under sessionID, replacing any previous machine.
	Save(ctx context.Context, sessionID string, m *switchyard.Machine) error

	// Load retrieves the machine for a given session ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*switchyard.Machine, error)

	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the active session IDs.
	List(ctx context.Context) ([]string, error)
}
