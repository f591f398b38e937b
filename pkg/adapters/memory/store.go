package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/ports"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use; the stored machines themselves are not.
type Store struct {
	data map[string]*switchyard.Machine
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*switchyard.Machine),
	}
}

// Save keeps the machine in memory.
func (s *Store) Save(_ context.Context, sessionID string, m *switchyard.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = m
	return nil
}

// Load retrieves the machine from memory.
func (s *Store) Load(_ context.Context, sessionID string) (*switchyard.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.data[sessionID]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return m, nil
}

// Delete removes the session.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
