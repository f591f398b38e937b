package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/switchyard"
)

// nopStore accepts everything and finds every session.
type nopStore struct{}

func (nopStore) Save(context.Context, string, *switchyard.Machine) error {
	return nil
}

func (nopStore) Load(context.Context, string) (*switchyard.Machine, error) {
	return nil, nil
}

func (nopStore) Delete(context.Context, string) error {
	return nil
}

func (nopStore) List(context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Use(ctx, sid, func(context.Context, *switchyard.Machine) error { return nil })
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
