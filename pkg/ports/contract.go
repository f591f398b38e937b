package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractMachine builds a two-state toggle.
func contractMachine(t *testing.T) *switchyard.Machine {
	t.Helper()
	reg := domain.MustRegistry([]domain.Declaration{
		domain.Declare("off", false),
		domain.Declare("on", true),
	})
	off, on := reg.MustByName("off"), reg.MustByName("on")
	table, err := domain.NewTable(reg).Bind(off, on).Bind(on, off).Build()
	require.NoError(t, err)

	m, err := switchyard.New(context.Background(), domain.Definition{Name: "toggle", Table: table, Initial: off})
	require.NoError(t, err)
	return m
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		m := contractMachine(t)
		_, err := m.Next(ctx)
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, sessionID, m), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "on", loaded.Current().Name())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, contractMachine(t)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, sessionID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, contractMachine(t)))
		require.NoError(t, store.Save(ctx, id2, contractMachine(t)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunCatalogContract verifies a Catalog seeded with the given machine names.
func RunCatalogContract(t *testing.T, catalog Catalog, names ...string) {
	t.Helper()
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		got, err := catalog.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, names, got)
		assert.IsNonDecreasing(t, got, "names are sorted")
	})

	t.Run("Load", func(t *testing.T) {
		for _, name := range names {
			doc, err := catalog.Load(ctx, name)
			require.NoError(t, err, name)
			assert.Equal(t, name, doc.Name)
			assert.NotEmpty(t, doc.States, name)
		}
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := catalog.Load(ctx, "non-existent-machine")
		assert.ErrorIs(t, err, ErrMachineNotFound)
	})
}
