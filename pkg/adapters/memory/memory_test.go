package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/switchyard/pkg/adapters/memory"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toggle = `
states:
  - {name: off, value: 0}
  - {name: on, value: 1}
transitions:
  - {from: off, to: on}
  - {from: on, to: off}
`

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewStore())
}

func TestMemoryCatalog_Contract(t *testing.T) {
	catalog, err := memory.NewCatalogFromYAML(map[string]string{
		"toggle": toggle,
		"other":  "name: other\n" + toggle,
	})
	require.NoError(t, err)
	ports.RunCatalogContract(t, catalog, "other", "toggle")
}

func TestMemoryCatalog_Collision(t *testing.T) {
	_, err := memory.NewCatalog(&definition.Document{Name: "a"}, &definition.Document{Name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")

	_, err = memory.NewCatalog(&definition.Document{})
	assert.Error(t, err)
}

func TestMemoryCatalog_Compiles(t *testing.T) {
	catalog, err := memory.NewCatalogFromYAML(map[string]string{"toggle": toggle})
	require.NoError(t, err)

	doc, err := catalog.Load(context.Background(), "toggle")
	require.NoError(t, err)
	def, err := definition.Compile(doc)
	require.NoError(t, err)
	assert.Equal(t, "off", def.Initial.Name())
}
