package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/switchyard/internal/testutils"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trafficMD = `---
initial: red
states:
  - {name: red, value: 1}
  - {name: check}
  - {name: green, value: 2}
transitions:
  - {from: red, to: check}
  - {from: check, resolver: light}
  - {from: green, to: red}
resolvers:
  - id: light
    params: [go]
    branches:
      - {when: go, to: green}
      - {to: red}
---
Waits on red until cleared.`

const toggleYAML = `name: toggle
states:
  - {name: off, value: false}
  - {name: on, value: true}
transitions:
  - {from: off, to: on}
  - {from: on, to: off}
`

func newCatalog(t *testing.T, files map[string]string) *Catalog {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, files)
	return New(loam.NewTypedRepository[definition.Document](repo))
}

func TestCatalog_Contract(t *testing.T) {
	catalog := newCatalog(t, map[string]string{
		"traffic.md":  trafficMD,
		"toggle.yaml": toggleYAML,
	})
	ports.RunCatalogContract(t, catalog, "toggle", "traffic")
}

func TestCatalog_LoadCompiles(t *testing.T) {
	catalog := newCatalog(t, map[string]string{"traffic.md": trafficMD})

	doc, err := catalog.Load(context.Background(), "traffic")
	require.NoError(t, err)
	assert.Equal(t, "Waits on red until cleared.", doc.Description)
	assert.Equal(t, int64(1), doc.States[0].Value, "strict numbers are normalized")

	def, err := definition.Compile(doc)
	require.NoError(t, err)
	assert.Equal(t, "red", def.Initial.Name())
	assert.True(t, def.Registry().MustByName("check").Virtual())
}

func TestCatalog_DetectsCollisions(t *testing.T) {
	catalog := newCatalog(t, map[string]string{
		"foo.md":   "---\nstates: [{name: a, value: 1}]\n---\n",
		"foo.yaml": "states: [{name: a, value: 1}]\n",
	})

	_, err := catalog.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toggle.yaml"), []byte(toggleYAML), 0644))

	catalog, err := Open(dir)
	require.NoError(t, err)

	names, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"toggle"}, names)
}
