package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toggle = `
name: toggle
states:
  - {name: off, value: 0}
  - {name: on, value: 1}
transitions:
  - {from: off, to: on}
  - {from: on, to: off}
`

func execute(t *testing.T, in string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(in))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func writeToggle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toggle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(toggle), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "", "version")
	assert.True(t, strings.HasPrefix(out, "switchyard version "))
}

func TestGraphCommand(t *testing.T) {
	out := execute(t, "", "graph", "--file", writeToggle(t), "--format", "json")

	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, "toggle", g.Name)
	assert.Len(t, g.Edges, 3)
}

func TestRunCommand_Headless(t *testing.T) {
	out := execute(t, "\n\n\nexit\n", "run", "--file", writeToggle(t), "--headless")
	assert.Equal(t, "on\noff\non\n", out)
}

func TestDescribeCommand(t *testing.T) {
	out := execute(t, "", "describe", "--file", writeToggle(t), "--raw")
	assert.Contains(t, out, "# toggle")
	assert.Contains(t, out, "| off | on |")
}
