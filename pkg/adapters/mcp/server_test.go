package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/switchyard/pkg/adapters/memory"
	adapter "github.com/aretw0/switchyard/pkg/adapters/mcp"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const turnstile = `
name: turnstile
states:
  - {name: locked, value: 0}
  - {name: unlocked, value: 1}
transitions:
  - {from: locked, resolver: coin}
  - {from: unlocked, to: locked}
resolvers:
  - id: coin
    params: [paid]
    branches:
      - {when: "paid == 2", to: unlocked, note: paid}
      - {when: "paid == 0", end: true, note: broken}
`

func connect(t *testing.T) *client.Client {
	t.Helper()
	catalog, err := memory.NewCatalogFromYAML(map[string]string{"turnstile": turnstile})
	require.NoError(t, err)

	c, err := client.NewInProcessClient(adapter.NewServer(catalog).MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "test", Version: "0"},
		},
	})
	require.NoError(t, err)
	return c
}

func call(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestServer_ListMachines(t *testing.T) {
	c := connect(t)
	res := call(t, c, "list_machines", nil)
	require.False(t, res.IsError, text(t, res))

	var list adapter.MachineList
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	assert.Equal(t, []string{"turnstile"}, list.Machines)
}

func TestServer_GetGraph(t *testing.T) {
	c := connect(t)

	res := call(t, c, "get_graph", map[string]any{"machine": "turnstile"})
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "graph TD")
	assert.Contains(t, text(t, res), `"paid == 2: paid"`)

	res = call(t, c, "get_graph", map[string]any{"machine": "turnstile", "format": "dot"})
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "digraph")

	res = call(t, c, "get_graph", map[string]any{"machine": "missing"})
	assert.True(t, res.IsError)
}

func TestServer_Simulate(t *testing.T) {
	c := connect(t)

	res := call(t, c, "simulate", map[string]any{
		"machine": "turnstile",
		"inputs":  []any{"paid=2", "", "paid=1"},
	})
	require.False(t, res.IsError, text(t, res))

	var out adapter.SimulateResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "turnstile", out.Machine)
	assert.Equal(t, "locked", out.State)
	assert.False(t, out.Finished)
	assert.Contains(t, out.Error, "no branch")

	var transitions []string
	for _, s := range out.Steps {
		if s.Type == domain.EventTransition {
			transitions = append(transitions, s.From+">"+s.To)
		}
	}
	assert.Equal(t, []string{">locked", "locked>unlocked", "unlocked>locked"}, transitions)

	res = call(t, c, "simulate", map[string]any{"machine": "turnstile", "inputs": []any{"0"}})
	require.False(t, res.IsError, text(t, res))
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.True(t, out.Finished)
	assert.Empty(t, out.State)
	assert.Empty(t, out.Error)
}

func TestServer_MachinesResource(t *testing.T) {
	c := connect(t)
	res, err := c.ReadResource(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: adapter.MachinesURI},
	})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	tc, ok := res.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.JSONEq(t, `{"machines":["turnstile"]}`, tc.Text)
}
