package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/switchyard/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const example = `
name: example
initial: a
states:
  - {name: a, value: this is a}
  - {name: b, value: this is b}
  - {name: pre_c}
  - {name: c, value: this is c}
transitions:
  - {from: a, to: b}
  - {from: b, resolver: do_the_thing}
  - {from: pre_c, to: c}
  - {from: c, resolver: decide_if_done}
resolvers:
  - id: do_the_thing
    params: [decider]
    branches:
      - {when: decider, to: a, note: if decider is True}
      - {to: pre_c}
  - id: decide_if_done
    params: [done]
    branches:
      - {when: done, end: true, note: Im done talking to you now.}
      - {to: a, note: no keep going!}
`

const islands = `
name: islands
states:
  - {name: a, value: 1}
  - {name: b, value: 2}
  - {name: z, value: 3}
transitions:
  - {from: a, to: b}
`

func writeExample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, os.WriteFile(path, []byte(example), 0644))
	return path
}

func TestExecute_Headless(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		Source:   Source{File: writeExample(t)},
		Headless: true,
	}, strings.NewReader("\n\ndone=true\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "b\nc\nfinished\n", out.String())
}

func TestExecute_HeadlessError(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		Source:        Source{File: writeExample(t)},
		Headless:      true,
		MaxChainDepth: 1,
	}, strings.NewReader("\n\n"), &out)
	assert.Error(t, err)
}

func TestExecute_WatchAndHeadless(t *testing.T) {
	err := Execute(context.Background(), RunOptions{Watch: true, Headless: true}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)

	err = Execute(context.Background(), RunOptions{Watch: true, JSON: true}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err, "json implies headless")
}

func TestExecute_JSON(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		Source: Source{File: writeExample(t)},
		JSON:   true,
	}, strings.NewReader("\n"), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"state":"a"`)
	assert.Contains(t, lines[1], `"state":"b"`)
}

func TestOpenCatalog_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example.yaml"), []byte(example), 0644))

	catalog, err := OpenCatalog(Source{Dir: dir})
	require.NoError(t, err)
	name, err := ResolveName(context.Background(), catalog, "")
	require.NoError(t, err)
	assert.Equal(t, "example", name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "islands.yaml"), []byte(islands), 0644))
	_, err = ResolveName(context.Background(), catalog, "")
	assert.ErrorContains(t, err, "2 machines")
}

func TestDescribe(t *testing.T) {
	catalog, err := memory.NewCatalogFromYAML(map[string]string{"example": example})
	require.NoError(t, err)

	md, err := Describe(context.Background(), catalog, nil, "example")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# example\n"))
	assert.Contains(t, md, "| a | `this is a` | state, initial |")
	assert.Contains(t, md, "| pre_c | - | virtual |")
	assert.Contains(t, md, "| b | resolver `do_the_thing` |")
	assert.Contains(t, md, "- when `decider` → a (if decider is True)")
	assert.Contains(t, md, "- otherwise → pre_c")
	assert.Contains(t, md, "- when `done` → End (Im done talking to you now.)")
	assert.Contains(t, md, "- Can finish: yes")
	assert.Contains(t, md, "- Unreachable: none")
}

func TestValidate(t *testing.T) {
	catalog, err := memory.NewCatalogFromYAML(map[string]string{"example": example, "islands": islands})
	require.NoError(t, err)

	results, err := Validate(context.Background(), catalog, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "example", results[0].Machine)
	assert.True(t, results[0].OK())

	assert.Equal(t, "islands", results[1].Machine)
	assert.False(t, results[1].OK())
	assert.Equal(t, []string{"z"}, results[1].Report.Unreachable)
	assert.Equal(t, []string{"b"}, results[1].Report.DeadEnds)
	assert.False(t, results[1].Report.CanFinish)

	results, err = Validate(context.Background(), catalog, nil, "missing")
	require.NoError(t, err)
	assert.Error(t, results[0].Err)
}

func TestRenderGraph(t *testing.T) {
	catalog, err := memory.NewCatalogFromYAML(map[string]string{"example": example})
	require.NoError(t, err)

	out, err := RenderGraph(context.Background(), catalog, nil, "example", GraphOptions{Format: "dot", NoStart: true})
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.NotContains(t, out, `"start"`)

	_, err = RenderGraph(context.Background(), catalog, nil, "example", GraphOptions{Format: "svg"})
	assert.Error(t, err)
}

func TestForward(t *testing.T) {
	lines := make(chan string, 2)
	lines <- "one"
	lines <- "two"

	ctx, cancel := context.WithCancel(context.Background())
	r := forward(ctx, lines)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(buf[:n]))

	cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, err := r.Read(buf); err != nil {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader did not see EOF after cancel")
	}
}
