package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/adapters/memory"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func door() *dsl.Builder {
	b := dsl.New("door").Describe("A door with a lock.")
	b.State("closed", 0)
	b.State("open", 1)
	b.Virtual("knocked")

	b.From("closed").To("knocked")
	b.From("knocked").Resolve("knock")
	b.From("open").To("closed")

	b.Resolver("knock", "key").
		When("key").To("open").Note("unlocked").
		Otherwise().End()
	return b
}

func TestBuilder_Document(t *testing.T) {
	doc, err := door().Build()
	require.NoError(t, err)

	assert.Equal(t, "door", doc.Name)
	assert.Equal(t, "A door with a lock.", doc.Description)
	assert.Equal(t, []definition.StateDoc{
		{Name: "closed", Value: int64(0)},
		{Name: "open", Value: int64(1)},
		{Name: "knocked", Virtual: true},
	}, doc.States)
	assert.Equal(t, []definition.TransitionDoc{
		{From: "closed", To: "knocked"},
		{From: "knocked", Resolver: "knock"},
		{From: "open", To: "closed"},
	}, doc.Transitions)
	assert.Equal(t, []definition.ResolverDoc{{
		ID:     "knock",
		Params: []string{"key"},
		Branches: []definition.BranchDoc{
			{When: "key", To: "open", Note: "unlocked"},
			{End: true},
		},
	}}, doc.Resolvers)
}

func TestBuilder_Run(t *testing.T) {
	def, err := door().Compile()
	require.NoError(t, err)

	ctx := context.Background()
	m, err := switchyard.New(ctx, def)
	require.NoError(t, err)

	s, err := m.Next(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "open", s.Name())

	_, err = m.Next(ctx)
	require.NoError(t, err)
	_, err = m.Next(ctx, false)
	require.NoError(t, err)
	assert.True(t, m.Finished())
}

func TestBuilder_CodeResolver(t *testing.T) {
	b := dsl.New("light")
	b.State("red", "R").State("green", "G").Initial("green")
	b.From("red").To("green")
	b.From("green").Resolve("timer")

	// Build checks the document without the Go code.
	_, err := b.Build()
	require.NoError(t, err)

	var red domain.State
	def, err := b.Compile(definition.WithResolver("timer", func(context.Context, domain.Call) (domain.Target, error) {
		return domain.To(red), nil
	}))
	require.NoError(t, err)
	red = def.Registry().MustByName("red")
	assert.Equal(t, "green", def.Initial.Name())

	m, err := switchyard.New(context.Background(), def)
	require.NoError(t, err)
	s, err := m.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "red", s.Name())
}

func TestBuilder_Invalid(t *testing.T) {
	b := dsl.New("broken")
	b.State("a", 1)
	b.From("a").To("nowhere")

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "broken")
}

func TestBuilder_MemoryCatalog(t *testing.T) {
	doc, err := door().Build()
	require.NoError(t, err)

	catalog, err := memory.NewCatalog(doc)
	require.NoError(t, err)
	loaded, err := catalog.Load(context.Background(), "door")
	require.NoError(t, err)
	assert.Equal(t, doc.Transitions, loaded.Transitions)

	data, err := doc.Marshal()
	require.NoError(t, err)
	parsed, err := definition.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Resolvers, parsed.Resolvers)
}
