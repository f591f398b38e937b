package graph_test

import (
	"testing"

	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSource(t *testing.T) *graph.Source {
	t.Helper()
	src, err := graph.LoadSource("testdata/resolvers.go")
	require.NoError(t, err)
	src.Aliases["stateC"] = "c"
	return src
}

func TestSource_Branches(t *testing.T) {
	table, _ := exampleTable(t)
	src := loadSource(t)

	r, ok := table.Resolver("do_the_thing")
	require.True(t, ok)
	branches, err := src.Branches(table, r)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, `call.Args.Bool("decider", true)`, branches[0].Label)
	assert.Equal(t, "if decider is True", branches[0].Target.Annotation())
	assert.Equal(t, "a", branches[0].Target.State().Name())
	assert.Equal(t, "pre_c", branches[1].Target.State().Name())

	r, _ = table.Resolver("decide_if_done")
	branches, err = src.Branches(table, r)
	require.NoError(t, err)
	require.Len(t, branches, 2, "error paths are not branches")
	assert.True(t, branches[0].Target.IsEnd())
	assert.Equal(t, "a", branches[1].Target.State().Name())
}

func TestSource_SwitchAndChain(t *testing.T) {
	table, _ := exampleTable(t)
	src := loadSource(t)

	r := &domain.Resolver{ID: "route", Symbol: "router", Fn: unused}
	branches, err := src.Branches(table, r)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, `case "again"`, branches[0].Label)
	assert.Equal(t, domain.ResolverID("do_the_thing"), branches[0].Target.Chain())
	assert.Equal(t, "default", branches[1].Label)
	assert.Equal(t, "c", branches[1].Target.State().Name())
}

func TestSource_Ambiguity(t *testing.T) {
	table, _ := exampleTable(t)
	src := loadSource(t)

	_, err := src.Branches(table, &domain.Resolver{ID: "opaque", Fn: unused})
	assert.ErrorIs(t, err, domain.ErrExtractionAmbiguity)
	assert.Contains(t, err.Error(), "resolvers.go")

	_, err = src.Branches(table, &domain.Resolver{ID: "missing", Fn: unused})
	assert.ErrorIs(t, err, domain.ErrExtractionAmbiguity)
}

func TestSource_NormalizedNameClash(t *testing.T) {
	table, _ := exampleTable(t)
	src := graph.NewSource()
	require.NoError(t, src.AddFile("clash.go", `package clash

func doThing() {}

func do_thing() {}
`))

	for i := 0; i < 5; i++ {
		_, err := src.Branches(table, &domain.Resolver{ID: "do-thing", Symbol: "DoThing", Fn: unused})
		require.ErrorIs(t, err, domain.ErrExtractionAmbiguity)
		assert.Contains(t, err.Error(), "matches doThing, do_thing")
	}
}

func TestCompare_DeclaredMatchesSource(t *testing.T) {
	table, _ := exampleTable(t)

	mismatches, err := graph.Compare(table, graph.Declared{}, loadSource(t))
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestCompare_ReportsDrift(t *testing.T) {
	reg := domain.MustRegistry([]domain.Declaration{
		domain.Declare("a", "this is a"),
		domain.Declare("pre_c", nil),
	})
	drifted := domain.NewResolver("do_the_thing", unused).Declares(
		domain.Branch{Target: domain.To(reg.MustByName("a"))},
		domain.Branch{Target: domain.To(reg.MustByName("pre_c"))},
	)
	table, err := domain.NewTable(reg).BindResolver(reg.MustByName("a"), drifted).Build()
	require.NoError(t, err)

	mismatches, err := graph.Compare(table, graph.Declared{}, loadSource(t))
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, domain.ResolverID("do_the_thing"), mismatches[0].Resolver)
	require.Len(t, mismatches[0].OnlyA, 1)
	assert.Equal(t, "", mismatches[0].OnlyA[0].Annotation())
	require.Len(t, mismatches[0].OnlyB, 1)
	assert.Equal(t, "if decider is True", mismatches[0].OnlyB[0].Annotation())
}

func TestBuild_SourceStrategy(t *testing.T) {
	table, initial := exampleTable(t)
	declared, err := graph.Extract(table, initial)
	require.NoError(t, err)
	fromSource, err := graph.Extract(table, initial, graph.WithStrategy(loadSource(t)))
	require.NoError(t, err)

	assert.Equal(t, nodeIDs(declared), nodeIDs(fromSource))
	require.Equal(t, len(declared.Edges), len(fromSource.Edges))
	for i := range declared.Edges {
		assert.Equal(t, declared.Edges[i].To, fromSource.Edges[i].To)
		assert.Equal(t, declared.Edges[i].Label, fromSource.Edges[i].Label)
	}
}
