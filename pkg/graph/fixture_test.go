package graph_test

import (
	"context"
	"testing"

	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/stretchr/testify/require"
)

func unused(context.Context, domain.Call) (domain.Target, error) {
	return domain.End(), nil
}

// exampleTable builds a, b, pre_c (virtual), c with a→b, b→do_the_thing,
// pre_c→c and c→decide_if_done, each resolver declaring its branches.
func exampleTable(t *testing.T) (*domain.Table, domain.State) {
	t.Helper()
	reg, err := domain.NewRegistry([]domain.Declaration{
		domain.Declare("a", "this is a"),
		domain.Declare("b", "this is b"),
		domain.Declare("pre_c", nil),
		domain.Declare("c", "this is c"),
	})
	require.NoError(t, err)
	a, b, preC, c := reg.MustByName("a"), reg.MustByName("b"), reg.MustByName("pre_c"), reg.MustByName("c")

	doTheThing := domain.NewResolver("do_the_thing", unused, "decider").Declares(
		domain.Branch{Label: "decider", Target: domain.To(a).Annotate("if decider is True")},
		domain.Branch{Target: domain.To(preC)},
	)
	decideIfDone := domain.NewResolver("decide_if_done", unused, "done").Declares(
		domain.Branch{Label: "done", Target: domain.End().Annotate("Im done talking to you now.")},
		domain.Branch{Target: domain.To(a).Annotate("no keep going!")},
	)

	table, err := domain.NewTable(reg).
		Bind(a, b).
		BindResolver(b, doTheThing).
		Bind(preC, c).
		BindResolver(c, decideIfDone).
		Build()
	require.NoError(t, err)
	return table, a
}
