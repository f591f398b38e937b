package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/stretchr/testify/require"
)

// hookLog records hooks and resolver decisions, one line each.
type hookLog struct {
	lines []string
}

func (l *hookLog) add(line string) { l.lines = append(l.lines, line) }

func (l *hookLog) String() string {
	if len(l.lines) == 0 {
		return ""
	}
	return strings.Join(l.lines, "\n") + "\n"
}

func (l *hookLog) record(line string) domain.HookFunc {
	return func(context.Context, domain.HookEvent) error {
		l.add(line)
		return nil
	}
}

// exampleMachine builds a, b, pre_c (virtual), c with
// a→b, b→do_the_thing, pre_c→c, c→decide_if_done.
func exampleMachine(t *testing.T, log *hookLog) domain.Definition {
	t.Helper()

	reg, err := domain.NewRegistry([]domain.Declaration{
		domain.Declare("a", "this is a"),
		domain.Declare("b", "this is b"),
		domain.Declare("pre_c", nil),
		domain.Declare("c", "this is c"),
	})
	require.NoError(t, err)
	a, b, preC, c := reg.MustByName("a"), reg.MustByName("b"), reg.MustByName("pre_c"), reg.MustByName("c")

	doTheThing := domain.NewResolver("do_the_thing", func(_ context.Context, call domain.Call) (domain.Target, error) {
		if call.Args.Bool("decider", true) {
			log.add("decide: a")
			return domain.To(a).Annotate("if decider is True"), nil
		}
		log.add("decide: c")
		return domain.To(preC), nil
	}, "decider")

	decideIfDone := domain.NewResolver("decide_if_done", func(_ context.Context, call domain.Call) (domain.Target, error) {
		log.add("decide if done")
		if call.Args.Bool("done", false) {
			log.add("done")
			return domain.End().Annotate("Im done talking to you now."), nil
		}
		log.add("not done")
		return domain.To(a).Annotate("no keep going!"), nil
	}, "done")

	table, err := domain.NewTable(reg).
		Bind(a, b).
		BindResolver(b, doTheThing).
		Bind(preC, c).
		BindResolver(c, decideIfDone).
		Build()
	require.NoError(t, err)

	hooks := domain.NewHooks().OnStart(log.record("starting")).OnEnd(log.record("finished"))
	for _, s := range reg.States() {
		hooks.Before(s.Name(), log.record("before "+s.Name()))
		hooks.After(s.Name(), log.record("after "+s.Name()))
	}

	return domain.Definition{Name: "example", Table: table, Initial: a, Hooks: hooks}
}
