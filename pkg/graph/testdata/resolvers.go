package machine

import (
	"context"
	"errors"

	"github.com/aretw0/switchyard/pkg/domain"
)

func doTheThing(_ context.Context, call domain.Call) (domain.Target, error) {
	if call.Args.Bool("decider", true) {
		return domain.To(a).Annotate("if decider is True"), nil
	}
	return domain.To(preC), nil
}

func decideIfDone(_ context.Context, call domain.Call) (domain.Target, error) {
	if call.Args.Bool("done", false) {
		return domain.End().Annotate("Im done talking to you now."), nil
	}
	if call.From.IsZero() {
		return domain.Target{}, errors.New("no source state")
	}
	return domain.To(reg.MustByName("a")).Annotate("no keep going!"), nil
}

func router(_ context.Context, call domain.Call) (domain.Target, error) {
	switch call.Args.Text("route", "") {
	case "again":
		return domain.ChainTo("do_the_thing"), nil
	default:
		return domain.To(stateC), nil
	}
}

func opaque(_ context.Context, call domain.Call) (domain.Target, error) {
	t := domain.To(a)
	go func() (domain.Target, error) {
		return domain.Target{}, nil
	}()
	return t, nil
}
