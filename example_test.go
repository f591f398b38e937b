package switchyard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/domain"
)

// ExampleNew builds a traffic light whose red state waits for a "go" argument.
func ExampleNew() {
	reg := domain.MustRegistry([]domain.Declaration{
		domain.Declare("red", 1),
		domain.Declare("green", 2),
	})
	red, green := reg.MustByName("red"), reg.MustByName("green")

	light := domain.NewResolver("light", func(_ context.Context, call domain.Call) (domain.Target, error) {
		if call.Args.Bool("go", false) {
			return domain.To(green), nil
		}
		return domain.To(red), nil
	}, "go")

	table, err := domain.NewTable(reg).
		BindResolver(red, light).
		Bind(green, red).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	hooks := domain.NewHooks().Before("green", func(context.Context, domain.HookEvent) error {
		fmt.Println("lights on")
		return nil
	})

	ctx := context.Background()
	m, err := switchyard.New(ctx, domain.Definition{Name: "traffic", Table: table, Initial: red, Hooks: hooks})
	if err != nil {
		log.Fatal(err)
	}

	for _, goAhead := range []bool{false, true} {
		state, err := m.Next(ctx, goAhead)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(state.Name())
	}
	// Output:
	// red
	// lights on
	// green
}

// ExampleLoad runs a machine document.
func ExampleLoad() {
	ctx := context.Background()
	m, err := switchyard.Load(ctx, "testdata/example.yaml", nil)
	if err != nil {
		log.Fatal(err)
	}

	for _, step := range [][]any{nil, {false}, {domain.Named("done", true)}} {
		if _, err := m.Next(ctx, step...); err != nil {
			log.Fatal(err)
		}
		fmt.Println(m.Current(), m.Finished())
	}
	// Output:
	// b false
	// c false
	// <unset> true
}
