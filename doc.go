/*
Package switchyard is a finite state machine engine whose transitions are
computed at runtime.

Each state binds to a resolver that receives the call arguments and returns
the next target: a state, End, or another resolver to chain into. Virtual
states are passed through without pausing, so a machine always rests on a
concrete state. Hooks named after the states (before_x, after_x, on_x) run as
side effects of every transition.

# Usage

Declare the states, bind the transitions and wrap them in a Definition:

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
	}, "go").Declares(
		domain.Branch{Label: "go", Target: domain.To(green)},
		domain.Branch{Target: domain.To(red)},
	)

	table, err := domain.NewTable(reg).
		BindResolver(red, light).
		Bind(green, red).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	m, err := switchyard.New(ctx, domain.Definition{Name: "traffic", Table: table, Initial: red})
	if err != nil {
		log.Fatal(err)
	}
	state, err := m.Next(ctx, true) // green

Machines can also be loaded from YAML documents (see package definition) with
Load, and rendered with Graph.
*/
package switchyard
