package definition

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/switchyard/pkg/domain"
)

type compileConfig struct {
	resolvers map[domain.ResolverID]domain.ResolveFunc
	hooks     *domain.Hooks
}

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

// WithResolver implements the resolver id in Go. The document may still
// declare its branches, which then only serve graph extraction.
func WithResolver(id domain.ResolverID, fn domain.ResolveFunc) CompileOption {
	return func(c *compileConfig) {
		c.resolvers[id] = fn
	}
}

// WithHooks attaches side effects to the compiled definition.
func WithHooks(h *domain.Hooks) CompileOption {
	return func(c *compileConfig) {
		c.hooks = c.hooks.Merge(h)
	}
}

type rule struct {
	cond   Condition
	target domain.Target
}

// Compile turns doc into a validated definition. Every problem found is
// reported in a single *domain.AggregateError.
func Compile(doc *Document, opts ...CompileOption) (domain.Definition, error) {
	cfg := compileConfig{resolvers: map[domain.ResolverID]domain.ResolveFunc{}, hooks: domain.NewHooks()}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg, err := compileRegistry(doc)
	if err != nil {
		return domain.Definition{}, err
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrConfiguration}, args...)...))
	}

	resolvers := map[string]*domain.Resolver{}
	var order []string
	for _, rd := range doc.Resolvers {
		if rd.ID == "" {
			fail("resolver without id")
			continue
		}
		if _, dup := resolvers[rd.ID]; dup {
			fail("resolver %q declared twice", rd.ID)
			continue
		}
		r, rerrs := compileResolver(reg, rd, cfg.resolvers[domain.ResolverID(rd.ID)])
		errs = append(errs, rerrs...)
		resolvers[rd.ID] = r
		order = append(order, rd.ID)
	}
	code := slices.Sorted(maps.Keys(cfg.resolvers))
	for _, id := range code {
		if _, ok := resolvers[string(id)]; !ok {
			resolvers[string(id)] = domain.NewResolver(id, cfg.resolvers[id])
			order = append(order, string(id))
		}
	}

	tb := domain.NewTable(reg)
	bound := map[string]bool{}
	for i, td := range doc.Transitions {
		src, ok := reg.ByName(td.From)
		if !ok {
			fail("transition %d: unknown source state %q", i, td.From)
			continue
		}
		switch {
		case td.To != "" && td.Resolver != "":
			fail("transition from %q sets both to and resolver", td.From)
		case td.To != "":
			dst, ok := reg.ByName(td.To)
			if !ok {
				fail("transition from %q: unknown state %q", td.From, td.To)
				continue
			}
			tb.Bind(src, dst)
		case td.Resolver != "":
			r, ok := resolvers[td.Resolver]
			if !ok {
				fail("transition from %q: unknown resolver %q", td.From, td.Resolver)
				continue
			}
			bound[td.Resolver] = true
			tb.BindResolver(src, r)
		default:
			fail("transition from %q needs to or resolver", td.From)
		}
	}
	for _, id := range order {
		if !bound[id] {
			tb.Register(resolvers[id])
		}
	}

	initial := doc.Initial
	if initial == "" && len(doc.States) > 0 {
		initial = doc.States[0].Name
	}
	start, ok := reg.ByName(initial)
	if !ok {
		fail("unknown initial state %q", initial)
	}

	if len(errs) > 0 {
		return domain.Definition{}, &domain.AggregateError{Errors: errs}
	}

	table, err := tb.Build()
	if err != nil {
		return domain.Definition{}, err
	}
	def := domain.Definition{
		Name:    doc.Name,
		Table:   table,
		Initial: start,
		Hooks:   cfg.hooks,
	}
	return def, def.Validate()
}

func compileRegistry(doc *Document) (*domain.Registry, error) {
	sentinel := Normalize(doc.VirtualValue)
	decls := make([]domain.Declaration, 0, len(doc.States))
	for _, sd := range doc.States {
		if sd.Virtual {
			decls = append(decls, domain.DeclareVirtual(sd.Name))
			continue
		}
		decls = append(decls, domain.Declare(sd.Name, Normalize(sd.Value)))
	}
	return domain.NewRegistry(decls, domain.WithVirtualSentinel(sentinel))
}

func compileResolver(reg *domain.Registry, rd ResolverDoc, code domain.ResolveFunc) (*domain.Resolver, []error) {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: resolver %q: "+format, append([]any{domain.ErrConfiguration, rd.ID}, args...)...))
	}

	rules := make([]rule, 0, len(rd.Branches))
	branches := make([]domain.Branch, 0, len(rd.Branches))
	for i, bd := range rd.Branches {
		cond, err := ParseCondition(bd.When)
		if err != nil {
			fail("branch %d: %v", i, err)
			continue
		}
		if !cond.Always() && !slices.Contains(rd.Params, cond.Name) {
			fail("branch %d: condition uses undeclared param %q", i, cond.Name)
			continue
		}

		var target domain.Target
		set := 0
		if bd.To != "" {
			set++
			s, ok := reg.ByName(bd.To)
			if !ok {
				fail("branch %d: unknown state %q", i, bd.To)
				continue
			}
			target = domain.To(s)
		}
		if bd.Chain != "" {
			set++
			target = domain.ChainTo(domain.ResolverID(bd.Chain))
		}
		if bd.End {
			set++
			target = domain.End()
		}
		if set != 1 {
			fail("branch %d must set exactly one of to, chain, end", i)
			continue
		}
		if bd.Note != "" {
			target = target.Annotate(bd.Note)
		}

		rules = append(rules, rule{cond: cond, target: target})
		branches = append(branches, domain.Branch{Label: cond.String(), Target: target})
	}
	if len(rd.Branches) == 0 && code == nil {
		fail("no branches")
	}

	fn := code
	if fn == nil {
		fn = evaluate(domain.ResolverID(rd.ID), rules)
	}
	r := domain.NewResolver(domain.ResolverID(rd.ID), fn, rd.Params...).Declares(branches...)
	return r, errs
}

// evaluate returns the first rule whose condition holds.
func evaluate(id domain.ResolverID, rules []rule) domain.ResolveFunc {
	return func(_ context.Context, call domain.Call) (domain.Target, error) {
		for _, r := range rules {
			if r.cond.Eval(call.Args) {
				return r.target, nil
			}
		}
		return domain.Target{}, fmt.Errorf("%w: no branch of %q matched", domain.ErrContractViolation, id)
	}
}

