package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/aretw0/switchyard/pkg/registry"
)

// Describe renders a Markdown summary of a machine: its states, transitions,
// resolvers and reachability.
func Describe(ctx context.Context, catalog ports.Catalog, code *registry.Registry, name string) (string, error) {
	if code == nil {
		code = registry.NewRegistry()
	}
	def, doc, err := code.Definition(ctx, catalog, name)
	if err != nil {
		return "", err
	}
	report, err := graph.Analyze(def.Table, def.Initial)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", def.String())
	if desc := strings.TrimSpace(doc.Description); desc != "" {
		b.WriteString(desc + "\n\n")
	}

	b.WriteString("## States\n\n| State | Value | Kind |\n|---|---|---|\n")
	for _, s := range def.Registry().States() {
		kind, value := "state", fmt.Sprintf("`%v`", s.Value())
		if s.Virtual() {
			kind, value = "virtual", "-"
		}
		if s.Equal(def.Initial) {
			kind += ", initial"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Name(), value, kind)
	}

	b.WriteString("\n## Transitions\n\n| From | To |\n|---|---|\n")
	for _, bnd := range def.Table.Bindings() {
		to := bnd.Direct.Name()
		if !bnd.IsConstant() {
			to = fmt.Sprintf("resolver `%s`", bnd.Resolver.ID)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", bnd.Source.Name(), to)
	}

	if resolvers := def.Table.Resolvers(); len(resolvers) > 0 {
		b.WriteString("\n## Resolvers\n")
		for _, r := range resolvers {
			fmt.Fprintf(&b, "\n### %s\n\n", r.ID)
			if len(r.Params) > 0 {
				fmt.Fprintf(&b, "Parameters: `%s`\n\n", strings.Join(r.Params, "`, `"))
			}
			if len(r.Branches) == 0 {
				b.WriteString("No declared branches.\n")
				continue
			}
			for _, br := range r.Branches {
				b.WriteString("- " + branchText(br) + "\n")
			}
		}
	}

	b.WriteString("\n## Analysis\n\n")
	fmt.Fprintf(&b, "- Initial: %s\n", def.Initial.Name())
	fmt.Fprintf(&b, "- Can finish: %s\n", yesNo(report.CanFinish))
	fmt.Fprintf(&b, "- Unreachable: %s\n", listOrNone(report.Unreachable))
	fmt.Fprintf(&b, "- Dead ends: %s\n", listOrNone(report.DeadEnds))
	return b.String(), nil
}

func branchText(br domain.Branch) string {
	var target string
	switch br.Target.Kind() {
	case domain.TargetEnd:
		target = "End"
	case domain.TargetChain:
		target = fmt.Sprintf("chain `%s`", br.Target.Chain())
	default:
		target = br.Target.State().Name()
	}
	text := "otherwise → " + target
	if br.Label != "" {
		text = fmt.Sprintf("when `%s` → %s", br.Label, target)
	}
	if note := br.Target.Annotation(); note != "" {
		text += fmt.Sprintf(" (%s)", note)
	}
	return text
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
