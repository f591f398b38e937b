package cli

import (
	"context"
	"fmt"

	presentation "github.com/aretw0/switchyard/internal/presentation/graph"
	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/aretw0/switchyard/pkg/registry"
)

// GraphOptions configures RenderGraph.
type GraphOptions struct {
	Format            string
	Values            bool // label states with their values
	NoStart           bool
	MergeEnds         bool // one End node instead of one per finishing branch
	DisconnectVirtual bool
	// SourceDirs enables source extraction for resolvers without declared branches.
	SourceDirs []string
}

func (o GraphOptions) graphOptions() ([]graph.Option, error) {
	opts := []graph.Option{
		graph.UseNames(!o.Values),
		graph.IncludeStart(!o.NoStart),
		graph.SplitEnds(!o.MergeEnds),
		graph.DisconnectVirtual(o.DisconnectVirtual),
	}
	if len(o.SourceDirs) > 0 {
		src, err := graph.LoadSource(o.SourceDirs...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, graph.WithStrategy(graph.Fallback(graph.Declared{}, src)))
	}
	return opts, nil
}

// RenderGraph extracts and renders the static graph of a machine.
func RenderGraph(ctx context.Context, catalog ports.Catalog, code *registry.Registry, name string, opts GraphOptions) (string, error) {
	format, err := presentation.ParseFormat(opts.Format)
	if err != nil {
		return "", err
	}
	gopts, err := opts.graphOptions()
	if err != nil {
		return "", err
	}
	if code == nil {
		code = registry.NewRegistry()
	}
	def, _, err := code.Definition(ctx, catalog, name)
	if err != nil {
		return "", err
	}
	g, err := graph.Extract(def.Table, def.Initial, gopts...)
	if err != nil {
		return "", fmt.Errorf("machine %s: %w", name, err)
	}
	g.Name = def.Name
	return presentation.Render(g, format)
}

// Result is the validation outcome of one machine.
type Result struct {
	Machine string
	Report  graph.Report
	Err     error
}

// OK reports whether the machine compiled and has no reachability problems.
func (r Result) OK() bool { return r.Err == nil && r.Report.OK() }

// Validate compiles and analyzes every named machine, or the whole catalog
// when names is empty.
func Validate(ctx context.Context, catalog ports.Catalog, code *registry.Registry, names ...string) ([]Result, error) {
	if len(names) == 0 {
		all, err := catalog.List(ctx)
		if err != nil {
			return nil, err
		}
		names = all
	}
	if code == nil {
		code = registry.NewRegistry()
	}
	results := make([]Result, 0, len(names))
	for _, name := range names {
		res := Result{Machine: name}
		def, _, err := code.Definition(ctx, catalog, name)
		if err == nil {
			res.Report, err = graph.Analyze(def.Table, def.Initial)
		}
		res.Err = err
		results = append(results, res)
	}
	return results, nil
}
