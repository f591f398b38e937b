package cli

import (
	"context"
	"errors"
	"io"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/internal/presentation/tui"
	"github.com/aretw0/switchyard/pkg/registry"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Source
	Machine       string
	Headless      bool
	JSON          bool // JSON lines in and out; implies Headless
	Watch         bool
	Debug         bool
	Quiet         bool
	MaxChainDepth int
	Code          *registry.Registry
}

// Execute handles the run command, dispatching to a single run or watch mode.
func Execute(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.JSON {
		opts.Headless = true
	}
	if opts.Watch && opts.Headless {
		return errors.New("--watch and --headless cannot be used together")
	}
	logger := CreateLogger(opts.Debug)

	catalog, err := OpenCatalog(opts.Source)
	if err != nil {
		return err
	}
	name, err := ResolveName(ctx, catalog, opts.Machine)
	if err != nil {
		return err
	}
	if !opts.Headless && !opts.Quiet && tui.IsTerminal(out) {
		tui.PrintBanner(out, switchyard.Version)
	}

	machineOpts := MachineOptions{Logger: logger, Debug: opts.Debug, MaxChainDepth: opts.MaxChainDepth}
	if opts.Watch {
		return RunWatch(ctx, WatchOptions{
			Catalog:  catalog,
			Code:     opts.Code,
			Machine:  name,
			Options:  machineOpts,
			Quiet:    opts.Quiet,
			Renderer: tui.StateStyle(out),
		}, in, out)
	}

	m, err := NewMachine(ctx, catalog, opts.Code, name, machineOpts)
	if err != nil {
		return err
	}
	logger.Info("Running machine", "machine", name, "headless", opts.Headless)

	r := switchyard.NewRunner(in, out)
	r.Headless = opts.Headless
	r.JSON = opts.JSON
	if !opts.Headless {
		r.Renderer = tui.StateStyle(out)
	}
	return handleExecutionError(r.Run(ctx, m))
}
