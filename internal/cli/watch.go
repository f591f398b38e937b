package cli

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/aretw0/switchyard/pkg/registry"
)

// WatchOptions configures RunWatch.
type WatchOptions struct {
	Catalog  ports.Catalog
	Code     *registry.Registry
	Machine  string
	Options  MachineOptions
	Quiet    bool
	Renderer func(domain.State) string
}

// RunWatch runs a machine in development mode: whenever its document
// changes, the running instance is dropped and a fresh one starts.
func RunWatch(ctx context.Context, opts WatchOptions, in io.Reader, out io.Writer) error {
	w, ok := opts.Catalog.(ports.Watchable)
	if !ok {
		return errors.New("catalog does not support watching")
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	logger := opts.Options.Logger
	if logger == nil {
		logger = CreateLogger(opts.Options.Debug)
	}
	lines := pumpLines(in)

	logger.Info("Starting watcher", "machine", opts.Machine)
	for {
		iterCtx, cancel := context.WithCancel(ctx)
		done := startIteration(iterCtx, opts, lines, out)

		reload := false
		for !reload {
			select {
			case <-ctx.Done():
				cancel()
				wait(done)
				return nil
			case changed, ok := <-events:
				if !ok {
					cancel()
					wait(done)
					return nil
				}
				if changed != opts.Machine {
					continue
				}
				logger.Info("Change detected, triggering reload", "machine", changed)
				if !opts.Quiet {
					printSystemMessage(out, "Change detected in '%s'.", changed)
				}
				reload = true
			case err := <-done:
				done = nil
				if err != nil && !isInterrupted(err) {
					logger.Error("Runtime error", "err", err)
				}
				if !opts.Quiet {
					printSystemMessage(out, "Waiting for changes...")
				}
			}
		}
		cancel()
		wait(done)
	}
}

// startIteration starts a fresh machine fed from lines. The returned channel
// yields the run result; it is nil when the machine could not be built.
func startIteration(ctx context.Context, opts WatchOptions, lines <-chan string, out io.Writer) <-chan error {
	m, err := NewMachine(ctx, opts.Catalog, opts.Code, opts.Machine, opts.Options)
	if err != nil {
		printSystemMessage(out, "Load failed: %v", err)
		return nil
	}
	input := forward(ctx, lines)
	r := switchyard.NewRunner(input, out)
	r.Renderer = opts.Renderer

	done := make(chan error, 1)
	go func() {
		defer input.Close()
		done <- r.Run(ctx, m)
	}()
	return done
}

func wait(done <-chan error) {
	if done != nil {
		<-done
	}
}

// pumpLines reads in once for the whole watch session, so reloads never
// leave a reader blocked on the previous iteration.
func pumpLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// forward copies lines into a pipe until ctx is done or lines closes.
// The reader sees EOF afterwards.
func forward(ctx context.Context, lines <-chan string) *io.PipeReader {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				if _, err := io.WriteString(pw, line+"\n"); err != nil {
					return
				}
			}
		}
	}()
	return pr
}
