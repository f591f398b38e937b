package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Log returns lifecycle hooks writing one structured record per event.
// Transitions and finishes are logged at Info, resolver calls at Debug and
// resolver failures at Warn.
func Log(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "resolve_failed",
					"from", e.From.String(),
					"resolver", resolverLabel(e.Resolver),
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "resolve",
				"from", e.From.String(),
				"resolver", resolverLabel(e.Resolver),
				"result", e.Result.String(),
				"duration", e.Duration,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			attrs := []any{"from", e.From.String(), "to", e.To.String(), "depth", e.Depth}
			if e.Annotation != "" {
				attrs = append(attrs, "annotation", e.Annotation)
			}
			if e.Silent {
				attrs = append(attrs, "silent", true)
			}
			logger.InfoContext(ctx, "transition", attrs...)
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			logger.InfoContext(ctx, "finish", "from", e.From.String())
		},
	}
}
