package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by machine lifecycle events.
type Metrics struct {
	transitions *prometheus.CounterVec
	resolves    *prometheus.HistogramVec
	failures    *prometheus.CounterVec
	finished    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_transitions_total",
				Help: "Total number of committed state transitions",
			},
			[]string{"machine", "from", "to"},
		),
		resolves: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchyard_resolver_duration_seconds",
				Help:    "Duration of resolver invocations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"machine", "resolver"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_resolver_errors_total",
				Help: "Total number of resolver invocations that returned an error",
			},
			[]string{"machine", "resolver"},
		),
		finished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_machines_finished_total",
				Help: "Total number of machines that reached End",
			},
			[]string{"machine"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.transitions, m.resolves, m.failures, m.finished} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording events under the machine label.
func (m *Metrics) Hooks(machine string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			id := resolverLabel(e.Resolver)
			m.resolves.WithLabelValues(machine, id).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.failures.WithLabelValues(machine, id).Inc()
			}
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(machine, stateLabel(e.From), stateLabel(e.To)).Inc()
		},
		OnFinish: func(_ context.Context, _ *domain.FinishEvent) {
			m.finished.WithLabelValues(machine).Inc()
		},
	}
}

func stateLabel(s domain.State) string {
	if s.IsZero() {
		return "none"
	}
	return s.Name()
}

func resolverLabel(id domain.ResolverID) string {
	if id == "" {
		return "constant"
	}
	return string(id)
}
