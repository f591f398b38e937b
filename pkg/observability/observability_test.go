package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken")

// door: closed -> open via the "push" resolver, open -> End.
func door(t *testing.T, hooks domain.LifecycleHooks) *switchyard.Machine {
	t.Helper()
	reg := domain.MustRegistry([]domain.Declaration{
		domain.Declare("closed", 0),
		domain.Declare("open", 1),
	})
	closed, open := reg.MustByName("closed"), reg.MustByName("open")

	push := domain.NewResolver("push", func(_ context.Context, call domain.Call) (domain.Target, error) {
		if call.Args.Bool("jam", false) {
			return domain.Target{}, errBroken
		}
		return domain.To(open).Annotate("pushed"), nil
	}, "jam")
	leave := domain.NewResolver("leave", func(context.Context, domain.Call) (domain.Target, error) {
		return domain.End(), nil
	})

	table, err := domain.NewTable(reg).BindResolver(closed, push).BindResolver(open, leave).Build()
	require.NoError(t, err)

	m, err := switchyard.New(context.Background(),
		domain.Definition{Name: "door", Table: table, Initial: closed},
		switchyard.WithLifecycleHooks(hooks),
	)
	require.NoError(t, err)
	return m
}

func drive(t *testing.T, m *switchyard.Machine) {
	t.Helper()
	ctx := context.Background()
	_, err := m.Next(ctx, true)
	require.ErrorIs(t, err, errBroken)
	_, err = m.Next(ctx)
	require.NoError(t, err)
	_, err = m.Next(ctx)
	require.NoError(t, err)
	require.True(t, m.Finished())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	drive(t, door(t, metrics.Hooks("door")))

	expected := `
# HELP switchyard_machines_finished_total Total number of machines that reached End
# TYPE switchyard_machines_finished_total counter
switchyard_machines_finished_total{machine="door"} 1
# HELP switchyard_resolver_errors_total Total number of resolver invocations that returned an error
# TYPE switchyard_resolver_errors_total counter
switchyard_resolver_errors_total{machine="door",resolver="push"} 1
# HELP switchyard_transitions_total Total number of committed state transitions
# TYPE switchyard_transitions_total counter
switchyard_transitions_total{from="closed",machine="door",to="open"} 1
switchyard_transitions_total{from="none",machine="door",to="closed"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"switchyard_machines_finished_total",
		"switchyard_resolver_errors_total",
		"switchyard_transitions_total",
	)
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "switchyard_resolver_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "push and leave")
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	_, err = observability.NewMetrics(nil)
	assert.NoError(t, err)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	drive(t, door(t, observability.Log(logger)))

	out := buf.String()
	assert.Contains(t, out, "msg=transition from=<unset> to=closed depth=0")
	assert.Contains(t, out, "msg=resolve_failed from=closed resolver=push err=broken")
	assert.Contains(t, out, "annotation=pushed")
	assert.Contains(t, out, "msg=finish from=open")
}

func TestRecorder(t *testing.T) {
	rec := observability.NewRecorder()
	drive(t, door(t, rec.Hooks()))

	assert.Equal(t, []observability.Step{
		{Type: domain.EventTransition, To: "closed"},
		{Type: domain.EventResolve, From: "closed", Resolver: "push", Error: "broken"},
		{Type: domain.EventResolve, From: "closed", Resolver: "push", To: "open (\"pushed\")"},
		{Type: domain.EventTransition, From: "closed", To: "open", Annotation: "pushed"},
		{Type: domain.EventResolve, From: "open", Resolver: "leave", To: "End"},
		{Type: domain.EventFinish, From: "open"},
	}, rec.Steps())

	rec.Reset()
	assert.Empty(t, rec.Steps())
}

func TestCombine(t *testing.T) {
	rec := observability.NewRecorder()
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	drive(t, door(t, rec.Hooks().Combine(metrics.Hooks("door"))))
	assert.Len(t, rec.Steps(), 6)

	count, err := testutil.GatherAndCount(reg, "switchyard_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
