package physics

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "drive3d/internal/physics"

type metrics struct {
	steps     metric.Int64Counter
	contacts  metric.Int64Counter
	truncated metric.Int64Counter
	duration  metric.Float64Histogram
}

// newMetrics registers the world's instruments on the global meter provider
// (a no-op unless the process installs one).
func newMetrics(log zerolog.Logger) *metrics {
	m, err := buildMetrics(otel.Meter(instrumentationName))
	if err != nil {
		log.Warn().Err(err).Msg("Physics: metrics unavailable, using no-op meter")
		m, _ = buildMetrics(noop.Meter{})
	}
	return m
}

func buildMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.steps, err = meter.Int64Counter(
		"physics.steps",
		metric.WithDescription("Fixed physics steps executed"),
	)
	if err != nil {
		return nil, err
	}

	m.contacts, err = meter.Int64Counter(
		"physics.contacts",
		metric.WithDescription("Contact joints created"),
	)
	if err != nil {
		return nil, err
	}

	m.truncated, err = meter.Int64Counter(
		"physics.contacts.truncated",
		metric.WithDescription("Shape pairs whose contacts were truncated to the per-pair maximum"),
	)
	if err != nil {
		return nil, err
	}

	m.duration, err = meter.Float64Histogram(
		"physics.step.duration",
		metric.WithDescription("Wall time spent in one fixed step"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) recordStep(contacts, truncated int, ms float64) {
	ctx := context.Background()
	m.steps.Add(ctx, 1)
	if contacts > 0 {
		m.contacts.Add(ctx, int64(contacts))
	}
	if truncated > 0 {
		m.truncated.Add(ctx, int64(truncated))
	}
	m.duration.Record(ctx, ms)
}
