package vehicle

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "drive3d/internal/vehicle"

type metrics struct {
	dispensed metric.Float64Counter
	empty     metric.Int64Counter
	attrs     metric.MeasurementOption
}

func newMetrics(name string, log zerolog.Logger) *metrics {
	m, err := buildMetrics(otel.Meter(instrumentationName))
	if err != nil {
		log.Warn().Err(err).Msg("Vehicle: metrics unavailable, using no-op meter")
		m, _ = buildMetrics(noop.Meter{})
	}
	m.attrs = metric.WithAttributes(attribute.String("vehicle", name))
	return m
}

func buildMetrics(meter metric.Meter) (*metrics, error) {
	dispensed, err := meter.Float64Counter(
		"vehicle.fuel.dispensed",
		metric.WithDescription("Fuel transferred from bowsers into vehicle tanks"),
	)
	if err != nil {
		return nil, err
	}
	empty, err := meter.Int64Counter(
		"vehicle.fuel.empty",
		metric.WithDescription("Times a vehicle ran its tank dry"),
	)
	if err != nil {
		return nil, err
	}
	return &metrics{dispensed: dispensed, empty: empty}, nil
}

func (m *metrics) fuelDispensed(amount float32) {
	m.dispensed.Add(context.Background(), float64(amount), m.attrs)
}

func (m *metrics) fuelEmpty() {
	m.empty.Add(context.Background(), 1, m.attrs)
}
