package session

import (
	"fmt"

	"drive3d/internal/engine"
	"drive3d/internal/vehicle"

	"github.com/rs/zerolog"
)

// LowFuelFraction is the share of tank capacity below which a gauge reads low.
const LowFuelFraction = 0.2

// FuelGauge is a scene component on a vehicle's chassis node. It watches the
// tank and fires Low once each time fuel drops under the threshold.
type FuelGauge struct {
	engine.BaseComponent
	Vehicle   *vehicle.Vehicle
	Threshold float32

	Low engine.Event

	low bool
	log zerolog.Logger
}

func newFuelGauge(v *vehicle.Vehicle, log zerolog.Logger) *FuelGauge {
	return &FuelGauge{Vehicle: v, Threshold: LowFuelFraction, log: log}
}

// Reading is the tank fill fraction.
func (g *FuelGauge) Reading() float32 {
	capacity := g.Vehicle.FuelCapacity()
	if capacity <= 0 {
		return 0
	}
	return g.Vehicle.Fuel() / capacity
}

func (g *FuelGauge) IsLow() bool { return g.low }

func (g *FuelGauge) Update(deltaTime float32) {
	r := g.Reading()
	switch {
	case !g.low && r <= g.Threshold:
		g.low = true
		g.log.Warn().
			Str("vehicle", g.Vehicle.Config().Name).
			Float32("fuel", g.Vehicle.Fuel()).
			Msg("Vehicle: fuel low")
		g.Low.Invoke()
	case g.low && r > g.Threshold:
		g.low = false
	}
}

// Gauge returns the fuel gauge of the i-th vehicle.
func (s *Session) Gauge(i int) (*FuelGauge, error) {
	v, err := s.Vehicle(i)
	if err != nil {
		return nil, err
	}
	node, ok := v.Chassis().SceneNode().(*engine.GameObject)
	if !ok {
		return nil, fmt.Errorf("%w: %d has no scene node", ErrUnknownVehicle, i)
	}
	g := engine.GetComponent[*FuelGauge](node)
	if g == nil {
		return nil, fmt.Errorf("%w: %d has no gauge", ErrUnknownVehicle, i)
	}
	return g, nil
}
