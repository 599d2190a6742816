package vehicle

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrInvalidConfig wraps every configuration problem reported by Validate.
var ErrInvalidConfig = errors.New("vehicle: invalid configuration")

// WheelConfig describes one suspension corner in chassis-local space.
type WheelConfig struct {
	Offset          rl.Vector3 `mapstructure:"offset" json:"offset"` // suspension top
	Front           bool       `mapstructure:"front" json:"front"`
	K               float32    `mapstructure:"k" json:"k"` // spring, N/m
	U               float32    `mapstructure:"u" json:"u"` // damper, N*s/m
	SuspensionMin   float32    `mapstructure:"suspension_min" json:"suspensionMin"`
	SuspensionMax   float32    `mapstructure:"suspension_max" json:"suspensionMax"`
	Radius          float32    `mapstructure:"radius" json:"radius"`
	Grip            float32    `mapstructure:"grip" json:"grip"` // lateral grip factor
	FrictionCeiling float32    `mapstructure:"friction_ceiling" json:"frictionCeiling"`
}

// SeatConfig places a seat in chassis-local space. Seat 0 is the driver's.
type SeatConfig struct {
	Offset rl.Vector3 `mapstructure:"offset" json:"offset"`
}

type Config struct {
	Name        string     `mapstructure:"name" json:"name"`
	ChassisSize rl.Vector3 `mapstructure:"chassis_size" json:"chassisSize"`
	Mass        float32    `mapstructure:"mass" json:"mass"`

	Wheels []WheelConfig `mapstructure:"wheels" json:"wheels"`
	Seats  []SeatConfig  `mapstructure:"seats" json:"seats"`

	FourWheelDrive    bool    `mapstructure:"four_wheel_drive" json:"fourWheelDrive"`
	EngineForce       float32 `mapstructure:"engine_force" json:"engineForce"`
	BrakeForce        float32 `mapstructure:"brake_force" json:"brakeForce"`
	HandbrakeFriction float32 `mapstructure:"handbrake_friction" json:"handbrakeFriction"`
	MaxSteerAngle     float32 `mapstructure:"max_steer_angle" json:"maxSteerAngle"` // radians
	Drag              float32 `mapstructure:"drag" json:"drag"`
	Downforce         float32 `mapstructure:"downforce" json:"downforce"`

	FuelCapacity    float32 `mapstructure:"fuel_capacity" json:"fuelCapacity"`
	Fuel            float32 `mapstructure:"fuel" json:"fuel"`                      // initial
	FuelConsumption float32 `mapstructure:"fuel_consumption" json:"fuelConsumption"` // per second at full throttle

	EjectHeight float32 `mapstructure:"eject_height" json:"ejectHeight"`
}

// DefaultWheel is a road car corner with its suspension top at offset.
func DefaultWheel(offset rl.Vector3, front bool) WheelConfig {
	return WheelConfig{
		Offset:          offset,
		Front:           front,
		K:               40000,
		U:               3000,
		SuspensionMin:   0,
		SuspensionMax:   0.3,
		Radius:          0.35,
		Grip:            1,
		FrictionCeiling: 1.2,
	}
}

// DefaultConfig is a four-seat rear-wheel-drive car of about 1200 kg.
func DefaultConfig() Config {
	return Config{
		Name:        "car",
		ChassisSize: rl.Vector3{X: 1.8, Y: 0.6, Z: 4},
		Mass:        1200,
		Wheels: []WheelConfig{
			DefaultWheel(rl.Vector3{X: -0.8, Y: -0.3, Z: 1.3}, true),
			DefaultWheel(rl.Vector3{X: 0.8, Y: -0.3, Z: 1.3}, true),
			DefaultWheel(rl.Vector3{X: -0.8, Y: -0.3, Z: -1.3}, false),
			DefaultWheel(rl.Vector3{X: 0.8, Y: -0.3, Z: -1.3}, false),
		},
		Seats: []SeatConfig{
			{Offset: rl.Vector3{X: -0.4, Y: 0.3, Z: 0.2}},
			{Offset: rl.Vector3{X: 0.4, Y: 0.3, Z: 0.2}},
			{Offset: rl.Vector3{X: -0.4, Y: 0.3, Z: -0.8}},
			{Offset: rl.Vector3{X: 0.4, Y: 0.3, Z: -0.8}},
		},
		EngineForce:       6000,
		BrakeForce:        8000,
		HandbrakeFriction: 1.5,
		MaxSteerAngle:     0.6,
		Drag:              0.4,
		Downforce:         0.3,
		FuelCapacity:      60,
		Fuel:              60,
		FuelConsumption:   0.05,
		EjectHeight:       2,
	}
}

// Validate reports every problem that would make the vehicle unstable or
// unusable. Each joined error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Mass <= 0 {
		bad("mass must be positive, got %v", c.Mass)
	}
	if c.ChassisSize.X <= 0 || c.ChassisSize.Y <= 0 || c.ChassisSize.Z <= 0 {
		bad("chassis size must be positive, got %v", c.ChassisSize)
	}
	if n := len(c.Wheels); n < 4 || n%2 != 0 {
		bad("need an even number of at least 4 wheels, got %d", n)
	}
	if len(c.Seats) == 0 {
		bad("need at least one seat")
	}

	rear := 0
	for i, w := range c.Wheels {
		if !w.Front {
			rear++
		}
		if w.K <= 0 {
			bad("wheel %d: spring constant must be positive, got %v", i, w.K)
		}
		if w.U <= 0 {
			bad("wheel %d: damper constant must be positive, got %v", i, w.U)
		}
		if w.Radius <= 0 {
			bad("wheel %d: radius must be positive, got %v", i, w.Radius)
		}
		if w.SuspensionMin < 0 || w.SuspensionMin >= w.SuspensionMax {
			bad("wheel %d: suspension travel [%v, %v] is empty", i, w.SuspensionMin, w.SuspensionMax)
		}
		if w.FrictionCeiling < 0 || w.Grip < 0 {
			bad("wheel %d: grip and friction ceiling must not be negative", i)
		}
	}
	if !c.FourWheelDrive && len(c.Wheels) > 0 && rear == 0 {
		bad("rear-wheel drive needs rear wheels")
	}

	if c.FuelCapacity < 0 || c.Fuel < 0 || c.Fuel > c.FuelCapacity {
		bad("fuel %v must lie in [0, %v]", c.Fuel, c.FuelCapacity)
	}
	if c.EngineForce < 0 || c.BrakeForce < 0 || c.HandbrakeFriction < 0 {
		bad("engine and brake forces must not be negative")
	}
	return errors.Join(errs...)
}
