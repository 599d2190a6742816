package config

import (
	"fmt"
	"strings"
	"time"

	"drive3d/internal/physics"
	"drive3d/internal/player"
	"drive3d/internal/vehicle"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DRIVE3D_PHYSICS_ITERATIONS.
const EnvPrefix = "DRIVE3D"

type PhysicsConfig struct {
	Gravity        rl.Vector3 `mapstructure:"gravity"`
	Iterations     int        `mapstructure:"iterations"`
	FixedTimestep  float32    `mapstructure:"fixed_timestep"`
	MaxSubSteps    int        `mapstructure:"max_sub_steps"`
	MaxContacts    int        `mapstructure:"max_contacts"`
	GroundPlane    bool       `mapstructure:"ground_plane"`
	DefaultDensity float32    `mapstructure:"default_density"`
	Friction       float32    `mapstructure:"friction"`
	Bounce         float32    `mapstructure:"bounce"`
	BounceVelocity float32    `mapstructure:"bounce_velocity"`
	SoftERP        float32    `mapstructure:"soft_erp"`
	SoftCFM        float32    `mapstructure:"soft_cfm"`
}

// Settings converts the section into world settings.
func (p PhysicsConfig) Settings() physics.Settings {
	return physics.Settings{
		Gravity:        p.Gravity,
		Iterations:     p.Iterations,
		FixedTimestep:  p.FixedTimestep,
		MaxSubSteps:    p.MaxSubSteps,
		MaxContacts:    p.MaxContacts,
		GroundPlane:    p.GroundPlane,
		DefaultDensity: p.DefaultDensity,
		Friction:       p.Friction,
		Bounce:         p.Bounce,
		BounceVelocity: p.BounceVelocity,
		SoftERP:        p.SoftERP,
		SoftCFM:        p.SoftCFM,
	}
}

type SessionConfig struct {
	Duration  time.Duration `mapstructure:"duration"`   // headless run length
	FrameRate int           `mapstructure:"frame_rate"` // Update calls per simulated second
}

// TelemetryConfig controls the vehicle sample recorder.
type TelemetryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`     // sqlite file, empty for memory
	Interval  int    `mapstructure:"interval"` // session updates between samples
	BatchSize int    `mapstructure:"batch_size"`
}

type Config struct {
	LogLevel  string            `mapstructure:"log_level"`
	Level     string            `mapstructure:"level"` // level file
	Physics   PhysicsConfig     `mapstructure:"physics"`
	Vehicle   vehicle.Config    `mapstructure:"vehicle"`
	Player    player.BodyConfig `mapstructure:"player"`
	Session   SessionConfig     `mapstructure:"session"`
	Telemetry TelemetryConfig   `mapstructure:"telemetry"`
}

// Default is the configuration Load produces with no file and no environment.
func Default() Config {
	ps := physics.DefaultSettings()
	return Config{
		LogLevel: "info",
		Physics: PhysicsConfig{
			Gravity:        ps.Gravity,
			Iterations:     ps.Iterations,
			FixedTimestep:  ps.FixedTimestep,
			MaxSubSteps:    ps.MaxSubSteps,
			MaxContacts:    ps.MaxContacts,
			GroundPlane:    ps.GroundPlane,
			DefaultDensity: ps.DefaultDensity,
			Friction:       ps.Friction,
			Bounce:         ps.Bounce,
			BounceVelocity: ps.BounceVelocity,
			SoftERP:        ps.SoftERP,
			SoftCFM:        ps.SoftCFM,
		},
		Vehicle: vehicle.DefaultConfig(),
		Player:  player.DefaultBodyConfig(),
		Session: SessionConfig{Duration: 10 * time.Second, FrameRate: 60},
		Telemetry: TelemetryConfig{
			Interval:  6,
			BatchSize: 500,
		},
	}
}

// SetDefaults registers a default for every scalar key.
func SetDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("level", "")

	ps := physics.DefaultSettings()
	viper.SetDefault("physics.gravity.x", ps.Gravity.X)
	viper.SetDefault("physics.gravity.y", ps.Gravity.Y)
	viper.SetDefault("physics.gravity.z", ps.Gravity.Z)
	viper.SetDefault("physics.iterations", ps.Iterations)
	viper.SetDefault("physics.fixed_timestep", ps.FixedTimestep)
	viper.SetDefault("physics.max_sub_steps", ps.MaxSubSteps)
	viper.SetDefault("physics.max_contacts", ps.MaxContacts)
	viper.SetDefault("physics.ground_plane", ps.GroundPlane)
	viper.SetDefault("physics.default_density", ps.DefaultDensity)
	viper.SetDefault("physics.friction", ps.Friction)
	viper.SetDefault("physics.bounce", ps.Bounce)
	viper.SetDefault("physics.bounce_velocity", ps.BounceVelocity)
	viper.SetDefault("physics.soft_erp", ps.SoftERP)
	viper.SetDefault("physics.soft_cfm", ps.SoftCFM)

	vc := vehicle.DefaultConfig()
	viper.SetDefault("vehicle.name", vc.Name)
	viper.SetDefault("vehicle.chassis_size.x", vc.ChassisSize.X)
	viper.SetDefault("vehicle.chassis_size.y", vc.ChassisSize.Y)
	viper.SetDefault("vehicle.chassis_size.z", vc.ChassisSize.Z)
	viper.SetDefault("vehicle.mass", vc.Mass)
	viper.SetDefault("vehicle.four_wheel_drive", vc.FourWheelDrive)
	viper.SetDefault("vehicle.engine_force", vc.EngineForce)
	viper.SetDefault("vehicle.brake_force", vc.BrakeForce)
	viper.SetDefault("vehicle.handbrake_friction", vc.HandbrakeFriction)
	viper.SetDefault("vehicle.max_steer_angle", vc.MaxSteerAngle)
	viper.SetDefault("vehicle.drag", vc.Drag)
	viper.SetDefault("vehicle.downforce", vc.Downforce)
	viper.SetDefault("vehicle.fuel_capacity", vc.FuelCapacity)
	viper.SetDefault("vehicle.fuel", vc.Fuel)
	viper.SetDefault("vehicle.fuel_consumption", vc.FuelConsumption)
	viper.SetDefault("vehicle.eject_height", vc.EjectHeight)

	bc := player.DefaultBodyConfig()
	viper.SetDefault("player.height", bc.Height)
	viper.SetDefault("player.radius", bc.Radius)
	viper.SetDefault("player.mass", bc.Mass)
	viper.SetDefault("player.walk_speed", bc.WalkSpeed)
	viper.SetDefault("player.run_speed", bc.RunSpeed)
	viper.SetDefault("player.sprint_speed", bc.SprintSpeed)
	viper.SetDefault("player.jump_speed", bc.JumpSpeed)
	viper.SetDefault("player.air_control", bc.AirControl)
	viper.SetDefault("player.step_height", bc.StepHeight)

	viper.SetDefault("session.duration", "10s")
	viper.SetDefault("session.frame_rate", 60)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.path", "")
	viper.SetDefault("telemetry.interval", 6)
	viper.SetDefault("telemetry.batch_size", 500)
}

// Load sets defaults, binds DRIVE3D_* environment variables, reads the JSON
// file at path when path is not empty and decodes the result.
func Load(path string) (Config, error) {
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("json")
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return Decode()
}

// Decode unmarshals the current viper state. Wheel and seat layouts missing
// from the configuration fall back to the default car.
func Decode() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	def := vehicle.DefaultConfig()
	if len(cfg.Vehicle.Wheels) == 0 {
		cfg.Vehicle.Wheels = def.Wheels
	}
	if len(cfg.Vehicle.Seats) == 0 {
		cfg.Vehicle.Seats = def.Seats
	}
	return cfg, nil
}
