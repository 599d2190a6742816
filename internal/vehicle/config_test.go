package vehicle

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero spring", func(c *Config) { c.Wheels[0].K = 0 }},
		{"negative damper", func(c *Config) { c.Wheels[1].U = -1 }},
		{"zero radius", func(c *Config) { c.Wheels[2].Radius = 0 }},
		{"empty travel", func(c *Config) { c.Wheels[3].SuspensionMin = c.Wheels[3].SuspensionMax }},
		{"three wheels", func(c *Config) { c.Wheels = c.Wheels[:3] }},
		{"odd wheel count", func(c *Config) {
			c.Wheels = append(c.Wheels, DefaultWheel(rl.Vector3{}, false))
		}},
		{"no seats", func(c *Config) { c.Seats = nil }},
		{"rear drive without rear wheels", func(c *Config) {
			for i := range c.Wheels {
				c.Wheels[i].Front = true
			}
		}},
		{"zero mass", func(c *Config) { c.Mass = 0 }},
		{"overfull tank", func(c *Config) { c.Fuel = c.FuelCapacity + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFourWheelDriveNeedsNoRearWheels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FourWheelDrive = true
	for i := range cfg.Wheels {
		cfg.Wheels[i].Front = true
	}
	assert.NoError(t, cfg.Validate())
}

func TestNewRefusesInvalidConfig(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultConfig()
	cfg.Wheels[0].K = -5

	v, err := New(w, cfg, rl.Vector3{Y: 1}, rl.QuaternionIdentity(), zerolog.Nop())
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 0, w.NumObjects())
}
