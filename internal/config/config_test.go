package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"drive3d/internal/physics"
	"drive3d/internal/vehicle"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, physics.DefaultSettings(), cfg.Physics.Settings())

	def := vehicle.DefaultConfig()
	assert.Equal(t, def.Mass, cfg.Vehicle.Mass)
	assert.Equal(t, def.ChassisSize, cfg.Vehicle.ChassisSize)
	assert.Equal(t, def.Wheels, cfg.Vehicle.Wheels)
	assert.Len(t, cfg.Vehicle.Seats, 4)
	require.NoError(t, cfg.Vehicle.Validate())

	assert.Equal(t, float32(1.8), cfg.Player.Height)
	assert.Equal(t, 10*time.Second, cfg.Session.Duration)
	assert.Equal(t, 60, cfg.Session.FrameRate)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 6, cfg.Telemetry.Interval)
}

func TestLoad_MatchesDefault(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	file := `{
		"log_level": "debug",
		"level": "levels/hills.json",
		"physics": { "iterations": 30, "gravity": { "y": -1.62 } },
		"vehicle": {
			"mass": 900,
			"four_wheel_drive": true,
			"seats": [ { "offset": { "x": 0, "y": 0.3, "z": 0 } } ]
		},
		"session": { "duration": "2m" },
		"telemetry": { "enabled": true, "path": "out.db" }
	}`
	path := filepath.Join(dir, "drive3d.json")
	require.NoError(t, os.WriteFile(path, []byte(file), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "levels/hills.json", cfg.Level)
	assert.Equal(t, 30, cfg.Physics.Iterations)
	assert.InDelta(t, -1.62, cfg.Physics.Gravity.Y, 1e-6)
	assert.Equal(t, float32(0), cfg.Physics.Gravity.X)
	assert.Equal(t, float32(900), cfg.Vehicle.Mass)
	assert.True(t, cfg.Vehicle.FourWheelDrive)
	require.Len(t, cfg.Vehicle.Seats, 1)
	assert.InDelta(t, 0.3, cfg.Vehicle.Seats[0].Offset.Y, 1e-6)
	assert.Len(t, cfg.Vehicle.Wheels, 4)
	assert.Equal(t, 2*time.Minute, cfg.Session.Duration)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "out.db", cfg.Telemetry.Path)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("DRIVE3D_PHYSICS_ITERATIONS", "7")
	t.Setenv("DRIVE3D_VEHICLE_ENGINE_FORCE", "9000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Physics.Iterations)
	assert.Equal(t, float32(9000), cfg.Vehicle.EngineForce)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := Load("/nonexistent/drive3d.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestDecode_ExplicitSet(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("physics.max_contacts", 4)

	cfg, err := Decode()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Physics.MaxContacts)
}
