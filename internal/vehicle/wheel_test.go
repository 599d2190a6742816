package vehicle

import (
	"testing"

	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = float32(1.0 / 60)

func newWorld(t *testing.T) *physics.PhysicsWorld {
	t.Helper()
	w := physics.NewPhysicsWorld(physics.DefaultSettings(), zerolog.Nop())
	require.NoError(t, w.Init(rl.Vector3{Y: -9.81}, 20, true))
	t.Cleanup(w.Destroy)
	return w
}

// chassisAt places a bare chassis box with its center at height y and
// returns a wheel on its underside
func chassisAt(t *testing.T, w *physics.PhysicsWorld, cfg WheelConfig, y float32) (*physics.PhysicsObject, *Wheel) {
	t.Helper()
	chassis := w.CreateBox(rl.Vector3{Y: y}, rl.QuaternionIdentity(), rl.Vector3{X: 2, Y: 0.6, Z: 4}, physics.WithMass(1000))
	require.NotNil(t, chassis)
	wheel := newWheel(w, 0, cfg, chassis)
	t.Cleanup(wheel.destroy)
	return chassis, wheel
}

func TestWheelAirborne(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{X: 0.8, Y: -0.3, Z: 1.3}, true)
	_, wheel := chassisAt(t, w, cfg, 10)

	wheel.Update(dt)

	assert.False(t, wheel.InContact())
	assert.Equal(t, float32(0), wheel.Force())
	assert.Equal(t, float32(0), wheel.Traction())
	assert.Equal(t, cfg.SuspensionMin, wheel.Compression())
	c, ok := wheel.Contact()
	assert.False(t, ok)
	assert.Equal(t, physics.Contact{}, c)
}

func TestWheelAirborneJustOutOfReach(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, false)
	// suspension top exactly one ray length plus a margin above the ground
	_, wheel := chassisAt(t, w, cfg, 0.3+cfg.SuspensionMax+cfg.Radius+0.01)

	wheel.Update(dt)
	assert.False(t, wheel.InContact())
	assert.Equal(t, float32(0), wheel.Force())
}

func TestWheelFullCompression(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, true)
	cfg.SuspensionMin = 0.05

	// hit distance below radius + min travel
	_, wheel := chassisAt(t, w, cfg, 0.3+cfg.Radius+cfg.SuspensionMin-0.1)
	wheel.Update(dt)

	require.True(t, wheel.InContact())
	assert.Equal(t, cfg.SuspensionMax, wheel.Compression())
	assert.True(t, wheel.AtLimit())
	assert.Greater(t, wheel.Force(), float32(0))
}

func TestWheelHitAtZeroDistance(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, true)
	_, wheel := chassisAt(t, w, cfg, 0.3)

	wheel.Update(dt)
	require.True(t, wheel.InContact())
	assert.Equal(t, cfg.SuspensionMax, wheel.Compression())
}

func TestWheelTravelClamp(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, true)
	cfg.SuspensionMin = 0.05
	chassis, wheel := chassisAt(t, w, cfg, 2)

	for y := float32(0); y <= 2; y += 0.025 {
		chassis.SetPose(rl.Vector3{Y: y}, rl.QuaternionIdentity())
		wheel.Update(dt)
		c := wheel.Compression()
		if c < cfg.SuspensionMin || c > cfg.SuspensionMax {
			t.Fatalf("Expected compression in [%v, %v] at height %v, got %v", cfg.SuspensionMin, cfg.SuspensionMax, y, c)
		}
		if wheel.Force() < 0 {
			t.Fatalf("Expected non-negative force at height %v, got %v", y, wheel.Force())
		}
	}
}

func TestWheelSpringDamper(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, false)
	// suspension top 0.5 above ground: spring length 0.15, compression 0.15
	chassis, wheel := chassisAt(t, w, cfg, 0.8)

	wheel.Update(dt)
	require.True(t, wheel.InContact())
	assert.InDelta(t, 0.15, wheel.Compression(), 1e-4)
	// first contact: damper sees the jump from SuspensionMin
	assert.InDelta(t, cfg.K*0.15+cfg.U*0.15/dt, wheel.Force(), 1)

	wheel.Update(dt)
	assert.InDelta(t, cfg.K*0.15, wheel.Force(), 1)
	assert.InDelta(t, wheel.Force()/(cfg.K*cfg.SuspensionMax), wheel.Traction(), 1e-4)

	// the force went to the chassis
	assert.Greater(t, chassis.Body().Force().Y, float32(0))
}

func TestWheelTractionCeiling(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, false)
	cfg.FrictionCeiling = 0.3
	_, wheel := chassisAt(t, w, cfg, 0.35)

	wheel.Update(dt)
	wheel.Update(dt)
	assert.Equal(t, float32(0.3), wheel.Traction())
}

func TestWheelSteerRotatesHeading(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultWheel(rl.Vector3{Y: -0.3}, true)
	_, wheel := chassisAt(t, w, cfg, 0.8)

	wheel.SetSteer(0.5)
	wheel.Update(dt)

	fwd := wheel.Forward()
	assert.InDelta(t, 0.4794, fwd.X, 1e-3)
	assert.InDelta(t, 0.8776, fwd.Z, 1e-3)

	_, ok := wheel.Contact()
	require.True(t, ok)
	g := wheel.groundForward()
	assert.InDelta(t, 1, rl.Vector3Length(g), 1e-4)
	assert.InDelta(t, 0, g.Y, 1e-4)
	assert.InDelta(t, 0.4794, g.X, 1e-3)
}

func TestWheelDestroyReleasesChassisRef(t *testing.T) {
	w := newWorld(t)
	chassis := w.CreateBox(rl.Vector3{Y: 1}, rl.QuaternionIdentity(), rl.Vector3{X: 2, Y: 0.6, Z: 4})
	wheel := newWheel(w, 0, DefaultWheel(rl.Vector3{}, true), chassis)
	assert.Equal(t, 2, chassis.Refs())

	wheel.destroy()
	wheel.destroy()
	assert.Equal(t, 1, chassis.Refs())
	wheel.Update(dt)
	assert.False(t, wheel.InContact())
}
