package vehicle

import (
	"testing"

	"drive3d/internal/physics"
	"drive3d/internal/player"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVehicle(t *testing.T, w *physics.PhysicsWorld, cfg Config) *Vehicle {
	t.Helper()
	v, err := New(w, cfg, rl.Vector3{Y: 1}, rl.QuaternionIdentity(), zerolog.Nop())
	require.NoError(t, err)
	return v
}

func run(w *physics.PhysicsWorld, n int) {
	for i := 0; i < n; i++ {
		w.Step()
	}
}

func TestVehicleSettlesOnSuspension(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())

	run(w, 300)

	for _, wh := range v.Wheels() {
		require.True(t, wh.InContact(), "wheel %d", wh.Index())
		assert.InDelta(t, 0.0736, wh.Compression(), 0.015, "wheel %d", wh.Index())
		assert.False(t, wh.AtLimit())
	}
	assert.Less(t, absf(v.Chassis().LinearVelocity().Y), float32(0.05))
	// chassis rides on its wheels, not on its belly
	assert.Greater(t, v.Position().Y, float32(0.7))
}

func TestVehicleAcceleratesAndBrakes(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	run(w, 240)

	v.SetControls(Controls{Accelerate: 1})
	run(w, 120)
	speed := v.Chassis().LinearVelocity().Z
	assert.Greater(t, speed, float32(3), "forward is chassis +Z")
	assert.Less(t, v.Fuel(), v.FuelCapacity())

	v.SetControls(Controls{Brake: 1})
	run(w, 240)
	assert.Less(t, rl.Vector3Length(v.Chassis().LinearVelocity()), float32(0.5))
}

func TestClutchDisengagesDrive(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	run(w, 240)
	fuel := v.Fuel()

	v.SetControls(Controls{Accelerate: 1, Clutch: 1})
	run(w, 60)
	assert.Less(t, absf(v.Chassis().LinearVelocity().Z), float32(0.05))
	assert.Equal(t, fuel, v.Fuel())
}

func TestControlsAreClamped(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	v.SetControls(Controls{Accelerate: 3, Brake: -1, Clutch: 2, Steer: -7})
	c := v.Controls()
	assert.Equal(t, Controls{Accelerate: 1, Brake: 0, Clutch: 1, Steer: -1}, c)
}

func TestSteeringTurnsFrontWheelsOnly(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	v.SetControls(Controls{Steer: 0.5})
	run(w, 1)

	for _, wh := range v.Wheels() {
		if wh.Front() {
			assert.InDelta(t, 0.3, wh.Steer(), 1e-5)
		} else {
			assert.Equal(t, float32(0), wh.Steer())
		}
	}
}

func TestHandbrakeLocksRearWheels(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	run(w, 240)
	v.SetControls(Controls{Accelerate: 1})
	run(w, 60)

	v.SetControls(Controls{Handbrake: true})
	run(w, 1)
	for _, wh := range v.Wheels() {
		if wh.Front() {
			assert.NotEqual(t, float32(0), wh.spinRate)
		} else {
			assert.Equal(t, float32(0), wh.spinRate)
		}
	}
}

func TestFuelEmptyFiresOnce(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultConfig()
	cfg.Fuel = 0.01
	cfg.FuelConsumption = 1
	v := newVehicle(t, w, cfg)

	fired := 0
	v.FuelEmpty.AddListener(func() { fired++ })

	v.SetControls(Controls{Accelerate: 1})
	run(w, 30)

	assert.Equal(t, 1, fired)
	assert.Equal(t, float32(0), v.Fuel())

	// refuelling re-arms the event
	b := NewBowser(rl.Vector3{}, 0.01)
	assert.InDelta(t, 0.01, v.FillUp(b), 1e-6)
	run(w, 30)
	assert.Equal(t, 2, fired)
}

func TestFillUp(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultConfig()
	cfg.Fuel = 10
	v := newVehicle(t, w, cfg)

	b := NewBowser(rl.Vector3{}, 100)
	got := v.FillUp(b)
	assert.Equal(t, float32(50), got)
	assert.Equal(t, float32(60), v.Fuel())
	assert.Equal(t, float32(50), b.Stock)
	assert.InDelta(t, 97.5, b.Health, 1e-4)

	// full tank takes nothing
	assert.Equal(t, float32(0), v.FillUp(b))
	assert.Equal(t, float32(50), b.Stock)
}

func TestFillUpLimitedByStock(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultConfig()
	cfg.Fuel = 0
	v := newVehicle(t, w, cfg)

	b := NewBowser(rl.Vector3{}, 20)
	assert.Equal(t, float32(20), v.FillUp(b))
	assert.Equal(t, float32(20), v.Fuel())
	assert.Equal(t, float32(0), b.Stock)
	assert.False(t, b.Working())

	broken := NewBowser(rl.Vector3{}, 100)
	broken.Health = 0
	assert.Equal(t, float32(0), v.FillUp(broken))
	assert.Equal(t, float32(100), broken.Stock)
	assert.Equal(t, float32(0), v.FillUp(nil))
}

func TestSeatTransitions(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	reg := player.NewRegistry(zerolog.Nop())
	driver := player.New("driver")
	reg.Add(driver)

	require.NoError(t, v.AssignPlayer(driver))
	assert.Equal(t, player.Drive, driver.State())
	seat := v.Seats()[0]
	id, ok := seat.Occupant()
	require.True(t, ok)
	assert.Equal(t, driver.ID(), id)
	assert.Same(t, seat, v.SeatFor(driver))

	run(w, 30)
	require.NoError(t, seat.EjectPlayer(driver))
	assert.Equal(t, player.Run, driver.State())
	assert.Nil(t, driver.Seat())
	assert.False(t, seat.Occupied())
	want := rl.Vector3Add(v.Position(), rl.Vector3{Y: 2})
	assert.Equal(t, want, driver.Position())

	assert.ErrorIs(t, seat.EjectPlayer(driver), ErrNotOccupant)
}

func TestPassengerSeat(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	reg := player.NewRegistry(zerolog.Nop())
	a, b := player.New("a"), player.New("b")
	reg.Add(a)
	reg.Add(b)

	s, err := v.Seat(2)
	require.NoError(t, err)
	require.NoError(t, s.AssignPlayer(a))
	assert.Equal(t, player.Passenger, a.State())

	assert.ErrorIs(t, s.AssignPlayer(b), ErrSeatOccupied)
	assert.Equal(t, player.Walk, b.State())
	assert.Nil(t, b.Seat())

	_, err = v.Seat(9)
	assert.ErrorIs(t, err, ErrNoSeat)
}

func TestDeadPlayerCannotSit(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	p := player.New("ghost")
	p.Kill()

	assert.ErrorIs(t, v.AssignPlayer(p), player.ErrDead)
	assert.False(t, v.Seats()[0].Occupied())
}

func TestKilledDriverFreesSeat(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	reg := player.NewRegistry(zerolog.Nop())
	p := player.New("driver")
	reg.Add(p)
	require.NoError(t, v.AssignPlayer(p))

	p.Kill()
	assert.False(t, v.Seats()[0].Occupied())
	assert.Nil(t, v.SeatFor(p))
}

func TestEjectAll(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	reg := player.NewRegistry(zerolog.Nop())
	a, b := player.New("a"), player.New("b")
	reg.Add(a)
	reg.Add(b)
	require.NoError(t, v.Seats()[0].AssignPlayer(a))
	require.NoError(t, v.Seats()[3].AssignPlayer(b))

	assert.Equal(t, 2, v.EjectAll(reg))
	assert.Equal(t, player.Run, a.State())
	assert.Equal(t, player.Run, b.State())
	for _, s := range v.Seats() {
		assert.False(t, s.Occupied())
	}
}

func TestProperties(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	v.SetBoost(1.5)
	run(w, 240)

	p := v.Properties()
	assert.InDelta(t, 1200*9.81, p.Weight, 0.5)
	assert.Equal(t, float32(1.5), p.Boost)
	require.Len(t, p.Traction, 4)
	for _, tr := range p.Traction {
		assert.Greater(t, tr, float32(0))
	}
}

func TestVehicleDeterminism(t *testing.T) {
	drive := func() (rl.Vector3, rl.Quaternion) {
		w := physics.NewPhysicsWorld(physics.DefaultSettings(), zerolog.Nop())
		require.NoError(t, w.Init(rl.Vector3{Y: -9.81}, 20, true))
		defer w.Destroy()
		v := newVehicle(t, w, DefaultConfig())
		run(w, 60)
		v.SetControls(Controls{Accelerate: 0.8, Steer: 0.4})
		run(w, 120)
		v.SetControls(Controls{Brake: 0.5, Steer: -0.2, Handbrake: true})
		run(w, 60)
		return v.Position(), v.Rotation()
	}

	p1, r1 := drive()
	p2, r2 := drive()
	assert.Equal(t, p1, p2)
	assert.Equal(t, r1, r2)
}

func TestSetActiveParksChassis(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	v.SetActive(false)
	assert.False(t, v.Active())
	assert.False(t, v.Chassis().InWorld())

	y := v.Chassis().Body().Position().Y
	run(w, 30)
	assert.Equal(t, y, v.Chassis().Body().Position().Y)

	v.SetActive(true)
	run(w, 30)
	assert.True(t, v.Chassis().InWorld())
	assert.Less(t, v.Chassis().Body().Position().Y, y)
}

func TestVehicleDestroy(t *testing.T) {
	w := newWorld(t)
	v := newVehicle(t, w, DefaultConfig())
	chassis := v.Chassis()

	v.Destroy()
	v.Destroy()
	assert.True(t, chassis.Released())
	assert.Equal(t, 0, w.NumObjects())
	run(w, 5)
}
