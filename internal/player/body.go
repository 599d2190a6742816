package player

import (
	"fmt"

	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BodyConfig sizes the upright character capsule and its movement speeds.
type BodyConfig struct {
	Height      float32 `mapstructure:"height"`
	Radius      float32 `mapstructure:"radius"`
	Mass        float32 `mapstructure:"mass"`
	WalkSpeed   float32 `mapstructure:"walk_speed"`
	RunSpeed    float32 `mapstructure:"run_speed"`
	SprintSpeed float32 `mapstructure:"sprint_speed"`
	JumpSpeed   float32 `mapstructure:"jump_speed"`
	AirControl  float32 `mapstructure:"air_control"`
	StepHeight  float32 `mapstructure:"step_height"`
}

func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		Height:      1.8,
		Radius:      0.4,
		Mass:        80,
		WalkSpeed:   2,
		RunSpeed:    5,
		SprintSpeed: 8,
		JumpSpeed:   5,
		AirControl:  2,
		StepHeight:  0.4,
	}
}

// groundSlack is how far below the capsule the probe still counts as standing
const groundSlack = 0.1

// Body is an upright capsule character. It composes a PhysicsObject for
// presence in the world and a RayCast probing for ground below the capsule.
type Body struct {
	cfg    BodyConfig
	world  *physics.PhysicsWorld
	object *physics.PhysicsObject
	probe  *physics.RayCast
	player *Player

	wish     rl.Vector3
	jump     bool
	grounded bool
	parked   bool
}

var _ physics.Controller = (*Body)(nil)
var _ physics.RayCaster = (*Body)(nil)

// NewBody creates the capsule at pos (its center) and registers the body as a controller.
func NewBody(w *physics.PhysicsWorld, pos rl.Vector3, cfg BodyConfig) (*Body, error) {
	if !w.Initialized() {
		return nil, physics.ErrNotInitialized
	}
	if cfg.Radius <= 0 || cfg.Height < 2*cfg.Radius || cfg.Mass <= 0 {
		return nil, fmt.Errorf("%w: height %v radius %v mass %v", ErrInvalidBody, cfg.Height, cfg.Radius, cfg.Mass)
	}
	obj := w.CreateCapsule(pos, rl.QuaternionIdentity(), cfg.Radius, cfg.Height-2*cfg.Radius,
		physics.WithMass(cfg.Mass),
		physics.WithName("character"),
		// speed is driven directly, ground friction would only fight it
		physics.WithMaterial(physics.Material{Friction: 0, BounceVelocity: 1, SoftERP: 0.2, SoftCFM: 1e-4}),
	)
	b := &Body{
		cfg:    cfg,
		world:  w,
		object: obj,
	}
	b.probe = physics.NewRayCast(w, cfg.Height/2+cfg.StepHeight, obj)
	w.AddController(b)
	return b, nil
}

func (b *Body) Object() *physics.PhysicsObject { return b.object }

func (b *Body) Position() rl.Vector3 { return b.object.Position() }

func (b *Body) Velocity() rl.Vector3 { return b.object.LinearVelocity() }

func (b *Body) Grounded() bool { return b.grounded }

func (b *Body) Parked() bool { return b.parked }

// SetWish sets the desired horizontal move direction; its length is ignored.
func (b *Body) SetWish(dir rl.Vector3) {
	dir.Y = 0
	if rl.Vector3Length(dir) < 1e-6 {
		b.wish = rl.Vector3{}
		return
	}
	b.wish = rl.Vector3Normalize(dir)
}

// Jump requests a jump on the next grounded step.
func (b *Body) Jump() { b.jump = true }

// Teleport places the capsule center at pos and stops it.
func (b *Body) Teleport(pos rl.Vector3) {
	b.object.SetPose(pos, rl.QuaternionIdentity())
	b.object.SetLinearVelocity(rl.Vector3{})
	b.object.SetAngularVelocity(rl.Vector3{})
}

// Park takes the capsule out of the simulation, e.g. while its player sits in a vehicle.
func (b *Body) Park() {
	if b.parked {
		return
	}
	b.object.RemoveFromWorld()
	b.parked = true
	b.grounded = false
}

// Unpark puts the capsule back at pos.
func (b *Body) Unpark(pos rl.Vector3) {
	if !b.parked {
		b.Teleport(pos)
		return
	}
	b.Teleport(pos)
	b.world.AddPhysicsObject(b.object)
	b.parked = false
}

// RayCast probes for ground straight below the capsule center.
func (b *Body) RayCast() {
	if !b.probe.Fire(b.object.Position(), rl.Vector3{Y: -1}) {
		b.grounded = false
		return
	}
	b.grounded = b.probe.Distance() <= b.cfg.Height/2+groundSlack
}

func (b *Body) speed() float32 {
	state := Walk
	if b.player != nil {
		state = b.player.State()
	}
	switch state {
	case Walk:
		return b.cfg.WalkSpeed
	case Run:
		return b.cfg.RunSpeed
	case Sprint:
		return b.cfg.SprintSpeed
	}
	return 0
}

// Step drives the capsule toward the wished velocity and keeps it upright.
func (b *Body) Step(dt float32) {
	if b.parked || b.object.Released() || !b.object.InWorld() {
		return
	}
	b.RayCast()

	target := rl.Vector3Scale(b.wish, b.speed())
	v := b.object.LinearVelocity()
	if b.grounded {
		v.X, v.Z = target.X, target.Z
		if b.jump && b.speed() > 0 {
			v.Y = b.cfg.JumpSpeed
			b.grounded = false
		}
	} else {
		k := min(b.cfg.AirControl*dt, 1)
		v.X += (target.X - v.X) * k
		v.Z += (target.Z - v.Z) * k
	}
	b.jump = false

	b.object.SetPose(b.object.Position(), rl.QuaternionIdentity())
	b.object.SetLinearVelocity(v)
	b.object.SetAngularVelocity(rl.Vector3{})
}

// Destroy unregisters the body and releases its capsule and probe.
func (b *Body) Destroy() {
	if b.object == nil {
		return
	}
	b.world.RemoveController(b)
	b.probe.Destroy()
	b.object.Release()
	b.object = nil
}
