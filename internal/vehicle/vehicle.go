package vehicle

import (
	"fmt"

	"drive3d/internal/engine"
	"drive3d/internal/physics"
	"drive3d/internal/player"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// lateralResponse is the share of a wheel's sideways slip cancelled per step
const lateralResponse = 0.5

// handbrakeGrip scales lateral grip of locked wheels
const handbrakeGrip = 0.5

// Controls are the driver inputs. Accelerate, Brake and Clutch lie in [0, 1],
// Steer in [-1, 1].
type Controls struct {
	Accelerate float32
	Brake      float32
	Clutch     float32
	Steer      float32
	Handbrake  bool
}

func clamp01(v float32) float32 { return min(max(v, 0), 1) }

func (c Controls) clamped() Controls {
	c.Accelerate = clamp01(c.Accelerate)
	c.Brake = clamp01(c.Brake)
	c.Clutch = clamp01(c.Clutch)
	c.Steer = min(max(c.Steer, -1), 1)
	return c
}

// Properties are values derived from the vehicle's current motion.
type Properties struct {
	Speed     float32
	Weight    float32
	Drag      float32
	Downforce float32
	Boost     float32
	Traction  []float32
}

// Vehicle is a chassis body carried by ray-cast wheels. It is registered as a
// world controller and applies its forces once per fixed step.
type Vehicle struct {
	Name string

	cfg     Config
	world   *physics.PhysicsWorld
	chassis *physics.PhysicsObject
	wheels  []*Wheel
	seats   []*Seat

	controls Controls
	fuel     float32
	boost    float32
	empty    bool
	active   bool

	// FuelEmpty fires once each time the tank runs dry.
	FuelEmpty engine.Event

	log       zerolog.Logger
	metrics   *metrics
	destroyed bool
}

var _ physics.Controller = (*Vehicle)(nil)

// New validates cfg and builds the chassis, wheels and seats at the given pose.
func New(w *physics.PhysicsWorld, cfg Config, position rl.Vector3, rotation rl.Quaternion, log zerolog.Logger) (*Vehicle, error) {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Str("vehicle", cfg.Name).Msg("Vehicle: refusing invalid configuration")
		return nil, err
	}
	if !w.Initialized() {
		return nil, fmt.Errorf("create vehicle %q: %w", cfg.Name, physics.ErrNotInitialized)
	}

	log = log.With().Str("component", "vehicle").Str("vehicle", cfg.Name).Logger()
	chassis := w.CreateBox(position, rotation, cfg.ChassisSize,
		physics.WithMass(cfg.Mass),
		physics.WithName(cfg.Name),
	)

	v := &Vehicle{
		Name:    cfg.Name,
		cfg:     cfg,
		world:   w,
		chassis: chassis,
		fuel:    cfg.Fuel,
		boost:   1,
		empty:   cfg.Fuel <= 0,
		active:  true,
		log:     log,
		metrics: newMetrics(cfg.Name, log),
	}
	for i, wc := range cfg.Wheels {
		v.wheels = append(v.wheels, newWheel(w, i, wc, chassis))
	}
	for i, sc := range cfg.Seats {
		v.seats = append(v.seats, &Seat{index: i, offset: sc.Offset, vehicle: v})
	}
	w.AddController(v)

	log.Info().
		Int("wheels", len(v.wheels)).
		Int("seats", len(v.seats)).
		Bool("4wd", cfg.FourWheelDrive).
		Msg("Vehicle: created")
	return v, nil
}

func (v *Vehicle) Config() Config { return v.cfg }

func (v *Vehicle) Chassis() *physics.PhysicsObject { return v.chassis }

func (v *Vehicle) Wheels() []*Wheel { return v.wheels }

func (v *Vehicle) Seats() []*Seat { return v.seats }

func (v *Vehicle) Seat(i int) (*Seat, error) {
	if i < 0 || i >= len(v.seats) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoSeat, i, len(v.seats))
	}
	return v.seats[i], nil
}

func (v *Vehicle) Position() rl.Vector3 { return v.chassis.Position() }

func (v *Vehicle) Rotation() rl.Quaternion { return v.chassis.Rotation() }

func (v *Vehicle) Controls() Controls { return v.controls }

// SetControls stores the inputs for the next steps, clamped to their ranges.
func (v *Vehicle) SetControls(c Controls) { v.controls = c.clamped() }

func (v *Vehicle) Fuel() float32 { return v.fuel }

func (v *Vehicle) FuelCapacity() float32 { return v.cfg.FuelCapacity }

// SetBoost scales the engine force; values below zero are treated as zero.
func (v *Vehicle) SetBoost(b float32) { v.boost = max(b, 0) }

func (v *Vehicle) SetSceneNode(n physics.SceneNode) { v.chassis.SetSceneNode(n) }

// Active reports whether the chassis takes part in the simulation.
func (v *Vehicle) Active() bool { return v.active && !v.destroyed }

// SetActive parks the vehicle outside the simulation or brings it back,
// keeping its engine handles either way.
func (v *Vehicle) SetActive(active bool) {
	if v.destroyed || v.active == active {
		return
	}
	v.active = active
	if active {
		v.world.AddPhysicsObject(v.chassis)
	} else {
		v.chassis.RemoveFromWorld()
	}
	v.log.Debug().Bool("active", active).Msg("Vehicle: activity changed")
}

// Step applies drivetrain, brakes, suspension, grip and aerodynamics for one
// fixed step of length dt.
func (v *Vehicle) Step(dt float32) {
	if v.destroyed || !v.active || !v.chassis.InWorld() || dt <= 0 {
		return
	}
	c := v.controls

	throttle := c.Accelerate * (1 - c.Clutch)
	if v.fuel <= 0 {
		throttle = 0
	}
	v.burn(throttle, dt)

	steer := c.Steer * v.cfg.MaxSteerAngle
	for _, w := range v.wheels {
		if w.cfg.Front {
			w.SetSteer(steer)
		}
		w.locked = c.Handbrake && !w.cfg.Front
	}

	v.drive(throttle*v.cfg.EngineForce*v.boost, dt)
	v.brake(c.Brake*v.cfg.BrakeForce, dt)
	if c.Handbrake {
		v.handbrake(dt)
	}

	for _, w := range v.wheels {
		w.Update(dt)
	}

	v.grip(dt)
	v.aero()
}

// Update mirrors the chassis and wheel poses out to their scene nodes.
func (v *Vehicle) Update(currentTime float64) {
	if v.destroyed {
		return
	}
	v.chassis.Update(currentTime)
	for _, w := range v.wheels {
		w.mirror()
	}
}

func (v *Vehicle) driven(w *Wheel) bool {
	return v.cfg.FourWheelDrive || !w.cfg.Front
}

// drive splits force across the driven wheels in contact, weighted by traction
func (v *Vehicle) drive(force, dt float32) {
	if force <= 0 {
		return
	}
	var total float32
	for _, w := range v.wheels {
		if w.hit && v.driven(w) {
			total += w.traction
		}
	}
	if total <= 0 {
		return
	}
	for _, w := range v.wheels {
		if !w.hit || !v.driven(w) {
			continue
		}
		f := min(force*w.traction/total, w.cfg.FrictionCeiling*w.force)
		if f > 0 {
			v.chassis.AddForceAtPos(rl.Vector3Scale(w.groundForward(), f), w.contact.Position)
		}
	}
}

// stopForce opposes rolling speed vf without reversing it within one step
func (v *Vehicle) stopForce(w *Wheel, limit, dt float32, wheels int) (rl.Vector3, bool) {
	fwd := w.groundForward()
	vf := rl.Vector3DotProduct(v.chassis.PointVelocity(w.contact.Position), fwd)
	if vf == 0 || limit <= 0 {
		return rl.Vector3{}, false
	}
	stop := v.chassis.Mass() * absf(vf) / (dt * float32(wheels))
	f := min(limit, stop)
	if vf > 0 {
		f = -f
	}
	return rl.Vector3Scale(fwd, f), true
}

func (v *Vehicle) brake(force, dt float32) {
	if force <= 0 {
		return
	}
	n := v.contacts()
	if n == 0 {
		return
	}
	share := force / float32(n)
	for _, w := range v.wheels {
		if !w.hit {
			continue
		}
		limit := min(share, w.cfg.FrictionCeiling*w.force)
		if f, ok := v.stopForce(w, limit, dt, n); ok {
			v.chassis.AddForceAtPos(f, w.contact.Position)
		}
	}
}

// handbrake locks the rear wheels with a higher friction than the service brake
func (v *Vehicle) handbrake(dt float32) {
	n := v.contacts()
	if n == 0 {
		return
	}
	for _, w := range v.wheels {
		if !w.hit || w.cfg.Front {
			continue
		}
		if f, ok := v.stopForce(w, v.cfg.HandbrakeFriction*w.force, dt, n); ok {
			v.chassis.AddForceAtPos(f, w.contact.Position)
		}
	}
}

// grip resists sideways slip at every wheel in contact, up to its friction limit
func (v *Vehicle) grip(dt float32) {
	n := v.contacts()
	if n == 0 {
		return
	}
	share := v.chassis.Mass() / float32(n)
	for _, w := range v.wheels {
		if !w.hit {
			continue
		}
		side := w.groundSide()
		vs := rl.Vector3DotProduct(v.chassis.PointVelocity(w.contact.Position), side)
		limit := w.cfg.FrictionCeiling * w.cfg.Grip * w.force
		if w.locked {
			limit *= handbrakeGrip
		}
		f := -vs * share / dt * lateralResponse
		f = min(max(f, -limit), limit)
		if f != 0 {
			v.chassis.AddForceAtPos(rl.Vector3Scale(side, f), w.contact.Position)
		}
	}
}

// aero applies drag against the velocity and downforce along chassis down,
// both growing with speed squared
func (v *Vehicle) aero() {
	vel := v.chassis.LinearVelocity()
	speed := rl.Vector3Length(vel)
	if speed == 0 {
		return
	}
	v.chassis.AddForce(rl.Vector3Scale(vel, -v.cfg.Drag*speed))
	up := v.chassis.Axis(rl.Vector3{Y: 1})
	v.chassis.AddForce(rl.Vector3Scale(up, -v.cfg.Downforce*speed*speed))
}

func (v *Vehicle) contacts() int {
	n := 0
	for _, w := range v.wheels {
		if w.hit {
			n++
		}
	}
	return n
}

func (v *Vehicle) burn(throttle, dt float32) {
	if throttle <= 0 || v.cfg.FuelConsumption <= 0 {
		return
	}
	v.fuel -= throttle * v.cfg.FuelConsumption * dt
	if v.fuel > 0 {
		return
	}
	v.fuel = 0
	if !v.empty {
		v.empty = true
		v.metrics.fuelEmpty()
		v.log.Info().Msg("Vehicle: out of fuel")
		v.FuelEmpty.Invoke()
	}
}

// Properties derives speed, weight, aerodynamic loads and per-wheel traction.
func (v *Vehicle) Properties() Properties {
	speed := rl.Vector3Length(v.chassis.LinearVelocity())
	g := rl.Vector3Length(v.world.Settings().Gravity)
	p := Properties{
		Speed:     speed,
		Weight:    v.chassis.Mass() * g,
		Drag:      v.cfg.Drag * speed * speed,
		Downforce: v.cfg.Downforce * speed * speed,
		Boost:     v.boost,
		Traction:  make([]float32, len(v.wheels)),
	}
	for i, w := range v.wheels {
		p.Traction[i] = w.traction
	}
	return p
}

// FillUp moves fuel from the bowser into the tank, up to its capacity, and
// returns the amount transferred.
func (v *Vehicle) FillUp(b *Bowser) float32 {
	if b == nil || v.destroyed {
		return 0
	}
	got := b.dispense(v.cfg.FuelCapacity - v.fuel)
	if got <= 0 {
		return 0
	}
	v.fuel = min(v.fuel+got, v.cfg.FuelCapacity)
	v.empty = false
	v.metrics.fuelDispensed(got)
	v.log.Info().
		Float32("amount", got).
		Float32("fuel", v.fuel).
		Float32("bowserStock", b.Stock).
		Msg("Vehicle: filled up")
	return got
}

// AssignPlayer seats p in the driver's seat.
func (v *Vehicle) AssignPlayer(p *player.Player) error {
	return v.seats[0].AssignPlayer(p)
}

// SeatFor returns the seat p occupies in this vehicle, nil if none.
func (v *Vehicle) SeatFor(p *player.Player) *Seat {
	if p == nil {
		return nil
	}
	for _, s := range v.seats {
		if s.occupied && s.occupant == p.ID() && p.Seat() == player.Seat(s) {
			return s
		}
	}
	return nil
}

// EjectAll ejects every occupant found in players and returns how many left.
// Seats whose occupant is unknown to players are freed.
func (v *Vehicle) EjectAll(players *player.Registry) int {
	n := 0
	for _, s := range v.seats {
		if !s.occupied {
			continue
		}
		p, ok := players.Get(s.occupant)
		if ok && s.EjectPlayer(p) == nil {
			n++
			continue
		}
		s.Vacate(s.occupant)
	}
	return n
}

// Destroy unregisters the vehicle and releases its wheels and chassis.
// Occupants should be ejected first.
func (v *Vehicle) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.world.RemoveController(v)
	for _, w := range v.wheels {
		w.destroy()
	}
	v.chassis.Release()
	v.log.Debug().Msg("Vehicle: destroyed")
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
