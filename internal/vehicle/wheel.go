package vehicle

import (
	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// airborneSpinDecay is the per-step spin kept by a wheel without ground contact
const airborneSpinDecay = 0.99

// Wheel is a ray-cast suspension corner. It composes the chassis object it
// pushes on and a RayCast that finds the ground below its suspension top.
type Wheel struct {
	cfg     WheelConfig
	index   int
	chassis *physics.PhysicsObject
	ray     *physics.RayCast
	node    physics.SceneNode

	top     rl.Vector3 // world suspension top
	up      rl.Vector3
	forward rl.Vector3
	side    rl.Vector3

	hit         bool
	contact     physics.Contact
	compression float32
	prev        float32
	atLimit     bool
	force       float32
	traction    float32

	steer    float32 // radians about chassis up
	spin     float32
	spinRate float32
	locked   bool
}

var _ physics.RayCaster = (*Wheel)(nil)

func newWheel(w *physics.PhysicsWorld, index int, cfg WheelConfig, chassis *physics.PhysicsObject) *Wheel {
	chassis.Retain()
	return &Wheel{
		cfg:         cfg,
		index:       index,
		chassis:     chassis,
		ray:         physics.NewRayCast(w, cfg.SuspensionMax+cfg.Radius, chassis),
		compression: cfg.SuspensionMin,
		prev:        cfg.SuspensionMin,
		up:          rl.Vector3{Y: 1},
		forward:     rl.Vector3{Z: 1},
		side:        rl.Vector3{X: 1},
	}
}

func (w *Wheel) Index() int { return w.index }

func (w *Wheel) Config() WheelConfig { return w.cfg }

func (w *Wheel) Front() bool { return w.cfg.Front }

// Contact reports whether the wheel touched ground on its last update, and the contact.
func (w *Wheel) Contact() (physics.Contact, bool) { return w.contact, w.hit }

func (w *Wheel) InContact() bool { return w.hit }

// Compression is the current suspension compression, always within
// [SuspensionMin, SuspensionMax].
func (w *Wheel) Compression() float32 { return w.compression }

// AtLimit reports whether the suspension is fully compressed against its stop.
func (w *Wheel) AtLimit() bool { return w.atLimit }

// Force is the suspension force magnitude applied on the last update.
func (w *Wheel) Force() float32 { return w.force }

func (w *Wheel) Traction() float32 { return w.traction }

func (w *Wheel) Steer() float32 { return w.steer }

func (w *Wheel) SetSteer(angle float32) { w.steer = angle }

// Forward is the rolling direction including steer.
func (w *Wheel) Forward() rl.Vector3 { return w.forward }

func (w *Wheel) Side() rl.Vector3 { return w.side }

func (w *Wheel) Spin() float32 { return w.spin }

func (w *Wheel) SetSceneNode(n physics.SceneNode) { w.node = n }

func (w *Wheel) SceneNode() physics.SceneNode { return w.node }

// RayCast recomputes the suspension frame from the chassis pose and probes
// for ground along the chassis down axis.
func (w *Wheel) RayCast() {
	if w.ray == nil {
		w.hit = false
		return
	}
	w.top = w.chassis.LocalToWorld(w.cfg.Offset)
	w.up = w.chassis.Axis(rl.Vector3{Y: 1})

	heading := rl.QuaternionFromAxisAngle(w.up, w.steer)
	w.forward = rl.Vector3RotateByQuaternion(w.chassis.Axis(rl.Vector3{Z: 1}), heading)
	w.side = rl.Vector3CrossProduct(w.up, w.forward)

	w.hit = w.ray.Fire(w.top, rl.Vector3Negate(w.up))
	if w.hit {
		w.contact = w.ray.Contact()
	} else {
		w.contact = physics.Contact{}
	}
}

// Update runs one suspension step: ray, compression, spring-damper force
// applied to the chassis at the contact point, and traction.
func (w *Wheel) Update(dt float32) {
	if w.chassis.Released() || dt <= 0 {
		return
	}
	w.RayCast()

	if !w.hit {
		w.compression = w.cfg.SuspensionMin
		w.prev = w.cfg.SuspensionMin
		w.atLimit = false
		w.force = 0
		w.traction = 0
		w.spinRate *= airborneSpinDecay
		w.spin += w.spinRate * dt
		return
	}

	w.compression, w.atLimit = w.compress(w.ray.Distance())

	// damper rate from the previous step's compression
	f := w.cfg.K*w.compression + w.cfg.U*(w.compression-w.prev)/dt
	w.prev = w.compression
	w.force = max(f, 0)

	if w.force > 0 {
		w.chassis.AddForceAtPos(rl.Vector3Scale(w.up, w.force), w.contact.Position)
	}
	w.traction = min(max(w.force/(w.cfg.K*w.cfg.SuspensionMax), 0), w.cfg.FrictionCeiling)

	if w.locked {
		w.spinRate = 0
	} else {
		vf := rl.Vector3DotProduct(w.chassis.PointVelocity(w.contact.Position), w.forward)
		w.spinRate = vf / w.cfg.Radius
	}
	w.spin += w.spinRate * dt
}

// compress maps a ray hit distance to a compression inside the travel limits.
// A hit closer than the minimum spring length holds the bump stop.
func (w *Wheel) compress(d float32) (float32, bool) {
	spring := d - w.cfg.Radius
	if spring < w.cfg.SuspensionMin {
		return w.cfg.SuspensionMax, true
	}
	c := w.cfg.SuspensionMax - spring
	c = min(max(c, w.cfg.SuspensionMin), w.cfg.SuspensionMax)
	return c, c >= w.cfg.SuspensionMax
}

// groundForward is the rolling direction projected onto the contact plane
func (w *Wheel) groundForward() rl.Vector3 {
	return projectOnPlane(w.forward, w.contact.Normal)
}

func (w *Wheel) groundSide() rl.Vector3 {
	return projectOnPlane(w.side, w.contact.Normal)
}

func projectOnPlane(v, n rl.Vector3) rl.Vector3 {
	p := rl.Vector3Subtract(v, rl.Vector3Scale(n, rl.Vector3DotProduct(v, n)))
	if rl.Vector3Length(p) < 1e-6 {
		return v
	}
	return rl.Vector3Normalize(p)
}

// Hub returns the wheel center: the suspension top lowered by the spring length.
func (w *Wheel) Hub() rl.Vector3 {
	spring := w.cfg.SuspensionMax - w.compression
	return rl.Vector3Add(w.top, rl.Vector3Scale(w.up, -spring))
}

// Pose is the hub position and the wheel rotation including steer and spin.
func (w *Wheel) Pose() (rl.Vector3, rl.Quaternion) {
	rot := w.chassis.Rotation()
	rot = rl.QuaternionMultiply(rot, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, w.steer))
	rot = rl.QuaternionMultiply(rot, rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, w.spin))
	return w.Hub(), rot
}

func (w *Wheel) mirror() {
	if w.node == nil {
		return
	}
	pos, rot := w.Pose()
	w.node.SetPose(pos, rot)
}

func (w *Wheel) destroy() {
	if w.ray == nil {
		return
	}
	w.ray.Destroy()
	w.ray = nil
	w.chassis.Release()
}
