package dynamics

import (
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Body is a rigid body integrated by its World.
type Body struct {
	world *World

	pos    rl.Vector3
	rot    rl.Quaternion
	linVel rl.Vector3
	angVel rl.Vector3 // radians per second
	force  rl.Vector3
	torque rl.Vector3

	mass       Mass
	invMass    float32
	invInertia rl.Vector3 // local principal axes
	iw         mgl32.Mat3 // world inverse inertia, refreshed every step

	LinearDamping  float32
	AngularDamping float32
	UseGravity     bool

	enabled   bool
	destroyed bool
	data      any
}

// NewBody creates a body with unit mass at the origin. The body is enabled.
func (w *World) NewBody() *Body {
	b := &Body{
		world:      w,
		rot:        rl.QuaternionIdentity(),
		UseGravity: true,
		enabled:    true,
	}
	b.SetMass(Mass{Mass: 1, Inertia: rl.Vector3{X: 1, Y: 1, Z: 1}})
	w.bodies = append(w.bodies, b)
	return b
}

// Destroy removes the body from its world. Safe to call more than once.
func (b *Body) Destroy() {
	if b == nil || b.destroyed {
		return
	}
	b.destroyed = true
	b.enabled = false
	if b.world != nil {
		b.world.removeBody(b)
	}
}

func (b *Body) Destroyed() bool { return b.destroyed }

func (b *Body) SetMass(m Mass) {
	b.mass = m
	if m.Mass > 0 {
		b.invMass = 1 / m.Mass
	} else {
		b.invMass = 0
	}
	b.invInertia = rl.Vector3{}
	if m.Inertia.X > 0 {
		b.invInertia.X = 1 / m.Inertia.X
	}
	if m.Inertia.Y > 0 {
		b.invInertia.Y = 1 / m.Inertia.Y
	}
	if m.Inertia.Z > 0 {
		b.invInertia.Z = 1 / m.Inertia.Z
	}
}

func (b *Body) Mass() Mass { return b.mass }

func (b *Body) Position() rl.Vector3 { return b.pos }

func (b *Body) SetPosition(p rl.Vector3) { b.pos = p }

func (b *Body) Quaternion() rl.Quaternion { return b.rot }

func (b *Body) SetQuaternion(q rl.Quaternion) { b.rot = rl.QuaternionNormalize(q) }

func (b *Body) LinearVel() rl.Vector3 { return b.linVel }

func (b *Body) SetLinearVel(v rl.Vector3) { b.linVel = v }

func (b *Body) AngularVel() rl.Vector3 { return b.angVel }

func (b *Body) SetAngularVel(v rl.Vector3) { b.angVel = v }

func (b *Body) Enabled() bool { return b.enabled }

// Enable puts the body back into the step.
func (b *Body) Enable() {
	if b.destroyed {
		return
	}
	b.enabled = true
}

// Disable excludes the body from stepping; its state is kept.
func (b *Body) Disable() { b.enabled = false }

func (b *Body) Data() any { return b.data }

func (b *Body) SetData(d any) { b.data = d }

// AddForce accumulates a world-space force at the center of mass.
func (b *Body) AddForce(f rl.Vector3) {
	b.force = rl.Vector3Add(b.force, f)
}

// AddTorque accumulates a world-space torque.
func (b *Body) AddTorque(t rl.Vector3) {
	b.torque = rl.Vector3Add(b.torque, t)
}

// AddForceAtPos accumulates a world-space force applied at a world point.
func (b *Body) AddForceAtPos(f, p rl.Vector3) {
	b.force = rl.Vector3Add(b.force, f)
	b.torque = rl.Vector3Add(b.torque, cross(rl.Vector3Subtract(p, b.pos), f))
}

// Force returns the force accumulated since the last step.
func (b *Body) Force() rl.Vector3 { return b.force }

// PointVel returns the world velocity of a world point rigidly attached to the body.
func (b *Body) PointVel(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(b.linVel, cross(b.angVel, rl.Vector3Subtract(p, b.pos)))
}

// RelPointPos converts a body-local point to world space.
func (b *Body) RelPointPos(p rl.Vector3) rl.Vector3 {
	return toWorld(p, b.pos, b.rot)
}

// VectorToWorld rotates a body-local direction into world space.
func (b *Body) VectorToWorld(v rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(v, b.rot)
}

// invInertiaWorld returns R * diag(invI) * R^T
func (b *Body) invInertiaWorld() mgl32.Mat3 {
	r := rotationMat3(b.rot)
	return r.Mul3(mgl32.Diag3(toVec(b.invInertia))).Mul3(r.Transpose())
}

func (b *Body) applyImpulse(p, r rl.Vector3, iw mgl32.Mat3) {
	b.linVel = rl.Vector3Add(b.linVel, rl.Vector3Scale(p, b.invMass))
	b.angVel = rl.Vector3Add(b.angVel, fromVec(iw.Mul3x1(toVec(cross(r, p)))))
}
