package physics

import (
	"sync/atomic"

	"drive3d/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind is the collision shape of a PhysicsObject.
type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindCapsule
	KindCylinder
	KindTriMesh
	KindHeightmap
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindCylinder:
		return "cylinder"
	case KindTriMesh:
		return "trimesh"
	case KindHeightmap:
		return "heightmap"
	}
	return "unknown"
}

// SceneNode receives the mirrored pose once per Update.
type SceneNode interface {
	SetPose(position rl.Vector3, rotation rl.Quaternion)
}

// PhysicsObject owns a collision geom and, for dynamic objects, the rigid body
// it is attached to. Objects are reference counted: removal from the world is
// synchronous, while the engine handles are released on removal or when the
// last reference goes away, whichever comes first.
type PhysicsObject struct {
	Name string

	kind  Kind
	world *PhysicsWorld
	body  *dynamics.Body
	geom  *dynamics.Geom

	position rl.Vector3
	rotation rl.Quaternion
	linVel   rl.Vector3
	angVel   rl.Vector3
	radius   float32

	material *Material
	modifier ContactModifier
	node     SceneNode
	dynamic  bool

	refs     atomic.Int32
	inWorld  bool
	released bool
}

func newObject(w *PhysicsWorld, kind Kind, geom *dynamics.Geom, body *dynamics.Body) *PhysicsObject {
	o := &PhysicsObject{
		kind:     kind,
		world:    w,
		geom:     geom,
		body:     body,
		rotation: rl.QuaternionIdentity(),
		dynamic:  body != nil,
	}
	o.refs.Store(1)
	geom.SetData(o)
	if body != nil {
		body.SetData(o)
		geom.SetBody(body)
	}
	o.radius = geom.BoundingRadius()
	return o
}

func (o *PhysicsObject) Kind() Kind { return o.kind }

// HasBody reports whether the object takes part in dynamics.
func (o *PhysicsObject) HasBody() bool { return o.body != nil }

// IsStatic reports whether the object is collision-only.
func (o *PhysicsObject) IsStatic() bool { return !o.HasBody() }

// Body returns the engine body, nil for static or released objects.
func (o *PhysicsObject) Body() *dynamics.Body { return o.body }

// Geom returns the engine geom, nil once released.
func (o *PhysicsObject) Geom() *dynamics.Geom { return o.geom }

func (o *PhysicsObject) World() *PhysicsWorld { return o.world }

func (o *PhysicsObject) InWorld() bool { return o.inWorld }

// Released reports whether the engine handles have been destroyed.
func (o *PhysicsObject) Released() bool { return o.released }

func (o *PhysicsObject) Position() rl.Vector3 { return o.position }

func (o *PhysicsObject) Rotation() rl.Quaternion { return o.rotation }

func (o *PhysicsObject) LinearVelocity() rl.Vector3 { return o.linVel }

func (o *PhysicsObject) AngularVelocity() rl.Vector3 { return o.angVel }

func (o *PhysicsObject) BoundingRadius() float32 { return o.radius }

// SetPose teleports the object.
func (o *PhysicsObject) SetPose(position rl.Vector3, rotation rl.Quaternion) {
	o.position = position
	o.rotation = rotation
	if o.geom == nil {
		return
	}
	o.geom.SetPosition(position)
	o.geom.SetQuaternion(rotation)
}

// SetLinearVelocity sets the body velocity; ignored for static objects.
func (o *PhysicsObject) SetLinearVelocity(v rl.Vector3) {
	if o.body == nil {
		return
	}
	o.body.SetLinearVel(v)
	o.linVel = v
}

func (o *PhysicsObject) SetAngularVelocity(v rl.Vector3) {
	if o.body == nil {
		return
	}
	o.body.SetAngularVel(v)
	o.angVel = v
}

// AddForceAtPos pushes the body with a world force at a world point.
func (o *PhysicsObject) AddForceAtPos(f, p rl.Vector3) {
	if o.body == nil {
		return
	}
	o.body.AddForceAtPos(f, p)
}

func (o *PhysicsObject) AddForce(f rl.Vector3) {
	if o.body == nil {
		return
	}
	o.body.AddForce(f)
}

func (o *PhysicsObject) AddTorque(t rl.Vector3) {
	if o.body == nil {
		return
	}
	o.body.AddTorque(t)
}

// Mass returns the body mass, 0 for static objects.
func (o *PhysicsObject) Mass() float32 {
	if o.body == nil {
		return 0
	}
	return o.body.Mass().Mass
}

// PointVelocity returns the world velocity of a world point on the body.
func (o *PhysicsObject) PointVelocity(p rl.Vector3) rl.Vector3 {
	if o.body == nil {
		return rl.Vector3{}
	}
	return o.body.PointVel(p)
}

// LocalToWorld converts an object-local point to world space.
func (o *PhysicsObject) LocalToWorld(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(o.position, rl.Vector3RotateByQuaternion(p, o.rotation))
}

// Axis returns the object-local direction d in world space.
func (o *PhysicsObject) Axis(d rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(d, o.rotation)
}

func (o *PhysicsObject) Material() *Material { return o.material }

// SetMaterial overrides the world's default surface parameters; nil restores them.
func (o *PhysicsObject) SetMaterial(m *Material) { o.material = m }

// SetContactModifier installs a hook run on every contact involving the object.
func (o *PhysicsObject) SetContactModifier(fn ContactModifier) { o.modifier = fn }

func (o *PhysicsObject) SetSceneNode(n SceneNode) { o.node = n }

func (o *PhysicsObject) SceneNode() SceneNode { return o.node }

// Dynamic reports whether the object takes part in dynamic-dynamic collision dispatch.
func (o *PhysicsObject) Dynamic() bool { return o.dynamic }

// SetDynamic includes or excludes a bodied object from dynamic-dynamic dispatch.
func (o *PhysicsObject) SetDynamic(d bool) {
	o.dynamic = d && o.body != nil
}

// Retain adds a reference.
func (o *PhysicsObject) Retain() *PhysicsObject {
	o.refs.Add(1)
	return o
}

// Release drops a reference. The last release removes the object from its
// world and frees the engine handles.
func (o *PhysicsObject) Release() {
	n := o.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		o.refs.Store(0)
		return
	}
	if o.world != nil {
		o.world.RemovePhysicsObject(o)
		return
	}
	o.releaseHandles()
}

func (o *PhysicsObject) Refs() int { return int(o.refs.Load()) }

// RemoveFromWorld pulls the object out of stepping and dispatch but keeps its
// engine handles; AddPhysicsObject puts it back.
func (o *PhysicsObject) RemoveFromWorld() {
	if o.world == nil {
		return
	}
	o.world.detach(o)
}

// Update mirrors the engine pose into the object and out to the scene node.
func (o *PhysicsObject) Update(currentTime float64) {
	o.mirror()
	if o.node != nil {
		o.node.SetPose(o.position, o.rotation)
	}
}

func (o *PhysicsObject) mirror() {
	if o.body == nil {
		return
	}
	o.position = o.body.Position()
	o.rotation = o.body.Quaternion()
	o.linVel = o.body.LinearVel()
	o.angVel = o.body.AngularVel()
}

// releaseHandles destroys body and geom together, once.
func (o *PhysicsObject) releaseHandles() {
	if o.released {
		return
	}
	o.released = true
	if o.geom != nil {
		o.geom.Destroy()
		o.geom = nil
	}
	if o.body != nil {
		o.body.Destroy()
		o.body = nil
	}
	o.dynamic = false
}

// surface resolves the parameters used for contacts
func (o *PhysicsObject) surface(s *Settings) Material {
	if o == nil || o.material == nil {
		return s.defaultMaterial()
	}
	return *o.material
}
