package physics

import (
	"drive3d/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RayCaster is implemented by anything that probes the world with a RayCast
// once per step (wheels, character bodies).
type RayCaster interface {
	RayCast()
}

// RayCast wraps a single ray geom owned by one object. After Fire it holds
// the nearest hit, or a cleared contact when nothing was hit.
type RayCast struct {
	world  *PhysicsWorld
	geom   *dynamics.Geom
	owner  *PhysicsObject
	length float32

	hit     bool
	contact Contact
	target  *PhysicsObject
}

// NewRayCast allocates a ray of the given maximum length. Hits on owner are ignored.
func NewRayCast(w *PhysicsWorld, length float32, owner *PhysicsObject) *RayCast {
	return &RayCast{
		world:  w,
		geom:   dynamics.NewRay(nil, length),
		owner:  owner,
		length: length,
	}
}

func (r *RayCast) Length() float32 { return r.length }

func (r *RayCast) SetLength(l float32) {
	r.length = l
	if r.geom != nil {
		r.geom.SetRayLength(l)
	}
}

// SetOwner changes the object whose own shape the ray ignores.
func (r *RayCast) SetOwner(o *PhysicsObject) { r.owner = o }

// Fire positions the ray and records the nearest hit. It reports whether anything was hit.
func (r *RayCast) Fire(origin, dir rl.Vector3) bool {
	r.hit = false
	r.contact = Contact{}
	r.target = nil
	if r.geom == nil || r.world == nil {
		return false
	}
	r.geom.SetRay(origin, dir)

	g, obj, ok := r.world.CastRay(r.geom, r.owner)
	if !ok {
		return false
	}
	r.hit = true
	r.target = obj
	r.contact = newContact(g, obj.surface(&r.world.settings))
	return true
}

// Hit reports whether the last Fire hit anything.
func (r *RayCast) Hit() bool { return r.hit }

// Distance is the hit distance from the ray origin, or the ray length on a miss.
func (r *RayCast) Distance() float32 {
	if !r.hit {
		return r.length
	}
	return r.contact.Depth
}

// Contact returns the last hit; its Depth is the distance along the ray.
func (r *RayCast) Contact() Contact { return r.contact }

// Target is the object hit last, nil for misses and the ground plane.
func (r *RayCast) Target() *PhysicsObject { return r.target }

// Destroy releases the ray geom. Safe to call more than once.
func (r *RayCast) Destroy() {
	if r.geom == nil {
		return
	}
	r.geom.Destroy()
	r.geom = nil
	r.hit = false
	r.contact = Contact{}
}
