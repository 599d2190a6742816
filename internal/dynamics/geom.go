package dynamics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Class identifies a geom's primitive kind.
type Class int

const (
	SphereClass Class = iota
	BoxClass
	CapsuleClass
	CylinderClass
	PlaneClass
	RayClass
	TriMeshClass
	HeightfieldClass
)

func (c Class) String() string {
	switch c {
	case SphereClass:
		return "sphere"
	case BoxClass:
		return "box"
	case CapsuleClass:
		return "capsule"
	case CylinderClass:
		return "cylinder"
	case PlaneClass:
		return "plane"
	case RayClass:
		return "ray"
	case TriMeshClass:
		return "trimesh"
	case HeightfieldClass:
		return "heightfield"
	}
	return "unknown"
}

// terrain classes never move and never collide with each other
func (c Class) terrain() bool {
	return c == PlaneClass || c == TriMeshClass || c == HeightfieldClass
}

// Geom is a collision shape. When attached to a Body it follows the body's pose.
// Capsules and cylinders are aligned with their local Y axis.
type Geom struct {
	class Class
	space *Space
	body  *Body

	pos rl.Vector3
	rot rl.Quaternion

	halfSize rl.Vector3 // box
	radius   float32    // sphere, capsule, cylinder
	halfLen  float32    // capsule, cylinder: half of the axial length

	normal rl.Vector3 // plane: dot(normal, p) = dist
	dist   float32

	rayDir rl.Vector3
	rayLen float32

	mesh  *TriMeshData
	field *HeightfieldData

	enabled   bool
	destroyed bool
	data      any
}

func newGeom(space *Space, class Class) *Geom {
	g := &Geom{class: class, rot: rl.QuaternionIdentity(), enabled: true}
	if space != nil {
		space.Add(g)
	}
	return g
}

// NewSphere creates a sphere geom and inserts it into space (which may be nil).
func NewSphere(space *Space, radius float32) *Geom {
	g := newGeom(space, SphereClass)
	g.radius = radius
	return g
}

// NewBox creates a box geom with the given full side lengths.
func NewBox(space *Space, size rl.Vector3) *Geom {
	g := newGeom(space, BoxClass)
	g.halfSize = rl.Vector3Scale(size, 0.5)
	return g
}

// NewCapsule creates a capsule; length excludes the hemispherical caps.
func NewCapsule(space *Space, radius, length float32) *Geom {
	g := newGeom(space, CapsuleClass)
	g.radius = radius
	g.halfLen = length / 2
	return g
}

// NewCylinder creates a flat-capped cylinder of the given axial length.
func NewCylinder(space *Space, radius, length float32) *Geom {
	g := newGeom(space, CylinderClass)
	g.radius = radius
	g.halfLen = length / 2
	return g
}

// NewPlane creates an infinite static plane dot(normal, p) = dist.
func NewPlane(space *Space, normal rl.Vector3, dist float32) *Geom {
	g := newGeom(space, PlaneClass)
	g.normal = rl.Vector3Normalize(normal)
	g.dist = dist
	return g
}

// NewRay creates a ray of the given length pointing along +Z until SetRay is called.
func NewRay(space *Space, length float32) *Geom {
	g := newGeom(space, RayClass)
	g.rayLen = length
	g.rayDir = axisZ
	return g
}

// NewTriMesh creates a triangle mesh geom from prepared mesh data.
func NewTriMesh(space *Space, data *TriMeshData) *Geom {
	g := newGeom(space, TriMeshClass)
	g.mesh = data
	return g
}

// NewHeightfield creates a heightfield geom from prepared heightfield data.
func NewHeightfield(space *Space, data *HeightfieldData) *Geom {
	g := newGeom(space, HeightfieldClass)
	g.field = data
	return g
}

// Destroy removes the geom from its space and detaches it. Safe to call more than once.
func (g *Geom) Destroy() {
	if g == nil || g.destroyed {
		return
	}
	if g.space != nil {
		g.space.Remove(g)
	}
	g.body = nil
	g.destroyed = true
}

func (g *Geom) Destroyed() bool { return g.destroyed }

func (g *Geom) Class() Class { return g.class }

func (g *Geom) Space() *Space { return g.space }

func (g *Geom) Body() *Body { return g.body }

// SetBody attaches the geom to b (nil detaches). The geom takes the body's pose.
func (g *Geom) SetBody(b *Body) {
	g.body = b
	if b != nil {
		g.pos = b.pos
		g.rot = b.rot
	}
}

func (g *Geom) Position() rl.Vector3 {
	if g.body != nil {
		return g.body.pos
	}
	return g.pos
}

func (g *Geom) Quaternion() rl.Quaternion {
	if g.body != nil {
		return g.body.rot
	}
	return g.rot
}

func (g *Geom) SetPosition(p rl.Vector3) {
	if g.body != nil {
		g.body.pos = p
	}
	g.pos = p
}

func (g *Geom) SetQuaternion(q rl.Quaternion) {
	q = rl.QuaternionNormalize(q)
	if g.body != nil {
		g.body.rot = q
	}
	g.rot = q
}

func (g *Geom) Enabled() bool { return g.enabled && !g.destroyed }

func (g *Geom) Enable() { g.enabled = true }

func (g *Geom) Disable() { g.enabled = false }

func (g *Geom) Data() any { return g.data }

func (g *Geom) SetData(d any) { g.data = d }

func (g *Geom) Radius() float32 { return g.radius }

func (g *Geom) Length() float32 { return g.halfLen * 2 }

func (g *Geom) Size() rl.Vector3 { return rl.Vector3Scale(g.halfSize, 2) }

// SetRay places a ray geom at origin pointing along dir.
func (g *Geom) SetRay(origin, dir rl.Vector3) {
	g.pos = origin
	g.rayDir = rl.Vector3Normalize(dir)
}

// Ray returns the ray origin and unit direction.
func (g *Geom) Ray() (rl.Vector3, rl.Vector3) { return g.pos, g.rayDir }

func (g *Geom) RayLength() float32 { return g.rayLen }

func (g *Geom) SetRayLength(l float32) { g.rayLen = l }

// BoundingRadius returns the radius of a sphere around the geom's origin enclosing it.
func (g *Geom) BoundingRadius() float32 {
	switch g.class {
	case SphereClass:
		return g.radius
	case BoxClass:
		return rl.Vector3Length(g.halfSize)
	case CapsuleClass:
		return g.halfLen + g.radius
	case CylinderClass:
		return sqrtf(g.halfLen*g.halfLen + g.radius*g.radius)
	case RayClass:
		return g.rayLen
	case TriMeshClass:
		return boundsRadius(g.mesh.bounds)
	case HeightfieldClass:
		return boundsRadius(g.field.bounds)
	}
	return float32(math.Inf(1))
}

func boundsRadius(b AABB) float32 {
	return rl.Vector3Length(rl.Vector3{
		X: math32Max(absf(b.Min.X), absf(b.Max.X)),
		Y: math32Max(absf(b.Min.Y), absf(b.Max.Y)),
		Z: math32Max(absf(b.Min.Z), absf(b.Max.Z)),
	})
}

func math32Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// capsuleSegment returns the world endpoints of a capsule/cylinder axis.
func (g *Geom) capsuleSegment() (rl.Vector3, rl.Vector3) {
	up := rl.Vector3RotateByQuaternion(rl.Vector3{Y: g.halfLen}, g.Quaternion())
	p := g.Position()
	return rl.Vector3Subtract(p, up), rl.Vector3Add(p, up)
}

// AABB returns the world-space axis-aligned bounds of the geom.
func (g *Geom) AABB() AABB {
	p := g.Position()
	switch g.class {
	case SphereClass:
		r := rl.Vector3{X: g.radius, Y: g.radius, Z: g.radius}
		return AABB{Min: rl.Vector3Subtract(p, r), Max: rl.Vector3Add(p, r)}
	case BoxClass:
		axes := axesOf(g.Quaternion())
		var e rl.Vector3
		for i, h := range [3]float32{g.halfSize.X, g.halfSize.Y, g.halfSize.Z} {
			e.X += absf(axes[i].X) * h
			e.Y += absf(axes[i].Y) * h
			e.Z += absf(axes[i].Z) * h
		}
		return AABB{Min: rl.Vector3Subtract(p, e), Max: rl.Vector3Add(p, e)}
	case CapsuleClass, CylinderClass:
		a, b := g.capsuleSegment()
		r := rl.Vector3{X: g.radius, Y: g.radius, Z: g.radius}
		return AABB{
			Min: rl.Vector3Subtract(rl.Vector3Min(a, b), r),
			Max: rl.Vector3Add(rl.Vector3Max(a, b), r),
		}
	case RayClass:
		end := rl.Vector3Add(g.pos, rl.Vector3Scale(g.rayDir, g.rayLen))
		return AABB{Min: rl.Vector3Min(g.pos, end), Max: rl.Vector3Max(g.pos, end)}
	case TriMeshClass:
		return g.mesh.bounds.transform(p, g.Quaternion())
	case HeightfieldClass:
		return g.field.bounds.transform(p, g.Quaternion())
	}
	inf := float32(math.MaxFloat32)
	return AABB{Min: rl.Vector3{X: -inf, Y: -inf, Z: -inf}, Max: rl.Vector3{X: inf, Y: inf, Z: inf}}
}
