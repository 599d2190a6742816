package dynamics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type rayHit struct {
	t      float32
	normal rl.Vector3
}

func (h *rayHit) take(t float32, n rl.Vector3, maxDistance float32) {
	if t < 0 || t > maxDistance {
		return
	}
	if h.t < 0 || t < h.t {
		h.t = t
		h.normal = n
	}
}

// collideRay intersects ray r with g and reports the nearest hit
func collideRay(r, g *Geom) (ContactGeom, bool) {
	origin, dir := r.Ray()
	maxDistance := r.rayLen
	hit := rayHit{t: -1}

	switch g.class {
	case SphereClass:
		raySphere(origin, dir, g.Position(), g.radius, maxDistance, &hit)
	case BoxClass:
		pos, rot := g.Position(), g.Quaternion()
		lo := toLocal(origin, pos, rot)
		ld := rl.Vector3RotateByQuaternion(dir, rl.QuaternionInvert(rot))
		if t, n, ok := rayBox(lo, ld, rl.Vector3Negate(g.halfSize), g.halfSize, maxDistance); ok {
			hit.take(t, rl.Vector3RotateByQuaternion(n, rot), maxDistance)
		}
	case CapsuleClass, CylinderClass:
		pos, rot := g.Position(), g.Quaternion()
		lo := toLocal(origin, pos, rot)
		ld := rl.Vector3RotateByQuaternion(dir, rl.QuaternionInvert(rot))
		local := rayHit{t: -1}
		rayCylinderSide(lo, ld, g.radius, g.halfLen, maxDistance, &local)
		if g.class == CylinderClass {
			rayCaps(lo, ld, g.radius, g.halfLen, maxDistance, &local)
		} else {
			raySphere(lo, ld, rl.Vector3{Y: -g.halfLen}, g.radius, maxDistance, &local)
			raySphere(lo, ld, rl.Vector3{Y: g.halfLen}, g.radius, maxDistance, &local)
		}
		if local.t >= 0 {
			hit.take(local.t, rl.Vector3RotateByQuaternion(local.normal, rot), maxDistance)
		}
	case PlaneClass:
		denom := dot(g.normal, dir)
		if absf(denom) > contactEps {
			t := (g.dist - dot(g.normal, origin)) / denom
			n := g.normal
			if denom > 0 {
				n = rl.Vector3Negate(n)
			}
			hit.take(t, n, maxDistance)
		}
	case TriMeshClass, HeightfieldClass:
		pos, rot := g.Position(), g.Quaternion()
		lo := toLocal(origin, pos, rot)
		ld := rl.Vector3RotateByQuaternion(dir, rl.QuaternionInvert(rot))
		end := rl.Vector3Add(lo, rl.Vector3Scale(ld, maxDistance))
		box := AABB{Min: rl.Vector3Min(lo, end), Max: rl.Vector3Max(lo, end)}
		local := rayHit{t: -1}
		if g.class == HeightfieldClass {
			for _, tri := range g.field.triangles(box, nil) {
				rayTriangle(lo, ld, &tri, maxDistance, &local)
			}
		} else {
			for _, i := range g.mesh.query(box, nil) {
				rayTriangle(lo, ld, &g.mesh.Triangles[i], maxDistance, &local)
			}
		}
		if local.t >= 0 {
			hit.take(local.t, rl.Vector3RotateByQuaternion(local.normal, rot), maxDistance)
		}
	}

	if hit.t < 0 {
		return ContactGeom{}, false
	}
	return ContactGeom{
		Pos:    rl.Vector3Add(origin, rl.Vector3Scale(dir, hit.t)),
		Normal: hit.normal,
		Depth:  hit.t,
		G1:     r,
		G2:     g,
	}, true
}

func raySphere(origin, dir, center rl.Vector3, radius, maxDistance float32, hit *rayHit) {
	oc := rl.Vector3Subtract(origin, center)
	b := 2.0 * dot(oc, dir)
	c := dot(oc, oc) - radius*radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return
	}
	sq := float32(math.Sqrt(float64(discriminant)))
	t := (-b - sq) / 2
	if t < 0 {
		t = (-b + sq) / 2
	}
	if t < 0 || t > maxDistance {
		return
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
	hit.take(t, rl.Vector3Normalize(rl.Vector3Subtract(point, center)), maxDistance)
}

// rayBox is a slab test against a local axis-aligned box
func rayBox(origin, dir, min, max rl.Vector3, maxDistance float32) (float32, rl.Vector3, bool) {
	tmin := float32(-1e30)
	tmax := float32(1e30)
	var enter rl.Vector3

	o := [3]float32{origin.X, origin.Y, origin.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	lo := [3]float32{min.X, min.Y, min.Z}
	hi := [3]float32{max.X, max.Y, max.Z}

	for k := 0; k < 3; k++ {
		if d[k] == 0 {
			if o[k] < lo[k] || o[k] > hi[k] {
				return 0, rl.Vector3{}, false
			}
			continue
		}
		t1 := (lo[k] - o[k]) / d[k]
		t2 := (hi[k] - o[k]) / d[k]
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			enter = rl.Vector3{}
			switch k {
			case 0:
				enter.X = sign
			case 1:
				enter.Y = sign
			case 2:
				enter.Z = sign
			}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, rl.Vector3{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return 0, rl.Vector3{}, false
	}
	if tmin < 0 {
		// origin inside the box
		return 0, rl.Vector3Negate(dir), true
	}
	return tmin, enter, true
}

func rayCylinderSide(origin, dir rl.Vector3, radius, halfLen, maxDistance float32, hit *rayHit) {
	a := dir.X*dir.X + dir.Z*dir.Z
	if a < contactEps {
		return
	}
	b := 2 * (origin.X*dir.X + origin.Z*dir.Z)
	c := origin.X*origin.X + origin.Z*origin.Z - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return
	}
	sq := float32(math.Sqrt(float64(disc)))
	for _, t := range [2]float32{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t < 0 || t > maxDistance {
			continue
		}
		p := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
		if absf(p.Y) > halfLen {
			continue
		}
		hit.take(t, rl.Vector3Normalize(rl.Vector3{X: p.X, Z: p.Z}), maxDistance)
		return
	}
}

func rayCaps(origin, dir rl.Vector3, radius, halfLen, maxDistance float32, hit *rayHit) {
	if absf(dir.Y) < contactEps {
		return
	}
	for _, y := range [2]float32{-halfLen, halfLen} {
		t := (y - origin.Y) / dir.Y
		if t < 0 || t > maxDistance {
			continue
		}
		p := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
		if p.X*p.X+p.Z*p.Z > radius*radius {
			continue
		}
		n := axisY
		if y < 0 {
			n = rl.Vector3Negate(n)
		}
		hit.take(t, n, maxDistance)
	}
}

// rayTriangle is the Moller-Trumbore intersection; both faces are hit and the
// normal is turned toward the ray origin
func rayTriangle(origin, dir rl.Vector3, tri *Triangle, maxDistance float32, hit *rayHit) {
	e1 := rl.Vector3Subtract(tri.V1, tri.V0)
	e2 := rl.Vector3Subtract(tri.V2, tri.V0)
	p := cross(dir, e2)
	det := dot(e1, p)
	if absf(det) < contactEps {
		return
	}
	inv := 1 / det
	s := rl.Vector3Subtract(origin, tri.V0)
	u := dot(s, p) * inv
	if u < 0 || u > 1 {
		return
	}
	q := cross(s, e1)
	v := dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return
	}
	t := dot(e2, q) * inv
	n := tri.Normal
	if dot(n, dir) > 0 {
		n = rl.Vector3Negate(n)
	}
	hit.take(t, n, maxDistance)
}
