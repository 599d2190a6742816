package dynamics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ContactGeom is one narrow-phase contact point. Normal points from G2 toward
// G1: moving G1 along Normal by Depth separates the pair. For ray contacts
// Depth is the distance from the ray origin.
type ContactGeom struct {
	Pos    rl.Vector3
	Normal rl.Vector3
	Depth  float32
	G1, G2 *Geom
}

const (
	contactEps   = 1e-6
	insideMargin = 1e-4
	rimSamples   = 8
)

// proxy is a sample sphere (r > 0) or point (r == 0) approximating a convex shape
type proxy struct {
	c rl.Vector3
	r float32
}

// Collide runs the narrow phase on a pair and returns at most max contacts.
func Collide(a, b *Geom, max int) []ContactGeom {
	if a == nil || b == nil || a == b || max <= 0 {
		return nil
	}

	var cs []ContactGeom
	switch {
	case a.class == RayClass:
		if c, ok := collideRay(a, b); ok {
			cs = append(cs, c)
		}
	case b.class == RayClass:
		if c, ok := collideRay(b, a); ok {
			cs = flip([]ContactGeom{c})
		}
	case a.class.terrain() && b.class.terrain():
		return nil
	case b.class.terrain():
		cs = collideTerrain(a, b)
	case a.class.terrain():
		cs = flip(collideTerrain(b, a))
	case a.class == SphereClass:
		if c, ok := sphereConvex(a.Position(), a.radius, b); ok {
			cs = append(cs, c)
		}
	case b.class == SphereClass:
		if c, ok := sphereConvex(b.Position(), b.radius, a); ok {
			cs = flip([]ContactGeom{c})
		}
	case a.class == BoxClass && b.class == BoxClass:
		cs = boxBox(a, b)
	default:
		cs = convexConvex(a, b)
	}

	if len(cs) > max {
		cs = cs[:max]
	}
	for i := range cs {
		cs[i].G1, cs[i].G2 = a, b
	}
	return cs
}

func flip(cs []ContactGeom) []ContactGeom {
	for i := range cs {
		cs[i].Normal = rl.Vector3Negate(cs[i].Normal)
	}
	return cs
}

// closestPoint returns the point of convex g closest to p and whether p is inside g.
func closestPoint(g *Geom, p rl.Vector3) (rl.Vector3, bool) {
	switch g.class {
	case SphereClass:
		d := rl.Vector3Subtract(p, g.Position())
		dist := rl.Vector3Length(d)
		if dist <= g.radius {
			return p, true
		}
		return rl.Vector3Add(g.Position(), rl.Vector3Scale(d, g.radius/dist)), false
	case BoxClass:
		o := boxOBB(g)
		if o.contains(p, 0) {
			return p, true
		}
		return o.closestPoint(p), false
	case CapsuleClass:
		a, b := g.capsuleSegment()
		q := closestPointOnSegment(p, a, b)
		d := rl.Vector3Subtract(p, q)
		dist := rl.Vector3Length(d)
		if dist <= g.radius {
			return p, true
		}
		return rl.Vector3Add(q, rl.Vector3Scale(d, g.radius/dist)), false
	case CylinderClass:
		l := toLocal(p, g.Position(), g.Quaternion())
		radial := sqrtf(l.X*l.X + l.Z*l.Z)
		if absf(l.Y) <= g.halfLen && radial <= g.radius {
			return p, true
		}
		q := rl.Vector3{X: l.X, Y: clampf(l.Y, -g.halfLen, g.halfLen), Z: l.Z}
		if radial > g.radius {
			q.X *= g.radius / radial
			q.Z *= g.radius / radial
		}
		return toWorld(q, g.Position(), g.Quaternion()), false
	}
	return p, false
}

// penetration returns the outward unit normal and surface distance for a point inside convex g.
func penetration(g *Geom, p rl.Vector3) (rl.Vector3, float32) {
	switch g.class {
	case SphereClass:
		d := rl.Vector3Subtract(p, g.Position())
		dist := rl.Vector3Length(d)
		if dist < contactEps {
			return axisY, g.radius
		}
		return rl.Vector3Scale(d, 1/dist), g.radius - dist
	case BoxClass:
		o := boxOBB(g)
		d := rl.Vector3Subtract(p, o.Center)
		best := float32(-1)
		var n rl.Vector3
		for k := 0; k < 3; k++ {
			proj := dot(d, o.Axes[k])
			depth := o.half(k) - absf(proj)
			if best < 0 || depth < best {
				best = depth
				n = o.Axes[k]
				if proj < 0 {
					n = rl.Vector3Negate(n)
				}
			}
		}
		return n, best
	case CapsuleClass:
		a, b := g.capsuleSegment()
		q := closestPointOnSegment(p, a, b)
		d := rl.Vector3Subtract(p, q)
		dist := rl.Vector3Length(d)
		if dist < contactEps {
			t, _ := planeBasis(rl.Vector3Normalize(rl.Vector3Subtract(b, a)))
			return t, g.radius
		}
		return rl.Vector3Scale(d, 1/dist), g.radius - dist
	case CylinderClass:
		rot := g.Quaternion()
		l := toLocal(p, g.Position(), rot)
		radial := sqrtf(l.X*l.X + l.Z*l.Z)
		capDepth := g.halfLen - absf(l.Y)
		sideDepth := g.radius - radial
		if capDepth < sideDepth {
			n := axisY
			if l.Y < 0 {
				n = rl.Vector3Negate(n)
			}
			return rl.Vector3RotateByQuaternion(n, rot), capDepth
		}
		n := axisX
		if radial > contactEps {
			n = rl.Vector3{X: l.X / radial, Z: l.Z / radial}
		}
		return rl.Vector3RotateByQuaternion(n, rot), sideDepth
	}
	return axisY, 0
}

func closestPointOnSegment(p, a, b rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	l2 := dot(ab, ab)
	if l2 < contactEps {
		return a
	}
	t := clampf(dot(rl.Vector3Subtract(p, a), ab)/l2, 0, 1)
	return rl.Vector3Add(a, rl.Vector3Scale(ab, t))
}

// sphereConvex collides a sphere (as G1) against convex g (as G2)
func sphereConvex(center rl.Vector3, radius float32, g *Geom) (ContactGeom, bool) {
	q, inside := closestPoint(g, center)
	if !inside {
		d := rl.Vector3Subtract(center, q)
		dist := rl.Vector3Length(d)
		if dist >= radius {
			return ContactGeom{}, false
		}
		if dist > contactEps {
			return ContactGeom{Pos: q, Normal: rl.Vector3Scale(d, 1/dist), Depth: radius - dist}, true
		}
	}
	n, surface := penetration(g, center)
	return ContactGeom{
		Pos:    rl.Vector3Add(center, rl.Vector3Scale(n, surface)),
		Normal: n,
		Depth:  surface + radius,
	}, true
}

// pointConvex reports a contact when point p lies inside convex g
func pointConvex(p rl.Vector3, g *Geom) (ContactGeom, bool) {
	if _, inside := closestPoint(g, p); !inside {
		return ContactGeom{}, false
	}
	n, surface := penetration(g, p)
	if surface < insideMargin {
		return ContactGeom{}, false
	}
	return ContactGeom{Pos: p, Normal: n, Depth: surface}, true
}

// proxies samples a convex geom as spheres and points
func proxies(g *Geom) []proxy {
	p := g.Position()
	switch g.class {
	case SphereClass:
		return []proxy{{c: p, r: g.radius}}
	case BoxClass:
		o := boxOBB(g)
		out := make([]proxy, 0, 9)
		for _, c := range o.corners() {
			out = append(out, proxy{c: c})
		}
		r := o.HalfSize.X
		if o.HalfSize.Y < r {
			r = o.HalfSize.Y
		}
		if o.HalfSize.Z < r {
			r = o.HalfSize.Z
		}
		return append(out, proxy{c: p, r: r})
	case CapsuleClass:
		a, b := g.capsuleSegment()
		return []proxy{{c: a, r: g.radius}, {c: p, r: g.radius}, {c: b, r: g.radius}}
	case CylinderClass:
		rot := g.Quaternion()
		out := make([]proxy, 0, 2*rimSamples+3)
		for _, y := range [2]float32{-g.halfLen, g.halfLen} {
			out = append(out, proxy{c: toWorld(rl.Vector3{Y: y}, p, rot)})
			for i := 0; i < rimSamples; i++ {
				ang := float64(i) * 2 * math.Pi / rimSamples
				local := rl.Vector3{
					X: g.radius * float32(math.Cos(ang)),
					Y: y,
					Z: g.radius * float32(math.Sin(ang)),
				}
				out = append(out, proxy{c: toWorld(local, p, rot)})
			}
		}
		r := g.radius
		if g.halfLen < r {
			r = g.halfLen
		}
		return append(out, proxy{c: p, r: r})
	}
	return nil
}

// convexConvex collides two convex geoms through their proxies
func convexConvex(a, b *Geom) []ContactGeom {
	var out []ContactGeom
	for _, pr := range proxies(a) {
		if c, ok := proxyConvex(pr, b); ok {
			out = append(out, c)
		}
	}
	for _, pr := range proxies(b) {
		if c, ok := proxyConvex(pr, a); ok {
			c.Normal = rl.Vector3Negate(c.Normal)
			out = append(out, c)
		}
	}
	return out
}

func proxyConvex(pr proxy, g *Geom) (ContactGeom, bool) {
	if pr.r > 0 {
		return sphereConvex(pr.c, pr.r, g)
	}
	return pointConvex(pr.c, g)
}

// boxBox collides two boxes: SAT picks the normal, corners give the points
func boxBox(a, b *Geom) []ContactGeom {
	oa, ob := boxOBB(a), boxOBB(b)
	n, depth, ok := oa.separate(ob)
	if !ok {
		return nil
	}

	var out []ContactGeom
	// b's face toward a
	faceB := dot(ob.Center, n) + ob.project(n)
	for _, c := range oa.corners() {
		if ob.contains(c, insideMargin) {
			d := clampf(faceB-dot(c, n), 0, depth)
			out = append(out, ContactGeom{Pos: c, Normal: n, Depth: d})
		}
	}
	// a's face toward b
	faceA := dot(oa.Center, n) - oa.project(n)
	for _, c := range ob.corners() {
		if oa.contains(c, insideMargin) {
			d := clampf(dot(c, n)-faceA, 0, depth)
			out = append(out, ContactGeom{Pos: c, Normal: n, Depth: d})
		}
	}
	if len(out) == 0 {
		// edge-edge: use the midpoint between the two support points
		sa := rl.Vector3Subtract(oa.Center, rl.Vector3Scale(n, oa.project(n)))
		sb := rl.Vector3Add(ob.Center, rl.Vector3Scale(n, ob.project(n)))
		out = append(out, ContactGeom{
			Pos:    rl.Vector3Scale(rl.Vector3Add(sa, sb), 0.5),
			Normal: n,
			Depth:  depth,
		})
	}
	return out
}

// collideTerrain collides a non-terrain geom a (G1) with terrain t (G2)
func collideTerrain(a, t *Geom) []ContactGeom {
	var ps []proxy
	if a.class == SphereClass {
		ps = []proxy{{c: a.Position(), r: a.radius}}
	} else {
		ps = proxies(a)
	}
	limit := a.BoundingRadius()

	var out []ContactGeom
	switch t.class {
	case PlaneClass:
		for _, pr := range ps {
			sd := dot(t.normal, pr.c) - t.dist
			if sd >= pr.r {
				continue
			}
			if pr.r == 0 && sd <= -limit*2 {
				continue
			}
			out = append(out, ContactGeom{
				Pos:    rl.Vector3Subtract(pr.c, rl.Vector3Scale(t.normal, sd)),
				Normal: t.normal,
				Depth:  pr.r - sd,
			})
		}
	case TriMeshClass, HeightfieldClass:
		pos, rot := t.Position(), t.Quaternion()
		var tris []Triangle
		var idx []int
		for _, pr := range ps {
			lc := toLocal(pr.c, pos, rot)
			reach := pr.r
			if pr.r == 0 {
				reach = limit
			}
			box := AABB{Min: lc, Max: lc}.grow(reach)
			tris = tris[:0]
			if t.class == HeightfieldClass {
				tris = t.field.triangles(box, tris)
			} else {
				idx = t.mesh.query(box, idx[:0])
				for _, i := range idx {
					tris = append(tris, t.mesh.Triangles[i])
				}
			}
			for i := range tris {
				if c, ok := proxyTriangle(lc, pr.r, limit, &tris[i]); ok {
					c.Pos = toWorld(c.Pos, pos, rot)
					c.Normal = rl.Vector3RotateByQuaternion(c.Normal, rot)
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// proxyTriangle tests a local-space sample sphere/point against a one-sided triangle
func proxyTriangle(c rl.Vector3, r, limit float32, tri *Triangle) (ContactGeom, bool) {
	sd := dot(rl.Vector3Subtract(c, tri.V0), tri.Normal)
	q := closestPointOnTriangle(c, tri.V0, tri.V1, tri.V2)
	d := rl.Vector3Subtract(c, q)
	dist := rl.Vector3Length(d)

	if sd >= 0 {
		if dist >= r {
			return ContactGeom{}, false
		}
		n := tri.Normal
		if dist > contactEps {
			n = rl.Vector3Scale(d, 1/dist)
		}
		return ContactGeom{Pos: q, Normal: n, Depth: r - dist}, true
	}

	// Below the surface: only when directly under the face and not too deep
	if sd < -limit || dist+sd > 0.001 {
		return ContactGeom{}, false
	}
	return ContactGeom{Pos: q, Normal: tri.Normal, Depth: r - sd}, true
}
