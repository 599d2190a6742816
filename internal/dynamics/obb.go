package dynamics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an oriented bounding box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

// boxOBB builds the OBB of a box geom at its current pose
func boxOBB(g *Geom) OBB {
	return OBB{Center: g.Position(), HalfSize: g.halfSize, Axes: axesOf(g.Quaternion())}
}

func (o OBB) half(i int) float32 {
	switch i {
	case 0:
		return o.HalfSize.X
	case 1:
		return o.HalfSize.Y
	}
	return o.HalfSize.Z
}

// project returns the half-length of the box projected onto axis
func (o OBB) project(axis rl.Vector3) float32 {
	return o.HalfSize.X*absf(dot(o.Axes[0], axis)) +
		o.HalfSize.Y*absf(dot(o.Axes[1], axis)) +
		o.HalfSize.Z*absf(dot(o.Axes[2], axis))
}

// corners returns the 8 world-space corners
func (o OBB) corners() [8]rl.Vector3 {
	var out [8]rl.Vector3
	for i := 0; i < 8; i++ {
		c := o.Center
		for k := 0; k < 3; k++ {
			s := o.half(k)
			if i&(1<<k) == 0 {
				s = -s
			}
			c = rl.Vector3Add(c, rl.Vector3Scale(o.Axes[k], s))
		}
		out[i] = c
	}
	return out
}

// contains reports whether p lies inside the box (with tolerance eps)
func (o OBB) contains(p rl.Vector3, eps float32) bool {
	d := rl.Vector3Subtract(p, o.Center)
	for k := 0; k < 3; k++ {
		if absf(dot(d, o.Axes[k])) > o.half(k)+eps {
			return false
		}
	}
	return true
}

// separate runs the separating axis test over the 15 candidate axes and
// returns the minimum-penetration unit axis pointing from b toward a.
func (a OBB) separate(b OBB) (rl.Vector3, float32, bool) {
	t := rl.Vector3Subtract(b.Center, a.Center)
	minPenetration := float32(math.MaxFloat32)
	var normal rl.Vector3
	separated := false

	testAxis := func(axis rl.Vector3) {
		if separated || rl.Vector3Length(axis) < 0.0001 {
			return
		}
		axis = rl.Vector3Normalize(axis)
		dist := dot(t, axis)
		penetration := a.project(axis) + b.project(axis) - absf(dist)
		if penetration < 0 {
			separated = true
			return
		}
		if penetration < minPenetration {
			minPenetration = penetration
			// push a away from b
			if dist < 0 {
				normal = axis
			} else {
				normal = rl.Vector3Negate(axis)
			}
		}
	}

	for i := 0; i < 3; i++ {
		testAxis(a.Axes[i])
	}
	for i := 0; i < 3; i++ {
		testAxis(b.Axes[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			testAxis(cross(a.Axes[i], b.Axes[j]))
		}
	}

	if separated {
		return rl.Vector3{}, 0, false
	}
	return normal, minPenetration, true
}

// closestPoint returns the closest point on or in the box to p
func (o OBB) closestPoint(p rl.Vector3) rl.Vector3 {
	local := rl.Vector3Subtract(p, o.Center)
	result := o.Center
	for k := 0; k < 3; k++ {
		d := clampf(dot(local, o.Axes[k]), -o.half(k), o.half(k))
		result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[k], d))
	}
	return result
}
