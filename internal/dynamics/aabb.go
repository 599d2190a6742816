package dynamics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

func emptyAABB() AABB {
	return AABB{
		Min: rl.Vector3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		Max: rl.Vector3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a AABB) extend(p rl.Vector3) AABB {
	return AABB{Min: rl.Vector3Min(a.Min, p), Max: rl.Vector3Max(a.Max, p)}
}

func (a AABB) grow(r float32) AABB {
	d := rl.Vector3{X: r, Y: r, Z: r}
	return AABB{Min: rl.Vector3Subtract(a.Min, d), Max: rl.Vector3Add(a.Max, d)}
}

// transform returns the world bounds of a local-space box placed at pos/rot
func (a AABB) transform(pos rl.Vector3, rot rl.Quaternion) AABB {
	out := emptyAABB()
	for i := 0; i < 8; i++ {
		c := a.Min
		if i&1 != 0 {
			c.X = a.Max.X
		}
		if i&2 != 0 {
			c.Y = a.Max.Y
		}
		if i&4 != 0 {
			c.Z = a.Max.Z
		}
		out = out.extend(toWorld(c, pos, rot))
	}
	return out
}
