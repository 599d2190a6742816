package camera

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// ExtractFrustum extracts frustum planes from the camera's view-projection
// matrix (Gribb/Hartmann).
func ExtractFrustum(camera rl.Camera3D, aspect, near, far float32) Frustum {
	view := rl.MatrixLookAt(camera.Position, camera.Target, camera.Up)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, near, far)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, near, far)
	}

	// VP = P * V
	vp := rl.MatrixMultiply(view, proj)

	row1 := rl.Vector4{X: vp.M0, Y: vp.M4, Z: vp.M8, W: vp.M12}
	row2 := rl.Vector4{X: vp.M1, Y: vp.M5, Z: vp.M9, W: vp.M13}
	row3 := rl.Vector4{X: vp.M2, Y: vp.M6, Z: vp.M10, W: vp.M14}
	row4 := rl.Vector4{X: vp.M3, Y: vp.M7, Z: vp.M11, W: vp.M15}

	var f Frustum
	f.planes[0] = planeFrom(row4, row1, 1)  // left
	f.planes[1] = planeFrom(row4, row1, -1) // right
	f.planes[2] = planeFrom(row4, row2, 1)  // bottom
	f.planes[3] = planeFrom(row4, row2, -1) // top
	f.planes[4] = planeFrom(row4, row3, 1)  // near
	f.planes[5] = planeFrom(row4, row3, -1) // far
	return f
}

func planeFrom(w, r rl.Vector4, sign float32) Plane {
	return normalizePlane(Plane{
		normal: rl.Vector3{
			X: w.X + sign*r.X,
			Y: w.Y + sign*r.Y,
			Z: w.Z + sign*r.Z,
		},
		distance: w.W + sign*r.W,
	})
}

// normalizePlane normalizes a plane equation
func normalizePlane(p Plane) Plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere tests if a sphere is inside or intersects the frustum
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, center) + f.planes[i].distance
		// completely behind any plane means outside
		if dist < -radius {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum
func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, point) + f.planes[i].distance
		if dist < 0 {
			return false
		}
	}
	return true
}
