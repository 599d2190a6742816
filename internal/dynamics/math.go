package dynamics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	axisX = rl.Vector3{X: 1}
	axisY = rl.Vector3{Y: 1}
	axisZ = rl.Vector3{Z: 1}
)

// cross computes the cross product of two vectors
func cross(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func dot(a, b rl.Vector3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func toVec(v rl.Vector3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func fromVec(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// rotationMat3 builds the column-major rotation matrix of q; column i is the
// rotated local axis i.
func rotationMat3(q rl.Quaternion) mgl32.Mat3 {
	return mgl32.Mat3FromCols(
		toVec(rl.Vector3RotateByQuaternion(axisX, q)),
		toVec(rl.Vector3RotateByQuaternion(axisY, q)),
		toVec(rl.Vector3RotateByQuaternion(axisZ, q)),
	)
}

// axesOf returns the rotated local X, Y, Z axes
func axesOf(q rl.Quaternion) [3]rl.Vector3 {
	return [3]rl.Vector3{
		rl.Vector3RotateByQuaternion(axisX, q),
		rl.Vector3RotateByQuaternion(axisY, q),
		rl.Vector3RotateByQuaternion(axisZ, q),
	}
}

// toLocal transforms a world point into the frame given by pos/rot
func toLocal(p, pos rl.Vector3, rot rl.Quaternion) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(p, pos), rl.QuaternionInvert(rot))
}

// toWorld transforms a local point out of the frame given by pos/rot
func toWorld(p, pos rl.Vector3, rot rl.Quaternion) rl.Vector3 {
	return rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(p, rot))
}

// planeBasis returns two unit tangents perpendicular to n
func planeBasis(n rl.Vector3) (rl.Vector3, rl.Vector3) {
	var t1 rl.Vector3
	if absf(n.X) > 0.57735 {
		t1 = rl.Vector3Normalize(rl.Vector3{X: n.Y, Y: -n.X})
	} else {
		t1 = rl.Vector3Normalize(rl.Vector3{Y: n.Z, Z: -n.Y})
	}
	return t1, cross(n, t1)
}

// integrateRotation advances q by angular velocity w over dt
func integrateRotation(q rl.Quaternion, w rl.Vector3, dt float32) rl.Quaternion {
	spin := rl.QuaternionMultiply(rl.Quaternion{X: w.X, Y: w.Y, Z: w.Z}, q)
	q.X += 0.5 * dt * spin.X
	q.Y += 0.5 * dt * spin.Y
	q.Z += 0.5 * dt * spin.Z
	q.W += 0.5 * dt * spin.W
	return rl.QuaternionNormalize(q)
}
