package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Rig turns a player's viewpoint into a raylib camera. Yaw and Pitch are the
// free-look angles in degrees; yaw 0 looks along +Z.
type Rig struct {
	Yaw       float32
	Pitch     float32
	LookSpeed float32 // degrees per unit of look input

	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	EyeHeight     float32 // above the body center
	ChaseDistance float32
	ChaseHeight   float32
}

func New() *Rig {
	return &Rig{
		LookSpeed:     0.1,
		FOV:           60,
		Aspect:        16.0 / 9.0,
		Near:          0.1,
		Far:           1000,
		EyeHeight:     0.7,
		ChaseDistance: 6,
		ChaseHeight:   2,
	}
}

// Look applies a look delta, e.g. mouse movement.
func (r *Rig) Look(dx, dy float32) {
	r.Yaw += dx * r.LookSpeed
	r.Pitch -= dy * r.LookSpeed

	// Clamp pitch
	if r.Pitch > 89 {
		r.Pitch = 89
	}
	if r.Pitch < -89 {
		r.Pitch = -89
	}
}

// Directions returns the horizontal forward and right vectors for the current yaw.
func (r *Rig) Directions() (forward, right rl.Vector3) {
	yawRad := float64(r.Yaw) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Sin(yawRad)),
		Y: 0,
		Z: float32(math.Cos(yawRad)),
	}
	right = rl.Vector3{
		X: float32(-math.Cos(yawRad)),
		Y: 0,
		Z: float32(math.Sin(yawRad)),
	}
	return
}

func (r *Rig) lookDirection() rl.Vector3 {
	yawRad := float64(r.Yaw) * math.Pi / 180
	pitchRad := float64(r.Pitch) * math.Pi / 180
	return rl.Vector3{
		X: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
		Y: float32(math.Sin(pitchRad)),
		Z: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
	}
}

func (r *Rig) camera(position, target rl.Vector3) rl.Camera3D {
	return rl.Camera3D{
		Position:   position,
		Target:     target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       r.FOV,
		Projection: rl.CameraPerspective,
	}
}

// FirstPerson looks from EyeHeight above center along yaw and pitch.
func (r *Rig) FirstPerson(center rl.Vector3) rl.Camera3D {
	eye := rl.Vector3Add(center, rl.Vector3{Y: r.EyeHeight})
	return r.camera(eye, rl.Vector3Add(eye, r.lookDirection()))
}

// Chase sits behind and above a vehicle, looking at it. The yaw angle
// orbits the camera around the vehicle.
func (r *Rig) Chase(position rl.Vector3, rotation rl.Quaternion) rl.Camera3D {
	orbit := rl.QuaternionMultiply(rotation, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, r.Yaw*rl.Deg2rad))
	back := rl.Vector3RotateByQuaternion(rl.Vector3{Z: -r.ChaseDistance}, orbit)
	back.Y = 0
	if l := rl.Vector3Length(back); l > 0 {
		back = rl.Vector3Scale(back, r.ChaseDistance/l)
	}
	eye := rl.Vector3Add(position, rl.Vector3Add(back, rl.Vector3{Y: r.ChaseHeight}))
	return r.camera(eye, position)
}

// Passenger looks from a seat along the vehicle's heading, turned by yaw
// and pitch.
func (r *Rig) Passenger(seat rl.Vector3, rotation rl.Quaternion) rl.Camera3D {
	look := rl.Vector3RotateByQuaternion(r.lookDirection(), rotation)
	return r.camera(seat, rl.Vector3Add(seat, look))
}

// Frustum returns the view volume of cam with the rig's projection.
func (r *Rig) Frustum(cam rl.Camera3D) Frustum {
	return ExtractFrustum(cam, r.Aspect, r.Near, r.Far)
}
