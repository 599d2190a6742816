package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "Y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "Z")
}

func TestLookClampsPitch(t *testing.T) {
	r := New()
	r.Look(0, -10000)
	if r.Pitch != 89 {
		t.Errorf("Expected pitch 89, got %v", r.Pitch)
	}
	r.Look(0, 10000)
	if r.Pitch != -89 {
		t.Errorf("Expected pitch -89, got %v", r.Pitch)
	}

	r.Look(100, 0)
	if r.Yaw != 10 {
		t.Errorf("Expected yaw 10, got %v", r.Yaw)
	}
}

func TestDirections(t *testing.T) {
	r := New()
	f, right := r.Directions()
	assertVec(t, rl.Vector3{Z: 1}, f)
	assertVec(t, rl.Vector3{X: -1}, right)

	r.Yaw = 90
	f, right = r.Directions()
	assertVec(t, rl.Vector3{X: 1}, f)
	assertVec(t, rl.Vector3{Z: 1}, right)
}

func TestFirstPerson(t *testing.T) {
	r := New()
	cam := r.FirstPerson(rl.Vector3{X: 1, Y: 1, Z: 1})

	assertVec(t, rl.Vector3{X: 1, Y: 1.7, Z: 1}, cam.Position)
	assertVec(t, rl.Vector3{X: 1, Y: 1.7, Z: 2}, cam.Target)
	assert.Equal(t, rl.CameraPerspective, cam.Projection)
	assert.Equal(t, float32(60), cam.Fovy)
}

func TestChaseSitsBehindVehicle(t *testing.T) {
	r := New()
	pos := rl.Vector3{X: 10, Y: 1, Z: 0}
	cam := r.Chase(pos, rl.QuaternionIdentity())
	assertVec(t, rl.Vector3{X: 10, Y: 3, Z: -6}, cam.Position)
	assertVec(t, pos, cam.Target)

	// Turned to face +X, the camera moves to -X.
	rot := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, 90*rl.Deg2rad)
	cam = r.Chase(pos, rot)
	assertVec(t, rl.Vector3{X: 4, Y: 3, Z: 0}, cam.Position)
}

func TestPassengerFollowsHeading(t *testing.T) {
	r := New()
	seat := rl.Vector3{X: 1, Y: 1, Z: 1}
	rot := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, 90*rl.Deg2rad)
	cam := r.Passenger(seat, rot)
	assertVec(t, seat, cam.Position)
	assertVec(t, rl.Vector3{X: 2, Y: 1, Z: 1}, cam.Target)
}

func TestFrustum(t *testing.T) {
	r := New()
	cam := r.FirstPerson(rl.Vector3{})
	f := r.Frustum(cam)

	tests := []struct {
		name  string
		point rl.Vector3
		want  bool
	}{
		{"ahead", rl.Vector3{Y: 0.7, Z: 10}, true},
		{"behind", rl.Vector3{Y: 0.7, Z: -10}, false},
		{"past far plane", rl.Vector3{Y: 0.7, Z: 2000}, false},
		{"wide left", rl.Vector3{X: 50, Y: 0.7, Z: 10}, false},
		{"high above", rl.Vector3{Y: 50, Z: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if !f.ContainsSphere(rl.Vector3{Y: 0.7, Z: -1}, 2) {
		t.Errorf("Expected sphere straddling the near plane to be visible")
	}
	if f.ContainsSphere(rl.Vector3{Y: 0.7, Z: -10}, 2) {
		t.Errorf("Expected sphere behind the camera to be culled")
	}
}
