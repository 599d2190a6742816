package session

import (
	"drive3d/internal/camera"
	"drive3d/internal/physics"
	"drive3d/internal/player"
	"drive3d/internal/vehicle"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Rig returns the player's camera rig, creating it on first use.
func (s *Session) Rig(id player.ID) (*camera.Rig, error) {
	if _, err := s.player(id); err != nil {
		return nil, err
	}
	if s.rigs == nil {
		s.rigs = make(map[player.ID]*camera.Rig)
	}
	r, ok := s.rigs[id]
	if !ok {
		r = camera.New()
		s.rigs[id] = r
	}
	return r, nil
}

// Camera returns the player's current view. Chase and passenger views
// follow the vehicle the player is seated in.
func (s *Session) Camera(id player.ID) (rl.Camera3D, error) {
	p, err := s.player(id)
	if err != nil {
		return rl.Camera3D{}, err
	}
	r, err := s.Rig(id)
	if err != nil {
		return rl.Camera3D{}, err
	}

	st, seated := p.Seat().(*vehicle.Seat)
	if !seated || st == nil {
		return r.FirstPerson(p.Position()), nil
	}
	v := st.Vehicle()
	switch p.Camera() {
	case player.CameraChase:
		return r.Chase(v.Position(), v.Rotation()), nil
	case player.CameraPassenger:
		return r.Passenger(st.Position(), v.Rotation()), nil
	default:
		return r.FirstPerson(st.Position()), nil
	}
}

// VisibleObjects returns the level objects whose bounding spheres touch the
// player's view frustum.
func (s *Session) VisibleObjects(id player.ID) ([]*physics.PhysicsObject, error) {
	cam, err := s.Camera(id)
	if err != nil {
		return nil, err
	}
	r, _ := s.Rig(id)
	f := r.Frustum(cam)

	var out []*physics.PhysicsObject
	for _, o := range s.World.Objects() {
		if o.Released() {
			continue
		}
		if f.ContainsSphere(o.Position(), o.BoundingRadius()) {
			out = append(out, o)
		}
	}
	return out, nil
}
