package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Settings are the world-wide physics constants.
type Settings struct {
	Gravity       rl.Vector3
	Iterations    int
	FixedTimestep float32 // seconds
	MaxSubSteps   int     // catch-up steps per Update
	MaxContacts   int     // per shape pair
	GroundPlane   bool

	DefaultDensity float32
	Friction       float32
	Bounce         float32
	BounceVelocity float32
	SoftERP        float32
	SoftCFM        float32
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:        rl.Vector3{Y: -9.81},
		Iterations:     20,
		FixedTimestep:  1.0 / 60.0,
		MaxSubSteps:    5,
		MaxContacts:    100,
		GroundPlane:    true,
		DefaultDensity: 1,
		Friction:       0.8,
		Bounce:         0.1,
		BounceVelocity: 0.5,
		SoftERP:        0.2,
		SoftCFM:        1e-4,
	}
}

func (s *Settings) sanitize() {
	d := DefaultSettings()
	if s.Iterations < 1 {
		s.Iterations = d.Iterations
	}
	if s.FixedTimestep <= 0 {
		s.FixedTimestep = d.FixedTimestep
	}
	if s.MaxSubSteps < 1 {
		s.MaxSubSteps = d.MaxSubSteps
	}
	if s.MaxContacts < 1 {
		s.MaxContacts = d.MaxContacts
	}
	if s.DefaultDensity <= 0 {
		s.DefaultDensity = d.DefaultDensity
	}
}
