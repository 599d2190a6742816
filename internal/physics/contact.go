package physics

import (
	"math"

	"drive3d/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Material holds per-object surface response parameters.
type Material struct {
	Friction       float32
	Bounce         float32
	BounceVelocity float32
	SoftERP        float32
	SoftCFM        float32
	Slip           float32
}

// Contact is one contact point between two shapes together with its response
// parameters. It is only valid during the step that produced it.
type Contact struct {
	Position rl.Vector3
	Normal   rl.Vector3 // from G2 toward G1
	Depth    float32
	G1, G2   *dynamics.Geom

	Friction       float32
	Friction2      float32
	Bounce         float32
	BounceVelocity float32
	SoftERP        float32
	SoftCFM        float32
	Slip1          float32
	Slip2          float32

	// FDir1 is the first friction direction; zero means isotropic friction.
	FDir1 rl.Vector3
}

// ContactModifier adjusts a contact before it becomes a joint.
type ContactModifier func(c *Contact, other *PhysicsObject)

func (s *Settings) defaultMaterial() Material {
	return Material{
		Friction:       s.Friction,
		Bounce:         s.Bounce,
		BounceVelocity: s.BounceVelocity,
		SoftERP:        s.SoftERP,
		SoftCFM:        s.SoftCFM,
	}
}

// mix combines two materials: friction is the geometric mean, the rest take the
// softer or bouncier side.
func mix(a, b Material) Material {
	return Material{
		Friction:       float32(math.Sqrt(float64(a.Friction * b.Friction))),
		Bounce:         max(a.Bounce, b.Bounce),
		BounceVelocity: min(a.BounceVelocity, b.BounceVelocity),
		SoftERP:        min(a.SoftERP, b.SoftERP),
		SoftCFM:        max(a.SoftCFM, b.SoftCFM),
		Slip:           max(a.Slip, b.Slip),
	}
}

func newContact(g dynamics.ContactGeom, m Material) Contact {
	return Contact{
		Position:       g.Pos,
		Normal:         g.Normal,
		Depth:          g.Depth,
		G1:             g.G1,
		G2:             g.G2,
		Friction:       m.Friction,
		Friction2:      m.Friction,
		Bounce:         m.Bounce,
		BounceVelocity: m.BounceVelocity,
		SoftERP:        m.SoftERP,
		SoftCFM:        m.SoftCFM,
		Slip1:          m.Slip,
		Slip2:          m.Slip,
	}
}

// joint converts the contact into the engine's contact description
func (c *Contact) joint() dynamics.Contact {
	s := dynamics.SurfaceParams{
		Mode:      dynamics.ContactBounce | dynamics.ContactSoftERP | dynamics.ContactSoftCFM,
		Mu:        c.Friction,
		Bounce:    c.Bounce,
		BounceVel: c.BounceVelocity,
		SoftERP:   c.SoftERP,
		SoftCFM:   c.SoftCFM,
	}
	if c.Friction2 != c.Friction {
		s.Mode |= dynamics.ContactMu2
		s.Mu2 = c.Friction2
	}
	if c.Slip1 > 0 {
		s.Mode |= dynamics.ContactSlip1
		s.Slip1 = c.Slip1
	}
	if c.Slip2 > 0 {
		s.Mode |= dynamics.ContactSlip2
		s.Slip2 = c.Slip2
	}
	out := dynamics.Contact{
		Surface: s,
		Geom: dynamics.ContactGeom{
			Pos:    c.Position,
			Normal: c.Normal,
			Depth:  c.Depth,
			G1:     c.G1,
			G2:     c.G2,
		},
	}
	if c.FDir1 != (rl.Vector3{}) {
		out.Surface.Mode |= dynamics.ContactFDir1
		out.FDir1 = c.FDir1
	}
	return out
}
