package dynamics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Mass holds a body's total mass and principal moments of inertia
// about its local axes (center of mass at the body origin).
type Mass struct {
	Mass    float32
	Inertia rl.Vector3
}

// BoxMass computes mass properties of a solid box with full side lengths.
func BoxMass(density float32, size rl.Vector3) Mass {
	m := density * size.X * size.Y * size.Z
	return Mass{
		Mass: m,
		Inertia: rl.Vector3{
			X: m / 12 * (size.Y*size.Y + size.Z*size.Z),
			Y: m / 12 * (size.X*size.X + size.Z*size.Z),
			Z: m / 12 * (size.X*size.X + size.Y*size.Y),
		},
	}
}

// SphereMass computes mass properties of a solid sphere.
func SphereMass(density, radius float32) Mass {
	m := density * 4.0 / 3.0 * math.Pi * radius * radius * radius
	i := 0.4 * m * radius * radius
	return Mass{Mass: m, Inertia: rl.Vector3{X: i, Y: i, Z: i}}
}

// CylinderMass computes mass properties of a solid cylinder aligned with local Y.
func CylinderMass(density, radius, length float32) Mass {
	m := density * math.Pi * radius * radius * length
	axial := 0.5 * m * radius * radius
	side := m * (3*radius*radius + length*length) / 12
	return Mass{Mass: m, Inertia: rl.Vector3{X: side, Y: axial, Z: side}}
}

// CapsuleMass computes mass properties of a capsule aligned with local Y.
// length is the cylindrical section only, caps are added on top.
func CapsuleMass(density, radius, length float32) Mass {
	r2 := radius * radius
	mc := density * math.Pi * r2 * length
	ms := density * 4.0 / 3.0 * math.Pi * r2 * radius
	axial := mc*r2/2 + ms*0.4*r2
	side := mc*(3*r2+length*length)/12 +
		ms*(0.4*r2+length*length/4+3*length*radius/8)
	return Mass{Mass: mc + ms, Inertia: rl.Vector3{X: side, Y: axial, Z: side}}
}

// Adjust rescales the mass properties so the total mass equals total.
func (m *Mass) Adjust(total float32) {
	if m.Mass <= 0 {
		return
	}
	s := total / m.Mass
	m.Mass = total
	m.Inertia = rl.Vector3Scale(m.Inertia, s)
}
