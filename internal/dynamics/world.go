package dynamics

import (
	"errors"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	DefaultIterations = 20
	DefaultERP        = 0.2
	DefaultCFM        = 1e-5

	// penetration allowed before position correction kicks in
	contactSlop = 0.001
)

var ErrBadTimestep = errors.New("dynamics: timestep must be positive")

// World owns bodies and joint groups and advances them in time.
type World struct {
	gravity    rl.Vector3
	iterations int
	erp        float32
	cfm        float32

	bodies []*Body
	groups []*JointGroup

	destroyed bool
}

func NewWorld() *World {
	return &World{
		iterations: DefaultIterations,
		erp:        DefaultERP,
		cfm:        DefaultCFM,
	}
}

func (w *World) SetGravity(g rl.Vector3) { w.gravity = g }

func (w *World) Gravity() rl.Vector3 { return w.gravity }

// SetIterations sets the number of solver passes per step (minimum 1).
func (w *World) SetIterations(n int) {
	if n < 1 {
		n = 1
	}
	w.iterations = n
}

func (w *World) SetERP(erp float32) { w.erp = clampf(erp, 0, 1) }

func (w *World) SetCFM(cfm float32) {
	if cfm < 0 {
		cfm = 0
	}
	w.cfm = cfm
}

func (w *World) NumBodies() int { return len(w.bodies) }

func (w *World) removeBody(b *Body) {
	for i, other := range w.bodies {
		if other == b {
			copy(w.bodies[i:], w.bodies[i+1:])
			w.bodies[len(w.bodies)-1] = nil
			w.bodies = w.bodies[:len(w.bodies)-1]
			break
		}
	}
	b.world = nil
}

func (w *World) removeGroup(g *JointGroup) {
	for i, other := range w.groups {
		if other == g {
			copy(w.groups[i:], w.groups[i+1:])
			w.groups[len(w.groups)-1] = nil
			w.groups = w.groups[:len(w.groups)-1]
			break
		}
	}
	g.world = nil
}

// Destroy releases every body and joint group. Safe to call more than once.
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	for len(w.bodies) > 0 {
		w.bodies[len(w.bodies)-1].Destroy()
	}
	for len(w.groups) > 0 {
		w.groups[len(w.groups)-1].Destroy()
	}
	w.destroyed = true
}

func dynamic(b *Body) bool {
	return b != nil && b.enabled
}

// Step advances the world by dt seconds: forces and gravity, contact joints, then positions.
// Accumulated forces and torques are cleared afterwards.
func (w *World) Step(dt float32) error {
	if dt <= 0 {
		return ErrBadTimestep
	}

	for _, b := range w.bodies {
		if !b.enabled {
			continue
		}
		b.iw = b.invInertiaWorld()
		acc := rl.Vector3Scale(b.force, b.invMass)
		if b.UseGravity && b.invMass > 0 {
			acc = rl.Vector3Add(acc, w.gravity)
		}
		b.linVel = rl.Vector3Add(b.linVel, rl.Vector3Scale(acc, dt))
		b.angVel = rl.Vector3Add(b.angVel, rl.Vector3Scale(fromVec(b.iw.Mul3x1(toVec(b.torque))), dt))

		if b.LinearDamping > 0 {
			b.linVel = rl.Vector3Scale(b.linVel, clampf(1-b.LinearDamping*dt, 0, 1))
		}
		if b.AngularDamping > 0 {
			b.angVel = rl.Vector3Scale(b.angVel, clampf(1-b.AngularDamping*dt, 0, 1))
		}
	}

	var joints []*ContactJoint
	for _, g := range w.groups {
		for _, j := range g.joints {
			if dynamic(j.b1) || dynamic(j.b2) {
				joints = append(joints, j)
			}
		}
	}

	for _, j := range joints {
		w.prepare(j, dt)
	}
	for it := 0; it < w.iterations; it++ {
		for _, j := range joints {
			j.solve()
		}
	}

	for _, b := range w.bodies {
		if b.enabled {
			b.pos = rl.Vector3Add(b.pos, rl.Vector3Scale(b.linVel, dt))
			b.rot = integrateRotation(b.rot, b.angVel, dt)
		}
		b.force = rl.Vector3{}
		b.torque = rl.Vector3{}
	}
	return nil
}

func armOf(b *Body, p rl.Vector3) rl.Vector3 {
	if b == nil {
		return rl.Vector3{}
	}
	return rl.Vector3Subtract(p, b.pos)
}

// effMass returns the inverse effective mass of b along d at arm r
func effMass(b *Body, r, d rl.Vector3) float32 {
	if !dynamic(b) {
		return 0
	}
	rd := toVec(cross(r, d))
	return b.invMass + rd.Dot(b.iw.Mul3x1(rd))
}

func velAt(b *Body, r rl.Vector3) rl.Vector3 {
	if b == nil {
		return rl.Vector3{}
	}
	return rl.Vector3Add(b.linVel, cross(b.angVel, r))
}

func (j *ContactJoint) relVel(d rl.Vector3) float32 {
	return dot(rl.Vector3Subtract(velAt(j.b1, j.r1), velAt(j.b2, j.r2)), d)
}

// apply pushes impulse p on b1 and -p on b2
func (j *ContactJoint) apply(p rl.Vector3) {
	if dynamic(j.b1) {
		j.b1.applyImpulse(p, j.r1, j.b1.iw)
	}
	if dynamic(j.b2) {
		j.b2.applyImpulse(rl.Vector3Negate(p), j.r2, j.b2.iw)
	}
}

func (w *World) prepare(j *ContactJoint, dt float32) {
	c := &j.contact
	s := &c.Surface
	j.n = rl.Vector3Normalize(c.Geom.Normal)
	j.r1 = armOf(j.b1, c.Geom.Pos)
	j.r2 = armOf(j.b2, c.Geom.Pos)

	if s.Mode&ContactFDir1 != 0 && rl.Vector3Length(c.FDir1) > contactEps {
		// project onto the contact plane
		f := rl.Vector3Subtract(c.FDir1, rl.Vector3Scale(j.n, dot(c.FDir1, j.n)))
		if rl.Vector3Length(f) > contactEps {
			j.t1 = rl.Vector3Normalize(f)
			j.t2 = cross(j.n, j.t1)
		} else {
			j.t1, j.t2 = planeBasis(j.n)
		}
	} else {
		j.t1, j.t2 = planeBasis(j.n)
	}

	j.kn = effMass(j.b1, j.r1, j.n) + effMass(j.b2, j.r2, j.n)
	j.k1 = effMass(j.b1, j.r1, j.t1) + effMass(j.b2, j.r2, j.t1)
	j.k2 = effMass(j.b1, j.r1, j.t2) + effMass(j.b2, j.r2, j.t2)

	erp, cfm := w.erp, w.cfm
	if s.Mode&ContactSoftERP != 0 {
		erp = s.SoftERP
	}
	if s.Mode&ContactSoftCFM != 0 {
		cfm = s.SoftCFM
	}
	j.gamma = cfm / dt

	depth := c.Geom.Depth - contactSlop
	if depth < 0 {
		depth = 0
	}
	j.target = erp * depth / dt
	if s.Mode&ContactBounce != 0 {
		vn := j.relVel(j.n)
		if -vn > s.BounceVel {
			if bounce := -s.Bounce * vn; bounce > j.target {
				j.target = bounce
			}
		}
	}

	j.mu1 = s.Mu
	j.mu2 = s.Mu
	if s.Mode&ContactMu2 != 0 {
		j.mu2 = s.Mu2
	}
	j.gammaT1, j.gammaT2 = 0, 0
	if s.Mode&ContactSlip1 != 0 {
		j.gammaT1 = s.Slip1 / dt
	}
	if s.Mode&ContactSlip2 != 0 {
		j.gammaT2 = s.Slip2 / dt
	}
	j.lambdaN, j.lambdaT1, j.lambdaT2 = 0, 0, 0
}

func (j *ContactJoint) solve() {
	if j.kn+j.gamma <= 0 {
		return
	}
	vn := j.relVel(j.n)
	d := (j.target - vn - j.gamma*j.lambdaN) / (j.kn + j.gamma)
	prev := j.lambdaN
	j.lambdaN = math32Max(prev+d, 0)
	j.apply(rl.Vector3Scale(j.n, j.lambdaN-prev))

	j.lambdaT1 = j.solveFriction(j.t1, j.k1, j.gammaT1, j.mu1, j.lambdaT1)
	j.lambdaT2 = j.solveFriction(j.t2, j.k2, j.gammaT2, j.mu2, j.lambdaT2)
}

func (j *ContactJoint) solveFriction(t rl.Vector3, k, gamma, mu, acc float32) float32 {
	if mu <= 0 || k+gamma <= 0 {
		return acc
	}
	vt := j.relVel(t)
	d := (-vt - gamma*acc) / (k + gamma)
	next := acc + d
	if mu < Infinity {
		limit := mu * j.lambdaN
		next = clampf(next, -limit, limit)
	}
	j.apply(rl.Vector3Scale(t, next-acc))
	return next
}
