package dynamics

import rl "github.com/gen2brain/raylib-go/raylib"

// Surface mode flags select which optional SurfaceParams fields are used.
const (
	ContactMu2 = 1 << iota
	ContactFDir1
	ContactBounce
	ContactSoftERP
	ContactSoftCFM
	ContactSlip1
	ContactSlip2
)

// Infinity as a friction coefficient makes the friction bound unlimited.
const Infinity = float32(1e30)

// SurfaceParams describes how two surfaces interact at a contact.
type SurfaceParams struct {
	Mode      int
	Mu        float32
	Mu2       float32
	Bounce    float32
	BounceVel float32
	SoftERP   float32
	SoftCFM   float32
	Slip1     float32
	Slip2     float32
}

// Contact is what a contact joint is created from.
type Contact struct {
	Surface SurfaceParams
	Geom    ContactGeom
	FDir1   rl.Vector3
}

// JointGroup owns a batch of contact joints that are emptied together.
type JointGroup struct {
	world     *World
	joints    []*ContactJoint
	destroyed bool
}

// NewJointGroup creates an empty group whose joints are solved by w.Step.
func (w *World) NewJointGroup() *JointGroup {
	g := &JointGroup{world: w}
	w.groups = append(w.groups, g)
	return g
}

func (g *JointGroup) Len() int { return len(g.joints) }

// Empty detaches and discards every joint in the group.
func (g *JointGroup) Empty() {
	for i := range g.joints {
		g.joints[i] = nil
	}
	g.joints = g.joints[:0]
}

// Destroy empties the group and unregisters it from its world.
func (g *JointGroup) Destroy() {
	if g.destroyed {
		return
	}
	g.Empty()
	g.destroyed = true
	if g.world != nil {
		g.world.removeGroup(g)
	}
}

// ContactJoint is a one-shot constraint produced by a contact.
type ContactJoint struct {
	contact Contact
	b1, b2  *Body

	// solver scratch
	r1, r2     rl.Vector3
	n, t1, t2  rl.Vector3
	kn, k1, k2 float32
	target     float32
	gamma      float32
	gammaT1    float32
	gammaT2    float32
	lambdaN    float32
	lambdaT1   float32
	lambdaT2   float32
	mu1, mu2   float32
}

// NewContactJoint adds a contact joint to group. The joint is inert until attached.
func (w *World) NewContactJoint(group *JointGroup, c Contact) *ContactJoint {
	j := &ContactJoint{contact: c}
	if group != nil && !group.destroyed {
		group.joints = append(group.joints, j)
	}
	return j
}

// Attach binds the joint to two bodies; either may be nil for the static world.
func (j *ContactJoint) Attach(b1, b2 *Body) {
	j.b1, j.b2 = b1, b2
}

func (j *ContactJoint) Contact() Contact { return j.contact }

func (j *ContactJoint) Bodies() (*Body, *Body) { return j.b1, j.b2 }
