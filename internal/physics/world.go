package physics

import (
	"errors"
	"math"
	"time"

	"drive3d/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyInitialized = errors.New("physics: world already initialized")
	ErrNotInitialized     = errors.New("physics: world not initialized")
)

// Controller is stepped once per fixed step, before collision detection.
// Vehicles and character bodies use it to apply their forces.
type Controller interface {
	Step(dt float32)
}

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opDetach
)

type pendingOp struct {
	kind opKind
	obj  *PhysicsObject
}

// Stats are running totals since Init.
type Stats struct {
	Steps     uint64
	Contacts  uint64
	Truncated uint64
}

type PhysicsWorld struct {
	settings Settings
	log      zerolog.Logger
	metrics  *metrics

	world   *dynamics.World
	static  *dynamics.Space
	dynamic *dynamics.Space
	ground  *dynamics.Geom
	group   *dynamics.JointGroup

	// live objects; order is dispatch order
	objects []*PhysicsObject
	index   map[*PhysicsObject]int
	// pulled out by RemoveFromWorld, handles still owned
	detached map[*PhysicsObject]struct{}

	controllers []Controller

	pending  []pendingOp
	stepping bool

	accumulator float64
	lastTime    float64
	started     bool

	stepContacts  int
	stepTruncated int
	stats         Stats

	initialized bool
}

// NewPhysicsWorld creates an uninitialized world; call Init before use.
func NewPhysicsWorld(settings Settings, log zerolog.Logger) *PhysicsWorld {
	settings.sanitize()
	log = log.With().Str("component", "physics").Logger()
	return &PhysicsWorld{
		settings: settings,
		log:      log,
		metrics:  newMetrics(log),
		index:    make(map[*PhysicsObject]int),
		detached: make(map[*PhysicsObject]struct{}),
	}
}

// Init creates the engine world, collision spaces, optional ground plane and the
// per-step contact group. Calling it again before Destroy changes nothing and
// returns ErrAlreadyInitialized.
func (w *PhysicsWorld) Init(gravity rl.Vector3, iterations int, groundPlane bool) error {
	if w.initialized {
		w.log.Error().Msg("Physics: Init called twice without Destroy")
		return ErrAlreadyInitialized
	}

	w.settings.Gravity = gravity
	if iterations > 0 {
		w.settings.Iterations = iterations
	}
	w.settings.GroundPlane = groundPlane

	w.world = dynamics.NewWorld()
	w.world.SetGravity(gravity)
	w.world.SetIterations(w.settings.Iterations)
	w.world.SetERP(w.settings.SoftERP)
	w.world.SetCFM(w.settings.SoftCFM)

	w.static = dynamics.NewSpace()
	w.dynamic = dynamics.NewSpace()
	if groundPlane {
		w.ground = dynamics.NewPlane(w.static, rl.Vector3{Y: 1}, 0)
	}
	w.group = w.world.NewJointGroup()

	w.accumulator = 0
	w.started = false
	w.stats = Stats{}
	w.initialized = true

	w.log.Info().
		Float32("gravity", gravity.Y).
		Int("iterations", w.settings.Iterations).
		Bool("groundPlane", groundPlane).
		Msg("Physics: world initialized")
	return nil
}

func (w *PhysicsWorld) Initialized() bool { return w.initialized }

func (w *PhysicsWorld) Settings() Settings { return w.settings }

// Ground returns the ground plane geom, nil when the world has none.
func (w *PhysicsWorld) Ground() *dynamics.Geom { return w.ground }

func (w *PhysicsWorld) Stats() Stats { return w.stats }

// Objects returns the live objects. The slice must not be modified.
func (w *PhysicsWorld) Objects() []*PhysicsObject { return w.objects }

func (w *PhysicsWorld) NumObjects() int { return len(w.objects) }

func (w *PhysicsWorld) AddController(c Controller) {
	if c == nil {
		return
	}
	w.controllers = append(w.controllers, c)
}

func (w *PhysicsWorld) RemoveController(c Controller) {
	for i, other := range w.controllers {
		if other == c {
			w.controllers = append(w.controllers[:i], w.controllers[i+1:]...)
			return
		}
	}
}

// Update runs as many fixed steps as needed to catch up with currentTime
// (seconds), at most MaxSubSteps. It returns the number of steps taken.
func (w *PhysicsWorld) Update(currentTime float64) int {
	if !w.initialized {
		return 0
	}
	if !w.started || currentTime < w.lastTime {
		w.lastTime = currentTime
		w.started = true
		return 0
	}

	w.accumulator += currentTime - w.lastTime
	w.lastTime = currentTime

	dt := float64(w.settings.FixedTimestep)
	steps := 0
	for w.accumulator >= dt && steps < w.settings.MaxSubSteps {
		w.Step()
		w.accumulator -= dt
		steps++
	}
	if w.accumulator >= dt {
		w.log.Debug().
			Float64("behind", w.accumulator).
			Int("steps", steps).
			Msg("Physics: dropping time, too far behind")
		w.accumulator = math.Mod(w.accumulator, dt)
	}
	return steps
}

// Step runs exactly one fixed step.
func (w *PhysicsWorld) Step() {
	if !w.initialized {
		return
	}
	start := time.Now()
	dt := w.settings.FixedTimestep

	w.applyPending()
	w.stepping = true
	w.stepContacts = 0
	w.stepTruncated = 0

	for _, c := range w.controllers {
		c.Step(dt)
	}

	w.dynamic.CollideWith(w.static, w.nearStatic)
	w.dynamic.Collide(w.nearDynamic)

	if err := w.world.Step(dt); err != nil {
		w.log.Error().Err(err).Msg("Physics: step failed")
	}
	w.group.Empty()

	w.stepping = false
	w.applyPending()

	for _, o := range w.objects {
		o.mirror()
	}

	w.stats.Steps++
	w.stats.Contacts += uint64(w.stepContacts)
	w.stats.Truncated += uint64(w.stepTruncated)
	w.metrics.recordStep(w.stepContacts, w.stepTruncated, float64(time.Since(start).Microseconds())/1000)
}

func objectOf(g *dynamics.Geom) *PhysicsObject {
	o, _ := g.Data().(*PhysicsObject)
	return o
}

func (w *PhysicsWorld) nearStatic(a, b *dynamics.Geom) {
	w.dispatch(a, b)
}

func (w *PhysicsWorld) nearDynamic(a, b *dynamics.Geom) {
	oa, ob := objectOf(a), objectOf(b)
	if oa == nil || ob == nil || !oa.dynamic || !ob.dynamic {
		return
	}
	w.dispatch(a, b)
}

// dispatch turns the contacts of one overlapping pair into contact joints
func (w *PhysicsWorld) dispatch(a, b *dynamics.Geom) {
	cs := w.collide(a, b)
	for i := range cs {
		j := w.world.NewContactJoint(w.group, cs[i].joint())
		j.Attach(a.Body(), b.Body())
	}
	w.stepContacts += len(cs)
}

// collide runs the narrow phase on a pair and builds at most MaxContacts contacts
func (w *PhysicsWorld) collide(a, b *dynamics.Geom) []Contact {
	limit := w.settings.MaxContacts
	raw := dynamics.Collide(a, b, limit+1)
	if len(raw) == 0 {
		return nil
	}
	if len(raw) > limit {
		raw = raw[:limit]
		w.stepTruncated++
		w.log.Debug().
			Str("a", a.Class().String()).
			Str("b", b.Class().String()).
			Int("max", limit).
			Msg("Physics: contacts truncated")
	}

	oa, ob := objectOf(a), objectOf(b)
	m := mix(oa.surface(&w.settings), ob.surface(&w.settings))
	out := make([]Contact, 0, len(raw))
	for _, g := range raw {
		c := newContact(g, m)
		if oa != nil && oa.modifier != nil {
			oa.modifier(&c, ob)
		}
		if ob != nil && ob.modifier != nil {
			ob.modifier(&c, oa)
		}
		out = append(out, c)
	}
	return out
}

// Contacts returns the contacts the next step would generate for a pair of
// objects, honouring MaxContacts. Nothing is added to the solver.
func (w *PhysicsWorld) Contacts(a, b *PhysicsObject) []Contact {
	if a == nil || b == nil || a.geom == nil || b.geom == nil {
		return nil
	}
	return w.collide(a.geom, b.geom)
}

// AddPhysicsObject puts an object into stepping and dispatch. During a step
// the request is queued until the step boundary.
func (w *PhysicsWorld) AddPhysicsObject(o *PhysicsObject) {
	if o == nil || o.released || o.world != w {
		return
	}
	if w.stepping {
		w.pending = append(w.pending, pendingOp{kind: opAdd, obj: o})
		return
	}
	w.add(o)
}

// RemovePhysicsObject takes an object out of the world and destroys its engine
// handles. Removing an object twice is a no-op.
func (w *PhysicsWorld) RemovePhysicsObject(o *PhysicsObject) {
	if o == nil || o.released || o.world != w {
		return
	}
	if w.stepping {
		w.pending = append(w.pending, pendingOp{kind: opRemove, obj: o})
		return
	}
	w.remove(o)
}

func (w *PhysicsWorld) detach(o *PhysicsObject) {
	if o.released || !o.inWorld {
		return
	}
	if w.stepping {
		w.pending = append(w.pending, pendingOp{kind: opDetach, obj: o})
		return
	}
	w.unlink(o)
	w.detached[o] = struct{}{}
	if o.body != nil {
		o.body.Disable()
	}
}

func (w *PhysicsWorld) applyPending() {
	if len(w.pending) == 0 {
		return
	}
	ops := w.pending
	w.pending = nil
	for _, op := range ops {
		switch op.kind {
		case opAdd:
			w.add(op.obj)
		case opRemove:
			w.remove(op.obj)
		case opDetach:
			w.detach(op.obj)
		}
	}
}

func (w *PhysicsWorld) add(o *PhysicsObject) {
	if o.inWorld || o.released || !w.initialized {
		return
	}
	delete(w.detached, o)
	w.index[o] = len(w.objects)
	w.objects = append(w.objects, o)
	if o.body != nil {
		o.body.Enable()
		w.dynamic.Add(o.geom)
	} else {
		w.static.Add(o.geom)
	}
	o.inWorld = true
}

func (w *PhysicsWorld) remove(o *PhysicsObject) {
	if o.released {
		return
	}
	w.unlink(o)
	delete(w.detached, o)
	o.releaseHandles()
	w.log.Debug().Str("name", o.Name).Msg("Physics: object removed")
}

// unlink drops o from the live set and its space (swap-remove)
func (w *PhysicsWorld) unlink(o *PhysicsObject) {
	i, ok := w.index[o]
	if !ok {
		return
	}
	last := len(w.objects) - 1
	w.objects[i] = w.objects[last]
	w.index[w.objects[i]] = i
	w.objects[last] = nil
	w.objects = w.objects[:last]
	delete(w.index, o)

	if sp := o.geom.Space(); sp != nil {
		sp.Remove(o.geom)
	}
	o.inWorld = false
}

// CastRay finds the nearest hit of a ray geom against both spaces, ignoring
// exclude (typically the ray's owner).
func (w *PhysicsWorld) CastRay(ray *dynamics.Geom, exclude *PhysicsObject) (dynamics.ContactGeom, *PhysicsObject, bool) {
	var best dynamics.ContactGeom
	var hitObj *PhysicsObject
	found := false
	if !w.initialized || ray == nil {
		return best, nil, false
	}

	visit := func(r, g *dynamics.Geom) {
		o := objectOf(g)
		if exclude != nil && o == exclude {
			return
		}
		for _, c := range dynamics.Collide(r, g, 1) {
			if !found || c.Depth < best.Depth {
				best = c
				hitObj = o
				found = true
			}
		}
	}
	w.static.CollideGeom(ray, visit)
	w.dynamic.CollideGeom(ray, visit)
	return best, hitObj, found
}

// Destroy releases every object's engine handles and the world itself. Safe to
// call more than once; Init may be called again afterwards.
func (w *PhysicsWorld) Destroy() {
	if !w.initialized {
		return
	}
	w.applyPending()
	for _, o := range w.objects {
		o.inWorld = false
		o.releaseHandles()
	}
	for o := range w.detached {
		o.releaseHandles()
	}
	w.objects = nil
	w.index = make(map[*PhysicsObject]int)
	w.detached = make(map[*PhysicsObject]struct{})
	w.controllers = nil

	if w.ground != nil {
		w.ground.Destroy()
		w.ground = nil
	}
	w.group.Destroy()
	w.static.Destroy()
	w.dynamic.Destroy()
	w.world.Destroy()
	w.initialized = false

	w.log.Info().Uint64("steps", w.stats.Steps).Msg("Physics: world destroyed")
}
