package physics

import (
	"fmt"

	"drive3d/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type createOptions struct {
	density  float32
	mass     float32
	static   bool
	material *Material
	name     string
}

// Option customises object creation.
type Option func(*createOptions)

// WithDensity derives the body mass from density and shape volume.
func WithDensity(d float32) Option {
	return func(o *createOptions) { o.density = d }
}

// WithMass scales the body to a total mass, overriding density.
func WithMass(m float32) Option {
	return func(o *createOptions) { o.mass = m }
}

// WithStatic creates a collision-only object without a body.
func WithStatic() Option {
	return func(o *createOptions) { o.static = true }
}

func WithMaterial(m Material) Option {
	return func(o *createOptions) { o.material = &m }
}

func WithName(name string) Option {
	return func(o *createOptions) { o.name = name }
}

func (w *PhysicsWorld) options(opts []Option) createOptions {
	o := createOptions{density: w.settings.DefaultDensity}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// create builds the object around geom, attaches a body when needed and adds it to the world
func (w *PhysicsWorld) create(kind Kind, geom *dynamics.Geom, position rl.Vector3, rotation rl.Quaternion, o createOptions, mass func(density float32) dynamics.Mass) *PhysicsObject {
	if !w.initialized {
		geom.Destroy()
		w.log.Error().Str("kind", kind.String()).Msg("Physics: create before Init")
		return nil
	}
	var body *dynamics.Body
	if !o.static && mass != nil {
		body = w.world.NewBody()
		m := mass(o.density)
		if o.mass > 0 {
			m.Adjust(o.mass)
		}
		body.SetMass(m)
	}
	obj := newObject(w, kind, geom, body)
	obj.Name = o.name
	obj.material = o.material
	obj.SetPose(position, rotation)
	w.AddPhysicsObject(obj)

	w.log.Debug().
		Str("name", obj.Name).
		Str("kind", kind.String()).
		Bool("body", body != nil).
		Msg("Physics: object created")
	return obj
}

func (w *PhysicsWorld) CreateBox(position rl.Vector3, rotation rl.Quaternion, size rl.Vector3, opts ...Option) *PhysicsObject {
	o := w.options(opts)
	geom := dynamics.NewBox(nil, size)
	return w.create(KindBox, geom, position, rotation, o, func(d float32) dynamics.Mass {
		return dynamics.BoxMass(d, size)
	})
}

func (w *PhysicsWorld) CreateSphere(position rl.Vector3, rotation rl.Quaternion, radius float32, opts ...Option) *PhysicsObject {
	o := w.options(opts)
	geom := dynamics.NewSphere(nil, radius)
	return w.create(KindSphere, geom, position, rotation, o, func(d float32) dynamics.Mass {
		return dynamics.SphereMass(d, radius)
	})
}

// CreateCapsule creates a capsule along local Y; length excludes the caps.
func (w *PhysicsWorld) CreateCapsule(position rl.Vector3, rotation rl.Quaternion, radius, length float32, opts ...Option) *PhysicsObject {
	o := w.options(opts)
	geom := dynamics.NewCapsule(nil, radius, length)
	return w.create(KindCapsule, geom, position, rotation, o, func(d float32) dynamics.Mass {
		return dynamics.CapsuleMass(d, radius, length)
	})
}

func (w *PhysicsWorld) CreateCylinder(position rl.Vector3, rotation rl.Quaternion, radius, length float32, opts ...Option) *PhysicsObject {
	o := w.options(opts)
	geom := dynamics.NewCylinder(nil, radius, length)
	return w.create(KindCylinder, geom, position, rotation, o, func(d float32) dynamics.Mass {
		return dynamics.CylinderMass(d, radius, length)
	})
}

// CreateTrimesh creates a triangle mesh object. The vertex and index buffers
// are copied, so callers may reuse them. Triangle meshes are collision-only.
func (w *PhysicsWorld) CreateTrimesh(position rl.Vector3, rotation rl.Quaternion, vertices []rl.Vector3, indices []int32, opts ...Option) (*PhysicsObject, error) {
	if !w.initialized {
		return nil, fmt.Errorf("create trimesh: %w", ErrNotInitialized)
	}
	data, err := dynamics.NewTriMeshData(vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("create trimesh: %w", err)
	}
	o := w.options(opts)
	o.static = true
	return w.create(KindTriMesh, dynamics.NewTriMesh(nil, data), position, rotation, o, nil), nil
}

// CreateHeightmap creates static terrain from width*depth height samples.
func (w *PhysicsWorld) CreateHeightmap(position rl.Vector3, rotation rl.Quaternion, heights []float32, width, depth int, cellSize float32, opts ...Option) (*PhysicsObject, error) {
	if !w.initialized {
		return nil, fmt.Errorf("create heightmap: %w", ErrNotInitialized)
	}
	data, err := dynamics.NewHeightfieldData(heights, width, depth, cellSize)
	if err != nil {
		return nil, fmt.Errorf("create heightmap: %w", err)
	}
	o := w.options(opts)
	o.static = true
	return w.create(KindHeightmap, dynamics.NewHeightfield(nil, data), position, rotation, o, nil), nil
}
