package world

import (
	"fmt"

	"drive3d/internal/engine"
	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// TagTerrain marks the terrain's scene node.
const TagTerrain = "terrain"

type placed struct {
	def  ObjectDef
	obj  *physics.PhysicsObject
	node *engine.GameObject
}

// World holds the static and free-standing objects of a level together with
// the scene nodes mirroring them.
type World struct {
	Scene   *engine.Scene
	Physics *physics.PhysicsWorld
	Terrain *physics.PhysicsObject

	terrainNode *engine.GameObject
	objects     []placed
	log         zerolog.Logger
}

func New(pw *physics.PhysicsWorld, scene *engine.Scene, log zerolog.Logger) *World {
	return &World{
		Scene:   scene,
		Physics: pw,
		log:     log.With().Str("component", "world").Logger(),
	}
}

// Build creates the level's terrain and objects. Vehicles, bowsers and
// players are left to the caller.
func (w *World) Build(lvl *Level) error {
	if !w.Physics.Initialized() {
		return physics.ErrNotInitialized
	}
	if lvl.Terrain != nil {
		if err := w.buildTerrain(lvl.Terrain); err != nil {
			return err
		}
	}
	for _, def := range lvl.Objects {
		if err := w.buildObject(def); err != nil {
			return fmt.Errorf("object %q: %w", def.Name, err)
		}
	}
	w.log.Info().
		Str("level", lvl.Name).
		Bool("terrain", w.Terrain != nil).
		Int("objects", len(w.objects)).
		Msg("World: level built")
	return nil
}

func (w *World) buildTerrain(t *TerrainDef) error {
	opts := []physics.Option{physics.WithName(TagTerrain)}
	if t.Material != nil {
		opts = append(opts, physics.WithMaterial(t.Material.material()))
	}
	obj, err := w.Physics.CreateHeightmap(Vec(t.Position), rl.QuaternionIdentity(), t.Heights, t.Width, t.Depth, t.CellSize, opts...)
	if err != nil {
		return err
	}
	w.Terrain = obj
	w.terrainNode = engine.NewGameObject(TagTerrain)
	w.terrainNode.Tags = []string{TagTerrain}
	w.terrainNode.SetPose(obj.Position(), obj.Rotation())
	obj.SetSceneNode(w.terrainNode)
	w.Scene.AddGameObject(w.terrainNode)
	return nil
}

func (w *World) buildObject(def ObjectDef) error {
	pos, rot := Vec(def.Position), Quat(def.Rotation)
	opts := []physics.Option{physics.WithName(def.Name)}
	if def.Static {
		opts = append(opts, physics.WithStatic())
	}
	if def.Density > 0 {
		opts = append(opts, physics.WithDensity(def.Density))
	}
	if def.Mass > 0 {
		opts = append(opts, physics.WithMass(def.Mass))
	}
	if def.Material != nil {
		opts = append(opts, physics.WithMaterial(def.Material.material()))
	}

	var obj *physics.PhysicsObject
	var err error
	switch def.Shape {
	case ShapeBox:
		obj = w.Physics.CreateBox(pos, rot, Vec(def.Size), opts...)
	case ShapeSphere:
		obj = w.Physics.CreateSphere(pos, rot, def.Radius, opts...)
	case ShapeCapsule:
		obj = w.Physics.CreateCapsule(pos, rot, def.Radius, def.Length, opts...)
	case ShapeCylinder:
		obj = w.Physics.CreateCylinder(pos, rot, def.Radius, def.Length, opts...)
	case ShapeTriMesh:
		vertices := make([]rl.Vector3, len(def.Vertices))
		for i, v := range def.Vertices {
			vertices[i] = Vec(v)
		}
		obj, err = w.Physics.CreateTrimesh(pos, rot, vertices, def.Indices, opts...)
	default:
		err = fmt.Errorf("%w: unknown shape %q", ErrInvalidLevel, def.Shape)
	}
	if err != nil {
		return err
	}
	if obj == nil {
		return physics.ErrNotInitialized
	}

	node := engine.NewGameObject(def.Name)
	node.Tags = def.Tags
	node.SetPose(pos, rot)
	obj.SetSceneNode(node)
	w.Scene.AddGameObject(node)
	w.objects = append(w.objects, placed{def: def, obj: obj, node: node})
	return nil
}

// Objects returns the level objects in definition order, terrain excluded.
func (w *World) Objects() []*physics.PhysicsObject {
	out := make([]*physics.PhysicsObject, len(w.objects))
	for i, p := range w.objects {
		out[i] = p.obj
	}
	return out
}

// Find returns the named object, or nil.
func (w *World) Find(name string) *physics.PhysicsObject {
	for _, p := range w.objects {
		if p.def.Name == name {
			return p.obj
		}
	}
	return nil
}

// Snapshot returns a copy of lvl whose objects carry their current poses.
// Objects removed since Build are dropped.
func (w *World) Snapshot(lvl *Level) *Level {
	out := *lvl
	out.Objects = make([]ObjectDef, 0, len(w.objects))
	for _, p := range w.objects {
		if p.obj.Released() {
			continue
		}
		def := p.def
		def.Position = Triple(p.obj.Position())
		def.Rotation = Degrees(p.obj.Rotation())
		out.Objects = append(out.Objects, def)
	}
	return &out
}

// Update pushes object poses out to their scene nodes and runs the scene's components.
func (w *World) Update(currentTime float64, deltaTime float32) {
	if w.Terrain != nil {
		w.Terrain.Update(currentTime)
	}
	for _, p := range w.objects {
		p.obj.Update(currentTime)
	}
	w.Scene.Update(deltaTime)
}

// Clear releases every object built by Build and removes their scene nodes.
func (w *World) Clear() {
	for _, p := range w.objects {
		p.obj.Release()
		w.Scene.RemoveGameObject(p.node)
	}
	w.objects = nil
	if w.Terrain != nil {
		w.Terrain.Release()
		w.Scene.RemoveGameObject(w.terrainNode)
		w.Terrain, w.terrainNode = nil, nil
	}
}
