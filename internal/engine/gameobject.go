package engine

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
	Scale    rl.Vector3
}

// Quaternion converts the Euler rotation to a quaternion.
func (t Transform) Quaternion() rl.Quaternion {
	return rl.QuaternionFromEuler(
		t.Rotation.X*rl.Deg2rad,
		t.Rotation.Y*rl.Deg2rad,
		t.Rotation.Z*rl.Deg2rad,
	)
}

var nextUID atomic.Uint64

// GameObject is a render-scene node. Physics objects push their pose into it
// once per frame through SetPose; it never writes physics state back.
type GameObject struct {
	UID        uint64
	Name       string
	Tags       []string
	Transform  Transform
	Active     bool
	Scene      *Scene
	Parent     *GameObject
	Children   []*GameObject
	components []Component
	started    bool
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:    nextUID.Add(1),
		Name:   name,
		Active: true,
		Transform: Transform{
			Scale: rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		components: make([]Component, 0),
		Children:   make([]*GameObject, 0),
	}
}

// SetPose sets the local position and rotation from a physics pose.
func (g *GameObject) SetPose(position rl.Vector3, rotation rl.Quaternion) {
	g.Transform.Position = position
	g.Transform.Rotation = rl.Vector3Scale(rl.QuaternionToEuler(rotation), rl.Rad2deg)
}

func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
}

// GetComponent returns the first component of type T, or the zero value.
func GetComponent[T Component](g *GameObject) T {
	var zero T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

func (g *GameObject) Update(deltaTime float32) {
	if !g.Active {
		return
	}
	for _, c := range g.components {
		c.Update(deltaTime)
	}
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (g *GameObject) AddChild(child *GameObject) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = g
	g.Children = append(g.Children, child)
}

func (g *GameObject) RemoveChild(child *GameObject) {
	for i, c := range g.Children {
		if c == child {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// WorldQuaternion composes the rotations of all ancestors.
func (g *GameObject) WorldQuaternion() rl.Quaternion {
	q := g.Transform.Quaternion()
	if g.Parent == nil {
		return q
	}
	return rl.QuaternionMultiply(g.Parent.WorldQuaternion(), q)
}

func (g *GameObject) WorldPosition() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Position
	}
	scaled := rl.Vector3Multiply(g.Transform.Position, g.Parent.WorldScale())
	rotated := rl.Vector3RotateByQuaternion(scaled, g.Parent.WorldQuaternion())
	return rl.Vector3Add(g.Parent.WorldPosition(), rotated)
}

// WorldRotation returns the world rotation as Euler degrees.
func (g *GameObject) WorldRotation() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Rotation
	}
	return rl.Vector3Scale(rl.QuaternionToEuler(g.WorldQuaternion()), rl.Rad2deg)
}

func (g *GameObject) WorldScale() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Scale
	}
	return rl.Vector3Multiply(g.Parent.WorldScale(), g.Transform.Scale)
}
