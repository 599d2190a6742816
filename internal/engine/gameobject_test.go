package engine

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestNewGameObject(t *testing.T) {
	obj := NewGameObject("TestObject")

	if obj.Name != "TestObject" {
		t.Errorf("Expected name 'TestObject', got '%s'", obj.Name)
	}

	if obj.UID == 0 {
		t.Error("UID should not be 0")
	}

	if obj.components == nil {
		t.Error("components slice should be initialized")
	}
}

func TestGameObjectUniqueUIDs(t *testing.T) {
	obj1 := NewGameObject("First")
	obj2 := NewGameObject("Second")
	obj3 := NewGameObject("Third")

	if obj1.UID == obj2.UID {
		t.Error("GameObjects should have unique UIDs")
	}
	if obj2.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
	if obj1.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
}

func TestGameObjectHasTag(t *testing.T) {
	obj := NewGameObject("Test")
	obj.Tags = []string{"enemy", "ai", "dangerous"}

	if !obj.HasTag("enemy") {
		t.Error("HasTag should return true for existing tag")
	}

	if !obj.HasTag("ai") {
		t.Error("HasTag should return true for existing tag")
	}

	if obj.HasTag("player") {
		t.Error("HasTag should return false for non-existent tag")
	}

	// Test empty tags
	obj2 := NewGameObject("Test2")
	if obj2.HasTag("anything") {
		t.Error("HasTag should return false when Tags is nil/empty")
	}
}

func TestGameObjectParentChild(t *testing.T) {
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")

	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("Child.Parent should be set")
	}

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child, got %d", len(parent.Children))
	}

	if parent.Children[0] != child {
		t.Error("Child not added to parent's Children slice")
	}
}

func TestGameObjectRemoveChild(t *testing.T) {
	parent := NewGameObject("Parent")
	child1 := NewGameObject("Child1")
	child2 := NewGameObject("Child2")

	parent.AddChild(child1)
	parent.AddChild(child2)

	parent.RemoveChild(child1)

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child after removal, got %d", len(parent.Children))
	}

	if parent.Children[0] != child2 {
		t.Error("Wrong child removed")
	}

	if child1.Parent != nil {
		t.Error("Removed child should have nil parent")
	}
}

func TestGameObjectAddComponent(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &BaseComponent{}

	obj.AddComponent(comp)

	if len(obj.components) != 1 {
		t.Errorf("Expected 1 component, got %d", len(obj.components))
	}

	if comp.gameObject != obj {
		t.Error("Component.gameObject should be set")
	}
}

func TestGameObjectGetComponent(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &BaseComponent{}

	obj.AddComponent(comp)

	found := GetComponent[*BaseComponent](obj)
	if found != comp {
		t.Error("GetComponent failed to find component")
	}
}

func TestGameObjectStartCalledOnce(t *testing.T) {
	obj := NewGameObject("Test")

	// First call should set started = true
	obj.Start()
	if !obj.started {
		t.Error("started flag should be true after Start()")
	}

	// Second call should be a no-op (no panic, no re-initialization)
	obj.Start() // Should not panic or cause issues
}

type countingComponent struct {
	BaseComponent
	starts  int
	updates int
}

func (c *countingComponent) Start() { c.starts++ }

func (c *countingComponent) Update(deltaTime float32) { c.updates++ }

func TestGameObjectInactiveSkipsUpdate(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &countingComponent{}
	obj.AddComponent(comp)

	obj.Start()
	obj.Start()
	obj.Update(0.016)
	obj.Active = false
	obj.Update(0.016)

	if comp.starts != 1 {
		t.Errorf("Expected 1 start, got %d", comp.starts)
	}
	if comp.updates != 1 {
		t.Errorf("Expected 1 update, got %d", comp.updates)
	}
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-3 && d > -1e-3
}

func TestGameObjectSetPose(t *testing.T) {
	obj := NewGameObject("Car")
	pos := rl.Vector3{X: 1, Y: 2, Z: 3}
	obj.SetPose(pos, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/6))

	if obj.Transform.Position != pos {
		t.Errorf("Expected position %v, got %v", pos, obj.Transform.Position)
	}
	if !near(obj.Transform.Rotation.Y, 30) || !near(obj.Transform.Rotation.X, 0) || !near(obj.Transform.Rotation.Z, 0) {
		t.Errorf("Expected rotation (0, 30, 0), got %v", obj.Transform.Rotation)
	}
}

func TestGameObjectWorldPosition(t *testing.T) {
	parent := NewGameObject("Chassis")
	child := NewGameObject("Wheel")
	parent.AddChild(child)

	parent.SetPose(rl.Vector3{X: 10}, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/6))
	parent.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	child.Transform.Position = rl.Vector3{X: 1}

	got := child.WorldPosition()
	// (2, 0, 0) turned 30 degrees about Y
	if !near(got.X, 11.7320) || !near(got.Y, 0) || !near(got.Z, -1) {
		t.Errorf("Expected world position (11.732, 0, -1), got %v", got)
	}
	if !near(child.WorldRotation().Y, 30) {
		t.Errorf("Expected world yaw 30, got %v", child.WorldRotation().Y)
	}
	if child.WorldScale() != (rl.Vector3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("Expected world scale 2, got %v", child.WorldScale())
	}
}

func TestAddChildReparents(t *testing.T) {
	a := NewGameObject("A")
	b := NewGameObject("B")
	child := NewGameObject("Child")

	a.AddChild(child)
	b.AddChild(child)

	if len(a.Children) != 0 {
		t.Errorf("Expected old parent to lose child, got %d children", len(a.Children))
	}
	if child.Parent != b {
		t.Error("Expected child to be reparented")
	}
}
