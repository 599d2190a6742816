package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Shapes accepted in ObjectDef.Shape.
const (
	ShapeBox      = "box"
	ShapeSphere   = "sphere"
	ShapeCapsule  = "capsule"
	ShapeCylinder = "cylinder"
	ShapeTriMesh  = "trimesh"
)

var ErrInvalidLevel = errors.New("world: invalid level")

// --- JSON types ---

type Level struct {
	Name     string       `json:"name,omitempty"`
	Terrain  *TerrainDef  `json:"terrain,omitempty"`
	Objects  []ObjectDef  `json:"objects,omitempty"`
	Vehicles []VehicleDef `json:"vehicles,omitempty"`
	Bowsers  []BowserDef  `json:"bowsers,omitempty"`
	Players  []PlayerDef  `json:"players,omitempty"`
}

// TerrainDef is a heightmap of Width*Depth samples centered on Position.
type TerrainDef struct {
	Position [3]float32   `json:"position"`
	Width    int          `json:"width"`
	Depth    int          `json:"depth"`
	CellSize float32      `json:"cellSize"`
	Heights  []float32    `json:"heights"`
	Material *MaterialDef `json:"material,omitempty"`
}

type MaterialDef struct {
	Friction       float32 `json:"friction"`
	Bounce         float32 `json:"bounce,omitempty"`
	BounceVelocity float32 `json:"bounceVelocity,omitempty"`
	SoftERP        float32 `json:"softERP,omitempty"`
	SoftCFM        float32 `json:"softCFM,omitempty"`
	Slip           float32 `json:"slip,omitempty"`
}

func (m *MaterialDef) material() physics.Material {
	return physics.Material{
		Friction:       m.Friction,
		Bounce:         m.Bounce,
		BounceVelocity: m.BounceVelocity,
		SoftERP:        m.SoftERP,
		SoftCFM:        m.SoftCFM,
		Slip:           m.Slip,
	}
}

type ObjectDef struct {
	Name     string       `json:"name"`
	Tags     []string     `json:"tags,omitempty"`
	Shape    string       `json:"shape"`
	Position [3]float32   `json:"position"`
	Rotation [3]float32   `json:"rotation"` // Euler degrees
	Size     [3]float32   `json:"size,omitempty"`
	Radius   float32      `json:"radius,omitempty"`
	Length   float32      `json:"length,omitempty"`
	Static   bool         `json:"static,omitempty"`
	Density  float32      `json:"density,omitempty"`
	Mass     float32      `json:"mass,omitempty"`
	Material *MaterialDef `json:"material,omitempty"`

	Vertices [][3]float32 `json:"vertices,omitempty"` // trimesh only
	Indices  []int32      `json:"indices,omitempty"`
}

// VehicleDef places a vehicle. Zero-valued overrides keep the configured car.
type VehicleDef struct {
	Name           string     `json:"name"`
	Position       [3]float32 `json:"position"`
	Rotation       [3]float32 `json:"rotation"`
	Mass           float32    `json:"mass,omitempty"`
	Fuel           *float32   `json:"fuel,omitempty"`
	FourWheelDrive *bool      `json:"fourWheelDrive,omitempty"`
}

type BowserDef struct {
	Position [3]float32 `json:"position"`
	Stock    float32    `json:"stock"`
	Health   float32    `json:"health,omitempty"`
}

type PlayerDef struct {
	Name     string     `json:"name"`
	Position [3]float32 `json:"position"`
	Vehicle  string     `json:"vehicle,omitempty"` // board this vehicle on spawn
	Seat     int        `json:"seat,omitempty"`
}

// Vec converts a JSON triple.
func Vec(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// Triple converts a vector to its JSON form.
func Triple(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Quat converts Euler degrees to a quaternion.
func Quat(deg [3]float32) rl.Quaternion {
	return rl.QuaternionFromEuler(deg[0]*rl.Deg2rad, deg[1]*rl.Deg2rad, deg[2]*rl.Deg2rad)
}

// Degrees converts a quaternion to Euler degrees.
func Degrees(q rl.Quaternion) [3]float32 {
	return Triple(rl.Vector3Scale(rl.QuaternionToEuler(q), rl.Rad2deg))
}

// --- Validation ---

// Validate reports every malformed entry. Each joined error wraps ErrInvalidLevel.
func (l *Level) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidLevel}, args...)...))
	}

	if t := l.Terrain; t != nil {
		if t.Width < 2 || t.Depth < 2 {
			bad("terrain needs at least 2x2 samples, got %dx%d", t.Width, t.Depth)
		} else if len(t.Heights) != t.Width*t.Depth {
			bad("terrain has %d heights, want %d", len(t.Heights), t.Width*t.Depth)
		}
		if t.CellSize <= 0 {
			bad("terrain cell size must be positive")
		}
	}

	names := make(map[string]bool)
	for i, o := range l.Objects {
		if o.Name != "" {
			if names[o.Name] {
				bad("object %d: duplicate name %q", i, o.Name)
			}
			names[o.Name] = true
		}
		switch o.Shape {
		case ShapeBox:
			if o.Size[0] <= 0 || o.Size[1] <= 0 || o.Size[2] <= 0 {
				bad("object %d (%s): box size must be positive", i, o.Name)
			}
		case ShapeSphere:
			if o.Radius <= 0 {
				bad("object %d (%s): sphere radius must be positive", i, o.Name)
			}
		case ShapeCapsule, ShapeCylinder:
			if o.Radius <= 0 || o.Length < 0 {
				bad("object %d (%s): %s needs a positive radius", i, o.Name, o.Shape)
			}
		case ShapeTriMesh:
			if len(o.Vertices) < 3 || len(o.Indices) < 3 {
				bad("object %d (%s): trimesh needs vertices and indices", i, o.Name)
			}
		default:
			bad("object %d (%s): unknown shape %q", i, o.Name, o.Shape)
		}
	}

	vehicles := make(map[string]bool)
	for i, v := range l.Vehicles {
		if v.Name == "" {
			bad("vehicle %d: missing name", i)
			continue
		}
		if vehicles[v.Name] {
			bad("vehicle %d: duplicate name %q", i, v.Name)
		}
		vehicles[v.Name] = true
	}
	for i, b := range l.Bowsers {
		if b.Stock < 0 {
			bad("bowser %d: negative stock", i)
		}
	}
	for i, p := range l.Players {
		if p.Vehicle != "" && !vehicles[p.Vehicle] {
			bad("player %d (%s): unknown vehicle %q", i, p.Name, p.Vehicle)
		}
		if p.Seat < 0 {
			bad("player %d (%s): negative seat", i, p.Name)
		}
	}
	return errors.Join(errs...)
}

// --- Loading ---

// ParseLevel decodes and validates a level document.
func ParseLevel(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(data)
}

// --- Saving ---

func SaveLevel(path string, lvl *Level) error {
	data, err := json.MarshalIndent(lvl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal level: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	return nil
}
