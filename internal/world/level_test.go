package world

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLevel = `{
	"name": "yard",
	"terrain": {
		"position": [0, 0, 0],
		"width": 3, "depth": 3, "cellSize": 10,
		"heights": [0, 0, 0, 0, 0, 0, 0, 0, 0],
		"material": { "friction": 1.1 }
	},
	"objects": [
		{ "name": "crate", "shape": "box", "position": [2, 3, 0], "size": [1, 1, 1], "density": 50 },
		{ "name": "wall", "shape": "box", "position": [0, 1, 8], "size": [10, 2, 0.5], "static": true },
		{ "name": "ball", "shape": "sphere", "position": [-3, 2, 0], "radius": 0.5, "mass": 5 },
		{ "name": "ramp", "shape": "trimesh", "position": [6, 0, 6],
		  "vertices": [[0, 0, 0], [2, 0, 0], [0, 1, 2]], "indices": [0, 2, 1] }
	],
	"vehicles": [ { "name": "car1", "position": [0, 2, -5], "rotation": [0, 90, 0] } ],
	"bowsers": [ { "position": [4, 0, -5], "stock": 200 } ],
	"players": [ { "name": "alice", "position": [1, 1, 1] }, { "name": "bob", "position": [0, 1, 0], "vehicle": "car1" } ]
}`

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel([]byte(sampleLevel))
	require.NoError(t, err)

	assert.Equal(t, "yard", lvl.Name)
	require.NotNil(t, lvl.Terrain)
	assert.Len(t, lvl.Terrain.Heights, 9)
	assert.Equal(t, float32(1.1), lvl.Terrain.Material.Friction)
	require.Len(t, lvl.Objects, 4)
	assert.True(t, lvl.Objects[1].Static)
	assert.Equal(t, float32(90), lvl.Vehicles[0].Rotation[1])
	assert.Nil(t, lvl.Vehicles[0].Fuel)
	assert.Equal(t, float32(200), lvl.Bowsers[0].Stock)
	assert.Equal(t, "car1", lvl.Players[1].Vehicle)
}

func TestLevelValidate(t *testing.T) {
	cases := map[string]Level{
		"terrain heights": {Terrain: &TerrainDef{Width: 2, Depth: 2, CellSize: 1, Heights: []float32{0}}},
		"terrain cell":    {Terrain: &TerrainDef{Width: 2, Depth: 2, Heights: make([]float32, 4)}},
		"unknown shape":   {Objects: []ObjectDef{{Name: "x", Shape: "cone"}}},
		"box size":        {Objects: []ObjectDef{{Name: "x", Shape: ShapeBox}}},
		"sphere radius":   {Objects: []ObjectDef{{Name: "x", Shape: ShapeSphere}}},
		"duplicate":       {Objects: []ObjectDef{{Name: "x", Shape: ShapeSphere, Radius: 1}, {Name: "x", Shape: ShapeSphere, Radius: 1}}},
		"vehicle name":    {Vehicles: []VehicleDef{{}}},
		"player vehicle":  {Players: []PlayerDef{{Name: "p", Vehicle: "ghost"}}},
	}
	for name, lvl := range cases {
		err := lvl.Validate()
		if assert.Error(t, err, name) {
			assert.True(t, errors.Is(err, ErrInvalidLevel), name)
		}
	}
	assert.NoError(t, (&Level{}).Validate())
}

func TestParseLevelRejectsBadJSON(t *testing.T) {
	_, err := ParseLevel([]byte(`{"objects": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse level")
}

func TestSaveLoadLevel(t *testing.T) {
	lvl, err := ParseLevel([]byte(sampleLevel))
	require.NoError(t, err)
	fuel := float32(12)
	lvl.Vehicles[0].Fuel = &fuel

	path := filepath.Join(t.TempDir(), "yard.json")
	require.NoError(t, SaveLevel(path, lvl))

	again, err := LoadLevel(path)
	require.NoError(t, err)
	assert.Equal(t, lvl, again)
	require.NotNil(t, again.Vehicles[0].Fuel)
	assert.Equal(t, float32(12), *again.Vehicles[0].Fuel)
}

func TestLoadLevelMissing(t *testing.T) {
	_, err := LoadLevel(filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
