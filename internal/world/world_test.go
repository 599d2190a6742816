package world

import (
	"testing"

	"drive3d/internal/engine"
	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) *World {
	t.Helper()
	pw := physics.NewPhysicsWorld(physics.DefaultSettings(), zerolog.Nop())
	require.NoError(t, pw.Init(rl.Vector3{Y: -9.81}, 20, false))
	t.Cleanup(pw.Destroy)
	return New(pw, engine.NewScene("test"), zerolog.Nop())
}

func TestBuildLevel(t *testing.T) {
	w := newWorld(t)
	lvl, err := ParseLevel([]byte(sampleLevel))
	require.NoError(t, err)

	require.NoError(t, w.Build(lvl))

	require.NotNil(t, w.Terrain)
	assert.Equal(t, physics.KindHeightmap, w.Terrain.Kind())
	assert.Equal(t, float32(1.1), w.Terrain.Material().Friction)
	assert.Len(t, w.Objects(), 4)
	assert.Equal(t, 5, w.Physics.NumObjects())
	assert.Equal(t, 5, w.Scene.Len())
	assert.Len(t, w.Scene.FindByTag(TagTerrain), 1)

	crate := w.Find("crate")
	require.NotNil(t, crate)
	assert.True(t, crate.HasBody())
	assert.InDelta(t, 50, crate.Mass(), 1e-3)
	assert.True(t, w.Find("wall").IsStatic())
	assert.InDelta(t, 5, w.Find("ball").Mass(), 1e-3)
	assert.True(t, w.Find("ramp").IsStatic())
	assert.Nil(t, w.Find("nothing"))
}

func TestBuildBeforeInit(t *testing.T) {
	pw := physics.NewPhysicsWorld(physics.DefaultSettings(), zerolog.Nop())
	w := New(pw, engine.NewScene("test"), zerolog.Nop())
	err := w.Build(&Level{})
	assert.ErrorIs(t, err, physics.ErrNotInitialized)
}

func TestObjectsSettleOnTerrainAndMirror(t *testing.T) {
	w := newWorld(t)
	lvl, err := ParseLevel([]byte(sampleLevel))
	require.NoError(t, err)
	require.NoError(t, w.Build(lvl))

	for i := 1; i <= 240; i++ {
		now := float64(i) / 60
		w.Physics.Update(now)
		w.Update(now, 1.0/60)
	}

	crate := w.Find("crate")
	assert.InDelta(t, 0.5, crate.Position().Y, 0.05)
	node := w.Scene.FindByName("crate")
	require.NotNil(t, node)
	assert.InDelta(t, crate.Position().Y, node.Transform.Position.Y, 1e-6)

	snap := w.Snapshot(lvl)
	assert.Equal(t, lvl.Name, snap.Name)
	require.Len(t, snap.Objects, 4)
	assert.InDelta(t, 0.5, snap.Objects[0].Position[1], 0.05)
	assert.Equal(t, float32(3), lvl.Objects[0].Position[1])
	assert.Equal(t, lvl.Objects[1].Position, snap.Objects[1].Position)
}

func TestClear(t *testing.T) {
	w := newWorld(t)
	lvl, err := ParseLevel([]byte(sampleLevel))
	require.NoError(t, err)
	require.NoError(t, w.Build(lvl))
	crate := w.Find("crate")

	w.Clear()

	assert.Equal(t, 0, w.Physics.NumObjects())
	assert.Equal(t, 0, w.Scene.Len())
	assert.Nil(t, w.Terrain)
	assert.Empty(t, w.Objects())
	assert.True(t, crate.Released())

	snap := w.Snapshot(lvl)
	assert.Empty(t, snap.Objects)
}
