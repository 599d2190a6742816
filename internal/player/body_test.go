package player

import (
	"testing"

	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) *physics.PhysicsWorld {
	t.Helper()
	w := physics.NewPhysicsWorld(physics.DefaultSettings(), zerolog.Nop())
	require.NoError(t, w.Init(rl.Vector3{Y: -9.81}, 20, true))
	t.Cleanup(w.Destroy)
	return w
}

func steps(w *physics.PhysicsWorld, n int) {
	for i := 0; i < n; i++ {
		w.Step()
	}
}

func TestBodyLandsAndIsGrounded(t *testing.T) {
	w := newWorld(t)
	b, err := NewBody(w, rl.Vector3{Y: 2}, DefaultBodyConfig())
	require.NoError(t, err)

	assert.False(t, b.Grounded())
	steps(w, 120)

	assert.True(t, b.Grounded())
	assert.InDelta(t, 0.9, b.Position().Y, 0.05)
	assert.Equal(t, rl.QuaternionIdentity(), b.Object().Rotation())
}

func TestBodyWalksAtStateSpeed(t *testing.T) {
	w := newWorld(t)
	p := New("walker")
	b, err := NewBody(w, rl.Vector3{Y: 0.9}, DefaultBodyConfig())
	require.NoError(t, err)
	p.AttachBody(b)
	p.SetPosition(rl.Vector3{Y: 0.9})

	steps(w, 10)
	require.True(t, b.Grounded())

	b.SetWish(rl.Vector3{X: 3})
	start := b.Position().X
	steps(w, 60)
	assert.InDelta(t, 2, b.Position().X-start, 0.1)

	require.NoError(t, p.SetMovement(Run))
	start = b.Position().X
	steps(w, 60)
	assert.InDelta(t, 5, b.Position().X-start, 0.1)
}

func TestBodyParkedWhileSeated(t *testing.T) {
	w := newWorld(t)
	p := New("driver")
	b, err := NewBody(w, rl.Vector3{Y: 0.9}, DefaultBodyConfig())
	require.NoError(t, err)
	p.AttachBody(b)

	require.NoError(t, p.Board(&fakeSeat{}, true))
	assert.True(t, b.Parked())
	assert.False(t, b.Object().InWorld())
	assert.Equal(t, 0, w.NumObjects())

	exit := rl.Vector3{X: 4, Y: 3}
	require.NoError(t, p.Leave(exit))
	assert.False(t, b.Parked())
	assert.True(t, b.Object().InWorld())
	assert.Equal(t, exit, p.Position())
}

func TestBodyRejectsBadConfig(t *testing.T) {
	w := newWorld(t)
	cfg := DefaultBodyConfig()
	cfg.Height = 0.5
	_, err := NewBody(w, rl.Vector3{}, cfg)
	assert.ErrorIs(t, err, ErrInvalidBody)
}

func TestBodyDestroy(t *testing.T) {
	w := newWorld(t)
	b, err := NewBody(w, rl.Vector3{Y: 2}, DefaultBodyConfig())
	require.NoError(t, err)
	obj := b.Object()

	b.Destroy()
	b.Destroy()
	assert.True(t, obj.Released())
	assert.Equal(t, 0, w.NumObjects())
	steps(w, 2)
}
