package player

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSeat struct {
	index   int
	vacated []ID
}

func (s *fakeSeat) Index() int { return s.index }

func (s *fakeSeat) Vacate(id ID) { s.vacated = append(s.vacated, id) }

func TestNewPlayerWalks(t *testing.T) {
	p := New("alice")
	if p.State() != Walk {
		t.Errorf("Expected Walk, got %v", p.State())
	}
	if p.Seat() != nil {
		t.Error("Expected no seat")
	}
	if p.Camera() != CameraFirstPerson {
		t.Errorf("Expected first-person camera, got %v", p.Camera())
	}
}

func TestBoardAsDriver(t *testing.T) {
	p := New("alice")
	var cams []CameraMode
	p.CameraChanged.AddListener(func(m CameraMode) { cams = append(cams, m) })

	seat := &fakeSeat{index: 0}
	require.NoError(t, p.Board(seat, true))

	assert.Equal(t, Drive, p.State())
	assert.Same(t, seat, p.Seat())
	assert.Equal(t, CameraChase, p.Camera())
	assert.Equal(t, []CameraMode{CameraChase}, cams)

	assert.ErrorIs(t, p.Board(&fakeSeat{index: 1}, false), ErrSeated)
	assert.Equal(t, Drive, p.State())
}

func TestBoardAsPassenger(t *testing.T) {
	p := New("bob")
	require.NoError(t, p.Board(&fakeSeat{index: 2}, false))
	assert.Equal(t, Passenger, p.State())
	assert.Equal(t, CameraPassenger, p.Camera())
	assert.True(t, p.State().Seated())
}

func TestLeaveRunsAtPosition(t *testing.T) {
	p := New("alice")
	require.NoError(t, p.Board(&fakeSeat{}, true))

	at := rl.Vector3{X: 3, Y: 4, Z: 5}
	require.NoError(t, p.Leave(at))
	assert.Equal(t, Run, p.State())
	assert.Nil(t, p.Seat())
	assert.Equal(t, at, p.Position())
	assert.Equal(t, CameraFirstPerson, p.Camera())

	assert.ErrorIs(t, p.Leave(at), ErrNotSeated)
}

func TestSetMovement(t *testing.T) {
	p := New("alice")
	require.NoError(t, p.SetMovement(Sprint))
	assert.Equal(t, Sprint, p.State())

	assert.ErrorIs(t, p.SetMovement(Drive), ErrInvalidState)
	assert.ErrorIs(t, p.SetMovement(Dead), ErrInvalidState)

	require.NoError(t, p.Board(&fakeSeat{}, true))
	assert.ErrorIs(t, p.SetMovement(Walk), ErrSeated)
}

func TestDeadIsTerminal(t *testing.T) {
	p := New("alice")
	var states []State
	p.StateChanged.AddListener(func(s State) { states = append(states, s) })

	p.Kill()
	p.Kill()
	assert.Equal(t, Dead, p.State())
	assert.False(t, p.Alive())
	assert.Equal(t, []State{Dead}, states)

	assert.ErrorIs(t, p.Board(&fakeSeat{}, true), ErrDead)
	assert.ErrorIs(t, p.SetMovement(Run), ErrDead)
	assert.Nil(t, p.Seat())
}

func TestKillWhileSeatedVacates(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	p := New("alice")
	id := reg.Add(p)

	seat := &fakeSeat{index: 1}
	require.NoError(t, p.Board(seat, false))
	p.Kill()

	assert.Equal(t, []ID{id}, seat.vacated)
	assert.Nil(t, p.Seat())
	assert.Equal(t, Dead, p.State())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	a, b := New("a"), New("b")

	idA := reg.Add(a)
	idB := reg.Add(b)
	assert.Equal(t, ID(1), idA)
	assert.Equal(t, ID(2), idB)
	assert.Equal(t, idA, reg.Add(a), "re-adding keeps the ID")
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get(idB)
	require.True(t, ok)
	assert.Same(t, b, got)

	assert.Equal(t, []*Player{a, b}, reg.All())

	reg.Remove(idA)
	reg.Remove(idA)
	_, ok = reg.Get(idA)
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRemoveFreesSeat(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	p := New("driver")
	id := reg.Add(p)
	seat := &fakeSeat{}
	require.NoError(t, p.Board(seat, true))

	reg.Remove(id)
	assert.Equal(t, []ID{id}, seat.vacated)
}
