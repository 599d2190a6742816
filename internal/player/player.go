package player

import (
	"errors"

	"drive3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// State is the player's movement or seating state.
type State int

const (
	Dead State = iota
	Walk
	Run
	Sprint
	Drive
	Passenger
)

func (s State) String() string {
	switch s {
	case Dead:
		return "dead"
	case Walk:
		return "walk"
	case Run:
		return "run"
	case Sprint:
		return "sprint"
	case Drive:
		return "drive"
	case Passenger:
		return "passenger"
	}
	return "unknown"
}

// Seated reports whether the state belongs to a player sitting in a vehicle.
func (s State) Seated() bool { return s == Drive || s == Passenger }

// CameraMode selects how the view follows the player.
type CameraMode int

const (
	CameraFirstPerson CameraMode = iota
	CameraChase
	CameraPassenger
)

func (m CameraMode) String() string {
	switch m {
	case CameraFirstPerson:
		return "first-person"
	case CameraChase:
		return "chase"
	case CameraPassenger:
		return "passenger"
	}
	return "unknown"
}

var (
	ErrDead         = errors.New("player: player is dead")
	ErrSeated       = errors.New("player: player is already seated")
	ErrNotSeated    = errors.New("player: player is not seated")
	ErrInvalidState = errors.New("player: invalid state for this transition")
	ErrInvalidBody  = errors.New("player: invalid body configuration")
)

// ID is a handle into a Registry. The zero ID is never assigned.
type ID uint32

// Seat is the player's view of a vehicle seat. Vacate is called when the
// player leaves it for a reason the seat did not initiate (death).
type Seat interface {
	Index() int
	Vacate(id ID)
}

// Player is a person in the world: on foot with an optional Body, or sitting
// in a vehicle seat. A seat is held exactly when the state is Drive or Passenger.
type Player struct {
	Name string

	id       ID
	state    State
	seat     Seat
	camera   CameraMode
	position rl.Vector3
	body     *Body

	// CameraChanged fires on every camera mode change, including seat transitions.
	CameraChanged engine.EventWithArg[CameraMode]
	StateChanged  engine.EventWithArg[State]
}

func New(name string) *Player {
	return &Player{
		Name:   name,
		state:  Walk,
		camera: CameraFirstPerson,
	}
}

func (p *Player) ID() ID { return p.id }

func (p *Player) State() State { return p.state }

func (p *Player) Alive() bool { return p.state != Dead }

// Seat returns the occupied seat, nil on foot.
func (p *Player) Seat() Seat { return p.seat }

func (p *Player) Camera() CameraMode { return p.camera }

// SetCameraMode switches the camera and notifies listeners.
func (p *Player) SetCameraMode(m CameraMode) {
	p.camera = m
	p.CameraChanged.Invoke(m)
}

// Position follows the body while on foot.
func (p *Player) Position() rl.Vector3 {
	if p.body != nil && p.seat == nil {
		return p.body.Position()
	}
	return p.position
}

func (p *Player) SetPosition(pos rl.Vector3) {
	p.position = pos
	if p.body != nil && p.seat == nil {
		p.body.Teleport(pos)
	}
}

// Body returns the character body, nil when the player has none.
func (p *Player) Body() *Body { return p.body }

// AttachBody gives the player a physical presence. The body is parked while seated.
func (p *Player) AttachBody(b *Body) {
	p.body = b
	if b == nil {
		return
	}
	b.player = p
	if p.seat != nil {
		b.Park()
	} else {
		b.Teleport(p.position)
	}
}

// SetMovement switches between the on-foot states.
func (p *Player) SetMovement(s State) error {
	if p.state == Dead {
		return ErrDead
	}
	if p.seat != nil {
		return ErrSeated
	}
	if s != Walk && s != Run && s != Sprint {
		return ErrInvalidState
	}
	p.setState(s)
	return nil
}

// Board seats the player as driver or passenger. It is called by the seat,
// which has already checked that it is free.
func (p *Player) Board(seat Seat, driver bool) error {
	if p.state == Dead {
		return ErrDead
	}
	if p.seat != nil {
		return ErrSeated
	}
	p.seat = seat
	if p.body != nil {
		p.position = p.body.Position()
		p.body.Park()
	}
	if driver {
		p.setState(Drive)
		p.SetCameraMode(CameraChase)
	} else {
		p.setState(Passenger)
		p.SetCameraMode(CameraPassenger)
	}
	return nil
}

// Leave takes the player out of the seat and places them at pos, running.
func (p *Player) Leave(pos rl.Vector3) error {
	if p.seat == nil {
		return ErrNotSeated
	}
	p.seat = nil
	p.position = pos
	if p.body != nil {
		p.body.Unpark(pos)
	}
	p.setState(Run)
	p.SetCameraMode(CameraFirstPerson)
	return nil
}

// Kill makes the player Dead. A seated player vacates the seat first.
func (p *Player) Kill() {
	if p.state == Dead {
		return
	}
	if p.seat != nil {
		seat := p.seat
		p.seat = nil
		seat.Vacate(p.id)
		p.SetCameraMode(CameraFirstPerson)
	}
	if p.body != nil {
		p.position = p.body.Position()
		p.body.Park()
	}
	p.setState(Dead)
}

func (p *Player) setState(s State) {
	if p.state == s {
		return
	}
	p.state = s
	p.StateChanged.Invoke(s)
}
