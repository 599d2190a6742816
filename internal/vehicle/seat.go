package vehicle

import (
	"errors"

	"drive3d/internal/player"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	ErrSeatOccupied = errors.New("vehicle: seat is occupied")
	ErrNotOccupant  = errors.New("vehicle: player is not in this seat")
	ErrNoSeat       = errors.New("vehicle: no such seat")
)

// Seat belongs to exactly one Vehicle and refers to its occupant by ID only.
type Seat struct {
	index    int
	offset   rl.Vector3
	vehicle  *Vehicle
	occupant player.ID
	occupied bool
}

var _ player.Seat = (*Seat)(nil)

func (s *Seat) Index() int { return s.index }

func (s *Seat) Vehicle() *Vehicle { return s.vehicle }

// Occupant returns the seated player's ID; ok is false for an empty seat.
func (s *Seat) Occupant() (player.ID, bool) { return s.occupant, s.occupied }

func (s *Seat) Occupied() bool { return s.occupied }

// Position is the seat's world position.
func (s *Seat) Position() rl.Vector3 {
	return s.vehicle.chassis.LocalToWorld(s.offset)
}

// AssignPlayer seats p. Seat 0 makes p the driver, any other seat a passenger.
func (s *Seat) AssignPlayer(p *player.Player) error {
	if p == nil {
		return ErrNotOccupant
	}
	if s.occupied {
		return ErrSeatOccupied
	}
	if err := p.Board(s, s.index == 0); err != nil {
		return err
	}
	s.occupant = p.ID()
	s.occupied = true
	s.vehicle.log.Info().
		Uint32("player", uint32(p.ID())).
		Int("seat", s.index).
		Str("state", p.State().String()).
		Msg("Vehicle: player seated")
	return nil
}

// EjectPlayer empties the seat and puts p above the vehicle, running.
func (s *Seat) EjectPlayer(p *player.Player) error {
	if p == nil || !s.occupied || s.occupant != p.ID() || p.Seat() != player.Seat(s) {
		return ErrNotOccupant
	}
	at := rl.Vector3Add(s.vehicle.chassis.Position(), rl.Vector3{Y: s.vehicle.cfg.EjectHeight})
	if err := p.Leave(at); err != nil {
		return err
	}
	s.occupied = false
	s.occupant = 0
	s.vehicle.log.Info().
		Uint32("player", uint32(p.ID())).
		Int("seat", s.index).
		Msg("Vehicle: player ejected")
	return nil
}

// Vacate frees the seat without touching the player.
func (s *Seat) Vacate(id player.ID) {
	if s.occupied && s.occupant == id {
		s.occupied = false
		s.occupant = 0
	}
}
