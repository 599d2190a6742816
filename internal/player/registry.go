package player

import (
	"sort"

	"github.com/rs/zerolog"
)

// Registry owns the session's players and hands out IDs. Other systems keep
// IDs rather than pointers.
type Registry struct {
	players map[ID]*Player
	next    ID
	log     zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		players: make(map[ID]*Player),
		log:     log.With().Str("component", "player").Logger(),
	}
}

// Add registers p and returns its new ID. A player already in the registry keeps its ID.
func (r *Registry) Add(p *Player) ID {
	if p.id != 0 {
		if existing, ok := r.players[p.id]; ok && existing == p {
			return p.id
		}
	}
	r.next++
	p.id = r.next
	r.players[p.id] = p
	r.log.Debug().Uint32("id", uint32(p.id)).Str("name", p.Name).Msg("Player: registered")
	return p.id
}

func (r *Registry) Get(id ID) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Remove drops a player. A seated player is killed first so its seat is freed.
func (r *Registry) Remove(id ID) {
	p, ok := r.players[id]
	if !ok {
		return
	}
	if p.seat != nil {
		p.Kill()
	}
	if p.body != nil {
		p.body.Destroy()
		p.body = nil
	}
	delete(r.players, id)
	r.log.Debug().Uint32("id", uint32(id)).Msg("Player: removed")
}

func (r *Registry) Len() int { return len(r.players) }

// All returns the players ordered by ID.
func (r *Registry) All() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
