package dynamics

import (
	"math"
	"sort"
)

// CellSize is the default spatial hash cell size.
const CellSize = 5.0

// maxCellSpan is the largest per-axis cell span a geom may cover before it is
// treated as a large geom and tested against everything.
const maxCellSpan = 8

type cellKey struct {
	X, Y, Z int
}

type pairKey struct {
	A, B int
}

// NearCallback is invoked once per broad-phase overlapping geom pair.
type NearCallback func(a, b *Geom)

// Space is a collection of geoms with a spatial-hash broad phase.
type Space struct {
	CellSize float32

	geoms     []*Geom
	index     map[*Geom]int
	grid      map[cellKey][]int
	destroyed bool
}

func NewSpace() *Space {
	return &Space{
		CellSize: CellSize,
		index:    make(map[*Geom]int),
		grid:     make(map[cellKey][]int),
	}
}

// Add inserts g, moving it out of any previous space.
func (s *Space) Add(g *Geom) {
	if g.space == s {
		return
	}
	if g.space != nil {
		g.space.Remove(g)
	}
	s.index[g] = len(s.geoms)
	s.geoms = append(s.geoms, g)
	g.space = s
}

// Remove takes g out of the space. Unknown geoms are ignored.
func (s *Space) Remove(g *Geom) {
	i, ok := s.index[g]
	if !ok {
		return
	}
	last := len(s.geoms) - 1
	s.geoms[i] = s.geoms[last]
	s.index[s.geoms[i]] = i
	s.geoms[last] = nil
	s.geoms = s.geoms[:last]
	delete(s.index, g)
	g.space = nil
}

func (s *Space) Contains(g *Geom) bool {
	_, ok := s.index[g]
	return ok
}

func (s *Space) NumGeoms() int { return len(s.geoms) }

func (s *Space) Geom(i int) *Geom { return s.geoms[i] }

// Destroy detaches every geom from the space. Safe to call more than once.
func (s *Space) Destroy() {
	if s.destroyed {
		return
	}
	for _, g := range s.geoms {
		g.space = nil
	}
	s.geoms = nil
	s.index = make(map[*Geom]int)
	s.destroyed = true
}

func (s *Space) cellOf(x, y, z float32) cellKey {
	return cellKey{
		X: int(math.Floor(float64(x / s.CellSize))),
		Y: int(math.Floor(float64(y / s.CellSize))),
		Z: int(math.Floor(float64(z / s.CellSize))),
	}
}

func collidable(g *Geom) bool {
	return g.Enabled() && g.class != RayClass
}

// skipPair filters pairs that can never produce contacts
func skipPair(a, b *Geom) bool {
	if a.class.terrain() && b.class.terrain() {
		return true
	}
	if a.body == nil && b.body == nil {
		return true
	}
	return a.body != nil && a.body == b.body
}

// Collide calls cb for every overlapping pair of enabled geoms within the space,
// in a deterministic order.
func (s *Space) Collide(cb NearCallback) {
	for k := range s.grid {
		delete(s.grid, k)
	}

	var large []int
	bounds := make([]AABB, len(s.geoms))
	for i, g := range s.geoms {
		if !collidable(g) {
			continue
		}
		bounds[i] = g.AABB()
		if g.class.terrain() {
			large = append(large, i)
			continue
		}
		lo := s.cellOf(bounds[i].Min.X, bounds[i].Min.Y, bounds[i].Min.Z)
		hi := s.cellOf(bounds[i].Max.X, bounds[i].Max.Y, bounds[i].Max.Z)
		if hi.X-lo.X > maxCellSpan || hi.Y-lo.Y > maxCellSpan || hi.Z-lo.Z > maxCellSpan {
			large = append(large, i)
			continue
		}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := cellKey{x, y, z}
					s.grid[key] = append(s.grid[key], i)
				}
			}
		}
	}

	seen := make(map[pairKey]struct{})
	for _, cell := range s.grid {
		for a := 0; a < len(cell); a++ {
			for b := a + 1; b < len(cell); b++ {
				seen[orderedPair(cell[a], cell[b])] = struct{}{}
			}
		}
	}
	for _, l := range large {
		for i, g := range s.geoms {
			if i != l && collidable(g) {
				seen[orderedPair(l, i)] = struct{}{}
			}
		}
	}

	pairs := make([]pairKey, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	for _, p := range pairs {
		a, b := s.geoms[p.A], s.geoms[p.B]
		if skipPair(a, b) || !bounds[p.A].Intersects(bounds[p.B]) {
			continue
		}
		cb(a, b)
	}
}

func orderedPair(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// CollideWith calls cb(a, b) for every overlapping pair with a in s and b in other.
func (s *Space) CollideWith(other *Space, cb NearCallback) {
	otherBounds := make([]AABB, len(other.geoms))
	for j, b := range other.geoms {
		if collidable(b) {
			otherBounds[j] = b.AABB()
		}
	}
	for _, a := range s.geoms {
		if !collidable(a) {
			continue
		}
		ab := a.AABB()
		for j, b := range other.geoms {
			if !collidable(b) || skipPair(a, b) || !ab.Intersects(otherBounds[j]) {
				continue
			}
			cb(a, b)
		}
	}
}

// CollideGeom calls cb(g, other) for every enabled geom in the space whose bounds
// overlap g. g does not need to belong to the space.
func (s *Space) CollideGeom(g *Geom, cb NearCallback) {
	gb := g.AABB()
	for _, other := range s.geoms {
		if other == g || !collidable(other) {
			continue
		}
		if g.body != nil && other.body == g.body {
			continue
		}
		if !gb.Intersects(other.AABB()) {
			continue
		}
		cb(g, other)
	}
}
