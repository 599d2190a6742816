package dynamics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func collectPairs(s *Space) [][2]*Geom {
	var out [][2]*Geom
	s.Collide(func(a, b *Geom) {
		out = append(out, [2]*Geom{a, b})
	})
	return out
}

func TestSpaceAddRemove(t *testing.T) {
	s := NewSpace()
	a := NewSphere(s, 1)
	b := NewSphere(s, 1)

	if s.NumGeoms() != 2 {
		t.Errorf("Expected 2 geoms, got %d", s.NumGeoms())
	}

	s.Remove(a)
	if s.Contains(a) || a.Space() != nil {
		t.Error("Geom still in space after Remove")
	}
	if s.NumGeoms() != 1 || s.Geom(0) != b {
		t.Error("Wrong geom left after Remove")
	}

	// Removing twice is ignored
	s.Remove(a)
	if s.NumGeoms() != 1 {
		t.Errorf("Expected 1 geom, got %d", s.NumGeoms())
	}
}

func TestSpaceCollideOverlappingPair(t *testing.T) {
	w := NewWorld()
	s := NewSpace()

	a := NewSphere(s, 1)
	a.SetBody(w.NewBody())
	b := NewSphere(s, 1)
	b.SetBody(w.NewBody())
	b.SetPosition(rl.Vector3{X: 1.5})
	far := NewSphere(s, 1)
	far.SetBody(w.NewBody())
	far.SetPosition(rl.Vector3{X: 50})

	pairs := collectPairs(s)
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	if pairs[0][0] != a || pairs[0][1] != b {
		t.Error("Unexpected pair order")
	}
}

func TestSpaceSkipsSameBodyAndStaticPairs(t *testing.T) {
	w := NewWorld()
	s := NewSpace()
	body := w.NewBody()

	a := NewSphere(s, 1)
	a.SetBody(body)
	b := NewBox(s, rl.Vector3{X: 1, Y: 1, Z: 1})
	b.SetBody(body)

	// Two static geoms never pair either
	NewSphere(s, 1)
	NewSphere(s, 1)

	for _, p := range collectPairs(s) {
		if p[0].Body() == p[1].Body() {
			t.Errorf("Pair %v/%v shares a body", p[0].Class(), p[1].Class())
		}
	}
}

func TestSpaceTerrainPairsWithEverything(t *testing.T) {
	w := NewWorld()
	s := NewSpace()
	ground := NewPlane(s, rl.Vector3{Y: 1}, 0)
	NewPlane(s, rl.Vector3{Y: 1}, -5)

	ball := NewSphere(s, 0.5)
	ball.SetBody(w.NewBody())
	ball.SetPosition(rl.Vector3{X: 1000, Y: 0.3, Z: -1000})

	pairs := collectPairs(s)
	if len(pairs) != 2 {
		t.Fatalf("Expected ball to pair with both planes, got %d pairs", len(pairs))
	}
	if pairs[0][0] != ground {
		t.Error("Expected pairs in insertion order")
	}
}

func TestSpaceIgnoresRaysAndDisabled(t *testing.T) {
	w := NewWorld()
	s := NewSpace()

	a := NewSphere(s, 1)
	a.SetBody(w.NewBody())
	b := NewSphere(s, 1)
	b.SetBody(w.NewBody())
	ray := NewRay(s, 10)
	ray.SetRay(rl.Vector3{Y: 5}, rl.Vector3{Y: -1})

	b.Disable()
	if pairs := collectPairs(s); len(pairs) != 0 {
		t.Errorf("Expected no pairs, got %d", len(pairs))
	}
}

func TestSpaceCollideGeom(t *testing.T) {
	w := NewWorld()
	s := NewSpace()
	NewPlane(s, rl.Vector3{Y: 1}, 0)
	box := NewBox(s, rl.Vector3{X: 1, Y: 1, Z: 1})
	box.SetBody(w.NewBody())
	box.SetPosition(rl.Vector3{Y: 3})

	ray := NewRay(nil, 10)
	ray.SetRay(rl.Vector3{Y: 5}, rl.Vector3{Y: -1})

	var hits []float32
	s.CollideGeom(ray, func(a, b *Geom) {
		for _, c := range Collide(a, b, 1) {
			hits = append(hits, c.Depth)
		}
	})
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
}

func TestSpaceDestroy(t *testing.T) {
	s := NewSpace()
	g := NewSphere(s, 1)
	s.Destroy()
	s.Destroy()
	if g.Space() != nil || s.NumGeoms() != 0 {
		t.Error("Space.Destroy did not detach geoms")
	}
}
