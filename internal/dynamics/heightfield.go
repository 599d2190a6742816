package dynamics

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HeightfieldData is a regular grid of height samples in geom-local space.
// Samples are row-major along X, rows advance along Z; the grid is centered
// on the geom origin.
type HeightfieldData struct {
	Width    int
	Depth    int
	CellSize float32
	heights  []float32
	bounds   AABB
}

// NewHeightfieldData copies heights (len width*depth) into a new heightfield.
func NewHeightfieldData(heights []float32, width, depth int, cellSize float32) (*HeightfieldData, error) {
	if width < 2 || depth < 2 {
		return nil, fmt.Errorf("dynamics: heightfield needs at least 2x2 samples, got %dx%d", width, depth)
	}
	if len(heights) != width*depth {
		return nil, fmt.Errorf("dynamics: heightfield has %d samples, want %d", len(heights), width*depth)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("dynamics: heightfield cell size must be positive, got %v", cellSize)
	}
	h := &HeightfieldData{
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		heights:  append([]float32(nil), heights...),
	}
	minH, maxH := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, v := range h.heights {
		if v < minH {
			minH = v
		}
		if v > maxH {
			maxH = v
		}
	}
	hx, hz := h.halfExtents()
	h.bounds = AABB{
		Min: rl.Vector3{X: -hx, Y: minH, Z: -hz},
		Max: rl.Vector3{X: hx, Y: maxH, Z: hz},
	}
	return h, nil
}

func (h *HeightfieldData) halfExtents() (float32, float32) {
	return float32(h.Width-1) * h.CellSize / 2, float32(h.Depth-1) * h.CellSize / 2
}

// Sample returns the stored height at grid coordinate (x, z).
func (h *HeightfieldData) Sample(x, z int) float32 {
	return h.heights[z*h.Width+x]
}

func (h *HeightfieldData) vertex(x, z int) rl.Vector3 {
	hx, hz := h.halfExtents()
	return rl.Vector3{
		X: float32(x)*h.CellSize - hx,
		Y: h.Sample(x, z),
		Z: float32(z)*h.CellSize - hz,
	}
}

// HeightAt interpolates the surface height at a local (x, z); ok is false outside the grid.
func (h *HeightfieldData) HeightAt(x, z float32) (float32, bool) {
	hx, hz := h.halfExtents()
	gx := (x + hx) / h.CellSize
	gz := (z + hz) / h.CellSize
	if gx < 0 || gz < 0 || gx > float32(h.Width-1) || gz > float32(h.Depth-1) {
		return 0, false
	}
	ix := int(gx)
	iz := int(gz)
	if ix >= h.Width-1 {
		ix = h.Width - 2
	}
	if iz >= h.Depth-1 {
		iz = h.Depth - 2
	}
	fx := gx - float32(ix)
	fz := gz - float32(iz)

	h00 := h.Sample(ix, iz)
	h10 := h.Sample(ix+1, iz)
	h01 := h.Sample(ix, iz+1)
	h11 := h.Sample(ix+1, iz+1)

	// Same split as cellTriangles
	if fx+fz <= 1 {
		return h00 + fx*(h10-h00) + fz*(h01-h00), true
	}
	return h11 + (1-fx)*(h01-h11) + (1-fz)*(h10-h11), true
}

// cellTriangles returns the two upward-facing triangles of cell (x, z)
func (h *HeightfieldData) cellTriangles(x, z int) [2]Triangle {
	p00 := h.vertex(x, z)
	p10 := h.vertex(x+1, z)
	p01 := h.vertex(x, z+1)
	p11 := h.vertex(x+1, z+1)
	return [2]Triangle{newTriangle(p00, p01, p10), newTriangle(p10, p01, p11)}
}

// triangles appends the local triangles of every cell overlapping box (local space)
func (h *HeightfieldData) triangles(box AABB, out []Triangle) []Triangle {
	if !h.bounds.Intersects(box) {
		return out
	}
	hx, hz := h.halfExtents()
	x0 := int(math.Floor(float64((box.Min.X + hx) / h.CellSize)))
	x1 := int(math.Floor(float64((box.Max.X + hx) / h.CellSize)))
	z0 := int(math.Floor(float64((box.Min.Z + hz) / h.CellSize)))
	z1 := int(math.Floor(float64((box.Max.Z + hz) / h.CellSize)))
	if x0 < 0 {
		x0 = 0
	}
	if z0 < 0 {
		z0 = 0
	}
	if x1 > h.Width-2 {
		x1 = h.Width - 2
	}
	if z1 > h.Depth-2 {
		z1 = h.Depth - 2
	}
	for z := z0; z <= z1; z++ {
		for x := x0; x <= x1; x++ {
			tris := h.cellTriangles(x, z)
			out = append(out, tris[0], tris[1])
		}
	}
	return out
}
