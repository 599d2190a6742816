package dynamics

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Triangle is a triangle with precomputed unit normal
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

func newTriangle(v0, v1, v2 rl.Vector3) Triangle {
	n := rl.Vector3Normalize(cross(rl.Vector3Subtract(v1, v0), rl.Vector3Subtract(v2, v0)))
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: n}
}

func (t Triangle) transform(pos rl.Vector3, rot rl.Quaternion) Triangle {
	return Triangle{
		V0:     toWorld(t.V0, pos, rot),
		V1:     toWorld(t.V1, pos, rot),
		V2:     toWorld(t.V2, pos, rot),
		Normal: rl.Vector3RotateByQuaternion(t.Normal, rot),
	}
}

// bvhNode is a node in the bounding volume hierarchy
type bvhNode struct {
	bounds    AABB
	left      *bvhNode
	right     *bvhNode
	triangles []int // leaf only
}

// TriMeshData holds an owned copy of a triangle mesh in geom-local space
// together with its BVH.
type TriMeshData struct {
	Triangles []Triangle
	root      *bvhNode
	bounds    AABB
}

var ErrBadMesh = errors.New("dynamics: malformed triangle mesh")

// NewTriMeshData copies vertices/indices and builds the BVH. The caller's
// buffers are not referenced afterwards.
func NewTriMeshData(vertices []rl.Vector3, indices []int32) (*TriMeshData, error) {
	if len(indices)%3 != 0 || len(indices) == 0 {
		return nil, fmt.Errorf("%w: %d indices", ErrBadMesh, len(indices))
	}
	d := &TriMeshData{Triangles: make([]Triangle, 0, len(indices)/3)}
	for i := 0; i < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 < 0 || i1 < 0 || i2 < 0 || int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			return nil, fmt.Errorf("%w: index out of range at %d", ErrBadMesh, i)
		}
		d.Triangles = append(d.Triangles, newTriangle(vertices[i0], vertices[i1], vertices[i2]))
	}
	d.build()
	return d, nil
}

func newTriMeshFromTriangles(tris []Triangle) *TriMeshData {
	d := &TriMeshData{Triangles: tris}
	d.build()
	return d
}

func (d *TriMeshData) build() {
	indices := make([]int, len(d.Triangles))
	for i := range indices {
		indices[i] = i
	}
	d.root = d.buildNode(indices, 0)
	d.bounds = d.root.bounds
}

func (d *TriMeshData) buildNode(indices []int, depth int) *bvhNode {
	node := &bvhNode{bounds: d.computeBounds(indices)}

	if len(indices) <= 4 || depth > 20 {
		node.triangles = indices
		return node
	}

	// Split on the longest axis
	size := rl.Vector3Subtract(node.bounds.Max, node.bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > axisValue(size, axis) {
		axis = 2
	}

	mid := d.partition(indices, axis)
	if mid == 0 || mid == len(indices) {
		node.triangles = indices
		return node
	}

	node.left = d.buildNode(indices[:mid], depth+1)
	node.right = d.buildNode(indices[mid:], depth+1)
	return node
}

func (d *TriMeshData) computeBounds(indices []int) AABB {
	b := emptyAABB()
	for _, idx := range indices {
		t := &d.Triangles[idx]
		b = b.extend(t.V0).extend(t.V1).extend(t.V2)
	}
	return b
}

func centroid(t *Triangle) rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(t.V0, t.V1), t.V2), 1.0/3.0)
}

// partition splits indices around the mean centroid on axis
func (d *TriMeshData) partition(indices []int, axis int) int {
	var center float32
	for _, idx := range indices {
		center += axisValue(centroid(&d.Triangles[idx]), axis)
	}
	center /= float32(len(indices))

	left, right := 0, len(indices)-1
	for left <= right {
		if axisValue(centroid(&d.Triangles[indices[left]]), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// query appends the indices of triangles whose leaf bounds overlap a local-space box
func (d *TriMeshData) query(box AABB, out []int) []int {
	return queryNode(d.root, box, out)
}

func queryNode(n *bvhNode, box AABB, out []int) []int {
	if n == nil || !n.bounds.Intersects(box) {
		return out
	}
	if n.triangles != nil {
		return append(out, n.triangles...)
	}
	out = queryNode(n.left, box, out)
	return queryNode(n.right, box, out)
}

// closestPointOnTriangle finds the closest point on triangle abc to p
func closestPointOnTriangle(p, a, b, c rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := rl.Vector3Subtract(p, b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	// inside face region
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}
