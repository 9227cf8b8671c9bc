package brush

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// EulerRotation returns the rotation by angles in degrees about X, then Y,
// then Z.
func EulerRotation(x, y, z float64) sdf.M44 {
	const deg = math.Pi / 180
	return sdf.RotateZ(z * deg).Mul(sdf.RotateY(y * deg)).Mul(sdf.RotateX(x * deg))
}

// Translate moves every vertex by offset and shifts the planes to match.
func (m *Mesh) Translate(offset v3.Vec) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(offset)
	}
	for i := range m.Planes {
		m.Planes[i].Distance -= m.Planes[i].Normal.Dot(offset)
	}
}

// Transform applies an affine transform to every vertex and recomputes the
// planes. A mirroring transform reverses every polygon loop so faces keep
// pointing outward.
func (m *Mesh) Transform(t sdf.M44) {
	for i := range m.Vertices {
		m.Vertices[i] = t.MulPosition(m.Vertices[i])
	}
	if mirrors(t) {
		m.reverseWinding()
	}
	m.CalculatePlanes()
	m.debugValidate("Transform")
}

// mirrors reports whether t flips handedness.
func mirrors(t sdf.M44) bool {
	o := t.MulPosition(v3.Vec{})
	x := t.MulPosition(v3.Vec{X: 1}).Sub(o)
	y := t.MulPosition(v3.Vec{Y: 1}).Sub(o)
	z := t.MulPosition(v3.Vec{Z: 1}).Sub(o)
	return x.Dot(y.Cross(z)) < 0
}

// reverseWinding flips the orientation of every polygon. Half-edge e of a
// loop a→b becomes b→a; its twin keeps pairing with the reversed twin.
func (m *Mesh) reverseWinding() {
	edges := make([]HalfEdge, len(m.HalfEdges))
	remap := make([]int, len(m.HalfEdges))
	for p, poly := range m.Polygons {
		n := poly.EdgeCount
		// Old edge k runs v[k-1]→v[k]. Reversed, new edge j runs from
		// v[n-1-j+1] to v[n-1-j], which is old edge (n-j)%n backwards.
		for j := 0; j < n; j++ {
			old := poly.FirstEdge + (n-j)%n
			remap[old] = poly.FirstEdge + j
			edges[poly.FirstEdge+j] = HalfEdge{VertexIndex: m.HalfEdges[m.prevEdge(p, old)].VertexIndex}
		}
	}
	for e, he := range m.HalfEdges {
		edges[remap[e]].TwinIndex = remap[he.TwinIndex]
	}
	copy(m.HalfEdges, edges)
}
