package brush

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinimumPolygonArea is the area below which a polygon has no meaningful
// centroid.
const MinimumPolygonArea = 1e-8

// Bounds returns the axis-aligned bounding box of all vertices. The empty
// mesh has a zero box.
func (m *Mesh) Bounds() sdf.Box3 {
	if len(m.Vertices) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		bb.Min = bb.Min.Min(v)
		bb.Max = bb.Max.Max(v)
	}
	return bb
}

// PolygonVertexIndices returns the vertex loop of a polygon in winding order.
func (m *Mesh) PolygonVertexIndices(polygonIndex int) []int {
	poly := m.Polygons[polygonIndex]
	out := make([]int, poly.EdgeCount)
	for k := range out {
		out[k] = m.HalfEdges[poly.FirstEdge+k].VertexIndex
	}
	return out
}

// PolygonCenter returns the midpoint of the polygon's axis-aligned bounds.
func (m *Mesh) PolygonCenter(polygonIndex int) v3.Vec {
	poly := m.Polygons[polygonIndex]
	if poly.EdgeCount == 0 {
		return v3.Vec{}
	}
	first := m.Vertices[m.HalfEdges[poly.FirstEdge].VertexIndex]
	lo, hi := first, first
	for e := poly.FirstEdge + 1; e < poly.FirstEdge+poly.EdgeCount; e++ {
		v := m.Vertices[m.HalfEdges[e].VertexIndex]
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo.Add(hi).MulScalar(0.5)
}

// PolygonCentroid returns the area-weighted centroid of a polygon, using a
// fan of triangles from its first vertex. Polygons with less than
// MinimumPolygonArea of area return the zero vector.
func (m *Mesh) PolygonCentroid(polygonIndex int) v3.Vec {
	poly := m.Polygons[polygonIndex]
	if poly.EdgeCount < 3 {
		return v3.Vec{}
	}
	v0 := m.Vertices[m.HalfEdges[poly.FirstEdge].VertexIndex]
	v1 := m.Vertices[m.HalfEdges[poly.FirstEdge+1].VertexIndex]

	var total float64
	var sum v3.Vec
	for e := poly.FirstEdge + 2; e < poly.FirstEdge+poly.EdgeCount; e++ {
		v2 := m.Vertices[m.HalfEdges[e].VertexIndex]
		area := 0.5 * v1.Sub(v0).Cross(v2.Sub(v0)).Length()
		sum = sum.Add(v0.Add(v1).Add(v2).MulScalar(area / 3))
		total += area
		v1 = v2
	}
	if total < MinimumPolygonArea {
		return v3.Vec{}
	}
	return sum.MulScalar(1 / total)
}

// PolygonArea returns the area of a polygon.
func (m *Mesh) PolygonArea(polygonIndex int) float64 {
	poly := m.Polygons[polygonIndex]
	if poly.EdgeCount < 3 {
		return 0
	}
	v0 := m.Vertices[m.HalfEdges[poly.FirstEdge].VertexIndex]
	var area v3.Vec
	for e := poly.FirstEdge + 1; e < poly.FirstEdge+poly.EdgeCount-1; e++ {
		v1 := m.Vertices[m.HalfEdges[e].VertexIndex]
		v2 := m.Vertices[m.HalfEdges[e+1].VertexIndex]
		area = area.Add(v1.Sub(v0).Cross(v2.Sub(v0)))
	}
	return 0.5 * area.Length()
}

// Volume returns the enclosed volume, summing signed tetrahedra from the
// origin over a fan triangulation of every polygon.
func (m *Mesh) Volume() float64 {
	var vol float64
	for _, poly := range m.Polygons {
		if poly.EdgeCount < 3 {
			continue
		}
		v0 := m.Vertices[m.HalfEdges[poly.FirstEdge].VertexIndex]
		for e := poly.FirstEdge + 1; e < poly.FirstEdge+poly.EdgeCount-1; e++ {
			v1 := m.Vertices[m.HalfEdges[e].VertexIndex]
			v2 := m.Vertices[m.HalfEdges[e+1].VertexIndex]
			vol += v0.Dot(v1.Cross(v2))
		}
	}
	return vol / 6
}

// IsInside reports whether point lies strictly inside every polygon plane,
// farther than DistanceEpsilon from each.
func (m *Mesh) IsInside(point v3.Vec) bool {
	if m.IsEmpty() {
		return false
	}
	for _, p := range m.Planes {
		if p.SignedDistance(point) >= -DistanceEpsilon {
			return false
		}
	}
	return true
}

// IsInsideOrOn reports whether point lies inside every polygon plane or
// within DistanceEpsilon of it.
func (m *Mesh) IsInsideOrOn(point v3.Vec) bool {
	if m.IsEmpty() {
		return false
	}
	for _, p := range m.Planes {
		if p.SignedDistance(point) > DistanceEpsilon {
			return false
		}
	}
	return true
}

// FindVertexIndex returns the index of the vertex exactly equal to point,
// or -1.
func (m *Mesh) FindVertexIndex(point v3.Vec) int {
	for i, v := range m.Vertices {
		if v == point {
			return i
		}
	}
	return -1
}

// FindHalfEdge returns the half-edge running from vertex from to vertex
// to, or -1.
func (m *Mesh) FindHalfEdge(from, to int) int {
	for p, poly := range m.Polygons {
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			if m.HalfEdges[e].VertexIndex == to && m.HalfEdges[m.prevEdge(p, e)].VertexIndex == from {
				return e
			}
		}
	}
	return -1
}

// FindPolygonEdgeByVertexIndex returns the half-edge of a polygon that ends
// at vertexIndex, or -1.
func (m *Mesh) FindPolygonEdgeByVertexIndex(polygonIndex, vertexIndex int) int {
	poly := m.Polygons[polygonIndex]
	for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
		if m.HalfEdges[e].VertexIndex == vertexIndex {
			return e
		}
	}
	return -1
}

// PolygonIndexOf returns the polygon owning a half-edge, or -1.
func (m *Mesh) PolygonIndexOf(edgeIndex int) int {
	if edgeIndex < 0 || edgeIndex >= len(m.HalfEdges) {
		return -1
	}
	return m.polygonOf(edgeIndex)
}

// EdgeLength returns the length of a half-edge.
func (m *Mesh) EdgeLength(edgeIndex int) float64 {
	s := m.HalfEdgeStart(edgeIndex)
	if s < 0 {
		return math.NaN()
	}
	return m.Vertices[m.HalfEdges[edgeIndex].VertexIndex].Sub(m.Vertices[s]).Length()
}
