package brush

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// HalfEdge is a directed edge ending at VertexIndex. Its start vertex is the
// VertexIndex of the previous half-edge in the owning polygon's loop.
type HalfEdge struct {
	VertexIndex int `json:"vertex"`
	TwinIndex   int `json:"twin"`
}

// Polygon is a face of the brush. Its half-edges occupy
// HalfEdges[FirstEdge : FirstEdge+EdgeCount].
type Polygon struct {
	FirstEdge        int `json:"first_edge"`
	EdgeCount        int `json:"edge_count"`
	DescriptionIndex int `json:"description"` // opaque surface/material id
}

// Mesh is a convex brush in half-edge form.
type Mesh struct {
	Vertices  []v3.Vec   `json:"vertices"`
	HalfEdges []HalfEdge `json:"half_edges"`
	Polygons  []Polygon  `json:"polygons"`
	Planes    []Plane    `json:"planes"`

	// HalfEdgePolygonIndices maps each half-edge to its owning polygon.
	// It is a cache derived from Polygons.
	HalfEdgePolygonIndices []int `json:"-"`
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// IsEmpty reports whether the mesh is the null solid.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Polygons) == 0 || len(m.HalfEdges) == 0 || len(m.Vertices) == 0
}

// Clear empties every array, turning the mesh into the null solid.
// Backing storage is kept for reuse.
func (m *Mesh) Clear() {
	m.Vertices = m.Vertices[:0]
	m.HalfEdges = m.HalfEdges[:0]
	m.Polygons = m.Polygons[:0]
	m.Planes = m.Planes[:0]
	m.HalfEdgePolygonIndices = m.HalfEdgePolygonIndices[:0]
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// HalfEdgeCount returns the number of half-edges.
func (m *Mesh) HalfEdgeCount() int { return len(m.HalfEdges) }

// PolygonCount returns the number of polygons.
func (m *Mesh) PolygonCount() int { return len(m.Polygons) }

// CopyFrom replaces the contents of m with a deep copy of other.
// Existing backing arrays of m are reused when large enough.
func (m *Mesh) CopyFrom(other *Mesh) {
	if other == nil {
		m.Clear()
		return
	}
	m.Vertices = append(m.Vertices[:0], other.Vertices...)
	m.HalfEdges = append(m.HalfEdges[:0], other.HalfEdges...)
	m.Polygons = append(m.Polygons[:0], other.Polygons...)
	m.Planes = append(m.Planes[:0], other.Planes...)
	m.HalfEdgePolygonIndices = append(m.HalfEdgePolygonIndices[:0], other.HalfEdgePolygonIndices...)
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{}
	c.CopyFrom(m)
	return c
}

// swap exchanges the contents of m and other without copying.
func (m *Mesh) swap(other *Mesh) {
	m.Vertices, other.Vertices = other.Vertices, m.Vertices
	m.HalfEdges, other.HalfEdges = other.HalfEdges, m.HalfEdges
	m.Polygons, other.Polygons = other.Polygons, m.Polygons
	m.Planes, other.Planes = other.Planes, m.Planes
	m.HalfEdgePolygonIndices, other.HalfEdgePolygonIndices = other.HalfEdgePolygonIndices, m.HalfEdgePolygonIndices
}

// HalfEdgeStart returns the vertex a half-edge starts from, which is the
// vertex of the previous half-edge in the same polygon. It returns -1 when
// the half-edge is not owned by any polygon.
func (m *Mesh) HalfEdgeStart(edgeIndex int) int {
	if edgeIndex < 0 || edgeIndex >= len(m.HalfEdgePolygonIndices) {
		return -1
	}
	p := m.HalfEdgePolygonIndices[edgeIndex]
	if p < 0 || p >= len(m.Polygons) {
		return -1
	}
	return m.HalfEdges[m.prevEdge(p, edgeIndex)].VertexIndex
}

// prevEdge returns the half-edge before e in polygon p's loop.
func (m *Mesh) prevEdge(p, e int) int {
	poly := m.Polygons[p]
	if e == poly.FirstEdge {
		return poly.FirstEdge + poly.EdgeCount - 1
	}
	return e - 1
}

// nextEdge returns the half-edge after e in polygon p's loop.
func (m *Mesh) nextEdge(p, e int) int {
	poly := m.Polygons[p]
	if e == poly.FirstEdge+poly.EdgeCount-1 {
		return poly.FirstEdge
	}
	return e + 1
}

// ownsEdge reports whether polygon p's range contains half-edge e.
func (m *Mesh) ownsEdge(p, e int) bool {
	poly := m.Polygons[p]
	return e >= poly.FirstEdge && e < poly.FirstEdge+poly.EdgeCount
}

// polygonOf returns the polygon owning half-edge e, scanning the polygon
// ranges when the cached lookup is stale or missing.
func (m *Mesh) polygonOf(e int) int {
	if e >= 0 && e < len(m.HalfEdgePolygonIndices) {
		if p := m.HalfEdgePolygonIndices[e]; p >= 0 && p < len(m.Polygons) && m.ownsEdge(p, e) {
			return p
		}
	}
	for p := range m.Polygons {
		if m.ownsEdge(p, e) {
			return p
		}
	}
	return -1
}
