package brush

// CompactHalfEdges removes polygons with no edges and closes every gap in
// the half-edge array, so that polygon i's range directly follows polygon
// i-1's and together they cover the whole array. Twin references are
// remapped through the move; a twin pointing into a removed range becomes
// -1. The polygon lookup is rebuilt afterwards.
//
// It reports whether anything changed. An already compact mesh is left
// untouched.
func (m *Mesh) CompactHalfEdges() bool {
	if m.isCompact() {
		if len(m.HalfEdgePolygonIndices) != len(m.HalfEdges) {
			m.UpdateHalfEdgePolygonIndices()
		}
		return false
	}

	remap := make([]int, len(m.HalfEdges))
	for i := range remap {
		remap[i] = -1
	}
	edges := make([]HalfEdge, 0, len(m.HalfEdges))
	hasPlanes := len(m.Planes) == len(m.Polygons)

	w := 0
	for p, poly := range m.Polygons {
		if poly.EdgeCount <= 0 {
			continue
		}
		first := len(edges)
		for k := 0; k < poly.EdgeCount; k++ {
			remap[poly.FirstEdge+k] = first + k
		}
		edges = append(edges, m.HalfEdges[poly.FirstEdge:poly.FirstEdge+poly.EdgeCount]...)
		m.Polygons[w] = Polygon{FirstEdge: first, EdgeCount: poly.EdgeCount, DescriptionIndex: poly.DescriptionIndex}
		if hasPlanes {
			m.Planes[w] = m.Planes[p]
		}
		w++
	}
	m.Polygons = m.Polygons[:w]

	for i := range edges {
		t := edges[i].TwinIndex
		if t < 0 || t >= len(remap) {
			edges[i].TwinIndex = -1
			continue
		}
		edges[i].TwinIndex = remap[t]
	}
	m.HalfEdges = append(m.HalfEdges[:0], edges...)

	if hasPlanes {
		m.Planes = m.Planes[:w]
	} else {
		m.CalculatePlanes()
	}
	m.UpdateHalfEdgePolygonIndices()
	return true
}

// isCompact reports whether polygon ranges are non-empty, in order and
// cover the half-edge array without gaps.
func (m *Mesh) isCompact() bool {
	offset := 0
	for _, poly := range m.Polygons {
		if poly.EdgeCount <= 0 || poly.FirstEdge != offset {
			return false
		}
		offset += poly.EdgeCount
	}
	return offset == len(m.HalfEdges)
}

// UpdateHalfEdgePolygonIndices rebuilds the half-edge to polygon lookup in
// one pass over the polygons. Half-edges outside every polygon map to -1.
func (m *Mesh) UpdateHalfEdgePolygonIndices() {
	m.HalfEdgePolygonIndices = resize(m.HalfEdgePolygonIndices, len(m.HalfEdges))
	for i := range m.HalfEdgePolygonIndices {
		m.HalfEdgePolygonIndices[i] = -1
	}
	for p, poly := range m.Polygons {
		end := min(poly.FirstEdge+poly.EdgeCount, len(m.HalfEdges))
		for e := max(poly.FirstEdge, 0); e < end; e++ {
			m.HalfEdgePolygonIndices[e] = p
		}
	}
}

// RemoveRedundantVertices drops every vertex no half-edge refers to. The
// surviving vertices keep their relative order and half-edges are remapped
// to their new positions. It returns the number of vertices removed.
func (m *Mesh) RemoveRedundantVertices() int {
	removed := m.removeRedundantVertices()
	if removed > 0 {
		m.debugValidate("RemoveRedundantVertices")
	}
	return removed
}

func (m *Mesh) removeRedundantVertices() int {
	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	for _, he := range m.HalfEdges {
		if he.VertexIndex >= 0 && he.VertexIndex < len(remap) {
			remap[he.VertexIndex] = 0
		}
	}

	w := 0
	for i, v := range m.Vertices {
		if remap[i] < 0 {
			continue
		}
		remap[i] = w
		m.Vertices[w] = v
		w++
	}
	removed := len(m.Vertices) - w
	if removed == 0 {
		return 0
	}
	m.Vertices = m.Vertices[:w]

	for i := range m.HalfEdges {
		if v := m.HalfEdges[i].VertexIndex; v >= 0 && v < len(remap) {
			m.HalfEdges[i].VertexIndex = remap[v]
		}
	}
	return removed
}
