package brush

import "fmt"

// SplitPolygon divides a polygon in two along the chord joining the end
// vertices of two of its own half-edges, indexOut and indexIn.
//
// The new polygon takes the half-edges after indexOut up to and including
// indexIn; the original keeps the rest. Each half gains one chord half-edge
// and the two chords are twins. Both planes are recomputed. The new
// polygon's index is returned.
//
// The mesh is left untouched when either edge is outside the polygon or
// when either half would have fewer than three edges.
func (m *Mesh) SplitPolygon(polygonIndex, indexOut, indexIn int) (int, error) {
	newPolygon, err := m.splitPolygon(polygonIndex, indexOut, indexIn)
	if err != nil {
		return -1, err
	}
	m.CompactHalfEdges()
	m.debugValidate("SplitPolygon")
	return newPolygon, nil
}

// splitPolygon performs the split without closing the gap it leaves in the
// half-edge array: the original polygon shrinks in place and the new
// polygon's half-edges are appended at the end. Polygon order therefore
// still matches half-edge order, which CompactHalfEdges relies on to keep
// the layout stable.
func (m *Mesh) splitPolygon(polygonIndex, indexOut, indexIn int) (int, error) {
	if polygonIndex < 0 || polygonIndex >= len(m.Polygons) {
		return -1, fmt.Errorf("brush: split polygon %d: %w", polygonIndex, ErrPolygonOutOfRange)
	}
	if !m.ownsEdge(polygonIndex, indexOut) {
		return -1, fmt.Errorf("brush: split polygon %d: edge %d: %w", polygonIndex, indexOut, ErrEdgeNotInPolygon)
	}
	if !m.ownsEdge(polygonIndex, indexIn) {
		return -1, fmt.Errorf("brush: split polygon %d: edge %d: %w", polygonIndex, indexIn, ErrEdgeNotInPolygon)
	}

	poly := m.Polygons[polygonIndex]
	n := poly.EdgeCount
	i := indexOut - poly.FirstEdge
	j := indexIn - poly.FirstEdge
	newCount := (j-i+n)%n + 1
	keptCount := (i-j+n)%n + 1
	if newCount < 3 || keptCount < 3 {
		return -1, fmt.Errorf("brush: split polygon %d between edges %d and %d: %w",
			polygonIndex, indexOut, indexIn, ErrDegenerateSplit)
	}
	if len(m.Planes) != len(m.Polygons) {
		m.CalculatePlanes()
	}
	if len(m.HalfEdgePolygonIndices) != len(m.HalfEdges) {
		m.UpdateHalfEdgePolygonIndices()
	}

	loop := make([]HalfEdge, n)
	copy(loop, m.HalfEdges[poly.FirstEdge:poly.FirstEdge+n])

	// Original polygon: edges after indexIn around to indexOut, closed by
	// the chord from vertex(indexOut) back to vertex(indexIn).
	kept := m.HalfEdges[poly.FirstEdge : poly.FirstEdge+keptCount]
	for k := 0; k < keptCount-1; k++ {
		kept[k] = loop[(j+1+k)%n]
	}
	keptChord := poly.FirstEdge + keptCount - 1
	kept[keptCount-1] = HalfEdge{VertexIndex: loop[j].VertexIndex}

	for e := poly.FirstEdge + keptCount; e < poly.FirstEdge+n; e++ {
		m.HalfEdges[e] = HalfEdge{VertexIndex: -1, TwinIndex: -1}
		m.HalfEdgePolygonIndices[e] = -1
	}

	// New polygon: edges after indexOut up to indexIn, closed by the chord
	// from vertex(indexIn) back to vertex(indexOut).
	first := len(m.HalfEdges)
	for k := 0; k < newCount-1; k++ {
		m.HalfEdges = append(m.HalfEdges, loop[(i+1+k)%n])
	}
	newChord := len(m.HalfEdges)
	m.HalfEdges = append(m.HalfEdges, HalfEdge{VertexIndex: loop[i].VertexIndex})

	m.HalfEdges[keptChord].TwinIndex = newChord
	m.HalfEdges[newChord].TwinIndex = keptChord

	m.Polygons[polygonIndex].EdgeCount = keptCount
	m.Polygons = append(m.Polygons, Polygon{
		FirstEdge:        first,
		EdgeCount:        newCount,
		DescriptionIndex: poly.DescriptionIndex,
	})
	newPolygon := len(m.Polygons) - 1
	m.Planes = append(m.Planes, Plane{})

	for k := 0; k < newCount; k++ {
		m.HalfEdgePolygonIndices = append(m.HalfEdgePolygonIndices, newPolygon)
	}
	m.relinkTwins(polygonIndex)
	m.relinkTwins(newPolygon)

	m.Planes[polygonIndex] = m.CalculatePlane(polygonIndex)
	m.Planes[newPolygon] = m.CalculatePlane(newPolygon)
	return newPolygon, nil
}

// relinkTwins points the twin of every half-edge in polygon p back at it.
func (m *Mesh) relinkTwins(p int) {
	poly := m.Polygons[p]
	for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
		if t := m.HalfEdges[e].TwinIndex; t >= 0 {
			m.HalfEdges[t].TwinIndex = e
		}
	}
}
