package brush

import "fmt"

// SplitHalfEdge inserts newVertexIndex into the undirected edge formed by
// edgeIndex and its twin. Each side gains one half-edge, so a→b / b→a
// becomes a→n, n→b / b→n, n→a, and both owning polygons grow by one edge.
//
// It returns the index of the inserted half-edge on edgeIndex's side, which
// runs from the new vertex to edgeIndex's original end vertex. Every twin
// reference and polygon range is renumbered for the two insertions. Planes
// are not recomputed; the new vertex is expected to lie on the edge.
func (m *Mesh) SplitHalfEdge(edgeIndex, newVertexIndex int) (int, error) {
	if edgeIndex < 0 || edgeIndex >= len(m.HalfEdges) {
		return -1, fmt.Errorf("brush: split half-edge %d: %w", edgeIndex, ErrEdgeOutOfRange)
	}
	if newVertexIndex < 0 || newVertexIndex >= len(m.Vertices) {
		return -1, fmt.Errorf("brush: split half-edge %d at vertex %d: %w", edgeIndex, newVertexIndex, ErrVertexOutOfRange)
	}
	twin := m.HalfEdges[edgeIndex].TwinIndex
	if twin < 0 || twin >= len(m.HalfEdges) {
		return -1, fmt.Errorf("brush: split half-edge %d: twin %d: %w", edgeIndex, twin, ErrEdgeOutOfRange)
	}
	edgePolygon, twinPolygon := m.polygonOf(edgeIndex), m.polygonOf(twin)
	if edgePolygon < 0 || twinPolygon < 0 {
		return -1, fmt.Errorf("brush: split half-edge %d: %w", edgeIndex, ErrEdgeNotInPolygon)
	}
	if edgePolygon == twinPolygon {
		return -1, fmt.Errorf("brush: split half-edge %d: %w", edgeIndex, ErrSamePolygonTwin)
	}

	splits := make([]int, len(m.HalfEdges))
	for i := range splits {
		splits[i] = -1
	}
	splits[edgeIndex] = newVertexIndex
	splits[twin] = newVertexIndex
	m.splitHalfEdges(splits)
	m.debugValidate("SplitHalfEdge")

	// The lower-indexed half of the pair is renumbered first, so the
	// higher one moves up by one before its own insertion.
	if edgeIndex < twin {
		return edgeIndex + 1, nil
	}
	return edgeIndex + 2, nil
}

// splitHalfEdges performs every split marked in splitVertex in a single
// pass. splitVertex[e] is the vertex to insert into half-edge e, or -1.
// A marked half-edge's twin must be marked with the same vertex.
//
// Each marked half-edge e (a→b) is replaced in place by a→n followed by
// n→b. Indices are renumbered by the number of insertions before them, so
// the pair rule is symmetric: the first half of e twins the second half of
// twin(e) and vice versa.
func (m *Mesh) splitHalfEdges(splitVertex []int) int {
	n := len(m.HalfEdges)
	remap := make([]int, n+1)
	added := 0
	for e := 0; e < n; e++ {
		remap[e] = e + added
		if splitVertex[e] >= 0 {
			added++
		}
	}
	remap[n] = n + added
	if added == 0 {
		return 0
	}

	edges := make([]HalfEdge, n+added)
	for e, he := range m.HalfEdges {
		p := remap[e]
		t := he.TwinIndex
		if t < 0 {
			edges[p] = he
			continue
		}
		if v := splitVertex[e]; v >= 0 {
			edges[p] = HalfEdge{VertexIndex: v, TwinIndex: remap[t] + 1}
			edges[p+1] = HalfEdge{VertexIndex: he.VertexIndex, TwinIndex: remap[t]}
			continue
		}
		edges[p] = HalfEdge{VertexIndex: he.VertexIndex, TwinIndex: remap[t]}
	}
	m.HalfEdges = edges

	for i := range m.Polygons {
		poly := &m.Polygons[i]
		first, end := poly.FirstEdge, poly.FirstEdge+poly.EdgeCount
		if first < 0 || end > n {
			continue
		}
		poly.FirstEdge = remap[first]
		poly.EdgeCount = remap[end] - remap[first]
	}
	m.UpdateHalfEdgePolygonIndices()
	return added / 2
}
