// Package brush implements the convex brush mesh kernel: a half-edge
// boundary representation stored in dense index-addressed arrays, and the
// half-space cut that reshapes it.
//
// A Mesh owns four arrays. Vertices holds positions. HalfEdges holds
// directed edges, each naming the vertex it ends at and its oppositely
// directed twin on the neighbouring polygon. Polygons name a contiguous
// range of half-edges, and Planes is index-aligned with Polygons.
// HalfEdgePolygonIndices is a derived lookup from half-edge to polygon and
// can always be rebuilt with UpdateHalfEdgePolygonIndices.
//
// A Mesh is not safe for concurrent use. Callers serialize access to a
// single instance themselves.
package brush
