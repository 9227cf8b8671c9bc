package brush

import "fmt"

// ValidationError describes one broken mesh invariant.
type ValidationError struct {
	Code    string
	Message string
	Index   int // offending half-edge, polygon or vertex; -1 for mesh-level findings
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (index %d)", e.Code, e.Message, e.Index)
}

// Validate checks every structural invariant of the mesh and returns the
// findings. An empty result means the mesh is valid. The empty mesh is
// valid. Validate never mutates the mesh.
func (m *Mesh) Validate() []ValidationError {
	var errs []ValidationError
	if m.IsEmpty() {
		if len(m.Polygons) != 0 || len(m.HalfEdges) != 0 || len(m.Vertices) != 0 {
			errs = append(errs, ValidationError{
				Code:    "PARTIAL_EMPTY",
				Message: fmt.Sprintf("null solid has %d vertices, %d half-edges, %d polygons", len(m.Vertices), len(m.HalfEdges), len(m.Polygons)),
				Index:   -1,
			})
		}
		return errs
	}

	if len(m.Planes) != len(m.Polygons) {
		errs = append(errs, ValidationError{
			Code:    "PLANES_MISALIGNED",
			Message: fmt.Sprintf("%d planes for %d polygons", len(m.Planes), len(m.Polygons)),
			Index:   -1,
		})
	}

	rangeErrs, owner := m.validateRanges()
	errs = append(errs, rangeErrs...)
	if len(rangeErrs) > 0 {
		// Twin and loop checks assume sane ranges.
		return errs
	}
	errs = append(errs, m.validateHalfEdges(owner)...)
	errs = append(errs, m.validateVertices()...)

	if len(m.HalfEdgePolygonIndices) != len(m.HalfEdges) {
		errs = append(errs, ValidationError{
			Code:    "POLYGON_INDEX_CACHE",
			Message: fmt.Sprintf("lookup has %d entries for %d half-edges", len(m.HalfEdgePolygonIndices), len(m.HalfEdges)),
			Index:   -1,
		})
	} else {
		for e, p := range m.HalfEdgePolygonIndices {
			if p != owner[e] {
				errs = append(errs, ValidationError{
					Code:    "POLYGON_INDEX_CACHE",
					Message: fmt.Sprintf("lookup says polygon %d, range says %d", p, owner[e]),
					Index:   e,
				})
			}
		}
	}
	return errs
}

// IsValid reports whether Validate finds nothing.
func (m *Mesh) IsValid() bool {
	return len(m.Validate()) == 0
}

// validateRanges checks polygon sizes and that the ranges tile the
// half-edge array. It returns the owning polygon of each half-edge.
func (m *Mesh) validateRanges() ([]ValidationError, []int) {
	var errs []ValidationError
	owner := make([]int, len(m.HalfEdges))
	for i := range owner {
		owner[i] = -1
	}

	total := 0
	for p, poly := range m.Polygons {
		if poly.EdgeCount < 3 {
			errs = append(errs, ValidationError{
				Code:    "POLYGON_TOO_SMALL",
				Message: fmt.Sprintf("polygon has %d edges", poly.EdgeCount),
				Index:   p,
			})
		}
		if poly.FirstEdge < 0 || poly.EdgeCount < 0 || poly.FirstEdge+poly.EdgeCount > len(m.HalfEdges) {
			errs = append(errs, ValidationError{
				Code:    "POLYGON_RANGE",
				Message: fmt.Sprintf("range [%d,%d) outside %d half-edges", poly.FirstEdge, poly.FirstEdge+poly.EdgeCount, len(m.HalfEdges)),
				Index:   p,
			})
			continue
		}
		total += poly.EdgeCount
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			if owner[e] >= 0 {
				errs = append(errs, ValidationError{
					Code:    "POLYGON_OVERLAP",
					Message: fmt.Sprintf("half-edge claimed by polygons %d and %d", owner[e], p),
					Index:   e,
				})
				continue
			}
			owner[e] = p
		}
	}
	if total != len(m.HalfEdges) {
		errs = append(errs, ValidationError{
			Code:    "POLYGON_COVERAGE",
			Message: fmt.Sprintf("polygons cover %d of %d half-edges", total, len(m.HalfEdges)),
			Index:   -1,
		})
	}
	return errs, owner
}

func (m *Mesh) validateHalfEdges(owner []int) []ValidationError {
	var errs []ValidationError
	start := func(e int) int {
		p := m.Polygons[owner[e]]
		prev := e - 1
		if e == p.FirstEdge {
			prev = p.FirstEdge + p.EdgeCount - 1
		}
		return m.HalfEdges[prev].VertexIndex
	}

	for e, he := range m.HalfEdges {
		if he.VertexIndex < 0 || he.VertexIndex >= len(m.Vertices) {
			errs = append(errs, ValidationError{
				Code:    "VERTEX_RANGE",
				Message: fmt.Sprintf("vertex %d outside %d vertices", he.VertexIndex, len(m.Vertices)),
				Index:   e,
			})
			continue
		}
		t := he.TwinIndex
		if t < 0 || t >= len(m.HalfEdges) {
			errs = append(errs, ValidationError{
				Code:    "TWIN_RANGE",
				Message: fmt.Sprintf("twin %d outside %d half-edges", t, len(m.HalfEdges)),
				Index:   e,
			})
			continue
		}
		if m.HalfEdges[t].TwinIndex != e {
			errs = append(errs, ValidationError{
				Code:    "TWIN_ASYMMETRIC",
				Message: fmt.Sprintf("twin %d points back at %d", t, m.HalfEdges[t].TwinIndex),
				Index:   e,
			})
		}
		if owner[t] == owner[e] {
			errs = append(errs, ValidationError{
				Code:    "TWIN_SAME_POLYGON",
				Message: fmt.Sprintf("twin %d is in the same polygon %d", t, owner[e]),
				Index:   e,
			})
		}
		s := start(e)
		if s == he.VertexIndex {
			errs = append(errs, ValidationError{
				Code:    "DEGENERATE_EDGE",
				Message: fmt.Sprintf("half-edge starts and ends at vertex %d", s),
				Index:   e,
			})
		}
		if tv := m.HalfEdges[t].VertexIndex; tv != s {
			errs = append(errs, ValidationError{
				Code:    "TWIN_ENDPOINTS",
				Message: fmt.Sprintf("half-edge starts at vertex %d but its twin ends at %d", s, tv),
				Index:   e,
			})
		}
	}
	return errs
}

func (m *Mesh) validateVertices() []ValidationError {
	var errs []ValidationError
	used := make([]bool, len(m.Vertices))
	for _, he := range m.HalfEdges {
		if he.VertexIndex >= 0 && he.VertexIndex < len(used) {
			used[he.VertexIndex] = true
		}
	}
	for v, ok := range used {
		if !ok {
			errs = append(errs, ValidationError{
				Code:    "UNREFERENCED_VERTEX",
				Message: "no half-edge ends at this vertex",
				Index:   v,
			})
		}
	}
	return errs
}

// debugValidate panics with an InvariantError when debug checks are built
// in and the mesh is invalid.
func (m *Mesh) debugValidate(op string) {
	if !debugChecks {
		return
	}
	if errs := m.Validate(); len(errs) > 0 {
		panic(&InvariantError{Op: op, Errors: errs})
	}
}
