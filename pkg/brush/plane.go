package brush

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DistanceEpsilon is the half-width of the band around a plane inside which
// a point classifies as lying on the plane. It is fixed so that
// classification is repeatable across identical inputs.
const DistanceEpsilon = 1e-4

// normalEpsilon is the shortest normal Newell's method may produce before
// the loop is treated as degenerate.
const normalEpsilon = 1e-12

// Halfspace is the quantized side of a plane a point lies on.
type Halfspace int8

const (
	Inside  Halfspace = -1 // signed distance below -DistanceEpsilon
	On      Halfspace = 0  // within DistanceEpsilon of the plane
	Outside Halfspace = 1  // signed distance above DistanceEpsilon
)

func (h Halfspace) String() string {
	switch h {
	case Inside:
		return "inside"
	case On:
		return "on"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("Halfspace(%d)", int(h))
	}
}

// Plane is the set of points p with Normal·p + Distance == 0. Points with a
// negative signed distance are inside the solid.
type Plane struct {
	Normal   v3.Vec  `json:"normal"`
	Distance float64 `json:"distance"`
}

// NewPlane returns the plane normal·p + distance == 0, rescaled so the
// normal has unit length. A zero normal yields the zero plane.
func NewPlane(normal v3.Vec, distance float64) Plane {
	l := normal.Length()
	if l < normalEpsilon {
		return Plane{}
	}
	return Plane{Normal: normal.MulScalar(1 / l), Distance: distance / l}
}

// PlaneFromPoint returns the plane with the given normal passing through point.
func PlaneFromPoint(normal, point v3.Vec) Plane {
	p := NewPlane(normal, 0)
	p.Distance = -p.Normal.Dot(point)
	return p
}

// SignedDistance returns the signed distance from the plane to point.
func (p Plane) SignedDistance(point v3.Vec) float64 {
	return p.Normal.Dot(point) + p.Distance
}

// Classify returns which side of the plane point lies on.
func (p Plane) Classify(point v3.Vec) Halfspace {
	return classifyDistance(p.SignedDistance(point))
}

// Flip returns the plane facing the opposite direction.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.MulScalar(-1), Distance: -p.Distance}
}

// IsZero reports whether the plane has no orientation.
func (p Plane) IsZero() bool {
	return p.Normal == (v3.Vec{})
}

func (p Plane) String() string {
	return fmt.Sprintf("(%.4f %.4f %.4f | %.4f)", p.Normal.X, p.Normal.Y, p.Normal.Z, p.Distance)
}

func classifyDistance(d float64) Halfspace {
	switch {
	case d < -DistanceEpsilon:
		return Inside
	case d > DistanceEpsilon:
		return Outside
	default:
		return On
	}
}

// CalculatePlane returns the best-fit plane of a polygon's vertex loop using
// Newell's method. The result does not depend on which vertex the loop
// starts at, but flips with the winding. A degenerate loop yields the zero
// plane.
func (m *Mesh) CalculatePlane(polygonIndex int) Plane {
	poly := m.Polygons[polygonIndex]
	if poly.EdgeCount < 3 {
		return Plane{}
	}
	edges := m.HalfEdges[poly.FirstEdge : poly.FirstEdge+poly.EdgeCount]

	var nx, ny, nz float64
	prev := m.Vertices[edges[len(edges)-1].VertexIndex]
	for _, e := range edges {
		cur := m.Vertices[e.VertexIndex]
		nx += (prev.Y - cur.Y) * (prev.Z + cur.Z)
		ny += (prev.Z - cur.Z) * (prev.X + cur.X)
		nz += (prev.X - cur.X) * (prev.Y + cur.Y)
		prev = cur
	}

	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if l < normalEpsilon {
		return Plane{}
	}
	normal := v3.Vec{X: nx / l, Y: ny / l, Z: nz / l}

	var sum float64
	for _, e := range edges {
		sum += normal.Dot(m.Vertices[e.VertexIndex])
	}
	return Plane{Normal: normal, Distance: -sum / float64(len(edges))}
}

// CalculatePlanes recomputes every polygon's plane and realigns the Planes
// array with Polygons.
func (m *Mesh) CalculatePlanes() {
	m.Planes = resize(m.Planes, len(m.Polygons))
	for p := range m.Polygons {
		m.Planes[p] = m.CalculatePlane(p)
	}
}

// resize returns s with length n, reusing its backing array when possible.
func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make([]T, n-cap(s))...)
}
