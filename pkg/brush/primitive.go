package brush

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Box face descriptors, in the order NewBox emits the faces.
const (
	FaceNegX = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// Cylinder face descriptors.
const (
	CylinderBottom = iota
	CylinderTop
	CylinderSide
)

// boxLoops lists the corners of each box face, counter-clockwise seen from
// outside. Corner i has bit 0 set for max X, bit 1 for max Y, bit 2 for max Z.
var boxLoops = [6][]int{
	FaceNegX: {0, 4, 6, 2},
	FacePosX: {1, 3, 7, 5},
	FaceNegY: {0, 1, 5, 4},
	FacePosY: {2, 6, 7, 3},
	FaceNegZ: {0, 2, 3, 1},
	FacePosZ: {4, 5, 7, 6},
}

// NewBox returns an axis-aligned box spanning bb. Faces carry the
// descriptors FaceNegX..FacePosZ.
func NewBox(bb sdf.Box3) (*Mesh, error) {
	size := bb.Max.Sub(bb.Min)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("brush: box size %v must be positive", size)
	}
	vertices := make([]v3.Vec, 8)
	for i := range vertices {
		v := bb.Min
		if i&1 != 0 {
			v.X = bb.Max.X
		}
		if i&2 != 0 {
			v.Y = bb.Max.Y
		}
		if i&4 != 0 {
			v.Z = bb.Max.Z
		}
		vertices[i] = v
	}
	loops := make([][]int, len(boxLoops))
	descriptions := make([]int, len(boxLoops))
	for f := range boxLoops {
		loops[f] = boxLoops[f]
		descriptions[f] = f
	}
	return FromPolygons(vertices, loops, descriptions)
}

// NewCylinder returns a prism approximating a cylinder of the given height
// and radius, centered on the origin with its axis along Z.
func NewCylinder(height, radius float64, segments int) (*Mesh, error) {
	if height <= 0 || radius <= 0 {
		return nil, fmt.Errorf("brush: cylinder height %g and radius %g must be positive", height, radius)
	}
	if segments < 3 {
		return nil, fmt.Errorf("brush: cylinder needs at least 3 segments, got %d", segments)
	}
	vertices := make([]v3.Vec, 2*segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x, y := radius*math.Cos(a), radius*math.Sin(a)
		vertices[i] = v3.Vec{X: x, Y: y, Z: -height / 2}
		vertices[i+segments] = v3.Vec{X: x, Y: y, Z: height / 2}
	}

	loops := make([][]int, 0, segments+2)
	descriptions := make([]int, 0, segments+2)
	bottom := make([]int, segments)
	top := make([]int, segments)
	for i := 0; i < segments; i++ {
		bottom[i] = segments - 1 - i
		top[i] = segments + i
	}
	loops = append(loops, bottom, top)
	descriptions = append(descriptions, CylinderBottom, CylinderTop)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		loops = append(loops, []int{i, j, j + segments, i + segments})
		descriptions = append(descriptions, CylinderSide)
	}
	return FromPolygons(vertices, loops, descriptions)
}

// FromPolygons builds a mesh from vertex loops, each wound
// counter-clockwise seen from outside. Twins are found by matching every
// directed edge with its reverse, so the loops must describe a closed
// 2-manifold. descriptions may be nil.
func FromPolygons(vertices []v3.Vec, loops [][]int, descriptions []int) (*Mesh, error) {
	if descriptions != nil && len(descriptions) != len(loops) {
		return nil, fmt.Errorf("brush: %d descriptions for %d polygons", len(descriptions), len(loops))
	}
	m := &Mesh{Vertices: append([]v3.Vec(nil), vertices...)}

	type directed struct{ from, to int }
	edgeOf := make(map[directed]int)
	for p, loop := range loops {
		if len(loop) < 3 {
			return nil, fmt.Errorf("brush: polygon %d has %d vertices", p, len(loop))
		}
		poly := Polygon{FirstEdge: len(m.HalfEdges), EdgeCount: len(loop)}
		if descriptions != nil {
			poly.DescriptionIndex = descriptions[p]
		}
		for k, v := range loop {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("brush: polygon %d vertex %d: %w", p, v, ErrVertexOutOfRange)
			}
			from := loop[(k+len(loop)-1)%len(loop)]
			key := directed{from, v}
			if _, dup := edgeOf[key]; dup {
				return nil, fmt.Errorf("brush: edge %d->%d used twice", from, v)
			}
			edgeOf[key] = len(m.HalfEdges)
			m.HalfEdges = append(m.HalfEdges, HalfEdge{VertexIndex: v, TwinIndex: -1})
		}
		m.Polygons = append(m.Polygons, poly)
	}

	for key, e := range edgeOf {
		twin, ok := edgeOf[directed{key.to, key.from}]
		if !ok {
			return nil, fmt.Errorf("brush: edge %d->%d has no twin: %w", key.from, key.to, errOpenSurface)
		}
		m.HalfEdges[e].TwinIndex = twin
	}

	m.UpdateHalfEdgePolygonIndices()
	m.CalculatePlanes()
	if errs := m.Validate(); len(errs) > 0 {
		return nil, &InvariantError{Op: "FromPolygons", Errors: errs}
	}
	return m, nil
}

var errOpenSurface = errors.New("surface is not closed")
