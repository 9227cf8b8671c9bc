// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.BrushImporter = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return NewWithCells(defaultMeshCells)
}

// NewWithCells returns an SdfxKernel whose marching cubes grid has the given
// number of cells along the longest axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// SDF3 returns the signed distance field behind a solid made by this kernel.
func SDF3(s kernel.Solid) sdf.SDF3 {
	return unwrap(s)
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box spanning (0,0,0)-(x,y,z), matching the brush backend.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	size := v3.Vec{X: x, Y: y, Z: z}
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(size.MulScalar(0.5))))
}

// Cylinder creates a solid of the given height and radius centered on the
// origin with its axis along Z. With three or more segments it is the same
// prism the brush backend builds; otherwise it is a smooth cylinder.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments >= 3 {
		m, err := brush.NewCylinder(height, radius, segments)
		if err != nil {
			panic(fmt.Sprintf("brush.NewCylinder: %v", err))
		}
		return k.FromBrush(m)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Clip keeps the part of s inside every half-space.
func (k *SdfxKernel) Clip(s kernel.Solid, halfspaces ...kernel.Halfspace) kernel.Solid {
	planes := make([]brush.Plane, 0, len(halfspaces))
	for _, h := range halfspaces {
		p := brush.NewPlane(v3.Vec{X: h.Normal[0], Y: h.Normal[1], Z: h.Normal[2]}, h.Distance)
		if !p.IsZero() {
			planes = append(planes, p)
		}
	}
	if len(planes) == 0 {
		return s
	}
	return wrap(&clipSDF{s: unwrap(s), planes: planes})
}

// FromBrush returns the solid bounded by every polygon plane of a convex
// brush. The empty brush gives an empty solid.
func (k *SdfxKernel) FromBrush(m *brush.Mesh) kernel.Solid {
	c := m
	if len(m.Planes) != m.PolygonCount() {
		c = m.Clone()
		c.CalculatePlanes()
	}
	planes := append([]brush.Plane(nil), c.Planes...)
	return wrap(&polytopeSDF{planes: planes, bb: m.Bounds()})
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles in degrees, X first, then Y, then Z.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), brush.EulerRotation(x, y, z)))
}

// ToMesh samples the solid on a uniform marching cubes grid. A solid with
// no extent meshes to nothing.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	field := unwrap(s)
	size := field.BoundingBox().Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return &kernel.Mesh{}, nil
	}
	return FromTriangles(render.ToTriangles(field, render.NewMarchingCubesUniform(k.cells))), nil
}

// FromTriangles flattens sdfx triangles into a kernel.Mesh. Vertices are not
// shared; each corner carries its triangle's normal.
func FromTriangles(triangles []*sdf.Triangle3) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		for _, v := range tri {
			out.Indices = append(out.Indices, uint32(len(out.Vertices)/3))
			out.Vertices = append(out.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return out
}
