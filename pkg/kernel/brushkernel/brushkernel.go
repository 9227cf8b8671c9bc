// Package brushkernel implements the kernel.Kernel interface on exact
// convex brush meshes. Clipping and intersection are half-space cuts, so
// results carry no sampling error.
package brushkernel

import (
	"fmt"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/chazu/brushcut/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.BrushImporter = (*BrushKernel)(nil)

// ClipDescription is the surface descriptor given to the first half-space
// of a Clip call; later half-spaces count up from it.
const ClipDescription = 1000

// brushSolid wraps a brush.Mesh to implement kernel.Solid. The mesh is
// never mutated once wrapped. err is set when a cut producing the solid
// broke a mesh invariant; it is carried through later operations and
// reported by ToMesh.
type brushSolid struct {
	m   *brush.Mesh
	err error
}

// BoundingBox returns the axis-aligned bounding box.
func (s *brushSolid) BoundingBox() (min, max [3]float64) {
	bb := s.m.Bounds()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// BrushKernel implements kernel.Kernel using brush meshes.
type BrushKernel struct{}

// New returns a new BrushKernel.
func New() *BrushKernel {
	return &BrushKernel{}
}

// Wrap creates a kernel.Solid from a copy of m.
func Wrap(m *brush.Mesh) kernel.Solid {
	return &brushSolid{m: m.Clone()}
}

// Brush returns a copy of the mesh behind a solid made by this kernel.
func Brush(s kernel.Solid) *brush.Mesh {
	return unwrap(s).Clone()
}

func unwrap(s kernel.Solid) *brush.Mesh {
	return s.(*brushSolid).m
}

// solidErr returns the first error carried by any of solids.
func solidErr(solids ...kernel.Solid) error {
	for _, s := range solids {
		if err := s.(*brushSolid).err; err != nil {
			return err
		}
	}
	return nil
}

// FromBrush returns a solid holding a copy of m.
func (k *BrushKernel) FromBrush(m *brush.Mesh) kernel.Solid {
	return Wrap(m)
}

// Box creates a box with its minimum corner at the origin, matching the
// sdfx backend.
func (k *BrushKernel) Box(x, y, z float64) kernel.Solid {
	m, err := brush.NewBox(sdf.Box3{Max: v3.Vec{X: x, Y: y, Z: z}})
	if err != nil {
		panic(fmt.Sprintf("brush.NewBox: %v", err))
	}
	return &brushSolid{m: m}
}

// Cylinder creates a prism of the given number of sides centered on the
// origin with its axis along Z.
func (k *BrushKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	m, err := brush.NewCylinder(height, radius, segments)
	if err != nil {
		panic(fmt.Sprintf("brush.NewCylinder: %v", err))
	}
	return &brushSolid{m: m}
}

// Intersection returns the intersection of two convex solids.
func (k *BrushKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	if err := solidErr(a, b); err != nil {
		return &brushSolid{m: new(brush.Mesh), err: err}
	}
	m := unwrap(a).Clone()
	if err := brush.Guard(func() { m.Intersect(unwrap(b)) }); err != nil {
		return &brushSolid{m: new(brush.Mesh), err: fmt.Errorf("intersection: %w", err)}
	}
	return &brushSolid{m: m}
}

// Clip keeps the part of s inside every half-space. Half-spaces with a zero
// normal are ignored.
func (k *BrushKernel) Clip(s kernel.Solid, halfspaces ...kernel.Halfspace) kernel.Solid {
	if err := solidErr(s); err != nil {
		return &brushSolid{m: new(brush.Mesh), err: err}
	}
	m := unwrap(s).Clone()
	planes := CutPlanes(halfspaces)
	if len(planes) > 0 {
		if err := brush.Guard(func() { m.Cut(planes, len(planes)) }); err != nil {
			return &brushSolid{m: new(brush.Mesh), err: fmt.Errorf("clip: %w", err)}
		}
	}
	return &brushSolid{m: m}
}

// CutPlanes converts half-spaces to brush cut planes, numbering their
// descriptors from ClipDescription.
func CutPlanes(halfspaces []kernel.Halfspace) []brush.CutPlane {
	planes := make([]brush.CutPlane, 0, len(halfspaces))
	for i, h := range halfspaces {
		p := brush.NewPlane(v3.Vec{X: h.Normal[0], Y: h.Normal[1], Z: h.Normal[2]}, h.Distance)
		if p.IsZero() {
			continue
		}
		planes = append(planes, brush.CutPlane{Plane: p, DescriptionIndex: ClipDescription + i})
	}
	return planes
}

// Translate moves a solid by (x, y, z).
func (k *BrushKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := unwrap(s).Clone()
	m.Translate(v3.Vec{X: x, Y: y, Z: z})
	return &brushSolid{m: m, err: solidErr(s)}
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *BrushKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := unwrap(s).Clone()
	m.Transform(brush.EulerRotation(x, y, z))
	return &brushSolid{m: m, err: solidErr(s)}
}

// ToMesh converts a solid to a triangle mesh by fanning each polygon.
func (k *BrushKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if err := solidErr(s); err != nil {
		return nil, err
	}
	return tessellate.Brush(unwrap(s))
}
