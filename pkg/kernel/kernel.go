// Package kernel defines the abstract convex solid kernel interface.
// Implementations (brushkernel, sdfx) build convex primitives, clip them
// against half-spaces and intersect them behind this interface, so callers
// can swap an exact backend for a sampled one without other changes.
package kernel

import "github.com/chazu/brushcut/pkg/brush"

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Halfspace is the closed region Normal·p + Distance <= 0. Normal need not
// be unit length.
type Halfspace struct {
	Normal   [3]float64 `json:"normal"`
	Distance float64    `json:"distance"`
}

// Contains reports whether p lies in the half-space, allowing eps of slack
// in units of the normal's length.
func (h Halfspace) Contains(p [3]float64, eps float64) bool {
	return h.Normal[0]*p[0]+h.Normal[1]*p[1]+h.Normal[2]*p[2]+h.Distance <= eps
}

// Kernel is the abstract convex solid kernel.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Convex operations
	Intersection(a, b Solid) Solid
	Clip(s Solid, halfspaces ...Halfspace) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// BrushImporter is a Kernel that can turn a convex brush mesh into one of
// its own solids.
type BrushImporter interface {
	Kernel
	FromBrush(m *brush.Mesh) Solid
}
