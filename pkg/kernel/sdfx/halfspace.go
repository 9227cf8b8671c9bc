package sdfx

import (
	"math"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// clipSDF intersects an SDF3 with a set of half-spaces.
type clipSDF struct {
	s      sdf.SDF3
	planes []brush.Plane
}

// Evaluate returns the larger of the wrapped distance and every plane
// distance. The planes have unit normals, so each term is exact.
func (c *clipSDF) Evaluate(p v3.Vec) float64 {
	d := c.s.Evaluate(p)
	for _, pl := range c.planes {
		d = math.Max(d, pl.SignedDistance(p))
	}
	return d
}

// BoundingBox returns the wrapped bounds; clipping only shrinks the solid.
func (c *clipSDF) BoundingBox() sdf.Box3 {
	return c.s.BoundingBox()
}

// polytopeSDF is the convex solid bounded by a set of planes.
type polytopeSDF struct {
	planes []brush.Plane
	bb     sdf.Box3
}

// Evaluate returns the largest plane distance. It is exact inside and a
// lower bound outside.
func (c *polytopeSDF) Evaluate(p v3.Vec) float64 {
	if len(c.planes) == 0 {
		return math.Inf(1)
	}
	d := math.Inf(-1)
	for _, pl := range c.planes {
		d = math.Max(d, pl.SignedDistance(p))
	}
	return d
}

// BoundingBox returns the bounds of the brush vertices.
func (c *polytopeSDF) BoundingBox() sdf.Box3 {
	return c.bb
}
