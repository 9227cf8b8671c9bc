// Package tessellate turns brushes into triangle meshes. Brush and
// Triangles fan the polygons of one brush directly; Tessellate walks a
// scene and produces one mesh per brush using a geometry kernel.
package tessellate

import (
	"fmt"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Brush fans every polygon of a convex brush into triangles. Each polygon
// gets its own vertices so normals stay flat. The empty brush gives an
// empty mesh.
func Brush(m *brush.Mesh) (*kernel.Mesh, error) {
	out := &kernel.Mesh{}
	if m.IsEmpty() {
		return out, nil
	}
	if errs := m.Validate(); len(errs) != 0 {
		return nil, fmt.Errorf("tessellate: invalid brush: %w", errs[0])
	}

	planes := m.Planes
	if len(planes) != len(m.Polygons) {
		c := m.Clone()
		c.CalculatePlanes()
		planes = c.Planes
	}

	for p := range m.Polygons {
		loop := m.PolygonVertexIndices(p)
		if len(loop) < 3 {
			continue
		}
		n := planes[p].Normal
		base := uint32(out.VertexCount())
		for _, vi := range loop {
			v := m.Vertices[vi]
			out.Vertices = append(out.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		for i := 1; i+1 < len(loop); i++ {
			out.Indices = append(out.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return out, nil
}

// Triangles fans every polygon of a brush into sdfx triangles for the
// sdfx STL and 3MF writers.
func Triangles(m *brush.Mesh) []*sdf.Triangle3 {
	if m.IsEmpty() {
		return nil
	}
	var tris []*sdf.Triangle3
	for p := range m.Polygons {
		loop := m.PolygonVertexIndices(p)
		for i := 1; i+1 < len(loop); i++ {
			tris = append(tris, &sdf.Triangle3{
				m.Vertices[loop[0]],
				m.Vertices[loop[i]],
				m.Vertices[loop[i+1]],
			})
		}
	}
	return tris
}

// MeshTriangles converts a kernel mesh back into sdfx triangles.
func MeshTriangles(m *kernel.Mesh) []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		var tri sdf.Triangle3
		for j := 0; j < 3; j++ {
			tri[j] = v3.Vec{X: float64(t[j][0]), Y: float64(t[j][1]), Z: float64(t[j][2])}
		}
		tris = append(tris, &tri)
	}
	return tris
}

// Tessellate produces one triangle mesh per non-empty brush in the scene,
// in scene order, using the provided geometry kernel. The tessellator is
// read-only and never mutates the scene.
func Tessellate(sc *scene.Scene, k kernel.BrushImporter) ([]*kernel.Mesh, error) {
	if sc == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, b := range sc.All() {
		if b.Mesh.IsEmpty() {
			continue
		}
		mesh, err := tessellateBrush(k, b)
		if err != nil {
			return nil, fmt.Errorf("tessellate: brush %s: %w", b.ID.Short(), err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// tessellateBrush places one brush and meshes it.
func tessellateBrush(k kernel.BrushImporter, b *scene.Brush) (*kernel.Mesh, error) {
	solid := k.FromBrush(b.Mesh)

	// Apply rotation first, then translation.
	rot := b.Rotation
	if rot.X != 0 || rot.Y != 0 || rot.Z != 0 {
		solid = k.Rotate(solid, rot.X, rot.Y, rot.Z)
	}
	trans := b.Translation
	if trans.X != 0 || trans.Y != 0 || trans.Z != 0 {
		solid = k.Translate(solid, trans.X, trans.Y, trans.Z)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}

	// Prefer the brush name, fall back to the short ID.
	if b.Name != "" {
		mesh.PartName = b.Name
	} else {
		mesh.PartName = b.ID.Short()
	}
	return mesh, nil
}
