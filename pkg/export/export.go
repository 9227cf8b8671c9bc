// Package export writes scenes to files: STL and 3MF solids through the
// sdfx renderers, DXF wireframes through yofu/dxf, and JSON or YAML
// statistics.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/chazu/brushcut/pkg/tessellate"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// SceneTriangles fans every non-empty brush of the scene, placed in world
// coordinates, into one triangle soup.
func SceneTriangles(sc *scene.Scene) []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for _, b := range sc.All() {
		if b.Mesh.IsEmpty() {
			continue
		}
		tris = append(tris, tessellate.Triangles(b.World())...)
	}
	return tris
}

// MeshTriangles concatenates kernel meshes into one triangle soup.
func MeshTriangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		tris = append(tris, tessellate.MeshTriangles(m)...)
	}
	return tris
}

// Solid writes triangles to path. The format follows the extension: .stl
// or .3mf.
func Solid(path string, tris []*sdf.Triangle3) error {
	if len(tris) == 0 {
		return fmt.Errorf("export: %s: nothing to write", path)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return render.SaveSTL(path, tris)
	case ".3mf":
		return render.Save3MF(path, tris)
	default:
		return fmt.Errorf("export: %s: unsupported solid format %q", path, ext)
	}
}
