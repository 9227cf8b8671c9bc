package export

import (
	"fmt"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// layerColors cycles through the DXF palette, one color per brush layer.
var layerColors = []color.ColorNumber{
	color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta,
}

// Wireframe writes every brush edge of the scene to a DXF file, one layer
// per brush. Brushes are placed in world coordinates; empty brushes are
// skipped.
func Wireframe(path string, sc *scene.Scene) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	for i, b := range sc.All() {
		if b.Mesh.IsEmpty() {
			continue
		}
		if _, err := d.AddLayer(b.Name, layerColors[i%len(layerColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("export: layer %q: %w", b.Name, err)
		}
		if err := d.ChangeLayer(b.Name); err != nil {
			return fmt.Errorf("export: layer %q: %w", b.Name, err)
		}
		for _, e := range Edges(b.World()) {
			if _, err := d.Line(e[0][0], e[0][1], e[0][2], e[1][0], e[1][1], e[1][2]); err != nil {
				return fmt.Errorf("export: brush %q: %w", b.Name, err)
			}
		}
	}
	return d.SaveAs(path)
}

// Edges returns each undirected edge of m once, as start and end points.
func Edges(m *brush.Mesh) [][2][3]float64 {
	if m.IsEmpty() {
		return nil
	}
	var edges [][2][3]float64
	for e, he := range m.HalfEdges {
		if he.TwinIndex < e {
			continue
		}
		start := m.HalfEdgeStart(e)
		if start < 0 {
			continue
		}
		a, b := m.Vertices[start], m.Vertices[he.VertexIndex]
		edges = append(edges, [2][3]float64{{a.X, a.Y, a.Z}, {b.X, b.Y, b.Z}})
	}
	return edges
}
