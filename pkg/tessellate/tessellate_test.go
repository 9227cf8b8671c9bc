package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/chazu/brushcut/pkg/kernel/brushkernel"
	"github.com/chazu/brushcut/pkg/kernel/sdfx"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/chazu/brushcut/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// kernels lists the backends every scene test runs against.
func kernels() map[string]kernel.BrushImporter {
	return map[string]kernel.BrushImporter{
		"brush": brushkernel.New(),
		"sdfx":  sdfx.NewWithCells(48),
	}
}

// makeBox creates a box brush with its minimum corner at the origin.
func makeBox(t *testing.T, x, y, z float64) *brush.Mesh {
	t.Helper()
	m, err := brush.NewBox(sdf.Box3{Max: v3.Vec{X: x, Y: y, Z: z}})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	return m
}

func abs(x float64) float64 {
	return math.Abs(x)
}

func TestBrushFan(t *testing.T) {
	m := makeBox(t, 1, 2, 3)
	mesh, err := tessellate.Brush(m)
	if err != nil {
		t.Fatalf("Brush failed: %v", err)
	}
	// Six quads, four vertices and two triangles each.
	if mesh.VertexCount() != 24 {
		t.Errorf("vertex count = %d, want 24", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("triangle count = %d, want 12", mesh.TriangleCount())
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(mesh.Normals), len(mesh.Vertices))
	}

	min, max := mesh.Bounds()
	if min != [3]float32{0, 0, 0} || max != [3]float32{1, 2, 3} {
		t.Errorf("bounds = %v..%v", min, max)
	}

	// Every triangle winds the same way as its flat normal.
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := mesh.Triangle(i)
		a := v3.Vec{X: float64(tri[0][0]), Y: float64(tri[0][1]), Z: float64(tri[0][2])}
		b := v3.Vec{X: float64(tri[1][0]), Y: float64(tri[1][1]), Z: float64(tri[1][2])}
		c := v3.Vec{X: float64(tri[2][0]), Y: float64(tri[2][1]), Z: float64(tri[2][2])}
		cross := b.Sub(a).Cross(c.Sub(a))
		ni := mesh.Indices[i*3] * 3
		n := v3.Vec{X: float64(mesh.Normals[ni]), Y: float64(mesh.Normals[ni+1]), Z: float64(mesh.Normals[ni+2])}
		if cross.Dot(n) <= 0 {
			t.Errorf("triangle %d winds against its normal %v", i, n)
		}
	}
}

func TestBrushAfterCut(t *testing.T) {
	m := makeBox(t, 1, 1, 1)
	m.CutWith(brush.CutPlane{Plane: brush.NewPlane(v3.Vec{X: 1, Y: 1, Z: 1}, -2.5)})

	mesh, err := tessellate.Brush(m)
	if err != nil {
		t.Fatalf("Brush failed: %v", err)
	}
	wantTris := 0
	for p := range m.Polygons {
		wantTris += m.Polygons[p].EdgeCount - 2
	}
	if mesh.TriangleCount() != wantTris {
		t.Errorf("triangle count = %d, want %d", mesh.TriangleCount(), wantTris)
	}
	if got := len(tessellate.Triangles(m)); got != wantTris {
		t.Errorf("Triangles() = %d, want %d", got, wantTris)
	}
}

func TestBrushEmptyAndInvalid(t *testing.T) {
	mesh, err := tessellate.Brush(brush.New())
	if err != nil {
		t.Fatalf("Brush(empty) failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Error("empty brush should give an empty mesh")
	}
	if tessellate.Triangles(brush.New()) != nil {
		t.Error("empty brush should give no triangles")
	}

	m := makeBox(t, 1, 1, 1)
	m.HalfEdges[3].TwinIndex = 3
	if _, err := tessellate.Brush(m); err == nil {
		t.Error("invalid brush should be rejected")
	}
}

func TestMeshTriangles(t *testing.T) {
	mesh, err := tessellate.Brush(makeBox(t, 2, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	tris := tessellate.MeshTriangles(mesh)
	if len(tris) != mesh.TriangleCount() {
		t.Fatalf("got %d triangles, want %d", len(tris), mesh.TriangleCount())
	}
	for i, tri := range tris {
		if n := tri.Normal(); abs(n.Length()-1) > 1e-6 {
			t.Errorf("triangle %d is degenerate (normal %v)", i, n)
		}
	}
}

func TestSingleBrush(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			sc := scene.New()
			if _, err := sc.Add("shelf", makeBox(t, 60, 30, 2)); err != nil {
				t.Fatal(err)
			}

			meshes, err := tessellate.Tessellate(sc, k)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if len(meshes) != 1 {
				t.Fatalf("expected 1 mesh, got %d", len(meshes))
			}
			m := meshes[0]
			if m.IsEmpty() {
				t.Fatal("mesh should not be empty")
			}
			if m.PartName != "shelf" {
				t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
			}
			if m.TriangleCount() == 0 {
				t.Error("mesh should have triangles")
			}
		})
	}
}

func TestTwoBrushes(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			sc := scene.New()
			sc.Add("side-panel", makeBox(t, 40, 30, 2))
			sc.Add("top-panel", makeBox(t, 60, 30, 2))

			meshes, err := tessellate.Tessellate(sc, k)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if len(meshes) != 2 {
				t.Fatalf("expected 2 meshes, got %d", len(meshes))
			}
			// Scene order is kept.
			if meshes[0].PartName != "side-panel" || meshes[1].PartName != "top-panel" {
				t.Errorf("part names = %q, %q", meshes[0].PartName, meshes[1].PartName)
			}
		})
	}
}

func TestBrushWithPlacement(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			sc := scene.New()
			b, _ := sc.Add("shelf", makeBox(t, 10, 5, 1))
			b.Translation = v3.Vec{X: 20, Y: 10, Z: 5}

			meshes, err := tessellate.Tessellate(sc, k)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if len(meshes) != 1 {
				t.Fatalf("expected 1 mesh, got %d", len(meshes))
			}

			// A 10x5x1 box placed at (20,10,5) spans (20,10,5)-(30,15,6).
			min, max := meshes[0].Bounds()
			wantMin := [3]float64{20, 10, 5}
			wantMax := [3]float64{30, 15, 6}
			// Generous tolerance since marching cubes is approximate.
			const tol = 0.5
			for i := 0; i < 3; i++ {
				if abs(float64(min[i])-wantMin[i]) > tol {
					t.Errorf("min[%d] = %.2f, expected near %.0f", i, min[i], wantMin[i])
				}
				if abs(float64(max[i])-wantMax[i]) > tol {
					t.Errorf("max[%d] = %.2f, expected near %.0f", i, max[i], wantMax[i])
				}
			}
		})
	}
}

func TestEliminatedBrushSkipped(t *testing.T) {
	sc := scene.New()
	gone := makeBox(t, 1, 1, 1)
	gone.CutWith(brush.CutPlane{Plane: brush.NewPlane(v3.Vec{Z: 1}, 2)})
	sc.Add("gone", gone)
	sc.Add("kept", makeBox(t, 1, 1, 1))

	meshes, err := tessellate.Tessellate(sc, brushkernel.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 || meshes[0].PartName != "kept" {
		t.Fatalf("expected only the kept brush, got %d meshes", len(meshes))
	}
}

func TestEmptyScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(scene.New(), brushkernel.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
	if meshes, err := tessellate.Tessellate(nil, brushkernel.New()); meshes != nil || err != nil {
		t.Errorf("nil scene = %v, %v", meshes, err)
	}
}
