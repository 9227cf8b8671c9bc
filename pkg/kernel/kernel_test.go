package kernel

import (
	"testing"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		mesh      Mesh
		vertices  int
		triangles int
		empty     bool
	}{
		{"empty", Mesh{}, 0, 0, true},
		{"one vertex", Mesh{Vertices: []float32{1, 2, 3}}, 1, 0, false},
		{"quad", Mesh{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			Indices:  []uint32{0, 1, 2, 2, 3, 0},
		}, 4, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.VertexCount(); got != tt.vertices {
				t.Errorf("VertexCount() = %d, want %d", got, tt.vertices)
			}
			if got := tt.mesh.TriangleCount(); got != tt.triangles {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.triangles)
			}
			if got := tt.mesh.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestMeshTriangle(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
	}
	got := m.Triangle(1)
	want := [3][3]float32{{1, 1, 0}, {0, 1, 0}, {0, 0, 0}}
	if got != want {
		t.Errorf("Triangle(1) = %v, want %v", got, want)
	}
}

func TestMeshBounds(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		min, max [3]float32
	}{
		{"empty", nil, [3]float32{}, [3]float32{}},
		{"one vertex", []float32{1, 2, 3}, [3]float32{1, 2, 3}, [3]float32{1, 2, 3}},
		{"spread", []float32{1, -2, 3, -1, 5, 0}, [3]float32{-1, -2, 0}, [3]float32{1, 5, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			min, max := m.Bounds()
			if min != tt.min || max != tt.max {
				t.Errorf("Bounds() = %v, %v, want %v, %v", min, max, tt.min, tt.max)
			}
		})
	}
}

func TestHalfspaceContains(t *testing.T) {
	// x + y <= 10
	h := Halfspace{Normal: [3]float64{1, 1, 0}, Distance: -10}
	tests := []struct {
		p    [3]float64
		eps  float64
		want bool
	}{
		{[3]float64{0, 0, 0}, 0, true},
		{[3]float64{5, 5, 100}, 0, true},
		{[3]float64{6, 5, 0}, 0, false},
		{[3]float64{5, 5.05, 0}, 0.1, true},
	}
	for _, tt := range tests {
		if got := h.Contains(tt.p, tt.eps); got != tt.want {
			t.Errorf("Contains(%v, %g) = %v, want %v", tt.p, tt.eps, got, tt.want)
		}
	}
}

// boxSolid is an axis-aligned box; boxKernel clips it by axis-aligned
// half-spaces only. It shows the interfaces can be met without a mesh.
type boxSolid struct {
	min, max [3]float64
}

func (s *boxSolid) BoundingBox() (min, max [3]float64) {
	return s.min, s.max
}

type boxKernel struct{}

func (k *boxKernel) Box(x, y, z float64) Solid {
	return &boxSolid{max: [3]float64{x, y, z}}
}

func (k *boxKernel) Cylinder(height, radius float64, _ int) Solid {
	return &boxSolid{
		min: [3]float64{-radius, -radius, -height / 2},
		max: [3]float64{radius, radius, height / 2},
	}
}

func (k *boxKernel) Intersection(a, b Solid) Solid {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	out := &boxSolid{}
	for i := 0; i < 3; i++ {
		out.min[i] = max(amin[i], bmin[i])
		out.max[i] = min(amax[i], bmax[i])
	}
	return out
}

// Clip handles half-spaces whose normal has one non-zero component.
func (k *boxKernel) Clip(s Solid, halfspaces ...Halfspace) Solid {
	lo, hi := s.BoundingBox()
	for _, h := range halfspaces {
		for i, n := range h.Normal {
			switch {
			case n > 0:
				hi[i] = min(hi[i], -h.Distance/n)
			case n < 0:
				lo[i] = max(lo[i], -h.Distance/n)
			}
		}
	}
	return &boxSolid{min: lo, max: hi}
}

func (k *boxKernel) Translate(s Solid, x, y, z float64) Solid {
	lo, hi := s.BoundingBox()
	d := [3]float64{x, y, z}
	for i := range d {
		lo[i] += d[i]
		hi[i] += d[i]
	}
	return &boxSolid{min: lo, max: hi}
}

func (k *boxKernel) Rotate(s Solid, _, _, _ float64) Solid { return s }

func (k *boxKernel) ToMesh(_ Solid) (*Mesh, error) { return &Mesh{}, nil }

func (k *boxKernel) FromBrush(m *brush.Mesh) Solid {
	bb := m.Bounds()
	return &boxSolid{
		min: [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z},
		max: [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z},
	}
}

var (
	_ Solid         = (*boxSolid)(nil)
	_ BrushImporter = (*boxKernel)(nil)
)

func TestBoxKernelClip(t *testing.T) {
	var k Kernel = &boxKernel{}
	s := k.Clip(k.Box(10, 20, 30),
		Halfspace{Normal: [3]float64{1, 0, 0}, Distance: -4},  // x <= 4
		Halfspace{Normal: [3]float64{0, -2, 0}, Distance: 10}, // y >= 5
	)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 5, 0} || max != [3]float64{4, 20, 30} {
		t.Errorf("clipped box = %v..%v", min, max)
	}
	for _, c := range [][3]float64{min, max} {
		if !(Halfspace{Normal: [3]float64{1, 0, 0}, Distance: -4}).Contains(c, 1e-12) {
			t.Errorf("corner %v outside x <= 4", c)
		}
	}
}

func TestBoxKernelFromBrush(t *testing.T) {
	m, err := brush.NewBox(sdf.Box3{Min: v3.Vec{X: -1, Y: 2, Z: 0}, Max: v3.Vec{X: 1, Y: 3, Z: 5}})
	if err != nil {
		t.Fatal(err)
	}
	var k BrushImporter = &boxKernel{}
	s := k.Translate(k.FromBrush(m), 1, 0, 0)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 2, 0} || max != [3]float64{2, 3, 5} {
		t.Errorf("bounds = %v..%v", min, max)
	}
	mesh, err := k.ToMesh(s)
	if err != nil || mesh == nil {
		t.Fatalf("ToMesh() = %v, %v", mesh, err)
	}
}
