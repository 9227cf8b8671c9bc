package brush

import (
	"reflect"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestCompactHalfEdgesIdempotent(t *testing.T) {
	m := unitCube(t)
	before := m.Clone()
	if m.CompactHalfEdges() {
		t.Fatal("compact mesh reported a change")
	}
	if !reflect.DeepEqual(m, before) {
		t.Fatal("compact mesh was modified")
	}
}

func TestCompactHalfEdgesClosesGaps(t *testing.T) {
	m := unitCube(t)
	poly := m.Polygons[FaceNegX]
	if _, err := m.splitPolygon(FaceNegX, poly.FirstEdge, poly.FirstEdge+2); err != nil {
		t.Fatal(err)
	}
	if m.isCompact() {
		t.Fatal("split should leave a gap")
	}
	if !m.CompactHalfEdges() {
		t.Fatal("CompactHalfEdges reported no change")
	}
	requireCounts(t, m, 8, 26, 7)
	requireValid(t, m)

	offset := 0
	for p, poly := range m.Polygons {
		if poly.FirstEdge != offset {
			t.Fatalf("polygon %d starts at %d, want %d", p, poly.FirstEdge, offset)
		}
		offset += poly.EdgeCount
	}

	again := m.Clone()
	if m.CompactHalfEdges() {
		t.Fatal("second compaction reported a change")
	}
	if !reflect.DeepEqual(m, again) {
		t.Fatal("second compaction modified the mesh")
	}
}

func TestCompactHalfEdgesDropsEmptyPolygons(t *testing.T) {
	m := unitCube(t)
	m.Polygons[FacePosY].EdgeCount = 0
	m.CompactHalfEdges()

	requireCounts(t, m, 8, 20, 5)
	if len(m.Planes) != 5 {
		t.Fatalf("planes = %d, want 5", len(m.Planes))
	}
	orphaned := 0
	for _, he := range m.HalfEdges {
		if he.TwinIndex == -1 {
			orphaned++
		}
	}
	if orphaned != 4 {
		t.Fatalf("orphaned twins = %d, want 4", orphaned)
	}
	for p, poly := range m.Polygons {
		want := p
		if p >= FacePosY {
			want = p + 1
		}
		if poly.DescriptionIndex != want {
			t.Errorf("polygon %d description = %d, want %d", p, poly.DescriptionIndex, want)
		}
	}
}

func TestRemoveRedundantVerticesKeepsOrder(t *testing.T) {
	m := unitCube(t)
	want := m.Clone()

	m.Vertices = append([]v3.Vec{{X: 9, Y: 9, Z: 9}}, m.Vertices...)
	m.Vertices = append(m.Vertices, v3.Vec{X: -9})
	for i := range m.HalfEdges {
		m.HalfEdges[i].VertexIndex++
	}

	if n := m.RemoveRedundantVertices(); n != 2 {
		t.Fatalf("removed %d vertices, want 2", n)
	}
	if !reflect.DeepEqual(m.Vertices, want.Vertices) {
		t.Fatalf("vertices = %v, want %v", m.Vertices, want.Vertices)
	}
	if !reflect.DeepEqual(m.HalfEdges, want.HalfEdges) {
		t.Fatal("half-edges not remapped back")
	}
	if n := m.RemoveRedundantVertices(); n != 0 {
		t.Fatalf("second pass removed %d", n)
	}
}

func TestUpdateHalfEdgePolygonIndices(t *testing.T) {
	m := unitCube(t)
	m.HalfEdgePolygonIndices = nil
	m.UpdateHalfEdgePolygonIndices()
	for p, poly := range m.Polygons {
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			if m.HalfEdgePolygonIndices[e] != p {
				t.Fatalf("edge %d maps to %d, want %d", e, m.HalfEdgePolygonIndices[e], p)
			}
		}
	}
}
