package scene

import (
	"strings"
	"testing"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// hasError reports whether errs has an error-severity finding whose message
// contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning reports whether warnings has a finding containing substr.
func hasWarning(warnings []ValidationWarning, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_EmptyScene(t *testing.T) {
	if errs := Validate(New()); len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected validation error on empty scene: %s", e)
		}
	}
}

func TestValidate_ValidScene(t *testing.T) {
	s := New()
	s.Add("a", cube(t, 1))
	b, _ := s.Add("b", cube(t, 1))
	b.Translation = v3.Vec{X: 5}

	result := ValidateAll(s)
	if !result.OK() {
		for _, e := range result.Errors {
			t.Errorf("unexpected error: %s", e)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestValidate_NilMesh(t *testing.T) {
	s := New()
	s.Add("ghost", nil)
	if errs := Validate(s); !hasError(errs, "no mesh") {
		t.Errorf("expected a missing mesh error, got %v", errs)
	}
}

func TestValidate_BrokenMesh(t *testing.T) {
	s := New()
	m := cube(t, 1)
	m.HalfEdges[0].TwinIndex = 0
	b, _ := s.Add("broken", m)

	errs := Validate(s)
	if len(errs) == 0 {
		t.Fatal("expected mesh invariant errors")
	}
	for _, e := range errs {
		if e.BrushID != b.ID {
			t.Errorf("error attributed to %s, want %s", e.BrushID.Short(), b.ID.Short())
		}
		if e.Code == "" {
			t.Errorf("mesh finding %q has no code", e.Message)
		}
		if !strings.HasPrefix(e.Error(), "[error] brush "+b.ID.Short()) {
			t.Errorf("Error() = %q", e.Error())
		}
	}
}

func TestValidate_IndexMismatch(t *testing.T) {
	s := New()
	s.Add("a", cube(t, 1))
	s.NameIndex["stale"] = NewBrushID("stale")

	errs := Validate(s)
	if !hasError(errs, "references missing brush") {
		t.Errorf("expected a dangling name error, got %v", errs)
	}
	for _, e := range errs {
		if strings.Contains(e.Message, "references missing") && !strings.HasPrefix(e.Error(), "[error] name") {
			t.Errorf("scene-level Error() = %q", e.Error())
		}
	}

	s = New()
	b, _ := s.Add("a", cube(t, 1))
	b.Name = "renamed"
	if errs := Validate(s); !hasError(errs, "indexed as") {
		t.Errorf("expected a renamed brush error, got %v", errs)
	}
}

func TestValidateAll_Warnings(t *testing.T) {
	s := New()

	gone := cube(t, 1)
	gone.CutWith(brush.CutPlane{Plane: brush.NewPlane(v3.Vec{X: 1}, 5)})
	s.Add("gone", gone)

	s.Add("left", cube(t, 2))
	right, _ := s.Add("right", cube(t, 2))
	right.Translation = v3.Vec{X: 1}

	result := ValidateAll(s)
	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !hasWarning(result.Warnings, "cut away") {
		t.Error("expected a warning for the eliminated brush")
	}
	if !hasWarning(result.Warnings, `"right" overlaps "left"`) {
		t.Errorf("expected an overlap warning, got %v", result.Warnings)
	}
}

func TestValidateAll_BrokenOverlapCheckWarns(t *testing.T) {
	// Two disjoint cubes in one mesh: the overlap cut finds two cap loops.
	pair := cube(t, 1)
	other := cube(t, 1)
	other.Translate(v3.Vec{X: 3})
	vertexOffset, edgeOffset := len(pair.Vertices), len(pair.HalfEdges)
	pair.Vertices = append(pair.Vertices, other.Vertices...)
	for _, he := range other.HalfEdges {
		pair.HalfEdges = append(pair.HalfEdges, brush.HalfEdge{
			VertexIndex: he.VertexIndex + vertexOffset,
			TwinIndex:   he.TwinIndex + edgeOffset,
		})
	}
	for _, poly := range other.Polygons {
		poly.FirstEdge += edgeOffset
		pair.Polygons = append(pair.Polygons, poly)
	}
	pair.CalculatePlanes()
	pair.UpdateHalfEdgePolygonIndices()

	slab, err := brush.NewBox(sdf.Box3{Min: v3.Vec{X: -0.5, Y: 0.5}, Max: v3.Vec{X: 4.5, Y: 1.5, Z: 1}})
	if err != nil {
		t.Fatal(err)
	}

	s := New()
	s.Add("pair", pair)
	s.Add("slab", slab)
	far, _ := s.Add("far", cube(t, 1))
	far.Translation = v3.Vec{X: 20}
	nearFar, _ := s.Add("near-far", cube(t, 1))
	nearFar.Translation = v3.Vec{X: 20.5}

	result := ValidateAll(s)
	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !hasWarning(result.Warnings, `overlap check of "slab" and "pair" failed`) {
		t.Fatalf("expected a failed overlap check warning, got %v", result.Warnings)
	}
	// Later pairs are still checked.
	if !hasWarning(result.Warnings, `"near-far" overlaps "far"`) {
		t.Errorf("expected the remaining overlap warning, got %v", result.Warnings)
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  ValidationSeverity
		want string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{ValidationSeverity(7), "ValidationSeverity(7)"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.sev), got, tt.want)
		}
	}
}
