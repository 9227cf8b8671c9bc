package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/brushcut/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box :size v)`,
			expect: `(box "__kw_size" v)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 4 :radius 2)`,
			expect: `(cylinder "__kw_height" 4 "__kw_radius" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"say \"a-b\" :x" :y`,
			expect: `"say \"a-b\" :x" "__kw_y"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw a-b`",
			expect: "`raw :kw a-b`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(plane-at n p)`,
			expect: `(plane_at n p)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 0 -1 0)`,
			expect: `(vec3 0 -1 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:head-dia`,
			expect: `"__kw_head-dia"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// mustEval evaluates source and fails the test on any error.
func mustEval(t *testing.T, source string) *scene.Scene {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if sc == nil {
		t.Fatal("expected non-nil scene")
	}
	return sc
}

// evalFails evaluates source and returns the eval error messages.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if sc != nil {
		t.Fatal("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	var msgs []string
	for _, e := range evalErrs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "\n")
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func TestDefbrushBox(t *testing.T) {
	sc := mustEval(t, `(defbrush "block" (box :size (vec3 2 3 4)))`)
	if sc.BrushCount() != 1 {
		t.Fatalf("expected 1 brush, got %d", sc.BrushCount())
	}
	b := sc.Lookup("block")
	if b == nil {
		t.Fatal("expected brush named 'block'")
	}
	if b.ID != scene.NewBrushID("block") {
		t.Errorf("ID = %s, want the name-derived ID", b.ID.Short())
	}
	if !near(b.Mesh.Volume(), 24) {
		t.Errorf("volume = %f, want 24", b.Mesh.Volume())
	}
	bb := b.Mesh.Bounds()
	if bb.Min != (v3.Vec{}) || bb.Max != (v3.Vec{X: 2, Y: 3, Z: 4}) {
		t.Errorf("bounds = %v..%v", bb.Min, bb.Max)
	}
}

func TestBoxMinMax(t *testing.T) {
	sc := mustEval(t, `
(defbrush "a" (box :min (vec3 -1 -1 -1) :max (vec3 1 1 1)))
(defbrush "b" (box :min (vec3 5 0 0) :size (vec3 1 2 3)))
`)
	if bb := sc.MustLookup("a").Mesh.Bounds(); bb.Min != (v3.Vec{X: -1, Y: -1, Z: -1}) {
		t.Errorf("a min = %v", bb.Min)
	}
	if bb := sc.MustLookup("b").Mesh.Bounds(); bb.Max != (v3.Vec{X: 6, Y: 2, Z: 3}) {
		t.Errorf("b max = %v", bb.Max)
	}
}

func TestCutBisect(t *testing.T) {
	sc := mustEval(t, `
; keep y <= 0
(def slab (box :min (vec3 0 -0.5 0) :max (vec3 1 0.5 1)))
(defbrush "half" (cut slab (plane (vec3 0 1 0) 0 :desc 42)))
`)
	m := sc.MustLookup("half").Mesh
	if m.PolygonCount() != 6 || m.VertexCount() != 8 {
		t.Errorf("counts = %dv %dp, want 8v 6p", m.VertexCount(), m.PolygonCount())
	}
	if !near(m.Volume(), 0.5) {
		t.Errorf("volume = %f, want 0.5", m.Volume())
	}
	found := false
	for _, p := range m.Polygons {
		if p.DescriptionIndex == 42 {
			found = true
		}
	}
	if !found {
		t.Error("cap polygon should carry :desc 42")
	}
}

func TestCutPlaneList(t *testing.T) {
	sc := mustEval(t, `
(def cube (box :size (vec3 1 1 1)))
(def corners (list (plane-at (vec3 1 1 1) (vec3 0.75 1 1))
                   (plane-at (vec3 -1 -1 1) (vec3 0 0.25 1))))
(defbrush "chamfered" (cut cube corners))
`)
	m := sc.MustLookup("chamfered").Mesh
	if m.PolygonCount() != 8 {
		t.Errorf("polygon count = %d, want 8", m.PolygonCount())
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("invalid mesh: %v", errs)
	}
}

func TestIntersectBuiltin(t *testing.T) {
	sc := mustEval(t, `
(defbrush "lens" (intersect (box :size (vec3 2 2 2))
                            (box :min (vec3 1 1 1) :size (vec3 2 2 2))))
`)
	if v := sc.MustLookup("lens").Mesh.Volume(); !near(v, 1) {
		t.Errorf("volume = %f, want 1", v)
	}
}

func TestTranslateRotate(t *testing.T) {
	sc := mustEval(t, `
(def bar (box :size (vec3 4 1 1)))
(defbrush "moved" (translate bar (vec3 10 0 0)))
(defbrush "turned" (rotate bar (vec3 0 0 90)))
`)
	if bb := sc.MustLookup("moved").Mesh.Bounds(); bb.Min.X != 10 || bb.Max.X != 14 {
		t.Errorf("moved x extent = %f..%f", bb.Min.X, bb.Max.X)
	}
	bb := sc.MustLookup("turned").Mesh.Bounds()
	if !near(bb.Max.X-bb.Min.X, 1) || !near(bb.Max.Y-bb.Min.Y, 4) {
		t.Errorf("turned extents = %f x %f, want 1 x 4", bb.Max.X-bb.Min.X, bb.Max.Y-bb.Min.Y)
	}
}

func TestCylinderBuiltin(t *testing.T) {
	sc := mustEval(t, `
(defbrush "post" (cylinder :height 10 :radius 1))
(defbrush "hex" (cylinder :height 2 :radius 1 :segments 6))
`)
	if n := sc.MustLookup("post").Mesh.PolygonCount(); n != DefaultCylinderSegments+2 {
		t.Errorf("post polygons = %d, want %d", n, DefaultCylinderSegments+2)
	}
	if n := sc.MustLookup("hex").Mesh.PolygonCount(); n != 8 {
		t.Errorf("hex polygons = %d, want 8", n)
	}
}

func TestPlaceBrush(t *testing.T) {
	sc := mustEval(t, `
(defbrush "wall" (box :size (vec3 4 0.5 3)))
(place (brush "wall") :at (vec3 0 10 0) :rotate (vec3 0 0 90))
`)
	b := sc.MustLookup("wall")
	if b.Translation != (v3.Vec{Y: 10}) {
		t.Errorf("translation = %v", b.Translation)
	}
	if b.Rotation != (v3.Vec{Z: 90}) {
		t.Errorf("rotation = %v", b.Rotation)
	}
	// The local mesh is not moved by placement.
	if bb := b.Mesh.Bounds(); bb.Min != (v3.Vec{}) {
		t.Errorf("local mesh min = %v", bb.Min)
	}
}

func TestBrushRefAsInput(t *testing.T) {
	sc := mustEval(t, `
(defbrush "base" (box :size (vec3 2 2 2)))
(defbrush "top-half" (cut (brush "base") (plane (vec3 0 0 -1) 1)))
`)
	if v := sc.MustLookup("top-half").Mesh.Volume(); !near(v, 4) {
		t.Errorf("volume = %f, want 4", v)
	}
	if v := sc.MustLookup("base").Mesh.Volume(); !near(v, 8) {
		t.Errorf("cutting a reference changed the stored brush: volume %f", v)
	}
}

func TestQueries(t *testing.T) {
	sc := mustEval(t, `
(def b (box :size (vec3 2 3 4)))
(def gone (cut b (plane (vec3 1 0 0) 10)))
(if (> (volume b) 20) (defbrush "big" b) (defbrush "small" b))
(if (contains b (vec3 1 1 1)) (defbrush "hit" b) (defbrush "miss" b))
(if (empty gone) (defbrush "was-empty" b) (defbrush "not-empty" b))
(if (== (polygon-count b) 6) (defbrush "six" b) (defbrush "other" b))
(if (== (vertex-count b) 8) (defbrush "eight" b) (defbrush "odd" b))
`)
	for _, want := range []string{"big", "hit", "was-empty", "six", "eight"} {
		if sc.Lookup(want) == nil {
			t.Errorf("expected brush %q, got %v", want, sc.Names())
		}
	}
	if sc.BrushCount() != 5 {
		t.Errorf("brush count = %d, want 5", sc.BrushCount())
	}
}

func TestEliminatedBrushIsKept(t *testing.T) {
	sc := mustEval(t, `(defbrush "nothing" (cut (box :size (vec3 1 1 1)) (plane (vec3 0 0 1) 5)))`)
	if !sc.MustLookup("nothing").Mesh.IsEmpty() {
		t.Error("expected an empty brush")
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing brush", `(brush "missing")`, "no brush named"},
		{"duplicate name", `(defbrush "a" (box :size (vec3 1 1 1))) (defbrush "a" (box :size (vec3 1 1 1)))`, "duplicate"},
		{"zero normal", `(plane (vec3 0 0 0) 1)`, "must not be zero"},
		{"flat box", `(box :size (vec3 1 0 1))`, "box"},
		{"bad vec3", `(vec3 1 2)`, "exactly 3"},
		{"bad cut input", `(cut 5 (plane (vec3 1 0 0) 0))`, "expected brush"},
		{"bad plane", `(cut (box :size (vec3 1 1 1)) 7)`, "plane"},
		{"few segments", `(cylinder :height 1 :radius 1 :segments 2)`, "segments"},
		{"place a mesh", `(place (box :size (vec3 1 1 1)) :at (vec3 1 1 1))`, "brush reference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error %q does not mention %q", msg, tt.want)
			}
		})
	}
}

func TestVariableReference(t *testing.T) {
	sc := mustEval(t, `
(def w 3)
(defbrush "side" (box :size (vec3 w 1 1)))
`)
	if v := sc.MustLookup("side").Mesh.Volume(); !near(v, 3) {
		t.Errorf("volume = %f, want 3 (from variable)", v)
	}
}

func TestSceneOrder(t *testing.T) {
	sc := mustEval(t, `
(defbrush "c" (box :size (vec3 1 1 1)))
(defbrush "a" (box :size (vec3 1 1 1)))
(defbrush "b" (box :size (vec3 1 1 1)))
`)
	if got := strings.Join(sc.Names(), ","); got != "c,a,b" {
		t.Errorf("names = %s, want c,a,b", got)
	}
}
