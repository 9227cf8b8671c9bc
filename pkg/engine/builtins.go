package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultCylinderSegments is the side count used when cylinder is called
// without :segments.
const DefaultCylinderSegments = 16

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites brush script source before it reaches zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global registration and cannot collide with user variables.
//  2. kebab-case identifiers become snake_case (plane-at -> plane_at);
//     zygomys reads a hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals are left alone.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipQuoted returns the index just past the literal opened at b[start].
func skipQuoted(b []byte, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a cutting plane and the descriptor its cap receives.
type sexpPlane struct {
	cp brush.CutPlane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plane %v :desc %d)", p.cp.Plane, p.cp.DescriptionIndex)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a brush value. Builtins never mutate a wrapped mesh; every
// operation works on a clone.
type sexpMesh struct {
	m *brush.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	if s.m.IsEmpty() {
		return "(brush-mesh empty)"
	}
	return fmt.Sprintf("(brush-mesh %dv %dp)", s.m.VertexCount(), s.m.PolygonCount())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpBrushRef names a brush stored in the scene.
type sexpBrushRef struct {
	id   scene.BrushID
	name string
}

func (r *sexpBrushRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(brush %q)", r.name)
}
func (r *sexpBrushRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPlanes accepts a plane or a list of planes.
func toPlanes(s zygo.Sexp) ([]brush.CutPlane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return []brush.CutPlane{p.cp}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected plane or list of planes, got %T (%s)", s, s.SexpString(nil))
	}
	var planes []brush.CutPlane
	for _, item := range items {
		p, ok := item.(*sexpPlane)
		if !ok {
			return nil, fmt.Errorf("expected plane, got %T (%s)", item, item.SexpString(nil))
		}
		planes = append(planes, p.cp)
	}
	return planes, nil
}

// toMesh accepts a mesh value or a scene brush reference and returns the
// mesh in its local frame. The result must not be mutated.
func toMesh(sc *scene.Scene, s zygo.Sexp) (*brush.Mesh, error) {
	switch v := s.(type) {
	case *sexpMesh:
		return v.m, nil
	case *sexpBrushRef:
		b := sc.Get(v.id)
		if b == nil {
			return nil, fmt.Errorf("brush %q is not in the scene", v.name)
		}
		return b.Mesh, nil
	}
	return nil, fmt.Errorf("expected brush, got %T (%s)", s, s.SexpString(nil))
}

func toBrushRef(s zygo.Sexp) (*sexpBrushRef, error) {
	if r, ok := s.(*sexpBrushRef); ok {
		return r, nil
	}
	return nil, fmt.Errorf("expected brush reference, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a Lisp list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// cutMesh returns a clone of m cut by planes.
func cutMesh(m *brush.Mesh, planes []brush.CutPlane) (*brush.Mesh, error) {
	out := m.Clone()
	if len(planes) == 0 {
		return out, nil
	}
	if err := brush.Guard(func() { out.Cut(planes, len(planes)) }); err != nil {
		return nil, err
	}
	return out, nil
}

func number(v float64) zygo.Sexp {
	return &zygo.SexpFloat{Val: v}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the brush DSL into a zygomys environment. The
// builtins populate sc during evaluation.
//
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, sc *scene.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane (vec3 0 0 1) -10 :desc 7)   keeps normal·p + distance <= 0
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("plane requires a normal and a distance")
		}
		n, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
		}
		d, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: distance: %w", err)
		}
		return newPlaneSexp("plane", brush.NewPlane(n, d), pa)
	})

	// -----------------------------------------------------------------------
	// (plane-at (vec3 0 0 1) (vec3 0 0 5) :desc 7)   normal through a point
	// -----------------------------------------------------------------------
	env.AddFunction("plane_at", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("plane-at requires a normal and a point")
		}
		n, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-at: normal: %w", err)
		}
		p, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-at: point: %w", err)
		}
		return newPlaneSexp("plane-at", brush.PlaneFromPoint(n, p), pa)
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 4 2 1))  or  (box :min (vec3 ...) :max (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var bb sdf.Box3
		if v, ok := pa.kw["size"]; ok {
			size, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			bb.Max = size
		}
		if v, ok := pa.kw["min"]; ok {
			lo, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: min: %w", err)
			}
			bb.Min = lo
			bb.Max = bb.Max.Add(lo)
		}
		if v, ok := pa.kw["max"]; ok {
			hi, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: max: %w", err)
			}
			bb.Max = hi
		}
		m, err := brush.NewBox(bb)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 2 :segments 12)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var height, radius float64
		segments := DefaultCylinderSegments
		var err error
		if v, ok := pa.kw["height"]; ok {
			if height, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
		}
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			if segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
		}
		m, err := brush.NewCylinder(height, radius, segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (cut solid (plane ...) (plane ...) ...)   planes may also come as a list
	// -----------------------------------------------------------------------
	env.AddFunction("cut", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("cut requires a brush")
		}
		m, err := toMesh(sc, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut: %w", err)
		}
		var planes []brush.CutPlane
		for i, a := range args[1:] {
			ps, err := toPlanes(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cut: plane %d: %w", i+1, err)
			}
			planes = append(planes, ps...)
		}
		out, err := cutMesh(m, planes)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut: %w", err)
		}
		return &sexpMesh{m: out}, nil
	})

	// -----------------------------------------------------------------------
	// (intersect a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("intersect requires at least two brushes")
		}
		first, err := toMesh(sc, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		m := first.Clone()
		for i, a := range args[1:] {
			other, err := toMesh(sc, a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("intersect: brush %d: %w", i+2, err)
			}
			if err := brush.Guard(func() { m.Intersect(other) }); err != nil {
				return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
			}
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (translate solid (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a brush and an offset")
		}
		m, err := toMesh(sc, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		off, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		out := m.Clone()
		out.Translate(off)
		return &sexpMesh{m: out}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate solid (vec3 0 0 90))   Euler degrees, X then Y then Z
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a brush and Euler angles")
		}
		m, err := toMesh(sc, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		deg, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: angles: %w", err)
		}
		out := m.Clone()
		if !out.IsEmpty() {
			out.Transform((&scene.Brush{Rotation: deg}).Placement())
		}
		return &sexpMesh{m: out}, nil
	})

	// -----------------------------------------------------------------------
	// (defbrush "name" solid)
	// -----------------------------------------------------------------------
	env.AddFunction("defbrush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defbrush requires a name and a brush expression")
		}
		brushName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defbrush: name: %w", err)
		}
		m, err := toMesh(sc, args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defbrush: %w", err)
		}
		b, err := sc.Add(brushName, m.Clone())
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defbrush: %w", err)
		}
		return &sexpBrushRef{id: b.ID, name: b.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (brush "name")
	// -----------------------------------------------------------------------
	env.AddFunction("brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("brush requires a name argument")
		}
		brushName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush: name: %w", err)
		}
		b := sc.Lookup(brushName)
		if b == nil {
			return zygo.SexpNull, fmt.Errorf("brush: no brush named %q", brushName)
		}
		return &sexpBrushRef{id: b.ID, name: b.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (place (brush "wall") :at (vec3 0 0 10) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a brush reference as first argument")
		}
		ref, err := toBrushRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		b := sc.Get(ref.id)
		if b == nil {
			return zygo.SexpNull, fmt.Errorf("place: brush %q is not in the scene", ref.name)
		}
		if v, ok := pa.kw["at"]; ok {
			at, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			b.Translation = at
		}
		if v, ok := pa.kw["rotate"]; ok {
			rot, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			b.Rotation = rot
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// Queries: (volume s) (polygon-count s) (vertex-count s)
	//          (empty s) (contains s (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := queryMesh(sc, "volume", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if m.IsEmpty() {
			return number(0), nil
		}
		return number(m.Volume()), nil
	})

	env.AddFunction("polygon_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := queryMesh(sc, "polygon-count", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpInt{Val: int64(m.PolygonCount())}, nil
	})

	env.AddFunction("vertex_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := queryMesh(sc, "vertex-count", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpInt{Val: int64(m.VertexCount())}, nil
	})

	env.AddFunction("empty", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := queryMesh(sc, "empty", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpBool{Val: m.IsEmpty()}, nil
	})

	env.AddFunction("contains", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("contains requires a brush and a point")
		}
		m, err := toMesh(sc, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: %w", err)
		}
		p, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: point: %w", err)
		}
		return &zygo.SexpBool{Val: m.IsInsideOrOn(p)}, nil
	})
}

// newPlaneSexp applies the optional :desc keyword and rejects zero normals.
func newPlaneSexp(fn string, p brush.Plane, pa kwArgs) (zygo.Sexp, error) {
	if p.IsZero() || math.IsNaN(p.Distance) {
		return zygo.SexpNull, fmt.Errorf("%s: normal must not be zero", fn)
	}
	cp := brush.CutPlane{Plane: p}
	if v, ok := pa.kw["desc"]; ok {
		d, err := toInt(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: desc: %w", fn, err)
		}
		cp.DescriptionIndex = d
	}
	return &sexpPlane{cp: cp}, nil
}

func queryMesh(sc *scene.Scene, fn string, args []zygo.Sexp) (*brush.Mesh, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s requires exactly one brush", fn)
	}
	m, err := toMesh(sc, args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return m, nil
}
