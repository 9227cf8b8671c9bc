// Package scene holds the named brushes a script produces. A Scene is
// built fresh by every evaluation and only read afterwards.
package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/brushcut/pkg/brush"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// ErrDuplicateName is returned when a brush name is already taken.
var ErrDuplicateName = errors.New("duplicate brush name")

// brushNamespace seeds the content-addressed brush IDs.
var brushNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/brushcut/brush"))

// BrushID is a content-addressed identifier derived from a brush name.
type BrushID string

// NewBrushID returns the ID for a brush name. The same name always gives
// the same ID.
func NewBrushID(name string) BrushID {
	return BrushID(uuid.NewSHA1(brushNamespace, []byte(name)).String())
}

// Short returns the first 8 characters of the ID.
func (id BrushID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsZero reports whether the ID is unset.
func (id BrushID) IsZero() bool {
	return id == ""
}

// Brush is a named convex solid placed in the scene. Mesh is in local
// coordinates; Rotation (Euler degrees, X then Y then Z) and then
// Translation place it in the world.
type Brush struct {
	ID          BrushID     `json:"id"`
	Name        string      `json:"name"`
	Mesh        *brush.Mesh `json:"mesh"`
	Translation v3.Vec      `json:"translation"`
	Rotation    v3.Vec      `json:"rotation"`
}

// IsPlaced reports whether the brush has a non-identity placement.
func (b *Brush) IsPlaced() bool {
	return b.Translation != (v3.Vec{}) || b.Rotation != (v3.Vec{})
}

// Placement returns the transform taking local coordinates to the world.
func (b *Brush) Placement() sdf.M44 {
	r := b.Rotation
	return sdf.Translate3d(b.Translation).Mul(brush.EulerRotation(r.X, r.Y, r.Z))
}

// World returns a copy of the mesh in world coordinates.
func (b *Brush) World() *brush.Mesh {
	m := b.Mesh.Clone()
	if b.IsPlaced() && !m.IsEmpty() {
		m.Transform(b.Placement())
	}
	return m
}

// Scene is an ordered collection of named brushes.
type Scene struct {
	Brushes   map[BrushID]*Brush `json:"brushes"`
	Order     []BrushID          `json:"order"`
	NameIndex map[string]BrushID `json:"name_index"`
	Version   uint64             `json:"version"`
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		Brushes:   make(map[BrushID]*Brush),
		NameIndex: make(map[string]BrushID),
	}
}

// Add stores m under name and returns the new brush.
func (s *Scene) Add(name string, m *brush.Mesh) (*Brush, error) {
	if name == "" {
		return nil, fmt.Errorf("scene: brush name must not be empty")
	}
	if _, ok := s.NameIndex[name]; ok {
		return nil, fmt.Errorf("scene: %q: %w", name, ErrDuplicateName)
	}
	b := &Brush{ID: NewBrushID(name), Name: name, Mesh: m}
	s.Brushes[b.ID] = b
	s.NameIndex[name] = b.ID
	s.Order = append(s.Order, b.ID)
	return b, nil
}

// Lookup returns the brush with the given name, or nil.
func (s *Scene) Lookup(name string) *Brush {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Brushes[id]
}

// MustLookup returns the brush with the given name, or panics.
func (s *Scene) MustLookup(name string) *Brush {
	b := s.Lookup(name)
	if b == nil {
		panic(fmt.Sprintf("scene: no brush named %q", name))
	}
	return b
}

// Get returns the brush with the given ID, or nil.
func (s *Scene) Get(id BrushID) *Brush {
	return s.Brushes[id]
}

// All returns the brushes in the order they were added.
func (s *Scene) All() []*Brush {
	out := make([]*Brush, 0, len(s.Order))
	for _, id := range s.Order {
		if b := s.Brushes[id]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Names returns the brush names in the order they were added.
func (s *Scene) Names() []string {
	names := make([]string, 0, len(s.Order))
	for _, b := range s.All() {
		names = append(names, b.Name)
	}
	return names
}

// BrushCount returns the number of brushes.
func (s *Scene) BrushCount() int {
	return len(s.Brushes)
}
