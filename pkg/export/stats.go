package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/brushcut/pkg/scene"
	"gopkg.in/yaml.v3"
)

// BrushStats summarizes one brush in world coordinates.
type BrushStats struct {
	Name      string     `json:"name" yaml:"name"`
	ID        string     `json:"id" yaml:"id"`
	Empty     bool       `json:"empty" yaml:"empty"`
	Vertices  int        `json:"vertices" yaml:"vertices"`
	HalfEdges int        `json:"half_edges" yaml:"half_edges"`
	Polygons  int        `json:"polygons" yaml:"polygons"`
	Volume    float64    `json:"volume" yaml:"volume"`
	Min       [3]float64 `json:"min" yaml:"min,flow"`
	Max       [3]float64 `json:"max" yaml:"max,flow"`
}

// SceneStats summarizes a scene.
type SceneStats struct {
	Brushes  []BrushStats `json:"brushes" yaml:"brushes"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Stats collects per-brush statistics. warnings are the scene's validation
// warnings, already computed by the caller; Stats does not validate.
func Stats(sc *scene.Scene, warnings []string) SceneStats {
	stats := SceneStats{Brushes: []BrushStats{}, Warnings: warnings}
	for _, b := range sc.All() {
		bs := BrushStats{Name: b.Name, ID: string(b.ID), Empty: b.Mesh.IsEmpty()}
		if !bs.Empty {
			w := b.World()
			bb := w.Bounds()
			bs.Vertices = w.VertexCount()
			bs.HalfEdges = w.HalfEdgeCount()
			bs.Polygons = w.PolygonCount()
			bs.Volume = w.Volume()
			bs.Min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
			bs.Max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
		}
		stats.Brushes = append(stats.Brushes, bs)
	}
	return stats
}

// Format selects how WriteStats renders statistics.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// WriteStats renders stats to w in the given format.
func WriteStats(w io.Writer, stats SceneStats, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, stats)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

func writeText(w io.Writer, stats SceneStats) error {
	for _, b := range stats.Brushes {
		if b.Empty {
			if _, err := fmt.Fprintf(w, "%s: empty\n", b.Name); err != nil {
				return err
			}
			continue
		}
		_, err := fmt.Fprintf(w, "%s: %d vertices, %d half-edges, %d polygons, volume %.6g, bounds %v..%v\n",
			b.Name, b.Vertices, b.HalfEdges, b.Polygons, b.Volume, b.Min, b.Max)
		if err != nil {
			return err
		}
	}
	for _, msg := range stats.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}
