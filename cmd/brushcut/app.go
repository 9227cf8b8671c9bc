package main

import (
	"fmt"
	"log"

	"github.com/chazu/brushcut/pkg/engine"
	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/chazu/brushcut/pkg/kernel/brushkernel"
	"github.com/chazu/brushcut/pkg/kernel/sdfx"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/chazu/brushcut/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to brushes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the evaluate and tessellate pipeline behind the CLI commands.
type App struct {
	engine *engine.Engine
	kernel kernel.BrushImporter
}

// MeshData is the JSON-serializable mesh format written by eval --meshes.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one pipeline run.
type EvalResult struct {
	Scene    *scene.Scene    `json:"-"`
	Parts    []*kernel.Mesh  `json:"-"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the exact brush kernel.
func NewApp() *App {
	return NewAppWithKernel(brushkernel.New())
}

// NewAppWithKernel creates a new App that tessellates with k.
func NewAppWithKernel(k kernel.BrushImporter) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
	}
}

// kernelByName returns the kernel selected by --kernel.
func kernelByName(name string, cells int) (kernel.BrushImporter, error) {
	switch name {
	case "brush", "":
		return brushkernel.New(), nil
	case "sdfx":
		return sdfx.NewWithCells(cells), nil
	default:
		return nil, fmt.Errorf("unknown kernel %q (want brush or sdfx)", name)
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a validated scene.
	res, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors and warnings.
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	result.Scene = res.Scene

	// Step 3: Tessellate the scene into triangle meshes.
	meshes, err := tessellate.Tessellate(res.Scene, a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 4: Convert kernel meshes to MeshData.
	result.Parts = meshes
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}
