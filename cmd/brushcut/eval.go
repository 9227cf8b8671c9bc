package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/chazu/brushcut/pkg/export"
	"github.com/spf13/cobra"
)

var evalOpts struct {
	kernel  string
	cells   int
	format  string
	stl     string
	threeMF string
	dxf     string
	meshes  string
}

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate a brush script and print or export the scene",
	Long: `Evaluate a brush script into a scene, print per-brush statistics and
optionally write the tessellated scene as STL, 3MF, DXF or mesh JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	f := evalCmd.Flags()
	f.StringVar(&evalOpts.kernel, "kernel", "brush", "tessellation kernel: brush or sdfx")
	f.IntVar(&evalOpts.cells, "cells", 200, "marching cubes cells along the longest axis (sdfx kernel)")
	f.StringVar(&evalOpts.format, "format", "text", "statistics format: text, json or yaml")
	f.StringVar(&evalOpts.stl, "stl", "", "write the scene to this STL file")
	f.StringVar(&evalOpts.threeMF, "3mf", "", "write the scene to this 3MF file")
	f.StringVar(&evalOpts.dxf, "dxf", "", "write brush edges to this DXF file")
	f.StringVar(&evalOpts.meshes, "meshes", "", "write tessellated meshes to this JSON file")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	k, err := kernelByName(evalOpts.kernel, evalOpts.cells)
	if err != nil {
		return err
	}

	result := NewAppWithKernel(k).Evaluate(string(source))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %s\n", args[0], e.Line, e.Message)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e.Message)
			}
		}
		return fmt.Errorf("%s: %d error(s)", args[0], len(result.Errors))
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Message)
	}
	stats := export.Stats(result.Scene, warnings)
	if err := export.WriteStats(cmd.OutOrStdout(), stats, export.Format(evalOpts.format)); err != nil {
		return err
	}

	tris := export.MeshTriangles(result.Parts)
	for _, path := range []string{evalOpts.stl, evalOpts.threeMF} {
		if path == "" {
			continue
		}
		if err := export.Solid(path, tris); err != nil {
			return err
		}
		log.Printf("wrote %d triangles to %s", len(tris), path)
	}
	if evalOpts.dxf != "" {
		if err := export.Wireframe(evalOpts.dxf, result.Scene); err != nil {
			return err
		}
		log.Printf("wrote wireframe to %s", evalOpts.dxf)
	}
	if evalOpts.meshes != "" {
		data, err := json.Marshal(result.Meshes)
		if err != nil {
			return err
		}
		if err := os.WriteFile(evalOpts.meshes, data, 0o644); err != nil {
			return err
		}
		log.Printf("wrote %d meshes to %s", len(result.Meshes), evalOpts.meshes)
	}
	return nil
}
