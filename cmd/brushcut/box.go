package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/brushcut/pkg/export"
	"github.com/chazu/brushcut/pkg/kernel"
	"github.com/spf13/cobra"
)

var boxOpts struct {
	size   []float64
	clips  []string
	kernel string
	cells  int
	out    string
}

var boxCmd = &cobra.Command{
	Use:   "box",
	Short: "Clip a box by half-spaces and report the result",
	Long: `Build a box with its minimum corner at the origin, clip it by each
--clip half-space "nx,ny,nz,d" (keeping nx*x + ny*y + nz*z + d <= 0) and
print the resulting triangle count and bounds.`,
	Example: `  brushcut box --size 10,10,10 --clip 1,1,0,-10 --out half.stl`,
	Args:    cobra.NoArgs,
	RunE:    runBox,
}

func init() {
	f := boxCmd.Flags()
	f.Float64SliceVar(&boxOpts.size, "size", []float64{1, 1, 1}, "box size x,y,z")
	f.StringArrayVar(&boxOpts.clips, "clip", nil, "half-space nx,ny,nz,d (repeatable)")
	f.StringVar(&boxOpts.kernel, "kernel", "brush", "kernel: brush or sdfx")
	f.IntVar(&boxOpts.cells, "cells", 200, "marching cubes cells along the longest axis (sdfx kernel)")
	f.StringVar(&boxOpts.out, "out", "", "write the result to this STL or 3MF file")
	rootCmd.AddCommand(boxCmd)
}

// parseHalfspace parses "nx,ny,nz,d".
func parseHalfspace(s string) (kernel.Halfspace, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return kernel.Halfspace{}, fmt.Errorf("half-space %q: want nx,ny,nz,d", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return kernel.Halfspace{}, fmt.Errorf("half-space %q: %w", s, err)
		}
		v[i] = f
	}
	return kernel.Halfspace{Normal: [3]float64{v[0], v[1], v[2]}, Distance: v[3]}, nil
}

// clipBox builds the clipped box with k and meshes it.
func clipBox(k kernel.Kernel, size []float64, clips []string) (*kernel.Mesh, error) {
	if len(size) != 3 {
		return nil, fmt.Errorf("--size wants 3 values, got %d", len(size))
	}
	for _, s := range size {
		if s <= 0 {
			return nil, fmt.Errorf("--size %v: every dimension must be positive", size)
		}
	}
	hs := make([]kernel.Halfspace, 0, len(clips))
	for _, c := range clips {
		h, err := parseHalfspace(c)
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	solid := k.Clip(k.Box(size[0], size[1], size[2]), hs...)
	return k.ToMesh(solid)
}

func runBox(cmd *cobra.Command, args []string) error {
	k, err := kernelByName(boxOpts.kernel, boxOpts.cells)
	if err != nil {
		return err
	}
	mesh, err := clipBox(k, boxOpts.size, boxOpts.clips)
	if err != nil {
		return err
	}
	if mesh.IsEmpty() {
		fmt.Fprintln(cmd.OutOrStdout(), "empty")
		return nil
	}
	min, max := mesh.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "%d triangles, bounds %v..%v\n", mesh.TriangleCount(), min, max)
	if boxOpts.out != "" {
		return export.Solid(boxOpts.out, export.MeshTriangles([]*kernel.Mesh{mesh}))
	}
	return nil
}
