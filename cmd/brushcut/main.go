// Command brushcut evaluates brush scripts and exports the resulting convex
// solids.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brushcut",
	Short: "Build convex brushes by cutting them with planes",
	Long: `brushcut evaluates Lisp brush scripts into scenes of convex solids.
Each brush is a closed half-edge mesh that is cut by planes, intersected
with other brushes and exported as STL, 3MF or a DXF wireframe.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
