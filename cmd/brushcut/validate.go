package main

import (
	"fmt"
	"os"

	"github.com/chazu/brushcut/pkg/engine"
	"github.com/chazu/brushcut/pkg/scene"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Evaluate a brush script and check every brush mesh",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	sc, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e)
		}
		return fmt.Errorf("%s: %d error(s)", args[0], len(evalErrs))
	}
	return reportValidation(cmd, sc)
}

// reportValidation prints every finding and fails when any blocks output.
func reportValidation(cmd *cobra.Command, sc *scene.Scene) error {
	res := scene.ValidateAll(sc)
	out := cmd.OutOrStdout()
	for _, e := range res.Errors {
		fmt.Fprintln(out, e.Error())
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(out, scene.ValidationError{BrushID: w.BrushID, Message: w.Message, Severity: scene.SeverityWarning}.Error())
	}
	if !res.OK() {
		return fmt.Errorf("%d invalid brush mesh finding(s)", len(res.Errors))
	}
	fmt.Fprintf(out, "ok: %d brushes\n", sc.BrushCount())
	return nil
}
