package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leo-lang/avmc/internal/pipeline"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [package-dir]",
		Short: "Type-check a package without emitting bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			manifest, _, err := loadPackage(dir)
			if err != nil {
				return err
			}

			banner("→ checking %s", manifest.Program)
			src := loadSource(manifest.Program, cfg.buildTests)
			result := pipeline.Run(pipeline.Config{}, src)
			printDiagnostics(result.Diagnostics)
			if result.Diagnostics.HasFatal() || result.Diagnostics.HasErrors() {
				return fmt.Errorf("%s has errors", manifest.Program)
			}
			banner("%s no errors found", green("✓"))
			return nil
		},
	}
}
