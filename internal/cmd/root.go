package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ksjbench",
		Short: "Benchmark harness for the KingSejong interpreter",
		Long: "ksjbench runs the KingSejong benchmark corpus against an interpreter build,\n" +
			"collects timing and JIT diagnostics, and gates performance regressions in CI.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newRegressionCmd(),
		newMemoryCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command and maps the outcome to a process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
