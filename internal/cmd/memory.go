package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingsejong-lang/kingsejong-lang/internal/config"
	"github.com/kingsejong-lang/kingsejong-lang/internal/harness"
)

func newMemoryCmd() *cobra.Command {
	var (
		interpreter string
		dir         string
	)

	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Measure peak interpreter memory per benchmark",
		Long: `Profile peak resident memory for the allocation-heavy benchmarks by
running the interpreter under /usr/bin/time and parsing the resident set
size it reports on stderr.

Profiler output with no recognizable memory line is reported as
"unavailable" without failing the run; only invocation failures exit
non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			flags := cmd.Flags()
			if flags.Changed("interpreter") {
				cfg.Interpreter = interpreter
			}
			if flags.Changed("dir") {
				cfg.Dir = dir
			}

			ctrl := harness.New(cfg, cmd.OutOrStdout())
			results, err := ctrl.RunMemory(cmd.Context())
			if err != nil {
				return err
			}
			for _, res := range results {
				if res.Err != "" {
					return fmt.Errorf("memory profiling failed for %s", res.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&interpreter, "interpreter", config.DefaultInterpreter, "Path to the interpreter executable")
	cmd.Flags().StringVar(&dir, "dir", config.DefaultDir, "Benchmark payload directory")

	return cmd
}
