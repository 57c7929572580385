package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingsejong-lang/kingsejong-lang/internal/config"
	"github.com/kingsejong-lang/kingsejong-lang/internal/harness"
)

func newRunCmd() *cobra.Command {
	var (
		interpreter string
		runs        int
		output      string
		dir         string
		interpArgs  string
		jitStats    bool
		timeout     time.Duration
		configPath  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark suite",
		Long: `Run every benchmark payload in the benchmark directory against the
interpreter and write a timing report.

Each benchmark executes --runs times and is summarized by mean, min, max,
and standard deviation. A failed repetition discards the whole benchmark.
JIT diagnostics are scraped from the first successful repetition unless
--jit-stats=false.

Exits non-zero when any benchmark fails.

Examples:
  # Benchmark a local build
  ksjbench run --interpreter build/bin/kingsejong

  # Quick single-pass run without JIT diagnostics
  ksjbench run --runs 1 --jit-stats=false

  # Pass extra interpreter flags
  ksjbench run --interp-args "--opt-level 2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("interpreter") {
				cfg.Interpreter = interpreter
			}
			if flags.Changed("runs") {
				cfg.Runs = runs
			}
			if flags.Changed("output") {
				cfg.Output = output
			}
			if flags.Changed("dir") {
				cfg.Dir = dir
			}
			if flags.Changed("jit-stats") {
				cfg.JITStats = jitStats
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if flags.Changed("interp-args") {
				split, err := config.SplitArgs(interpArgs)
				if err != nil {
					return fmt.Errorf("parsing --interp-args: %w", err)
				}
				cfg.InterpArgs = split
			}
			if cfg.Runs < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", cfg.Runs)
			}

			ctrl := harness.New(cfg, cmd.OutOrStdout())
			rep, err := ctrl.Run(cmd.Context())
			if err != nil {
				return err
			}
			if t := rep.Totals(); t.Succeeded < t.Attempted {
				return fmt.Errorf("%d of %d benchmarks failed", t.Attempted-t.Succeeded, t.Attempted)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&interpreter, "interpreter", config.DefaultInterpreter, "Path to the interpreter executable")
	cmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "Repetitions per benchmark")
	cmd.Flags().StringVar(&output, "output", config.DefaultOutput, "Results file path")
	cmd.Flags().StringVar(&dir, "dir", config.DefaultDir, "Benchmark payload directory")
	cmd.Flags().StringVar(&interpArgs, "interp-args", "", "Extra interpreter arguments (single shell-quoted string)")
	cmd.Flags().BoolVar(&jitStats, "jit-stats", true, "Collect JIT diagnostics via the interpreter's diagnostic flag")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-invocation deadline")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultFile+" if present)")

	return cmd
}
