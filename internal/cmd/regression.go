package cmd

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingsejong-lang/kingsejong-lang/internal/config"
	"github.com/kingsejong-lang/kingsejong-lang/internal/gate"
	"github.com/kingsejong-lang/kingsejong-lang/internal/harness"
)

func newRegressionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regression",
		Short: "Run the CI performance regression gate",
		Long: `Check benchmark runtimes against fixed regression thresholds.

The threshold table and repetition count are constants so results stay
comparable across CI runs; there are no tuning flags. A benchmark regresses
when its mean runtime exceeds its threshold (a mean exactly at the
threshold passes). Missing payloads with a registered fixture are
synthesized; others are skipped with a warning.

Writes regression_results.json next to the payloads and exits non-zero
when any benchmark regresses or fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Runs = gate.DefaultRuns
			cfg.Thresholds = gate.DefaultThresholds()
			cfg.JITStats = false
			cfg.Output = filepath.Join(cfg.Dir, "regression_results.json")

			ctrl := harness.New(cfg, cmd.OutOrStdout())
			_, passed, err := ctrl.RunRegression(cmd.Context())
			if err != nil {
				return err
			}
			if !passed {
				return errors.New("performance regression detected")
			}
			return nil
		},
	}
}
