package cmd

import (
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ingham-physics/auscat-util/internal/config"
	"github.com/ingham-physics/auscat-util/internal/metrics"
	"github.com/ingham-physics/auscat-util/internal/relational"
)

var (
	runSchedule    string
	runMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run [script-file]",
	Short: "Execute a SQL script against the configured database",
	Long: `Execute every statement of a SQL script file sequentially on a single
connection. Statements are separated by ";" and committed one at a time;
execution stops at the first failure, leaving earlier statements applied.

Examples:
  # Run a script once
  auscat run load_staging.sql --db-config db.yaml

  # Re-run it nightly at 03:00, exposing Prometheus metrics
  auscat run load_staging.sql --schedule "0 3 * * *" --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptPath := args[0]

		runner, err := loadRunner()
		if err != nil {
			return err
		}

		runOnce := func() (int, error) {
			executed, err := runner.RunScript(cmd.Context(), scriptPath)
			if err != nil {
				return executed, fmt.Errorf("script failed after %d statements: %w", executed, err)
			}
			Info("script executed",
				zap.String("script", scriptPath),
				zap.Int("statements", executed))
			return executed, nil
		}

		if runSchedule == "" {
			executed, err := runOnce()
			if err != nil {
				return err
			}
			NewOutputter(viper.GetString("output_format")).PrintSuccess(
				fmt.Sprintf("executed %d statements from %s", executed, scriptPath))
			return nil
		}

		if runMetricsAddr != "" {
			go func() {
				Info("serving metrics", zap.String("addr", runMetricsAddr))
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				if err := http.ListenAndServe(runMetricsAddr, mux); err != nil {
					Error("metrics server stopped", zap.Error(err))
				}
			}()
		}

		c := cron.New()
		if _, err := c.AddFunc(runSchedule, func() {
			if _, err := runOnce(); err != nil {
				Error("scheduled run failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", runSchedule, err)
		}

		Info("starting scheduler", zap.String("schedule", runSchedule))
		c.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runSchedule, "schedule", "",
		"cron expression; when set, re-run the script on this schedule")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "",
		"address to serve Prometheus metrics on while scheduled, e.g. :9090")
}

// loadRunner builds a script runner from the configured connection file.
func loadRunner() (*relational.Runner, error) {
	cfg, err := config.Load(viper.GetString("db_config"))
	if err != nil {
		return nil, err
	}
	return relational.NewRunner(cfg), nil
}
