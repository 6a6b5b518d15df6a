package cli

import (
	"encoding/json"
	"math/rand"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/castlemilk/savetrack/internal/export"
	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/rpc"
	"github.com/castlemilk/savetrack/internal/seed"
)

var (
	flagSeedDays int
	flagSeedRand int64
	flagAsOf     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with sample transactions, savings and goals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		source := flagSeedRand
		if source == 0 {
			source = time.Now().UnixNano()
		}
		data := seed.Generate(rand.New(rand.NewSource(source)), time.Now(), flagSeedDays)
		counts, err := seed.Load(cmd.Context(), a.store, data)
		if err != nil {
			return err
		}
		writeLine(cmd.OutOrStdout(), "Seeded %s", counts)
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict <goal-id>",
	Short: "Print the prediction for a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.svc.PredictGoal(cmd.Context(), connect.NewRequest(&rpc.PredictGoalRequest{
			GoalID: args[0],
			AsOf:   flagAsOf,
		}))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Msg.Prediction)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Recompute every goal's risk level once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.svc.SweepGoalRisk(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		writeLine(out, "Goals: %d (skipped %d)", res.Goals, res.Skipped)
		for _, level := range []forecast.RiskLevel{forecast.RiskLow, forecast.RiskMedium, forecast.RiskHigh} {
			writeLine(out, "  %-6s %d", level, res.ByRisk[level])
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a prediction report to the export bucket, or stdout if none is configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), appOptions{
			fallbackSink: export.NewStreamSink(cmd.OutOrStdout(), "stdout"),
		})
		if err != nil {
			return err
		}
		defer a.Close()

		location, count, err := a.svc.Export(cmd.Context())
		if err != nil {
			return err
		}
		if location != "stdout" {
			writeLine(cmd.OutOrStdout(), "Exported %d goals to %s", count, location)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&flagSeedDays, "days", seed.DefaultDays, "Days of history to generate")
	seedCmd.Flags().Int64Var(&flagSeedRand, "rand-seed", 0, "Random seed (0 uses the clock)")
	predictCmd.Flags().StringVar(&flagAsOf, "as-of", "", "Predict as of this date (YYYY-MM-DD)")

	rootCmd.AddCommand(seedCmd, predictCmd, sweepCmd, exportCmd)
}
