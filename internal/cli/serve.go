package cli

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/castlemilk/savetrack/internal/jobs"
	"github.com/castlemilk/savetrack/internal/seed"
	"github.com/castlemilk/savetrack/internal/server"
)

const (
	riskSweepJob  = "risk-sweep"
	jobTimeout    = 5 * time.Minute
	jobStopBudget = 30 * time.Second
)

var flagSeedDemo bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagSeedDemo, "seed-demo", false, "Load 90 days of sample data before serving")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if flagSeedDemo {
		data := seed.Generate(rand.New(rand.NewSource(time.Now().UnixNano())), time.Now(), seed.DefaultDays)
		counts, err := seed.Load(ctx, a.store, data)
		if err != nil {
			return err
		}
		a.log.WithField("seeded", counts.String()).Info("demo data loaded")
	}

	if spec := a.cfg.Jobs.RiskSweep; spec != "" {
		scheduler := jobs.New(a.log, jobTimeout)
		if err := scheduler.Add(riskSweepJob, spec, func(ctx context.Context) error {
			_, err := a.svc.SweepGoalRisk(ctx)
			return err
		}); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), jobStopBudget)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				a.log.WithError(err).Warn("scheduler did not stop cleanly")
			}
		}()
	}

	return server.New(a.svc, a.cfg.Server, a.log, a.metrics).Run(ctx)
}
