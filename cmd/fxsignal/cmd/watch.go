package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/backtest"
	"github.com/rustyeddy/fxsignal/journal"
	"github.com/rustyeddy/fxsignal/metrics"
	"github.com/rustyeddy/fxsignal/pipeline"
	"github.com/rustyeddy/fxsignal/report"
	"github.com/rustyeddy/fxsignal/scheduler"
	"github.com/rustyeddy/fxsignal/strategies"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE...",
	Short: "Re-analyse bar files on a schedule and serve metrics",
	Long: `Watch reloads and analyses FILE... on a cron schedule (seconds field
first), printing a report per file and exposing Prometheus metrics on
/metrics. Bar files are expected to be appended to by another process.

Examples:
  fxsignal watch data/eurusd.csv data/gbpusd.csv
  fxsignal watch --schedule "0 0 * * * *" --metrics-addr :9100 data/*.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchFlags      decisionFlags
	watchSchedule   string
	watchAddr       string
	watchTimeframes string
	watchBacktest   bool
	watchOnStart    bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags.register(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron spec with seconds (default from config)")
	watchCmd.Flags().StringVar(&watchAddr, "metrics-addr", "", "address for /metrics, empty string disables (default from config)")
	watchCmd.Flags().StringVar(&watchTimeframes, "timeframes", "", "comma separated timeframes for a convergence verdict")
	watchCmd.Flags().BoolVar(&watchBacktest, "backtest", true, "also backtest each file and export its total return")
	watchCmd.Flags().BoolVar(&watchOnStart, "run-on-start", false, "analyse once immediately")
	watchCmd.Flags().Float64("equity", 0, "size BUY/SELL signals for this account equity (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spec := cfg.Watch.Schedule
	if watchSchedule != "" {
		spec = watchSchedule
	}
	addr := cfg.Watch.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		addr = watchAddr
	}
	onStart := cfg.Watch.RunOnStart || watchOnStart

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	sigs := journal.NewSignalLog(cfg.Analysis.SignalLogSize)
	a, err := newAnalyzer(cmd, &watchFlags, watchTimeframes, 0, &pipeline.Options{Metrics: m, SignalLog: sigs})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	job := func(ctx context.Context) error {
		inputs, err := loadInputs(args)
		if err != nil {
			m.ObserveError("load")
			return err
		}
		reports, err := a.Run(ctx, inputs)
		if err != nil {
			return err
		}
		if err := report.WriteAll(out, reports); err != nil {
			return err
		}
		if watchBacktest {
			return backtestAll(ctx, a.Options(), inputs, m)
		}
		return nil
	}

	s := scheduler.New(ctx, scheduler.Options{Logger: slog.Default()})
	if err := s.Add("analyze", spec, func(ctx context.Context) error {
		err := job(ctx)
		m.ObserveJob("analyze", err)
		return err
	}); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	if addr != "" {
		srv := metrics.Serve(addr, reg)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		slog.Info("serving metrics", "addr", addr)
	}

	if onStart {
		if err := s.RunNow("analyze"); err != nil {
			slog.Error("initial analysis failed", "err", err)
		}
	}

	s.Start()
	for _, e := range s.Entries() {
		slog.Info("watching", "files", len(args), "job", e.Name, "spec", e.Spec, "next", e.Next)
	}

	<-ctx.Done()
	s.Stop()
	runs, failures := s.Runs("analyze")
	fmt.Fprintf(out, "✓ Stopped after %d runs (%d failed), %d signals logged\n", runs, failures, sigs.Len())
	return nil
}

// backtestAll simulates each input with the analyzer's strategy and
// records the total return.
func backtestAll(ctx context.Context, o pipeline.Options, inputs []pipeline.Input, m *metrics.Metrics) error {
	for _, in := range inputs {
		strat, err := strategies.New(o.Strategy, o.Config)
		if err != nil {
			return err
		}
		r := backtest.Runner{
			Series:   in.Series,
			Strategy: strat,
			Options:  backtest.Options{CloseAtEnd: cfg.Backtest.CloseAtEnd},
		}
		res, _, err := r.Run(ctx)
		if err != nil {
			m.ObserveError("backtest")
			return fmt.Errorf("%s: %w", in.Symbol, err)
		}
		m.ObserveBacktest(in.Symbol, strat.Name(), res.TotalReturn)
	}
	return nil
}
