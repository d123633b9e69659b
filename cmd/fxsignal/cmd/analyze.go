package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/config"
	"github.com/rustyeddy/fxsignal/pipeline"
	"github.com/rustyeddy/fxsignal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Decide on the latest bar of one or more series",
	Long: `Analyze loads each bar file as a series, computes indicators, and prints
the decision for the most recent bar together with a market assessment.
Files are analysed in parallel. The symbol is taken from the file name.

Examples:
  fxsignal analyze data/eurusd.csv data/gbpusd.csv
  fxsignal analyze --timeframes 4h,1d --require-macd data/eurusd_h1.csv
  fxsignal analyze --equity 10000 data/usdjpy.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFlags      decisionFlags
	analyzeTimeframes string
	analyzeWorkers    int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeTimeframes, "timeframes", "", "comma separated timeframes for a convergence verdict (e.g. 4h,1d)")
	analyzeCmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 0, "concurrent series (0 = config or one per CPU)")
	analyzeCmd.Flags().Float64("equity", 0, "size BUY/SELL signals for this account equity (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputs, err := loadInputs(args)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cmd, &analyzeFlags, analyzeTimeframes, analyzeWorkers, nil)
	if err != nil {
		return err
	}

	reports, err := a.Run(cmd.Context(), inputs)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return report.WriteAll(cmd.OutOrStdout(), reports)
}

// newAnalyzer builds a pipeline from the loaded config and the command's
// overrides. An empty tfs falls back to analysis.timeframes.
func newAnalyzer(cmd *cobra.Command, f *decisionFlags, tfs string, workers int, opts *pipeline.Options) (*pipeline.Analyzer, error) {
	names := cfg.Analysis.Timeframes
	if tfs != "" {
		names = config.SplitList(tfs)
	}
	frames, err := parseTimeframes(names)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = cfg.Analysis.Workers
	}

	var o pipeline.Options
	if opts != nil {
		o = *opts
	}
	o.Strategy, o.Config = f.resolve(cmd)
	o.Timeframes = frames
	o.Workers = workers
	o.Logger = slog.Default()

	acct := cfg.Risk
	if fl := cmd.Flags().Lookup("equity"); fl != nil && fl.Changed {
		if acct.Equity, err = cmd.Flags().GetFloat64("equity"); err != nil {
			return nil, err
		}
	}
	if acct.Equity > 0 {
		o.Account = &acct
	}
	return pipeline.New(o)
}
