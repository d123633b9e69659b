package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/backtest"
	"github.com/rustyeddy/fxsignal/journal"
	"github.com/rustyeddy/fxsignal/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest FILE",
	Short: "Simulate a strategy over a bar series",
	Long: `Backtest feeds every bar of FILE to the selected strategy and simulates
its signals with a single long position: BUY opens, SELL closes.

A position still open after the last bar is reported as unrealised unless
--close-end is given. With --journal the run and its trades are stored.

Examples:
  fxsignal backtest data/eurusd.csv
  fxsignal backtest --strategy ema-cross-adx --close-end --journal sqlite data/eurusd.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

var (
	btFlags    decisionFlags
	btCloseEnd bool
	btJournal  string
	btDBPath   string
	btTrades   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	btFlags.register(backtestCmd)
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", false, "close an open position at the last bar")
	backtestCmd.Flags().StringVarP(&btJournal, "journal", "j", "", "journal type: sqlite, csv or none (default from config)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
	backtestCmd.Flags().BoolVar(&btTrades, "trades", false, "print every completed trade")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	inputs, err := loadInputs(args)
	if err != nil {
		return err
	}
	in := inputs[0]

	name, sc := btFlags.resolve(cmd)
	strat, err := strategies.New(name, sc)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	closeEnd := cfg.Backtest.CloseAtEnd
	if cmd.Flags().Changed("close-end") {
		closeEnd = btCloseEnd
	}

	r := backtest.Runner{
		Series:   in.Series,
		Strategy: strat,
		Options:  backtest.Options{CloseAtEnd: closeEnd},
	}
	res, _, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	backtest.PrintResult(out, fmt.Sprintf("%s %s", in.Symbol, strat.Name()), res)
	if btTrades {
		fmt.Fprintln(out)
		backtest.PrintTrades(out, res.Trades)
	}

	meta := journal.RunMeta{
		Instrument: in.Symbol,
		Timeframe:  timeframeOf(in.Series),
		Dataset:    filepath.Base(args[0]),
		Strategy:   strat.Name(),
	}
	runID, err := journalResult(meta, sc, res)
	if err != nil {
		return err
	}
	if runID != "" {
		fmt.Fprintf(out, "\n✓ Journaled run %s\n", runID)
	}
	return nil
}

// journalResult stores res according to the journal config and flags. It
// returns the run ID, or "" when journaling is off.
func journalResult(meta journal.RunMeta, sc strategies.Config, res backtest.Result) (string, error) {
	jc := cfg.Journal
	if btJournal != "" {
		jc.Type = btJournal
	}
	if btDBPath != "" {
		jc.DBPath = btDBPath
	}

	run, trades, err := journal.FromResult(meta, sc, res)
	if err != nil {
		return "", err
	}

	switch jc.Type {
	case "", "none":
		return "", nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return "", fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
		if err := j.RecordAll(run, trades); err != nil {
			return "", fmt.Errorf("journal: %w", err)
		}
	case "csv":
		if jc.RunsFile == "" || jc.TradesFile == "" {
			return "", fmt.Errorf("journal: csv needs journal.runs_file and journal.trades_file")
		}
		j, err := journal.NewCSV(jc.RunsFile, jc.TradesFile)
		if err != nil {
			return "", fmt.Errorf("open csv journal: %w", err)
		}
		defer j.Close()
		if err := journal.Record(j, run, trades); err != nil {
			return "", fmt.Errorf("journal: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown journal type %q", jc.Type)
	}

	slog.Info("backtest journaled", "run", run.RunID, "type", jc.Type, "trades", len(trades))
	return run.RunID, nil
}
