package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/backtest"
	"github.com/rustyeddy/fxsignal/report"
	"github.com/rustyeddy/fxsignal/strategies"
)

var labelCmd = &cobra.Command{
	Use:   "label FILE",
	Short: "Print the decision for every bar of a series",
	Long: `Label runs the selected strategy over every bar and prints one line per
bar: time, action, confidence, entry, stop-loss, take-profit and reason.

Example:
  fxsignal label --strategy ema-cross data/eurusd.csv
  fxsignal label --action buy,sell data/eurusd.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

var (
	labelFlags   decisionFlags
	labelActions bool
	labelOnly    []string
)

func init() {
	rootCmd.AddCommand(labelCmd)

	labelFlags.register(labelCmd)
	labelCmd.Flags().BoolVar(&labelActions, "trades-only", false, "print only BUY and SELL bars")
	labelCmd.Flags().StringSliceVar(&labelOnly, "action", nil, "print only bars with these actions (BUY, SELL, HOLD, WAIT)")
}

// actionFilter returns the set of actions to print; nil prints everything.
func actionFilter(names []string, tradesOnly bool) (map[strategies.Action]bool, error) {
	if len(names) == 0 && !tradesOnly {
		return nil, nil
	}
	keep := make(map[strategies.Action]bool)
	if tradesOnly {
		keep[strategies.Buy], keep[strategies.Sell] = true, true
	}
	for _, n := range names {
		a, ok := strategies.ParseAction(n)
		if !ok {
			return nil, fmt.Errorf("unknown action %q", n)
		}
		keep[a] = true
	}
	return keep, nil
}

func runLabel(cmd *cobra.Command, args []string) error {
	keep, err := actionFilter(labelOnly, labelActions)
	if err != nil {
		return err
	}
	inputs, err := loadInputs(args)
	if err != nil {
		return err
	}
	in := inputs[0]

	name, sc := labelFlags.resolve(cmd)
	strat, err := strategies.New(name, sc)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	// The runner feeds the strategy bar by bar; its simulation is unused here.
	r := backtest.Runner{Series: in.Series, Strategy: strat}
	_, sigs, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	if keep != nil {
		kept := sigs[:0:0]
		for _, s := range sigs {
			if keep[s.Action] {
				kept = append(kept, s)
			}
		}
		sigs = kept
	}
	return report.WriteSignals(cmd.OutOrStdout(), in.Symbol, sigs)
}
