package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/market"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Report bar count, span and gaps of bar files",
	Long: `Inspect loads each bar file and prints its size, time span, inferred
timeframe and missing bars. Gaps of a day or more that start on Friday to
Sunday are counted as weekends; other long gaps are suspicious.

Example:
  fxsignal inspect --gaps data/eurusd_h1.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

var (
	inspectTimeframe string
	inspectGaps      bool
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectTimeframe, "timeframe", "t", "", "expected bar width (default inferred)")
	inspectCmd.Flags().BoolVar(&inspectGaps, "gaps", false, "list every suspicious gap")
}

func runInspect(cmd *cobra.Command, args []string) error {
	// Zero lets each series infer its bar width.
	var interval time.Duration
	if inspectTimeframe != "" {
		d, err := market.ParseTimeframe(inspectTimeframe)
		if err != nil {
			return err
		}
		interval = d
	}

	inputs, err := loadInputs(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, in := range inputs {
		fmt.Fprintf(out, "%s (%s)\n", in.Symbol, args[i])
		in.Series.PrintStats(out, interval)
		if inspectGaps {
			for _, g := range in.Series.Gaps(interval) {
				if g.Kind != market.GapSuspicious {
					continue
				}
				fmt.Fprintf(out, "  %s  %d bars missing\n", g.Start.UTC().Format("2006-01-02 15:04"), g.Missing)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
