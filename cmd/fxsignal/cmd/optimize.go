package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/backtest"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize FILE",
	Short: "Grid-search decision parameters over a bar series",
	Long: `Optimize runs the selected strategy over FILE once per parameter
combination and prints the best combinations by total return, win rate and
trade count.

The confluence presets sweep EMA fast and mid windows, RSI window and MACD
confirmation. The ma-rsi preset sweeps MA length against RSI buy and sell
levels (10,20,50 x 25,30,35 x 65,70,75 by default). Any axis flag given
replaces that axis.

Example:
  fxsignal optimize --top 5 --fast 10,20 --mid 50,100 data/eurusd.csv
  fxsignal optimize --strategy ma-rsi --close-end data/eurusd.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

var (
	optFlags    decisionFlags
	optTop      int
	optFast     []int
	optMid      []int
	optRSI      []int
	optMACD     []bool
	optMA       []int
	optRSIBuy   []float64
	optRSISell  []float64
	optCloseEnd bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optFlags.register(optimizeCmd)
	optimizeCmd.Flags().IntVarP(&optTop, "top", "n", 0, "rows to print (default from config)")
	optimizeCmd.Flags().IntSliceVar(&optFast, "fast", nil, "EMA fast windows")
	optimizeCmd.Flags().IntSliceVar(&optMid, "mid", nil, "EMA mid windows")
	optimizeCmd.Flags().IntSliceVar(&optRSI, "rsi", nil, "RSI windows")
	optimizeCmd.Flags().BoolSliceVar(&optMACD, "macd", nil, "MACD confirmation settings")
	optimizeCmd.Flags().IntSliceVar(&optMA, "ma", nil, "MA lengths (ma-rsi)")
	optimizeCmd.Flags().Float64SliceVar(&optRSIBuy, "rsi-buy", nil, "RSI buy levels (ma-rsi)")
	optimizeCmd.Flags().Float64SliceVar(&optRSISell, "rsi-sell", nil, "RSI sell levels (ma-rsi)")
	optimizeCmd.Flags().BoolVar(&optCloseEnd, "close-end", false, "close an open position at the last bar")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	inputs, err := loadInputs(args)
	if err != nil {
		return err
	}
	in := inputs[0]

	name, sc := optFlags.resolve(cmd)
	closeEnd := cfg.Backtest.CloseAtEnd
	if cmd.Flags().Changed("close-end") {
		closeEnd = optCloseEnd
	}

	grid := backtest.GridFor(name)
	flags := cmd.Flags()
	if flags.Changed("fast") {
		grid.EMAFast = optFast
	}
	if flags.Changed("mid") {
		grid.EMAMid = optMid
	}
	if flags.Changed("rsi") {
		grid.RSI = optRSI
	}
	if flags.Changed("macd") {
		grid.RequireMACD = optMACD
	}
	if flags.Changed("ma") {
		grid.MAPeriod = optMA
	}
	if flags.Changed("rsi-buy") {
		grid.RSIBuy = optRSIBuy
	}
	if flags.Changed("rsi-sell") {
		grid.RSISell = optRSISell
	}

	cs, err := backtest.Optimize(cmd.Context(), in.Series, sc, grid, backtest.OptimizeOptions{
		Strategy: name,
		Workers:  cfg.Analysis.Workers,
		Simulate: backtest.Options{CloseAtEnd: closeEnd},
	})
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	top := optTop
	if top <= 0 {
		top = cfg.Backtest.TopN
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: %d combinations over %d bars\n\n", in.Symbol, name, len(cs), len(in.Series))
	backtest.PrintCandidates(out, cs, top)
	return nil
}
