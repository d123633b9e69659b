package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/internal/oanda"
	"github.com/rustyeddy/fxsignal/market"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download OANDA candles as a bar file",
	Long: `Fetch downloads historical candles from the OANDA v20 API and writes
them as a bar CSV that the other commands read. The API token is read
from --token or OANDA_TOKEN (a .env file is loaded first).

Examples:
  fxsignal fetch -i EUR_USD -g H1 -n 2000 -o data/eurusd_h1.csv
  fxsignal fetch -i USD_JPY -g D --from 2024-01-01T00:00:00Z -o data/usdjpy_d1.csv`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var (
	fetchEnv        string
	fetchToken      string
	fetchBaseURL    string
	fetchInstrument string
	fetchGran       string
	fetchPrice      string
	fetchFrom       string
	fetchTo         string
	fetchCount      int
	fetchOut        string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchEnv, "env", "practice", "OANDA environment: practice or live")
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "API token (default $OANDA_TOKEN)")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", "", "override the API base URL")
	fetchCmd.Flags().StringVarP(&fetchInstrument, "instrument", "i", "", "instrument, e.g. EUR_USD (required)")
	fetchCmd.Flags().StringVarP(&fetchGran, "granularity", "g", "D", "candle granularity, e.g. M15, H1, D")
	fetchCmd.Flags().StringVar(&fetchPrice, "price", "M", "price component: M (mid), B (bid) or A (ask)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start time (RFC3339)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end time (RFC3339)")
	fetchCmd.Flags().IntVarP(&fetchCount, "count", "n", 0, fmt.Sprintf("number of candles, at most %d (overrides --from/--to)", oanda.MaxCount))
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "output CSV path (default stdout)")
	fetchCmd.MarkFlagRequired("instrument")
}

func runFetch(cmd *cobra.Command, args []string) error {
	token := fetchToken
	if token == "" {
		token = strings.TrimSpace(os.Getenv("OANDA_TOKEN"))
	}
	if token == "" {
		return fmt.Errorf("missing token: set --token or env OANDA_TOKEN")
	}
	base := fetchBaseURL
	if base == "" {
		var err error
		if base, err = oanda.BaseURL(fetchEnv); err != nil {
			return err
		}
	}

	opts := oanda.CandlesOptions{
		Instrument:  fetchInstrument,
		Granularity: fetchGran,
		Price:       fetchPrice,
		Count:       fetchCount,
	}
	var err error
	if fetchFrom != "" {
		if opts.From, err = time.Parse(time.RFC3339, fetchFrom); err != nil {
			return fmt.Errorf("bad --from: %w", err)
		}
	}
	if fetchTo != "" {
		if opts.To, err = time.Parse(time.RFC3339, fetchTo); err != nil {
			return fmt.Errorf("bad --to: %w", err)
		}
	}

	c := oanda.Client{BaseURL: base, Token: token}
	s, err := c.Candles(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if fetchOut == "" {
		return market.WriteCSV(cmd.OutOrStdout(), s)
	}
	if err := market.SaveCSV(fetchOut, s); err != nil {
		return fmt.Errorf("write bars: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d bars: %s\n", len(s), fetchOut)
	return nil
}
