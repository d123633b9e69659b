package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/config"
	"github.com/rustyeddy/fxsignal/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "fxsignal",
	Short: "Indicator engine and signal research tool for FX bar data",
	Long: `fxsignal computes technical indicators over OHLCV bar data and turns
them into BUY/SELL/HOLD/WAIT decisions with stop-loss, take-profit and a
confidence score.

It provides tools for:
  - Analysing the latest bar of one or many series in parallel
  - Labelling every bar of a series
  - Backtesting and grid-optimising the decision parameters
  - Journaling backtest runs to SQLite or CSV
  - Re-analysing files on a schedule with Prometheus metrics

Bar files are CSV with a header naming time,open,high,low,close[,volume].`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is loaded by setup before any command runs.
	cfg = config.Default()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// setup loads .env, the config file and FXSIGNAL_* overrides, then
// installs the default logger. Flags win over both.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if _, err := logging.Init(os.Stderr, c.Log.Level, c.Log.Format); err != nil {
		return err
	}
	cfg = c
	return nil
}
