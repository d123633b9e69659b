package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	runHeader   = []string{"run_id", "created", "timeframe", "dataset", "instrument", "strategy", "risk_reward", "atr_multiplier", "require_macd", "start", "end", "trades", "wins", "losses", "total_return", "win_rate", "profit_factor", "max_drawdown", "notes"}
	tradeHeader = []string{"trade_id", "run_id", "instrument", "entry_price", "exit_price", "open_time", "close_time", "return", "bars", "reason"}
)

// CSVJournal appends runs and trades to two CSV files.
type CSVJournal struct {
	runs   *csv.Writer
	trades *csv.Writer
	rf, tf *os.File
}

func NewCSV(runsPath, tradesPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	tw := csv.NewWriter(tf)

	if err := writeRow(rw, runHeader); err != nil {
		return nil, err
	}
	if err := writeRow(tw, tradeHeader); err != nil {
		return nil, err
	}

	return &CSVJournal{rw, tw, rf, tf}, nil
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordRun(r BacktestRun) error {
	return writeRow(j.runs, []string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Timeframe,
		r.Dataset,
		r.Instrument,
		r.Strategy,
		f(r.RiskReward),
		f(r.ATRMultiplier),
		strconv.FormatBool(r.RequireMACD),
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.TotalReturn),
		f(r.WinRate),
		f(r.ProfitFactor),
		f(r.MaxDrawdown),
		strings.Join(r.Notes, "; "),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return writeRow(j.trades, []string{
		t.TradeID,
		t.RunID,
		t.Instrument,
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.UTC().Format(time.RFC3339),
		t.CloseTime.UTC().Format(time.RFC3339),
		f(t.Return),
		strconv.Itoa(t.Bars),
		t.Reason,
	})
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
