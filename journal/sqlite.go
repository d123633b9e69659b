package journal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Journal backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const insertRun = `
	INSERT INTO backtest_runs
	(run_id, created, timeframe, dataset, instrument, strategy, config,
	 risk_reward, atr_multiplier, require_macd, start_time, end_time,
	 trades, wins, losses, total_return, win_rate, profit_factor, max_drawdown, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertTrade = `
	INSERT INTO trades
	(trade_id, run_id, instrument, entry_price, exit_price, open_time, close_time, trade_return, bars, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func recordRun(x execer, r BacktestRun) error {
	_, err := x.Exec(insertRun,
		r.RunID, r.Created.UTC(), r.Timeframe, r.Dataset, r.Instrument, r.Strategy, string(r.Config),
		r.RiskReward, r.ATRMultiplier, r.RequireMACD, r.Start.UTC(), r.End.UTC(),
		r.Trades, r.Wins, r.Losses, r.TotalReturn, r.WinRate, r.ProfitFactor, r.MaxDrawdown,
		strings.Join(r.Notes, "\n"),
	)
	return err
}

func recordTrade(x execer, t TradeRecord) error {
	_, err := x.Exec(insertTrade,
		t.TradeID, t.RunID, t.Instrument, t.EntryPrice, t.ExitPrice,
		t.OpenTime.UTC(), t.CloseTime.UTC(), t.Return, t.Bars, t.Reason,
	)
	return err
}

func (j *SQLite) RecordRun(r BacktestRun) error {
	return recordRun(j.db, r)
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	return recordTrade(j.db, t)
}

// RecordAll stores a run and its trades in one transaction.
func (j *SQLite) RecordAll(r BacktestRun, trades []TradeRecord) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	if err := recordRun(tx, r); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("journal: record run %s: %w", r.RunID, err)
	}
	for _, t := range trades {
		if err := recordTrade(tx, t); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("journal: record trade %s: %w", t.TradeID, err)
		}
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
