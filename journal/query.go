package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

const runColumns = `run_id, created, timeframe, dataset, instrument, strategy, config,
	risk_reward, atr_multiplier, require_macd, start_time, end_time,
	trades, wins, losses, total_return, win_rate, profit_factor, max_drawdown, notes`

const tradeColumns = `trade_id, run_id, instrument, entry_price, exit_price, open_time, close_time, trade_return, bars, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (BacktestRun, error) {
	var (
		r      BacktestRun
		config string
		notes  string
	)
	err := s.Scan(
		&r.RunID, &r.Created, &r.Timeframe, &r.Dataset, &r.Instrument, &r.Strategy, &config,
		&r.RiskReward, &r.ATRMultiplier, &r.RequireMACD, &r.Start, &r.End,
		&r.Trades, &r.Wins, &r.Losses, &r.TotalReturn, &r.WinRate, &r.ProfitFactor, &r.MaxDrawdown,
		&notes,
	)
	if err != nil {
		return BacktestRun{}, err
	}
	r.Config = []byte(config)
	if notes != "" {
		r.Notes = strings.Split(notes, "\n")
	}
	return r, nil
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.RunID,
		&rec.Instrument,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Return,
		&rec.Bars,
		&rec.Reason,
	)
	return rec, err
}

// GetRun returns a single backtest run by ID.
func (j *SQLite) GetRun(runID string) (BacktestRun, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM backtest_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BacktestRun{}, fmt.Errorf("run %q %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(limit int) ([]BacktestRun, error) {
	q := `SELECT ` + runColumns + ` FROM backtest_runs ORDER BY created DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	rec, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TradeRecord{}, fmt.Errorf("trade %q %w", tradeID, ErrNotFound)
	}
	return rec, err
}

// ListTradesByRunID returns a run's trades in open-time order.
func (j *SQLite) ListTradesByRunID(runID string) ([]TradeRecord, error) {
	return j.listTrades(`SELECT `+tradeColumns+` FROM trades WHERE run_id = ? ORDER BY open_time ASC, trade_id ASC`, runID)
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.listTrades(`SELECT `+tradeColumns+` FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) listTrades(q string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
