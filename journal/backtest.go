package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fxsignal/backtest"
	"github.com/rustyeddy/fxsignal/pkg/id"
	"github.com/rustyeddy/fxsignal/strategies"
)

// BacktestRun mirrors the backtest_runs table.
type BacktestRun struct {
	RunID     string
	Created   time.Time
	Timeframe string
	Dataset   string

	Instrument string
	Strategy   string
	Config     []byte // strategy config as YAML

	RiskReward    float64
	ATRMultiplier float64
	RequireMACD   bool

	Start time.Time
	End   time.Time

	// Results
	Trades int
	Wins   int
	Losses int

	// Fractions, not percentages.
	TotalReturn  float64
	WinRate      float64
	ProfitFactor float64
	MaxDrawdown  float64

	Notes []string
}

// RunMeta describes where a result came from.
type RunMeta struct {
	Instrument string
	Timeframe  string
	Dataset    string
	Strategy   string
	Created    time.Time
}

// FromResult converts a simulation into a run and its trade records, with
// fresh ULIDs. A position left open at the end is noted, not recorded.
func FromResult(meta RunMeta, cfg strategies.Config, r backtest.Result) (BacktestRun, []TradeRecord, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return BacktestRun{}, nil, fmt.Errorf("journal: marshal config: %w", err)
	}
	created := meta.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	run := BacktestRun{
		RunID:         id.New(),
		Created:       created,
		Timeframe:     meta.Timeframe,
		Dataset:       meta.Dataset,
		Instrument:    meta.Instrument,
		Strategy:      meta.Strategy,
		Config:        raw,
		RiskReward:    cfg.RiskReward,
		ATRMultiplier: cfg.ATRMultiplier,
		RequireMACD:   cfg.RequireMACD,
		Start:         r.Start,
		End:           r.End,
		Trades:        r.TotalTrades,
		Wins:          r.Wins,
		Losses:        r.Losses,
		TotalReturn:   r.TotalReturn,
		WinRate:       r.WinRate,
		ProfitFactor:  r.Stats.ProfitFactor,
		MaxDrawdown:   r.Stats.MaxDrawdown,
	}
	if r.Open != nil {
		run.Notes = append(run.Notes, fmt.Sprintf("position open since %s at %.5f, unrealised %.2f%%",
			r.Open.EntryTime.UTC().Format(time.RFC3339), r.Open.EntryPrice, r.Open.Unrealized*100))
	}
	if r.TotalTrades == 0 {
		run.Notes = append(run.Notes, "no completed trades")
	}

	trades := make([]TradeRecord, len(r.Trades))
	for i, t := range r.Trades {
		trades[i] = TradeRecord{
			TradeID:    id.New(),
			RunID:      run.RunID,
			Instrument: meta.Instrument,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			OpenTime:   t.EntryTime,
			CloseTime:  t.ExitTime,
			Return:     t.Return,
			Bars:       t.Bars(),
			Reason:     t.Reason,
		}
	}
	return run, trades, nil
}

var backtestOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var backtestOrg = template.Must(template.New("backtest").Funcs(backtestOrgFuncs).Parse(BacktestOrgTemplate))

// FormatRunOrg renders the run as an Org-mode heading with a properties
// drawer and summary tables.
func FormatRunOrg(r BacktestRun) (string, error) {
	var buf bytes.Buffer
	if err := backtestOrg.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteRunOrg writes FormatRunOrg output to path.
func WriteRunOrg(path string, r BacktestRun) error {
	s, err := FormatRunOrg(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const BacktestOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Instrument}} {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:TIMEFRAME:   {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:INSTRUMENT:  {{.Instrument}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:RETURN_PCT:  {{printf "%.2f" (mul100 .TotalReturn)}}
:MAX_DD_PCT:  {{if ne .MaxDrawdown 0.0}}{{printf "%.2f" (mul100 .MaxDrawdown)}}{{else}}(max-dd?){{end}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .WinRate)}}
:PROFIT_FAC:  {{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}(profit-factor?){{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
| Parameter      | Value |
|----------------+-------|
| R:R            | {{printf "%.2f" .RiskReward}} |
| ATR multiplier | {{printf "%.2f" .ATRMultiplier}} |
| Require MACD   | {{.RequireMACD}} |

#+begin_src yaml
{{printf "%s" .Config}}#+end_src

** Performance Summary
- Return:           *{{printf "%.2f" (mul100 .TotalReturn)}}%*
- Max Drawdown:     *{{if ne .MaxDrawdown 0.0}}{{printf "%.2f" (mul100 .MaxDrawdown)}}{{else}}(max-dd?){{end}}%*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*
- Profit Factor:    *{{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}(profit-factor?){{end}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
