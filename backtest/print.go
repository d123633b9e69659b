package backtest

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// PrintResult writes a human readable summary of r.
func PrintResult(w io.Writer, title string, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "==================================================")

	if !r.Start.IsZero() {
		fmt.Fprintln(w, "Period")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate*100)
	fmt.Fprintf(w, "Total Return:  %.2f%%\n", r.TotalReturn*100)

	s := r.Stats
	if r.TotalTrades > 0 {
		fmt.Fprintf(w, "Avg Return:    %.2f%%\n", s.AvgReturn*100)
		fmt.Fprintf(w, "Best / Worst:  %.2f%% / %.2f%%\n", s.Best*100, s.Worst*100)
		fmt.Fprintf(w, "Avg Held:      %.1f bars (%s)\n", s.AvgBars, s.AvgTradeDuration.Round(time.Minute))
	}
	if s.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
	if s.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.MaxDrawdown*100)
	}

	if r.Open != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Position")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Entry:         %.5f at %s\n", r.Open.EntryPrice, r.Open.EntryTime.Format(time.RFC3339))
		fmt.Fprintf(w, "Last:          %.5f (%.2f%% unrealised)\n", r.Open.LastPrice, r.Open.Unrealized*100)
	}
	fmt.Fprintln(w)
}

// PrintTrades lists every completed trade, one per line.
func PrintTrades(w io.Writer, trades []Trade) {
	for i, t := range trades {
		fmt.Fprintf(w, "#%d | Entry: %.5f | Exit: %.5f | %+.2f%% | %s | %s\n",
			i+1,
			t.EntryPrice,
			t.ExitPrice,
			t.Return*100,
			t.Reason,
			t.EntryTime.Format("2006-01-02 15:04"),
		)
	}
}

// PrintCandidates writes the first n optimisation results as a table.
func PrintCandidates(w io.Writer, cs []Candidate, n int) {
	if n <= 0 || n > len(cs) {
		n = len(cs)
	}
	if n > 0 && strings.EqualFold(cs[0].Strategy, "ma-rsi") {
		fmt.Fprintf(w, "%-4s %-6s %-8s %-8s %8s %8s %6s\n", "#", "ma", "rsi_buy", "rsi_sell", "return", "winrate", "trades")
		for i, c := range cs[:n] {
			m := c.Config.MA
			fmt.Fprintf(w, "%-4d %-6d %-8g %-8g %7.2f%% %7.2f%% %6d\n",
				i+1, m.Period, m.RSIBuy, m.RSISell,
				c.Result.TotalReturn*100, c.Result.WinRate*100, c.Result.TotalTrades)
		}
		return
	}

	fmt.Fprintf(w, "%-4s %-6s %-6s %-5s %-5s %8s %8s %6s\n", "#", "fast", "mid", "rsi", "macd", "return", "winrate", "trades")
	for i, c := range cs[:n] {
		p := c.Config.Indicators
		fmt.Fprintf(w, "%-4d %-6d %-6d %-5d %-5t %7.2f%% %7.2f%% %6d\n",
			i+1, p.EMAFast, p.EMAMid, p.RSI, c.Config.RequireMACD,
			c.Result.TotalReturn*100, c.Result.WinRate*100, c.Result.TotalTrades)
	}
}
