// Package risk sizes the trade plan carried by a signal for a notional
// account. It never places or tracks orders.
package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/strategies"
)

var (
	ErrNoStop          = errors.New("signal has no stop loss")
	ErrUnknownSymbol   = errors.New("unknown instrument")
	ErrCrossConversion = errors.New("cross conversion not implemented")
)

// Account is the notional account a plan is sized for.
type Account struct {
	Currency string  `json:"currency" yaml:"currency"`
	Equity   float64 `json:"equity" yaml:"equity"`
	RiskPct  float64 `json:"risk_pct" yaml:"risk_pct"` // 0.01 = 1%
}

func (a Account) Validate() error {
	if len(a.Currency) != 3 {
		return fmt.Errorf("risk: currency must be a 3 letter code, got %q", a.Currency)
	}
	if a.Equity <= 0 {
		return fmt.Errorf("risk: equity must be positive")
	}
	if a.RiskPct <= 0 || a.RiskPct > 1 {
		return fmt.Errorf("risk: risk_pct must be in (0, 1]")
	}
	return nil
}

// Plan is a sized trade plan.
type Plan struct {
	Units      float64
	StopPips   float64
	RiskAmount float64
	MaxLoss    float64 // what Units lose at the stop
	Currency   string
	RR         float64
}

// QuoteToAccount converts one unit of symbol's quote currency into
// currency, using price as the symbol's current rate.
func QuoteToAccount(symbol, currency string, price float64) (float64, error) {
	meta, ok := market.LookupInstrument(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	currency = strings.ToUpper(currency)

	switch {
	case meta.QuoteCurrency == currency:
		return 1.0, nil
	case meta.BaseCurrency == currency:
		// USD_JPY gives JPY per USD; we want USD per JPY.
		if price <= 0 {
			return 0, fmt.Errorf("risk: price must be positive, got %v", price)
		}
		return 1.0 / price, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrCrossConversion, meta.QuoteCurrency, currency)
}

// Size sizes sig's entry and stop for acct.
func Size(symbol string, sig strategies.Signal, acct Account) (Plan, error) {
	if sig.StopLoss == nil {
		return Plan{}, ErrNoStop
	}
	if err := acct.Validate(); err != nil {
		return Plan{}, err
	}
	meta, ok := market.LookupInstrument(symbol)
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	q2a, err := QuoteToAccount(symbol, acct.Currency, sig.Entry)
	if err != nil {
		return Plan{}, err
	}

	pip := PipSize(meta.PipLocation)
	p := Plan{
		StopPips:   math.Abs(sig.Entry-*sig.StopLoss) / pip,
		RiskAmount: acct.Equity * acct.RiskPct,
		Currency:   strings.ToUpper(acct.Currency),
	}
	// Units lose RiskAmount at the stop; a zero stop distance sizes nothing.
	if perUnit := p.StopPips * pip * q2a; perUnit > 0 {
		p.Units = math.Floor(p.RiskAmount / perUnit)
		p.MaxLoss = Loss(p.Units, sig.Entry, *sig.StopLoss, q2a)
	}
	if sig.TakeProfit != nil {
		p.RR = RR(sig.Entry, *sig.StopLoss, *sig.TakeProfit)
	}
	return p, nil
}

// PipSize returns the price size of one pip at the given pip location,
// e.g. -4 gives 0.0001.
func PipSize(loc int) float64 {
	return math.Pow(10, float64(loc))
}

// Loss is what units lose in account currency if price moves from entry
// to stop.
func Loss(units, entry, stop, quoteToAccount float64) float64 {
	return units * math.Abs(entry-stop) * quoteToAccount
}

// RR is the reward to risk ratio of a trade plan; 0 when risk is zero.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / risk
}
