package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/market"
)

// EMACross signals on a fast/slow moving average crossover, exponential by
// default and simple with EMACrossConfig.Simple.
//   - BUY on the bar where fast crosses above slow, SELL on the opposite cross
//   - HOLD on every other bar once warmed up
//   - Stop and target come from ATR like the confluence decision
//   - With an ADX filter, crosses below the threshold are ignored
type EMACross struct {
	cfg EMACrossConfig

	fast movingAverage
	slow movingAverage
	atr  *indicators.ATR
	adx  *indicators.ADX

	lastDiff     float64
	haveLastDiff bool
	seen         int
}

// movingAverage is the part of indicators.SimpleMA and
// indicators.ExponentialMA a crossover needs.
type movingAverage interface {
	Reset()
	Update(b market.Bar)
	Ready() bool
	Value() float64
}

type EMACrossConfig struct {
	FastPeriod int  `json:"fast_period" yaml:"fast_period"` // 20
	SlowPeriod int  `json:"slow_period" yaml:"slow_period"` // 50
	ATRPeriod  int  `json:"atr_period" yaml:"atr_period"`   // 14
	Simple     bool `json:"simple" yaml:"simple"`

	// ADXPeriod of zero disables the trend-strength filter.
	ADXPeriod    int     `json:"adx_period" yaml:"adx_period"`
	ADXThreshold float64 `json:"adx_threshold" yaml:"adx_threshold"` // 25

	RiskReward    float64 `json:"risk_reward" yaml:"risk_reward"`
	ATRMultiplier float64 `json:"atr_multiplier" yaml:"atr_multiplier"`

	Weights Weights `json:"weights" yaml:"weights"`
}

// EMACrossConfigFrom takes the crossover periods and risk settings from a
// confluence Config: fast and mid EMA windows, ATR window, RR and stop
// multiple.
func EMACrossConfigFrom(cfg Config) EMACrossConfig {
	return EMACrossConfig{
		FastPeriod:    cfg.Indicators.EMAFast,
		SlowPeriod:    cfg.Indicators.EMAMid,
		ATRPeriod:     cfg.Indicators.ATR,
		RiskReward:    cfg.RiskReward,
		ATRMultiplier: cfg.ATRMultiplier,
		Weights:       cfg.Weights,
	}
}

func (c EMACrossConfig) Validate() error {
	switch {
	case c.FastPeriod <= 0 || c.SlowPeriod <= 0 || c.ATRPeriod <= 0:
		return &InvalidConfigurationError{Field: "periods", Reason: "must be positive"}
	case c.FastPeriod >= c.SlowPeriod:
		return &InvalidConfigurationError{Field: "fast_period", Reason: fmt.Sprintf("%d must be below slow period %d", c.FastPeriod, c.SlowPeriod)}
	case c.ADXPeriod < 0:
		return &InvalidConfigurationError{Field: "adx_period", Reason: "must not be negative"}
	case !(c.RiskReward > 0):
		return &InvalidConfigurationError{Field: "risk_reward", Reason: fmt.Sprintf("must be positive, got %g", c.RiskReward)}
	case !(c.ATRMultiplier > 0):
		return &InvalidConfigurationError{Field: "atr_multiplier", Reason: fmt.Sprintf("must be positive, got %g", c.ATRMultiplier)}
	}
	return c.Weights.Validate()
}

func NewEMACross(cfg EMACrossConfig) (*EMACross, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &EMACross{
		cfg: cfg,
		atr: indicators.NewATR(cfg.ATRPeriod),
	}
	if cfg.Simple {
		s.fast, s.slow = indicators.NewMA(cfg.FastPeriod), indicators.NewMA(cfg.SlowPeriod)
	} else {
		s.fast, s.slow = indicators.NewEMA(cfg.FastPeriod), indicators.NewEMA(cfg.SlowPeriod)
	}
	if cfg.ADXPeriod > 0 {
		s.adx = indicators.NewADX(cfg.ADXPeriod)
	}
	return s, nil
}

func (s *EMACross) Name() string {
	kind := "EMA"
	if s.cfg.Simple {
		kind = "SMA"
	}
	if s.adx != nil {
		return fmt.Sprintf("%s_CROSS_ADX(%d,%d)", kind, s.cfg.FastPeriod, s.cfg.SlowPeriod)
	}
	return fmt.Sprintf("%s_CROSS(%d,%d)", kind, s.cfg.FastPeriod, s.cfg.SlowPeriod)
}

func (s *EMACross) Reset() {
	s.fast.Reset()
	s.slow.Reset()
	s.atr.Reset()
	if s.adx != nil {
		s.adx.Reset()
	}
	s.lastDiff = 0
	s.haveLastDiff = false
	s.seen = 0
}

func (s *EMACross) Ready() bool {
	ready := s.fast.Ready() && s.slow.Ready() && s.atr.Ready()
	if s.adx != nil {
		ready = ready && s.adx.Ready()
	}
	return ready
}

func (s *EMACross) Update(b market.Bar) (Signal, error) {
	if err := indicators.CheckClose(s.seen, b); err != nil {
		return Signal{}, err
	}
	s.seen++
	s.fast.Update(b)
	s.slow.Update(b)
	s.atr.Update(b)
	if s.adx != nil {
		s.adx.Update(b)
	}

	sig := Signal{Time: b.Time, Action: Wait, Entry: b.Close, Reason: ReasonInsufficientData}
	if !s.Ready() {
		return sig, nil
	}

	diff := s.fast.Value() - s.slow.Value()

	// Need a previous diff to detect a cross.
	if !s.haveLastDiff {
		s.lastDiff = diff
		s.haveLastDiff = true
		sig.Action, sig.Reason = Hold, "waiting for first cross"
		return sig, nil
	}

	bullCross := diff > 0 && s.lastDiff <= 0
	bearCross := diff < 0 && s.lastDiff >= 0
	s.lastDiff = diff

	sig.Action, sig.Reason = Hold, "no cross"
	if !bullCross && !bearCross {
		return sig, nil
	}
	if s.adx != nil && s.adx.Value() < s.cfg.ADXThreshold {
		sig.Reason = fmt.Sprintf("cross ignored: ADX %.1f < %g", s.adx.Value(), s.cfg.ADXThreshold)
		return sig, nil
	}

	atr := s.atr.Value()
	if math.IsNaN(atr) {
		sig.Action, sig.Reason = Wait, ReasonInsufficientData
		return sig, nil
	}
	if atr <= 0 {
		sig.Action, sig.Reason = Wait, ReasonZeroVolatility
		return sig, nil
	}

	dist := s.cfg.ATRMultiplier * atr
	sig.Confirmations = Confirmations{EMAOrder: true, Trend: s.adx != nil}
	if bullCross {
		stop := b.Close - dist
		sig.Action, sig.Reason = Buy, "BullCross"
		sig.StopLoss = ptr(stop)
		sig.TakeProfit = ptr(b.Close + (b.Close-stop)*s.cfg.RiskReward)
	} else {
		stop := b.Close + dist
		sig.Action, sig.Reason = Sell, "BearCross"
		sig.StopLoss = ptr(stop)
		sig.TakeProfit = ptr(b.Close - (stop-b.Close)*s.cfg.RiskReward)
	}
	if s.adx != nil {
		sig.Reason += "ADX"
	}
	sig.Confidence = s.cfg.Weights.Score(sig.Confirmations)
	return sig, nil
}
