package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/market"
)

// MAConfig parameterises the simple moving average presets.
type MAConfig struct {
	// Period is the ma-rsi trend filter window.
	Period int `json:"period" yaml:"period"` // 20

	// Fast and Slow are the sma-cross windows.
	Fast int `json:"fast" yaml:"fast"` // 10
	Slow int `json:"slow" yaml:"slow"` // 30

	// RSIBuy and RSISell are the ma-rsi oversold and overbought levels.
	RSIBuy  float64 `json:"rsi_buy" yaml:"rsi_buy"`   // 30
	RSISell float64 `json:"rsi_sell" yaml:"rsi_sell"` // 70
}

func DefaultMAConfig() MAConfig {
	return MAConfig{
		Period:  20,
		Fast:    10,
		Slow:    30,
		RSIBuy:  30,
		RSISell: 70,
	}
}

func (c MAConfig) Validate() error {
	switch {
	case c.Period <= 0:
		return &InvalidConfigurationError{Field: "ma.period", Reason: fmt.Sprintf("must be positive, got %d", c.Period)}
	case c.Fast <= 0 || c.Fast >= c.Slow:
		return &InvalidConfigurationError{Field: "ma.fast", Reason: fmt.Sprintf("%d must be positive and below slow %d", c.Fast, c.Slow)}
	case !(c.RSIBuy > 0 && c.RSIBuy < c.RSISell && c.RSISell < 100):
		return &InvalidConfigurationError{Field: "ma.rsi_buy", Reason: fmt.Sprintf("need 0 < rsi_buy %g < rsi_sell %g < 100", c.RSIBuy, c.RSISell)}
	}
	return nil
}

// MARSI buys a pullback inside an uptrend and sells a rally inside a
// downtrend:
//   - BUY when close is above its simple MA and RSI is below RSIBuy
//   - SELL when close is below its simple MA and RSI is above RSISell
//   - HOLD otherwise
//
// Stop and target come from ATR like the confluence decision.
type MARSI struct {
	cfg  Config
	ma   *indicators.SimpleMA
	rsi  *indicators.RSI
	atr  *indicators.ATR
	seen int
}

func NewMARSI(cfg Config) (*MARSI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MA.Validate(); err != nil {
		return nil, err
	}
	return &MARSI{
		cfg: cfg,
		ma:  indicators.NewMA(cfg.MA.Period),
		rsi: indicators.NewRSI(cfg.Indicators.RSI),
		atr: indicators.NewATR(cfg.Indicators.ATR),
	}, nil
}

func (s *MARSI) Name() string {
	return fmt.Sprintf("MA_RSI(%d,%g,%g)", s.cfg.MA.Period, s.cfg.MA.RSIBuy, s.cfg.MA.RSISell)
}

func (s *MARSI) Reset() {
	s.ma.Reset()
	s.rsi.Reset()
	s.atr.Reset()
	s.seen = 0
}

func (s *MARSI) Ready() bool {
	return s.ma.Ready() && s.rsi.Ready() && s.atr.Ready()
}

func (s *MARSI) Update(b market.Bar) (Signal, error) {
	if err := indicators.CheckClose(s.seen, b); err != nil {
		return Signal{}, err
	}
	s.seen++
	s.ma.Update(b)
	s.rsi.Update(b)
	s.atr.Update(b)

	sig := Signal{Time: b.Time, Action: Wait, Entry: b.Close, Reason: ReasonInsufficientData}
	if !s.Ready() {
		return sig, nil
	}

	ma, rsi, atr := s.ma.Value(), s.rsi.Value(), s.atr.Value()
	if math.IsNaN(ma) || math.IsNaN(rsi) || math.IsNaN(atr) {
		return sig, nil
	}

	mc := s.cfg.MA
	buy := b.Close > ma && rsi < mc.RSIBuy
	sell := b.Close < ma && rsi > mc.RSISell
	if !buy && !sell {
		side := "at"
		switch {
		case b.Close > ma:
			side = "above"
		case b.Close < ma:
			side = "below"
		}
		sig.Action = Hold
		sig.Reason = fmt.Sprintf("no signal: close %s MA(%d), RSI %.1f", side, mc.Period, rsi)
		return sig, nil
	}
	if atr <= 0 {
		sig.Reason = ReasonZeroVolatility
		return sig, nil
	}

	dist := s.cfg.ATRMultiplier * atr
	sig.Confirmations = Confirmations{Trend: true, RSI: true}
	if buy {
		stop := b.Close - dist
		sig.Action = Buy
		sig.Reason = fmt.Sprintf("close above MA(%d), RSI %.1f < %g", mc.Period, rsi, mc.RSIBuy)
		sig.StopLoss = ptr(stop)
		sig.TakeProfit = ptr(b.Close + (b.Close-stop)*s.cfg.RiskReward)
	} else {
		stop := b.Close + dist
		sig.Action = Sell
		sig.Reason = fmt.Sprintf("close below MA(%d), RSI %.1f > %g", mc.Period, rsi, mc.RSISell)
		sig.StopLoss = ptr(stop)
		sig.TakeProfit = ptr(b.Close - (stop-b.Close)*s.cfg.RiskReward)
	}
	sig.Confidence = s.cfg.Weights.Score(sig.Confirmations)
	return sig, nil
}
