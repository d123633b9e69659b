package strategies

import (
	"fmt"

	"github.com/rustyeddy/fxsignal/indicators"
)

// Config is the full parameter set of the confluence decision. It is a
// value: the With* methods return modified copies and never touch the
// receiver, so a Config can be shared freely between goroutines.
type Config struct {
	Indicators indicators.Params `json:"indicators" yaml:"indicators"`

	// RiskReward sets take-profit distance as a multiple of stop distance.
	RiskReward float64 `json:"risk_reward" yaml:"risk_reward"`
	// ATRMultiplier sets stop distance in ATRs.
	ATRMultiplier float64 `json:"atr_multiplier" yaml:"atr_multiplier"`

	// RequireMACD additionally gates BUY on MACD > signal and SELL on
	// MACD < signal.
	RequireMACD bool `json:"require_macd" yaml:"require_macd"`

	// VolumeBreakout is the multiple of the volume average a bar must
	// exceed to count as a breakout. Zero disables the check.
	VolumeBreakout float64 `json:"volume_breakout" yaml:"volume_breakout"`

	Weights Weights `json:"weights" yaml:"weights"`

	// MA is read by the ma-rsi and sma-cross presets only.
	MA MAConfig `json:"ma" yaml:"ma"`
}

func DefaultConfig() Config {
	return Config{
		Indicators:     indicators.DefaultParams(),
		RiskReward:     2.0,
		ATRMultiplier:  1.5,
		VolumeBreakout: 1.5,
		Weights:        DefaultWeights(),
		MA:             DefaultMAConfig(),
	}
}

func (c Config) WithRiskReward(rr float64) Config {
	c.RiskReward = rr
	return c
}

func (c Config) WithATRMultiplier(m float64) Config {
	c.ATRMultiplier = m
	return c
}

func (c Config) WithRequireMACD(on bool) Config {
	c.RequireMACD = on
	return c
}

func (c Config) WithVolumeBreakout(x float64) Config {
	c.VolumeBreakout = x
	return c
}

func (c Config) WithParams(p indicators.Params) Config {
	c.Indicators = p
	return c
}

func (c Config) WithWeights(w Weights) Config {
	c.Weights = w
	return c
}

func (c Config) WithMA(m MAConfig) Config {
	c.MA = m
	return c
}

// InvalidConfigurationError rejects a Config before any computation.
type InvalidConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *InvalidConfigurationError) Unwrap() error { return e.Err }

func (c Config) Validate() error {
	if !(c.RiskReward > 0) {
		return &InvalidConfigurationError{Field: "risk_reward", Reason: fmt.Sprintf("must be positive, got %g", c.RiskReward)}
	}
	if !(c.ATRMultiplier > 0) {
		return &InvalidConfigurationError{Field: "atr_multiplier", Reason: fmt.Sprintf("must be positive, got %g", c.ATRMultiplier)}
	}
	if c.VolumeBreakout < 0 {
		return &InvalidConfigurationError{Field: "volume_breakout", Reason: fmt.Sprintf("must not be negative, got %g", c.VolumeBreakout)}
	}
	if err := c.Weights.Validate(); err != nil {
		return &InvalidConfigurationError{Field: "weights", Reason: err.Error(), Err: err}
	}
	if err := c.Indicators.Validate(); err != nil {
		return &InvalidConfigurationError{Field: "indicators", Reason: err.Error(), Err: err}
	}
	return nil
}
