package strategies

import (
	"errors"
	"math"
	"testing"

	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/internal/fixtures"
	"github.com/rustyeddy/fxsignal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bullBar() indicators.EnrichedBar {
	nan := math.NaN()
	return indicators.EnrichedBar{
		Bar: market.Bar{
			Time:  fixtures.Start,
			Open:  1.249,
			High:  1.2505,
			Low:   1.2495,
			Close: 1.25,
		},
		EMAFast:    1.24,
		EMAMid:     1.23,
		EMASlow:    1.15,
		RSI:        65,
		MACD:       nan,
		MACDSignal: nan,
		BBMid:      nan,
		BBUpper:    nan,
		BBLower:    nan,
		ATR:        0.0015,
		Pivot:      1.25,
		R1:         1.2505,
		S1:         1.2495,
		VolumeMA:   nan,
	}
}

func bearBar() indicators.EnrichedBar {
	b := bullBar()
	b.Close = 1.05
	b.EMAFast, b.EMAMid, b.EMASlow = 1.06, 1.07, 1.15
	b.RSI = 30
	return b
}

func labelSeries(t *testing.T, s market.Series, cfg Config) []Signal {
	t.Helper()
	bars, err := indicators.Compute(s, cfg.Indicators)
	require.NoError(t, err)
	sigs, err := LabelSeries(bars, cfg)
	require.NoError(t, err)
	require.Len(t, sigs, len(s))
	return sigs
}

func TestDecideBuy(t *testing.T) {
	sig, err := Decide(bullBar(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Buy, sig.Action)
	assert.Equal(t, "BUY", sig.Action.String())
	assert.Equal(t, 1.25, sig.Entry)
	require.NotNil(t, sig.StopLoss)
	require.NotNil(t, sig.TakeProfit)
	assert.InDelta(t, 1.25-1.5*0.0015, *sig.StopLoss, 1e-12)
	assert.InDelta(t, 1.25+2*1.5*0.0015, *sig.TakeProfit, 1e-12)
	assert.Equal(t, 85.0, sig.Confidence)
	assert.Equal(t, "bullish confluence (3/5): close above EMA(200), EMA(20) > EMA(50), RSI 65.0 > 50", sig.Reason)
	assert.Equal(t, Confirmations{Trend: true, EMAOrder: true, RSI: true}, sig.Confirmations)
}

func TestDecideSell(t *testing.T) {
	sig, err := Decide(bearBar(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Sell, sig.Action)
	require.NotNil(t, sig.StopLoss)
	require.NotNil(t, sig.TakeProfit)
	assert.Less(t, *sig.TakeProfit, sig.Entry)
	assert.Less(t, sig.Entry, *sig.StopLoss)
	assert.InDelta(t, 2*(*sig.StopLoss-sig.Entry), sig.Entry-*sig.TakeProfit, 1e-12)
	assert.Contains(t, sig.Reason, "bearish confluence")
}

func TestDecideHold(t *testing.T) {
	b := bullBar()
	b.EMAFast, b.EMAMid = 1.22, 1.23

	sig, err := Decide(b, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Action)
	assert.Nil(t, sig.StopLoss)
	assert.Nil(t, sig.TakeProfit)
	// Scored on the bullish side: trend and RSI agree.
	assert.Equal(t, 75.0, sig.Confidence)
	assert.Equal(t, "no confluence: trend up, EMA order bearish, RSI 65.0", sig.Reason)

	b = bullBar()
	b.RSI = 50
	sig, err = Decide(b, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Action)
}

func TestDecideInsufficientData(t *testing.T) {
	for _, field := range []string{"close", "ema_slow", "rsi", "atr"} {
		t.Run(field, func(t *testing.T) {
			b := bullBar()
			switch field {
			case "close":
				b.Close = math.NaN()
			case "ema_slow":
				b.EMASlow = math.NaN()
			case "rsi":
				b.RSI = math.NaN()
			case "atr":
				b.ATR = math.NaN()
			}
			sig, err := Decide(b, DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, Wait, sig.Action)
			assert.Equal(t, ReasonInsufficientData, sig.Reason)
			assert.Nil(t, sig.StopLoss)
			assert.Nil(t, sig.TakeProfit)
			assert.Zero(t, sig.Confidence)
		})
	}
}

func TestDecideZeroVolatility(t *testing.T) {
	b := bullBar()
	b.ATR = 0
	sig, err := Decide(b, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Wait, sig.Action)
	assert.Equal(t, ReasonZeroVolatility, sig.Reason)
	assert.Nil(t, sig.StopLoss)
}

func TestDecideRequireMACD(t *testing.T) {
	b := bullBar()
	b.MACD, b.MACDSignal = 0.001, 0.002

	sig, err := Decide(b, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Buy, sig.Action)

	strict := DefaultConfig().WithRequireMACD(true)
	sig, err = Decide(b, strict)
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Action)
	assert.Contains(t, sig.Reason, "MACD")

	b.MACD = 0.003
	sig, err = Decide(b, strict)
	require.NoError(t, err)
	assert.Equal(t, Buy, sig.Action)
	assert.Equal(t, 95.0, sig.Confidence)
	assert.Contains(t, sig.Reason, "MACD above signal")
}

func TestDecideVolumeBreakout(t *testing.T) {
	b := bullBar()
	b.Volume, b.VolumeMA = 200, 100
	b.MACD, b.MACDSignal = 0.003, 0.002

	sig, err := Decide(b, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, sig.Confirmations.Volume)
	assert.Equal(t, 5, sig.Confirmations.Count())
	assert.Equal(t, 100.0, sig.Confidence)
	assert.Contains(t, sig.Reason, "volume breakout")
	assert.Contains(t, sig.Reason, "bullish confluence (5/5)")

	sig, err = Decide(b, DefaultConfig().WithVolumeBreakout(0))
	require.NoError(t, err)
	assert.False(t, sig.Confirmations.Volume)

	sig, err = Decide(b, DefaultConfig().WithVolumeBreakout(3))
	require.NoError(t, err)
	assert.False(t, sig.Confirmations.Volume)
}

func TestConfidenceMonotonic(t *testing.T) {
	w := DefaultWeights()
	set := func(mask int) Confirmations {
		return Confirmations{
			Trend:    mask&1 != 0,
			EMAOrder: mask&2 != 0,
			RSI:      mask&4 != 0,
			MACD:     mask&8 != 0,
			Volume:   mask&16 != 0,
		}
	}
	for mask := 0; mask < 32; mask++ {
		base := w.Score(set(mask))
		assert.GreaterOrEqual(t, base, w.Base)
		assert.LessOrEqual(t, base, w.Cap)
		for bit := 0; bit < 5; bit++ {
			if mask&(1<<bit) != 0 {
				continue
			}
			more := set(mask | 1<<bit)
			assert.GreaterOrEqual(t, w.Score(more), base, "mask %05b + bit %d", mask, bit)
		}
	}
	assert.Equal(t, 100.0, w.Score(set(31)))
	assert.Equal(t, 50.0, w.Score(Confirmations{}))
}

func TestRiskLevelSanity(t *testing.T) {
	for _, seed := range []int64{2, 8, 21} {
		sigs := labelSeries(t, fixtures.RandomWalk(1200, seed, 1.1, 0.002), DefaultConfig())
		for i, s := range sigs {
			switch s.Action {
			case Buy:
				assert.Less(t, *s.StopLoss, s.Entry, "bar %d", i)
				assert.Less(t, s.Entry, *s.TakeProfit, "bar %d", i)
			case Sell:
				assert.Less(t, *s.TakeProfit, s.Entry, "bar %d", i)
				assert.Less(t, s.Entry, *s.StopLoss, "bar %d", i)
			default:
				assert.Nil(t, s.StopLoss, "bar %d", i)
				assert.Nil(t, s.TakeProfit, "bar %d", i)
			}
			assert.GreaterOrEqual(t, s.Confidence, 0.0)
			assert.LessOrEqual(t, s.Confidence, 100.0)
		}
	}
}

func TestInvalidConfiguration(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero rr", DefaultConfig().WithRiskReward(0), "risk_reward"},
		{"negative rr", DefaultConfig().WithRiskReward(-1), "risk_reward"},
		{"nan rr", DefaultConfig().WithRiskReward(math.NaN()), "risk_reward"},
		{"zero atr mult", DefaultConfig().WithATRMultiplier(0), "atr_multiplier"},
		{"negative volume", DefaultConfig().WithVolumeBreakout(-1), "volume_breakout"},
		{"bad weights", DefaultConfig().WithWeights(Weights{Base: -1, Cap: 100}), "weights"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decide(bullBar(), tc.cfg)
			var ice *InvalidConfigurationError
			require.True(t, errors.As(err, &ice))
			assert.Equal(t, tc.field, ice.Field)

			sigs, err := LabelSeries([]indicators.EnrichedBar{bullBar()}, tc.cfg)
			assert.Nil(t, sigs)
			assert.Error(t, err)

			_, err = NewConfluence(tc.cfg)
			assert.Error(t, err)
		})
	}

	p := indicators.DefaultParams()
	p.EMAFast = 0
	err := DefaultConfig().WithParams(p).Validate()
	assert.ErrorIs(t, err, indicators.ErrInvalidParams)
}

func TestConfigWithCopies(t *testing.T) {
	base := DefaultConfig()
	rr := base.WithRiskReward(3)
	mult := base.WithATRMultiplier(2)
	macd := base.WithRequireMACD(true)

	assert.Equal(t, 2.0, base.RiskReward)
	assert.Equal(t, 1.5, base.ATRMultiplier)
	assert.False(t, base.RequireMACD)

	assert.Equal(t, 3.0, rr.RiskReward)
	assert.Equal(t, 2.0, mult.ATRMultiplier)
	assert.True(t, macd.RequireMACD)
	assert.Equal(t, DefaultConfig(), base)
}

func TestScenarioRisingSeries(t *testing.T) {
	s := fixtures.Trend(250, 1.0, 0.001)
	require.InDelta(t, 1.25, s[len(s)-1].Close, 1e-12)

	cfg := DefaultConfig()
	bars, err := indicators.Compute(s, cfg.Indicators)
	require.NoError(t, err)
	last := bars[len(bars)-1]
	assert.Greater(t, last.Close, last.EMASlow)
	assert.Greater(t, last.EMAFast, last.EMAMid)
	assert.Greater(t, last.RSI, 50.0)

	sig, err := Decide(last, cfg)
	require.NoError(t, err)
	require.Equal(t, Buy, sig.Action)
	assert.Less(t, *sig.StopLoss, 1.25)
	assert.Less(t, 1.25, *sig.TakeProfit)
	assert.InDelta(t, cfg.RiskReward*(sig.Entry-*sig.StopLoss), *sig.TakeProfit-sig.Entry, 1e-12)
	assert.GreaterOrEqual(t, sig.Confidence, 85.0)
}

func TestScenarioFallingSeries(t *testing.T) {
	s := fixtures.Trend(250, 1.3, -0.001)
	cfg := DefaultConfig()
	bars, err := indicators.Compute(s, cfg.Indicators)
	require.NoError(t, err)

	sig, err := Decide(bars[len(bars)-1], cfg)
	require.NoError(t, err)
	require.Equal(t, Sell, sig.Action)
	assert.Less(t, *sig.TakeProfit, sig.Entry)
	assert.Less(t, sig.Entry, *sig.StopLoss)
	assert.InDelta(t, cfg.RiskReward*(*sig.StopLoss-sig.Entry), sig.Entry-*sig.TakeProfit, 1e-12)
}

func TestScenarioShortSeries(t *testing.T) {
	s := fixtures.Trend(10, 1.0, 0.001)
	bars, err := indicators.Compute(s, indicators.DefaultParams())
	require.NoError(t, err)
	require.Len(t, bars, 10)

	sig, err := Decide(bars[9], DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Wait, sig.Action)
	assert.Nil(t, sig.StopLoss)
	assert.Nil(t, sig.TakeProfit)

	for _, sig := range labelSeries(t, s, DefaultConfig()) {
		assert.Equal(t, Wait, sig.Action)
	}
}

func TestScenarioOscillatingSeries(t *testing.T) {
	cfg := DefaultConfig()
	sigs := labelSeries(t, fixtures.Oscillating(250, 1.1, 0.0001), cfg)

	warm := cfg.Indicators.Warmup()
	hold := 0
	for i, s := range sigs {
		if i < warm {
			assert.Equal(t, Wait, s.Action, "bar %d", i)
			continue
		}
		if s.Action == Hold {
			hold++
		}
	}
	assert.GreaterOrEqual(t, float64(hold), 0.9*float64(len(sigs)-warm))
}

func TestLabelSeriesMatchesDecide(t *testing.T) {
	cfg := DefaultConfig()
	s := fixtures.RandomWalk(300, 4, 1.1, 0.002)
	bars, err := indicators.Compute(s, cfg.Indicators)
	require.NoError(t, err)
	sigs, err := LabelSeries(bars, cfg)
	require.NoError(t, err)

	for i := cfg.Indicators.Warmup(); i < len(bars); i++ {
		want, err := Decide(bars[i], cfg)
		require.NoError(t, err)
		assert.Equal(t, want, sigs[i], "bar %d", i)
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{Hold, Buy, Sell, Wait} {
		got, ok := ParseAction(a.String())
		assert.True(t, ok)
		assert.Equal(t, a, got)
	}
	got, ok := ParseAction(" sell ")
	assert.True(t, ok)
	assert.Equal(t, Sell, got)
	_, ok = ParseAction("SHORT")
	assert.False(t, ok)
	assert.True(t, Signal{Action: Sell}.IsTrade())
	assert.False(t, Signal{Action: Wait}.IsTrade())
}
