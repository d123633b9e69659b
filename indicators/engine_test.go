package indicators

import (
	"errors"
	"fmt"
	"math"
	"testing"

	talib "github.com/markcheno/go-talib"
	"github.com/rustyeddy/fxsignal/internal/fixtures"
	"github.com/rustyeddy/fxsignal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompute(t *testing.T, s market.Series) []EnrichedBar {
	t.Helper()
	out, err := Compute(s, DefaultParams())
	require.NoError(t, err)
	require.Len(t, out, len(s))
	return out
}

func TestComputeConstantSeries(t *testing.T) {
	const c = 1.1
	out := mustCompute(t, fixtures.Flat(250, c))
	last := out[len(out)-1]

	assert.InDelta(t, c, last.EMAFast, 1e-12)
	assert.InDelta(t, c, last.EMAMid, 1e-12)
	assert.InDelta(t, c, last.EMASlow, 1e-12)
	assert.Equal(t, 100.0, last.RSI)
	assert.InDelta(t, 0, last.MACD, 1e-12)
	assert.InDelta(t, 0, last.MACDSignal, 1e-12)
	assert.InDelta(t, c, last.BBMid, 1e-12)
	assert.InDelta(t, c, last.BBUpper, 1e-12)
	assert.InDelta(t, c, last.BBLower, 1e-12)
	assert.InDelta(t, 0, last.ATR, 1e-12)
	assert.InDelta(t, c, last.Pivot, 1e-12)
}

func TestComputeInvariants(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			out := mustCompute(t, fixtures.RandomWalk(400, seed, 100, 1))

			for i, e := range out {
				if !math.IsNaN(e.BBMid) {
					assert.GreaterOrEqual(t, e.BBUpper, e.BBMid, "bar %d", i)
					assert.GreaterOrEqual(t, e.BBMid, e.BBLower, "bar %d", i)
				}
				if !math.IsNaN(e.ATR) {
					assert.GreaterOrEqual(t, e.ATR, 0.0, "bar %d", i)
				}
				if !math.IsNaN(e.RSI) {
					assert.GreaterOrEqual(t, e.RSI, 0.0, "bar %d", i)
					assert.LessOrEqual(t, e.RSI, 100.0, "bar %d", i)
				}
			}
		})
	}
}

func TestComputeIdempotent(t *testing.T) {
	s := fixtures.RandomWalk(300, 3, 1.1, 0.002)
	a := mustCompute(t, s)
	b := mustCompute(t, s)

	// NaN != NaN, so compare rendered values.
	assert.Equal(t, fmt.Sprint(a), fmt.Sprint(b))
}

func TestComputeReadiness(t *testing.T) {
	out := mustCompute(t, fixtures.Trend(250, 1.0, 0.001))

	cases := []struct {
		name  string
		first int
		get   func(EnrichedBar) float64
	}{
		{"ema_fast", 19, func(e EnrichedBar) float64 { return e.EMAFast }},
		{"ema_mid", 49, func(e EnrichedBar) float64 { return e.EMAMid }},
		{"ema_slow", 199, func(e EnrichedBar) float64 { return e.EMASlow }},
		{"rsi", 14, func(e EnrichedBar) float64 { return e.RSI }},
		{"macd", 25, func(e EnrichedBar) float64 { return e.MACD }},
		{"macd_signal", 33, func(e EnrichedBar) float64 { return e.MACDSignal }},
		{"bb_mid", 19, func(e EnrichedBar) float64 { return e.BBMid }},
		{"bb_upper", 19, func(e EnrichedBar) float64 { return e.BBUpper }},
		{"atr", 14, func(e EnrichedBar) float64 { return e.ATR }},
		{"pivot", 0, func(e EnrichedBar) float64 { return e.Pivot }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.first > 0 {
				assert.True(t, math.IsNaN(tc.get(out[tc.first-1])), "defined before bar %d", tc.first)
			}
			assert.False(t, math.IsNaN(tc.get(out[tc.first])), "undefined at bar %d", tc.first)
		})
	}

	// No volume in the fixture: the volume average never fills.
	assert.True(t, math.IsNaN(out[len(out)-1].VolumeMA))
	assert.Equal(t, 200, DefaultParams().Warmup())
}

func TestComputeShortSeries(t *testing.T) {
	s := fixtures.Trend(10, 1.0, 0.001)
	out := mustCompute(t, s)

	for i, e := range out {
		assert.Equal(t, s[i].Close, e.Close)
		for name, v := range map[string]float64{
			"ema_fast": e.EMAFast, "ema_mid": e.EMAMid, "ema_slow": e.EMASlow,
			"rsi": e.RSI, "macd": e.MACD, "macd_signal": e.MACDSignal,
			"bb_mid": e.BBMid, "bb_upper": e.BBUpper, "bb_lower": e.BBLower,
			"atr": e.ATR, "volume_ma": e.VolumeMA,
		} {
			assert.True(t, math.IsNaN(v), "%s defined at bar %d", name, i)
		}
		// Pivots need no history.
		assert.False(t, math.IsNaN(e.Pivot))
	}
}

func TestComputeMissingFields(t *testing.T) {
	t.Run("missing close", func(t *testing.T) {
		s := fixtures.Trend(30, 1.0, 0.001)
		s[12].Close = math.NaN()

		out, err := Compute(s, DefaultParams())
		assert.Nil(t, out)

		var mfe *MissingFieldError
		require.True(t, errors.As(err, &mfe))
		assert.Equal(t, 12, mfe.Index)
		assert.Equal(t, "close", mfe.Field)
		assert.EqualError(t, err, "bar 12: missing close")
	})

	t.Run("missing high only blanks atr and pivots", func(t *testing.T) {
		s := fixtures.Trend(60, 1.0, 0.001)
		s[40].High = math.NaN()

		out := mustCompute(t, s)
		e := out[40]
		assert.True(t, math.IsNaN(e.Pivot))
		assert.True(t, math.IsNaN(e.R1))
		assert.True(t, math.IsNaN(e.S1))
		assert.True(t, math.IsNaN(e.ATR))
		assert.False(t, math.IsNaN(e.EMAFast))
		assert.False(t, math.IsNaN(e.RSI))
		assert.False(t, math.IsNaN(e.BBMid))

		// ATR recovers once bar 40 leaves the 14 bar window.
		assert.True(t, math.IsNaN(out[53].ATR))
		assert.False(t, math.IsNaN(out[54].ATR))
		assert.False(t, math.IsNaN(out[41].Pivot))
	})
}

func TestComputeInvalidClose(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		msg   string
	}{
		{"positive infinity", math.Inf(1), "bar 100: invalid close +Inf"},
		{"negative infinity", math.Inf(-1), "bar 100: invalid close -Inf"},
		{"negative", -5, "bar 100: invalid close -5"},
		{"zero", 0, "bar 100: invalid close 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixtures.Trend(250, 1.0, 0.001)
			s[100].Close = tt.close

			out, err := Compute(s, DefaultParams())
			assert.Nil(t, out)

			var ife *InvalidFieldError
			require.True(t, errors.As(err, &ife))
			assert.Equal(t, 100, ife.Index)
			assert.Equal(t, "close", ife.Field)
			assert.EqualError(t, err, tt.msg)
		})
	}

	assert.NoError(t, CheckClose(0, market.Bar{Close: 1.1}))
	var mfe *MissingFieldError
	assert.True(t, errors.As(CheckClose(3, market.Bar{Close: math.NaN()}), &mfe))
}

func TestComputeRejectsBadInput(t *testing.T) {
	_, err := Compute(nil, DefaultParams())
	assert.ErrorIs(t, err, market.ErrEmptySeries)

	p := DefaultParams()
	p.MACDFast = 30
	_, err = Compute(fixtures.Flat(5, 1), p)
	assert.ErrorIs(t, err, ErrInvalidParams)

	p = DefaultParams()
	p.RSI = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = DefaultParams()
	p.BBWindow = 1
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
}

func TestEngineMatchesCompute(t *testing.T) {
	s := fixtures.RandomWalk(250, 11, 1.3, 0.003)
	batch := mustCompute(t, s)

	e := NewEngine(DefaultParams())
	var streamed []EnrichedBar
	for _, b := range s {
		streamed = append(streamed, e.Update(b))
	}
	assert.Equal(t, fmt.Sprint(batch), fmt.Sprint(streamed))

	e.Reset()
	again := e.Update(s[0])
	assert.Equal(t, fmt.Sprint(batch[0]), fmt.Sprint(again))
	assert.Len(t, e.Indicators(), 8)
}

// Cross-check the rolling statistics against TA-Lib.
func TestComputeMatchesTALib(t *testing.T) {
	s := fixtures.RandomWalk(300, 5, 100, 1)
	out := mustCompute(t, s)

	n := len(s)
	cl := make([]float64, n)
	hi := make([]float64, n)
	lo := make([]float64, n)
	for i, b := range s {
		cl[i], hi[i], lo[i] = b.Close, b.High, b.Low
	}

	sma := talib.Sma(cl, 20)
	sd := talib.StdDev(cl, 20, 1)
	tr := talib.TRange(hi, lo, cl)
	sampleAdj := math.Sqrt(20.0 / 19.0)

	for i := 19; i < n; i++ {
		assert.InDelta(t, sma[i], out[i].BBMid, 1e-8, "sma at %d", i)
		assert.InDelta(t, sd[i]*sampleAdj, (out[i].BBUpper-out[i].BBMid)/2, 1e-8, "sd at %d", i)
	}
	for i := 1; i < n; i++ {
		assert.InDelta(t, tr[i], TrueRange(s[i], s[i-1].Close), 1e-9, "tr at %d", i)
	}
}
