package market

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesValidate(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, Series{}.Validate(), ErrEmptySeries)
	})

	t.Run("ordered", func(t *testing.T) {
		s := Series{{Time: base, Close: 1}, {Time: base.Add(time.Hour), Close: 2}}
		assert.NoError(t, s.Validate())
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		s := Series{{Time: base, Close: 1}, {Time: base, Close: 2}}
		assert.ErrorIs(t, s.Validate(), ErrUnordered)
	})

	t.Run("high below low is tolerated", func(t *testing.T) {
		s := Series{{Time: base, High: 1, Low: 2, Close: 1.5}}
		assert.NoError(t, s.Validate())
	})
}

func TestSeriesHelpers(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: base, Close: 1.1, Volume: math.NaN()},
		{Time: base.Add(time.Hour), Close: 1.2, Volume: 10},
	}

	assert.Equal(t, []float64{1.1, 1.2}, s.Closes())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 1.2, last.Close)
	assert.True(t, last.HasVolume())
	assert.False(t, s[0].HasVolume())

	start, end := s.Span()
	assert.Equal(t, base, start)
	assert.Equal(t, base.Add(time.Hour), end)

	_, ok = Series{}.Last()
	assert.False(t, ok)
}

func TestReadCSV(t *testing.T) {
	t.Run("header in any order with missing cells", func(t *testing.T) {
		in := `Date,Close,High,Low,Open,Volume
2024-01-01,1.1000,1.1010,1.0990,1.0995,
2024-01-02,1.1020,,1.1000,1.1000,1500
`
		s, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, s, 2)

		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s[0].Time)
		assert.Equal(t, 1.1, s[0].Close)
		assert.Equal(t, 1.0995, s[0].Open)
		assert.True(t, math.IsNaN(s[0].Volume))
		assert.True(t, math.IsNaN(s[1].High))
		assert.Equal(t, 1500.0, s[1].Volume)
	})

	t.Run("headerless positional", func(t *testing.T) {
		in := "2024-01-01T00:00:00Z,1,2,0.5,1.5\n2024-01-01T01:00:00Z,1.5,2.5,1,2\n"
		s, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, s, 2)
		assert.Equal(t, 2.0, s[1].Close)
		assert.True(t, math.IsNaN(s[1].Volume))
	})

	t.Run("unix seconds", func(t *testing.T) {
		in := "time,close\n1704067200,1.1\n1704070800,1.2\n"
		s, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s[0].Time)
		assert.True(t, math.IsNaN(s[0].Open))
	})

	t.Run("unordered rows rejected", func(t *testing.T) {
		in := "time,close\n2024-01-02,1.1\n2024-01-01,1.2\n"
		_, err := ReadCSV(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrUnordered)
	})

	t.Run("bad number", func(t *testing.T) {
		in := "time,close\n2024-01-02,abc\n"
		_, err := ReadCSV(strings.NewReader(in))
		assert.ErrorContains(t, err, "bad close")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptySeries)
	})
}

func TestWriteCSV(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: at, Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15, Volume: math.NaN()},
		{Time: at.Add(time.Hour), Open: 1.15, High: math.NaN(), Low: 1.1, Close: 1.12, Volume: 42},
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, s))
	assert.Equal(t, "time,open,high,low,close,volume\n"+
		"2024-01-01T00:00:00Z,1.1,1.2,1,1.15,\n"+
		"2024-01-01T01:00:00Z,1.15,,1.1,1.12,42\n", buf.String())

	back, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, math.IsNaN(back[1].High))
	assert.Equal(t, 42.0, back[1].Volume)
}

func TestResample(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var s Series
	for i := 0; i < 6; i++ {
		c := 1.0 + float64(i)*0.01
		s = append(s, Bar{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c - 0.005,
			High:   c + 0.01,
			Low:    c - 0.01,
			Close:  c,
			Volume: 100,
		})
	}

	out, err := Resample(s, 4*time.Hour)
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, base, first.Time)
	assert.InDelta(t, s[0].Open, first.Open, 1e-12)
	assert.InDelta(t, s[3].High, first.High, 1e-12)
	assert.InDelta(t, s[0].Low, first.Low, 1e-12)
	assert.InDelta(t, s[3].Close, first.Close, 1e-12)
	assert.Equal(t, 400.0, first.Volume)

	second := out[1]
	assert.Equal(t, base.Add(4*time.Hour), second.Time)
	assert.InDelta(t, s[5].Close, second.Close, 1e-12)
	assert.Equal(t, 200.0, second.Volume)

	t.Run("missing values propagate", func(t *testing.T) {
		gappy := append(Series(nil), s...)
		gappy[1].High = math.NaN()
		gappy[2].Volume = math.NaN()
		out, err := Resample(gappy, 4*time.Hour)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out[0].High))
		assert.True(t, math.IsNaN(out[0].Volume))
		assert.False(t, math.IsNaN(out[1].High))
	})

	t.Run("invalid width", func(t *testing.T) {
		_, err := Resample(s, 0)
		assert.Error(t, err)
	})
}
