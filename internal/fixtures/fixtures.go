// Package fixtures builds deterministic bar series for tests.
package fixtures

import (
	"math"
	"math/rand"
	"time"

	"github.com/rustyeddy/fxsignal/market"
)

// Start is the timestamp of the first bar in every fixture.
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Daily spaces bars one day apart.
const Daily = 24 * time.Hour

// FromCloses builds daily bars around the given closes. High and low sit
// half a spread above and below the close, open is the previous close.
func FromCloses(closes []float64, spread float64) market.Series {
	s := make(market.Series, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		s[i] = market.Bar{
			Time:   Start.Add(time.Duration(i) * Daily),
			Open:   open,
			High:   c + spread/2,
			Low:    c - spread/2,
			Close:  c,
			Volume: math.NaN(),
		}
	}
	return s
}

// Trend returns n bars whose close moves by step per bar, the first close
// being start+step.
func Trend(n int, start, step float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i+1)
	}
	return FromCloses(closes, math.Abs(step))
}

// Leg is N closes each moving by Step from the previous one.
type Leg struct {
	N    int
	Step float64
}

// Legs chains straight legs starting from start, which is not itself a bar.
func Legs(start, spread float64, legs ...Leg) market.Series {
	var closes []float64
	c := start
	for _, l := range legs {
		for i := 0; i < l.N; i++ {
			c += l.Step
			closes = append(closes, c)
		}
	}
	return FromCloses(closes, spread)
}

// Flat returns n bars with a constant close and no range.
func Flat(n int, c float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = c
	}
	return FromCloses(closes, 0)
}

// Oscillating alternates the close by +/- amp around mid.
func Oscillating(n int, mid, amp float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = mid + amp
		} else {
			closes[i] = mid - amp
		}
	}
	return FromCloses(closes, 2*amp)
}

// RandomWalk returns n bars of a seeded random walk with random ranges and
// volumes.
func RandomWalk(n int, seed int64, start, vol float64) market.Series {
	r := rand.New(rand.NewSource(seed))
	s := make(market.Series, n)
	c := start
	for i := range s {
		prev := c
		c += r.NormFloat64() * vol
		if c <= 0 {
			c = vol
		}
		hi := math.Max(prev, c) + r.Float64()*vol
		lo := math.Min(prev, c) - r.Float64()*vol
		s[i] = market.Bar{
			Time:   Start.Add(time.Duration(i) * time.Hour),
			Open:   prev,
			High:   hi,
			Low:    lo,
			Close:  c,
			Volume: 1000 + r.Float64()*500,
		}
	}
	return s
}
