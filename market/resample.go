package market

import (
	"fmt"
	"math"
	"time"
)

// Resample aggregates s into buckets of width d aligned to the unix epoch
// (time.Truncate). Open is the first bar's open, close the last bar's close,
// high/low the extremes seen; a NaN high or low in any member makes the
// bucket's value NaN. Volume is summed and NaN if any member lacks it.
// Bucket timestamps are the bucket start.
func Resample(s Series, d time.Duration) (Series, error) {
	if d <= 0 {
		return nil, fmt.Errorf("resample width must be positive, got %s", d)
	}
	if len(s) == 0 {
		return nil, ErrEmptySeries
	}

	var out Series
	var cur Bar
	var start time.Time
	open := false

	for _, b := range s {
		bucket := b.Time.Truncate(d)
		if !open || !bucket.Equal(start) {
			if open {
				out = append(out, cur)
			}
			start = bucket
			cur = Bar{
				Time:   bucket,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}
			open = true
			continue
		}

		cur.High = extreme(cur.High, b.High, math.Max)
		cur.Low = extreme(cur.Low, b.Low, math.Min)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	out = append(out, cur)

	return out, nil
}

func extreme(a, b float64, pick func(float64, float64) float64) float64 {
	if Missing(a) || Missing(b) {
		return math.NaN()
	}
	return pick(a, b)
}
