package market

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barsAt(times ...time.Time) Series {
	s := make(Series, len(times))
	for i, t := range times {
		s[i] = Bar{Time: t, Open: 1, High: 1, Low: 1, Close: 1}
	}
	return s
}

func TestGapsDaily(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	// Mon, Tue, Fri, Mon: Wed+Thu missing midweek, Sat+Sun missing.
	s := barsAt(d(1), d(2), d(5), d(8))

	gaps := s.Gaps(24 * time.Hour)
	require.Len(t, gaps, 2)

	assert.Equal(t, 2, gaps[0].Index)
	assert.Equal(t, d(3), gaps[0].Start)
	assert.Equal(t, 2, gaps[0].Missing)
	assert.Equal(t, GapSuspicious, gaps[0].Kind)

	assert.Equal(t, 3, gaps[1].Index)
	assert.Equal(t, d(6), gaps[1].Start)
	assert.Equal(t, GapWeekend, gaps[1].Kind)

	st := s.GapStats(0)
	assert.Equal(t, GapStats{
		Bars:           4,
		Expected:       8,
		Missing:        4,
		GapCount:       2,
		WeekendGaps:    1,
		SuspiciousGaps: 1,
		LongestGap:     2,
		LongestGapKind: GapSuspicious,
	}, st)
}

func TestGapsIntraday(t *testing.T) {
	h := func(n int) time.Time { return time.Date(2024, 1, 2, n, 0, 0, 0, time.UTC) }
	s := barsAt(h(0), h(1), h(3), h(4))

	gaps := s.Gaps(0)
	require.Len(t, gaps, 1)
	assert.Equal(t, GapMinor, gaps[0].Kind)
	assert.Equal(t, 1, gaps[0].Missing)

	m := func(n int) time.Time { return time.Date(2024, 1, 2, 10, n, 0, 0, time.UTC) }
	gaps = barsAt(m(0), m(1), m(15)).Gaps(time.Minute)
	require.Len(t, gaps, 1)
	assert.Equal(t, GapSuspicious, gaps[0].Kind)
	assert.Equal(t, 13, gaps[0].Missing)
}

func TestGapsNone(t *testing.T) {
	assert.Empty(t, Series{}.Gaps(0))
	assert.Empty(t, barsAt(time.Now()).Gaps(0))
	assert.Zero(t, Series{}.GapStats(time.Hour).GapCount)
}

func TestPrintStats(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	var buf bytes.Buffer
	barsAt(d(1), d(2), d(5)).PrintStats(&buf, 0)

	out := buf.String()
	assert.Contains(t, out, "Bars:        3 (D1)")
	assert.Contains(t, out, "Coverage:    60.00% (2 missing)")
	assert.Contains(t, out, "Gaps:        1 (weekend 0, suspicious 1)")
}
