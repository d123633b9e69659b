package market

import (
	"fmt"
	"io"
	"time"
)

// Gap kinds.
const (
	GapWeekend    = "weekend"
	GapSuspicious = "suspicious"
	GapMinor      = "minor"
)

// Gap is a run of missing bars between two consecutive bars of a series.
type Gap struct {
	Index   int       // index of the bar after the gap
	Start   time.Time // first missing bar
	Missing int       // number of missing intervals
	Kind    string
}

type GapStats struct {
	Bars           int
	Expected       int
	Missing        int
	GapCount       int
	WeekendGaps    int
	SuspiciousGaps int
	LongestGap     int
	LongestGapKind string
}

// Gaps lists the holes in s assuming bars every interval. A zero interval
// uses s.Interval().
func (s Series) Gaps(interval time.Duration) []Gap {
	if interval <= 0 {
		interval = s.Interval()
	}
	if interval <= 0 {
		return nil
	}

	var gaps []Gap
	for i := 1; i < len(s); i++ {
		missing := int(s[i].Time.Sub(s[i-1].Time)/interval) - 1
		if missing <= 0 {
			continue
		}
		start := s[i-1].Time.Add(interval)
		gaps = append(gaps, Gap{
			Index:   i,
			Start:   start,
			Missing: missing,
			Kind:    classifyGap(start, time.Duration(missing)*interval, missing),
		})
	}
	return gaps
}

// classifyGap treats day-plus gaps starting Fri/Sat/Sun (UTC) as the FX
// weekend; other day-plus gaps, or ten or more missing bars, are suspicious.
func classifyGap(start time.Time, span time.Duration, missing int) string {
	if span >= 24*time.Hour {
		switch start.UTC().Weekday() {
		case time.Friday, time.Saturday, time.Sunday:
			return GapWeekend
		}
		return GapSuspicious
	}
	if missing >= 10 {
		return GapSuspicious
	}
	return GapMinor
}

// GapStats summarises s.Gaps(interval).
func (s Series) GapStats(interval time.Duration) GapStats {
	st := GapStats{Bars: len(s)}
	for _, g := range s.Gaps(interval) {
		st.GapCount++
		st.Missing += g.Missing
		if g.Missing > st.LongestGap {
			st.LongestGap = g.Missing
			st.LongestGapKind = g.Kind
		}
		switch g.Kind {
		case GapWeekend:
			st.WeekendGaps++
		case GapSuspicious:
			st.SuspiciousGaps++
		}
	}
	st.Expected = st.Bars + st.Missing
	return st
}

// PrintStats writes a short data quality summary of s.
func (s Series) PrintStats(w io.Writer, interval time.Duration) {
	if interval <= 0 {
		interval = s.Interval()
	}
	st := s.GapStats(interval)
	start, end := s.Span()

	tf, err := TimeframeName(interval)
	if err != nil {
		tf = interval.String()
	}
	fmt.Fprintf(w, "Bars:        %d (%s)\n", st.Bars, tf)
	if st.Bars > 0 {
		fmt.Fprintf(w, "Span:        %s .. %s\n", start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}
	if st.Expected > 0 {
		fmt.Fprintf(w, "Coverage:    %.2f%% (%d missing)\n", 100*float64(st.Bars)/float64(st.Expected), st.Missing)
	}
	fmt.Fprintf(w, "Gaps:        %d (weekend %d, suspicious %d)\n", st.GapCount, st.WeekendGaps, st.SuspiciousGaps)
	if st.GapCount > 0 {
		fmt.Fprintf(w, "Longest gap: %d bars (%s)\n", st.LongestGap, st.LongestGapKind)
	}
}
