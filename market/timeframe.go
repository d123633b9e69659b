package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ParseTimeframe accepts broker style names ("M15", "H4", "D1", "W1") and
// duration style names ("15m", "4h", "1d", "1w").
func ParseTimeframe(tf string) (time.Duration, error) {
	s := strings.TrimSpace(tf)
	if s == "" {
		return 0, fmt.Errorf("empty timeframe")
	}

	var unit, num string
	switch {
	case s[0] >= '0' && s[0] <= '9':
		unit = strings.ToLower(s[len(s)-1:])
		num = s[:len(s)-1]
	default:
		unit = strings.ToLower(s[:1])
		num = s[1:]
		if strings.EqualFold(s, "MN1") {
			unit, num = "mo", "1"
		}
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported timeframe string: %s", tf)
	}

	var d time.Duration
	switch unit {
	case "s":
		d = time.Second
	case "m":
		d = time.Minute
	case "h":
		d = time.Hour
	case "d":
		d = day
	case "w":
		d = 7 * day
	case "mo":
		d = 30 * day
	default:
		return 0, fmt.Errorf("unsupported timeframe string: %s", tf)
	}
	return time.Duration(n) * d, nil
}

// TimeframeName renders d in broker style, e.g. 4h -> "H4".
func TimeframeName(d time.Duration) (string, error) {
	sec := int64(d / time.Second)
	if sec <= 0 || d%time.Second != 0 {
		return "", fmt.Errorf("invalid timeframe: %s", d)
	}

	switch {
	case sec < 60:
		return fmt.Sprintf("S%d", sec), nil
	case sec < 3600 && sec%60 == 0:
		return fmt.Sprintf("M%d", sec/60), nil
	case sec < 86400 && sec%3600 == 0:
		return fmt.Sprintf("H%d", sec/3600), nil
	case sec%86400 == 0:
		days := sec / 86400
		if days == 7 {
			return "W1", nil
		}
		if days == 30 {
			return "MN1", nil
		}
		return fmt.Sprintf("D%d", days), nil
	}
	return "", fmt.Errorf("cannot map timeframe: %d seconds", sec)
}

// Interval estimates a series' bar width as the smallest gap between
// consecutive bars. It returns 0 for series shorter than two bars.
func (s Series) Interval() time.Duration {
	var min time.Duration
	for i := 1; i < len(s); i++ {
		gap := s[i].Time.Sub(s[i-1].Time)
		if gap > 0 && (min == 0 || gap < min) {
			min = gap
		}
	}
	return min
}
