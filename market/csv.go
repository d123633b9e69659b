package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102 150405",
}

// LoadCSV reads a bar file from disk. See ReadCSV for the format.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadCSV parses bars from CSV.
//
// With a header row, columns are matched by name (time|date|datetime|timestamp,
// open, high, low, close, volume) in any order. Without one the layout is
//
//	time,open,high,low,close[,volume]
//
// Empty cells and "NaN" become missing values. Timestamps may be RFC3339,
// "2006-01-02[ 15:04[:05]]", "20060102 150405" or unix seconds.
// The returned series is validated for ordering.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptySeries
	}
	if err != nil {
		return nil, err
	}

	cols, hasHeader := headerColumns(first)
	var out Series
	line := 1
	if !hasHeader {
		b, err := parseRow(first, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, b)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		b, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, b)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// columns maps a field to its index in a row; -1 means absent.
type columns struct {
	time, open, high, low, close, volume int
}

func headerColumns(row []string) (columns, bool) {
	c := columns{-1, -1, -1, -1, -1, -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time", "date", "datetime", "timestamp":
			c.time = i
		case "open", "o":
			c.open = i
		case "high", "h":
			c.high = i
		case "low", "l":
			c.low = i
		case "close", "c", "adj close":
			if c.close < 0 {
				c.close = i
			}
		case "volume", "vol", "v":
			c.volume = i
		}
	}
	if c.time >= 0 && c.close >= 0 {
		return c, true
	}
	return columns{0, 1, 2, 3, 4, 5}, false
}

func parseRow(row []string, c columns) (Bar, error) {
	if c.time >= len(row) {
		return Bar{}, fmt.Errorf("missing time column: %v", row)
	}
	t, err := parseTime(row[c.time])
	if err != nil {
		return Bar{}, err
	}

	b := Bar{Time: t}
	fields := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"open", c.open, &b.Open},
		{"high", c.high, &b.High},
		{"low", c.low, &b.Low},
		{"close", c.close, &b.Close},
		{"volume", c.volume, &b.Volume},
	}
	for _, f := range fields {
		v, err := cell(row, f.idx)
		if err != nil {
			return Bar{}, fmt.Errorf("bad %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return b, nil
}

func cell(row []string, idx int) (float64, error) {
	if idx < 0 || idx >= len(row) {
		return math.NaN(), nil
	}
	s := strings.TrimSpace(row[idx])
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

// WriteCSV writes s with a time,open,high,low,close,volume header that
// ReadCSV reads back. Missing values are written as empty cells.
func WriteCSV(w io.Writer, s Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range s {
		row := []string{
			b.Time.UTC().Format(time.RFC3339),
			formatCell(b.Open),
			formatCell(b.High),
			formatCell(b.Low),
			formatCell(b.Close),
			formatCell(b.Volume),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes s to path, replacing any existing file.
func SaveCSV(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func formatCell(v float64) string {
	if Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
