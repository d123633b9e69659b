// Package oanda downloads historical candles from the OANDA v20 REST API
// as bar series.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/fxsignal/market"
)

// MaxCount is the most candles the API returns per request.
const MaxCount = 5000

type Client struct {
	BaseURL string // e.g. https://api-fxpractice.oanda.com
	Token   string
	HTTP    *http.Client
}

func BaseURL(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "practice", "demo":
		return "https://api-fxpractice.oanda.com", nil
	case "live", "trade":
		return "https://api-fxtrade.oanda.com", nil
	default:
		return "", fmt.Errorf("unknown OANDA env %q (want practice|live)", env)
	}
}

type CandlesOptions struct {
	Instrument  string
	Granularity string // e.g. M1, H1, D
	Price       string // M, B or A

	From  time.Time // optional
	To    time.Time // optional
	Count int       // optional (used if >0)

	// IncludeIncomplete keeps the still-forming last candle.
	IncludeIncomplete bool
}

type ohlc struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type candlesResp struct {
	Instrument  string `json:"instrument"`
	Granularity string `json:"granularity"`
	Candles     []struct {
		Complete bool   `json:"complete"`
		Time     string `json:"time"`
		Volume   int    `json:"volume"`
		Mid      *ohlc  `json:"mid,omitempty"`
		Bid      *ohlc  `json:"bid,omitempty"`
		Ask      *ohlc  `json:"ask,omitempty"`
	} `json:"candles"`
}

// Candles downloads candles for opts as a bar series, oldest first.
// Volume is the API's tick volume.
func (c *Client) Candles(ctx context.Context, opts CandlesOptions) (market.Series, error) {
	if c.Token == "" {
		return nil, fmt.Errorf("oanda: missing token")
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("oanda: missing base url")
	}
	if opts.Instrument == "" {
		return nil, fmt.Errorf("oanda: missing instrument")
	}
	if opts.Granularity == "" {
		return nil, fmt.Errorf("oanda: missing granularity")
	}
	if opts.Count > MaxCount {
		return nil, fmt.Errorf("oanda: count %d exceeds %d", opts.Count, MaxCount)
	}
	price := strings.ToUpper(strings.TrimSpace(opts.Price))
	switch price {
	case "":
		price = "M"
	case "M", "B", "A":
	default:
		return nil, fmt.Errorf("oanda: price %q not supported; use M, B or A", opts.Price)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = fmt.Sprintf("/v3/instruments/%s/candles", market.NormalizeSymbol(opts.Instrument))

	q := u.Query()
	q.Set("granularity", opts.Granularity)
	q.Set("price", price)
	if opts.Count > 0 {
		q.Set("count", strconv.Itoa(opts.Count))
	} else {
		if !opts.From.IsZero() {
			q.Set("from", opts.From.UTC().Format(time.RFC3339Nano))
		}
		if !opts.To.IsZero() {
			q.Set("to", opts.To.UTC().Format(time.RFC3339Nano))
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("oanda candles http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var cr candlesResp
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("oanda: decode candles: %w", err)
	}

	out := make(market.Series, 0, len(cr.Candles))
	for _, cd := range cr.Candles {
		if !cd.Complete && !opts.IncludeIncomplete {
			continue
		}
		var px *ohlc
		switch price {
		case "M":
			px = cd.Mid
		case "B":
			px = cd.Bid
		case "A":
			px = cd.Ask
		}
		if px == nil {
			continue
		}

		t, err := time.Parse(time.RFC3339Nano, cd.Time)
		if err != nil {
			return nil, fmt.Errorf("oanda: candle time %q: %w", cd.Time, err)
		}
		b := market.Bar{Time: t.UTC(), Volume: float64(cd.Volume)}
		for _, f := range []struct {
			s   string
			dst *float64
		}{{px.O, &b.Open}, {px.H, &b.High}, {px.L, &b.Low}, {px.C, &b.Close}} {
			if *f.dst, err = parsePrice(f.s); err != nil {
				return nil, fmt.Errorf("oanda: candle %s: %w", cd.Time, err)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// parsePrice maps an empty field to a missing value.
func parsePrice(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
