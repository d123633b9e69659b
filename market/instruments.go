package market

import (
	"strings"
)

// InstrumentMeta describes how prices of a currency pair are quoted.
type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int
	// DisplayPrecision is the number of decimals quoted by brokers.
	DisplayPrecision int
}

// DefaultPrecision is used for symbols not in Instruments.
const DefaultPrecision = 5

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": pair("EUR", "USD", -4),
	"GBP_USD": pair("GBP", "USD", -4),
	"AUD_USD": pair("AUD", "USD", -4),
	"NZD_USD": pair("NZD", "USD", -4),
	"USD_CAD": pair("USD", "CAD", -4),
	"USD_CHF": pair("USD", "CHF", -4),
	"EUR_GBP": pair("EUR", "GBP", -4),
	"USD_JPY": pair("USD", "JPY", -2),
	"EUR_JPY": pair("EUR", "JPY", -2),
	"GBP_JPY": pair("GBP", "JPY", -2),
}

func pair(base, quote string, pip int) InstrumentMeta {
	return InstrumentMeta{
		Name:             base + "_" + quote,
		BaseCurrency:     base,
		QuoteCurrency:    quote,
		PipLocation:      pip,
		DisplayPrecision: -pip + 1,
	}
}

// NormalizeSymbol maps "eurusd", "EUR/USD" and "EUR_USD=X" style names to
// the canonical "EUR_USD" form. Names that are not six-letter pairs are
// upper-cased and returned as is.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "=X")
	letters := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, s)
	if len(letters) == 6 {
		return letters[:3] + "_" + letters[3:]
	}
	return s
}

// LookupInstrument returns the metadata for symbol in any accepted spelling.
func LookupInstrument(symbol string) (InstrumentMeta, bool) {
	m, ok := Instruments[NormalizeSymbol(symbol)]
	return m, ok
}

// Precision returns the number of decimals used to display prices of symbol.
func Precision(symbol string) int {
	if m, ok := LookupInstrument(symbol); ok {
		return m.DisplayPrecision
	}
	return DefaultPrecision
}
