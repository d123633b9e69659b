// Package indicators computes technical indicators over bar series.
//
// Every indicator is streaming and causal: it sees one closed bar at a time
// and never looks ahead. Compute replays a whole series through an Engine
// to produce one EnrichedBar per input bar.
package indicators

import (
	"math"

	"github.com/rustyeddy/fxsignal/market"
)

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use for live updates and batch replays.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many bars are needed before Ready() is true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool
}

type ValueF64 interface {
	// Value returns the current value, or NaN until Ready().
	Value() float64
}

var nan = math.NaN()

func isNaN(v float64) bool { return math.IsNaN(v) }
