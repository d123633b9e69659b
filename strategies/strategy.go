// Package strategies turns enriched bars into trade signals.
package strategies

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rustyeddy/fxsignal/market"
)

// Strategy consumes closed bars one at a time and returns a signal for each.
type Strategy interface {
	Name() string
	Reset()
	Ready() bool
	Update(b market.Bar) (Signal, error)
}

// Factory builds a strategy from a configuration.
type Factory func(cfg Config) (Strategy, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

func init() {
	Register("confluence", func(cfg Config) (Strategy, error) {
		return wrap(NewConfluence(cfg))
	})
	Register("confluence-macd", func(cfg Config) (Strategy, error) {
		return wrap(NewConfluence(cfg.WithRequireMACD(true)))
	})
	Register("ema-cross", func(cfg Config) (Strategy, error) {
		return wrap(NewEMACross(EMACrossConfigFrom(cfg)))
	})
	Register("ema-cross-adx", func(cfg Config) (Strategy, error) {
		c := EMACrossConfigFrom(cfg)
		c.ADXPeriod, c.ADXThreshold = 14, 25
		return wrap(NewEMACross(c))
	})
	Register("ma-rsi", func(cfg Config) (Strategy, error) {
		return wrap(NewMARSI(cfg))
	})
	Register("sma-cross", func(cfg Config) (Strategy, error) {
		if err := cfg.MA.Validate(); err != nil {
			return nil, err
		}
		c := EMACrossConfigFrom(cfg)
		c.FastPeriod, c.SlowPeriod, c.Simple = cfg.MA.Fast, cfg.MA.Slow, true
		return wrap(NewEMACross(c))
	})
	Register("noop", func(cfg Config) (Strategy, error) {
		return NoopStrategy{}, nil
	})
}

// wrap keeps a failed constructor from returning a non-nil interface
// holding a nil pointer.
func wrap(s Strategy, err error) (Strategy, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Register makes a strategy available by name. Names are case-insensitive;
// registering an existing name replaces it.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[normalize(name)] = f
}

// New builds the named strategy.
func New(name string, cfg Config) (Strategy, error) {
	mu.RLock()
	f, ok := registry[normalize(name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(cfg)
}

// Names lists registered strategies in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NoopStrategy never trades. It is a baseline for backtests.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "NOOP" }
func (NoopStrategy) Reset()       {}
func (NoopStrategy) Ready() bool  { return true }

func (NoopStrategy) Update(b market.Bar) (Signal, error) {
	return Signal{Time: b.Time, Action: Hold, Entry: b.Close, Reason: "noop"}, nil
}
