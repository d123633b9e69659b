package strategies

import (
	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/market"
)

// Confluence is the live form of the decision: it owns an indicator engine
// and produces the signal for each bar as it closes. Feeding a series bar by
// bar yields exactly LabelSeries(Compute(series)).
//
// Not safe for concurrent use.
type Confluence struct {
	cfg    Config
	engine *indicators.Engine
	warm   int
	seen   int
	last   indicators.EnrichedBar
}

func NewConfluence(cfg Config) (*Confluence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Confluence{
		cfg:    cfg,
		engine: indicators.NewEngine(cfg.Indicators),
		warm:   cfg.Indicators.Warmup(),
	}, nil
}

func (c *Confluence) Name() string {
	if c.cfg.RequireMACD {
		return "CONFLUENCE+MACD"
	}
	return "CONFLUENCE"
}

func (c *Confluence) Config() Config { return c.cfg }

func (c *Confluence) Reset() {
	c.engine.Reset()
	c.seen = 0
	c.last = indicators.EnrichedBar{}
}

// Ready reports whether every lookback window has been filled.
func (c *Confluence) Ready() bool { return c.seen >= c.warm }

// Last returns the most recent enriched bar.
func (c *Confluence) Last() indicators.EnrichedBar { return c.last }

// Update consumes the next bar. A bar without a usable close is rejected and
// does not advance the state.
func (c *Confluence) Update(b market.Bar) (Signal, error) {
	if err := indicators.CheckClose(c.seen, b); err != nil {
		return Signal{}, err
	}

	c.last = c.engine.Update(b)
	i := c.seen
	c.seen++
	if i < c.warm {
		return waitSignal(c.last), nil
	}
	return decide(c.last, c.cfg), nil
}
