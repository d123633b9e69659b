package strategies

import (
	"strings"
	"time"
)

// Action is the discrete recommendation attached to a signal.
type Action int

const (
	// Hold means enough data but no confluence.
	Hold Action = iota
	Buy
	Sell
	// Wait means a required indicator is still undefined.
	Wait
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Wait:
		return "WAIT"
	default:
		return "HOLD"
	}
}

// ParseAction is the inverse of Action.String. Case and surrounding space
// are ignored.
func ParseAction(s string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, true
	case "SELL":
		return Sell, true
	case "WAIT":
		return Wait, true
	case "HOLD":
		return Hold, true
	}
	return Hold, false
}

// Signal is the decision for one bar. It is never modified after creation.
//
// StopLoss and TakeProfit are nil unless Action is Buy or Sell.
type Signal struct {
	Time          time.Time
	Action        Action
	Entry         float64
	StopLoss      *float64
	TakeProfit    *float64
	Confidence    float64
	Reason        string
	Confirmations Confirmations
}

// IsTrade reports whether the signal opens or closes a position.
func (s Signal) IsTrade() bool {
	return s.Action == Buy || s.Action == Sell
}

func ptr(v float64) *float64 { return &v }
