package journal

import (
	"sync"
	"time"

	"github.com/rustyeddy/fxsignal/strategies"
)

// DefaultSignalLogSize is the capacity used when NewSignalLog gets n <= 0.
const DefaultSignalLogSize = 1000

// SignalEntry is one emitted signal.
type SignalEntry struct {
	Symbol   string
	Signal   strategies.Signal
	LoggedAt time.Time
}

// SignalLog is a bounded in-memory history of emitted signals, oldest
// dropped first. It is never persisted. Safe for concurrent use.
type SignalLog struct {
	mu      sync.Mutex
	entries []SignalEntry
	start   int
	size    int
	now     func() time.Time
}

func NewSignalLog(n int) *SignalLog {
	if n <= 0 {
		n = DefaultSignalLogSize
	}
	return &SignalLog{entries: make([]SignalEntry, n), now: time.Now}
}

// Append records sig for symbol.
func (l *SignalLog) Append(symbol string, sig strategies.Signal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := SignalEntry{Symbol: symbol, Signal: sig, LoggedAt: l.now()}
	if l.size < len(l.entries) {
		l.entries[(l.start+l.size)%len(l.entries)] = e
		l.size++
		return
	}
	l.entries[l.start] = e
	l.start = (l.start + 1) % len(l.entries)
}

func (l *SignalLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Recent returns up to n entries, oldest first. n <= 0 returns all.
func (l *SignalLog) Recent(n int) []SignalEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > l.size {
		n = l.size
	}
	out := make([]SignalEntry, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[(l.start+l.size-n+i)%len(l.entries)]
	}
	return out
}

// ForSymbol returns every retained entry for symbol, oldest first.
func (l *SignalLog) ForSymbol(symbol string) []SignalEntry {
	var out []SignalEntry
	for _, e := range l.Recent(0) {
		if e.Symbol == symbol {
			out = append(out, e)
		}
	}
	return out
}
