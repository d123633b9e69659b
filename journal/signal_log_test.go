package journal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rustyeddy/fxsignal/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalLogBounded(t *testing.T) {
	l := NewSignalLog(3)
	for i := 0; i < 5; i++ {
		l.Append(fmt.Sprintf("S%d", i), strategies.Signal{Entry: float64(i)})
	}
	assert.Equal(t, 3, l.Len())

	all := l.Recent(0)
	require.Len(t, all, 3)
	assert.Equal(t, "S2", all[0].Symbol)
	assert.Equal(t, "S4", all[2].Symbol)
	assert.False(t, all[0].LoggedAt.IsZero())

	last := l.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, 4.0, last[0].Signal.Entry)

	assert.Len(t, l.Recent(10), 3)
}

func TestSignalLogForSymbol(t *testing.T) {
	l := NewSignalLog(0)
	l.Append("EURUSD", strategies.Signal{Action: strategies.Buy})
	l.Append("GBPUSD", strategies.Signal{Action: strategies.Sell})
	l.Append("EURUSD", strategies.Signal{Action: strategies.Hold})

	eu := l.ForSymbol("EURUSD")
	require.Len(t, eu, 2)
	assert.Equal(t, strategies.Buy, eu[0].Signal.Action)
	assert.Equal(t, strategies.Hold, eu[1].Signal.Action)
	assert.Empty(t, l.ForSymbol("USDJPY"))
}

func TestSignalLogConcurrent(t *testing.T) {
	l := NewSignalLog(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Append(fmt.Sprintf("G%d", g), strategies.Signal{})
				_ = l.Recent(5)
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}
