package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxsignal/market"
)

// Pivot returns the classic single-bar pivot with its first resistance and
// support: pivot = (H+L+C)/3, r1 = 2*pivot - L, s1 = 2*pivot - H.
// Missing high or low yields NaN for all three.
func Pivot(b market.Bar) (pivot, r1, s1 float64) {
	if market.Missing(b.High) || market.Missing(b.Low) {
		return nan, nan, nan
	}
	pivot = (b.High + b.Low + b.Close) / 3
	return pivot, 2*pivot - b.Low, 2*pivot - b.High
}

// VolumeMA is a streaming simple average of bar volume. Any bar without
// volume inside the window makes the value NaN.
type VolumeMA struct {
	period int
	w      *window
}

func NewVolumeMA(period int) *VolumeMA {
	return &VolumeMA{period: period, w: newWindow(period)}
}

func (v *VolumeMA) Name() string        { return fmt.Sprintf("VMA(%d)", v.period) }
func (v *VolumeMA) Warmup() int         { return v.period }
func (v *VolumeMA) Reset()              { v.w.reset() }
func (v *VolumeMA) Update(b market.Bar) { v.w.push(b.Volume) }
func (v *VolumeMA) Ready() bool         { return v.w.full() && v.w.nans == 0 }
func (v *VolumeMA) Value() float64      { return v.w.mean() }
