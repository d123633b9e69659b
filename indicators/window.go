package indicators

import "math"

// window is a fixed-size ring of the most recent values. NaN entries are
// counted so a statistic over a window holding any NaN is itself NaN.
// Statistics are recomputed from the buffer on every call; there are no
// running sums.
type window struct {
	buf  []float64
	pos  int
	n    int
	nans int
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size)}
}

func (w *window) push(x float64) {
	if w.n == len(w.buf) {
		if isNaN(w.buf[w.pos]) {
			w.nans--
		}
	} else {
		w.n++
	}
	w.buf[w.pos] = x
	if isNaN(x) {
		w.nans++
	}
	w.pos = (w.pos + 1) % len(w.buf)
}

func (w *window) full() bool { return w.n == len(w.buf) }

func (w *window) reset() {
	w.pos, w.n, w.nans = 0, 0, 0
}

func (w *window) mean() float64 {
	if !w.full() || w.nans > 0 {
		return nan
	}
	sum := 0.0
	for _, v := range w.buf {
		sum += v
	}
	return sum / float64(len(w.buf))
}

// stddev is the sample standard deviation (n-1 denominator).
func (w *window) stddev() float64 {
	m := w.mean()
	if isNaN(m) || len(w.buf) < 2 {
		return nan
	}
	ss := 0.0
	for _, v := range w.buf {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(w.buf)-1))
}
