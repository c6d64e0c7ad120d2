package metrics

import (
	"sort"
	"sync"
)

// DefaultWindowSize is about five seconds of frames at 60fps
const DefaultWindowSize = 300

// Aggregation contains aggregated statistics over a window of samples
type Aggregation struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// Window is a fixed-size ring of the most recent samples
type Window struct {
	mu      sync.RWMutex
	samples []float64
	next    int
	full    bool
}

// NewWindow creates a window holding up to size samples
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{samples: make([]float64, size)}
}

// Add records a sample, evicting the oldest when full
func (w *Window) Add(v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples[w.next] = v
	w.next++
	if w.next == len(w.samples) {
		w.next = 0
		w.full = true
	}
}

// Len returns the number of samples held
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.full {
		return len(w.samples)
	}
	return w.next
}

// Aggregate returns statistics over the held samples, nil when empty
func (w *Window) Aggregate() *Aggregation {
	w.mu.RLock()
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	values := make([]float64, n)
	copy(values, w.samples[:n])
	w.mu.RUnlock()

	return calculateAggregation(values)
}

// calculateAggregation calculates aggregated statistics from raw values
func calculateAggregation(values []float64) *Aggregation {
	if len(values) == 0 {
		return nil
	}

	sort.Float64s(values)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	count := int64(len(values))

	return &Aggregation{
		Count: count,
		Sum:   sum,
		Min:   values[0],
		Max:   values[len(values)-1],
		Mean:  sum / float64(count),
		P50:   calculatePercentile(values, 0.50),
		P95:   calculatePercentile(values, 0.95),
		P99:   calculatePercentile(values, 0.99),
	}
}

// calculatePercentile interpolates the percentile from a sorted slice
func calculatePercentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0.0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	index := p * float64(len(sortedValues)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedValues) {
		return sortedValues[len(sortedValues)-1]
	}

	weight := index - float64(lower)
	return sortedValues[lower]*(1-weight) + sortedValues[upper]*weight
}
