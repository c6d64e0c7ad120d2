package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Empty(t *testing.T) {
	w := NewWindow(4)
	assert.Zero(t, w.Len())
	assert.Nil(t, w.Aggregate())
}

func TestWindow_EvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{100, 1, 2, 3} {
		w.Add(v)
	}

	assert.Equal(t, 3, w.Len())
	agg := w.Aggregate()
	require.NotNil(t, agg)
	assert.Equal(t, 1.0, agg.Min)
	assert.Equal(t, 3.0, agg.Max)
	assert.Equal(t, 6.0, agg.Sum)
	assert.Equal(t, 2.0, agg.P50)
}

func TestCalculatePercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{7}, 0.99, 7},
		{"median of four", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p100", []float64{1, 2, 3}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calculatePercentile(tt.values, tt.p), 1e-9)
		})
	}
}
