package strategies

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossedAbove(t *testing.T) {
	assert.True(t, crossedAbove([]float64{1, 2}, []float64{1.5, 1.5}), "upward cross")
	assert.True(t, crossedAbove([]float64{1, 2}, []float64{1, 1}), "equality on the previous bar still arms the cross")

	assert.False(t, crossedAbove([]float64{2, 2}, []float64{1, 1}), "already above, no retrigger")
	assert.False(t, crossedAbove([]float64{1, 1.5}, []float64{1.5, 1.5}), "equality on the current bar is not a cross")
	assert.False(t, crossedAbove([]float64{2, 1}, []float64{1.5, 1.5}), "downward move")
	assert.False(t, crossedAbove([]float64{2}, []float64{1, 1}), "too short")
	assert.False(t, crossedAbove(nil, nil), "empty")
}

func TestCrossedBelow(t *testing.T) {
	assert.True(t, crossedBelow([]float64{2, 1}, []float64{1.5, 1.5}), "downward cross")
	assert.True(t, crossedBelow([]float64{2, 1}, []float64{2, 2}), "equality on the previous bar still arms the cross")

	assert.False(t, crossedBelow([]float64{1, 1}, []float64{2, 2}), "already below, no retrigger")
	assert.False(t, crossedBelow([]float64{1, 2}, []float64{1.5, 1.5}), "upward move")
}

func TestCrossUsesSliceEnds(t *testing.T) {
	// Warm-up lengths differ between an indicator and its smoothing; only
	// the two most recent values of each slice matter.
	long := []float64{9, 9, 9, 9, 1, 2}
	short := []float64{1.5, 1.5}
	assert.True(t, crossedAbove(long, short))
}

func TestLast(t *testing.T) {
	assert.Equal(t, 3.0, last([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, last(nil))
}

func TestStochRSIBounds(t *testing.T) {
	closes := make([]float64, 60)
	price := 100.0
	for i := range closes {
		// Alternating gains and losses keep the RSI range wide.
		if i%3 == 2 {
			price -= 2
		} else {
			price += 3
		}
		closes[i] = price
	}

	k, d := stochRSI(closes, 14, 14, 3, 3)
	require.NotEmpty(t, k)
	require.NotEmpty(t, d)

	for _, v := range k {
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	for _, v := range d {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}
