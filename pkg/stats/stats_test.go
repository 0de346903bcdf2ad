package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	values := []float64{50000, 1000, 1100, 1050, 1150}
	assert.Equal(t, 1050.0, Quantile(values, 0.25))
	assert.Equal(t, 1150.0, Quantile(values, 0.75))
	assert.Equal(t, 1000.0, Quantile(values, 0))
	assert.Equal(t, 50000.0, Quantile(values, 1))

	// interpolated between ranks
	assert.InDelta(t, 1.75, Quantile([]float64{1, 2, 3, 4}, 0.25), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))

	// input order is preserved
	assert.Equal(t, 50000.0, values[0])
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 4000.0, Median([]float64{3000, 4000, 5000}))
}

func TestMode(t *testing.T) {
	assert.Equal(t, 1955.0, Mode([]float64{1960, 1955, 1955, 1970}))
	// ties go to the smallest value
	assert.Equal(t, 1950.0, Mode([]float64{1970, 1950, 1970, 1950}))
	assert.True(t, math.IsNaN(Mode(nil)))
}

func TestRoundHalfEven(t *testing.T) {
	assert.Equal(t, 2.0, RoundHalfEven(2.5, 0))
	assert.Equal(t, 4.0, RoundHalfEven(3.5, 0))
	assert.Equal(t, 0.12, RoundHalfEven(0.125, 2))
	assert.Equal(t, 33.33, RoundHalfEven(100.0/3, 2))
	assert.True(t, math.IsNaN(RoundHalfEven(math.NaN(), 2)))
}
