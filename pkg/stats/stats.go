// pkg/stats/stats.go
package stats

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Quantile returns the p-quantile of values, interpolating linearly between
// the closest ranks at position p·(n−1). NaN when values is empty.
func Quantile(values []float64, p float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Quartiles returns Q1 and Q3 of values
func Quartiles(values []float64) (q1, q3 float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantileSorted(sorted, 0.25), quantileSorted(sorted, 0.75)
}

// Median returns the middle value, or the mean of the two middle values
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Mode returns the most frequent value; ties go to the smallest. NaN when values is empty.
func Mode(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := math.NaN(), 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

// RoundHalfEven rounds x to places decimal places, ties to even
func RoundHalfEven(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).RoundBank(places).Float64()
	return f
}
