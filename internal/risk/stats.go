package risk

import (
	"fmt"
	"math"
	"sort"
)

// Mean returns the arithmetic mean. The caller guarantees data is non-empty.
func Mean(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev returns the sample standard deviation with Bessel's correction
// (ddof=1). A single observation has zero deviation.
func StdDev(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0.0
	}
	mean := Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// Quantile returns the empirical quantile with linear interpolation between
// order statistics: the quantile at p sits at fractional index p*(n-1) of
// the sorted sample.
func Quantile(data []float64, p float64) (float64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("quantile of empty sample")
	}
	if p < 0.0 || p > 1.0 {
		return 0, fmt.Errorf("quantile probability must be in [0, 1], got %v", p)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}

// tailMean returns the mean of the sample values at or beyond the quantile
// q on the given tail. The quantile itself may interpolate between order
// statistics, so the tail is selected by comparison, falling back to the
// single nearest observation when the strict tail is empty.
func tailMean(data []float64, q float64, tail Tail) float64 {
	sum := 0.0
	count := 0
	for _, v := range data {
		if (tail == TailLeft && v <= q) || (tail == TailRight && v >= q) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return q
	}
	return sum / float64(count)
}
