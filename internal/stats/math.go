package stats

import (
	"math"
	"slices"
)

// Summary is the reduction of one metric's trial values for one period.
type Summary struct {
	Mean float64 `json:"mean"`
	P10  float64 `json:"p10"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	N    int     `json:"n"`
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	// Running mean: stays within [min, max] where a plain sum would overflow.
	m := 0.0
	for i, v := range values {
		m += (v - m) / float64(i+1)
	}
	return m
}

// Percentile returns the f-quantile (0 <= f <= 1) of values using linear interpolation
// between order statistics (Hyndman-Fan type 7): rank r = f*(n-1), interpolated
// between v[floor(r)] and v[ceil(r)]. The input is not modified.
func Percentile(values []float64, f float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	slices.Sort(sorted)
	return percentileSorted(sorted, f)
}

func percentileSorted(sorted []float64, f float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	switch {
	case f <= 0:
		return sorted[0]
	case f >= 1:
		return sorted[n-1]
	}

	r := f * float64(n-1)
	lo := int(math.Floor(r))
	hi := int(math.Ceil(r))
	if lo == hi {
		return sorted[lo]
	}
	frac := r - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Summarize computes mean, P10, P50 and P90 of values. It sorts a private copy, so
// calling it twice on the same slice yields identical results.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	slices.Sort(sorted)

	return Summary{
		Mean: Mean(values),
		P10:  percentileSorted(sorted, 0.10),
		P50:  percentileSorted(sorted, 0.50),
		P90:  percentileSorted(sorted, 0.90),
		N:    n,
	}
}
