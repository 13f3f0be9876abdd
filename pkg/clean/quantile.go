package clean

import (
	"fmt"
	"math"
	"sort"
)

// Quantile returns the p-quantile of values with linear interpolation:
// for sorted values the position is p*(n-1), interpolated between the two
// nearest ranks when fractional. values is not modified.
func Quantile(values []float64, p float64) (float64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidPercentile, p)
	}
	if len(values) == 0 {
		return 0, ErrNoValidData
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}
