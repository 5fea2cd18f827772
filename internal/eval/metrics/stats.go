package metrics

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Mean averages values. An empty input has no mean and gives NaN.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// meanNonZero averages values, treating zeros as missing
func meanNonZero(values []float64) float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 {
			kept = append(kept, v)
		}
	}
	return Mean(kept)
}

// FormatFloat renders a report value: "nan" for undefined results, and
// integral values keep a trailing ".0" so 1 prints as 1.0.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if !math.IsInf(v, 0) && v == math.Trunc(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
