package stats

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of data using linear interpolation between
// closest ranks (position (n-1)*p over the sorted data). NaN values are ignored.
// Returns NaN when no finite data remains or p is outside [0, 1].
func Quantile(data []float64, p float64) float64 {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return math.NaN()
	}

	sorted := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	pos := float64(len(sorted)-1) * p
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)] + frac*(sorted[int(hi)]-sorted[int(lo)])
}

// Fences holds the quartiles of a sample and its Tukey whiskers.
type Fences struct {
	Q1    float64
	Q3    float64
	IQR   float64
	Lower float64 // Q1 - 1.5*IQR
	Upper float64 // Q3 + 1.5*IQR
}

// TukeyFences computes the quartiles, interquartile range and 1.5*IQR whiskers.
func TukeyFences(data []float64) Fences {
	q1 := Quantile(data, 0.25)
	q3 := Quantile(data, 0.75)
	iqr := q3 - q1
	return Fences{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - 1.5*iqr,
		Upper: q3 + 1.5*iqr,
	}
}
