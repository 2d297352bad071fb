package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/salesforecast/timeseries"
)

// constantTolerance is the share of the raw sum of squares below which a
// series is treated as constant.
const constantTolerance = 1e-12

// ACF calculates the Autocorrelation Function for the given series.
// Returns ACF values for lags 0 to maxLag, or nil for a constant series.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	if maxLag >= series.Len() {
		maxLag = series.Len() - 1
	}
	if maxLag < 0 {
		return nil
	}

	lags := make([]int, maxLag+1)
	for k := range lags {
		lags[k] = k
	}
	return ACFAt(series, lags...)
}

// ACFAt returns the sample autocorrelation at each requested lag. Lags
// outside [0, n) yield 0. The result is nil for an empty or (numerically)
// constant series.
func ACFAt(series *timeseries.Series, lags ...int) []float64 {
	n := series.Len()
	if n == 0 {
		return nil
	}

	centred := make([]float64, n)
	copy(centred, series.Values)
	floats.AddConst(-stat.Mean(centred, nil), centred)

	variance := floats.Dot(centred, centred)
	if variance == 0 || variance <= constantTolerance*floats.Dot(series.Values, series.Values) {
		return nil
	}

	acf := make([]float64, len(lags))
	for i, k := range lags {
		if k < 0 || k >= n {
			continue
		}
		acf[i] = floats.Dot(centred[k:], centred[:n-k]) / variance
	}
	return acf
}
