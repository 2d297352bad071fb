// Package forecast produces dated point and interval forecasts from a
// selected SARIMA order.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/salesforecast/sarima"
	"github.com/sartorproj/salesforecast/timeseries"
)

// ErrForecast wraps every fit or predict failure of the generator.
var ErrForecast = errors.New("forecast failed")

// Point is one forecasted period. All values are floored at zero.
type Point struct {
	Period time.Time
	Mean   float64
	Lower  float64
	Upper  float64
}

// Result is a forecast of consecutive periods beyond the end of a series.
type Result struct {
	Order      sarima.Order
	Cadence    timeseries.Cadence
	Confidence float64 // percent
	Points     []Point
}

// Means returns the predicted means in period order.
func (r *Result) Means() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Mean
	}
	return out
}

// Generate fits order on series and forecasts length periods with a
// two-sided interval at confidence percent (90 excludes 10% of the mass).
func Generate(series *timeseries.Series, order sarima.Order, length int, confidence float64) (*Result, error) {
	model := sarima.NewFromOrder(order)
	if err := model.Fit(series); err != nil {
		return nil, fmt.Errorf("%w: fit %s: %w", ErrForecast, order, err)
	}
	return FromModel(model, series, length, confidence)
}

// FromModel forecasts from a model already fitted on series.
func FromModel(model *sarima.Model, series *timeseries.Series, length int, confidence float64) (*Result, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: forecast length must be at least 1, got %d", ErrForecast, length)
	}
	if !(confidence > 0 && confidence < 100) {
		return nil, fmt.Errorf("%w: confidence level must be in (0, 100), got %v", ErrForecast, confidence)
	}

	mean, lower, upper, err := model.PredictWithInterval(length, confidence/100)
	if err != nil {
		return nil, fmt.Errorf("%w: predict %s: %w", ErrForecast, model.Order, err)
	}

	periods := futurePeriods(series, length)
	result := &Result{
		Order:      model.Order,
		Cadence:    series.Cadence,
		Confidence: confidence,
		Points:     make([]Point, length),
	}
	for h := 0; h < length; h++ {
		result.Points[h] = Point{
			Period: periods[h],
			Mean:   floor(mean[h]),
			Lower:  floor(lower[h]),
			Upper:  floor(upper[h]),
		}
	}
	return result, nil
}

// futurePeriods continues the series' cadence from its last period. Series
// without a cadence step by the spacing of their last two timestamps; series
// without timestamps yield zero times.
func futurePeriods(series *timeseries.Series, length int) []time.Time {
	periods := make([]time.Time, length)
	last, ok := series.Last()
	if !ok {
		return periods
	}

	next := func(t time.Time) time.Time { return series.Cadence.Next(t) }
	if series.Cadence.Validate() != nil {
		n := len(series.Timestamps)
		if n < 2 {
			return periods
		}
		step := series.Timestamps[n-1].Sub(series.Timestamps[n-2])
		next = func(t time.Time) time.Time { return t.Add(step) }
	}

	p := last
	for h := range periods {
		p = next(p)
		periods[h] = p
	}
	return periods
}

// floor clamps negative values to zero; sales cannot be negative.
func floor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Undefined reports whether any value of the result is NaN or infinite.
func (r *Result) Undefined() bool {
	for _, p := range r.Points {
		for _, v := range [...]float64{p.Mean, p.Lower, p.Upper} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}
