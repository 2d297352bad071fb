package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/salesforecast/autoarima"
	"github.com/sartorproj/salesforecast/sarima"
	"github.com/sartorproj/salesforecast/timeseries"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trendSeries(t *testing.T) *timeseries.Series {
	t.Helper()
	values := make([]float64, 13)
	for i := range values {
		values[i] = 100 + 10*float64(i)
	}
	series, err := timeseries.NewPeriodic(date(2024, 1, 1), timeseries.Monthly, values)
	require.NoError(t, err)
	return series
}

func TestGenerateLinearTrend(t *testing.T) {
	series := trendSeries(t)
	order := sarima.Order{D: 1, M: 12}

	result, err := Generate(series, order, 3, 90)
	require.NoError(t, err)

	require.Len(t, result.Points, 3)
	assert.Equal(t, order, result.Order)
	assert.Equal(t, timeseries.Monthly, result.Cadence)
	assert.Equal(t, 90.0, result.Confidence)

	wantPeriods := []time.Time{date(2025, 2, 1), date(2025, 3, 1), date(2025, 4, 1)}
	wantMeans := []float64{230, 240, 250}
	for i, p := range result.Points {
		assert.Equal(t, wantPeriods[i], p.Period)
		assert.InDelta(t, wantMeans[i], p.Mean, 1e-6)
		assert.LessOrEqual(t, p.Lower, p.Mean)
		assert.GreaterOrEqual(t, p.Upper, p.Mean)
	}
	assert.False(t, result.Undefined())
}

func TestEndToEndSelectAndForecast(t *testing.T) {
	series := trendSeries(t)

	config := autoarima.DefaultConfig()
	config.ForecastLength = 3
	selection, err := autoarima.SelectModel(series, config)
	require.NoError(t, err)

	result, err := FromModel(selection.Model, series, 3, config.ConfidenceLevel)
	require.NoError(t, err)
	require.Len(t, result.Points, 3)

	prev := 220.0
	for i, p := range result.Points {
		assert.Equal(t, date(2025, time.Month(2+i), 1), p.Period)
		assert.GreaterOrEqual(t, p.Mean, 0.0)
		assert.Greater(t, p.Mean, prev, "trend continues at step %d", i+1)
		prev = p.Mean
	}
}

func TestZeroFloor(t *testing.T) {
	values := []float64{40, 5, 38, 2, 41, 4, 39, 3, 42, 1, 37, 6, 40, 2, 39, 5, 41, 0, 38, 3, 40, 4, 39, 1}
	series, err := timeseries.NewPeriodic(date(2023, 1, 1), timeseries.Monthly, values)
	require.NoError(t, err)

	result, err := Generate(series, sarima.Order{M: 12}, 6, 99)
	require.NoError(t, err)

	for i, p := range result.Points {
		assert.GreaterOrEqual(t, p.Mean, 0.0, "mean %d", i)
		assert.GreaterOrEqual(t, p.Lower, 0.0, "lower %d", i)
		assert.GreaterOrEqual(t, p.Upper, 0.0, "upper %d", i)
	}
	assert.Equal(t, 0.0, result.Points[0].Lower, "wide interval around a low mean is clipped")
}

func TestConstantSeriesReproduced(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = 75
	}
	series, err := timeseries.NewPeriodic(date(2022, 1, 1), timeseries.Monthly, values)
	require.NoError(t, err)

	result, err := Generate(series, sarima.Order{M: 12}, 4, 90)
	require.NoError(t, err)

	for _, p := range result.Points {
		assert.InDelta(t, 75, p.Mean, 1e-6)
	}
}

func TestWeeklyPeriods(t *testing.T) {
	values := []float64{5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	series, err := timeseries.NewPeriodic(date(2024, 1, 1), timeseries.Weekly, values)
	require.NoError(t, err)

	result, err := Generate(series, sarima.Order{D: 1, M: 4}, 2, 90)
	require.NoError(t, err)

	last, _ := series.Last()
	assert.Equal(t, last.AddDate(0, 0, 7), result.Points[0].Period)
	assert.Equal(t, last.AddDate(0, 0, 14), result.Points[1].Period)
	assert.Equal(t, time.Monday, result.Points[0].Period.Weekday())
}

func TestPeriodsWithoutCadence(t *testing.T) {
	ts := []time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3), date(2024, 1, 4), date(2024, 1, 5)}
	series, err := timeseries.NewWithTimestamps(ts, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	periods := futurePeriods(series, 2)
	assert.Equal(t, []time.Time{date(2024, 1, 6), date(2024, 1, 7)}, periods)

	periods = futurePeriods(timeseries.New([]float64{1, 2}), 2)
	assert.True(t, periods[0].IsZero())
}

func TestGenerateErrors(t *testing.T) {
	series := trendSeries(t)

	_, err := Generate(series, sarima.Order{M: 12}, 0, 90)
	assert.True(t, errors.Is(err, ErrForecast))

	_, err = Generate(series, sarima.Order{M: 12}, 3, 100)
	assert.True(t, errors.Is(err, ErrForecast))

	short := timeseries.New([]float64{1})
	_, err = Generate(short, sarima.Order{P: 1, M: 12}, 3, 90)
	assert.True(t, errors.Is(err, ErrForecast))
	assert.True(t, errors.Is(err, sarima.ErrInsufficientData))
}
