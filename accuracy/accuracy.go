// Package accuracy backtests forecasts against held-out history.
package accuracy

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/salesforecast/autoarima"
	"github.com/sartorproj/salesforecast/forecast"
	"github.com/sartorproj/salesforecast/sarima"
	"github.com/sartorproj/salesforecast/timeseries"
)

var (
	// ErrInsufficientHistory is returned when the holdout leaves no training data.
	ErrInsufficientHistory = errors.New("insufficient history for the holdout")
	// ErrUndefinedMetric is matched by UndefinedMetricError.
	ErrUndefinedMetric = errors.New("percentage metrics undefined: no non-zero truth value")
)

// UndefinedMetricError is returned when every truth value of the holdout is
// zero, so MAPE, Bias and Accuracy have no value. MSE is still defined.
type UndefinedMetricError struct {
	MSE float64
}

func (e *UndefinedMetricError) Error() string {
	return fmt.Sprintf("%v (MSE=%.2f)", ErrUndefinedMetric, e.MSE)
}

// Is makes errors.Is(err, ErrUndefinedMetric) match.
func (e *UndefinedMetricError) Is(target error) bool {
	return target == ErrUndefinedMetric
}

// Metrics are backtest error measures, each rounded to two decimals.
type Metrics struct {
	MSE      float64 `json:"mse"`
	MAPE     float64 `json:"mape"`
	Bias     float64 `json:"bias"`
	Accuracy float64 `json:"accuracy"`
}

// Selector chooses a fitted model for a training series.
type Selector func(series *timeseries.Series, config *autoarima.Config) (*autoarima.Selection, error)

// Config holds the backtest parameters.
type Config struct {
	ForecastLength  int
	SeasonalPeriod  int
	ConfidenceLevel float64 // percent
	Logger          *zap.Logger
}

// Evaluator runs holdout backtests.
type Evaluator struct {
	Select Selector
	Config Config
}

// NewEvaluator creates an evaluator that selects models with autoarima.SelectModel.
func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{Select: autoarima.SelectModel, Config: config}
}

// Evaluation is the outcome of one backtest.
type Evaluation struct {
	Metrics   Metrics      `json:"metrics"`
	Order     sarima.Order `json:"-"`
	Model     string       `json:"model"`
	Truth     []float64    `json:"truth"`
	Predicted []float64    `json:"predicted"`
}

// Evaluate holds out the last ForecastLength periods of series, selects and
// forecasts on the rest, and scores the forecast against the held-out truth.
func (e *Evaluator) Evaluate(series *timeseries.Series) (*Evaluation, error) {
	length := e.Config.ForecastLength
	if length < 1 {
		return nil, fmt.Errorf("forecast length must be at least 1, got %d", length)
	}
	train, truth := series.Split(length)
	if train.Len() == 0 {
		return nil, fmt.Errorf("%w: %d periods leave nothing to train on after holding out %d",
			ErrInsufficientHistory, series.Len(), length)
	}

	selection, err := e.Select(train, &autoarima.Config{
		SeasonalPeriod:  e.Config.SeasonalPeriod,
		ForecastLength:  length,
		ConfidenceLevel: e.Config.ConfidenceLevel,
		Logger:          e.Config.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backtest model search: %w", err)
	}

	result, err := forecast.FromModel(selection.Model, train, length, e.Config.ConfidenceLevel)
	if err != nil {
		return nil, fmt.Errorf("backtest forecast: %w", err)
	}

	predicted := result.Means()
	metrics, err := Score(truth.Values, predicted)
	if err != nil {
		return nil, err
	}
	return &Evaluation{
		Metrics:   metrics,
		Order:     selection.Order,
		Model:     selection.Order.String(),
		Truth:     truth.Values,
		Predicted: predicted,
	}, nil
}

// Score compares aligned truth and forecast values. MSE covers every period;
// MAPE and Bias skip periods whose truth is zero; Accuracy is 100 - MAPE.
func Score(truth, predicted []float64) (Metrics, error) {
	if len(truth) == 0 || len(truth) != len(predicted) {
		return Metrics{}, fmt.Errorf("truth and forecast must be non-empty and aligned, got %d and %d",
			len(truth), len(predicted))
	}

	diff := make([]float64, len(truth))
	floats.SubTo(diff, predicted, truth)
	sq := make([]float64, len(diff))
	floats.MulTo(sq, diff, diff)
	mse := round2(stat.Mean(sq, nil))

	var ape, errs, nonZero []float64
	for i, t := range truth {
		if t == 0 {
			continue
		}
		ape = append(ape, math.Abs(diff[i])/math.Abs(t))
		errs = append(errs, diff[i])
		nonZero = append(nonZero, t)
	}
	total := floats.Sum(nonZero)
	if len(nonZero) == 0 || total == 0 {
		return Metrics{}, &UndefinedMetricError{MSE: mse}
	}

	mape := round2(stat.Mean(ape, nil) * 100)
	return Metrics{
		MSE:      mse,
		MAPE:     mape,
		Bias:     round2(floats.Sum(errs) / total * 100),
		Accuracy: round2(100 - mape),
	}, nil
}

// round2 rounds half away from zero on the decimal representation of v.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
