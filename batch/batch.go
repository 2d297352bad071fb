// Package batch runs the forecasting pipeline over every hierarchy slice of a
// raw table and appends the results to the forecast and accuracy datasets.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/salesforecast/accuracy"
	"github.com/sartorproj/salesforecast/autoarima"
	"github.com/sartorproj/salesforecast/dataset"
	"github.com/sartorproj/salesforecast/forecast"
	"github.com/sartorproj/salesforecast/preprocess"
	"github.com/sartorproj/salesforecast/timeseries"
)

// Config holds the batch parameters.
type Config struct {
	Columns         preprocess.Columns
	Cadence         timeseries.Cadence
	ForecastLength  int
	SeasonalPeriod  int
	ConfidenceLevel float64 // percent
	ImputeMissing   bool
	RemoveOutliers  bool
	ForecastPath    string
	AccuracyPath    string
}

// Validate checks that every parameter needed by Run is set.
func (c *Config) Validate() error {
	if c.Columns.Date == "" || c.Columns.Value == "" {
		return errors.New("date and value columns are required")
	}
	if c.Columns.Family == "" || c.Columns.Name == "" {
		return errors.New("product family and product name columns are required")
	}
	if err := c.Cadence.Validate(); err != nil {
		return err
	}
	search := autoarima.Config{
		SeasonalPeriod:  c.SeasonalPeriod,
		ForecastLength:  c.ForecastLength,
		ConfidenceLevel: c.ConfidenceLevel,
	}
	if err := search.Validate(); err != nil {
		return err
	}
	if c.ForecastPath == "" || c.AccuracyPath == "" {
		return errors.New("forecast and accuracy output paths are required")
	}
	return nil
}

// Summary reports what a run did.
type Summary struct {
	RunID            string
	Slices           int // Slices enumerated
	Skipped          int // Empty slices
	Forecasted       int // Slices with forecast rows written
	ForecastFailures int
	AccuracyFailures int
	ForecastRows     int
	Accuracy         []AccuracyRecord
}

// Runner drives the pipeline over hierarchy slices.
type Runner struct {
	Config Config
	Logger *zap.Logger
	// Select chooses the model for each slice; nil uses autoarima.SelectModel.
	Select accuracy.Selector
}

// NewRunner creates a runner with the default model search.
func NewRunner(config Config, logger *zap.Logger) *Runner {
	return &Runner{Config: config, Logger: logger}
}

// Run processes every (family, name) slice of table in order, families outer
// and names inner, each list ending with preprocess.All. A failing slice
// never stops the run: forecast failures write nothing and accuracy failures
// write an all-null row. Preprocessing errors, output write errors and
// context cancellation end the run.
func (r *Runner) Run(ctx context.Context, table *dataset.Table) (*Summary, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch config: %w", err)
	}

	obs, err := preprocess.Extract(table, r.Config.Columns)
	if err != nil {
		return nil, err
	}
	obs = preprocess.Clean(obs, r.Config.ImputeMissing, r.Config.RemoveOutliers)

	summary := &Summary{RunID: uuid.NewString()}
	log := r.logger().With(zap.String("run_id", summary.RunID))

	forecastOut := dataset.NewAppender(r.Config.ForecastPath, ForecastHeader(r.Config.Columns.Date))
	accuracyOut := dataset.NewAppender(r.Config.AccuracyPath, AccuracyHeader)

	families := distinct(obs, func(o preprocess.Observation) string { return o.Family })
	names := distinct(obs, func(o preprocess.Observation) string { return o.Name })
	log.Info("batch started",
		zap.Int("observations", len(obs)),
		zap.Int("families", len(families)),
		zap.Int("names", len(names)))

	for _, family := range families {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				log.Warn("batch cancelled", zap.Error(err))
				return summary, err
			}
			summary.Slices++

			sliceLog := log.With(zap.String("family", family), zap.String("name", name))
			series, err := preprocess.Aggregate(preprocess.Filter(obs, family, name), r.Config.Cadence)
			if errors.Is(err, preprocess.ErrEmptySlice) {
				summary.Skipped++
				continue
			}
			if err != nil {
				return summary, fmt.Errorf("slice %s: %w", preprocess.SliceName(family, name), err)
			}
			series.Name = preprocess.SliceName(family, name)
			sliceLog.Info("processing slice", zap.Int("periods", series.Len()))

			result, err := r.forecast(series, sliceLog)
			if err != nil {
				summary.ForecastFailures++
				sliceLog.Warn("forecast failed", zap.Error(err))
			} else {
				rows := ForecastRows(result, family, name)
				if err := forecastOut.Append(rows); err != nil {
					return summary, err
				}
				summary.Forecasted++
				summary.ForecastRows += len(rows)
				sliceLog.Debug("forecast written", zap.Stringer("order", result.Order))
			}

			record := AccuracyRecord{Family: family, Name: name}
			evaluation, err := r.evaluator(sliceLog).Evaluate(series)
			if err != nil {
				summary.AccuracyFailures++
				sliceLog.Warn("accuracy evaluation failed", zap.Error(err))
			} else {
				record.Metrics = &evaluation.Metrics
			}
			if err := accuracyOut.Append([][]string{record.Row()}); err != nil {
				return summary, err
			}
			summary.Accuracy = append(summary.Accuracy, record)
		}
	}

	log.Info("batch finished",
		zap.Int("slices", summary.Slices),
		zap.Int("skipped", summary.Skipped),
		zap.Int("forecast_failures", summary.ForecastFailures),
		zap.Int("accuracy_failures", summary.AccuracyFailures))
	return summary, nil
}

func (r *Runner) forecast(series *timeseries.Series, log *zap.Logger) (*forecast.Result, error) {
	selection, err := r.selector()(series, &autoarima.Config{
		SeasonalPeriod:  r.Config.SeasonalPeriod,
		ForecastLength:  r.Config.ForecastLength,
		ConfidenceLevel: r.Config.ConfidenceLevel,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}
	return forecast.FromModel(selection.Model, series, r.Config.ForecastLength, r.Config.ConfidenceLevel)
}

func (r *Runner) evaluator(log *zap.Logger) *accuracy.Evaluator {
	return &accuracy.Evaluator{
		Select: r.selector(),
		Config: accuracy.Config{
			ForecastLength:  r.Config.ForecastLength,
			SeasonalPeriod:  r.Config.SeasonalPeriod,
			ConfidenceLevel: r.Config.ConfidenceLevel,
			Logger:          log,
		},
	}
}

func (r *Runner) selector() accuracy.Selector {
	if r.Select == nil {
		return autoarima.SelectModel
	}
	return r.Select
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// distinct returns the distinct keys in order of first appearance, followed
// by preprocess.All.
func distinct(obs []preprocess.Observation, key func(preprocess.Observation) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range obs {
		k := key(o)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return append(out, preprocess.All)
}
