package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sartorproj/salesforecast/accuracy"
	"github.com/sartorproj/salesforecast/autoarima"
	"github.com/sartorproj/salesforecast/batch"
	"github.com/sartorproj/salesforecast/config"
	"github.com/sartorproj/salesforecast/dataset"
	"github.com/sartorproj/salesforecast/forecast"
	"github.com/sartorproj/salesforecast/preprocess"
	"github.com/sartorproj/salesforecast/timeseries"
)

func batchCommand(fs *flag.FlagSet) runner {
	return func(ctx context.Context, env *environment) error {
		table, err := loadTable(env.input)
		if err != nil {
			return err
		}

		runner := batch.NewRunner(env.config.BatchConfig(), env.logger)
		summary, err := runner.Run(ctx, table)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %d slices, %d skipped, %d forecast failures, %d accuracy failures\n",
			summary.RunID, summary.Slices, summary.Skipped, summary.ForecastFailures, summary.AccuracyFailures)
		fmt.Printf("Forecast rows: %d -> %s\n", summary.ForecastRows, runner.Config.ForecastPath)
		fmt.Printf("Accuracy rows: %d -> %s\n", len(summary.Accuracy), runner.Config.AccuracyPath)
		return nil
	}
}

// sliceFlags registers the hierarchy slice selectors.
func sliceFlags(fs *flag.FlagSet) (family, name *string) {
	family = fs.String("family", preprocess.All, "product family to forecast")
	name = fs.String("name", preprocess.All, "product name to forecast")
	return family, name
}

func prepareSlice(env *environment, family, name string) (*timeseries.Series, error) {
	table, err := loadTable(env.input)
	if err != nil {
		return nil, err
	}
	cols := env.config.PreprocessColumns()
	if family == preprocess.All && name == preprocess.All {
		cols.Family, cols.Name = "", ""
	}
	return preprocess.Prepare(table, preprocess.Options{
		Columns:        cols,
		Cadence:        env.config.Cadence(),
		Family:         family,
		Name:           name,
		ImputeMissing:  env.config.Preprocess.ImputeMissing,
		RemoveOutliers: env.config.Preprocess.RemoveOutliers,
	})
}

type pointOutput struct {
	Period string  `json:"period"`
	Mean   float64 `json:"predicted_mean"`
	Lower  float64 `json:"lower_value"`
	Upper  float64 `json:"upper_value"`
}

type forecastOutput struct {
	Slice           string        `json:"slice"`
	Model           string        `json:"model"`
	AIC             float64       `json:"aic"`
	ModelsEvaluated int           `json:"models_evaluated"`
	Rejected        int           `json:"rejected"`
	Confidence      float64       `json:"confidence_level"`
	Forecast        []pointOutput `json:"forecast"`
}

func forecastCommand(fs *flag.FlagSet) runner {
	family, name := sliceFlags(fs)
	return func(ctx context.Context, env *environment) error {
		series, err := prepareSlice(env, *family, *name)
		if err != nil {
			return err
		}

		search := env.config.SearchConfig()
		search.Logger = env.logger
		selection, err := autoarima.SelectModel(series, search)
		if err != nil {
			return err
		}
		result, err := forecast.FromModel(selection.Model, series, search.ForecastLength, search.ConfidenceLevel)
		if err != nil {
			return err
		}

		out := forecastOutput{
			Slice:           series.Name,
			Model:           selection.Order.String(),
			AIC:             selection.AIC,
			ModelsEvaluated: selection.ModelsEvaluated,
			Rejected:        selection.Rejected,
			Confidence:      result.Confidence,
		}
		for _, p := range result.Points {
			out.Forecast = append(out.Forecast, pointOutput{
				Period: p.Period.Format(time.DateOnly),
				Mean:   p.Mean,
				Lower:  p.Lower,
				Upper:  p.Upper,
			})
		}
		return printJSON(out)
	}
}

type evaluateOutput struct {
	Slice string `json:"slice"`
	*accuracy.Evaluation
	Undefined bool     `json:"undefined,omitempty"`
	MSE       *float64 `json:"mse,omitempty"`
}

func evaluateCommand(fs *flag.FlagSet) runner {
	family, name := sliceFlags(fs)
	return func(ctx context.Context, env *environment) error {
		series, err := prepareSlice(env, *family, *name)
		if err != nil {
			return err
		}

		evaluator := accuracy.NewEvaluator(accuracy.Config{
			ForecastLength:  env.config.Forecast.Length,
			SeasonalPeriod:  env.config.Forecast.SeasonalPeriod,
			ConfidenceLevel: env.config.Forecast.ConfidenceLevel,
			Logger:          env.logger,
		})
		evaluation, err := evaluator.Evaluate(series)

		var undefined *accuracy.UndefinedMetricError
		if errors.As(err, &undefined) {
			env.logger.Warn("percentage metrics undefined", zap.String("slice", series.Name))
			return printJSON(evaluateOutput{Slice: series.Name, Undefined: true, MSE: &undefined.MSE})
		}
		if err != nil {
			return err
		}
		return printJSON(evaluateOutput{Slice: series.Name, Evaluation: evaluation})
	}
}

func outliersCommand(fs *flag.FlagSet) runner {
	outDir := fs.String("out", "", "directory for outliers.csv and non_outliers.csv (default: the configured output dir)")
	return func(ctx context.Context, env *environment) error {
		table, err := loadTable(env.input)
		if err != nil {
			return err
		}
		obs, err := preprocess.Extract(table, env.config.PreprocessColumns())
		if err != nil {
			return err
		}
		if env.config.Preprocess.ImputeMissing {
			obs, _ = preprocess.ImputeMean(obs)
		}
		report := preprocess.RemoveOutliers(obs)

		dir := *outDir
		if dir == "" {
			dir = env.config.Paths.OutputDir
		}
		header := []string{env.config.Columns.Date, env.config.Columns.Value,
			env.config.Columns.ProductFamily, env.config.Columns.ProductName}
		if err := writePartitions(dir, header, report); err != nil {
			return err
		}

		env.logger.Info("outliers split",
			zap.Int("outliers", len(report.Outliers)),
			zap.Int("kept", len(report.Kept)),
			zap.String("dir", dir))
		return printJSON(map[string]any{
			"q1":            report.Fences.Q1,
			"q3":            report.Fences.Q3,
			"iqr":           report.Fences.IQR,
			"lower_whisker": report.Fences.Lower,
			"upper_whisker": report.Fences.Upper,
			"outliers":      len(report.Outliers),
			"kept":          len(report.Kept),
		})
	}
}

// writePartitions replaces outliers.csv and non_outliers.csv in dir. Both
// files are written even when a partition is empty.
func writePartitions(dir string, header []string, report preprocess.OutlierReport) error {
	partitions := map[string][]preprocess.Observation{
		"outliers.csv":     report.Outliers,
		"non_outliers.csv": report.Kept,
	}
	for file, part := range partitions {
		out := dataset.NewAppender(filepath.Join(dir, file), header)
		if err := out.Reset(); err != nil {
			return err
		}
		if err := out.Append(observationRows(part)); err != nil {
			return err
		}
	}
	return nil
}

func observationRows(obs []preprocess.Observation) [][]string {
	rows := make([][]string, len(obs))
	for i, o := range obs {
		value := ""
		if !o.Missing {
			value = strconv.FormatFloat(o.Value, 'f', -1, 64)
		}
		rows[i] = []string{o.Date.Format(time.DateOnly), value, o.Family, o.Name}
	}
	return rows
}

func initCommand(fs *flag.FlagSet) runner {
	force := fs.Bool("force", false, "overwrite an existing configuration file")
	return func(ctx context.Context, env *environment) error {
		if _, err := os.Stat(env.configPath); err == nil && !*force {
			return fmt.Errorf("%s already exists (use -force to overwrite)", env.configPath)
		}
		if err := config.Save(config.DefaultConfig(), env.configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", env.configPath)
		return nil
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
