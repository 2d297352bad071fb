// Package config loads the forecasting configuration from TOML and resolves
// environment overrides into it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/sartorproj/salesforecast/autoarima"
	"github.com/sartorproj/salesforecast/batch"
	"github.com/sartorproj/salesforecast/preprocess"
	"github.com/sartorproj/salesforecast/timeseries"
)

// Config is the full application configuration.
type Config struct {
	Columns    ColumnsConfig    `toml:"columns"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Preprocess PreprocessConfig `toml:"preprocess"`
	Paths      PathsConfig      `toml:"paths"`
	Log        LogConfig        `toml:"log"`
}

// ColumnsConfig names the input table columns.
type ColumnsConfig struct {
	Date          string `toml:"date"`
	Value         string `toml:"value"`
	ProductFamily string `toml:"product_family"`
	ProductName   string `toml:"product_name"`
}

// ForecastConfig holds the model search and forecast parameters.
type ForecastConfig struct {
	Cadence         string  `toml:"cadence"`
	Length          int     `toml:"length"`
	SeasonalPeriod  int     `toml:"seasonal_period"`
	ConfidenceLevel float64 `toml:"confidence_level"`
}

// PreprocessConfig toggles the optional raw-table stages.
type PreprocessConfig struct {
	ImputeMissing  bool `toml:"impute_missing"`
	RemoveOutliers bool `toml:"remove_outliers"`
}

// PathsConfig holds input and output locations. Empty result paths are
// derived from OutputDir and the cadence.
type PathsConfig struct {
	Input          string `toml:"input"`
	OutputDir      string `toml:"output_dir"`
	ForecastResult string `toml:"forecast_result"`
	Accuracy       string `toml:"accuracy"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Columns: ColumnsConfig{
			Date:          "Order Date",
			Value:         "Sales",
			ProductFamily: "Category",
			ProductName:   "Product Name",
		},
		Forecast: ForecastConfig{
			Cadence:         string(timeseries.Monthly),
			Length:          6,
			SeasonalPeriod:  12,
			ConfidenceLevel: 90,
		},
		Paths: PathsConfig{
			Input:     filepath.Join("files", "Superstore.xlsx"),
			OutputDir: "files",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

// Save writes the configuration to path as TOML.
func Save(config *Config, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from environment style key/value pairs. Keys
// that are absent or empty leave the field unchanged.
func (c *Config) ApplyEnv(env map[string]string) error {
	strs := map[string]*string{
		"DATE_COLUMN":            &c.Columns.Date,
		"VALUE_COLUMN":           &c.Columns.Value,
		"PRODUCT_FAMILY_COLUMN":  &c.Columns.ProductFamily,
		"PRODUCT_NAME_COLUMN":    &c.Columns.ProductName,
		"FORECAST_TYPE":          &c.Forecast.Cadence,
		"INPUT_DATA_PATH":        &c.Paths.Input,
		"FORECAST_DATA_PATH":     &c.Paths.ForecastResult,
		"FORECAST_ACCURACY_PATH": &c.Paths.Accuracy,
		"LOG_LEVEL":              &c.Log.Level,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(env[key]); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FORECAST_LENGTH":       &c.Forecast.Length,
		"PERIOD_OF_SEASONALITY": &c.Forecast.SeasonalPeriod,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(env[key])
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v := strings.TrimSpace(env["CONFIDENCE_LEVEL"]); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CONFIDENCE_LEVEL: %w", err)
		}
		c.Forecast.ConfidenceLevel = f
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Columns.Date == "" || c.Columns.Value == "" {
		return errors.New("columns.date and columns.value are required")
	}
	if _, err := timeseries.ParseCadence(c.Forecast.Cadence); err != nil {
		return fmt.Errorf("forecast.cadence: %w", err)
	}
	search := autoarima.Config{
		SeasonalPeriod:  c.Forecast.SeasonalPeriod,
		ForecastLength:  c.Forecast.Length,
		ConfidenceLevel: c.Forecast.ConfidenceLevel,
	}
	if err := search.Validate(); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	return nil
}

// Cadence returns the parsed forecast cadence.
func (c *Config) Cadence() timeseries.Cadence {
	cadence, _ := timeseries.ParseCadence(c.Forecast.Cadence)
	return cadence
}

// ForecastResultPath returns the forecast dataset path.
func (c *Config) ForecastResultPath() string {
	if c.Paths.ForecastResult != "" {
		return c.Paths.ForecastResult
	}
	return filepath.Join(c.Paths.OutputDir, fmt.Sprintf("all_arima_forecast_result_%s.csv", c.Cadence()))
}

// AccuracyPath returns the accuracy dataset path.
func (c *Config) AccuracyPath() string {
	if c.Paths.Accuracy != "" {
		return c.Paths.Accuracy
	}
	return filepath.Join(c.Paths.OutputDir, fmt.Sprintf("all_arima_forecast_accuracy_%s.csv", c.Cadence()))
}

// PreprocessColumns returns the column names for the preprocessor.
func (c *Config) PreprocessColumns() preprocess.Columns {
	return preprocess.Columns{
		Date:   c.Columns.Date,
		Value:  c.Columns.Value,
		Family: c.Columns.ProductFamily,
		Name:   c.Columns.ProductName,
	}
}

// SearchConfig returns the model search parameters.
func (c *Config) SearchConfig() *autoarima.Config {
	return &autoarima.Config{
		SeasonalPeriod:  c.Forecast.SeasonalPeriod,
		ForecastLength:  c.Forecast.Length,
		ConfidenceLevel: c.Forecast.ConfidenceLevel,
	}
}

// BatchConfig returns the batch orchestrator parameters.
func (c *Config) BatchConfig() batch.Config {
	return batch.Config{
		Columns:         c.PreprocessColumns(),
		Cadence:         c.Cadence(),
		ForecastLength:  c.Forecast.Length,
		SeasonalPeriod:  c.Forecast.SeasonalPeriod,
		ConfidenceLevel: c.Forecast.ConfidenceLevel,
		ImputeMissing:   c.Preprocess.ImputeMissing,
		RemoveOutliers:  c.Preprocess.RemoveOutliers,
		ForecastPath:    c.ForecastResultPath(),
		AccuracyPath:    c.AccuracyPath(),
	}
}
