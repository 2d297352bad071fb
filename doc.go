// Package salesforecast provides a SARIMA based sales forecasting engine.
//
// Salesforecast turns a raw table of dated sales rows into monthly or weekly
// series, selects a seasonal ARIMA model for each product hierarchy slice,
// forecasts the next periods with confidence intervals and backtests the
// forecast against held-out history.
//
// # Features
//
//   - CSV and XLSX input with typed file and column errors
//   - Monthly and weekly (Monday-labelled) aggregation with zero-filled gaps
//   - Optional mean imputation and upper Tukey-whisker outlier removal
//   - 64-candidate SARIMA(p,d,q)(P,D,Q)[m] grid search by AIC
//   - Zero-floored point and interval forecasts
//   - Holdout backtests reporting MSE, MAPE, Bias and Accuracy
//   - Batch runs over every (product family, product name) slice with
//     append-only CSV outputs
//
// # Quick Start
//
// Forecast one slice:
//
//	table, _ := dataset.Load("files/Superstore.xlsx")
//	series, _ := preprocess.Prepare(table, preprocess.Options{
//	    Columns: preprocess.Columns{Date: "Order Date", Value: "Sales"},
//	    Cadence: timeseries.Monthly,
//	})
//
//	config := autoarima.DefaultConfig()
//	selection, _ := autoarima.SelectModel(series, config)
//	result, _ := forecast.FromModel(selection.Model, series, config.ForecastLength, config.ConfidenceLevel)
//
// Run every slice:
//
//	runner := batch.NewRunner(cfg.BatchConfig(), logger)
//	summary, err := runner.Run(ctx, table)
//
// # Packages
//
// The module is organized into the following packages:
//
//   - dataset: Input tables and append-only output datasets
//   - preprocess: Column extraction, hierarchy filters, aggregation, outliers
//   - timeseries: Time series data structures, cadences and resampling
//   - stats: Autocorrelation and quantiles
//   - sarima: Seasonal ARIMA (SARIMA) models
//   - autoarima: Automatic model selection
//   - forecast: Dated, zero-floored forecasts
//   - accuracy: Holdout backtests and error metrics
//   - batch: Hierarchy slice orchestration
//   - config: TOML configuration and environment overrides
//
// The salesforecast command in cmd/salesforecast wires these together.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package salesforecast
