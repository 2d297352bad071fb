// Package sarima implements Seasonal ARIMA (SARIMA) models for time series with seasonality.
//
// SARIMA models extend ARIMA to handle seasonal patterns. A SARIMA(p,d,q)(P,D,Q)[m] model includes:
//   - Non-seasonal components: AR(p), I(d), MA(q)
//   - Seasonal components: SAR(P), SI(D), SMA(Q) at seasonal period m
//
// Coefficients are estimated by conditional sum of squares, minimised with a
// Nelder-Mead search. Every AR and MA coefficient is kept inside (-0.99, 0.99).
//
// # Basic Usage
//
// Create and fit a SARIMA model for monthly sales (m=12):
//
//	model := sarima.New(0, 1, 1, 0, 1, 1, 12)
//
//	err := model.Fit(series)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Forecast the next 6 months with a 90% interval
//	mean, lower, upper, _ := model.PredictWithInterval(6, 0.90)
//
// # Prediction Intervals
//
// Interval half-widths are z * sigma * sqrt(psi_0^2 + ... + psi_{h-1}^2), where
// psi are the MA(infinity) weights of the integrated model, so intervals widen
// with the horizon for differenced models.
//
// # Model Selection
//
// Use information criteria to compare fits (lower is better):
//
//	fmt.Printf("AIC: %.2f, AICc: %.2f, BIC: %.2f\n",
//	    model.AIC, model.AICc, model.BIC)
//
// For the bounded seasonal grid search, use the autoarima package.
package sarima
