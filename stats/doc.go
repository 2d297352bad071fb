// Package stats provides the statistical helpers used by the forecasting
// engine.
//
// # Autocorrelation
//
// ACF returns the sample autocorrelations for lags 0 through maxLag. ACFAt
// evaluates selected lags only, which is how a SARIMA fit seeds its regular
// and seasonal autoregressive coefficients:
//
//	acf := stats.ACF(series, 12)
//	seasonal := stats.ACFAt(series, 12, 24)
//
// # Quantiles
//
// Quantile interpolates linearly between closest ranks, so results agree with
// the default quantile of common dataframe tools:
//
//	median := stats.Quantile(values, 0.5)
//
// TukeyFences returns Q1, Q3, the IQR and the 1.5*IQR whiskers used to flag
// outlying sales rows:
//
//	f := stats.TukeyFences(values)
//	if v >= f.Upper {
//	    // outlier
//	}
package stats
