// Package autoarima implements automatic SARIMA model selection.
//
// The search is an exhaustive grid over 64 candidate orders: every (p,d,q)
// and seasonal (P,D,Q) with each component in {0,1}, all sharing one seasonal
// period m. Each candidate is fitted and scored by AIC. Candidates are then
// tried from the lowest AIC upward, and the first one whose forecast has a
// fully defined lower confidence bound wins.
//
// # Basic Usage
//
//	config := autoarima.DefaultConfig()
//	config.SeasonalPeriod = 12
//	config.ForecastLength = 6
//	config.ConfidenceLevel = 90
//
//	selection, err := autoarima.SelectModel(series, config)
//	if errors.Is(err, autoarima.ErrSearchExhausted) {
//	    // no candidate fitted, or every forecast had an undefined bound
//	}
//
//	fmt.Printf("Best model: %s AIC=%.2f\n", selection.Order, selection.AIC)
//	forecasts, _ := selection.Predict(6)
//
// # Ranking
//
// Rank exposes the full AIC ordering. Ties keep enumeration order, so the
// outcome is deterministic for a given series:
//
//	for _, s := range autoarima.Rank(series, config) {
//	    fmt.Println(s.Order, s.AIC)
//	}
//
// Set Config.Logger to a zap logger at debug level to trace every candidate.
package autoarima
