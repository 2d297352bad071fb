package sarima

import (
	"errors"
	"math"
	"testing"

	"github.com/sartorproj/salesforecast/timeseries"
)

func TestNewSARIMA(t *testing.T) {
	model := New(1, 1, 1, 1, 1, 1, 12)

	if model.Order.P != 1 {
		t.Errorf("Expected P=1, got %d", model.Order.P)
	}
	if model.Order.D != 1 {
		t.Errorf("Expected D=1, got %d", model.Order.D)
	}
	if model.Order.Q != 1 {
		t.Errorf("Expected Q=1, got %d", model.Order.Q)
	}
	if model.Order.SP != 1 {
		t.Errorf("Expected SP=1, got %d", model.Order.SP)
	}
	if model.Order.SD != 1 {
		t.Errorf("Expected SD=1, got %d", model.Order.SD)
	}
	if model.Order.SQ != 1 {
		t.Errorf("Expected SQ=1, got %d", model.Order.SQ)
	}
	if model.Order.M != 12 {
		t.Errorf("Expected M=12, got %d", model.Order.M)
	}
	if len(model.ARCoeffs) != 1 || len(model.SMACoeffs) != 1 {
		t.Errorf("Expected one coefficient per order, got AR=%d SMA=%d", len(model.ARCoeffs), len(model.SMACoeffs))
	}
}

func TestOrderString(t *testing.T) {
	o := Order{P: 1, D: 0, Q: 1, SP: 0, SD: 1, SQ: 1, M: 12}
	if got := o.String(); got != "SARIMA(1,0,1)(0,1,1)[12]" {
		t.Errorf("Unexpected string %q", got)
	}
	if got := o.NumParams(); got != 5 {
		t.Errorf("Expected 5 parameters, got %d", got)
	}
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{"non-seasonal without period", Order{P: 1, D: 1}, false},
		{"seasonal with period", Order{SP: 1, M: 12}, false},
		{"seasonal without period", Order{SD: 1}, true},
		{"negative", Order{P: -1, M: 12}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("Expected ErrInvalidOrder, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSARIMAFitMonthlyData(t *testing.T) {
	// Generate monthly data with yearly seasonality
	n := 120 // 10 years of monthly data
	period := 12
	values := make([]float64, n)

	for i := 0; i < n; i++ {
		trend := float64(i) * 0.5
		seasonal := 20 * math.Sin(2*math.Pi*float64(i)/float64(period))
		noise := float64(i%5-2) / 2
		values[i] = 100 + trend + seasonal + noise
	}

	series := timeseries.New(values)
	model := New(1, 0, 0, 1, 0, 0, 12)

	err := model.Fit(series)
	if err != nil {
		t.Fatalf("Failed to fit SARIMA model: %v", err)
	}

	if math.IsNaN(model.AIC) || math.IsInf(model.AIC, 0) {
		t.Errorf("Expected finite AIC, got %f", model.AIC)
	}
	for _, c := range append(model.ARCoeffs, model.SARCoeffs...) {
		if math.Abs(c) >= 1 {
			t.Errorf("Coefficient %f outside the stationary bound", c)
		}
	}

	t.Logf("SARIMA(1,0,0)(1,0,0)[12] - AIC: %f, BIC: %f", model.AIC, model.BIC)
	t.Logf("AR coeffs: %v", model.ARCoeffs)
	t.Logf("SAR coeffs: %v", model.SARCoeffs)
}

func TestSARIMAWithDifferencing(t *testing.T) {
	// Generate data with trend and seasonality
	n := 144 // 12 years
	period := 12
	values := make([]float64, n)

	for i := 0; i < n; i++ {
		trend := float64(i) * 0.3
		seasonal := 15 * math.Cos(2*math.Pi*float64(i)/float64(period))
		values[i] = 50 + trend + seasonal + float64(i%7-3)/3
	}

	series := timeseries.New(values)
	model := New(1, 1, 0, 1, 1, 0, 12)

	err := model.Fit(series)
	if err != nil {
		t.Fatalf("Failed to fit SARIMA(1,1,0)(1,1,0)[12]: %v", err)
	}

	if model.NObs() != n {
		t.Errorf("Expected NObs=%d, got %d", n, model.NObs())
	}

	t.Logf("SARIMA(1,1,0)(1,1,0)[12] - AIC: %f, BIC: %f", model.AIC, model.BIC)
}

func TestSARIMAPredict(t *testing.T) {
	n := 96 // 8 years
	period := 12
	values := make([]float64, n)

	for i := 0; i < n; i++ {
		seasonal := 10 * math.Sin(2*math.Pi*float64(i)/float64(period))
		values[i] = 100 + seasonal + float64(i%5-2)/2
	}

	series := timeseries.New(values)
	model := New(0, 0, 0, 1, 0, 0, 12)

	err := model.Fit(series)
	if err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, err := model.Predict(12) // Predict one year ahead
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	if len(forecasts) != 12 {
		t.Errorf("Expected 12 forecasts, got %d", len(forecasts))
	}

	for i, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("Forecast %d is NaN or Inf", i)
		}
		if f < 50 || f > 150 {
			t.Logf("Forecast %d may be unusual: %f", i, f)
		}
	}
}

func TestPredictWithIntervalBrackets(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		values[i] = 200 + float64(i)*2 + float64(i%4-2)*3
	}

	model := New(0, 1, 1, 0, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, lower, upper, err := model.PredictWithInterval(6, 0.9)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	prevWidth := 0.0
	for h := range forecasts {
		if !(lower[h] <= forecasts[h] && forecasts[h] <= upper[h]) {
			t.Errorf("Step %d: mean %f outside [%f, %f]", h, forecasts[h], lower[h], upper[h])
		}
		width := upper[h] - lower[h]
		if width+1e-9 < prevWidth {
			t.Errorf("Step %d: interval narrowed from %f to %f for an integrated model", h, prevWidth, width)
		}
		prevWidth = width
	}

	_, narrowLower, _, err := model.PredictWithInterval(6, 0.5)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	if narrowLower[0] <= lower[0] {
		t.Errorf("A 50%% interval should be narrower than a 90%% one: %f vs %f", narrowLower[0], lower[0])
	}
}

func TestRandomWalkPsiWeights(t *testing.T) {
	values := []float64{3, 5, 4, 6, 8, 7, 9, 12, 10, 11, 13, 15}
	model := New(0, 1, 0, 0, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	psi := model.psiWeights(5)
	for j, w := range psi {
		if math.Abs(w-1) > 1e-12 {
			t.Errorf("Random walk psi[%d] should be 1, got %f", j, w)
		}
	}
}

func TestLinearTrendContinues(t *testing.T) {
	values := make([]float64, 13)
	for i := range values {
		values[i] = 100 + 10*float64(i)
	}

	model := New(0, 1, 0, 0, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, lower, _, err := model.PredictWithInterval(3, 0.9)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	expected := []float64{230, 240, 250}
	for i, want := range expected {
		if math.Abs(forecasts[i]-want) > 1e-6 {
			t.Errorf("Step %d: expected %f, got %f", i, want, forecasts[i])
		}
		if math.IsNaN(lower[i]) {
			t.Errorf("Step %d: lower bound is NaN", i)
		}
	}
}

func TestConstantSeries(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = 42
	}

	model := New(0, 0, 0, 0, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	if math.IsInf(model.AIC, 0) || math.IsNaN(model.AIC) {
		t.Errorf("Expected finite AIC for an exact fit, got %f", model.AIC)
	}

	forecasts, lower, upper, err := model.PredictWithInterval(4, 0.9)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i := range forecasts {
		if math.Abs(forecasts[i]-42) > 1e-6 || math.Abs(lower[i]-42) > 1e-4 || math.Abs(upper[i]-42) > 1e-4 {
			t.Errorf("Step %d: expected 42, got %f [%f, %f]", i, forecasts[i], lower[i], upper[i])
		}
	}
}

func TestSeasonalIntegration(t *testing.T) {
	pattern := []float64{10, 30, 20, 40}
	values := make([]float64, 24)
	for i := range values {
		values[i] = pattern[i%4]
	}

	model := New(0, 0, 0, 0, 1, 0, 4)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, err := model.Predict(8)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for h, f := range forecasts {
		if math.Abs(f-pattern[h%4]) > 1e-6 {
			t.Errorf("Step %d: expected %f, got %f", h, pattern[h%4], f)
		}
	}
}

func TestSARIMAResiduals(t *testing.T) {
	n := 60
	period := 12
	values := make([]float64, n)

	for i := 0; i < n; i++ {
		values[i] = 100 + 5*math.Sin(2*math.Pi*float64(i)/float64(period))
	}

	series := timeseries.New(values)
	model := New(1, 0, 0, 1, 0, 0, 12)

	if model.Residuals() != nil {
		t.Error("Residuals should be nil before fitting")
	}

	err := model.Fit(series)
	if err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	residuals := model.Residuals()
	if len(residuals) != n {
		t.Errorf("Expected %d residuals, got %d", n, len(residuals))
	}

	fitted := model.FittedValues()
	if len(fitted) != n {
		t.Errorf("Expected %d fitted values, got %d", n, len(fitted))
	}

	sum := 0.0
	for _, r := range residuals {
		sum += r
	}
	t.Logf("Mean of residuals: %f", sum/float64(len(residuals)))
}

func TestSARIMAMultipleOrders(t *testing.T) {
	// Generate test data with seasonality
	n := 96
	period := 12
	values := make([]float64, n)

	for i := 0; i < n; i++ {
		trend := float64(i) * 0.2
		seasonal := 10 * math.Sin(2*math.Pi*float64(i)/float64(period))
		values[i] = 100 + trend + seasonal + float64(i%5-2)/3
	}

	series := timeseries.New(values)

	tests := []struct {
		name          string
		p, d, q       int
		sp, sd, sq, m int
	}{
		{"SARIMA(1,0,0)(1,0,0)12", 1, 0, 0, 1, 0, 0, 12},
		{"SARIMA(0,0,1)(0,0,1)12", 0, 0, 1, 0, 0, 1, 12},
		{"SARIMA(1,0,1)(1,0,1)12", 1, 0, 1, 1, 0, 1, 12},
		{"SARIMA(1,1,0)(1,1,0)12", 1, 1, 0, 1, 1, 0, 12},
		{"SARIMA(1,1,1)(1,1,1)12", 1, 1, 1, 1, 1, 1, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(tt.p, tt.d, tt.q, tt.sp, tt.sd, tt.sq, tt.m)
			if err := model.Fit(series); err != nil {
				t.Fatalf("Model %s failed: %v", tt.name, err)
			}

			forecasts, lower, upper, err := model.PredictWithInterval(6, 0.9)
			if err != nil {
				t.Fatalf("Prediction failed: %v", err)
			}
			for h := range forecasts {
				if math.IsNaN(lower[h]) || math.IsNaN(upper[h]) {
					t.Errorf("Step %d has an undefined bound", h)
				}
			}

			t.Logf("%s - AIC: %.2f, Forecasts: %v", tt.name, model.AIC, forecasts)
		})
	}
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		model  *Model
	}{
		{"empty", []float64{}, New(0, 0, 0, 0, 0, 0, 12)},
		{"too short for differencing", []float64{5}, New(0, 1, 0, 0, 0, 0, 12)},
		{"seasonal diff longer than series", []float64{1, 2, 3, 4, 5}, New(0, 0, 0, 0, 1, 0, 12)},
		{"seasonal lag beyond data", []float64{1, 2, 3, 4, 5, 6, 7, 8}, New(0, 0, 0, 1, 0, 0, 12)},
		{"too few observations", []float64{1, 2}, New(1, 0, 1, 0, 0, 0, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Fit(timeseries.New(tt.values))
			if !errors.Is(err, ErrInsufficientData) {
				t.Errorf("Expected ErrInsufficientData, got %v", err)
			}
			if tt.model.Fitted() {
				t.Error("Model should not report fitted after a failed fit")
			}
		})
	}

	if err := New(0, 0, 0, 0, 0, 0, 12).Fit(timeseries.New([]float64{1, math.NaN(), 3, 4})); err == nil {
		t.Error("Expected error for NaN input")
	}
}

func TestPredictErrors(t *testing.T) {
	model := New(0, 0, 0, 0, 0, 0, 12)
	if _, err := model.Predict(3); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}

	if err := model.Fit(timeseries.New([]float64{1, 2, 3, 4, 5, 6})); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	if _, err := model.Predict(0); err == nil {
		t.Error("Expected error for zero steps")
	}
	if _, _, _, err := model.PredictWithInterval(3, 1.5); err == nil {
		t.Error("Expected error for confidence outside (0, 1)")
	}
}
