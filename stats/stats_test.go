package stats

import (
	"math"
	"testing"

	"github.com/sartorproj/salesforecast/timeseries"
)

func TestACF(t *testing.T) {
	// Create a simple AR(1) process
	n := 100
	phi := 0.8
	values := make([]float64, n)
	values[0] = 0
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}

	series := timeseries.New(values)
	acf := ACF(series, 10)

	if acf == nil {
		t.Fatal("ACF returned nil")
	}

	if len(acf) != 11 {
		t.Errorf("Expected 11 lags, got %d", len(acf))
	}

	// ACF at lag 0 should be 1
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}

	for i, v := range acf {
		if v < -1-1e-10 || v > 1+1e-10 {
			t.Errorf("ACF at lag %d out of range: %f", i, v)
		}
	}
}

func TestACFConstantSeries(t *testing.T) {
	series := timeseries.New([]float64{5, 5, 5, 5})
	if acf := ACF(series, 2); acf != nil {
		t.Errorf("Expected nil ACF for constant series, got %v", acf)
	}
}

func TestACFClampsLag(t *testing.T) {
	series := timeseries.New([]float64{1, 2, 3})
	acf := ACF(series, 10)
	if len(acf) != 3 {
		t.Errorf("Expected maxLag clamped to n-1, got %d values", len(acf))
	}
}

func TestACFAtMatchesACF(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		values[i] = float64(i%12) + 0.1*float64(i)
	}
	series := timeseries.New(values)

	full := ACF(series, 24)
	picked := ACFAt(series, 1, 12, 24, 48, -1)
	if len(picked) != 5 {
		t.Fatalf("Expected 5 values, got %d", len(picked))
	}

	for i, lag := range []int{1, 12, 24} {
		if math.Abs(picked[i]-full[lag]) > 1e-12 {
			t.Errorf("lag %d: ACFAt %f, ACF %f", lag, picked[i], full[lag])
		}
	}
	if picked[3] != 0 || picked[4] != 0 {
		t.Errorf("Out of range lags should be 0, got %f and %f", picked[3], picked[4])
	}
}

func TestACFNearConstantSeries(t *testing.T) {
	series := timeseries.New([]float64{1e6, 1e6, 1e6 + 1e-7, 1e6})
	if acf := ACFAt(series, 1); acf != nil {
		t.Errorf("Expected nil ACF for a numerically constant series, got %v", acf)
	}
	if acf := ACFAt(timeseries.New(nil)); acf != nil {
		t.Errorf("Expected nil ACF for an empty series, got %v", acf)
	}
}

func TestQuantile(t *testing.T) {
	data := []float64{7, 1, 3, 5, 9}

	tests := []struct {
		p        float64
		expected float64
	}{
		{0, 1},
		{0.25, 3},
		{0.5, 5},
		{0.75, 7},
		{1, 9},
		{0.1, 1.8},
	}

	for _, tt := range tests {
		got := Quantile(data, tt.p)
		if math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Quantile(%v): expected %f, got %f", tt.p, tt.expected, got)
		}
	}
}

func TestQuantileInterpolates(t *testing.T) {
	// Position (4-1)*0.25 = 0.75 between 10 and 20.
	got := Quantile([]float64{10, 20, 30, 40}, 0.25)
	if math.Abs(got-17.5) > 1e-10 {
		t.Errorf("Expected 17.5, got %f", got)
	}
}

func TestQuantileEdgeCases(t *testing.T) {
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Error("Expected NaN for empty data")
	}
	if !math.IsNaN(Quantile([]float64{math.NaN()}, 0.5)) {
		t.Error("Expected NaN when all values are NaN")
	}
	if !math.IsNaN(Quantile([]float64{1, 2}, 1.5)) {
		t.Error("Expected NaN for p outside [0,1]")
	}
	if got := Quantile([]float64{math.NaN(), 4, 2}, 0.5); got != 3 {
		t.Errorf("Expected NaN values to be ignored, got %f", got)
	}
}

func TestTukeyFences(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	f := TukeyFences(data)

	if f.Q1 != 3 || f.Q3 != 7 {
		t.Errorf("Expected Q1=3 Q3=7, got Q1=%f Q3=%f", f.Q1, f.Q3)
	}
	if f.IQR != 4 {
		t.Errorf("Expected IQR=4, got %f", f.IQR)
	}
	if f.Upper != 13 || f.Lower != -3 {
		t.Errorf("Expected whiskers [-3, 13], got [%f, %f]", f.Lower, f.Upper)
	}
}
