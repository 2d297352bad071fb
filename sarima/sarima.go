// Package sarima implements Seasonal ARIMA (SARIMA) models.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/salesforecast/stats"
	"github.com/sartorproj/salesforecast/timeseries"
)

var (
	// ErrInsufficientData is returned when the series is too short for the order.
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	// ErrInvalidOrder is returned for negative orders or a missing seasonal period.
	ErrInvalidOrder = errors.New("invalid model order")
	// ErrNotFitted is returned when predicting with a model that has not been fitted.
	ErrNotFitted = errors.New("model must be fitted before prediction")
)

// coeffBound keeps every AR/MA coefficient strictly inside (-1, 1).
const coeffBound = 0.99

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

// String formats the order as SARIMA(p,d,q)(P,D,Q)[m].
func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// Validate checks that orders are non-negative and that seasonal terms have a period.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 {
		return fmt.Errorf("%w: %s has a negative component", ErrInvalidOrder, o)
	}
	if (o.SP > 0 || o.SD > 0 || o.SQ > 0) && o.M < 1 {
		return fmt.Errorf("%w: seasonal terms need a period of at least 1, got %d", ErrInvalidOrder, o.M)
	}
	return nil
}

// NumParams is the number of estimated parameters: the ARMA coefficients, the
// intercept and the innovation variance.
func (o Order) NumParams() int {
	return o.P + o.Q + o.SP + o.SQ + 2
}

// Model represents a SARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64   // Mean of the differenced series
	Variance  float64   // Residual variance
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	fitted     bool
	data       *timeseries.Series
	diffData   *timeseries.Series
	stages     []stage
	start      int
	residuals  []float64
	fittedVals []float64
}

// stage records the series as it was before one differencing step, so the
// step can be undone when integrating forecasts.
type stage struct {
	lag     int
	history []float64
}

// New creates a new SARIMA model with the specified order.
func New(p, d, q, sp, sd, sq, m int) *Model {
	return NewFromOrder(Order{
		P: p, D: d, Q: q,
		SP: sp, SD: sd, SQ: sq, M: m,
	})
}

// NewFromOrder creates a new SARIMA model from an Order value.
func NewFromOrder(o Order) *Model {
	return &Model{
		Order:     o,
		ARCoeffs:  make([]float64, max(o.P, 0)),
		MACoeffs:  make([]float64, max(o.Q, 0)),
		SARCoeffs: make([]float64, max(o.SP, 0)),
		SMACoeffs: make([]float64, max(o.SQ, 0)),
	}
}

// Fit fits the SARIMA model to the given time series data.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.Order.Validate(); err != nil {
		return err
	}
	if series == nil || series.Len() == 0 {
		return fmt.Errorf("%w: empty series", ErrInsufficientData)
	}
	for i, v := range series.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("series value at index %d is not finite", i)
		}
	}

	m.fitted = false
	m.data = series
	m.stages = nil

	// Apply non-seasonal differencing
	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		m.stages = append(m.stages, stage{lag: 1, history: diffSeries.Values})
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return fmt.Errorf("%w: differencing resulted in empty series", ErrInsufficientData)
		}
	}

	// Apply seasonal differencing
	for i := 0; i < m.Order.SD; i++ {
		m.stages = append(m.stages, stage{lag: m.Order.M, history: diffSeries.Values})
		diffSeries = diffSeries.SeasonalDiff(m.Order.M)
		if diffSeries.Len() == 0 {
			return fmt.Errorf("%w: seasonal differencing resulted in empty series", ErrInsufficientData)
		}
	}

	m.diffData = diffSeries
	n := diffSeries.Len()

	if (m.Order.SP > 0 || m.Order.SQ > 0) && m.Order.M >= n {
		return fmt.Errorf("%w: seasonal lag %d needs more than %d differenced observations",
			ErrInsufficientData, m.Order.M, n)
	}

	// CSS conditions on the first P observations.
	m.start = m.Order.P
	if n-m.start <= m.Order.NumParams() {
		return fmt.Errorf("%w: %s needs more than %d usable observations, got %d",
			ErrInsufficientData, m.Order, m.Order.NumParams(), n-m.start)
	}

	if err := m.fitCSS(); err != nil {
		return err
	}

	m.calculateIC()

	m.fitted = true
	return nil
}

// fitCSS fits the model using Conditional Sum of Squares estimation.
func (m *Model) fitCSS() error {
	y := m.diffData.Values
	m.Intercept = stat.Mean(y, nil)
	m.initCoeffs()

	x0 := m.pack()
	if len(x0) > 0 {
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				m.unpack(x)
				sse := m.sse(y)
				if math.IsNaN(sse) || math.IsInf(sse, 0) {
					return math.MaxFloat64
				}
				return sse
			},
		}
		settings := &optimize.Settings{
			MajorIterations: 500,
			FuncEvaluations: 4000,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Relative:   1e-10,
				Iterations: 100,
			},
		}

		result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{SimplexSize: 0.5})
		if result == nil {
			return fmt.Errorf("CSS optimization failed for %s: %w", m.Order, err)
		}
		for _, v := range result.X {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("CSS optimization diverged for %s", m.Order)
			}
		}
		m.unpack(result.X)
	}

	m.residuals, m.fittedVals = m.filter(y)

	sse := m.sse(y)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return fmt.Errorf("non-finite residuals for %s", m.Order)
	}

	// Unbiased residual variance, floored so exact fits keep a usable likelihood.
	count := len(y) - m.start
	dof := count - (m.Order.NumParams() - 1)
	if dof <= 0 {
		dof = count
	}
	m.Variance = math.Max(sse/float64(dof), m.varianceFloor())

	return nil
}

// initCoeffs seeds the coefficients the way a Yule-Walker style start would:
// half the sample autocorrelation for AR terms and a small positive MA value.
func (m *Model) initCoeffs() {
	p := m.Order.P
	sp := m.Order.SP
	period := m.Order.M

	for i := range m.ARCoeffs {
		m.ARCoeffs[i] = 0
	}
	for i := range m.SARCoeffs {
		m.SARCoeffs[i] = 0
	}

	if p > 0 {
		lags := make([]int, p)
		for i := range lags {
			lags[i] = i + 1
		}
		if acf := stats.ACFAt(m.diffData, lags...); acf != nil {
			for i, r := range acf {
				m.ARCoeffs[i] = r * 0.5
			}
		}
	}

	if sp > 0 {
		lags := make([]int, sp)
		for i := range lags {
			lags[i] = (i + 1) * period
		}
		if acf := stats.ACFAt(m.diffData, lags...); acf != nil {
			for i, r := range acf {
				m.SARCoeffs[i] = r * 0.5
			}
		}
	}

	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}
}

// pack maps the coefficients into the unconstrained optimizer space.
func (m *Model) pack() []float64 {
	var x []float64
	for _, group := range [][]float64{m.ARCoeffs, m.MACoeffs, m.SARCoeffs, m.SMACoeffs} {
		for _, c := range group {
			x = append(x, math.Atanh(clamp(c/coeffBound, -0.999, 0.999)))
		}
	}
	return x
}

// unpack maps optimizer coordinates back into bounded coefficients.
func (m *Model) unpack(x []float64) {
	i := 0
	for _, group := range [][]float64{m.ARCoeffs, m.MACoeffs, m.SARCoeffs, m.SMACoeffs} {
		for j := range group {
			group[j] = coeffBound * math.Tanh(x[i])
			i++
		}
	}
}

// predictAt returns the one-step prediction for index t of the differenced
// series y given the residuals e up to t-1.
func (m *Model) predictAt(y, e []float64, t int) float64 {
	period := m.Order.M
	pred := m.Intercept

	// Non-seasonal AR component
	for i, c := range m.ARCoeffs {
		if k := t - i - 1; k >= 0 {
			pred += c * (y[k] - m.Intercept)
		}
	}

	// Seasonal AR component
	for i, c := range m.SARCoeffs {
		if k := t - (i+1)*period; k >= 0 {
			pred += c * (y[k] - m.Intercept)
		}
	}

	// Non-seasonal MA component
	for i, c := range m.MACoeffs {
		if k := t - i - 1; k >= 0 {
			pred += c * e[k]
		}
	}

	// Seasonal MA component
	for i, c := range m.SMACoeffs {
		if k := t - (i+1)*period; k >= 0 {
			pred += c * e[k]
		}
	}

	return pred
}

// filter runs the model over y and returns residuals and one-step predictions.
// Residuals before the conditioning start are zero.
func (m *Model) filter(y []float64) (residuals, preds []float64) {
	n := len(y)
	residuals = make([]float64, n)
	preds = make([]float64, n)
	for t := 0; t < n; t++ {
		if t < m.start {
			preds[t] = y[t]
			continue
		}
		preds[t] = m.predictAt(y, residuals, t)
		residuals[t] = y[t] - preds[t]
	}
	return residuals, preds
}

// sse is the conditional sum of squared residuals for the current coefficients.
func (m *Model) sse(y []float64) float64 {
	residuals, _ := m.filter(y)
	r := residuals[m.start:]
	return floats.Dot(r, r)
}

// varianceFloor is the smallest variance reported for a fit, scaled to the data.
func (m *Model) varianceFloor() float64 {
	scale := 1.0
	for _, v := range m.data.Values {
		scale = math.Max(scale, math.Abs(v))
	}
	return (1e-8 * scale) * (1e-8 * scale)
}

// calculateIC calculates the log likelihood, AIC, AICc, and BIC.
func (m *Model) calculateIC() {
	n := len(m.residuals) - m.start
	r := m.residuals[m.start:]
	sse := floats.Dot(r, r)

	nf := float64(n)
	sigma2 := math.Max(sse/nf, m.varianceFloor())
	m.LogLik = -nf/2*(math.Log(2*math.Pi)+math.Log(sigma2)) - sse/(2*sigma2)

	k := float64(m.Order.NumParams())
	m.AIC = -2*m.LogLik + 2*k

	// AICc = AIC + 2*k*(k+1)/(n-k-1) - corrected AIC for small sample sizes
	if nf-k-1 > 0 {
		m.AICc = m.AIC + 2*k*(k+1)/(nf-k-1)
	} else {
		m.AICc = math.Inf(1)
	}

	m.BIC = -2*m.LogLik + k*math.Log(nf)
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	forecasts, _, _, err := m.PredictWithInterval(steps, 0.95)
	return forecasts, err
}

// PredictWithInterval generates forecasts with prediction intervals.
// Returns point forecasts, lower bounds, and upper bounds at the given
// confidence level, which must lie strictly between 0 and 1.
func (m *Model) PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, nil, nil, errors.New("steps must be at least 1")
	}
	if !(confidence > 0 && confidence < 1) {
		return nil, nil, nil, fmt.Errorf("confidence must be in (0, 1), got %v", confidence)
	}

	y := m.diffData.Values
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	// Future innovations are zero in expectation.
	for h := 0; h < steps; h++ {
		t := n + h
		extY[t] = m.predictAt(extY, extResiduals, t)
	}

	forecasts = m.integrate(extY[n:])

	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	psi := m.psiWeights(steps)

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	acc := 0.0
	for h := 0; h < steps; h++ {
		acc += psi[h] * psi[h]
		se := math.Sqrt(m.Variance * acc)
		lower[h] = forecasts[h] - z*se
		upper[h] = forecasts[h] + z*se
	}

	return forecasts, lower, upper, nil
}

// integrate undoes differencing to return forecasts on the original scale.
// Stages are undone in reverse order: seasonal first, then non-seasonal.
func (m *Model) integrate(forecasts []float64) []float64 {
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for i := len(m.stages) - 1; i >= 0; i-- {
		st := m.stages[i]
		nh := len(st.history)
		ext := make([]float64, nh+len(result))
		copy(ext, st.history)
		for j, v := range result {
			ext[nh+j] = v + ext[nh+j-st.lag]
		}
		result = ext[nh:]
	}

	return result
}

// psiWeights returns the first steps coefficients of the MA(infinity)
// representation of the integrated model, used for forecast standard errors.
func (m *Model) psiWeights(steps int) []float64 {
	period := m.Order.M

	// phi(B) = 1 - sum ar_i B^i - sum sar_i B^(i*m), times every differencing operator.
	phi := make([]float64, max(m.Order.P, m.Order.SP*period)+1)
	phi[0] = 1
	for i, c := range m.ARCoeffs {
		phi[i+1] -= c
	}
	for i, c := range m.SARCoeffs {
		phi[(i+1)*period] -= c
	}
	for _, st := range m.stages {
		diff := make([]float64, st.lag+1)
		diff[0] = 1
		diff[st.lag] = -1
		phi = polyMul(phi, diff)
	}

	theta := make([]float64, max(m.Order.Q, m.Order.SQ*period)+1)
	theta[0] = 1
	for i, c := range m.MACoeffs {
		theta[i+1] += c
	}
	for i, c := range m.SMACoeffs {
		theta[(i+1)*period] += c
	}

	psi := make([]float64, steps)
	psi[0] = 1
	for j := 1; j < steps; j++ {
		v := 0.0
		if j < len(theta) {
			v = theta[j]
		}
		for k := 1; k <= j && k < len(phi); k++ {
			v -= phi[k] * psi[j-k]
		}
		psi[j] = v
	}
	return psi
}

// Residuals returns the model residuals.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals))
	copy(result, m.residuals)
	return result
}

// FittedValues returns the one-step fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals))
	copy(result, m.fittedVals)
	return result
}

// Fitted reports whether Fit completed successfully.
func (m *Model) Fitted() bool {
	return m.fitted
}

// NObs returns the number of observations the model was fitted on.
func (m *Model) NObs() int {
	if m.data == nil {
		return 0
	}
	return m.data.Len()
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
