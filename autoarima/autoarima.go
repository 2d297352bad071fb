// Package autoarima implements automatic SARIMA model selection.
package autoarima

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sartorproj/salesforecast/sarima"
	"github.com/sartorproj/salesforecast/timeseries"
)

// ErrSearchExhausted is returned when no candidate both fits and passes the
// validity check.
var ErrSearchExhausted = errors.New("model search exhausted: no valid candidate")

// errUndefinedBound marks a candidate whose forecast has an undefined value.
var errUndefinedBound = errors.New("forecast contains undefined values")

// Config holds configuration for the model search.
type Config struct {
	SeasonalPeriod  int         // Seasonal period m shared by every candidate
	ForecastLength  int         // Steps forecast during the validity check
	ConfidenceLevel float64     // Interval confidence in percent, e.g. 90
	Logger          *zap.Logger // Per-candidate trace; nil disables logging
}

// DefaultConfig returns the default search configuration: monthly data with a
// yearly season, a six period horizon and a 90% interval.
func DefaultConfig() *Config {
	return &Config{
		SeasonalPeriod:  12,
		ForecastLength:  6,
		ConfidenceLevel: 90,
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.SeasonalPeriod < 1 {
		return fmt.Errorf("seasonal period must be at least 1, got %d", c.SeasonalPeriod)
	}
	if c.ForecastLength < 1 {
		return fmt.Errorf("forecast length must be at least 1, got %d", c.ForecastLength)
	}
	if !(c.ConfidenceLevel > 0 && c.ConfidenceLevel < 100) {
		return fmt.Errorf("confidence level must be in (0, 100), got %v", c.ConfidenceLevel)
	}
	return nil
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Score is one fitted candidate and its information criterion.
type Score struct {
	Order sarima.Order
	AIC   float64
	Model *sarima.Model
}

// Ranking is a list of fitted candidates ordered by ascending AIC. Equal AIC
// values keep candidate enumeration order.
type Ranking []Score

// Selection is the outcome of a successful search.
type Selection struct {
	Order sarima.Order
	AIC   float64
	// Model is the winning candidate, already fitted on the searched series.
	Model *sarima.Model

	ModelsEvaluated int // Candidates that fitted
	Rejected        int // Candidates discarded by the validity check
}

// Predict generates point forecasts from the selected model.
func (s *Selection) Predict(steps int) ([]float64, error) {
	return s.Model.Predict(steps)
}

// Candidates enumerates the 64 candidate orders for seasonal period m:
// (p,d,q) and (P,D,Q) each range over {0,1}, lexicographically with the
// non-seasonal triple outermost.
func Candidates(m int) []sarima.Order {
	orders := make([]sarima.Order, 0, 64)
	for p := 0; p <= 1; p++ {
		for d := 0; d <= 1; d++ {
			for q := 0; q <= 1; q++ {
				for sp := 0; sp <= 1; sp++ {
					for sd := 0; sd <= 1; sd++ {
						for sq := 0; sq <= 1; sq++ {
							orders = append(orders, sarima.Order{
								P: p, D: d, Q: q,
								SP: sp, SD: sd, SQ: sq, M: m,
							})
						}
					}
				}
			}
		}
	}
	return orders
}

// Rank fits every candidate on series and returns the ones that fitted,
// ordered by AIC. Candidates that fail to fit are skipped.
func Rank(series *timeseries.Series, config *Config) Ranking {
	log := config.logger()

	var ranking Ranking
	for i, order := range Candidates(config.SeasonalPeriod) {
		model := sarima.NewFromOrder(order)
		if err := model.Fit(series); err != nil {
			log.Debug("candidate skipped",
				zap.Int("candidate", i+1),
				zap.Stringer("order", order),
				zap.Error(err))
			continue
		}
		if math.IsNaN(model.AIC) {
			log.Debug("candidate skipped",
				zap.Int("candidate", i+1),
				zap.Stringer("order", order),
				zap.String("reason", "undefined AIC"))
			continue
		}

		log.Debug("candidate fitted",
			zap.Int("candidate", i+1),
			zap.Stringer("order", order),
			zap.Float64("aic", model.AIC))
		ranking = append(ranking, Score{Order: order, AIC: model.AIC, Model: model})
	}

	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].AIC < ranking[b].AIC
	})
	return ranking
}

// SelectModel searches the candidate grid for the lowest-AIC model whose
// forecast of ForecastLength steps has no undefined lower bound.
func SelectModel(series *timeseries.Series, config *Config) (*Selection, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrSearchExhausted)
	}

	ranking := Rank(series, config)
	confidence := config.ConfidenceLevel / 100

	selection, err := choose(ranking, func(s Score) error {
		return validate(s.Model, config.ForecastLength, confidence)
	}, config.logger())
	if err != nil {
		return nil, fmt.Errorf("%w (%d of %d candidates fitted)",
			err, len(ranking), len(Candidates(config.SeasonalPeriod)))
	}
	return selection, nil
}

// choose walks the ranking from the lowest AIC and returns the first
// candidate accepted by valid.
func choose(ranking Ranking, valid func(Score) error, log *zap.Logger) (*Selection, error) {
	rejected := 0
	for _, s := range ranking {
		if err := valid(s); err != nil {
			rejected++
			log.Debug("candidate rejected",
				zap.Stringer("order", s.Order),
				zap.Float64("aic", s.AIC),
				zap.Error(err))
			continue
		}
		return &Selection{
			Order:           s.Order,
			AIC:             s.AIC,
			Model:           s.Model,
			ModelsEvaluated: len(ranking),
			Rejected:        rejected,
		}, nil
	}
	return nil, ErrSearchExhausted
}

// validate forecasts steps ahead and rejects undefined means or lower bounds.
func validate(model *sarima.Model, steps int, confidence float64) error {
	mean, lower, _, err := model.PredictWithInterval(steps, confidence)
	if err != nil {
		return err
	}
	for h := range lower {
		if undefined(lower[h]) {
			return fmt.Errorf("%w: lower bound at step %d", errUndefinedBound, h+1)
		}
		if undefined(mean[h]) {
			return fmt.Errorf("%w: mean at step %d", errUndefinedBound, h+1)
		}
	}
	return nil
}

func undefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
