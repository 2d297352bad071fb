// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"time"
)

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
	Cadence    Cadence
}

// New creates a new time series from values, without timestamps.
func New(values []float64) *Series {
	return &Series{
		Values: values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// NewPeriodic creates a gap-free series whose first period contains start.
func NewPeriodic(start time.Time, cadence Cadence, values []float64) (*Series, error) {
	if err := cadence.Validate(); err != nil {
		return nil, err
	}

	timestamps := make([]time.Time, len(values))
	period := cadence.Bucket(start)
	for i := range values {
		timestamps[i] = period
		period = cadence.Next(period)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Cadence:    cadence,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Last returns the final timestamp, or false when the series carries none.
func (s *Series) Last() (time.Time, bool) {
	if len(s.Timestamps) == 0 || len(s.Timestamps) != len(s.Values) {
		return time.Time{}, false
	}
	return s.Timestamps[len(s.Timestamps)-1], true
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}, Cadence: s.Cadence}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	var timestamps []time.Time
	if len(s.Timestamps) == len(s.Values) {
		timestamps = make([]time.Time, len(result))
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + suffix,
		Cadence:    s.Cadence,
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name, Cadence: s.Cadence}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	var timestamps []time.Time
	if len(s.Timestamps) >= end {
		timestamps = make([]time.Time, len(values))
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
		Cadence:    s.Cadence,
	}
}

// Split returns the series without its last n values, and those last n values.
func (s *Series) Split(n int) (head, tail *Series) {
	cut := len(s.Values) - n
	return s.Slice(0, cut), s.Slice(cut, len(s.Values))
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var timestamps []time.Time
	if s.Timestamps != nil {
		timestamps = make([]time.Time, len(s.Timestamps))
		copy(timestamps, s.Timestamps)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
		Cadence:    s.Cadence,
	}
}
