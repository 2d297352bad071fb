package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Cadence is the fixed aggregation period of a prepared series.
type Cadence string

const (
	// Monthly buckets by calendar month, labelled by the first day of the month.
	Monthly Cadence = "monthly"
	// Weekly buckets by weeks ending on Monday, labelled by that Monday.
	Weekly Cadence = "weekly"
)

// ErrUnknownCadence is returned for cadences other than monthly and weekly.
var ErrUnknownCadence = errors.New("unknown cadence")

// ParseCadence parses "monthly" or "weekly" (case-insensitive).
func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToLower(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate reports whether c is a supported cadence.
func (c Cadence) Validate() error {
	switch c {
	case Monthly, Weekly:
		return nil
	}
	return fmt.Errorf("%w: %q (valid: monthly, weekly)", ErrUnknownCadence, string(c))
}

// Bucket returns the label of the period containing t, at midnight UTC.
func (c Cadence) Bucket(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch c {
	case Monthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Weekly:
		ahead := (int(time.Monday) - int(day.Weekday()) + 7) % 7
		return day.AddDate(0, 0, ahead)
	}
	return day
}

// Next returns the label of the period following the one labelled by period.
func (c Cadence) Next(period time.Time) time.Time {
	switch c {
	case Monthly:
		return period.AddDate(0, 1, 0)
	case Weekly:
		return period.AddDate(0, 0, 7)
	}
	return period.AddDate(0, 0, 1)
}

// Resample sums values into cadence buckets and zero-fills every bucket between
// the first and last one. NaN values contribute nothing to their bucket.
func Resample(timestamps []time.Time, values []float64, cadence Cadence) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	if err := cadence.Validate(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New("cannot resample an empty series")
	}

	sums := make(map[time.Time]float64)
	for i, ts := range timestamps {
		b := cadence.Bucket(ts)
		v := values[i]
		if math.IsNaN(v) {
			v = 0
		}
		sums[b] += v
	}

	buckets := make([]time.Time, 0, len(sums))
	for b := range sums {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })

	first, last := buckets[0], buckets[len(buckets)-1]
	var out []time.Time
	var agg []float64
	for p := first; !p.After(last); p = cadence.Next(p) {
		out = append(out, p)
		agg = append(agg, sums[p])
	}

	return &Series{
		Timestamps: out,
		Values:     agg,
		Cadence:    cadence,
	}, nil
}
