package preprocess

import (
	"errors"
	"fmt"
	"time"

	"github.com/sartorproj/salesforecast/dataset"
	"github.com/sartorproj/salesforecast/timeseries"
)

// All disables the filter at its hierarchy level.
const All = "All"

// ErrEmptySlice is returned when no observations remain after filtering.
var ErrEmptySlice = errors.New("no observations in slice")

// Options configures Prepare.
type Options struct {
	Columns Columns
	Cadence timeseries.Cadence
	// Family and Name select a hierarchy slice. All, or an empty selector,
	// means no filter at that level.
	Family string
	Name   string
	// ImputeMissing fills missing values with the column mean before slicing.
	ImputeMissing bool
	// RemoveOutliers drops rows at or above the upper Tukey whisker before slicing.
	RemoveOutliers bool
}

// Filter keeps the observations of one hierarchy slice. Each level is
// matched exactly unless its selector is All; a blank selector matches
// only blank values.
func Filter(obs []Observation, family, name string) []Observation {
	anyFamily := family == All
	anyName := name == All
	if anyFamily && anyName {
		return obs
	}

	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if !anyFamily && o.Family != family {
			continue
		}
		if !anyName && o.Name != name {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Aggregate sums observations into cadence buckets. Buckets without rows
// hold 0, and missing values add nothing to their bucket.
func Aggregate(obs []Observation, cadence timeseries.Cadence) (*timeseries.Series, error) {
	if len(obs) == 0 {
		return nil, ErrEmptySlice
	}
	timestamps := make([]time.Time, len(obs))
	for i, o := range obs {
		timestamps[i] = o.Date
	}
	return timeseries.Resample(timestamps, Values(obs), cadence)
}

// Prepare runs the preprocessing pipeline on a raw table: extraction, the
// optional imputation and outlier stages, hierarchy filtering and aggregation.
func Prepare(table *dataset.Table, opts Options) (*timeseries.Series, error) {
	if err := opts.Cadence.Validate(); err != nil {
		return nil, err
	}

	obs, err := Extract(table, opts.Columns)
	if err != nil {
		return nil, err
	}
	obs = Clean(obs, opts.ImputeMissing, opts.RemoveOutliers)

	family, name := selector(opts.Family), selector(opts.Name)
	series, err := Aggregate(Filter(obs, family, name), opts.Cadence)
	if err != nil {
		return nil, err
	}
	series.Name = SliceName(family, name)
	return series, nil
}

// Clean applies the optional raw-table stages in order: mean imputation,
// then outlier removal.
func Clean(obs []Observation, impute, removeOutliers bool) []Observation {
	if impute {
		obs, _ = ImputeMean(obs)
	}
	if removeOutliers {
		obs = RemoveOutliers(obs).Kept
	}
	return obs
}

// SliceName labels a hierarchy slice as "family/name".
func SliceName(family, name string) string {
	return fmt.Sprintf("%s/%s", family, name)
}

func selector(s string) string {
	if s == "" {
		return All
	}
	return s
}
