package preprocess

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/salesforecast/stats"
)

// OutlierReport partitions observations by the upper Tukey whisker.
type OutlierReport struct {
	Fences   stats.Fences
	Outliers []Observation
	Kept     []Observation
}

// RemoveOutliers computes Q1, Q3 and IQR over the non-missing values and
// splits off rows whose value is at or above Q3 + 1.5*IQR. There is no lower
// trim, and missing values are never outliers.
func RemoveOutliers(obs []Observation) OutlierReport {
	report := OutlierReport{Fences: stats.TukeyFences(Values(obs))}
	for _, o := range obs {
		if !o.Missing && o.Value >= report.Fences.Upper {
			report.Outliers = append(report.Outliers, o)
			continue
		}
		report.Kept = append(report.Kept, o)
	}
	return report
}

// ImputeMean replaces missing values with the mean of the non-missing ones
// and returns the filled copy together with that mean. When every value is
// missing the observations are returned unchanged and the mean is NaN.
func ImputeMean(obs []Observation) ([]Observation, float64) {
	present := make([]float64, 0, len(obs))
	for _, o := range obs {
		if !o.Missing {
			present = append(present, o.Value)
		}
	}
	if len(present) == 0 {
		return obs, math.NaN()
	}
	mean := stat.Mean(present, nil)

	out := make([]Observation, len(obs))
	copy(out, obs)
	for i := range out {
		if out[i].Missing {
			out[i].Value = mean
			out[i].Missing = false
		}
	}
	return out, mean
}
