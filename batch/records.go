package batch

import (
	"strconv"

	"github.com/sartorproj/salesforecast/accuracy"
	"github.com/sartorproj/salesforecast/forecast"
)

// AccuracyHeader is the header of the accuracy dataset.
var AccuracyHeader = []string{"Product Family", "Product Name", "MSE", "MAPE", "Bias", "Accuracy"}

// ForecastHeader returns the header of the forecast dataset. The period
// column is named after the input date column.
func ForecastHeader(dateColumn string) []string {
	return []string{"lower_value", "upper_value", "predicted_mean", dateColumn, "product_family", "product_name"}
}

const periodLayout = "2006-01-02"

// ForecastRows converts a forecast into dataset rows, one per period.
func ForecastRows(result *forecast.Result, family, name string) [][]string {
	rows := make([][]string, len(result.Points))
	for i, p := range result.Points {
		rows[i] = []string{
			formatFloat(p.Lower),
			formatFloat(p.Upper),
			formatFloat(p.Mean),
			p.Period.Format(periodLayout),
			family,
			name,
		}
	}
	return rows
}

// AccuracyRecord is one row of the accuracy dataset. Nil Metrics mark a
// failed evaluation and persist as empty cells.
type AccuracyRecord struct {
	Family  string
	Name    string
	Metrics *accuracy.Metrics
}

// Row formats the record for the accuracy dataset.
func (r AccuracyRecord) Row() []string {
	if r.Metrics == nil {
		return []string{r.Family, r.Name, "", "", "", ""}
	}
	return []string{
		r.Family,
		r.Name,
		formatFloat(r.Metrics.MSE),
		formatFloat(r.Metrics.MAPE),
		formatFloat(r.Metrics.Bias),
		formatFloat(r.Metrics.Accuracy),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
