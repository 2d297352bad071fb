// Package timeseries provides time series data structures and utilities.
//
// A Series pairs period labels with values. Prepared sales series are built by
// Resample, which sums raw observations into cadence buckets and zero-fills the
// periods that had no rows, so the result is ordered and gap-free.
//
// # Cadences
//
// Two cadences are supported:
//
//	timeseries.Monthly // calendar months, labelled by the 1st of the month
//	timeseries.Weekly  // weeks ending on Monday, labelled by that Monday
//
// Cadence.Bucket maps a timestamp to its period label and Cadence.Next steps to
// the following period:
//
//	c, _ := timeseries.ParseCadence("monthly")
//	p := c.Bucket(time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)) // 2024-03-01
//	next := c.Next(p)                                          // 2024-04-01
//
// # Creating a Series
//
//	series, err := timeseries.Resample(dates, sales, timeseries.Monthly)
//
//	// or directly from aggregated values
//	series, err := timeseries.NewPeriodic(start, timeseries.Weekly, values)
//
// # Transformations
//
//	diff := series.Diff()             // First difference
//	sdiff := series.SeasonalDiff(12)  // Seasonal difference
//	train, holdout := series.Split(3) // Hold out the last 3 periods
package timeseries
