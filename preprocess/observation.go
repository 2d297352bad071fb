// Package preprocess turns raw observation tables into prepared series.
package preprocess

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/salesforecast/dataset"
)

// ColumnNotFoundError is returned when a requested column is absent.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q does not exist in the table", e.Column)
}

// DateParseError is returned when a date cell cannot be parsed.
type DateParseError struct {
	Row   int // 1-based data row
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q", e.Row, e.Value)
}

// ValueParseError is returned when a value cell is neither numeric nor missing.
type ValueParseError struct {
	Row    int // 1-based data row
	Column string
	Value  string
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("row %d: column %q has non-numeric value %q", e.Row, e.Column, e.Value)
}

// Columns names the table columns used by the pipeline. Family and Name are
// optional and only needed for hierarchy filtering.
type Columns struct {
	Date   string
	Value  string
	Family string
	Name   string
}

// Observation is one typed raw row.
type Observation struct {
	Date    time.Time
	Value   float64 // NaN when Missing
	Missing bool
	Family  string
	Name    string
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// Extract resolves cols in table and converts every row into an Observation.
// Rows with a blank date are dropped.
func Extract(table *dataset.Table, cols Columns) ([]Observation, error) {
	dateIdx, err := column(table, cols.Date)
	if err != nil {
		return nil, err
	}
	valueIdx, err := column(table, cols.Value)
	if err != nil {
		return nil, err
	}
	familyIdx, nameIdx := -1, -1
	if cols.Family != "" {
		if familyIdx, err = column(table, cols.Family); err != nil {
			return nil, err
		}
	}
	if cols.Name != "" {
		if nameIdx, err = column(table, cols.Name); err != nil {
			return nil, err
		}
	}

	obs := make([]Observation, 0, table.Len())
	for i := range table.Rows {
		raw := strings.TrimSpace(table.Cell(i, dateIdx))
		if raw == "" {
			continue
		}
		date, err := ParseDate(raw, table.ExcelDates)
		if err != nil {
			return nil, &DateParseError{Row: i + 1, Value: raw}
		}

		o := Observation{Date: date, Value: math.NaN()}
		cell := strings.TrimSpace(table.Cell(i, valueIdx))
		if missingTokens[strings.ToLower(cell)] {
			o.Missing = true
		} else {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ValueParseError{Row: i + 1, Column: cols.Value, Value: cell}
			}
			o.Value = v
		}
		if familyIdx >= 0 {
			o.Family = table.Cell(i, familyIdx)
		}
		if nameIdx >= 0 {
			o.Name = table.Cell(i, nameIdx)
		}
		obs = append(obs, o)
	}
	return obs, nil
}

func column(table *dataset.Table, name string) (int, error) {
	idx := table.ColumnIndex(name)
	if idx < 0 {
		return -1, &ColumnNotFoundError{Column: name}
	}
	return idx, nil
}

// ParseDate parses a date cell. When excelSerial is set, numeric cells are
// read as Excel serial dates in the 1900 date system.
func ParseDate(s string, excelSerial bool) (time.Time, error) {
	if excelSerial {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return excelize.ExcelDateToTime(f, false)
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognised date format")
}

// Values returns the observation values; missing ones are NaN.
func Values(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Value
	}
	return out
}
