// Package dataset loads raw observation tables and persists result datasets.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileNotFound is returned when the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// FileFormatError is returned for files whose extension is neither .csv nor .xlsx.
type FileFormatError struct {
	Path string
	Ext  string
}

func (e *FileFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s (valid formats: .csv, .xlsx)", e.Ext, e.Path)
}

// Table is a raw observation table with every cell kept as text.
type Table struct {
	Columns []string
	Rows    [][]string
	// ExcelDates is set when cells come from a spreadsheet and date columns
	// may hold Excel serial numbers.
	ExcelDates bool
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row, col, or "" for cells beyond a short row.
func (t *Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Load reads a table from a .csv or .xlsx file.
func Load(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, &FileFormatError{Path: path, Ext: ext}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if ext == ".xlsx" {
		return LoadXLSX(path)
	}
	return LoadCSV(path)
}
