package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Appender appends rows to a CSV dataset. The header is written only when
// the file does not exist yet; existing rows are never rewritten.
type Appender struct {
	Path   string
	Header []string
}

// NewAppender creates an appender for the dataset at path.
func NewAppender(path string, header []string) *Appender {
	return &Appender{Path: path, Header: header}
}

// Reset replaces the dataset with a header-only file.
func (a *Appender) Reset() (err error) {
	if err := a.mkdir(); err != nil {
		return err
	}
	file, err := os.Create(a.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", a.Path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", a.Path, cerr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(a.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (a *Appender) mkdir() error {
	if dir := filepath.Dir(a.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Append opens the dataset, writes rows and closes it again.
func (a *Appender) Append(rows [][]string) (err error) {
	if len(rows) == 0 {
		return nil
	}

	if err := a.mkdir(); err != nil {
		return err
	}

	_, statErr := os.Stat(a.Path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", a.Path, statErr)
	}

	file, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.Path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", a.Path, cerr)
		}
	}()

	w := csv.NewWriter(file)
	if !exists {
		if err := w.Write(a.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
