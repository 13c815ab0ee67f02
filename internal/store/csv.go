// Package store persists extracted records as CSV files and multi-sheet workbooks.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

// WriteCSV writes records to path with a header row taken from the first record.
// An empty slice writes nothing and returns ErrNoRecords.
func WriteCSV(records []models.Row, path string) error {
	if len(records) == 0 {
		return models.ErrNoRecords
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &models.PersistenceError{Path: path, Cause: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &models.PersistenceError{Path: path, Cause: err}
	}

	w := csv.NewWriter(f)
	if err := w.Write(records[0].Header()); err != nil {
		f.Close()
		return &models.PersistenceError{Path: path, Cause: err}
	}
	for _, r := range records {
		if err := w.Write(r.Values()); err != nil {
			f.Close()
			return &models.PersistenceError{Path: path, Cause: err}
		}
	}
	w.Flush()

	if err := errors.Join(w.Error(), f.Close()); err != nil {
		return &models.PersistenceError{Path: path, Cause: err}
	}
	return nil
}

// ReadCSV loads a CSV file keyed by its header row.
// Short rows yield empty strings for missing columns.
func ReadCSV(path string) (header []string, rows []map[string]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err = r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, rows, fmt.Errorf("read %s: %w", path, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
