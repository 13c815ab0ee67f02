package store

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

// NamedDataset is one sheet of a workbook.
type NamedDataset struct {
	Name string
	Rows []models.Row
}

// WriteWorkbook writes one sheet per dataset in order. Empty datasets become empty sheets.
func WriteWorkbook(datasets []NamedDataset, path string) (err error) {
	if len(datasets) == 0 {
		return models.ErrNoRecords
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &models.PersistenceError{Path: path, Cause: err}
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &models.PersistenceError{Path: path, Cause: cerr}
		}
	}()

	for i, ds := range datasets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), ds.Name); err != nil {
				return &models.PersistenceError{Path: path, Cause: err}
			}
		} else if _, err := f.NewSheet(ds.Name); err != nil {
			return &models.PersistenceError{Path: path, Cause: err}
		}

		if err := writeSheet(f, ds); err != nil {
			return &models.PersistenceError{Path: path, Cause: err}
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return &models.PersistenceError{Path: path, Cause: err}
	}
	return nil
}

func writeSheet(f *excelize.File, ds NamedDataset) error {
	if len(ds.Rows) == 0 {
		return nil
	}

	if err := setRow(f, ds.Name, 1, ds.Rows[0].Header()); err != nil {
		return err
	}
	for i, r := range ds.Rows {
		if err := setRow(f, ds.Name, i+2, r.Values()); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
