package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"statatab/domain/table"
)

// WriteTable saves a table as an .xlsx workbook with one header row followed
// by one row per observation. Missing cells are left blank, so a written
// workbook reads back through Session with the same missing cells.
func WriteTable(t *table.Table, filePath, sheet string) error {
	if sheet == "" {
		sheet = "Sheet1"
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
	}

	for c, name := range t.ColumnNames() {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %s: %w", name, err)
		}
	}

	for c, col := range t.Columns {
		for r, v := range col.Values {
			if table.IsMissing(v) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", filePath, err)
	}
	return nil
}
