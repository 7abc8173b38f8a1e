package dataset

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds observations in a workbook.
const SheetName = "observations"

func writeXLSX(path string, recs [][]string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("dataset: xlsx: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("dataset: xlsx: %w", err)
	}
	for i, rec := range recs {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = cellValue(i, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("dataset: xlsx: %w", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("dataset: xlsx row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("dataset: xlsx: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("dataset: save %s: %w", path, err)
	}
	return nil
}

// cellValue stores data cells as numbers so the workbook is usable in a
// spreadsheet; the header row stays text.
func cellValue(row int, v string) any {
	if row == 0 {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("dataset: read sheet %q of %s: %w", SheetName, path, err)
	}
	return rows, nil
}
