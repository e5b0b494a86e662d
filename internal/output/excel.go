// internal/output/excel.go
package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter writes rows to a single-sheet .xlsx workbook with a styled
// header row. Column order follows the sorted key union, same as CSV.
type ExcelWriter struct {
	file      *excelize.File
	path      string
	sheetName string
	headers   []string
	row       int
}

// NewExcelWriter creates a workbook with one named sheet.
func NewExcelWriter(path, sheetName string) (*ExcelWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("excel file path is required")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	file := excelize.NewFile()
	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetName {
		file.SetSheetName(defaultSheet, sheetName)
	}

	return &ExcelWriter{
		file:      file,
		path:      path,
		sheetName: sheetName,
		row:       1,
	}, nil
}

// Write writes the header row followed by one worksheet row per record.
func (w *ExcelWriter) Write(rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	if w.headers == nil {
		w.headers = collectHeaders(rows)
		if err := w.writeHeaders(); err != nil {
			return err
		}
	}

	for _, record := range rows {
		for col, header := range w.headers {
			cell := columnName(col+1) + strconv.Itoa(w.row)
			value := record[header]
			if value == nil {
				value = ""
			}
			if err := w.file.SetCellValue(w.sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
		w.row++
	}
	return nil
}

// Close applies column widths and saves the workbook to disk.
func (w *ExcelWriter) Close() error {
	for col := range w.headers {
		name := columnName(col + 1)
		if err := w.file.SetColWidth(w.sheetName, name, name, 22); err != nil {
			return err
		}
	}
	return w.file.SaveAs(w.path)
}

// writeHeaders writes the bold header row.
func (w *ExcelWriter) writeHeaders() error {
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E0E0E0"},
			Pattern: 1,
		},
	})
	if err != nil {
		return err
	}

	for col, header := range w.headers {
		cell := columnName(col+1) + strconv.Itoa(w.row)
		if err := w.file.SetCellValue(w.sheetName, cell, header); err != nil {
			return err
		}
		if err := w.file.SetCellStyle(w.sheetName, cell, cell, style); err != nil {
			return err
		}
	}

	w.row++
	return nil
}

// columnName converts a 1-based column number to an Excel column name
// (A, B, ..., Z, AA, AB, ...).
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
