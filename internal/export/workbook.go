// Package export renders reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// workbook writes rows sheet by sheet.
type workbook struct {
	file      *excelize.File
	sheet     string
	row       int
	headerFmt int
}

func newWorkbook() *workbook {
	return &workbook{file: excelize.NewFile()}
}

// addSheet starts a new sheet; the first call renames the default one.
func (w *workbook) addSheet(name string) error {
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	if w.sheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.sheet = name
	w.row = 1
	return nil
}

// header writes a bold row.
func (w *workbook) header(columns ...string) error {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := w.write(values); err != nil {
		return err
	}

	if w.headerFmt == 0 {
		style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		w.headerFmt = style
	}
	start, err := excelize.CoordinatesToCellName(1, w.row-1)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(max(len(columns), 1), w.row-1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.sheet, start, end, w.headerFmt); err != nil {
		return fmt.Errorf("style header row %d: %w", w.row-1, err)
	}
	return nil
}

func (w *workbook) write(values []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

func (w *workbook) save(out io.Writer) error {
	defer w.file.Close()
	if _, err := w.file.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
