package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/fapiao-tools/invoice-recon/constants"
)

// Column width sizing: estimated cell width counts non-ASCII runes (CJK) as
// two units, then pads and clamps.
const (
	widthPadding = 2
	widthMin     = 10
	widthMax     = 50
)

// ValidateOutput makes sure the output path is writable and an .xlsx file,
// creating the parent directory when needed.
func ValidateOutput(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return fmt.Errorf("output file must be an .xlsx workbook: %s", path)
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteOutput writes the reimbursement sheet (header row plus data rows) and
// sizes every column to its content. An existing file is overwritten.
func WriteOutput(path, sheet string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for col, h := range constants.OutputHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		for col, value := range row {
			if value == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			// Keep numbers numeric so the output sums stay usable.
			if v, err := parseNumericCell(value); err == nil && col != OutInvoiceNumber {
				_ = f.SetCellValue(sheet, cell, v)
			} else {
				_ = f.SetCellValue(sheet, cell, value)
			}
		}
	}

	adjustColumnWidths(f, sheet, rows)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func adjustColumnWidths(f *excelize.File, sheet string, rows [][]string) {
	for col := 0; col < len(constants.OutputHeader); col++ {
		max := cellWidth(constants.OutputHeader[col])
		for _, row := range rows {
			if col < len(row) {
				if w := cellWidth(row[col]); w > max {
					max = w
				}
			}
		}
		adjusted := max + widthPadding
		if adjusted < widthMin {
			adjusted = widthMin
		}
		if adjusted > widthMax {
			adjusted = widthMax
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, name, name, float64(adjusted))
	}
}

// cellWidth estimates rendered width: CJK and other non-ASCII runes are
// roughly twice as wide as ASCII.
func cellWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > unicode.MaxASCII {
			w += 2
		} else {
			w++
		}
	}
	return w
}
