package spreadsheet

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Input column indexes inside the 信息汇总表 sheet (0-based).
const (
	ColInvoiceNumber = 3  // D
	ColDate          = 8  // I
	ColExclTax       = 16 // Q
	ColTaxRate       = 17 // R
	ColTaxAmount     = 18 // S
	ColAmount        = 19 // T
	ColInvoiceKind   = 21 // V

	// inputWidth pads every row through column V so the mapping never has
	// to bounds-check.
	inputWidth = 22
)

// SourceRow is one raw input row, padded to inputWidth cells.
type SourceRow []string

// ValidateInput rejects unusable input paths before any workbook parsing.
func ValidateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is not a file: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file is empty: %s", path)
	}
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
		return fmt.Errorf("input file must be an Excel workbook (.xlsx or .xls): %s", path)
	}
	return nil
}

// ReadInput reads the data rows of the given sheet, skipping the first
// (header) row and padding each row through column V.
func ReadInput(path, sheet string) ([]SourceRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	out := make([]SourceRow, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(SourceRow, inputWidth)
		copy(row, raw)
		out = append(out, row)
	}
	return out, nil
}

// ReadConverted reads the data rows of an already-converted workbook (the
// 费用 layout), padded to the output width.
func ReadConverted(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	out := make([][]string, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make([]string, outputWidth)
		copy(row, raw)
		out = append(out, row)
	}
	return out, nil
}
