package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/fapiao-tools/invoice-recon/constants"
)

func TestWriteOutputRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rows := [][]string{
		{"1", "2025-03-04", "", "100.00", "9%", "91.74", "8.26", "电子普通发票", "12345678", ""},
	}

	if err := WriteOutput(path, constants.OutputSheetName, rows); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}

	got, err := ReadConverted(path, constants.OutputSheetName)
	if err != nil {
		t.Fatalf("ReadConverted: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReadConverted returned %d rows, want 1", len(got))
	}
	row := got[0]
	if row[OutSeq] != "1" {
		t.Errorf("OutSeq = %q, want 1", row[OutSeq])
	}
	// The invoice number must survive as text, not a float.
	if row[OutInvoiceNumber] != "12345678" {
		t.Errorf("OutInvoiceNumber = %q, want 12345678", row[OutInvoiceNumber])
	}
	if v, err := parseNumericCell(row[OutAmount]); err != nil || v != 100.00 {
		t.Errorf("OutAmount = %q, want numeric 100", row[OutAmount])
	}
	if row[OutTaxRate] != "9%" {
		t.Errorf("OutTaxRate = %q, want 9%%", row[OutTaxRate])
	}
}

func TestWriteOutputHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteOutput(path, constants.OutputSheetName, nil); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	all, err := f.GetRows(constants.OutputSheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("workbook has %d rows, want header only", len(all))
	}
	for i, want := range constants.OutputHeader {
		if i >= len(all[0]) || all[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, cellOrEmpty(all[0], i), want)
		}
	}

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != constants.OutputSheetName {
		t.Errorf("sheets = %v, want only %q", sheets, constants.OutputSheetName)
	}
}

func cellOrEmpty(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func TestValidateOutput(t *testing.T) {
	dir := t.TempDir()

	if err := ValidateOutput(filepath.Join(dir, "ok.xlsx")); err != nil {
		t.Errorf("ValidateOutput(.xlsx) = %v, want nil", err)
	}
	if err := ValidateOutput(filepath.Join(dir, "bad.csv")); err == nil {
		t.Error("ValidateOutput(.csv) = nil, want error")
	}
	// Parent directories get created.
	nested := filepath.Join(dir, "a", "b", "out.xlsx")
	if err := ValidateOutput(nested); err != nil {
		t.Errorf("ValidateOutput(nested) = %v, want nil", err)
	}
}

func TestCellWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"abc", 3},
		{"发票号码", 8},
		{"9%", 2},
		{"发票no", 6},
	}
	for _, tt := range tests {
		if got := cellWidth(tt.in); got != tt.want {
			t.Errorf("cellWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
