package processor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fapiao-tools/invoice-recon/constants"
	"github.com/fapiao-tools/invoice-recon/internal/common"
	"github.com/fapiao-tools/invoice-recon/internal/spreadsheet"
)

func writeSummaryWorkbook(t *testing.T, dir string, dataRows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(constants.InputSheetName)
	require.NoError(t, err)

	rows := append([][]any{{"表头"}}, dataRows...)
	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			require.NoError(t, f.SetCellValue(constants.InputSheetName, cell, value))
		}
	}

	path := filepath.Join(dir, "汇总.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// summaryRow builds a 22-cell input row with the reconciled columns filled.
func summaryRow(number, date, excl, rate, tax, amount, kind string) []any {
	row := make([]any, 22)
	for i := range row {
		row[i] = ""
	}
	row[spreadsheet.ColInvoiceNumber] = number
	row[spreadsheet.ColDate] = date
	row[spreadsheet.ColExclTax] = excl
	row[spreadsheet.ColTaxRate] = rate
	row[spreadsheet.ColTaxAmount] = tax
	row[spreadsheet.ColAmount] = amount
	row[spreadsheet.ColInvoiceKind] = kind
	return row
}

func TestProcessWritesMergedWorkbook(t *testing.T) {
	dir := t.TempDir()
	input := writeSummaryWorkbook(t, dir, [][]any{
		summaryRow("111", "2025-03-04", "91.74", "9%", "8.26", "100.00", "电子普通发票"),
		summaryRow("111", "2025-03-04", "45.87", "9%", "4.13", "50.00", "电子普通发票"),
		summaryRow("222", "2025-03-05", "50.00", "6%", "3.00", "53.00", "电子专用发票"),
	})

	cfg := common.DefaultConfig()
	cfg.InputPath = input
	cfg.OutputPath = filepath.Join(dir, constants.DefaultOutputFilename)

	p := NewProcessor(cfg, nil, nil)
	report, err := p.Process(context.Background())
	require.NoError(t, err)
	// No PDFs anywhere near the input: verification is a no-op.
	require.Empty(t, report.Results)

	got, err := spreadsheet.ReadConverted(cfg.OutputPath, cfg.OutputSheet)
	require.NoError(t, err)
	require.Len(t, got, 2, "duplicate invoice rows must merge")

	merged := got[0]
	require.Equal(t, "111", merged[spreadsheet.OutInvoiceNumber])
	require.Equal(t, "150", merged[spreadsheet.OutAmount])
	require.Equal(t, "2025-03-04", merged[spreadsheet.OutDate])

	require.Equal(t, "222", got[1][spreadsheet.OutInvoiceNumber])
}

func TestProcessRejectsMissingInput(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.InputPath = filepath.Join(t.TempDir(), "absent.xlsx")
	cfg.OutputPath = filepath.Join(t.TempDir(), "out.xlsx")

	_, err := NewProcessor(cfg, nil, nil).Process(context.Background())
	require.Error(t, err)
}

func TestToVerifyRows(t *testing.T) {
	rows := [][]string{
		{"1", "2025-03-04", "", "100.00", "9%", "91.74", "8.26", "电子普通发票", "12345678", ""},
		{"2", "2025-03-05", "", "", "0.09", "", "", "", "  ", ""},
	}

	got := toVerifyRows(rows)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, 2, first.Index, "data rows start under the header")
	require.Equal(t, "12345678", first.InvoiceNumber)
	require.NotNil(t, first.Amount)
	require.Equal(t, 100.00, *first.Amount)
	require.NotNil(t, first.TaxRate)
	require.Equal(t, 9.0, *first.TaxRate)

	second := got[1]
	require.Equal(t, 3, second.Index)
	require.Empty(t, second.InvoiceNumber)
	require.Nil(t, second.Amount)
	// A fractional rate cell is the numeric rendering of a percent format.
	require.NotNil(t, second.TaxRate)
	require.Equal(t, 9.0, *second.TaxRate)
}

func TestCellPercentForms(t *testing.T) {
	row := []string{"9%", "9", "0.09", "13%", ""}

	for i, want := range []float64{9, 9, 9, 13} {
		got := cellPercent(row, i)
		require.NotNil(t, got, "col %d", i)
		require.Equal(t, want, *got, "col %d", i)
	}
	require.Nil(t, cellPercent(row, 4))
	require.Nil(t, cellPercent(row, 99))
}
