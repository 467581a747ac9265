package verify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/fapiao-tools/invoice-recon/constants"
	"github.com/fapiao-tools/invoice-recon/internal/extract"
)

// DefaultTolerance is the absolute difference below which two monetary or
// percentage values count as equal.
const DefaultTolerance = 0.01

// Row is one converted spreadsheet row, as handed to the verifier.
// A nil numeric field is a blank cell.
type Row struct {
	Index              int // 1-based workbook row (data starts under the header)
	InvoiceNumber      string
	Amount             *float64
	TaxRate            *float64
	AmountExcludingTax *float64
	TaxAmount          *float64
}

// Verifier cross-checks converted rows against the PDFs they came from.
// Rows are independent: a failure on one never stops the rest.
type Verifier struct {
	extractor extract.FieldExtractor
	tolerance float64
	logger    *slog.Logger
}

func NewVerifier(extractor extract.FieldExtractor, tolerance float64, logger *slog.Logger) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{extractor: extractor, tolerance: tolerance, logger: logger}
}

// Verify classifies every row against its PDF. It no-ops (empty report) when
// there is no PDF directory, the directory does not exist, or there are no
// rows.
func (v *Verifier) Verify(ctx context.Context, rows []Row, pdfDir string, recursive bool) *Report {
	report := &Report{RunID: uuid.New(), PDFDir: pdfDir, Recursive: recursive}

	if len(rows) == 0 || pdfDir == "" {
		return report
	}
	if info, err := os.Stat(pdfDir); err != nil || !info.IsDir() {
		v.logger.Warn("verify.pdf_dir.missing", "pdf_dir", pdfDir)
		return report
	}

	v.logger.Info("verify.run.start",
		"run_id", report.RunID.String(),
		"pdf_dir", pdfDir,
		"recursive", recursive,
		"rows", len(rows),
	)

	for _, row := range rows {
		report.Results = append(report.Results, v.verifyRow(ctx, row, pdfDir, recursive))
	}

	c := report.Counts()
	v.logger.Info("verify.run.ok",
		"run_id", report.RunID.String(),
		"total", c.Total,
		"matched", c.Matched,
		"mismatched", c.Mismatched,
		"pdf_not_found", c.NotFound,
		"extraction_failed", c.Failed,
		"skipped", c.Skipped,
	)
	return report
}

// verifyRow applies the classification rules in order; the first applicable
// rule decides the status.
func (v *Verifier) verifyRow(ctx context.Context, row Row, pdfDir string, recursive bool) RowResult {
	number := strings.TrimSpace(row.InvoiceNumber)
	if number == "" {
		return RowResult{
			Row:     row.Index,
			Status:  constants.StatusSkipped,
			Message: "invoice number cell is empty",
		}
	}

	pdfPath := FindPDF(pdfDir, number, recursive)
	if pdfPath == "" {
		return RowResult{
			Row:           row.Index,
			InvoiceNumber: number,
			Status:        constants.StatusPDFNotFound,
			Message:       "no matching PDF file",
		}
	}

	extraction, err := v.extractor.ExtractFile(ctx, pdfPath)
	if err != nil {
		// Unreadable file or no text layer: every field is implicitly missing.
		return RowResult{
			Row:           row.Index,
			InvoiceNumber: number,
			Status:        constants.StatusExtractionFailed,
			Message:       err.Error(),
			MissingFields: append([]string(nil), constants.AllFieldNames...),
			PDFPath:       pdfPath,
		}
	}

	missing := extraction.MissingFields
	missingCritical := intersect(missing, constants.CriticalFieldNames)
	if len(missingCritical) == len(constants.CriticalFieldNames) {
		return RowResult{
			Row:           row.Index,
			InvoiceNumber: number,
			Status:        constants.StatusExtractionFailed,
			Message:       "critical fields not extractable: " + strings.Join(missingCritical, ", "),
			MissingFields: missing,
			PDFPath:       pdfPath,
		}
	}

	discrepancies := v.compare(row, number, &extraction.Invoice, missing)
	if len(discrepancies) > 0 {
		return RowResult{
			Row:           row.Index,
			InvoiceNumber: number,
			Status:        constants.StatusMismatch,
			Discrepancies: discrepancies,
			MissingFields: missing,
			PDFPath:       pdfPath,
		}
	}

	message := "verified"
	if len(missing) > 0 {
		message = "verified (some fields could not be extracted)"
	}
	return RowResult{
		Row:           row.Index,
		InvoiceNumber: number,
		Status:        constants.StatusMatch,
		Message:       message,
		MissingFields: missing,
		PDFPath:       pdfPath,
	}
}

// compare collects one discrepancy string per disagreeing field. A field the
// spreadsheet has but the PDF lacks is a discrepancy too; a field absent on
// either side is simply not comparable.
func (v *Verifier) compare(row Row, number string, inv *extract.Invoice, missing []string) []string {
	var discrepancies []string

	if inv.Number != "" && inv.Number != number {
		discrepancies = append(discrepancies,
			fmt.Sprintf("%s: excel=%s pdf=%s", constants.FieldInvoiceNumber, number, inv.Number))
	}

	if inv.Amount != nil && row.Amount != nil {
		if math.Abs(*row.Amount-*inv.Amount) > v.tolerance {
			discrepancies = append(discrepancies,
				fmt.Sprintf("%s: excel=%.2f pdf=%.2f", constants.FieldInvoiceAmount, *row.Amount, *inv.Amount))
		}
	} else if contains(missing, constants.FieldInvoiceAmount) {
		discrepancies = append(discrepancies,
			fmt.Sprintf("%s: excel=%s pdf=missing", constants.FieldInvoiceAmount, formatCell(row.Amount)))
	}

	// The NaN sentinel means "no rate found on the PDF": excluded from
	// comparison entirely, never a mismatch.
	if !math.IsNaN(inv.TaxRate) && row.TaxRate != nil {
		if math.Abs(*row.TaxRate-inv.TaxRate) > v.tolerance {
			discrepancies = append(discrepancies,
				fmt.Sprintf("%s: excel=%.2f%% pdf=%.2f%%", constants.FieldTaxRate, *row.TaxRate, inv.TaxRate))
		}
	}

	if inv.AmountExcludingTax != nil && row.AmountExcludingTax != nil {
		if math.Abs(*row.AmountExcludingTax-*inv.AmountExcludingTax) > v.tolerance {
			discrepancies = append(discrepancies,
				fmt.Sprintf("%s: excel=%.2f pdf=%.2f", constants.FieldAmountExcludingTax, *row.AmountExcludingTax, *inv.AmountExcludingTax))
		}
	} else if contains(missing, constants.FieldAmountExcludingTax) {
		discrepancies = append(discrepancies,
			fmt.Sprintf("%s: excel=%s pdf=missing", constants.FieldAmountExcludingTax, formatCell(row.AmountExcludingTax)))
	}

	if row.TaxAmount != nil && math.Abs(*row.TaxAmount-inv.TaxAmount) > v.tolerance {
		discrepancies = append(discrepancies,
			fmt.Sprintf("%s: excel=%.2f pdf=%.2f", constants.FieldTaxAmount, *row.TaxAmount, inv.TaxAmount))
	}

	return discrepancies
}

func formatCell(p *float64) string {
	if p == nil {
		return "blank"
	}
	return fmt.Sprintf("%.2f", *p)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func intersect(list, allowed []string) []string {
	var out []string
	for _, v := range list {
		if contains(allowed, v) {
			out = append(out, v)
		}
	}
	return out
}
