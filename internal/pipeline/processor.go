package processor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fapiao-tools/invoice-recon/internal/common"
	"github.com/fapiao-tools/invoice-recon/internal/entity"
	"github.com/fapiao-tools/invoice-recon/internal/extract"
	"github.com/fapiao-tools/invoice-recon/internal/repository"
	"github.com/fapiao-tools/invoice-recon/internal/spreadsheet"
	"github.com/fapiao-tools/invoice-recon/internal/verify"
)

// Processor runs the end-to-end reconciliation: read the summary workbook,
// merge duplicate invoices, write the reimbursement workbook, then verify
// the result against the source PDFs.
type Processor struct {
	Config  common.Config
	History *repository.Store // nil disables run history
	Logger  *slog.Logger
}

func NewProcessor(cfg common.Config, history *repository.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Config: cfg, History: history, Logger: logger}
}

// Process converts Config.InputPath into Config.OutputPath and returns the
// verification report for the written rows. The report is nil-safe: when no
// PDF directory is available verification is a no-op.
func (p *Processor) Process(ctx context.Context) (*verify.Report, error) {
	cfg := p.Config
	startedAt := time.Now()

	if err := spreadsheet.ValidateInput(cfg.InputPath); err != nil {
		return nil, err
	}
	if err := spreadsheet.ValidateOutput(cfg.OutputPath); err != nil {
		return nil, err
	}

	rows, err := spreadsheet.ReadInput(cfg.InputPath, cfg.InputSheet)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("process.read.ok", "input", cfg.InputPath, "rows", len(rows))

	// Column sums of the raw input, checked against the output below.
	sumExcl := spreadsheet.SumColumn(rows, spreadsheet.ColExclTax)
	sumTax := spreadsheet.SumColumn(rows, spreadsheet.ColTaxAmount)
	sumAmount := spreadsheet.SumColumn(rows, spreadsheet.ColAmount)

	merged := spreadsheet.Aggregate(rows)
	if n := len(rows) - len(merged); n > 0 {
		p.Logger.Info("process.aggregate.ok", "rows", len(merged), "merged_away", n)
	}

	mapped := spreadsheet.MapToReimbursement(merged)
	if err := spreadsheet.WriteOutput(cfg.OutputPath, cfg.OutputSheet, mapped); err != nil {
		return nil, err
	}
	p.Logger.Info("process.write.ok", "output", cfg.OutputPath, "rows", len(mapped))

	p.checkSums(mapped, sumExcl, sumTax, sumAmount)

	pdfDir := cfg.PDFDir
	if pdfDir == "" {
		pdfDir = verify.FindPDFDirectory(cfg.InputPath)
	}

	report := p.runVerification(ctx, mapped, pdfDir, cfg.Recursive)
	p.saveHistory(ctx, report, startedAt, len(mapped))
	return report, nil
}

// VerifyOnly re-checks an already converted workbook against its PDFs
// without rewriting anything.
func (p *Processor) VerifyOnly(ctx context.Context) (*verify.Report, error) {
	cfg := p.Config
	startedAt := time.Now()

	if err := spreadsheet.ValidateInput(cfg.InputPath); err != nil {
		return nil, err
	}
	rows, err := spreadsheet.ReadConverted(cfg.InputPath, cfg.OutputSheet)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("verify.read.ok", "input", cfg.InputPath, "rows", len(rows))

	pdfDir := cfg.PDFDir
	if pdfDir == "" {
		pdfDir = verify.FindPDFDirectory(cfg.InputPath)
	}

	report := p.runVerification(ctx, rows, pdfDir, cfg.Recursive)
	p.saveHistory(ctx, report, startedAt, len(rows))
	return report, nil
}

func (p *Processor) runVerification(ctx context.Context, rows [][]string, pdfDir string, recursive bool) *verify.Report {
	extractor := extract.NewExtractor(p.Logger)
	verifier := verify.NewVerifier(extractor, p.Config.Tolerance, p.Logger)
	return verifier.Verify(ctx, toVerifyRows(rows), pdfDir, recursive)
}

// checkSums warns when merging changed any of the three monetary column
// totals by more than a cent. This catches bad numeric cells early.
func (p *Processor) checkSums(mapped [][]string, sumExcl, sumTax, sumAmount float64) {
	checks := []struct {
		name  string
		col   int
		input float64
	}{
		{"amount_excluding_tax", spreadsheet.OutExclTax, sumExcl},
		{"tax_amount", spreadsheet.OutTaxAmount, sumTax},
		{"amount", spreadsheet.OutAmount, sumAmount},
	}
	for _, c := range checks {
		output := sumMappedColumn(mapped, c.col)
		if math.Abs(output-c.input) >= 0.01 {
			p.Logger.Warn("process.sum_check.mismatch",
				"column", c.name,
				"input_sum", fmt.Sprintf("%.2f", c.input),
				"output_sum", fmt.Sprintf("%.2f", output),
			)
		} else {
			p.Logger.Debug("process.sum_check.ok", "column", c.name, "sum", fmt.Sprintf("%.2f", output))
		}
	}
}

func sumMappedColumn(rows [][]string, col int) float64 {
	var total float64
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if v, err := parseCellNumber(row[col]); err == nil {
			total += v
		}
	}
	return total
}

// toVerifyRows converts output-layout rows into verifier rows. Index is the
// 1-based workbook row, offset past the header.
func toVerifyRows(rows [][]string) []verify.Row {
	out := make([]verify.Row, 0, len(rows))
	for i, row := range rows {
		vr := verify.Row{Index: i + 2}
		if spreadsheet.OutInvoiceNumber < len(row) {
			vr.InvoiceNumber = strings.TrimSpace(row[spreadsheet.OutInvoiceNumber])
		}
		vr.Amount = cellNumber(row, spreadsheet.OutAmount)
		vr.TaxRate = cellPercent(row, spreadsheet.OutTaxRate)
		vr.AmountExcludingTax = cellNumber(row, spreadsheet.OutExclTax)
		vr.TaxAmount = cellNumber(row, spreadsheet.OutTaxAmount)
		out = append(out, vr)
	}
	return out
}

func cellNumber(row []string, col int) *float64 {
	if col >= len(row) {
		return nil
	}
	v, err := parseCellNumber(row[col])
	if err != nil {
		return nil
	}
	return &v
}

// cellPercent reads a tax rate cell. "9%" and "9" both mean nine percent;
// a fraction below 1 (the numeric rendering of a percent-formatted cell,
// e.g. 0.09) is scaled up.
func cellPercent(row []string, col int) *float64 {
	if col >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[col])
	hadSign := strings.HasSuffix(s, "%")
	v, err := parseCellNumber(strings.TrimSuffix(s, "%"))
	if err != nil {
		return nil
	}
	if !hadSign && v < 1 {
		v *= 100
	}
	return &v
}

func parseCellNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "，", "")
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseFloat(s, 64)
}

// saveHistory persists the run when a history store is configured. Failures
// are logged and swallowed: history must never fail a reconciliation.
func (p *Processor) saveHistory(ctx context.Context, report *verify.Report, startedAt time.Time, rowsProcessed int) {
	if p.History == nil || report == nil {
		return
	}

	finishedAt := time.Now()
	c := report.Counts()
	run := &entity.Run{
		ID:            report.RunID,
		StartedAt:     startedAt,
		FinishedAt:    &finishedAt,
		InputPath:     p.Config.InputPath,
		OutputPath:    p.Config.OutputPath,
		PDFDir:        report.PDFDir,
		Recursive:     report.Recursive,
		RowsProcessed: rowsProcessed,
		Matched:       c.Matched,
		Mismatched:    c.Mismatched,
		NotFound:      c.NotFound,
		Failed:        c.Failed,
		Skipped:       c.Skipped,
	}

	records := make([]entity.RowRecord, 0, len(report.Results))
	for _, r := range report.Results {
		records = append(records, entity.RowRecord{
			RunID:         report.RunID,
			RowIndex:      r.Row,
			InvoiceNumber: r.InvoiceNumber,
			Status:        string(r.Status),
			Message:       r.Message,
			Discrepancies: r.Discrepancies,
			MissingFields: r.MissingFields,
			PDFPath:       r.PDFPath,
		})
	}

	if err := p.History.SaveRun(ctx, run, records); err != nil {
		p.Logger.Warn("history.run.save_failed", "run_id", report.RunID.String(), "error", err)
	}
}
