package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/fapiao-tools/invoice-recon/constants"
)

// RowResult is one spreadsheet row's verification outcome. Constructed once,
// never mutated afterwards.
type RowResult struct {
	Row           int
	InvoiceNumber string
	Status        constants.VerificationStatus
	Message       string
	Discrepancies []string
	MissingFields []string
	PDFPath       string
}

// Report aggregates every row outcome of one verification run.
type Report struct {
	RunID     uuid.UUID
	PDFDir    string
	Recursive bool
	Results   []RowResult
}

// Counts are the order-independent status totals.
type Counts struct {
	Total      int
	Matched    int
	Mismatched int
	NotFound   int
	Failed     int
	Skipped    int
}

func (r *Report) Counts() Counts {
	c := Counts{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case constants.StatusMatch:
			c.Matched++
		case constants.StatusMismatch:
			c.Mismatched++
		case constants.StatusPDFNotFound:
			c.NotFound++
		case constants.StatusExtractionFailed:
			c.Failed++
		case constants.StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// WriteSummary renders the human-readable report: totals first, then detail
// for every row that is not a clean match.
func (r *Report) WriteSummary(w io.Writer) {
	c := r.Counts()
	fmt.Fprintf(w, "PDF verification finished (dir=%s recursive=%v)\n", r.PDFDir, r.Recursive)
	fmt.Fprintf(w, "  total=%d match=%d mismatch=%d pdf_not_found=%d extraction_failed=%d skipped=%d\n",
		c.Total, c.Matched, c.Mismatched, c.NotFound, c.Failed, c.Skipped)

	for _, res := range r.Results {
		if res.Status == constants.StatusMatch || res.Status == constants.StatusSkipped {
			continue
		}
		fmt.Fprintf(w, "  row %d", res.Row)
		if res.InvoiceNumber != "" {
			fmt.Fprintf(w, " %s %s", constants.FieldInvoiceNumber, res.InvoiceNumber)
		}
		fmt.Fprintf(w, ": %s", res.Status)
		if res.Message != "" {
			fmt.Fprintf(w, " (%s)", res.Message)
		}
		fmt.Fprintln(w)
		for _, d := range res.Discrepancies {
			fmt.Fprintf(w, "    - %s\n", d)
		}
		if len(res.MissingFields) > 0 && res.Status == constants.StatusMismatch {
			fmt.Fprintf(w, "    missing: %s\n", strings.Join(res.MissingFields, ", "))
		}
	}
}
