package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run records one reconciliation pass for the history store.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	InputPath  string     `json:"input_path"`
	OutputPath string     `json:"output_path,omitempty"`
	PDFDir     string     `json:"pdf_dir,omitempty"`
	Recursive  bool       `json:"recursive"`

	RowsProcessed int `json:"rows_processed"`
	Matched       int `json:"matched"`
	Mismatched    int `json:"mismatched"`
	NotFound      int `json:"not_found"`
	Failed        int `json:"failed"`
	Skipped       int `json:"skipped"`
}

// RowRecord is the per-row verification outcome persisted with a Run.
type RowRecord struct {
	RunID         uuid.UUID `json:"run_id"`
	RowIndex      int       `json:"row_index"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	Status        string    `json:"status"`
	Message       string    `json:"message,omitempty"`
	Discrepancies []string  `json:"discrepancies,omitempty"`
	MissingFields []string  `json:"missing_fields,omitempty"`
	PDFPath       string    `json:"pdf_path,omitempty"`
}
