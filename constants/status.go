package constants

// VerificationStatus is the canonical per-row outcome of the PDF cross-check.
type VerificationStatus string

// Stable values (these exact strings go into reports and the history store).
const (
	StatusMatch            VerificationStatus = "MATCH"                 // every comparable field within tolerance
	StatusMismatch         VerificationStatus = "MISMATCH"              // at least one field disagrees
	StatusPDFNotFound      VerificationStatus = "PDF_NOT_FOUND"         // no file resolvable for the invoice number
	StatusExtractionFailed VerificationStatus = "PDF_EXTRACTION_FAILED" // unreadable PDF or no usable fields
	StatusSkipped          VerificationStatus = "SKIPPED"               // invoice number cell was empty
)
