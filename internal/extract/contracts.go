package extract

import (
	"context"
)

// PageText is the text of one PDF, segmented for pattern search. Blank lines
// in the layout-preserving rendering are the only block boundary; a block is
// therefore one coherent visual unit of the invoice.
type PageText struct {
	// Blocks are maximal runs of non-blank lines, each joined into a single
	// trimmed string, in document order.
	Blocks []string
	// Search is the blocks joined by newlines, falling back to Full when
	// block segmentation produced nothing. Second-tier pattern target.
	Search string
	// Full is the raw concatenation of all page text.
	Full string
}

// Invoice is the partial record of fields recognized on one invoice.
// TaxRate uses math.NaN() as the "no rate found" sentinel: distinguishable
// from 0, and never allowed into tolerance comparisons. TaxAmount defaults
// to 0.0 when the positional search finds nothing.
type Invoice struct {
	Number             string   // "" = missing
	Amount             *float64 // nil = missing
	TaxRate            float64  // NaN = sentinel
	AmountExcludingTax *float64 // nil = missing
	TaxAmount          float64
	Date               string // YYYY-MM-DD, "" = missing
}

// Extraction is the result of one successful extraction attempt.
// MissingFields carries the display names of fields no pattern matched; tax
// rate and tax amount have explicit defaults and never appear here.
type Extraction struct {
	Invoice       Invoice
	MissingFields []string
}

// FieldExtractor turns one PDF file into structured invoice fields.
// The returned error is reserved for unreadable files or files with no text
// layer at all; malformed-but-readable text only produces missing fields.
type FieldExtractor interface {
	ExtractFile(ctx context.Context, path string) (*Extraction, error)
}
