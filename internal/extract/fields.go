package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fapiao-tools/invoice-recon/constants"
)

// ErrNoTextContent reports a PDF with no extractable text layer, which is
// almost always a scanned image.
var ErrNoTextContent = errors.New("no text content (possibly a scanned image)")

// ticketFareRate is the VAT rate assumed for ticket-fare (票价) invoices,
// which carry no explicit tax breakdown.
const ticketFareRate = 9.0

// Ordered pattern lists, most specific first. Searches short-circuit on the
// first block whose first matching pattern parses cleanly; everything later
// in the list exists to catch looser renderings of the same label.
var (
	// 发票号码 followed by the number itself. The final pattern pairs the
	// invoice code (发票代码) with the invoice number; its capture of
	// interest is the last group.
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`发\s*票\s*号\s*码[：:]\s*(\d{8,25})`),
		regexp.MustCompile(`发\s*票\s*号\s*码[：:\s]+(\d{8,25})`),
		regexp.MustCompile(`发\s*票\s*号\s*码[：:]\s*(\d+)`),
		regexp.MustCompile(`发\s*票\s*号\s*码[：:\s]+(\d+)`),
		regexp.MustCompile(`发\s*票\s*代\s*码[：:\s]+(\d{10,12})[^\d]*发\s*票\s*号\s*码[：:\s]+(\d{8,25})`),
	}

	// 价税合计（小写）¥NN.NN in its many spacings. Layout extraction can put
	// spaces inside 小写 and between the label and the currency mark.
	invoiceAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`（\s*小\s+写\s*）\s+[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`（\s*小写\s*）\s+[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`（\s*小\s*写\s*）\s*[¥￥]\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`（\s*小写\s*）\s*[¥￥]\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`小\s+写\s*[）)）]\s+[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`小写\s*[）)）]\s+[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`价税合计[（(（]\s*小\s+写\s*[）)）]\s*[：:\s]*[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`价税合计[（(（]\s*小写\s*[）)）]\s*[：:\s]*[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`价税合计[：:\s]*[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`（\s*小\s+写\s*）[^\d]*?([\d,]+\.?\d*)`),
		regexp.MustCompile(`（\s*小写\s*）[^\d]*?([\d,]+\.?\d*)`),
	}

	// 票价 marks the simplified ticket-fare format.
	ticketFarePattern = regexp.MustCompile(`票价[：:]\s*[¥￥]?\s*([\d,]+\.?\d*)`)

	// A standalone percentage token; the 0-100 range check happens after.
	taxRatePattern = regexp.MustCompile(`\b(\d+\.?\d*)%`)

	// The subtotal row label is 合 and 计 separated by whitespace; the extra
	// separation is what distinguishes it from 价税合计.
	subtotalLabel = regexp.MustCompile(`合\s+计`)

	amountExcludingTaxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`合\s+计[^¥￥]*?[¥￥]\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`不含税金额[：:\s]*[¥￥]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`合计金额[：:\s]*[¥￥]?\s*([\d,]+\.?\d*)`),
	}

	// 开票日期 in the three separator styles seen on VAT invoices.
	invoiceDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`开\s*票\s*日\s*期[：:]\s*(\d{4})年(\d{1,2})月(\d{1,2})日`),
		regexp.MustCompile(`开\s*票\s*日\s*期[：:\s]*(\d{4})[-年](\d{1,2})[-月](\d{1,2})[日]?`),
		regexp.MustCompile(`开\s*票\s*日\s*期[：:\s]*(\d{4})[/](\d{1,2})[/](\d{1,2})`),
	}

	currencyFigure      = regexp.MustCompile(`[¥￥]\s*([\d,]+\.?\d*)`)
	currencyFigureLoose = regexp.MustCompile(`[¥￥][^\d]*?([\d,]+\.?\d*)`)
	currencyMark        = regexp.MustCompile(`[¥￥]`)
)

// Extractor is the heuristic invoice field recognizer.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractFile renders the PDF's text and recognizes whichever of the six
// invoice fields it can. An error means the file was unreadable or had no
// text layer; partial recognition is reported through MissingFields instead.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pt, err := readPageText(path)
	if err != nil {
		e.logger.Warn("extract.pdf.unreadable", "path", path, "error", err)
		return nil, err
	}
	if len(pt.Blocks) == 0 && pt.Full == "" {
		return nil, ErrNoTextContent
	}

	ext := extractFields(pt)
	e.logger.Debug("extract.pdf.ok",
		"path", path,
		"blocks", len(pt.Blocks),
		"missing_fields", strings.Join(ext.MissingFields, ","),
	)
	return ext, nil
}

// extractFields runs the per-field searches over segmented page text.
// Each field is a two-tier search: a block-scoped pass first (a block is one
// visual unit, which keeps unrelated numbers elsewhere on the page out of
// reach), then a fallback pass over the whole search text.
func extractFields(pt *PageText) *Extraction {
	inv := Invoice{TaxRate: math.NaN()}
	var missing []string

	if number, ok := findInvoiceNumber(pt); ok {
		inv.Number = number
	} else {
		missing = append(missing, constants.FieldInvoiceNumber)
	}

	amount, ticketFare, ok := findInvoiceAmount(pt)
	if ok {
		inv.Amount = &amount
		if ticketFare {
			// Ticket-fare invoices carry no tax breakdown: fix the rate at
			// 9% and derive the remaining two fields algebraically. The
			// searches they would otherwise run are skipped outright.
			inv.TaxRate = ticketFareRate
			excl := amount / (1 + ticketFareRate/100)
			inv.AmountExcludingTax = &excl
			inv.TaxAmount = amount - excl
		}
	} else {
		missing = append(missing, constants.FieldInvoiceAmount)
	}

	if !ticketFare {
		if rate, ok := findTaxRate(pt); ok {
			inv.TaxRate = rate
		}
		if excl, ok := findAmountExcludingTax(pt); ok {
			inv.AmountExcludingTax = &excl
		} else {
			missing = append(missing, constants.FieldAmountExcludingTax)
		}
		if tax, ok := findTaxAmount(pt); ok {
			inv.TaxAmount = tax
		}
	}

	if date, ok := findInvoiceDate(pt); ok {
		inv.Date = date
	} else {
		missing = append(missing, constants.FieldInvoiceDate)
	}

	return &Extraction{Invoice: inv, MissingFields: missing}
}

func findInvoiceNumber(pt *PageText) (string, bool) {
	for _, block := range pt.Blocks {
		for _, re := range invoiceNumberPatterns {
			if m := re.FindStringSubmatch(block); m != nil {
				// Invoice-code pairs capture twice; the number is last.
				return m[len(m)-1], true
			}
		}
	}
	for _, re := range invoiceNumberPatterns {
		if m := re.FindStringSubmatch(pt.Search); m != nil {
			return m[len(m)-1], true
		}
	}
	return "", false
}

// findInvoiceAmount returns the total amount and whether it came from the
// ticket-fare format. The ticket-fare scan runs first; a regular 价税合计
// block is only consulted when it contains both the total label and the
// 小写 (in figures) sub-label.
func findInvoiceAmount(pt *PageText) (amount float64, ticketFare bool, ok bool) {
	for _, block := range pt.Blocks {
		if !strings.Contains(block, "票价") {
			continue
		}
		if m := ticketFarePattern.FindStringSubmatch(block); m != nil {
			if v, err := parseDecimal(m[1]); err == nil {
				return v, true, true
			}
		}
	}

	for _, block := range pt.Blocks {
		if !strings.Contains(block, "价税合计") || !strings.Contains(block, "小写") {
			continue
		}
		for _, re := range invoiceAmountPatterns {
			if m := re.FindStringSubmatch(block); m != nil {
				if v, err := parseDecimal(m[1]); err == nil {
					return v, false, true
				}
			}
		}
	}

	for _, re := range invoiceAmountPatterns {
		if m := re.FindStringSubmatch(pt.Search); m != nil {
			if v, err := parseDecimal(m[1]); err == nil {
				return v, false, true
			}
		}
	}
	return 0, false, false
}

func findTaxRate(pt *PageText) (float64, bool) {
	for _, block := range pt.Blocks {
		if !strings.Contains(block, "%") {
			continue
		}
		for _, m := range taxRatePattern.FindAllStringSubmatch(block, -1) {
			if v, err := parseDecimal(m[1]); err == nil && v >= 0 && v <= 100 {
				return v, true
			}
		}
	}
	for _, m := range taxRatePattern.FindAllStringSubmatch(pt.Search, -1) {
		if v, err := parseDecimal(m[1]); err == nil && v >= 0 && v <= 100 {
			return v, true
		}
	}
	return 0, false
}

// subtotalScope slices block to the region after the 合  计 label and before
// any competing 价税合计 label; currency figures found there belong to the
// subtotal row.
func subtotalScope(block string) (string, bool) {
	loc := subtotalLabel.FindStringIndex(block)
	if loc == nil {
		return "", false
	}
	start := loc[1]
	if i := strings.Index(block, "价税合计"); i >= 0 && i > start {
		return block[start:i], true
	}
	return block[start:], true
}

func findAmountExcludingTax(pt *PageText) (float64, bool) {
	for _, block := range pt.Blocks {
		if !subtotalLabel.MatchString(block) || !strings.Contains(block, "¥") {
			continue
		}
		scope, _ := subtotalScope(block)
		figures := currencyFigure.FindAllStringSubmatch(scope, -1)
		if len(figures) == 0 {
			figures = currencyFigureLoose.FindAllStringSubmatch(scope, -1)
		}
		if len(figures) >= 1 {
			// First currency figure after the label is the subtotal.
			if v, err := parseDecimal(figures[0][1]); err == nil {
				return v, true
			}
		}
		for _, re := range amountExcludingTaxPatterns {
			if m := re.FindStringSubmatch(block); m != nil {
				if v, err := parseDecimal(m[1]); err == nil {
					return v, true
				}
			}
		}
	}

	for _, re := range amountExcludingTaxPatterns {
		if m := re.FindStringSubmatch(pt.Search); m != nil {
			if v, err := parseDecimal(m[1]); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// findTaxAmount takes the second currency figure of the subtotal row, and
// only if it occurs before any competing 价税合计 label. There is no
// full-text fallback: a tax amount that is not positionally anchored is
// reported as 0.0 by the caller rather than guessed.
func findTaxAmount(pt *PageText) (float64, bool) {
	for _, block := range pt.Blocks {
		if !subtotalLabel.MatchString(block) || !strings.Contains(block, "¥") {
			continue
		}
		scope, _ := subtotalScope(block)
		marks := currencyMark.FindAllStringIndex(scope, -1)
		if len(marks) < 2 {
			continue
		}
		if m := currencyFigure.FindStringSubmatch(scope[marks[1][0]:]); m != nil {
			if v, err := parseDecimal(m[1]); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func findInvoiceDate(pt *PageText) (string, bool) {
	for _, block := range pt.Blocks {
		for _, re := range invoiceDatePatterns {
			if m := re.FindStringSubmatch(block); m != nil {
				return formatInvoiceDate(m[1], m[2], m[3]), true
			}
		}
	}
	for _, re := range invoiceDatePatterns {
		if m := re.FindStringSubmatch(pt.Search); m != nil {
			return formatInvoiceDate(m[1], m[2], m[3]), true
		}
	}
	return "", false
}

// formatInvoiceDate zero-pads month and day into ISO YYYY-MM-DD.
func formatInvoiceDate(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}

// parseDecimal strips thousands separators (ASCII and full-width comma) and
// embedded spaces before conversion. A failure here is a non-match for the
// pattern that produced the text, never a fatal error.
func parseDecimal(s string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "，", "", " ", "").Replace(strings.TrimSpace(s))
	return strconv.ParseFloat(cleaned, 64)
}
