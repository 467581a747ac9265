package spreadsheet

import (
	"strconv"
	"strings"
	"time"
)

// Output column indexes of the reimbursement layout (0-based, columns A-J).
const (
	OutSeq           = 0 // A 序号
	OutDate          = 1 // B 日期
	OutKindOfExpense = 2 // C 所属类型 (left blank)
	OutAmount        = 3 // D 开票金额
	OutTaxRate       = 4 // E 税率
	OutExclTax       = 5 // F 不含税金额
	OutTaxAmount     = 6 // G 税额
	OutInvoiceKind   = 7 // H 发票种类
	OutInvoiceNumber = 8 // I 发票号码
	OutClaimant      = 9 // J 报销人 (left blank)

	outputWidth = 10
)

// dateLayouts are tried in order when normalizing the input date column.
// Cell values arrive as formatted strings, so both ISO-ish and the usual
// spreadsheet renderings need to be covered.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"1/2/06 15:04",
	"01-02-06",
	"1-2-06",
	"2006年1月2日",
}

// MapToReimbursement remaps aggregated input rows into the output layout:
// I→B (date, normalized), T→D, R→E, Q→F, S→G, V→H, D→I, with a running
// sequence number in A. Columns C and J stay blank for manual entry.
func MapToReimbursement(rows []SourceRow) [][]string {
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		mapped := make([]string, outputWidth)
		mapped[OutSeq] = strconv.Itoa(i + 1)
		mapped[OutDate] = normalizeDate(row[ColDate])
		mapped[OutAmount] = row[ColAmount]
		mapped[OutTaxRate] = row[ColTaxRate]
		mapped[OutExclTax] = row[ColExclTax]
		mapped[OutTaxAmount] = row[ColTaxAmount]
		mapped[OutInvoiceKind] = row[ColInvoiceKind]
		mapped[OutInvoiceNumber] = row[ColInvoiceNumber]
		out = append(out, mapped)
	}
	return out
}

// normalizeDate converts a datetime-ish cell to YYYY-MM-DD, passing the raw
// value through when no layout parses.
func normalizeDate(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
