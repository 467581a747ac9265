package spreadsheet

import (
	"sort"
	"strconv"
	"strings"
)

// Aggregate groups source rows by invoice number (column D) and collapses
// duplicates into a single row: the first row of the group supplies every
// column, except Q, S and T which become the group sums. Groups come back in
// sorted key order.
func Aggregate(rows []SourceRow) []SourceRow {
	if len(rows) == 0 {
		return nil
	}

	groups := make(map[string][]SourceRow)
	for _, row := range rows {
		key := strings.TrimSpace(row[ColInvoiceNumber])
		groups[key] = append(groups[key], row)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]SourceRow, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		merged := make(SourceRow, len(group[0]))
		copy(merged, group[0])
		merged[ColExclTax] = formatAmount(SumColumn(group, ColExclTax))
		merged[ColTaxAmount] = formatAmount(SumColumn(group, ColTaxAmount))
		merged[ColAmount] = formatAmount(SumColumn(group, ColAmount))
		out = append(out, merged)
	}
	return out
}

// SumColumn sums the parseable numeric cells of one column; blank and
// non-numeric cells contribute nothing.
func SumColumn(rows []SourceRow, col int) float64 {
	var sum float64
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if v, err := parseNumericCell(row[col]); err == nil {
			sum += v
		}
	}
	return sum
}

// parseNumericCell converts a cell string to a float, tolerating thousands
// separators the way the extraction side does.
func parseNumericCell(s string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "，", "").Replace(strings.TrimSpace(s))
	return strconv.ParseFloat(cleaned, 64)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
