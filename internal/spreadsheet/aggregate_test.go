package spreadsheet

import (
	"testing"
)

func makeRow(number, date, excl, rate, tax, amount, kind string) SourceRow {
	row := make(SourceRow, inputWidth)
	row[ColInvoiceNumber] = number
	row[ColDate] = date
	row[ColExclTax] = excl
	row[ColTaxRate] = rate
	row[ColTaxAmount] = tax
	row[ColAmount] = amount
	row[ColInvoiceKind] = kind
	return row
}

func TestAggregateMergesDuplicates(t *testing.T) {
	rows := []SourceRow{
		makeRow("222", "2025-03-05", "50.00", "9%", "4.50", "54.50", "电子普通发票"),
		makeRow("111", "2025-03-04", "91.74", "9%", "8.26", "100.00", "电子普通发票"),
		makeRow("222", "2025-03-05", "30.00", "9%", "2.70", "32.70", "电子普通发票"),
	}

	got := Aggregate(rows)
	if len(got) != 2 {
		t.Fatalf("Aggregate returned %d rows, want 2", len(got))
	}

	// Sorted key order: 111 first.
	if got[0][ColInvoiceNumber] != "111" {
		t.Errorf("got[0] number = %q, want 111", got[0][ColInvoiceNumber])
	}
	if got[0][ColExclTax] != "91.74" {
		t.Errorf("singleton row must pass through untouched, got %q", got[0][ColExclTax])
	}

	merged := got[1]
	if merged[ColInvoiceNumber] != "222" {
		t.Fatalf("got[1] number = %q, want 222", merged[ColInvoiceNumber])
	}
	if merged[ColExclTax] != "80" {
		t.Errorf("merged Q = %q, want 80", merged[ColExclTax])
	}
	if merged[ColTaxAmount] != "7.2" {
		t.Errorf("merged S = %q, want 7.2", merged[ColTaxAmount])
	}
	if merged[ColAmount] != "87.2" {
		t.Errorf("merged T = %q, want 87.2", merged[ColAmount])
	}
	// Non-monetary columns come from the first row of the group.
	if merged[ColDate] != "2025-03-05" {
		t.Errorf("merged date = %q, want first group row's date", merged[ColDate])
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); got != nil {
		t.Errorf("Aggregate(nil) = %v, want nil", got)
	}
}

func TestSumColumnSkipsBadCells(t *testing.T) {
	rows := []SourceRow{
		makeRow("1", "", "10.50", "", "", "", ""),
		makeRow("2", "", "abc", "", "", "", ""),
		makeRow("3", "", "", "", "", "", ""),
		makeRow("4", "", "1,000.25", "", "", "", ""),
	}
	got := SumColumn(rows, ColExclTax)
	if got != 1010.75 {
		t.Errorf("SumColumn = %v, want 1010.75", got)
	}
}

func TestParseNumericCell(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"100", 100, false},
		{"1,234.5", 1234.5, false},
		{"1，234.5", 1234.5, false},
		{"9%", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumericCell(tt.in)
		if tt.wantErr != (err != nil) {
			t.Errorf("parseNumericCell(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseNumericCell(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
