package statement

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	rows := []RawRow{
		{Date: "01/03/2026", Description: "UPI-SWIGGY BANGALORE", Amount: "-1,000.00", Type: "DEBIT "},
		{Date: "02/03/2026", Description: "SALARY", Amount: "50000", Type: "Credit"},
		{Date: "03/03/2026", Description: "  ", Amount: "20", Type: "Debit"},
		{Date: "04/03/2026", Description: "AIRTEL", Amount: "", Type: "Debit"},
		{Date: "05/03/2026", Description: "UBER", Amount: "n/a", Type: "debit"},
		{Date: "06/03/2026", Description: "ZOMATO", Amount: "₹ 250.50", Type: "debit"},
	}

	txs, stats := Normalize(rows)

	if len(txs) != 2 {
		t.Fatalf("Normalize() kept %d rows, want 2: %+v", len(txs), txs)
	}
	if txs[0].Amount != 1000 || txs[0].Description != "UPI-SWIGGY BANGALORE" || txs[0].Type != "Debit" {
		t.Errorf("txs[0] = %+v", txs[0])
	}
	if txs[1].Amount != 250.5 {
		t.Errorf("txs[1].Amount = %v, want 250.5", txs[1].Amount)
	}

	want := Stats{Rows: 6, Kept: 2, Blank: 2, NonDebit: 1, BadAmount: 1}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	txs, stats := Normalize(nil)
	if len(txs) != 0 || stats.Rows != 0 {
		t.Errorf("Normalize(nil) = %v, %+v", txs, stats)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1,250.00", 1250, true},
		{"-500", -500, true},
		{"Rs. 99.5", 99.5, true},
		{"INR 10", 10, true},
		{"(75.25)", -75.25, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocateHeader(t *testing.T) {
	table := [][]string{
		{"Account Statement"},
		{"Generated on", "2026-03-31"},
		{"\ufeffdate", " TRANSACTION NOTE ", "Amount", "Transaction Type", "Balance"},
		{"01/03/2026", "UPI-GOLA", "-50"},
	}

	start, cols, err := locateHeader(table)
	if err != nil {
		t.Fatalf("locateHeader() error = %v", err)
	}
	if start != 2 {
		t.Errorf("start = %d, want 2", start)
	}
	if cols.date != 0 || cols.description != 1 || cols.amount != 2 || cols.typ != 3 {
		t.Errorf("cols = %+v", cols)
	}

	rows, err := rowsFromTable(table)
	if err != nil {
		t.Fatalf("rowsFromTable() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Type != "" || rows[0].Amount != "-50" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestLocateHeader_Missing(t *testing.T) {
	_, _, err := locateHeader([][]string{{"Date", "Narration", "Amount"}})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("error = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "Transaction Note") || !strings.Contains(err.Error(), "Transaction Type") {
		t.Errorf("error %q should name the missing headers", err)
	}
}
