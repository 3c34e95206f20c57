package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseStorageTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "valid backend timestamp",
			input: "01-06-2024 08:00",
			want:  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace",
			input: "  02-06-2024 09:30 ",
			want:  time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparsable falls back to zero time",
			input: "2024-06-01T08:00:00Z",
			want:  time.Time{},
		},
		{
			name:  "empty",
			input: "",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStorageTime(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseStorageTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDisplayTime(t *testing.T) {
	ts := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	if got := FormatDisplayTime(ts); got != "01/06/2024 08:00" {
		t.Errorf("FormatDisplayTime = %q, want %q", got, "01/06/2024 08:00")
	}
	if got := FormatDisplayTime(time.Time{}); got != "Tanggal Tidak Valid" {
		t.Errorf("FormatDisplayTime(zero) = %q, want invalid marker", got)
	}
}

func TestPeriodLabel(t *testing.T) {
	p := ReportPeriod{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
	}
	want := "1 Juni 2024 - 30 Juni 2024"
	if got := p.Label(); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestSanitize(t *testing.T) {
	e := LedgerEntry{
		Description: "  pembelian ATK  ",
		Income:      Money{Rupiah: -500},
		Expense:     Money{Rupiah: 150000},
		ReceiptRef:  " nota.jpg ",
	}
	e.Sanitize()
	if e.Income.Rupiah != 0 {
		t.Errorf("negative income should be clamped to 0, got %d", e.Income.Rupiah)
	}
	if e.Expense.Rupiah != 150000 {
		t.Errorf("valid expense should be untouched, got %d", e.Expense.Rupiah)
	}
	if e.Description != "pembelian ATK" {
		t.Errorf("description not trimmed: %q", e.Description)
	}
	if e.ReceiptRef != "nota.jpg" {
		t.Errorf("receipt ref not trimmed: %q", e.ReceiptRef)
	}
}

func TestValidateRunningBalance(t *testing.T) {
	consistent := []LedgerEntry{
		{Income: Money{Rupiah: 500000}, RunningBalance: Money{Rupiah: 500000}},
		{Expense: Money{Rupiah: 150000}, RunningBalance: Money{Rupiah: 350000}},
		{Income: Money{Rupiah: 25000}, RunningBalance: Money{Rupiah: 375000}},
	}
	if err := ValidateRunningBalance(consistent); err != nil {
		t.Fatalf("consistent chain should validate: %v", err)
	}

	corrupt := []LedgerEntry{
		{Income: Money{Rupiah: 500000}, RunningBalance: Money{Rupiah: 500000}},
		{Expense: Money{Rupiah: 150000}, RunningBalance: Money{Rupiah: 400000}},
	}
	err := ValidateRunningBalance(corrupt)
	if !errors.Is(err, ErrInconsistentBalance) {
		t.Fatalf("corrupt chain should return ErrInconsistentBalance, got %v", err)
	}

	if err := ValidateRunningBalance(nil); err != nil {
		t.Fatalf("empty sequence should validate: %v", err)
	}
}

func TestDeriveSummary(t *testing.T) {
	entries := []LedgerEntry{
		{Income: Money{Rupiah: 500000}, RunningBalance: Money{Rupiah: 500000}},
		{Expense: Money{Rupiah: 150000}, RunningBalance: Money{Rupiah: 350000}},
	}
	s := DeriveSummary(entries)
	if s.TotalIncome.Rupiah != 500000 || s.TotalExpense.Rupiah != 150000 || s.EndingBalance.Rupiah != 350000 {
		t.Errorf("DeriveSummary = %+v", s)
	}

	empty := DeriveSummary(nil)
	if empty != (ReportSummary{}) {
		t.Errorf("DeriveSummary(nil) = %+v, want zero summary", empty)
	}
}

func TestHasReceipt(t *testing.T) {
	if (LedgerEntry{ReceiptRef: "   "}).HasReceipt() {
		t.Error("whitespace-only ref should not count as a receipt")
	}
	if !(LedgerEntry{ReceiptRef: "nota.png"}).HasReceipt() {
		t.Error("non-empty ref should count as a receipt")
	}
}
