package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Date/time layouts used across the system. The backend stores and transmits
// timestamps as DD-MM-YYYY HH:mm; the compiled artifacts display
// DD/MM/YYYY HH:mm; date-range query parameters travel as YYYY-MM-DD.
const (
	StorageTimeLayout = "02-01-2006 15:04"
	DisplayTimeLayout = "02/01/2006 15:04"
	WireDateLayout    = "2006-01-02"
)

type (
	// LedgerEntry is one income or expense transaction row. Income and
	// Expense are mutually exclusive under normal data, but nothing here
	// assumes it: consumers render whichever is non-zero.
	LedgerEntry struct {
		ID          string
		Timestamp   time.Time
		Description string
		Income      Money
		Expense     Money
		// RunningBalance is the balance immediately after this entry is
		// applied, pre-computed upstream in chronological order.
		RunningBalance Money
		// ReceiptRef is an opaque filename/path of a scanned receipt in the
		// upload store. Empty means no receipt.
		ReceiptRef string
	}

	// ReportPeriod is a resolved inclusive date window: Start is 00:00:00 of
	// the first day, End is 23:59:59.999 of the last day. Created once per
	// report request and never mutated.
	ReportPeriod struct {
		Start time.Time
		End   time.Time
	}

	// ReportSummary holds the period totals as delivered by the aggregator.
	// Compilers consume these as-is and never recompute them.
	ReportSummary struct {
		TotalIncome   Money
		TotalExpense  Money
		EndingBalance Money
	}

	// ReportData is the compilation input shared by both compilers.
	ReportData struct {
		Period  ReportPeriod
		Entries []LedgerEntry
		Summary ReportSummary
	}
)

var (
	ErrInvalidRange        = errors.New("invalid date range")
	ErrDataUnavailable     = errors.New("ledger data unavailable")
	ErrPipelineUnavailable = errors.New("image fetch capability unavailable")
	ErrInconsistentBalance = errors.New("inconsistent running balance")
	ErrCompilation         = errors.New("report compilation failed")
)

// indonesianMonths indexes time.Month (1-12) to the month names used in the
// printed period label.
var indonesianMonths = [...]string{
	"", "Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// ParseStorageTime parses a backend timestamp. Unparsable input yields the
// zero time, which downstream formatting renders as an invalid-date marker
// rather than failing the whole report.
func ParseStorageTime(s string) time.Time {
	t, err := time.Parse(StorageTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDisplayTime renders a timestamp for tables. The zero time marks an
// entry whose stored timestamp could not be parsed.
func FormatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return "Tanggal Tidak Valid"
	}
	return t.Format(DisplayTimeLayout)
}

// FormatLongDate renders a date as "2 Juni 2024" for period labels.
func FormatLongDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + indonesianMonths[int(t.Month())] + " " + strconv.Itoa(t.Year())
}

// Label returns the printed period label, e.g. "1 Juni 2024 - 30 Juni 2024".
func (p ReportPeriod) Label() string {
	return FormatLongDate(p.Start) + " - " + FormatLongDate(p.End)
}

// Contains reports whether ts falls inside the period window.
func (p ReportPeriod) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && !ts.After(p.End)
}

// HasReceipt reports whether the entry references a scanned receipt.
func (e LedgerEntry) HasReceipt() bool {
	return strings.TrimSpace(e.ReceiptRef) != ""
}

// Sanitize coerces malformed fields so downstream code can assume well-formed
// data: negative amounts become zero, surrounding whitespace is dropped.
func (e *LedgerEntry) Sanitize() {
	if e.Income.Rupiah < 0 {
		e.Income = Money{}
	}
	if e.Expense.Rupiah < 0 {
		e.Expense = Money{}
	}
	e.Description = strings.TrimSpace(e.Description)
	e.ReceiptRef = strings.TrimSpace(e.ReceiptRef)
}

// Delta is the signed effect of the entry on the balance.
func (e LedgerEntry) Delta() int64 {
	return e.Income.Rupiah - e.Expense.Rupiah
}

// ValidateRunningBalance checks that each consecutive pair of entries obeys
// balance[i] = balance[i-1] + income[i] - expense[i]. It validates the
// upstream-computed chain instead of recomputing it, so a single corrupt row
// is reported rather than silently cascading.
func ValidateRunningBalance(entries []LedgerEntry) error {
	for i := 1; i < len(entries); i++ {
		got := entries[i].RunningBalance.Rupiah - entries[i-1].RunningBalance.Rupiah
		if got != entries[i].Delta() {
			return ErrInconsistentBalance
		}
	}
	return nil
}

// DeriveSummary computes period totals from the entries themselves. Sources
// without dedicated summary endpoints (sqlite, sheets, memory) use this; the
// REST source reports the backend's own totals.
func DeriveSummary(entries []LedgerEntry) ReportSummary {
	var s ReportSummary
	for _, e := range entries {
		s.TotalIncome.Rupiah += e.Income.Rupiah
		s.TotalExpense.Rupiah += e.Expense.Rupiah
	}
	if n := len(entries); n > 0 {
		s.EndingBalance = entries[n-1].RunningBalance
	}
	return s
}
