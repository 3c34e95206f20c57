// Package ledger defines the port implemented by the pluggable ledger
// sources (rest, sqlite, sheets, memory).
package ledger

import (
	"context"

	"inesa/internal/core"
)

// Source provides ledger rows and period totals for a resolved report
// period. Implementations must return entries in chronological order with
// the running balance already applied; the aggregator does not re-sort.
type Source interface {
	// Entries returns the transaction rows whose timestamp falls inside the
	// period, oldest first.
	Entries(ctx context.Context, period core.ReportPeriod) ([]core.LedgerEntry, error)

	// Summary returns the period totals (income, expense, ending balance).
	Summary(ctx context.Context, period core.ReportPeriod) (core.ReportSummary, error)
}
