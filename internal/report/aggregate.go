package report

import (
	"context"
	"fmt"

	"inesa/internal/core"
	"inesa/internal/ledger"
	"inesa/internal/log"
)

// BalanceMode selects how the aggregator treats the upstream-computed
// running balance. The backend is the system of record, so validate is the
// default; recompute exists for sources known to deliver stale balances.
type BalanceMode string

const (
	// BalanceTrust passes the upstream balances through untouched.
	BalanceTrust BalanceMode = "trust"
	// BalanceValidate checks the balance chain and fails the report on a
	// mismatch.
	BalanceValidate BalanceMode = "validate"
	// BalanceRecompute rebuilds the chain from the first entry's implied
	// opening balance.
	BalanceRecompute BalanceMode = "recompute"
)

// Aggregator obtains the ordered rows and the period summary from a ledger
// source. It does not retry: transport-level retries are the source's
// concern, and a failure here surfaces as core.ErrDataUnavailable.
type Aggregator struct {
	source ledger.Source
	mode   BalanceMode
	logger *log.Logger
}

func NewAggregator(source ledger.Source, mode BalanceMode, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Aggregator{
		source: source,
		mode:   mode,
		logger: logger.WithComponent(log.ComponentReport),
	}
}

// Aggregate returns the sanitized rows and summary for the period.
func (a *Aggregator) Aggregate(ctx context.Context, period core.ReportPeriod) (core.ReportData, error) {
	entries, err := a.source.Entries(ctx, period)
	if err != nil {
		return core.ReportData{}, fmt.Errorf("%w: %v", core.ErrDataUnavailable, err)
	}

	for i := range entries {
		entries[i].Sanitize()
	}

	switch a.mode {
	case BalanceRecompute:
		recomputeBalances(entries)
	case BalanceTrust:
		// Upstream balances pass through as-is.
	default:
		if err := core.ValidateRunningBalance(entries); err != nil {
			a.logger.ErrorContext(ctx, "running balance chain is inconsistent",
				log.FieldPeriodStart, period.Start.Format(core.WireDateLayout),
				log.FieldPeriodEnd, period.End.Format(core.WireDateLayout),
				log.FieldEntryCount, len(entries))
			return core.ReportData{}, err
		}
	}

	summary, err := a.source.Summary(ctx, period)
	if err != nil {
		return core.ReportData{}, fmt.Errorf("%w: %v", core.ErrDataUnavailable, err)
	}

	a.logger.DebugContext(ctx, "aggregated ledger rows",
		log.FieldEntryCount, len(entries),
		log.FieldPeriodStart, period.Start.Format(core.WireDateLayout),
		log.FieldPeriodEnd, period.End.Format(core.WireDateLayout))

	return core.ReportData{Period: period, Entries: entries, Summary: summary}, nil
}

// recomputeBalances rebuilds the running balance chain. The opening balance
// is implied by the first entry: opening = balance[0] - delta[0].
func recomputeBalances(entries []core.LedgerEntry) {
	if len(entries) == 0 {
		return
	}
	balance := entries[0].RunningBalance.Rupiah - entries[0].Delta()
	for i := range entries {
		balance += entries[i].Delta()
		entries[i].RunningBalance = core.Money{Rupiah: balance}
	}
}
