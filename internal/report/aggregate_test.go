package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"inesa/internal/core"
)

type stubSource struct {
	entries    []core.LedgerEntry
	entriesErr error
	summary    core.ReportSummary
	summaryErr error
}

func (s *stubSource) Entries(context.Context, core.ReportPeriod) ([]core.LedgerEntry, error) {
	return s.entries, s.entriesErr
}

func (s *stubSource) Summary(context.Context, core.ReportPeriod) (core.ReportSummary, error) {
	return s.summary, s.summaryErr
}

func testPeriod() core.ReportPeriod {
	return core.ReportPeriod{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 30, 23, 59, 59, 0, time.UTC),
	}
}

func chainEntries() []core.LedgerEntry {
	return []core.LedgerEntry{
		{Description: "dana desa", Income: core.Money{Rupiah: 500_000}, RunningBalance: core.Money{Rupiah: 1_500_000}},
		{Description: "pembelian ATK", Expense: core.Money{Rupiah: 200_000}, RunningBalance: core.Money{Rupiah: 1_300_000}},
	}
}

func TestAggregate_ValidChain(t *testing.T) {
	src := &stubSource{
		entries: chainEntries(),
		summary: core.ReportSummary{
			TotalIncome:   core.Money{Rupiah: 500_000},
			TotalExpense:  core.Money{Rupiah: 200_000},
			EndingBalance: core.Money{Rupiah: 1_300_000},
		},
	}
	agg := NewAggregator(src, BalanceValidate, nil)

	data, err := agg.Aggregate(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(data.Entries))
	}
	if data.Summary.EndingBalance.Rupiah != 1_300_000 {
		t.Errorf("summary balance = %d, want 1300000", data.Summary.EndingBalance.Rupiah)
	}
}

func TestAggregate_BrokenChainFailsValidation(t *testing.T) {
	entries := chainEntries()
	entries[1].RunningBalance = core.Money{Rupiah: 999}
	agg := NewAggregator(&stubSource{entries: entries}, BalanceValidate, nil)

	_, err := agg.Aggregate(context.Background(), testPeriod())
	if !errors.Is(err, core.ErrInconsistentBalance) {
		t.Fatalf("want ErrInconsistentBalance, got %v", err)
	}
}

func TestAggregate_TrustPassesBrokenChain(t *testing.T) {
	entries := chainEntries()
	entries[1].RunningBalance = core.Money{Rupiah: 999}
	agg := NewAggregator(&stubSource{entries: entries}, BalanceTrust, nil)

	data, err := agg.Aggregate(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Entries[1].RunningBalance.Rupiah != 999 {
		t.Errorf("trust mode must not touch balances, got %d", data.Entries[1].RunningBalance.Rupiah)
	}
}

func TestAggregate_RecomputeRebuildsChain(t *testing.T) {
	entries := chainEntries()
	entries[1].RunningBalance = core.Money{Rupiah: 999}
	agg := NewAggregator(&stubSource{entries: entries}, BalanceRecompute, nil)

	data, err := agg.Aggregate(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Opening balance implied by the first row: 1_500_000 - 500_000.
	if got := data.Entries[1].RunningBalance.Rupiah; got != 1_300_000 {
		t.Errorf("recomputed balance = %d, want 1300000", got)
	}
}

func TestAggregate_SanitizesRows(t *testing.T) {
	entries := []core.LedgerEntry{
		{Description: "  honor kader  ", Income: core.Money{Rupiah: -50}, RunningBalance: core.Money{Rupiah: 0}},
	}
	agg := NewAggregator(&stubSource{entries: entries}, BalanceTrust, nil)

	data, err := agg.Aggregate(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Entries[0].Description != "honor kader" {
		t.Errorf("description not trimmed: %q", data.Entries[0].Description)
	}
	if data.Entries[0].Income.Rupiah != 0 {
		t.Errorf("negative income not clamped: %d", data.Entries[0].Income.Rupiah)
	}
}

func TestAggregate_SourceErrors(t *testing.T) {
	tests := []struct {
		name string
		src  *stubSource
	}{
		{"entries error", &stubSource{entriesErr: errors.New("connection refused")}},
		{"summary error", &stubSource{entries: chainEntries(), summaryErr: errors.New("timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.src, BalanceValidate, nil)
			_, err := agg.Aggregate(context.Background(), testPeriod())
			if !errors.Is(err, core.ErrDataUnavailable) {
				t.Fatalf("want ErrDataUnavailable, got %v", err)
			}
		})
	}
}
