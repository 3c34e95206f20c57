// Package memory provides an in-memory ledger source for development and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"inesa/internal/core"
	"inesa/internal/ledger"
)

var _ ledger.Source = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	entries []core.LedgerEntry
}

func NewStore(seed ...core.LedgerEntry) *Store {
	s := &Store{}
	s.entries = append(s.entries, seed...)
	return s
}

// Append stores an entry, carrying the running balance forward from the
// chronologically latest row.
func (s *Store) Append(_ context.Context, e core.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last int64
	for _, existing := range s.entries {
		if !existing.Timestamp.After(e.Timestamp) {
			last = existing.RunningBalance.Rupiah
		}
	}
	e.RunningBalance = core.Money{Rupiah: last + e.Delta()}
	s.entries = append(s.entries, e)
}

func (s *Store) Entries(_ context.Context, period core.ReportPeriod) ([]core.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.LedgerEntry
	for _, e := range s.entries {
		if period.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) Summary(ctx context.Context, period core.ReportPeriod) (core.ReportSummary, error) {
	entries, err := s.Entries(ctx, period)
	if err != nil {
		return core.ReportSummary{}, err
	}
	return core.DeriveSummary(entries), nil
}
