package backend

import (
	"context"

	"inesa/internal/ledger"
)

// CleanupFunc releases resources held by a ledger source.
type CleanupFunc func() error

// Result contains the source instance and an optional cleanup function.
type Result struct {
	Source  ledger.Source
	Cleanup CleanupFunc
}

// Factory creates ledger sources based on configuration.
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*Result, error)
}

// Type selects the ledger source implementation.
type Type string

const (
	RESTBackend   Type = "rest"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case RESTBackend, SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
