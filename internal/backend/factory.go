// Package backend selects and constructs the configured ledger source.
package backend

import (
	"context"
	"fmt"

	"inesa/internal/ledger/memory"
	"inesa/internal/ledger/rest"
	"inesa/internal/ledger/sheets"
	"inesa/internal/ledger/sqlite"
	"inesa/internal/log"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateSource implements Factory.CreateSource.
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RESTBackend:
		return f.createRESTSource(config)
	case SQLiteBackend:
		return f.createSQLiteSource(config)
	case SheetsBackend:
		return f.createSheetsSource(ctx, config)
	case MemoryBackend:
		return f.createMemorySource()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRESTSource(config Config) (*Result, error) {
	client := rest.NewClient(config.LedgerBaseURL, config.LedgerToken, config.HTTPTimeout)

	f.logger.Info("initialized rest ledger source",
		log.FieldBackend, RESTBackend.String())

	return &Result{Source: client}, nil
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*Result, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("initialized sqlite ledger source",
		log.FieldBackend, SQLiteBackend.String(),
		"db_path", config.SQLiteDBPath)

	return &Result{Source: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*Result, error) {
	client, err := sheets.NewClient(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("initialized sheets ledger source",
		log.FieldBackend, SheetsBackend.String(),
		"sheet", config.GoogleSheetName)

	return &Result{Source: client}, nil
}

func (f *DefaultFactory) createMemorySource() (*Result, error) {
	f.logger.Info("initialized memory ledger source",
		log.FieldBackend, MemoryBackend.String())

	return &Result{Source: memory.NewStore()}, nil
}
