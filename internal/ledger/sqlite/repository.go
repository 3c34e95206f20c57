// Package sqlite implements a self-hosted ledger source persisted in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"inesa/internal/core"
	"inesa/internal/ledger"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dbTimeLayout is the sortable datetime format stored in the tanggal column.
const dbTimeLayout = "2006-01-02 15:04:05"

var _ ledger.Source = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// runMigrations brings the transaksi schema up to date from the embedded
// migration files.
func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append records a transaction and carries the running balance forward from
// the latest stored row. It returns the new row's ID.
func (r *Repository) Append(ctx context.Context, e core.LedgerEntry) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var lastBalance int64
	err = tx.QueryRowContext(ctx,
		`SELECT saldo FROM transaksi ORDER BY tanggal DESC, id DESC LIMIT 1`,
	).Scan(&lastBalance)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("read last balance: %w", err)
	}

	balance := lastBalance + e.Delta()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transaksi (tanggal, keterangan, pemasukan, pengeluaran, saldo, nota)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Timestamp.Format(dbTimeLayout), e.Description,
		e.Income.Rupiah, e.Expense.Rupiah, balance, e.ReceiptRef)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit append: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *Repository) Entries(ctx context.Context, period core.ReportPeriod) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tanggal, keterangan, pemasukan, pengeluaran, saldo, nota
		 FROM transaksi
		 WHERE tanggal BETWEEN ? AND ?
		 ORDER BY tanggal, id`,
		period.Start.Format(dbTimeLayout), period.End.Format(dbTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerEntry
	for rows.Next() {
		var (
			id                           int64
			tanggal, keterangan, nota    string
			income, expense, saldoRupiah int64
		)
		if err := rows.Scan(&id, &tanggal, &keterangan, &income, &expense, &saldoRupiah, &nota); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		ts, err := time.ParseInLocation(dbTimeLayout, tanggal, period.Start.Location())
		if err != nil {
			ts = time.Time{}
		}
		entries = append(entries, core.LedgerEntry{
			ID:             strconv.FormatInt(id, 10),
			Timestamp:      ts,
			Description:    keterangan,
			Income:         core.Money{Rupiah: income},
			Expense:        core.Money{Rupiah: expense},
			RunningBalance: core.Money{Rupiah: saldoRupiah},
			ReceiptRef:     nota,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return entries, nil
}

func (r *Repository) Summary(ctx context.Context, period core.ReportPeriod) (core.ReportSummary, error) {
	var summary core.ReportSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(pemasukan), 0), COALESCE(SUM(pengeluaran), 0)
		 FROM transaksi
		 WHERE tanggal BETWEEN ? AND ?`,
		period.Start.Format(dbTimeLayout), period.End.Format(dbTimeLayout),
	).Scan(&summary.TotalIncome.Rupiah, &summary.TotalExpense.Rupiah)
	if err != nil {
		return core.ReportSummary{}, fmt.Errorf("sum totals: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT saldo FROM transaksi
		 WHERE tanggal <= ?
		 ORDER BY tanggal DESC, id DESC LIMIT 1`,
		period.End.Format(dbTimeLayout),
	).Scan(&summary.EndingBalance.Rupiah)
	if err != nil && err != sql.ErrNoRows {
		return core.ReportSummary{}, fmt.Errorf("read ending balance: %w", err)
	}
	return summary, nil
}
