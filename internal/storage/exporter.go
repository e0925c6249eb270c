package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledgerfetch/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes snapshots of collected ledgers into a SQLite file.
// Nothing in the application reads them back.
type SQLiteExporter struct {
	db     *sql.DB
	source string
	now    func() time.Time
}

// NewSQLiteExporter opens dbPath, creating its directory, and applies migrations.
func NewSQLiteExporter(dbPath, source string) (*SQLiteExporter, error) {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteExporter{db: db, source: source, now: time.Now}, nil
}

func (e *SQLiteExporter) Name() string { return "sqlite" }

// Export stores the ledger as one run and returns once it is committed.
func (e *SQLiteExporter) Export(ctx context.Context, l core.Ledger) error {
	_, err := e.ExportRun(ctx, l)
	return err
}

// ExportRun stores the ledger and returns the new run ID.
func (e *SQLiteExporter) ExportRun(ctx context.Context, l core.Ledger) (int64, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_runs (collected_at, source, total_count, pages_fetched, balance_cents) VALUES (?, ?, ?, ?, ?)`,
		e.now().UTC(), e.source, l.TotalCount, l.PagesFetched, l.Balance.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_transactions (run_id, position, date, company, ledger, amount_cents) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range l.Transactions {
		if _, err := stmt.ExecContext(ctx, runID, i, t.Date.String(), t.Company, t.Ledger, t.Amount.Cents); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Ledger exported to SQLite",
		"run_id", runID,
		"transactions", len(l.Transactions),
		"balance_cents", l.Balance.Cents)

	return runID, nil
}

func (e *SQLiteExporter) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}
