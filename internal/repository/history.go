package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/fapiao-tools/invoice-recon/internal/common"
	"github.com/fapiao-tools/invoice-recon/internal/entity"
)

// Store persists reconciliation runs and their per-row outcomes.
// postgres:// and postgresql:// DSNs go through pgx, anything else is
// treated as a SQLite file path (use ":memory:" for an ephemeral store).
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the history database and ensures the schema exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("history.db.connect", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, common.WrapError(err, "open history database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, common.WrapError(err, "ping history database")
	}

	s := &Store{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Both drivers accept TEXT/INTEGER affinity and $N placeholders, so one
// schema and one statement set serve postgres and sqlite alike.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS recon_run (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		input_path TEXT NOT NULL,
		output_path TEXT,
		pdf_dir TEXT,
		recursive INTEGER NOT NULL DEFAULT 0,
		rows_processed INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		mismatched INTEGER NOT NULL DEFAULT 0,
		not_found INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS recon_row_result (
		run_id TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		invoice_number TEXT,
		status TEXT NOT NULL,
		message TEXT,
		discrepancies TEXT,
		missing_fields TEXT,
		pdf_path TEXT,
		PRIMARY KEY (run_id, row_index)
	)`,
}

func (s *Store) init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return common.NewAppError("DB_ERROR", "create history schema", err)
		}
	}
	return nil
}

// SaveRun writes a run and its row records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *entity.Run, rows []entity.RowRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin history transaction")
	}
	defer tx.Rollback()

	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO recon_run
			(id, started_at, finished_at, input_path, output_path, pdf_dir, recursive,
			 rows_processed, matched, mismatched, not_found, failed, skipped)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID.String(),
		run.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		finished,
		run.InputPath, run.OutputPath, run.PDFDir, boolToInt(run.Recursive),
		run.RowsProcessed, run.Matched, run.Mismatched, run.NotFound, run.Failed, run.Skipped,
	)
	if err != nil {
		return common.WrapError(err, "insert run")
	}

	for _, r := range rows {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recon_row_result
				(run_id, row_index, invoice_number, status, message, discrepancies, missing_fields, pdf_path)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.RunID.String(), r.RowIndex, r.InvoiceNumber, r.Status, r.Message,
			strings.Join(r.Discrepancies, "\n"), strings.Join(r.MissingFields, ","), r.PDFPath,
		)
		if err != nil {
			return common.WrapError(err, "insert row result")
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit history transaction")
	}
	s.logger.Info("history.run.saved", "run_id", run.ID.String(), "rows", len(rows))
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
