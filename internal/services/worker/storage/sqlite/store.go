package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/warroom/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/warroom/internal/services/worker/storage"
	"github.com/louisbranch/warroom/internal/services/worker/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed sweep journal persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a worker SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordSweep persists one timeout sweep outcome.
func (s *Store) RecordSweep(ctx context.Context, sweep storage.SweepRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	sweep.Sweeper = strings.TrimSpace(sweep.Sweeper)
	sweep.Outcome = strings.TrimSpace(sweep.Outcome)
	sweep.LastError = strings.TrimSpace(sweep.LastError)
	if sweep.Sweeper == "" {
		return fmt.Errorf("sweeper name is required")
	}
	if sweep.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}
	if sweep.StartedAt.IsZero() {
		sweep.StartedAt = time.Now().UTC()
	}
	if sweep.FinishedAt.IsZero() {
		sweep.FinishedAt = sweep.StartedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO timeout_sweeps (
	sweeper,
	games_examined,
	timeouts_processed,
	failures,
	outcome,
	last_error,
	started_at,
	finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		sweep.Sweeper,
		sweep.GamesExamined,
		sweep.TimeoutsProcessed,
		sweep.Failures,
		sweep.Outcome,
		sweep.LastError,
		sweep.StartedAt.UTC().UnixMilli(),
		sweep.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record sweep: %w", err)
	}
	return nil
}

// ListSweeps lists newest-first sweep records.
func (s *Store) ListSweeps(ctx context.Context, limit int) ([]storage.SweepRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	sweeper,
	games_examined,
	timeouts_processed,
	failures,
	outcome,
	last_error,
	started_at,
	finished_at
FROM timeout_sweeps
ORDER BY started_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sweeps: %w", err)
	}
	defer rows.Close()

	records := make([]storage.SweepRecord, 0, limit)
	for rows.Next() {
		var record storage.SweepRecord
		var startedAt, finishedAt int64
		if err := rows.Scan(
			&record.ID,
			&record.Sweeper,
			&record.GamesExamined,
			&record.TimeoutsProcessed,
			&record.Failures,
			&record.Outcome,
			&record.LastError,
			&startedAt,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sweep: %w", err)
		}
		record.StartedAt = time.UnixMilli(startedAt).UTC()
		record.FinishedAt = time.UnixMilli(finishedAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweeps: %w", err)
	}
	return records, nil
}

var _ storage.SweepStore = (*Store)(nil)
