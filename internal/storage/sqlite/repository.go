package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id         TEXT PRIMARY KEY,
	analysis       TEXT NOT NULL,
	keyword        TEXT NOT NULL DEFAULT '',
	sample_hash    TEXT NOT NULL,
	sample_size    INTEGER NOT NULL,
	failed_lookups INTEGER NOT NULL,
	outcome        TEXT NOT NULL,
	started_at     DATETIME NOT NULL,
	finished_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_started ON analysis_runs (analysis, started_at);
`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

// NewRepository открывает файл БД (или ":memory:") и создаёт схему
func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Одна запись за раз, in-memory БД живёт в рамках одного соединения
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

func (r *Repository) SaveRun(ctx context.Context, run *storage.RunRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `
		INSERT INTO analysis_runs (run_id, analysis, keyword, sample_hash, sample_size, failed_lookups, outcome, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			outcome = excluded.outcome,
			failed_lookups = excluded.failed_lookups,
			finished_at = excluded.finished_at
	`

	_, err := r.db.ExecContext(ctx, query,
		run.RunID.String(),
		run.Analysis,
		run.Keyword,
		run.SampleHash,
		run.SampleSize,
		run.FailedLookups,
		run.Outcome,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to execute upsert: %w", err)
	}

	return nil
}

func (r *Repository) GetLastRun(ctx context.Context, analysis string) (*storage.RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `
		SELECT run_id, analysis, keyword, sample_hash, sample_size, failed_lookups, outcome, started_at, finished_at
		FROM analysis_runs
		WHERE analysis = ?
		ORDER BY started_at DESC
		LIMIT 1
	`

	var (
		run   storage.RunRecord
		runID string
	)
	err := r.db.QueryRowContext(ctx, query, analysis).Scan(
		&runID,
		&run.Analysis,
		&run.Keyword,
		&run.SampleHash,
		&run.SampleSize,
		&run.FailedLookups,
		&run.Outcome,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoRuns
		}
		return nil, fmt.Errorf("failed to query database: %w", err)
	}

	run.RunID, err = uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	return &run, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
