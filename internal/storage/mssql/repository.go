package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/storage"
)

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// SaveRun сохраняет или обновляет запуск
func (r *Repository) SaveRun(ctx context.Context, run *storage.RunRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	// MERGE statement для MS SQL
	query := `
		MERGE INTO TblAnalysisRuns AS target
		USING (SELECT @RunID AS RunID) AS source
		ON target.[RunID] = source.RunID
		WHEN MATCHED THEN
			UPDATE SET
				[Outcome] = @Outcome,
				[FailedLookups] = @FailedLookups,
				[FinishedAt] = @FinishedAt
		WHEN NOT MATCHED THEN
			INSERT ([RunID], [Analysis], [Keyword], [SampleHash], [SampleSize], [FailedLookups], [Outcome], [StartedAt], [FinishedAt])
			VALUES (@RunID, @Analysis, @Keyword, @SampleHash, @SampleSize, @FailedLookups, @Outcome, @StartedAt, @FinishedAt);
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	_, err = stmt.ExecContext(ctx,
		sql.Named("RunID", run.RunID.String()),
		sql.Named("Analysis", run.Analysis),
		sql.Named("Keyword", run.Keyword),
		sql.Named("SampleHash", run.SampleHash),
		sql.Named("SampleSize", run.SampleSize),
		sql.Named("FailedLookups", run.FailedLookups),
		sql.Named("Outcome", run.Outcome),
		sql.Named("StartedAt", run.StartedAt),
		sql.Named("FinishedAt", run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to execute upsert: %w", err)
	}

	return nil
}

// GetLastRun последний запуск анализа
func (r *Repository) GetLastRun(ctx context.Context, analysis string) (*storage.RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `
		SELECT TOP 1 [RunID], [Analysis], [Keyword], [SampleHash], [SampleSize], [FailedLookups], [Outcome], [StartedAt], [FinishedAt]
		FROM TblAnalysisRuns
		WHERE [Analysis] = @Analysis
		ORDER BY [StartedAt] DESC
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var (
		run   storage.RunRecord
		runID string
	)
	err = stmt.QueryRowContext(ctx, sql.Named("Analysis", analysis)).Scan(
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

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
