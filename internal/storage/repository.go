package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoRuns для анализа ещё не сохранено ни одного запуска
var ErrNoRuns = errors.New("no runs recorded")

// RunRecord итог одного запуска анализа. Сами записи выборки не сохраняются.
type RunRecord struct {
	RunID         uuid.UUID
	Analysis      string // verify, authors, search
	Keyword       string
	SampleHash    string // SHA256 упорядоченных id
	SampleSize    int
	FailedLookups int
	Outcome       string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Repository история запусков
type Repository interface {
	// SaveRun сохраняет или обновляет запуск по RunID
	SaveRun(ctx context.Context, run *RunRecord) error

	// GetLastRun последний запуск указанного анализа, ErrNoRuns если их нет
	GetLastRun(ctx context.Context, analysis string) (*RunRecord, error)

	Close() error
}
