package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hn-newest-parser/internal/analysis"
	"hn-newest-parser/internal/checksum"
	"hn-newest-parser/internal/collector"
	"hn-newest-parser/internal/enrich"
	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/source"
	"hn-newest-parser/internal/storage"
)

const (
	AnalysisVerify  = "verify"
	AnalysisAuthors = "authors"
	AnalysisSearch  = "search"
)

type Orchestrator struct {
	targetCount int
	logger      *observability.Logger
	open        source.Opener
	collector   *collector.Collector
	enricher    *enrich.Enricher
	checksum    *checksum.Generator
	repo        storage.Repository // nil, если история запусков выключена
}

func NewOrchestrator(
	targetCount int,
	logger *observability.Logger,
	open source.Opener,
	c *collector.Collector,
	e *enrich.Enricher,
	repo storage.Repository,
) *Orchestrator {
	return &Orchestrator{
		targetCount: targetCount,
		logger:      logger,
		open:        open,
		collector:   c,
		enricher:    e,
		checksum:    checksum.NewGenerator(),
		repo:        repo,
	}
}

// Sample выборка ровно из targetCount обогащённых записей в порядке листинга
type Sample struct {
	RunID    uuid.UUID
	Records  []enrich.EnrichedRecord
	Hash     string
	Stats    *collector.Stats
	Failures []enrich.LookupFailure
	Started  time.Time
}

// IDs идентификаторы выборки в порядке листинга
func (s *Sample) IDs() []string {
	ids := make([]string, len(s.Records))
	for i, r := range s.Records {
		ids[i] = r.ID
	}
	return ids
}

// LookupSummary строка вида "2 of 100 lookups failed"
func (s *Sample) LookupSummary() string {
	return fmt.Sprintf("%d of %d lookups failed", len(s.Failures), len(s.Records))
}

type OrderReport struct {
	Sample *Sample
	Check  analysis.OrderCheck
}

type AuthorsReport struct {
	Sample     *Sample
	Duplicates []analysis.AuthorCount
}

type SearchReport struct {
	Sample  *Sample
	Keyword string
	Matches []enrich.EnrichedRecord
}

// BuildSample открывает новый проход по листингу, собирает выборку и обогащает её.
// Источник закрывается на любом пути выхода.
func (o *Orchestrator) BuildSample(ctx context.Context, fields enrich.Fields) (sample *Sample, err error) {
	runID := uuid.New()
	logger := o.logger.With("run_id", runID.String())
	started := time.Now().UTC()

	session, err := o.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open listing source: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("Failed to close listing source", "error", closeErr.Error())
		}
	}()

	logger.Info("Collecting sample", "target", o.targetCount, "fields", fields.String())

	raw, stats, err := o.collector.Collect(ctx, session, o.targetCount)
	if err != nil {
		return nil, fmt.Errorf("collect phase: %w", err)
	}

	result, err := o.enricher.Enrich(ctx, raw, fields)
	if err != nil {
		return nil, fmt.Errorf("enrich phase: %w", err)
	}

	sample = &Sample{
		RunID:    runID,
		Records:  result.Records,
		Stats:    stats,
		Failures: result.Failures,
		Started:  started,
	}
	sample.Hash = o.checksum.GenerateSampleHash(sample.IDs())

	return sample, nil
}

func (o *Orchestrator) VerifyOrder(ctx context.Context) (*OrderReport, error) {
	sample, err := o.BuildSample(ctx, enrich.FieldTimestamp)
	if err != nil {
		return nil, err
	}

	check := analysis.CheckOrder(sample.Records)

	outcome := "sorted"
	if !check.Sorted {
		outcome = "not sorted: " + check.Reason
	}
	o.logger.Info("Order verification finished",
		"run_id", sample.RunID.String(),
		"records", len(sample.Records),
		"sorted", check.Sorted,
		"lookups", sample.LookupSummary(),
	)
	o.recordRun(ctx, AnalysisVerify, "", sample, outcome)

	return &OrderReport{Sample: sample, Check: check}, nil
}

func (o *Orchestrator) DuplicateAuthors(ctx context.Context) (*AuthorsReport, error) {
	sample, err := o.BuildSample(ctx, enrich.FieldAuthor)
	if err != nil {
		return nil, err
	}

	duplicates := analysis.FindDuplicateAuthors(sample.Records)

	o.logger.Info("Duplicate author search finished",
		"run_id", sample.RunID.String(),
		"records", len(sample.Records),
		"duplicate_authors", len(duplicates),
		"lookups", sample.LookupSummary(),
	)
	o.recordRun(ctx, AnalysisAuthors, "", sample, fmt.Sprintf("%d duplicate authors", len(duplicates)))

	return &AuthorsReport{Sample: sample, Duplicates: duplicates}, nil
}

func (o *Orchestrator) SearchKeyword(ctx context.Context, keyword string) (*SearchReport, error) {
	sample, err := o.BuildSample(ctx, 0)
	if err != nil {
		return nil, err
	}

	normalized := analysis.NormalizeKeyword(keyword)
	matches := analysis.Search(sample.Records, keyword)

	o.logger.Info("Keyword search finished",
		"run_id", sample.RunID.String(),
		"keyword", normalized,
		"matches", len(matches),
	)
	o.recordRun(ctx, AnalysisSearch, normalized, sample, fmt.Sprintf("%d matches", len(matches)))

	return &SearchReport{Sample: sample, Keyword: normalized, Matches: matches}, nil
}

// recordRun пишет итог в историю; ошибки хранилища не ломают анализ
func (o *Orchestrator) recordRun(ctx context.Context, analysisName, keyword string, sample *Sample, outcome string) {
	if o.repo == nil {
		return
	}

	previous, err := o.repo.GetLastRun(ctx, analysisName)
	switch {
	case err == nil && o.checksum.VerifySampleHash(previous.SampleHash, sample.IDs()):
		o.logger.Info("Sample unchanged since last run",
			"analysis", analysisName,
			"previous_run_id", previous.RunID.String(),
			"previous_outcome", previous.Outcome,
		)
	case err != nil && !errors.Is(err, storage.ErrNoRuns):
		o.logger.Warn("Failed to load previous run", "analysis", analysisName, "error", err.Error())
	}

	run := &storage.RunRecord{
		RunID:         sample.RunID,
		Analysis:      analysisName,
		Keyword:       keyword,
		SampleHash:    sample.Hash,
		SampleSize:    len(sample.Records),
		FailedLookups: len(sample.Failures),
		Outcome:       outcome,
		StartedAt:     sample.Started,
		FinishedAt:    time.Now().UTC(),
	}
	if err := o.repo.SaveRun(ctx, run); err != nil {
		o.logger.Warn("Failed to save run", "run_id", run.RunID.String(), "error", err.Error())
	}
}
