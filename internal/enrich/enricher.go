package enrich

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
)

type Enricher struct {
	lookup      ItemLookup
	concurrency int
	logger      *observability.Logger
}

func NewEnricher(lookup ItemLookup, concurrency int, logger *observability.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Enricher{
		lookup:      lookup,
		concurrency: concurrency,
		logger:      logger,
	}
}

type outcome struct {
	record EnrichedRecord
	err    error
}

// Enrich подтягивает запрошенные поля для каждой записи, порядок сохраняется.
// Ошибка одной записи превращает её поля в "неизвестно"; если упали все, возвращается SystemicEnrichmentError.
func (e *Enricher) Enrich(ctx context.Context, records []scraper.RawRecord, fields Fields) (*Result, error) {
	e.logger.Info("Starting enrichment",
		"records", len(records),
		"fields", fields.String(),
		"concurrency", e.concurrency,
	)

	// Поиску атрибуты не нужны: запросы к API не делаем
	if fields == 0 {
		result := &Result{Records: make([]EnrichedRecord, len(records))}
		for i, raw := range records {
			result.Records[i] = EnrichedRecord{RawRecord: raw}
		}
		return result, nil
	}

	outcomes := make([]outcome, len(records))

	// Горутины ошибок не возвращают, иначе errgroup отменил бы соседей
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, raw := range records {
		g.Go(func() error {
			outcomes[i] = e.enrichOne(ctx, raw, fields)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Records: make([]EnrichedRecord, len(records))}
	var lastErr error
	for i, o := range outcomes {
		result.Records[i] = o.record
		if o.err != nil {
			lastErr = o.err
			result.Failures = append(result.Failures, LookupFailure{ID: o.record.ID, Err: o.err})
			e.logger.Warn("Item lookup failed",
				"id", o.record.ID,
				"position", i+1,
				"error", o.err.Error(),
			)
		}
	}

	if len(records) > 0 && len(result.Failures) == len(records) {
		e.logger.Error("All item lookups failed", "attempted", len(records))
		return nil, &SystemicEnrichmentError{Attempted: len(records), Last: lastErr}
	}

	e.logger.Info("Enrichment completed",
		"records", len(result.Records),
		"failed", len(result.Failures),
		"summary", result.Summary(),
	)

	return result, nil
}

func (e *Enricher) enrichOne(ctx context.Context, raw scraper.RawRecord, fields Fields) outcome {
	record := EnrichedRecord{RawRecord: raw}

	item, err := e.lookup.Fetch(ctx, raw.ID)
	if err != nil {
		return outcome{record: record, err: err}
	}
	if item == nil {
		return outcome{record: record, err: ErrItemNotFound}
	}
	// Удалённые и убитые модерацией элементы в выборке считаются отсутствующими
	if item.Deleted {
		return outcome{record: record, err: fmt.Errorf("%w: deleted", ErrItemNotFound)}
	}
	if item.Dead {
		return outcome{record: record, err: fmt.Errorf("%w: dead", ErrItemNotFound)}
	}

	if fields.Has(FieldTimestamp) && item.Time != nil {
		ts := *item.Time
		record.Timestamp = &ts
	}
	if fields.Has(FieldAuthor) && item.By != nil && *item.By != "" {
		author := *item.By
		record.Author = &author
	}

	return outcome{record: record}
}
