package collector

import (
	"context"
	"errors"
	"fmt"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
	"hn-newest-parser/internal/source"
)

// InsufficientDataError источник исчерпан раньше, чем набрано Target записей
type InsufficientDataError struct {
	Target int
	Got    int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: collected %d of %d records (%s)", e.Got, e.Target, e.Reason)
}

type Stats struct {
	Pages         int
	RowsSeen      int
	DroppedRows   int
	DuplicateRows int
	TruncatedRows int
	StoppedReason string
}

type Collector struct {
	logger   *observability.Logger
	maxPages int
}

func NewCollector(maxPages int, logger *observability.Logger) *Collector {
	return &Collector{
		logger:   logger,
		maxPages: maxPages,
	}
}

// Collect листает источник, пока не набрано ровно target уникальных записей.
// Порядок результата совпадает с порядком листинга.
func (c *Collector) Collect(ctx context.Context, src source.PageSource, target int) ([]scraper.RawRecord, *Stats, error) {
	if target <= 0 {
		return nil, nil, fmt.Errorf("target count must be > 0, got %d", target)
	}

	stats := &Stats{}
	records := make([]scraper.RawRecord, 0, target)
	seen := make(map[string]struct{}, target)

	for len(records) < target {
		if c.maxPages > 0 && stats.Pages >= c.maxPages {
			stats.StoppedReason = fmt.Sprintf("reached max pages %d", c.maxPages)
			return nil, stats, &InsufficientDataError{Target: target, Got: len(records), Reason: stats.StoppedReason}
		}

		page, err := src.NextPage(ctx)
		if err != nil {
			if errors.Is(err, source.ErrNoMorePages) {
				stats.StoppedReason = "source exhausted"
				return nil, stats, &InsufficientDataError{Target: target, Got: len(records), Reason: stats.StoppedReason}
			}
			stats.StoppedReason = fmt.Sprintf("navigation error at page %d", stats.Pages+1)
			c.logger.Error("Page request failed",
				"page", stats.Pages+1,
				"collected", len(records),
				"error", err.Error(),
			)
			return nil, stats, err
		}
		stats.Pages++

		accepted := 0
		for _, row := range page.Rows {
			stats.RowsSeen++
			if !row.Valid() {
				stats.DroppedRows++
				continue
			}
			if _, dup := seen[row.ID]; dup {
				stats.DuplicateRows++
				continue
			}
			if len(records) == target {
				// Страница принесла больше, чем нужно
				stats.TruncatedRows++
				continue
			}
			seen[row.ID] = struct{}{}
			records = append(records, row)
			accepted++
		}

		c.logger.Info("Page analysis",
			"page", stats.Pages,
			"rows", len(page.Rows),
			"accepted", accepted,
			"collected", len(records),
			"target", target,
		)

		if len(records) < target && !page.HasMore {
			stats.StoppedReason = fmt.Sprintf("no more pages after page %d", stats.Pages)
			return nil, stats, &InsufficientDataError{Target: target, Got: len(records), Reason: stats.StoppedReason}
		}
	}

	stats.StoppedReason = fmt.Sprintf("reached target %d at page %d", target, stats.Pages)

	c.logger.Info("Pagination completed",
		"total_pages", stats.Pages,
		"collected", len(records),
		"dropped_rows", stats.DroppedRows,
		"duplicate_rows", stats.DuplicateRows,
		"reason", stats.StoppedReason,
	)

	return records, stats, nil
}
