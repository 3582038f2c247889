package enrich

import (
	"fmt"
	"strings"

	"hn-newest-parser/internal/scraper"
)

// Fields набор атрибутов, которые нужно подтянуть при обогащении
type Fields uint8

const (
	FieldTimestamp Fields = 1 << iota
	FieldAuthor
)

func (f Fields) Has(field Fields) bool {
	return f&field != 0
}

func (f Fields) String() string {
	var names []string
	if f.Has(FieldTimestamp) {
		names = append(names, "timestamp")
	}
	if f.Has(FieldAuthor) {
		names = append(names, "author")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// EnrichedRecord запись листинга с атрибутами из API. nil означает "неизвестно".
type EnrichedRecord struct {
	scraper.RawRecord
	Timestamp *int64
	Author    *string
}

func (r EnrichedRecord) TimestampValue() (int64, bool) {
	if r.Timestamp == nil {
		return 0, false
	}
	return *r.Timestamp, true
}

func (r EnrichedRecord) AuthorValue() (string, bool) {
	if r.Author == nil {
		return "", false
	}
	return *r.Author, true
}

// LookupFailure диагностика по одной записи, пакет при этом не прерывается
type LookupFailure struct {
	ID  string
	Err error
}

func (f LookupFailure) String() string {
	return fmt.Sprintf("%s: %v", f.ID, f.Err)
}

type Result struct {
	Records  []EnrichedRecord
	Failures []LookupFailure
}

// Summary строка вида "3 of 100 lookups failed"
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d lookups failed", len(r.Failures), len(r.Records))
}

// SystemicEnrichmentError все запросы пакета упали: удалённый сервис недоступен
type SystemicEnrichmentError struct {
	Attempted int
	Last      error
}

func (e *SystemicEnrichmentError) Error() string {
	return fmt.Sprintf("all %d item lookups failed, last error: %v", e.Attempted, e.Last)
}

func (e *SystemicEnrichmentError) Unwrap() error {
	return e.Last
}
