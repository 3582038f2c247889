package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
)

// fakeLookup элементы по id; ids из failing отвечают ошибкой транспорта
type fakeLookup struct {
	mu      sync.Mutex
	items   map[string]*Item
	failing map[string]bool
	calls   int
}

func (f *fakeLookup) Fetch(ctx context.Context, id string) (*Item, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failing[id] {
		return nil, fmt.Errorf("connection reset for %s", id)
	}
	return f.items[id], nil
}

func ptr[T any](v T) *T { return &v }

func rawRecords(n int) []scraper.RawRecord {
	out := make([]scraper.RawRecord, n)
	for i := range out {
		out[i] = scraper.RawRecord{ID: fmt.Sprint(i + 1), Title: fmt.Sprintf("Story %d", i+1)}
	}
	return out
}

func fullLookup(n int) *fakeLookup {
	items := make(map[string]*Item, n)
	for i := 1; i <= n; i++ {
		items[fmt.Sprint(i)] = &Item{
			ID:   int64(i),
			By:   ptr(fmt.Sprintf("user%d", i%3)),
			Time: ptr(int64(1000 - i)),
		}
	}
	return &fakeLookup{items: items}
}

func TestEnrichPreservesOrder(t *testing.T) {
	lookup := fullLookup(100)
	enricher := NewEnricher(lookup, 8, observability.NewNopLogger())

	records := rawRecords(100)
	result, err := enricher.Enrich(context.Background(), records, FieldTimestamp|FieldAuthor)
	require.NoError(t, err)
	require.Len(t, result.Records, 100)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 100, lookup.calls)

	for i, r := range result.Records {
		assert.Equal(t, records[i], r.RawRecord, "id and title must not change")
		ts, ok := r.TimestampValue()
		require.True(t, ok)
		assert.Equal(t, int64(1000-(i+1)), ts)
	}
}

func TestEnrichOnlyRequestedFields(t *testing.T) {
	enricher := NewEnricher(fullLookup(3), 2, observability.NewNopLogger())

	result, err := enricher.Enrich(context.Background(), rawRecords(3), FieldAuthor)
	require.NoError(t, err)

	for _, r := range result.Records {
		assert.Nil(t, r.Timestamp)
		assert.NotNil(t, r.Author)
	}
}

func TestEnrichMissingDataBecomesUnknown(t *testing.T) {
	lookup := &fakeLookup{
		items: map[string]*Item{
			"1": {ID: 1, By: ptr("alice"), Time: ptr(int64(300))},
			"2": {ID: 2}, // нет полей by и time
			"3": nil,     // API вернуло null
			"4": {ID: 4, By: ptr(""), Time: ptr(int64(100))},
		},
		failing: map[string]bool{"5": true},
	}
	enricher := NewEnricher(lookup, 3, observability.NewNopLogger())

	result, err := enricher.Enrich(context.Background(), rawRecords(5), FieldTimestamp|FieldAuthor)
	require.NoError(t, err)
	require.Len(t, result.Records, 5)

	assert.Equal(t, "alice", *result.Records[0].Author)
	assert.Nil(t, result.Records[1].Author)
	assert.Nil(t, result.Records[1].Timestamp)
	assert.Nil(t, result.Records[2].Timestamp)
	assert.Nil(t, result.Records[3].Author, "empty author is unknown")
	assert.Equal(t, int64(100), *result.Records[3].Timestamp)
	assert.Nil(t, result.Records[4].Timestamp)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "3", result.Failures[0].ID)
	assert.ErrorIs(t, result.Failures[0].Err, ErrItemNotFound)
	assert.Equal(t, "5", result.Failures[1].ID)
	assert.Equal(t, "2 of 5 lookups failed", result.Summary())
}

func TestEnrichDeletedAndDeadItemsAreMissing(t *testing.T) {
	lookup := &fakeLookup{
		items: map[string]*Item{
			"1": {ID: 1, By: ptr("alice"), Time: ptr(int64(300))},
			"2": {ID: 2, Time: ptr(int64(200)), Deleted: true},
			"3": {ID: 3, By: ptr("spammer"), Time: ptr(int64(100)), Dead: true},
		},
	}
	enricher := NewEnricher(lookup, 2, observability.NewNopLogger())

	result, err := enricher.Enrich(context.Background(), rawRecords(3), FieldTimestamp|FieldAuthor)
	require.NoError(t, err)

	assert.Equal(t, "alice", *result.Records[0].Author)
	assert.Nil(t, result.Records[1].Timestamp)
	assert.Nil(t, result.Records[2].Author, "dead item author must not be counted")
	assert.Nil(t, result.Records[2].Timestamp)

	require.Len(t, result.Failures, 2)
	for _, f := range result.Failures {
		assert.ErrorIs(t, f.Err, ErrItemNotFound)
	}
	assert.Equal(t, "2 of 3 lookups failed", result.Summary())
}

func TestEnrichSystemicFailure(t *testing.T) {
	failing := map[string]bool{}
	for i := 1; i <= 10; i++ {
		failing[fmt.Sprint(i)] = true
	}
	enricher := NewEnricher(&fakeLookup{failing: failing}, 4, observability.NewNopLogger())

	result, err := enricher.Enrich(context.Background(), rawRecords(10), FieldTimestamp)
	assert.Nil(t, result)

	var systemic *SystemicEnrichmentError
	require.True(t, errors.As(err, &systemic))
	assert.Equal(t, 10, systemic.Attempted)
}

func TestEnrichIsIdempotent(t *testing.T) {
	lookup := fullLookup(20)
	lookup.failing = map[string]bool{"7": true}
	enricher := NewEnricher(lookup, 5, observability.NewNopLogger())
	records := rawRecords(20)

	first, err := enricher.Enrich(context.Background(), records, FieldTimestamp|FieldAuthor)
	require.NoError(t, err)
	second, err := enricher.Enrich(context.Background(), records, FieldTimestamp|FieldAuthor)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, len(first.Failures), len(second.Failures))
}

func TestEnrichEmptyBatch(t *testing.T) {
	enricher := NewEnricher(&fakeLookup{}, 4, observability.NewNopLogger())

	result, err := enricher.Enrich(context.Background(), nil, FieldTimestamp)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestEnrichCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := NewEnricher(fullLookup(5), 2, observability.NewNopLogger())
	_, err := enricher.Enrich(ctx, rawRecords(5), FieldTimestamp)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnrichWithoutFieldsSkipsLookups(t *testing.T) {
	lookup := fullLookup(5)
	enricher := NewEnricher(lookup, 2, observability.NewNopLogger())

	records := rawRecords(5)
	result, err := enricher.Enrich(context.Background(), records, 0)
	require.NoError(t, err)
	require.Len(t, result.Records, 5)
	assert.Equal(t, 0, lookup.calls)
	assert.Equal(t, records[2], result.Records[2].RawRecord)
}

func TestFieldsString(t *testing.T) {
	assert.Equal(t, "timestamp,author", (FieldTimestamp | FieldAuthor).String())
	assert.Equal(t, "author", FieldAuthor.String())
	assert.Equal(t, "none", Fields(0).String())
}
