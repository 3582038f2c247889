package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
	"hn-newest-parser/internal/source"
)

// fakeSource отдаёт заранее заготовленные страницы
type fakeSource struct {
	pages [][]scraper.RawRecord
	err   error
	errAt int
	calls int
}

func (f *fakeSource) NextPage(ctx context.Context) (*source.Page, error) {
	f.calls++
	if f.err != nil && f.calls == f.errAt {
		return nil, f.err
	}
	if f.calls > len(f.pages) {
		return nil, source.ErrNoMorePages
	}
	return &source.Page{
		Rows:    f.pages[f.calls-1],
		HasMore: f.calls < len(f.pages),
	}, nil
}

func rows(from, to int) []scraper.RawRecord {
	var out []scraper.RawRecord
	for i := from; i <= to; i++ {
		out = append(out, scraper.RawRecord{ID: fmt.Sprint(i), Title: fmt.Sprintf("Story %d", i)})
	}
	return out
}

func newCollector() *Collector {
	return NewCollector(50, observability.NewNopLogger())
}

func TestCollectExactCount(t *testing.T) {
	src := &fakeSource{pages: [][]scraper.RawRecord{rows(1, 30), rows(31, 60), rows(61, 90), rows(91, 120)}}

	for _, target := range []int{1, 29, 30, 31, 100, 120} {
		t.Run(fmt.Sprint(target), func(t *testing.T) {
			src.calls = 0
			records, stats, err := newCollector().Collect(context.Background(), src, target)
			require.NoError(t, err)
			assert.Len(t, records, target)

			ids := make(map[string]struct{})
			for _, r := range records {
				ids[r.ID] = struct{}{}
			}
			assert.Len(t, ids, target)
			assert.Equal(t, "1", records[0].ID)
			assert.Equal(t, fmt.Sprint(target), records[target-1].ID)
			assert.Equal(t, (target+29)/30, stats.Pages)
		})
	}
}

func TestCollectDeduplicatesOverlappingPages(t *testing.T) {
	src := &fakeSource{pages: [][]scraper.RawRecord{
		rows(1, 30),
		rows(25, 54), // перекрытие 25..30
		rows(50, 79),
	}}

	records, stats, err := newCollector().Collect(context.Background(), src, 70)
	require.NoError(t, err)
	require.Len(t, records, 70)

	for i, r := range records {
		assert.Equal(t, fmt.Sprint(i+1), r.ID)
	}
	assert.Equal(t, 6+5, stats.DuplicateRows)
	assert.Equal(t, 9, stats.TruncatedRows)
}

func TestCollectDropsMalformedRows(t *testing.T) {
	page := append(rows(1, 3),
		scraper.RawRecord{ID: "", Title: "no id"},
		scraper.RawRecord{ID: "99", Title: ""},
	)
	src := &fakeSource{pages: [][]scraper.RawRecord{page, rows(4, 10)}}

	records, stats, err := newCollector().Collect(context.Background(), src, 5)
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, 2, stats.DroppedRows)
	for _, r := range records {
		assert.NotEqual(t, "99", r.ID)
	}
}

func TestCollectInsufficientData(t *testing.T) {
	src := &fakeSource{pages: [][]scraper.RawRecord{rows(1, 30), rows(31, 40)}}

	records, _, err := newCollector().Collect(context.Background(), src, 100)
	require.Error(t, err)
	assert.Nil(t, records)

	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 100, insufficient.Target)
	assert.Equal(t, 40, insufficient.Got)
}

func TestCollectStopsAtMaxPages(t *testing.T) {
	// Источник бесконечно возвращает одни и те же строки
	same := make([][]scraper.RawRecord, 100)
	for i := range same {
		same[i] = rows(1, 30)
	}
	src := &fakeSource{pages: same}

	_, stats, err := NewCollector(3, observability.NewNopLogger()).Collect(context.Background(), src, 100)

	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 30, insufficient.Got)
	assert.Equal(t, 3, stats.Pages)
}

func TestCollectPropagatesNavigationError(t *testing.T) {
	navErr := &source.NavigationError{URL: "https://news.ycombinator.com/newest?next=1", Page: 2, Err: errors.New("timeout")}
	src := &fakeSource{pages: [][]scraper.RawRecord{rows(1, 30), rows(31, 60)}, err: navErr, errAt: 2}

	_, _, err := newCollector().Collect(context.Background(), src, 50)

	var got *source.NavigationError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 2, got.Page)
}

func TestCollectRejectsNonPositiveTarget(t *testing.T) {
	_, _, err := newCollector().Collect(context.Background(), &fakeSource{}, 0)
	assert.Error(t, err)
}
