package scraper

import (
	"os"
	"testing"

	"hn-newest-parser/internal/normalize"
)

func newTestScraper() *Scraper {
	return NewScraper(&Selectors{
		RowSelector:    "tr.athing.submission",
		IDAttr:         "id",
		TitleSelectors: []string{".titleline > a"},
		NextPageLink:   []string{"a.morelink"},
	}, normalize.NewNormalizer(normalize.Options{TrimNBSP: true, CollapseSpaces: true}))
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/newest.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestParseListing(t *testing.T) {
	rows, err := newTestScraper().ParseListing(loadFixture(t))
	if err != nil {
		t.Fatalf("ParseListing error: %v", err)
	}

	expected := []RawRecord{
		{ID: "41000003", Title: "Rust in prod"},
		{ID: "41000002", Title: "Go is great"},
		{ID: "", Title: "Orphan row without id"},
		{ID: "41000001", Title: ""},
	}

	if len(rows) != len(expected) {
		t.Fatalf("ParseListing returned %d rows, want %d", len(rows), len(expected))
	}
	for i, row := range rows {
		if row != expected[i] {
			t.Errorf("row[%d] = %+v, want %+v", i, row, expected[i])
		}
	}
}

func TestParseListingValidRows(t *testing.T) {
	rows, err := newTestScraper().ParseListing(loadFixture(t))
	if err != nil {
		t.Fatalf("ParseListing error: %v", err)
	}

	valid := 0
	for _, row := range rows {
		if row.Valid() {
			valid++
		}
	}
	if valid != 2 {
		t.Errorf("valid rows = %d, want 2", valid)
	}
}

func TestParseListingEmptyPage(t *testing.T) {
	rows, err := newTestScraper().ParseListing("<html><body><table></table></body></html>")
	if err != nil {
		t.Fatalf("ParseListing error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestFindNextPageLink(t *testing.T) {
	scr := newTestScraper()

	tests := []struct {
		name     string
		html     string
		pageURL  string
		expected string
	}{
		{"relative link resolved", loadFixture(t), "https://news.ycombinator.com/newest", "https://news.ycombinator.com/newest?next=41000000&n=31"},
		{"no base keeps href", loadFixture(t), "", "newest?next=41000000&n=31"},
		{"no more link", "<html><body></body></html>", "https://news.ycombinator.com/newest", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scr.FindNextPageLink(tt.html, tt.pageURL)
			if err != nil {
				t.Fatalf("FindNextPageLink error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("FindNextPageLink = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page#anchor", "https://example.com/page"},
		{"  https://example.com  ", "https://example.com"},
		{"newest?next=1&n=31", "newest?next=1&n=31"},
	}

	for _, tt := range tests {
		result := normalizeURL(tt.input)
		if result != tt.expected {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
