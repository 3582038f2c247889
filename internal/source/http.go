package source

import (
	"context"
	"fmt"
	"net/http"

	"hn-newest-parser/internal/fetcher"
	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
)

type httpSession struct {
	fetcher *fetcher.Fetcher
	scraper *scraper.Scraper
	logger  *observability.Logger

	nextURL string
	pageNum int
	done    bool
}

// NewHTTPOpener обход листинга обычными GET-запросами, следующая страница берётся из ссылки "More"
func NewHTTPOpener(f *fetcher.Fetcher, s *scraper.Scraper, baseURL string, logger *observability.Logger) Opener {
	return func(ctx context.Context) (Session, error) {
		return &httpSession{
			fetcher: f,
			scraper: s,
			logger:  logger,
			nextURL: baseURL,
		}, nil
	}
}

func (s *httpSession) NextPage(ctx context.Context) (*Page, error) {
	if s.done {
		return nil, ErrNoMorePages
	}

	s.pageNum++
	currentURL := s.nextURL

	s.logger.Info("Processing page",
		"page", s.pageNum,
		"url", currentURL,
	)

	resp, err := s.fetcher.Fetch(ctx, currentURL)
	if err != nil {
		return nil, &NavigationError{URL: currentURL, Page: s.pageNum, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &NavigationError{
			URL:  currentURL,
			Page: s.pageNum,
			Err:  fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	rows, err := s.scraper.ParseListing(string(resp.Body))
	if err != nil {
		return nil, &NavigationError{URL: currentURL, Page: s.pageNum, Err: err}
	}

	nextLink, err := s.scraper.FindNextPageLink(string(resp.Body), resp.URL)
	if err != nil {
		return nil, &NavigationError{URL: currentURL, Page: s.pageNum, Err: err}
	}

	if nextLink == "" {
		s.done = true
		s.logger.Info("No next link found", "page", s.pageNum)
	} else {
		s.nextURL = nextLink
		s.logger.Debug("Next URL extracted", "page", s.pageNum, "next_url", nextLink)
	}

	return &Page{
		Rows:    rows,
		HasMore: !s.done,
		URL:     currentURL,
	}, nil
}

func (s *httpSession) Close() error {
	return nil
}
