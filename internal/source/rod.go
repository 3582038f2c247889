package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"hn-newest-parser/internal/config"
	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
)

type rodSession struct {
	cfg      *config.Config
	scraper  *scraper.Scraper
	logger   *observability.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	baseURL string
	pageNum int
	done    bool
}

// NewRodOpener каждый проход запускает свой браузер; Close гарантированно его гасит
func NewRodOpener(cfg *config.Config, s *scraper.Scraper, logger *observability.Logger) Opener {
	return func(ctx context.Context) (Session, error) {
		l := launcher.New().Headless(cfg.Rod.Headless)
		if cfg.Rod.ChromePath != "" {
			l = l.Bin(cfg.Rod.ChromePath)
		} else if path, found := launcher.LookPath(); found {
			l = l.Bin(path)
		}

		controlURL, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("failed to connect to browser: %w", err)
		}

		logger.Info("Browser started", "headless", cfg.Rod.Headless)

		return &rodSession{
			cfg:      cfg,
			scraper:  s,
			logger:   logger,
			launcher: l,
			browser:  browser,
			baseURL:  cfg.BaseURLs.Listing,
		}, nil
	}
}

func (s *rodSession) NextPage(ctx context.Context) (*Page, error) {
	if s.done {
		return nil, ErrNoMorePages
	}

	s.pageNum++

	if s.page == nil {
		if err := s.open(ctx); err != nil {
			return nil, &NavigationError{URL: s.baseURL, Page: s.pageNum, Err: err}
		}
	} else {
		if err := s.clickMore(ctx); err != nil {
			return nil, &NavigationError{URL: s.currentURL(), Page: s.pageNum, Err: err}
		}
	}

	if delay := s.cfg.GetRodLazyLoadDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	pageURL := s.currentURL()
	s.logger.Info("Processing page",
		"page", s.pageNum,
		"url", pageURL,
	)

	html, err := s.page.HTML()
	if err != nil {
		return nil, &NavigationError{URL: pageURL, Page: s.pageNum, Err: err}
	}

	rows, err := s.scraper.ParseListing(html)
	if err != nil {
		return nil, &NavigationError{URL: pageURL, Page: s.pageNum, Err: err}
	}

	nextLink, err := s.scraper.FindNextPageLink(html, pageURL)
	if err != nil {
		return nil, &NavigationError{URL: pageURL, Page: s.pageNum, Err: err}
	}
	if nextLink == "" {
		s.done = true
		s.logger.Info("No next link found", "page", s.pageNum)
	}

	return &Page{
		Rows:    rows,
		HasMore: !s.done,
		URL:     pageURL,
	}, nil
}

func (s *rodSession) open(ctx context.Context) error {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: s.baseURL})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	s.page = page

	loading := page.Timeout(s.cfg.GetRodWaitLoadTimeout())
	defer loading.CancelTimeout()

	if err := loading.WaitLoad(); err != nil {
		return fmt.Errorf("page did not load: %w", err)
	}
	return nil
}

// clickMore кликает по ссылке "More" и ждёт загрузки следующей страницы
func (s *rodSession) clickMore(ctx context.Context) error {
	page := s.page.Context(ctx).Timeout(s.cfg.GetRodPageTimeout())
	// Таймер снимаем на любом выходе
	defer page.CancelTimeout()

	var more *rod.Element
	for _, selector := range s.scraper.NextPageSelectors() {
		has, el, err := page.Has(selector)
		if err != nil {
			return fmt.Errorf("failed to query %q: %w", selector, err)
		}
		if has {
			more = el
			break
		}
	}
	if more == nil {
		return errors.New("next page link not found")
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := more.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click next page link: %w", err)
	}
	wait()

	return nil
}

func (s *rodSession) currentURL() string {
	if s.page == nil {
		return s.baseURL
	}
	info, err := s.page.Info()
	if err != nil || info == nil {
		return s.baseURL
	}
	return info.URL
}

func (s *rodSession) Close() error {
	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	s.logger.Info("Browser closed", "pages", s.pageNum)
	return errors.Join(errs...)
}
