package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hn-newest-parser/internal/normalize"
)

type Scraper struct {
	selectors  *Selectors
	normalizer *normalize.Normalizer
}

func NewScraper(selectors *Selectors, normalizer *normalize.Normalizer) *Scraper {
	return &Scraper{
		selectors:  selectors,
		normalizer: normalizer,
	}
}

// ParseListing парсит листинг и возвращает строки в порядке страницы.
// Строки без ID или заголовка не отбрасываются: решение принимает коллектор.
func (s *Scraper) ParseListing(html string) ([]RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	idAttr := s.selectors.IDAttr
	if idAttr == "" {
		idAttr = "id"
	}

	var rows []RawRecord
	doc.Find(s.selectors.RowSelector).Each(func(i int, sel *goquery.Selection) {
		id, _ := sel.Attr(idAttr)
		rows = append(rows, RawRecord{
			ID:    strings.TrimSpace(id),
			Title: s.normalizer.CleanText(trySelectors(sel, s.selectors.TitleSelectors)),
		})
	})

	return rows, nil
}

// FindNextPageLink ищет ссылку "More" и резолвит её относительно URL текущей страницы
func (s *Scraper) FindNextPageLink(html, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, selector := range s.selectors.NextPageLink {
		href, exists := doc.Find(selector).First().Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			continue
		}
		return resolveURL(pageURL, normalizeURL(href))
	}

	return "", nil // Нет следующей страницы
}

func trySelectors(s *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(s.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func resolveURL(base, ref string) (string, error) {
	if base == "" {
		return ref, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

func normalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	// Удаляем якори, параметры пагинации нужны
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}

// NextPageSelectors селекторы ссылки на следующую страницу, для кликов в браузере
func (s *Scraper) NextPageSelectors() []string {
	return s.selectors.NextPageLink
}
