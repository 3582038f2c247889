package analysis

import (
	"strings"

	"golang.org/x/text/cases"

	"hn-newest-parser/internal/enrich"
)

// NormalizeKeyword обрезает пробелы и приводит регистр через Unicode case folding
func NormalizeKeyword(keyword string) string {
	return cases.Fold().String(strings.TrimSpace(keyword))
}

// Search записи, в заголовке которых есть keyword как подстрока, без учёта регистра.
// Пустой keyword совпадает со всеми записями.
func Search(records []enrich.EnrichedRecord, keyword string) []enrich.EnrichedRecord {
	needle := NormalizeKeyword(keyword)
	folder := cases.Fold()

	matches := []enrich.EnrichedRecord{}
	for _, r := range records {
		if strings.Contains(folder.String(r.Title), needle) {
			matches = append(matches, r)
		}
	}

	return matches
}
