package analysis

import (
	"sort"

	"hn-newest-parser/internal/enrich"
)

type AuthorCount struct {
	Author string
	Count  int
}

// FindDuplicateAuthors авторы, у которых в выборке больше одной записи.
// Записи без автора не учитываются. Порядок: по убыванию Count, затем по имени.
func FindDuplicateAuthors(records []enrich.EnrichedRecord) []AuthorCount {
	counts := make(map[string]int)
	for _, r := range records {
		if author, ok := r.AuthorValue(); ok {
			counts[author]++
		}
	}

	duplicates := []AuthorCount{}
	for author, count := range counts {
		if count > 1 {
			duplicates = append(duplicates, AuthorCount{Author: author, Count: count})
		}
	}

	sort.Slice(duplicates, func(i, j int) bool {
		if duplicates[i].Count != duplicates[j].Count {
			return duplicates[i].Count > duplicates[j].Count
		}
		return duplicates[i].Author < duplicates[j].Author
	})

	return duplicates
}
