// Package analysis проверки над обогащённой выборкой. Все функции чистые и не меняют вход.
package analysis

import (
	"fmt"

	"hn-newest-parser/internal/enrich"
)

// OrderCheck результат проверки порядка; ViolationIndex = -1, если нарушений нет
type OrderCheck struct {
	Sorted         bool
	ViolationIndex int
	Reason         string
}

// CheckOrder проверяет, что timestamp не возрастает от записи к записи.
// Неизвестный timestamp считается нарушением в своей позиции.
func CheckOrder(records []enrich.EnrichedRecord) OrderCheck {
	for i, cur := range records {
		curTS, ok := cur.TimestampValue()
		if !ok {
			return OrderCheck{
				ViolationIndex: i,
				Reason:         fmt.Sprintf("record %s at position %d has unknown timestamp", cur.ID, i+1),
			}
		}
		if i == 0 {
			continue
		}
		prevTS, _ := records[i-1].TimestampValue()
		if prevTS < curTS {
			return OrderCheck{
				ViolationIndex: i,
				Reason: fmt.Sprintf("record %s at position %d (time %d) is newer than record %s (time %d)",
					cur.ID, i+1, curTS, records[i-1].ID, prevTS),
			}
		}
	}

	return OrderCheck{Sorted: true, ViolationIndex: -1}
}

func IsSorted(records []enrich.EnrichedRecord) bool {
	return CheckOrder(records).Sorted
}
