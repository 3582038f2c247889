package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hn-newest-parser/internal/fetcher"
)

var (
	// ErrItemNotFound API вернуло null или 404 на идентификатор
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidItemID идентификатор из листинга не число, запрос не делаем
	ErrInvalidItemID = errors.New("invalid item id")
)

// Item поля элемента HN API, которые нам нужны
type Item struct {
	ID      int64   `json:"id"`
	By      *string `json:"by"`
	Time    *int64  `json:"time"`
	Deleted bool    `json:"deleted"`
	Dead    bool    `json:"dead"`
}

// ItemLookup получение элемента по идентификатору. (nil, nil) означает, что элемента нет.
type ItemLookup interface {
	Fetch(ctx context.Context, id string) (*Item, error)
}

type HNItemLookup struct {
	fetcher *fetcher.Fetcher
	baseURL string
}

func NewHNItemLookup(f *fetcher.Fetcher, baseURL string) *HNItemLookup {
	return &HNItemLookup{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (l *HNItemLookup) itemURL(id string) (string, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidItemID, id)
	}
	return fmt.Sprintf("%s/item/%s.json", l.baseURL, id), nil
}

func (l *HNItemLookup) Fetch(ctx context.Context, id string) (*Item, error) {
	itemURL, err := l.itemURL(id)
	if err != nil {
		return nil, err
	}

	resp, err := l.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", id, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch item %s: unexpected status code %d", id, resp.StatusCode)
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", id, err)
	}

	return &item, nil
}
