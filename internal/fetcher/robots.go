package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"hn-newest-parser/internal/observability"
)

// maxRobotsBodyBytes больше robots.txt не читаем
const maxRobotsBodyBytes = 512 * 1024

type RobotsCache struct {
	cache     map[string]*robotsEntry
	ttl       time.Duration
	userAgent string
	mu        sync.RWMutex
	logger    *observability.Logger
}

// robotsEntry разобранный robots.txt хоста; data == nil значит "разрешено всё"
type robotsEntry struct {
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

func NewRobotsCache(ttl time.Duration, userAgent string, logger *observability.Logger) *RobotsCache {
	return &RobotsCache{
		cache:     make(map[string]*robotsEntry),
		ttl:       ttl,
		userAgent: userAgent,
		logger:    logger,
	}
}

func (rc *RobotsCache) IsAllowed(ctx context.Context, target *url.URL, client *http.Client) (bool, error) {
	host := target.Host

	rc.mu.RLock()
	cached, exists := rc.cache[host]
	rc.mu.RUnlock()

	if exists && time.Now().Before(cached.expiresAt) {
		return rc.allows(cached, target), nil
	}

	scheme := target.Scheme
	if scheme == "" {
		scheme = "https"
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	entry, err := rc.fetch(ctx, robotsURL, client)
	if err != nil {
		// Недоступный robots.txt не блокирует обход, но и не кэшируется
		rc.logger.Debug("robots.txt unavailable", "host", host, "error", err.Error())
		return true, nil
	}

	rc.mu.Lock()
	rc.cache[host] = entry
	rc.mu.Unlock()

	return rc.allows(entry, target), nil
}

func (rc *RobotsCache) fetch(ctx context.Context, robotsURL string, client *http.Client) (*robotsEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			rc.logger.Warn("Failed to close response body", "url", robotsURL, "error", err.Error())
		}
	}()

	entry := &robotsEntry{expiresAt: time.Now().Add(rc.ttl)}

	// Только 2xx разбираем; 404 и прочее означает отсутствие ограничений
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entry, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		rc.logger.Warn("Malformed robots.txt, allowing all", "url", robotsURL, "error", err.Error())
		return entry, nil
	}
	entry.data = data

	return entry, nil
}

// allows проверяет путь вместе с query, чтобы работали правила вида "/*?"
func (rc *RobotsCache) allows(entry *robotsEntry, target *url.URL) bool {
	if entry.data == nil {
		return true
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}

	return entry.data.TestAgent(path, rc.userAgent)
}
