package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"hn-newest-parser/internal/normalize"
)

// Значения по умолчанию применяются до декодирования, YAML их перекрывает
func defaults() Config {
	return Config{
		Rod: RodConfig{
			Headless:         true,
			PageTimeoutS:     30,
			WaitLoadTimeoutS: 15,
		},
		Backoff: BackoffConfig{
			MinMS:     250,
			MaxMS:     4000,
			JitterPct: 20,
		},
		RobotsCacheTTLHours: 12,
		BaseURLs: BaseURLsConfig{
			Listing: "https://news.ycombinator.com/newest",
			ItemAPI: "https://hacker-news.firebaseio.com/v0",
		},
		HTTP: HttpConfig{
			UserAgent:                 "hn-newest-parser/1.0",
			ConnectTimeoutMS:          10000,
			TotalTimeoutMS:            20000,
			MaxRetries:                2,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
			AcceptLanguage:            "en-US,en;q=0.9",
			RespectRobots:             true,
		},
		RateLimit: RateLimitConfig{
			MaxConcurrentPerHost: 4,
			RPM:                  600,
		},
		Pagination: PaginationConfig{
			TargetCount: 100,
			MaxPages:    10,
		},
		SelectorsFile: "selectors.yaml",
		Enrich: EnrichConfig{
			Concurrency: 8,
		},
		Normalize: normalize.Options{
			TrimNBSP:        true,
			CollapseSpaces:  true,
			MaxPreviewChars: 80,
		},
		Storage: StorageConfig{
			Driver:           "sqlite3",
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogPath:       "logs/hn-newest.log",
			LogLevel:      "info",
			MaxSizeMB:     10,
			MaxBackups:    3,
			MaxAgeDays:    7,
			ConsoleOutput: true,
		},
	}
}

func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем — иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	cfg := defaults()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}
