package app

import (
	"fmt"
	"path/filepath"

	"hn-newest-parser/internal/collector"
	"hn-newest-parser/internal/config"
	"hn-newest-parser/internal/enrich"
	"hn-newest-parser/internal/fetcher"
	"hn-newest-parser/internal/normalize"
	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/scraper"
	"hn-newest-parser/internal/source"
	"hn-newest-parser/internal/storage"
	"hn-newest-parser/internal/storage/mssql"
	"hn-newest-parser/internal/storage/sqlite"
)

// Components собранное приложение
type Components struct {
	Orchestrator *Orchestrator
	Normalizer   *normalize.Normalizer
	repo         storage.Repository
}

// Close освобождает хранилище, если оно было открыто
func (c *Components) Close() error {
	if c.repo != nil {
		return c.repo.Close()
	}
	return nil
}

// Bootstrap собирает все зависимости по конфигу. configPath нужен для
// разрешения относительного пути к файлу селекторов.
func Bootstrap(cfg *config.Config, configPath string, logger *observability.Logger) (*Components, error) {
	selectors, err := cfg.LoadListingSelectors(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("load selectors: %w", err)
	}

	normalizer := normalize.NewNormalizer(cfg.Normalize)
	scr := scraper.NewScraper(selectors, normalizer)
	f := fetcher.NewFetcher(cfg, logger)

	var opener source.Opener
	if cfg.Rod.Enabled {
		logger.Info("Using headless browser page source")
		opener = source.NewRodOpener(cfg, scr, logger)
	} else {
		opener = source.NewHTTPOpener(f, scr, cfg.BaseURLs.Listing, logger)
	}

	lookup := enrich.NewHNItemLookup(f, cfg.BaseURLs.ItemAPI)
	enricher := enrich.NewEnricher(lookup, cfg.Enrich.Concurrency, logger)
	coll := collector.NewCollector(cfg.Pagination.MaxPages, logger)

	var repo storage.Repository
	if cfg.Storage.Enabled {
		repo, err = openRepository(cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Run history enabled", "driver", cfg.Storage.Driver)
	}

	return &Components{
		Orchestrator: NewOrchestrator(cfg.Pagination.TargetCount, logger, opener, coll, enricher, repo),
		Normalizer:   normalizer,
		repo:         repo,
	}, nil
}

func openRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case "mssql":
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("open mssql storage: %w", err)
		}
		return repo, nil
	case "sqlite3":
		repo, err := sqlite.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
