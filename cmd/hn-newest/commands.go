package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hn-newest-parser/internal/app"
	"hn-newest-parser/internal/config"
	"hn-newest-parser/internal/observability"
)

const defaultConfigPath = "configs/config.yaml"

func newRootCommand() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	root := &cobra.Command{
		Use:           "hn-newest",
		Short:         "Analyses the newest Hacker News submissions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config.yaml")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "force debug log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "verify",
			Short: "Check that the newest submissions are sorted from newest to oldest",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(configPath, debug, func(ctx context.Context, c *app.Components, r *app.Reporter) error {
					rep, err := c.Orchestrator.VerifyOrder(ctx)
					if err != nil {
						return err
					}
					r.PrintOrder(rep)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "authors",
			Short: "List authors with more than one submission in the sample",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(configPath, debug, func(ctx context.Context, c *app.Components, r *app.Reporter) error {
					rep, err := c.Orchestrator.DuplicateAuthors(ctx)
					if err != nil {
						return err
					}
					r.PrintAuthors(rep)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "search KEYWORD",
			Short: "Find submissions whose title contains KEYWORD (case-insensitive)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(configPath, debug, func(ctx context.Context, c *app.Components, r *app.Reporter) error {
					rep, err := c.Orchestrator.SearchKeyword(ctx, args[0])
					if err != nil {
						return err
					}
					r.PrintSearch(rep)
					return nil
				})
			},
		},
	)

	return root
}

// run загружает конфиг, собирает зависимости и выполняет один анализ
func run(configPath string, debug bool, analyse func(ctx context.Context, c *app.Components, r *app.Reporter) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(observability.Options{
		LogPath:       cfg.Observability.LogPath,
		LogLevel:      cfg.Observability.LogLevel,
		MaxSizeMB:     cfg.Observability.MaxSizeMB,
		MaxBackups:    cfg.Observability.MaxBackups,
		MaxAgeDays:    cfg.Observability.MaxAgeDays,
		ConsoleOutput: cfg.Observability.ConsoleOutput,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Close()
	}()
	if debug {
		logger.SetLevel("debug")
	}

	components, err := app.Bootstrap(cfg, configPath, logger)
	if err != nil {
		logger.Error("Bootstrap failed", "error", err.Error())
		return err
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err.Error())
		}
	}()

	ctx, cancel := app.GracefulShutdown(logger, cfg.GetRunTimeout())
	defer cancel()

	reporter := app.NewReporter(os.Stdout, components.Normalizer)
	if err := analyse(ctx, components, reporter); err != nil {
		logger.Error("Analysis failed", "error", err.Error())
		return err
	}
	return nil
}
