package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/api"
	"github.com/eventoscl/crawler/internal/archive"
	"github.com/eventoscl/crawler/internal/clock/system"
	"github.com/eventoscl/crawler/internal/config"
	"github.com/eventoscl/crawler/internal/logging"
	"github.com/eventoscl/crawler/internal/metrics"
	"github.com/eventoscl/crawler/internal/publish"
	"github.com/eventoscl/crawler/internal/scraper"
	"github.com/eventoscl/crawler/internal/store"
)

// newScrapeCmd creates the 'scrape' subcommand, which executes one batch run.
func newScrapeCmd() *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one batch scrape of the event listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), headless)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	return cmd
}

func runScrape(parent context.Context, headless bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := system.New()

	gateway, err := store.NewPostgresGateway(ctx, store.PostgresConfig{
		DSN:             cfg.DB.DSN,
		Table:           cfg.DB.Table,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: time.Duration(cfg.DB.MaxConnLifetime) * time.Second,
	}, clk)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer gateway.Close()

	archiver, err := buildArchive(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}
	defer func() { _ = archiver.Close() }()

	publisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	if cfg.Diag.Enabled {
		diag := api.NewServer(cfg.Diag.Addr, logger)
		diag.Start()
		defer func() {
			if err := diag.Shutdown(context.Background()); err != nil {
				logger.Warn("diagnostics shutdown failed", zap.Error(err))
			}
		}()
	}

	runner := scraper.NewRunner(cfg, gateway, archiver, publisher, clk, logger)
	start := clk.Now()
	result, err := runner.Run(ctx, scraper.Options{Headless: headless})
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}

	logger.Info("run finished",
		zap.Duration("duration", clk.Now().Sub(start)),
		zap.Int("scraped", result.Scraped),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
	)

	if result.Errors > 0 {
		return fmt.Errorf("scrape finished with %d errors", result.Errors)
	}
	return nil
}

func buildArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (archive.Provider, error) {
	switch cfg.Archive.Provider {
	case "local":
		logger.Info("archiving rendered pages locally", zap.String("dir", cfg.Archive.BaseDir))
		return archive.NewLocal(cfg.Archive.BaseDir)
	case "gcs":
		logger.Info("archiving rendered pages to GCS", zap.String("bucket", cfg.Archive.Bucket))
		return archive.NewGCS(ctx, cfg.Archive.Bucket)
	default:
		return archive.NoOp{}, nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (publish.Publisher, error) {
	switch cfg.Publish.Provider {
	case "pubsub":
		logger.Info("publishing ingest notifications",
			zap.String("project", cfg.Publish.ProjectID),
			zap.String("topic", cfg.Publish.Topic),
		)
		return publish.NewPubSub(ctx, cfg.Publish.ProjectID, cfg.Publish.Topic)
	case "memory":
		return publish.NewMemory(), nil
	default:
		return publish.NoOp{}, nil
	}
}
