package cmd

import (
	"context"
	"fmt"
	"time"

	"scene-publisher/core/config"
	"scene-publisher/core/database"
	"scene-publisher/core/logger"
	"scene-publisher/core/storage"
	"scene-publisher/feature/catalog"
	"scene-publisher/feature/publish"

	"go.uber.org/zap"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	catalog *catalog.Catalog
	service *publish.Service
}

// bootstrap loads the configuration and wires the publish service. With
// requireDB unset a failed database connection degrades to an in-memory
// graph.
func bootstrap(ctx context.Context, requireDB bool) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, log: l}
	if db, err := database.Connect(cfg.Database); err != nil {
		if requireDB {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		l.Warn("Catalog database unavailable, using in-memory graph", zap.Error(err))
	} else {
		ttl := time.Duration(cfg.Import.CacheTTLSeconds) * time.Second
		a.catalog = catalog.New(db, ttl, l)
		if err := a.catalog.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate catalog: %w", err)
		}
		l.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if cfg.Import.UploadTextures {
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, fmt.Errorf("failed to prepare bucket: %w", err)
		}
	}

	a.service = publish.NewService(cfg.Import, a.catalog, client, cfg.Storage.Bucket, l)
	return a, nil
}
