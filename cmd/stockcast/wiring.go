package main

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/pipeline"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/rs/zerolog/log"
)

// buildService assembles the prediction service. persist connects Postgres and
// archive connects object storage; with neither the run touches no network.
// now stamps prediction_date on every record.
func buildService(ctx context.Context, cfg *config.Config, persist, archive bool, now func() time.Time) (*service.PredictionService, func(), error) {
	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	p.WithClock(now)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repo repository.PredictionRepository
	predictionCache := cache.NewNoopPredictionCache()
	if persist {
		db, err := postgres.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close database")
			}
		})
		if err := db.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		repo = postgres.NewPredictionRepository(db)

		predictionCache, err = cache.NewPredictionCache(cfg.Cache)
		if err != nil {
			// The cache only speeds up the summary; runs still succeed without it.
			log.Warn().Err(err).Msg("prediction cache unavailable, continuing without it")
			predictionCache = cache.NewNoopPredictionCache()
		}
	}

	var archiver *storage.Archiver
	if archive {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		archiver = storage.NewArchiver(client, cfg.Storage.Prefix)
	}

	svc := service.NewPredictionService(p, repo, predictionCache, archiver, cfg.Risk.TopRiskyLimit)
	return svc, cleanup, nil
}
