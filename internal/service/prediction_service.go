package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/payload"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/rs/zerolog/log"
)

const defaultTopRiskyLimit = 5

// Predictor runs a batch prediction.
type Predictor interface {
	Run(ctx context.Context, products []domain.Product, sales []domain.SaleRecord, ref time.Time) ([]domain.PredictionRecord, error)
}

type PredictionService struct {
	predictor Predictor
	repo      repository.PredictionRepository
	cache     cache.PredictionCache
	archiver  *storage.Archiver
	topLimit  int
}

// NewPredictionService wires the pipeline with its optional outputs. repo and
// archiver may be nil when persistence or archiving is disabled.
func NewPredictionService(
	predictor Predictor,
	repo repository.PredictionRepository,
	cacheImpl cache.PredictionCache,
	archiver *storage.Archiver,
	topLimit int,
) *PredictionService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPredictionCache()
	}
	if topLimit <= 0 {
		topLimit = defaultTopRiskyLimit
	}
	return &PredictionService{
		predictor: predictor,
		repo:      repo,
		cache:     cacheImpl,
		archiver:  archiver,
		topLimit:  topLimit,
	}
}

// RunResult is a finished prediction run.
type RunResult struct {
	Records    []domain.PredictionRecord
	ArchiveKey string
}

// Run predicts the batch, then stores and archives the results when those
// outputs are configured. Any failure fails the whole run.
func (s *PredictionService) Run(ctx context.Context, batch *payload.Batch, ref time.Time) (*RunResult, error) {
	records, err := s.predictor.Run(ctx, batch.Products, batch.Sales, ref)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Records: records}

	if s.repo != nil && len(records) > 0 {
		if err := s.repo.UpsertPredictions(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to save predictions: %w", err)
		}
		if err := s.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("predictions: cache invalidate failed")
		}
	}

	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, ref, records)
		if err != nil {
			return nil, err
		}
		result.ArchiveKey = key
		log.Info().Str("key", key).Int("records", len(records)).Msg("predictions: archived run")
	}

	return result, nil
}

// List returns the stored predictions, most urgent first. A non-empty skus
// restricts the result to those products.
func (s *PredictionService) List(ctx context.Context, skus ...string) ([]domain.PredictionRecord, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: prediction storage is not configured", domain.ErrNotFound)
	}

	var (
		records []domain.PredictionRecord
		err     error
	)
	if len(skus) > 0 {
		records, err = s.repo.GetPredictionsBySKUs(ctx, skus)
	} else {
		records, err = s.repo.ListPredictions(ctx)
	}
	if err != nil {
		return nil, err
	}
	domain.SortBySeverity(records)
	return records, nil
}

// Dashboard summarizes the stored predictions.
func (s *PredictionService) Dashboard(ctx context.Context) (*domain.PredictionDashboard, error) {
	if dashboard, ok, err := s.cache.GetDashboard(ctx, s.topLimit); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("predictions: cache get dashboard failed")
	}

	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := domain.Summarize(records, s.topLimit)
	if err := s.cache.SetDashboard(ctx, s.topLimit, &dashboard); err != nil {
		log.Warn().Err(err).Msg("predictions: cache set dashboard failed")
	}

	return &dashboard, nil
}

// Archives lists the archived prediction runs.
func (s *PredictionService) Archives(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.archiver == nil {
		return nil, fmt.Errorf("%w: prediction archive is not configured", domain.ErrNotFound)
	}
	return s.archiver.List(ctx)
}
