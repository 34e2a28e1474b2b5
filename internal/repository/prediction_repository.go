// internal/repository/prediction_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// PredictionRepository stores the latest prediction per SKU.
type PredictionRepository interface {
	UpsertPredictions(ctx context.Context, records []domain.PredictionRecord) error
	ListPredictions(ctx context.Context) ([]domain.PredictionRecord, error)
	GetPredictionsBySKUs(ctx context.Context, skus []string) ([]domain.PredictionRecord, error)
}
