package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/lib/pq"
)

const predictionColumns = `
	product_sku, product_name, current_stock, predicted_demand, confidence_level,
	risk_status, next_restock_recommendation, reason, prediction_date
`

type predictionRepository struct {
	db *DB
}

func NewPredictionRepository(db *DB) repository.PredictionRepository {
	return &predictionRepository{db: db}
}

// UpsertPredictions replaces the stored prediction of every SKU in records.
func (r *predictionRepository) UpsertPredictions(ctx context.Context, records []domain.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO predictions (` + predictionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (product_sku)
			DO UPDATE SET
				product_name = EXCLUDED.product_name,
				current_stock = EXCLUDED.current_stock,
				predicted_demand = EXCLUDED.predicted_demand,
				confidence_level = EXCLUDED.confidence_level,
				risk_status = EXCLUDED.risk_status,
				next_restock_recommendation = EXCLUDED.next_restock_recommendation,
				reason = EXCLUDED.reason,
				prediction_date = EXCLUDED.prediction_date,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx,
				rec.ProductSKU,
				rec.ProductName,
				rec.CurrentStock,
				rec.PredictedDemand,
				rec.ConfidenceLevel,
				string(rec.RiskStatus),
				rec.NextRestockRecommendation,
				rec.Reason,
				rec.PredictionDate,
			); err != nil {
				return fmt.Errorf("failed to upsert prediction for sku %s: %w", rec.ProductSKU, err)
			}
		}

		return nil
	})
}

// ListPredictions returns all stored predictions ordered by SKU.
func (r *predictionRepository) ListPredictions(ctx context.Context) ([]domain.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions ORDER BY product_sku`

	records := []domain.PredictionRecord{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("error listing predictions: %w", err)
	}

	return records, nil
}

// GetPredictionsBySKUs returns the stored predictions for the given SKUs.
func (r *predictionRepository) GetPredictionsBySKUs(ctx context.Context, skus []string) ([]domain.PredictionRecord, error) {
	records := []domain.PredictionRecord{}
	if len(skus) == 0 {
		return records, nil
	}

	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE product_sku = ANY($1::text[]) ORDER BY product_sku`
	if err := r.db.SelectContext(ctx, &records, query, pq.Array(skus)); err != nil {
		return nil, fmt.Errorf("error getting predictions by sku: %w", err)
	}

	return records, nil
}
