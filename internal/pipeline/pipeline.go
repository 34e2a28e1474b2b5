package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/risk"
	"github.com/rs/zerolog/log"
)

// Pipeline runs the forecast and risk classification for a batch of products.
type Pipeline struct {
	forecaster *forecast.Forecaster
	classifier *risk.Classifier
	config     PipelineConfig
}

// NewPipeline creates a new prediction pipeline.
func NewPipeline(forecaster *forecast.Forecaster, classifier *risk.Classifier, config PipelineConfig) *Pipeline {
	if config.DateLayout == "" {
		config.DateLayout = time.RFC3339Nano
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Pipeline{
		forecaster: forecaster,
		classifier: classifier,
		config:     config,
	}
}

// WithClock overrides the clock that stamps prediction_date.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	if now != nil {
		p.config.Now = now
	}
	return p
}

// Run produces one PredictionRecord per product, in product order, for the
// month following ref. Sales for SKUs missing from products are ignored. An
// empty sales collection yields an empty result without forecasting anything.
func (p *Pipeline) Run(ctx context.Context, products []domain.Product, sales []domain.SaleRecord, ref time.Time) ([]domain.PredictionRecord, error) {
	start := time.Now()

	series, err := forecast.Aggregate(sales)
	if errors.Is(err, domain.ErrNoSales) {
		log.Info().Int("products", len(products)).Msg("pipeline: no sales records, nothing to predict")
		return []domain.PredictionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	products = uniqueProducts(products)
	records := make([]domain.PredictionRecord, len(products))
	forecasts := make([]domain.Forecast, len(products))
	predictionDate := p.config.Now().UTC().Format(p.config.DateLayout)

	err = forEach(ctx, len(products), p.config.WorkerCount, func(ctx context.Context, i int) error {
		product := products[i]
		fc := p.forecaster.Forecast(product.SKU, series[product.SKU], ref)
		assessment := p.classifier.Classify(fc.PredictedDemand, product.Stock, fc.NextSeason)

		forecasts[i] = fc
		records[i] = domain.PredictionRecord{
			ProductSKU:                product.SKU,
			ProductName:               product.Name,
			CurrentStock:              product.Stock,
			PredictedDemand:           fc.PredictedDemand,
			ConfidenceLevel:           fc.Confidence,
			RiskStatus:                assessment.Status,
			NextRestockRecommendation: assessment.Restock,
			Reason:                    risk.Reason(assessment),
			PredictionDate:            predictionDate,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("prediction run aborted: %w", err)
	}

	stats := collectStats(forecasts)
	stats.Sales = len(sales)
	stats.Duration = time.Since(start)
	log.Info().
		Int("products", stats.Products).
		Int("sales", stats.Sales).
		Int("cold_start", stats.ColdStart).
		Int("average", stats.Average).
		Int("model", stats.Model).
		Int("fallbacks", stats.Fallbacks).
		Dur("duration", stats.Duration).
		Msg("pipeline: prediction run completed")

	return records, nil
}

// uniqueProducts keeps the first occurrence of every SKU.
func uniqueProducts(products []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(products))
	unique := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if _, ok := seen[product.SKU]; ok {
			continue
		}
		seen[product.SKU] = struct{}{}
		unique = append(unique, product)
	}
	return unique
}

func collectStats(forecasts []domain.Forecast) RunStats {
	stats := RunStats{Products: len(forecasts)}
	for _, fc := range forecasts {
		switch fc.Strategy {
		case domain.StrategyColdStart:
			stats.ColdStart++
		case domain.StrategyAverage:
			stats.Average++
		case domain.StrategyModel:
			stats.Model++
		}
		if fc.Fallback() {
			stats.Fallbacks++
		}
	}
	return stats
}
