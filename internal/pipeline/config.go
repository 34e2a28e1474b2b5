package pipeline

import (
	"fmt"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/risk"
)

// NewFromConfig builds a pipeline from the forecast and risk settings.
func NewFromConfig(cfg *config.Config) (*Pipeline, error) {
	newModel, err := forecast.NewModelFactory(forecast.ModelConfig{
		Name:  cfg.Forecast.Model,
		Trees: cfg.Forecast.Trees,
		Seed:  cfg.Forecast.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid forecast config: %w", err)
	}

	forecaster := forecast.NewForecaster(forecast.Policy{
		ColdStartDemand:     cfg.Forecast.ColdStartDemand,
		MinHistory:          cfg.Forecast.MinHistory,
		MinTrainingRows:     cfg.Forecast.MinTrainingRows,
		ColdStartConfidence: cfg.Forecast.ColdStartConfidence,
		AverageConfidence:   cfg.Forecast.AverageConfidence,
		ModelConfidence:     cfg.Forecast.ModelConfidence,
	}, newModel)

	classifier := risk.NewClassifier(risk.Policy{
		CriticalRatio:  cfg.Risk.CriticalRatio,
		WarningRatio:   cfg.Risk.WarningRatio,
		SafetyBuffer:   cfg.Risk.SafetyBuffer,
		SeasonalAlerts: cfg.Risk.SeasonalAlerts,
	})

	pc := DefaultPipelineConfig()
	if cfg.Forecast.Workers > 0 {
		pc.WorkerCount = cfg.Forecast.Workers
	}

	return NewPipeline(forecaster, classifier, pc), nil
}
