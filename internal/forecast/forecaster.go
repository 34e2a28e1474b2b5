package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/rs/zerolog/log"
)

// Policy holds the forecasting thresholds and fixed confidence scores.
type Policy struct {
	ColdStartDemand     int     // demand assumed when history is too short
	MinHistory          int     // monthly points needed to leave cold start
	MinTrainingRows     int     // lagged rows needed to train a model
	ColdStartConfidence float64 // confidence for cold start estimates
	AverageConfidence   float64 // confidence for mean-based estimates
	ModelConfidence     float64 // confidence for model predictions
}

// DefaultPolicy returns the standard forecasting policy.
func DefaultPolicy() Policy {
	return Policy{
		ColdStartDemand:     5,
		MinHistory:          3,
		MinTrainingRows:     6,
		ColdStartConfidence: 0.1,
		AverageConfidence:   0.4,
		ModelConfidence:     0.8,
	}
}

// Forecaster picks a strategy per product based on how much history it has
// and produces a next-period demand estimate.
type Forecaster struct {
	policy   Policy
	newModel ModelFactory
}

// NewForecaster creates a forecaster. A nil factory uses the default forest.
func NewForecaster(policy Policy, newModel ModelFactory) *Forecaster {
	if newModel == nil {
		newModel = func() Regressor { return NewForest(defaultForestTrees, defaultForestSeed) }
	}
	return &Forecaster{policy: policy, newModel: newModel}
}

// Forecast estimates demand for the month after ref from a chronologically
// sorted monthly series. It never fails: model problems degrade to the
// average estimate.
func (f *Forecaster) Forecast(sku string, series []domain.MonthlyAggregate, ref time.Time) domain.Forecast {
	_, nextMonth := NextPeriod(ref)
	nextSeason := SeasonFor(nextMonth)

	if len(series) < f.policy.MinHistory {
		return domain.Forecast{
			PredictedDemand: f.policy.ColdStartDemand,
			Confidence:      f.policy.ColdStartConfidence,
			Strategy:        domain.StrategyColdStart,
			NextSeason:      nextSeason,
		}
	}

	average := domain.Forecast{
		PredictedDemand: averageDemand(series),
		Confidence:      f.policy.AverageConfidence,
		Strategy:        domain.StrategyAverage,
		NextSeason:      nextSeason,
	}

	X, y := lagSamples(series)
	if len(X) < f.policy.MinTrainingRows {
		return average
	}

	out := runModel(f.newModel(), X, y, nextFeatures(series, nextMonth, SeasonCode(nextSeason)))
	if !out.OK() {
		log.Warn().
			Str("sku", sku).
			Int("rows", len(X)).
			Str("reason", out.FallbackReason).
			Msg("forecast: model failed, using average")
		average.FallbackReason = out.FallbackReason
		return average
	}

	return domain.Forecast{
		PredictedDemand: toDemand(math.RoundToEven(out.Value)),
		Confidence:      f.policy.ModelConfidence,
		Strategy:        domain.StrategyModel,
		NextSeason:      nextSeason,
	}
}

// averageDemand is the rounded mean of all monthly quantities.
func averageDemand(series []domain.MonthlyAggregate) int {
	if len(series) == 0 {
		return 0
	}

	var total float64
	for _, row := range series {
		total += row.Quantity
	}
	return toDemand(math.Round(total / float64(len(series))))
}

// MaxDemand caps every demand estimate so it always fits an int.
const MaxDemand = math.MaxInt32

// toDemand converts a rounded estimate to a demand in [0, MaxDemand].
func toDemand(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= MaxDemand:
		return MaxDemand
	default:
		return int(v)
	}
}
