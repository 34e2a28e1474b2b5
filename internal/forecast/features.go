package forecast

import (
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// featureCount is the width of a feature row: month, season code, lag1, lag2.
const featureCount = 4

// lagSamples builds the training set for a chronologically sorted series.
// The first two periods have no full lag history and are dropped.
func lagSamples(series []domain.MonthlyAggregate) (X [][]float64, y []float64) {
	for i := 2; i < len(series); i++ {
		X = append(X, featureRow(series[i].Month, series[i].SeasonCode, series[i-1].Quantity, series[i-2].Quantity))
		y = append(y, series[i].Quantity)
	}
	return X, y
}

// nextFeatures builds the feature row for the period after the series ends,
// using the two most recent observed quantities as lags.
func nextFeatures(series []domain.MonthlyAggregate, month time.Month, seasonCode int) []float64 {
	n := len(series)
	return featureRow(month, seasonCode, series[n-1].Quantity, series[n-2].Quantity)
}

func featureRow(month time.Month, seasonCode int, lag1, lag2 float64) []float64 {
	row := make([]float64, 0, featureCount)
	return append(row, float64(month), float64(seasonCode), lag1, lag2)
}
