package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Regressor is a per-product regression model trained on lagged features.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
}

// ModelFactory returns a fresh, untrained Regressor. Every product gets its own
// instance so forecasts can run concurrently.
type ModelFactory func() Regressor

const (
	ModelForest = "forest"
	ModelLinear = "linear"
)

// ModelConfig selects and parameterizes the regression model.
type ModelConfig struct {
	Name  string
	Trees int
	Seed  int64
}

// NewModelFactory returns a factory for the named model.
func NewModelFactory(cfg ModelConfig) (ModelFactory, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case ModelForest, "":
		trees, seed := cfg.Trees, cfg.Seed
		return func() Regressor { return NewForest(trees, seed) }, nil
	case ModelLinear:
		return func() Regressor { return NewLinear() }, nil
	default:
		return nil, fmt.Errorf("unknown forecast model %q", cfg.Name)
	}
}

// Outcome is the result of running the model path: either a prediction or
// the reason the caller has to fall back.
type Outcome struct {
	Value          float64
	FallbackReason string
}

// OK reports whether the model produced a usable prediction.
func (o Outcome) OK() bool {
	return o.FallbackReason == ""
}

func fallback(err error) Outcome {
	return Outcome{FallbackReason: err.Error()}
}

// runModel trains a model and predicts x, converting errors, non-finite
// predictions and panics into a fallback outcome.
func runModel(model Regressor, X [][]float64, y []float64, x []float64) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback(fmt.Errorf("%w: panic: %v", domain.ErrModelFailure, r))
		}
	}()

	if model == nil {
		return fallback(fmt.Errorf("%w: no model configured", domain.ErrModelFailure))
	}
	if err := model.Fit(X, y); err != nil {
		return fallback(fmt.Errorf("%w: fit: %v", domain.ErrModelFailure, err))
	}

	pred, err := model.Predict(x)
	if err != nil {
		return fallback(fmt.Errorf("%w: predict: %v", domain.ErrModelFailure, err))
	}
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return fallback(fmt.Errorf("%w: non-finite prediction %v", domain.ErrModelFailure, pred))
	}

	return Outcome{Value: pred}
}

func validateTrainingSet(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature rows (%d) and targets (%d) differ", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d has non-finite feature", i)
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("row %d has non-finite target", i)
		}
	}
	return nil
}
