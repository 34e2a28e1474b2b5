package forecast

import (
	"testing"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelFactory(t *testing.T) {
	forest, err := NewModelFactory(ModelConfig{Name: "Forest", Trees: 10, Seed: 7})
	require.NoError(t, err)
	assert.IsType(t, &Forest{}, forest())

	byDefault, err := NewModelFactory(ModelConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Forest{}, byDefault())

	linear, err := NewModelFactory(ModelConfig{Name: ModelLinear})
	require.NoError(t, err)
	assert.IsType(t, &Linear{}, linear())

	_, err = NewModelFactory(ModelConfig{Name: "xgboost"})
	assert.Error(t, err)
}

func TestRunModelNilModel(t *testing.T) {
	out := runModel(nil, [][]float64{{1}}, []float64{1}, []float64{1})
	assert.False(t, out.OK())
	assert.Contains(t, out.FallbackReason, domain.ErrModelFailure.Error())
}

func TestForestConstantTarget(t *testing.T) {
	X := [][]float64{{1, 0}, {2, 0}, {3, 1}, {4, 1}, {5, 2}, {6, 2}}
	y := []float64{10, 10, 10, 10, 10, 10}

	forest := NewForest(20, 1)
	require.NoError(t, forest.Fit(X, y))

	pred, err := forest.Predict([]float64{7, 3})
	require.NoError(t, err)
	assert.Equal(t, 10.0, pred)
}

func TestForestLearnsStep(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 1; i <= 10; i++ {
		X = append(X, []float64{float64(i)})
		if i <= 5 {
			y = append(y, 0)
		} else {
			y = append(y, 100)
		}
	}

	forest := NewForest(0, 0)
	require.NoError(t, forest.Fit(X, y))

	low, err := forest.Predict([]float64{1})
	require.NoError(t, err)
	high, err := forest.Predict([]float64{10})
	require.NoError(t, err)

	assert.Less(t, low, 50.0)
	assert.Greater(t, high, 50.0)
}

func TestForestSameSeedSameModel(t *testing.T) {
	X := [][]float64{{1, 0, 3, 2}, {2, 0, 4, 3}, {3, 0, 2, 4}, {4, 0, 6, 2}, {5, 1, 5, 6}, {6, 1, 7, 5}, {7, 1, 3, 7}}
	y := []float64{4, 2, 6, 5, 7, 3, 8}

	a, b := NewForest(15, 99), NewForest(15, 99)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	x := []float64{8, 1, 8, 3}
	pa, err := a.Predict(x)
	require.NoError(t, err)
	pb, err := b.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestForestErrors(t *testing.T) {
	forest := NewForest(5, 1)

	_, err := forest.Predict([]float64{1})
	assert.Error(t, err, "untrained")

	assert.Error(t, forest.Fit(nil, nil))
	assert.Error(t, forest.Fit([][]float64{{1}, {2}}, []float64{1}))
	assert.Error(t, forest.Fit([][]float64{{1}, {2, 3}}, []float64{1, 2}))

	require.NoError(t, forest.Fit([][]float64{{1}, {2}}, []float64{1, 2}))
	_, err = forest.Predict([]float64{1, 2})
	assert.Error(t, err, "width mismatch")
}

func TestLinearRecoversCoefficients(t *testing.T) {
	X := [][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 1, 0, 0},
		{0, 1, 1, 0},
		{1, 0, 1, 1},
		{2, 1, 0, 3},
	}
	f := func(x []float64) float64 { return 1 + 2*x[0] - x[1] + 0.5*x[2] + 3*x[3] }
	y := make([]float64, len(X))
	for i, row := range X {
		y[i] = f(row)
	}

	model := NewLinear()
	require.NoError(t, model.Fit(X, y))

	pred, err := model.Predict([]float64{1, 1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 5.5, pred, 1e-9)
}

func TestLinearRejectsDegenerateInput(t *testing.T) {
	model := NewLinear()

	assert.Error(t, model.Fit([][]float64{{1, 2}}, []float64{1}), "too few rows")

	zeros := [][]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}}
	assert.Error(t, model.Fit(zeros, []float64{1, 2, 3, 4}), "singular")

	_, err := model.Predict([]float64{1, 2})
	assert.Error(t, err, "untrained")
}
