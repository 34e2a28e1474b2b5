package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear is an ordinary least squares model with an intercept term.
type Linear struct {
	coef *mat.VecDense
}

// NewLinear creates an untrained linear model.
func NewLinear() *Linear {
	return &Linear{}
}

// Fit solves the least squares problem for X and y. A rank-deficient or
// ill-conditioned design matrix is reported as an error.
func (l *Linear) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	rows, cols := len(X), len(X[0])+1
	if rows < cols {
		return fmt.Errorf("need at least %d rows, got %d", cols, rows)
	}

	design := mat.NewDense(rows, cols, nil)
	for i, row := range X {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, mat.NewVecDense(rows, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("least squares: %w", err)
	}

	l.coef = &coef
	return nil
}

// Predict evaluates the fitted model at x.
func (l *Linear) Predict(x []float64) (float64, error) {
	if l.coef == nil {
		return 0, fmt.Errorf("linear model is not trained")
	}
	if len(x)+1 != l.coef.Len() {
		return 0, fmt.Errorf("got %d features, want %d", len(x), l.coef.Len()-1)
	}

	pred := l.coef.AtVec(0)
	for j, v := range x {
		pred += l.coef.AtVec(j+1) * v
	}
	return pred, nil
}
