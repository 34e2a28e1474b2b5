package forecast

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultForestTrees = 50
	defaultForestSeed  = 42
)

// Forest is a bagged ensemble of regression trees. Each tree is grown on a
// bootstrap sample with variance-reduction splits over every feature. The
// random source is seeded, so identical input always yields the same model.
type Forest struct {
	trees   int
	seed    int64
	minLeaf int
	width   int
	roots   []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) leaf() bool {
	return n.left == nil
}

// NewForest creates an untrained forest. Non-positive arguments use the defaults.
func NewForest(trees int, seed int64) *Forest {
	if trees <= 0 {
		trees = defaultForestTrees
	}
	if seed == 0 {
		seed = defaultForestSeed
	}
	return &Forest{trees: trees, seed: seed, minLeaf: 1}
}

// Fit grows the ensemble on X and y.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(f.seed))
	f.width = len(X[0])
	f.roots = make([]*treeNode, 0, f.trees)

	n := len(y)
	for t := 0; t < f.trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.roots = append(f.roots, f.grow(X, y, sample))
	}

	return nil
}

// Predict averages the per-tree predictions for x.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(f.roots) == 0 {
		return 0, fmt.Errorf("forest is not trained")
	}
	if len(x) != f.width {
		return 0, fmt.Errorf("got %d features, want %d", len(x), f.width)
	}

	preds := make([]float64, len(f.roots))
	for i, root := range f.roots {
		node := root
		for !node.leaf() {
			if x[node.feature] <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		preds[i] = node.value
	}

	return stat.Mean(preds, nil), nil
}

func (f *Forest) grow(X [][]float64, y []float64, idx []int) *treeNode {
	targets := make([]float64, len(idx))
	for i, j := range idx {
		targets[i] = y[j]
	}
	node := &treeNode{value: stat.Mean(targets, nil)}

	if len(idx) < 2*f.minLeaf || sumSquaredError(targets) == 0 {
		return node
	}

	feature, threshold, ok := f.bestSplit(X, y, idx)
	if !ok {
		return node
	}

	var left, right []int
	for _, j := range idx {
		if X[j][feature] <= threshold {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}

	node.feature = feature
	node.threshold = threshold
	node.left = f.grow(X, y, left)
	node.right = f.grow(X, y, right)
	return node
}

// bestSplit finds the feature and threshold that minimize the summed squared
// error of both children.
func (f *Forest) bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	bestCost := 0.0

	order := make([]int, n)
	for feat := 0; feat < f.width; feat++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool {
			return X[order[a]][feat] < X[order[b]][feat]
		})

		sorted := make([]float64, n)
		for i, j := range order {
			sorted[i] = y[j]
		}
		total := floats.Sum(sorted)
		totalSq := floats.Dot(sorted, sorted)

		var leftSum, leftSq float64
		for i := 1; i < n; i++ {
			leftSum += sorted[i-1]
			leftSq += sorted[i-1] * sorted[i-1]

			lo, hi := X[order[i-1]][feat], X[order[i]][feat]
			if lo == hi || i < f.minLeaf || n-i < f.minLeaf {
				continue
			}

			rightSum, rightSq := total-leftSum, totalSq-leftSq
			cost := (leftSq - leftSum*leftSum/float64(i)) +
				(rightSq - rightSum*rightSum/float64(n-i))

			if !ok || cost < bestCost {
				bestCost = cost
				feature = feat
				threshold = (lo + hi) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

func sumSquaredError(values []float64) float64 {
	mean := stat.Mean(values, nil)
	var sse float64
	for _, v := range values {
		d := v - mean
		sse += d * d
	}
	return sse
}
