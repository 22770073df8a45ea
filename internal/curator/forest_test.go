package curator

import "testing"

// separable two-class dataset: class 1 when the first feature is high.
func classificationFixture() ([][]float64, []int) {
	features := [][]float64{
		{0.1, 0.9}, {0.2, 0.8}, {0.15, 0.7}, {0.05, 0.95}, {0.25, 0.6},
		{0.9, 0.1}, {0.8, 0.2}, {0.85, 0.3}, {0.95, 0.05}, {0.75, 0.4},
	}
	labels := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	return features, labels
}

func TestTrainClassifier(t *testing.T) {
	features, labels := classificationFixture()

	forest := TrainClassifier(features, labels, 2, DefaultForestOpts(42))

	if len(forest.Trees) != 10 {
		t.Fatalf("expected 10 trees, got %d", len(forest.Trees))
	}

	for i, x := range features {
		if got := forest.PredictClass(x); got != labels[i] {
			t.Errorf("sample %d: expected class %d, got %d", i, labels[i], got)
		}
	}
}

func TestTrainRegressor(t *testing.T) {
	// target tracks the first feature
	features := [][]float64{
		{0.0, 1.0}, {0.1, 0.9}, {0.2, 0.8}, {0.3, 0.7}, {0.4, 0.6},
		{0.6, 0.4}, {0.7, 0.3}, {0.8, 0.2}, {0.9, 0.1}, {1.0, 0.0},
	}
	targets := make([]float64, len(features))
	for i, x := range features {
		targets[i] = x[0]
	}

	forest := TrainRegressor(features, targets, DefaultForestOpts(42))

	low := forest.PredictValue([]float64{0.05, 0.95})
	high := forest.PredictValue([]float64{0.95, 0.05})
	if low >= high {
		t.Errorf("expected low-feature prediction %f below high-feature prediction %f", low, high)
	}
	if high < 0.5 {
		t.Errorf("expected high-end prediction above 0.5, got %f", high)
	}
	if low > 0.5 {
		t.Errorf("expected low-end prediction below 0.5, got %f", low)
	}
}

func TestForestDeterminism(t *testing.T) {
	features, labels := classificationFixture()

	a := TrainClassifier(features, labels, 2, DefaultForestOpts(42))
	b := TrainClassifier(features, labels, 2, DefaultForestOpts(42))

	for i, x := range features {
		if a.PredictClass(x) != b.PredictClass(x) {
			t.Errorf("sample %d: same seed produced different predictions", i)
		}
	}
}

func TestForestDepthLimit(t *testing.T) {
	features, labels := classificationFixture()

	opts := DefaultForestOpts(42)
	opts.MaxDepth = 1
	forest := TrainClassifier(features, labels, 2, opts)

	var depth func(n *TreeNode) int
	depth = func(n *TreeNode) int {
		if n == nil || n.leaf() {
			return 0
		}
		l, r := depth(n.Left), depth(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}

	for i, tree := range forest.Trees {
		if d := depth(tree); d > 1 {
			t.Errorf("tree %d: expected depth <= 1, got %d", i, d)
		}
	}
}
