package curator

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is a single node in a decision tree. Leaf nodes have nil children
// and carry either a mean target (regression) or class counts (classification).
// Fields are exported for gob serialization.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Value     float64
	Counts    []int
}

func (n *TreeNode) leaf() bool { return n.Left == nil && n.Right == nil }

// descend walks the tree for a sample and returns its leaf.
func (n *TreeNode) descend(x []float64) *TreeNode {
	node := n
	for !node.leaf() {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// ForestOpts controls forest training.
type ForestOpts struct {
	NumTrees    int
	MaxDepth    int
	MinSplit    int
	MaxFeatures int // features considered per split; 0 means sqrt(n) for classification, n/3 for regression
	Seed        int64
}

// DefaultForestOpts returns the small-dataset settings used by the trainer:
// 10 shallow trees with depth 3.
func DefaultForestOpts(seed int64) ForestOpts {
	return ForestOpts{NumTrees: 10, MaxDepth: 3, MinSplit: 2, Seed: seed}
}

// Forest is a random forest of CART trees. Classification forests vote over
// class counts; regression forests average leaf means.
type Forest struct {
	Trees      []*TreeNode
	NumClasses int // 0 for regression forests
}

// TrainRegressor fits a random forest regressor with variance-reduction splits.
func TrainRegressor(features [][]float64, targets []float64, opts ForestOpts) *Forest {
	rng := rand.New(rand.NewSource(opts.Seed))
	numFeatures := 0
	if len(features) > 0 {
		numFeatures = len(features[0])
	}
	perSplit := opts.MaxFeatures
	if perSplit <= 0 {
		perSplit = numFeatures / 3
		if perSplit < 1 {
			perSplit = 1
		}
	}

	f := &Forest{Trees: make([]*TreeNode, opts.NumTrees)}
	for i := range f.Trees {
		sample := bootstrap(len(features), rng)
		f.Trees[i] = growTree(features, targets, nil, 0, sample, opts, perSplit, rng, 0)
	}
	return f
}

// TrainClassifier fits a random forest classifier with Gini-impurity splits.
// labels are class indexes in [0, numClasses).
func TrainClassifier(features [][]float64, labels []int, numClasses int, opts ForestOpts) *Forest {
	rng := rand.New(rand.NewSource(opts.Seed))
	numFeatures := 0
	if len(features) > 0 {
		numFeatures = len(features[0])
	}
	perSplit := opts.MaxFeatures
	if perSplit <= 0 {
		perSplit = int(math.Sqrt(float64(numFeatures)))
		if perSplit < 1 {
			perSplit = 1
		}
	}

	f := &Forest{Trees: make([]*TreeNode, opts.NumTrees), NumClasses: numClasses}
	for i := range f.Trees {
		sample := bootstrap(len(features), rng)
		f.Trees[i] = growTree(features, nil, labels, 0, sample, opts, perSplit, rng, numClasses)
	}
	return f
}

// PredictValue returns the forest-averaged regression prediction for x.
func (f *Forest) PredictValue(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.descend(x).Value
	}
	return sum / float64(len(f.Trees))
}

// PredictClass returns the majority-vote class index for x.
func (f *Forest) PredictClass(x []float64) int {
	votes := make([]int, f.NumClasses)
	for _, t := range f.Trees {
		leaf := t.descend(x)
		best, bestCount := 0, -1
		for c, count := range leaf.Counts {
			if count > bestCount {
				best, bestCount = c, count
			}
		}
		votes[best]++
	}

	best, bestCount := 0, -1
	for c, count := range votes {
		if count > bestCount {
			best, bestCount = c, count
		}
	}
	return best
}

// bootstrap draws n sample indexes with replacement.
func bootstrap(n int, rng *rand.Rand) []int {
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}
	return sample
}

// growTree recursively builds a CART tree over the sampled rows. When labels
// is nil the tree is a regression tree over targets, otherwise a
// classification tree with numClasses classes.
func growTree(features [][]float64, targets []float64, labels []int, depth int, sample []int, opts ForestOpts, perSplit int, rng *rand.Rand, numClasses int) *TreeNode {
	if labels != nil {
		counts := classCounts(labels, sample, numClasses)
		if depth >= opts.MaxDepth || len(sample) < opts.MinSplit || pure(counts) {
			return &TreeNode{Counts: counts}
		}
	} else {
		if depth >= opts.MaxDepth || len(sample) < opts.MinSplit {
			return &TreeNode{Value: meanTarget(targets, sample)}
		}
	}

	feature, threshold, left, right, ok := bestSplit(features, targets, labels, sample, perSplit, rng, numClasses)
	if !ok {
		if labels != nil {
			return &TreeNode{Counts: classCounts(labels, sample, numClasses)}
		}
		return &TreeNode{Value: meanTarget(targets, sample)}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(features, targets, labels, depth+1, left, opts, perSplit, rng, numClasses),
		Right:     growTree(features, targets, labels, depth+1, right, opts, perSplit, rng, numClasses),
	}
}

// bestSplit scans a random feature subset for the split minimizing impurity.
func bestSplit(features [][]float64, targets []float64, labels []int, sample []int, perSplit int, rng *rand.Rand, numClasses int) (feature int, threshold float64, left, right []int, ok bool) {
	numFeatures := len(features[sample[0]])
	bestScore := math.Inf(1)

	for _, fi := range rng.Perm(numFeatures)[:min(perSplit, numFeatures)] {
		values := make([]float64, 0, len(sample))
		for _, si := range sample {
			values = append(values, features[si][fi])
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			t := (values[i] + values[i-1]) / 2

			var l, r []int
			for _, si := range sample {
				if features[si][fi] <= t {
					l = append(l, si)
				} else {
					r = append(r, si)
				}
			}
			if len(l) == 0 || len(r) == 0 {
				continue
			}

			var score float64
			if labels != nil {
				score = weightedGini(labels, l, r, numClasses)
			} else {
				score = weightedVariance(targets, l, r)
			}

			if score < bestScore {
				bestScore = score
				feature, threshold, left, right, ok = fi, t, l, r, true
			}
		}
	}

	return feature, threshold, left, right, ok
}

func classCounts(labels []int, sample []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, si := range sample {
		counts[labels[si]]++
	}
	return counts
}

func pure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func meanTarget(targets []float64, sample []int) float64 {
	if len(sample) == 0 {
		return 0
	}
	var sum float64
	for _, si := range sample {
		sum += targets[si]
	}
	return sum / float64(len(sample))
}

func gini(labels []int, sample []int, numClasses int) float64 {
	if len(sample) == 0 {
		return 0
	}
	counts := classCounts(labels, sample, numClasses)
	impurity := 1.0
	n := float64(len(sample))
	for _, c := range counts {
		p := float64(c) / n
		impurity -= p * p
	}
	return impurity
}

func weightedGini(labels []int, left, right []int, numClasses int) float64 {
	n := float64(len(left) + len(right))
	return float64(len(left))/n*gini(labels, left, numClasses) +
		float64(len(right))/n*gini(labels, right, numClasses)
}

func variance(targets []float64, sample []int) float64 {
	if len(sample) == 0 {
		return 0
	}
	mean := meanTarget(targets, sample)
	var sum float64
	for _, si := range sample {
		d := targets[si] - mean
		sum += d * d
	}
	return sum / float64(len(sample))
}

func weightedVariance(targets []float64, left, right []int) float64 {
	n := float64(len(left) + len(right))
	return float64(len(left))/n*variance(targets, left) +
		float64(len(right))/n*variance(targets, right)
}
