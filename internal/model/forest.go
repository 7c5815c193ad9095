package model

import (
	"math"
	"math/rand"
)

// forestConfig sets the forest geometry. Seed fixes every random choice
// (bootstrap samples, feature subsets) so training is reproducible.
type forestConfig struct {
	Trees    int
	MaxDepth int // 0 means unlimited
	Seed     int64
}

// treeNode is one node of a decision tree. Leaves carry the denied
// fraction of their training samples.
type treeNode struct {
	leaf      bool
	prob      float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// forest is an ensemble of gini-split decision trees over encoded
// categorical features.
type forest struct {
	trees       []*treeNode
	importances []float64
}

// growForest fits the ensemble. x is row-major encoded features, y the
// denial labels. Per-tree RNGs derive from the master seed so the result
// is byte-stable for identical input.
func growForest(x [][]float64, y []bool, numFeatures int, cfg forestConfig) *forest {
	f := &forest{
		trees:       make([]*treeNode, 0, cfg.Trees),
		importances: make([]float64, numFeatures),
	}

	for t := 0; t < cfg.Trees; t++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(t)*1000003))

		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.Intn(len(x))
		}

		g := &grower{
			x: x, y: y,
			numFeatures: numFeatures,
			maxDepth:    cfg.MaxDepth,
			mtry:        featureSubsetSize(numFeatures),
			rng:         rng,
			importances: f.importances,
		}
		f.trees = append(f.trees, g.grow(sample, 0))
	}

	normalize(f.importances)
	return f
}

// predictProb averages the per-tree leaf probabilities for one encoded row.
func (f *forest) predictProb(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.walk(row)
	}
	return sum / float64(len(f.trees))
}

func (n *treeNode) walk(row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

// grower carries the shared state of one tree's recursive construction.
type grower struct {
	x           [][]float64
	y           []bool
	numFeatures int
	maxDepth    int
	mtry        int
	rng         *rand.Rand
	importances []float64
}

func (g *grower) grow(indices []int, depth int) *treeNode {
	positives := 0
	for _, i := range indices {
		if g.y[i] {
			positives++
		}
	}
	prob := float64(positives) / float64(len(indices))

	if positives == 0 || positives == len(indices) || len(indices) < 2 ||
		(g.maxDepth > 0 && depth >= g.maxDepth) {
		return &treeNode{leaf: true, prob: prob}
	}

	feature, threshold, gain := g.bestSplit(indices, prob)
	if gain <= 0 {
		return &treeNode{leaf: true, prob: prob}
	}

	// Importance is the impurity decrease weighted by the samples reaching
	// the node, accumulated across all trees and normalized at the end.
	g.importances[feature] += gain * float64(len(indices))

	var left, right []int
	for _, i := range indices {
		if g.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      g.grow(left, depth+1),
		right:     g.grow(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the threshold with the
// largest gini gain over the node's samples.
func (g *grower) bestSplit(indices []int, nodeProb float64) (int, float64, float64) {
	parentGini := gini(nodeProb)

	bestFeature, bestGain := -1, 0.0
	bestThreshold := 0.0

	for _, feature := range g.rng.Perm(g.numFeatures)[:g.mtry] {
		for _, threshold := range g.thresholds(indices, feature) {
			var leftN, leftPos, rightN, rightPos int
			for _, i := range indices {
				if g.x[i][feature] <= threshold {
					leftN++
					if g.y[i] {
						leftPos++
					}
				} else {
					rightN++
					if g.y[i] {
						rightPos++
					}
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}

			n := float64(len(indices))
			weighted := float64(leftN)/n*gini(float64(leftPos)/float64(leftN)) +
				float64(rightN)/n*gini(float64(rightPos)/float64(rightN))
			gain := parentGini - weighted

			if gain > bestGain {
				bestFeature, bestThreshold, bestGain = feature, threshold, gain
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// thresholds returns candidate cut points: midpoints between consecutive
// distinct values of the feature over the node's samples.
func (g *grower) thresholds(indices []int, feature int) []float64 {
	seen := make(map[float64]bool)
	var values []float64
	for _, i := range indices {
		v := g.x[i][feature]
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return nil
	}

	// Insertion sort keeps the hot path allocation-free for the small
	// cardinalities typical of encoded categorical features.
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}

	cuts := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		cuts = append(cuts, (values[i-1]+values[i])/2)
	}
	return cuts
}

// gini computes binary gini impurity for a positive fraction.
func gini(p float64) float64 {
	return 1 - p*p - (1-p)*(1-p)
}

// featureSubsetSize is the square-root heuristic for candidate features
// per split.
func featureSubsetSize(numFeatures int) int {
	m := int(math.Sqrt(float64(numFeatures)))
	if m < 1 {
		return 1
	}
	return m
}

func normalize(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
