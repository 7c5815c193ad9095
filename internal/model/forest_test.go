package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableData builds rows where feature 0 fully determines the label.
func separableData() (x [][]float64, y []bool) {
	for i := 0; i < 40; i++ {
		code := float64(i % 4)
		x = append(x, []float64{code, float64(i % 3)})
		y = append(y, code >= 2)
	}
	return x, y
}

func TestGrowForestLearnsSeparablePattern(t *testing.T) {
	x, y := separableData()
	f := growForest(x, y, 2, forestConfig{Trees: 50, Seed: 42})

	assert.Greater(t, f.predictProb([]float64{3, 0}), 0.5)
	assert.Less(t, f.predictProb([]float64{0, 0}), 0.5)
}

func TestGrowForestDeterministic(t *testing.T) {
	x, y := separableData()

	a := growForest(x, y, 2, forestConfig{Trees: 30, Seed: 42})
	b := growForest(x, y, 2, forestConfig{Trees: 30, Seed: 42})

	probe := []float64{1, 2}
	assert.Equal(t, a.predictProb(probe), b.predictProb(probe))
	assert.Equal(t, a.importances, b.importances)
}

func TestGrowForestSeedChangesModel(t *testing.T) {
	x, y := separableData()

	a := growForest(x, y, 2, forestConfig{Trees: 5, Seed: 1})
	b := growForest(x, y, 2, forestConfig{Trees: 5, Seed: 99})

	// Different seeds draw different bootstrap samples; importances are
	// accumulated over different splits
	assert.NotEqual(t, a.importances, b.importances)
}

func TestGrowForestImportancesNormalized(t *testing.T) {
	x, y := separableData()
	f := growForest(x, y, 2, forestConfig{Trees: 20, Seed: 42})

	require.Len(t, f.importances, 2)
	sum := 0.0
	for _, v := range f.importances {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Feature 0 carries all the signal
	assert.Greater(t, f.importances[0], f.importances[1])
}

func TestGrowForestMaxDepth(t *testing.T) {
	x, y := separableData()
	f := growForest(x, y, 2, forestConfig{Trees: 10, MaxDepth: 1, Seed: 42})

	// Depth-limited trees still produce probabilities in range
	p := f.predictProb([]float64{3, 0})
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestGrowForestUniformLabels(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []bool{false, false, false, false}

	f := growForest(x, y, 1, forestConfig{Trees: 10, Seed: 42})
	assert.Equal(t, 0.0, f.predictProb([]float64{2}))
}
