package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDataset(t *testing.T) {
	features := make([][]float64, 100)
	targets := make([]float64, 100)
	for i := range features {
		features[i] = []float64{float64(i)}
		targets[i] = float64(i)
	}

	trainX, trainY, testX, testY := SplitDataset(features, targets, 0.2, 42)
	assert.Len(t, trainX, 80)
	assert.Len(t, trainY, 80)
	assert.Len(t, testX, 20)
	assert.Len(t, testY, 20)

	seen := map[float64]bool{}
	for _, row := range append(trainX, testX...) {
		assert.False(t, seen[row[0]], "row %v appears twice", row)
		seen[row[0]] = true
	}
	assert.Len(t, seen, 100)
	for i, row := range trainX {
		assert.Equal(t, row[0], trainY[i], "targets must follow their rows")
	}

	againX, _, _, _ := SplitDataset(features, targets, 0.2, 42)
	assert.Equal(t, trainX, againX)
}

func TestSplitDatasetFallsBackOnBadRatio(t *testing.T) {
	features := make([][]float64, 10)
	targets := make([]float64, 10)
	for i := range features {
		features[i] = []float64{float64(i)}
	}
	for _, ratio := range []float64{0, -1, 1, 3} {
		trainX, _, testX, _ := SplitDataset(features, targets, ratio, 1)
		assert.Len(t, trainX, 8, "ratio %v", ratio)
		assert.Len(t, testX, 2, "ratio %v", ratio)
	}
}
