package ml

import (
	"math"

	"golang.org/x/exp/rand"
)

// DefaultTestRatio is the share of samples held out for evaluation.
const DefaultTestRatio = 0.2

// SplitDataset shuffles the rows with a seeded permutation and holds out testRatio of them.
// Ratios outside (0, 1) fall back to DefaultTestRatio.
func SplitDataset(features [][]float64, targets []float64, testRatio float64, seed uint64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = DefaultTestRatio
	}
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, targets[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, targets[idx])
		}
	}
	return trainX, trainY, testX, testY
}
