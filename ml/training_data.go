package ml

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSampleCount is the size of the synthetic training set.
const DefaultSampleCount = 1000

// TrainingSample is one synthetic labeled example.
type TrainingSample struct {
	Plan                         StudyPlan
	RecommendedTotalStudyMinutes int
}

// GenerateSyntheticData draws n labeled study plans from a source seeded with seed.
//
// Each column is drawn in full before the next one, so the same seed always yields the same
// dataset. The label saturates at 90% of the time the plan makes available and never drops
// below ten minutes per topic before noise is added.
func GenerateSyntheticData(n int, seed uint64) ([]TrainingSample, error) {
	if n <= 0 {
		return nil, errors.New("sample count must be positive")
	}

	src := rand.NewSource(seed)
	rng := rand.New(src)

	subjects := randInts(rng, n, 1, 5)
	hours := randInts(rng, n, 1, 8)
	topics := randInts(rng, n, 5, 50)
	days := randInts(rng, n, 1, 60)

	perTopic := draw(distuv.Uniform{Min: 25, Max: 45, Src: src}, n)
	perSubject := draw(distuv.Uniform{Min: 50, Max: 100, Src: src}, n)
	baseNoise := draw(distuv.Normal{Mu: 0, Sigma: 100, Src: src}, n)
	labelNoise := draw(distuv.Normal{Mu: 0, Sigma: 50, Src: src}, n)

	samples := make([]TrainingSample, n)
	for i := 0; i < n; i++ {
		plan := StudyPlan{
			NumSubjects: subjects[i],
			HoursPerDay: float64(hours[i]),
			NumTopics:   topics[i],
			NumDays:     days[i],
		}
		base := float64(plan.NumTopics)*perTopic[i] + float64(plan.NumSubjects)*perSubject[i] + baseNoise[i]
		target := math.Min(0.9*MaxPossibleMinutes(plan), math.Max(float64(plan.NumTopics)*10, base))
		minutes := math.RoundToEven(target + labelNoise[i])
		if minutes < 0 {
			minutes = 0
		}
		samples[i] = TrainingSample{Plan: plan, RecommendedTotalStudyMinutes: int(minutes)}
	}
	return samples, nil
}

// SamplesToDataset splits samples into feature rows and targets.
func SamplesToDataset(samples []TrainingSample) ([][]float64, []float64) {
	features := make([][]float64, len(samples))
	targets := make([]float64, len(samples))
	for i, sample := range samples {
		features[i] = FeatureVector(sample.Plan)
		targets[i] = float64(sample.RecommendedTotalStudyMinutes)
	}
	return features, targets
}

// randInts draws n integers uniformly from the closed range [lo, hi].
func randInts(rng *rand.Rand, n, lo, hi int) []int {
	values := make([]int, n)
	for i := range values {
		values[i] = lo + rng.Intn(hi-lo+1)
	}
	return values
}

func draw(dist distuv.Rander, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = dist.Rand()
	}
	return values
}
