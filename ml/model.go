package ml

import "context"

// Regressor maps one feature row to a scalar estimate.
// Implementations must be safe for concurrent Predict calls once trained.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

type MLModel interface {
	Regressor
	Train(ctx context.Context, features [][]float64, targets []float64) error
	Save(path string) error
	Load(path string) error
}
