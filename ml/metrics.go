package ml

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Evaluation holds held-out error figures. They are diagnostics, never a gate.
type Evaluation struct {
	MAE     float64 `json:"mae"`
	R2      float64 `json:"r2"`
	Samples int     `json:"samples"`
}

func MeanAbsoluteError(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	return floats.Distance(predicted, actual, 1) / float64(len(actual))
}

func RSquared(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

func Evaluate(model Regressor, features [][]float64, targets []float64) (Evaluation, error) {
	if len(features) == 0 {
		return Evaluation{}, errors.New("no evaluation samples")
	}
	if len(features) != len(targets) {
		return Evaluation{}, ErrSizeMismatch
	}
	predicted := make([]float64, len(features))
	for i, row := range features {
		value, err := model.Predict(row)
		if err != nil {
			return Evaluation{}, err
		}
		predicted[i] = value
	}
	return Evaluation{
		MAE:     MeanAbsoluteError(predicted, targets),
		R2:      RSquared(predicted, targets),
		Samples: len(targets),
	}, nil
}
