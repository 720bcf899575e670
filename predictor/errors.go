package predictor

import (
	"fmt"
	"strings"
)

// MissingInputError reports request fields that were absent or null.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	return "missing input values: " + strings.Join(e.Fields, ", ")
}

// ModelLoadError reports an artifact that could not be read or decoded.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// PredictionError reports a failure inside the estimator for a validated request.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
