package ml

import (
	"math"
	"testing"
)

type constantModel float64

func (c constantModel) Predict([]float64) (float64, error) { return float64(c), nil }

func TestMeanAbsoluteError(t *testing.T) {
	got := MeanAbsoluteError([]float64{1, 2, 3}, []float64{2, 2, 5})
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected MAE 1, got %f", got)
	}
	if MeanAbsoluteError(nil, nil) != 0 {
		t.Fatal("expected 0 for empty input")
	}
}

func TestRSquared(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	if got := RSquared(actual, actual); math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected perfect R2, got %f", got)
	}
	// Predicting the mean scores zero.
	if got := RSquared([]float64{2.5, 2.5, 2.5, 2.5}, actual); math.Abs(got) > 1e-12 {
		t.Fatalf("expected R2 0, got %f", got)
	}
}

func TestEvaluate(t *testing.T) {
	features := [][]float64{{1}, {2}, {3}, {4}}
	targets := []float64{1, 2, 3, 4}
	evaluation, err := Evaluate(constantModel(2.5), features, targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluation.Samples != 4 {
		t.Fatalf("expected 4 samples, got %d", evaluation.Samples)
	}
	if math.Abs(evaluation.MAE-1) > 1e-12 {
		t.Fatalf("expected MAE 1, got %f", evaluation.MAE)
	}
	if _, err := Evaluate(constantModel(0), nil, nil); err == nil {
		t.Fatal("expected error for empty evaluation set")
	}
}
