package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyplan/db"
	"studyplan/ml"
)

type constantModel float64

func (c constantModel) Predict([]float64) (float64, error) { return float64(c), nil }

func TestPrintExample(t *testing.T) {
	var buf bytes.Buffer
	err := printExample(&buf, constantModel(1234.4), ml.StudyPlan{NumSubjects: 3, HoursPerDay: 4, NumTopics: 25, NumDays: 30})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Recommended Total Study Minutes: 1,234 minutes")
	assert.Contains(t, out, "approximately 20.57 hours over 30 days")
	assert.Contains(t, out, "Average daily study minutes: 41.13 minutes")
	assert.Contains(t, out, "Average time per topic: 49.36 minutes")
}

func TestPrintExampleZeroTopicsAndDays(t *testing.T) {
	var buf bytes.Buffer
	err := printExample(&buf, constantModel(-10), ml.StudyPlan{NumSubjects: 1, HoursPerDay: 1})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Recommended Total Study Minutes: 0 minutes")
	assert.Contains(t, out, "Average daily study minutes: 0.00 minutes")
	assert.Contains(t, out, "Average time per topic: 0.00 minutes")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, ml.TrainingReport{
		ModelType:   ml.ModelTypeRandomForest,
		ModelPath:   "model/study_schedule_model.json",
		Samples:     1000,
		TrainSize:   800,
		TestSize:    200,
		NEstimators: 100,
		Seed:        42,
		Evaluation:  ml.Evaluation{MAE: 61.234, R2: 0.8765},
		Duration:    1500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "Generated 1,000 training samples")
	assert.Contains(t, out, "Mean Absolute Error (MAE): 61.23 minutes")
	assert.Contains(t, out, "R-squared (R2) Score: 0.88")
	assert.Contains(t, out, "Model saved to model/study_schedule_model.json")
}

func TestRecordRunAndHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	report := ml.TrainingReport{
		ModelType:   ml.ModelTypeRandomForest,
		ModelPath:   "model.json",
		Samples:     1000,
		NEstimators: 100,
		Seed:        42,
		Evaluation:  ml.Evaluation{MAE: 50, R2: 0.9},
		TrainedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	recordRun(context.Background(), path, report, zap.NewNop())

	store, err := db.Open(path)
	require.NoError(t, err)
	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)

	var buf bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &buf, path, 5))
	assert.Contains(t, buf.String(), "2026-01-02 03:04:05")
	assert.Contains(t, buf.String(), "trees=100 samples=1,000 seed=42")
}

func TestPrintHistoryRequiresDatabase(t *testing.T) {
	assert.Error(t, printHistory(context.Background(), &bytes.Buffer{}, "", 5))
}
