package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplan/ml"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.Record(ctx, TrainingLog{
			ModelType:  ml.ModelTypeRandomForest,
			ModelPath:  "model/study_schedule_model.json",
			Estimators: 100,
			Samples:    1000,
			Seed:       uint64(40 + i),
			MAE:        float64(i),
			R2:         0.9,
			TrainedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	logs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, uint64(42), logs[0].Seed, "newest run first")
	assert.Equal(t, uint64(41), logs[1].Seed)
	assert.True(t, logs[0].TrainedAt.Equal(base.Add(2*time.Hour)))
}

func TestFromReport(t *testing.T) {
	report := ml.TrainingReport{
		ModelType:   ml.ModelTypeRandomForest,
		ModelPath:   "m.json",
		Samples:     1000,
		TrainSize:   800,
		TestSize:    200,
		NEstimators: 100,
		Seed:        42,
		Evaluation:  ml.Evaluation{MAE: 81.5, R2: 0.93},
		Duration:    1500 * time.Millisecond,
	}
	entry := FromReport(report)
	assert.Equal(t, int64(1500), entry.DurationMS)
	assert.Equal(t, 81.5, entry.MAE)
	assert.Equal(t, 800, entry.TrainSize)

	store := openTestStore(t)
	id, err := store.Record(context.Background(), entry)
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
