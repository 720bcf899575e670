package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TrainingConfig drives one offline training run.
type TrainingConfig struct {
	Samples     int
	Seed        uint64
	SplitSeed   uint64
	TestRatio   float64
	NEstimators int
	Params      TreeParams
	Workers     int
	ModelPath   string
}

func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Samples:     DefaultSampleCount,
		Seed:        DefaultSeed,
		SplitSeed:   DefaultSeed,
		TestRatio:   DefaultTestRatio,
		NEstimators: DefaultEstimators,
		ModelPath:   "model/study_schedule_model.json",
	}
}

// TrainingReport summarizes a finished run.
type TrainingReport struct {
	ModelType   string        `json:"model_type"`
	ModelPath   string        `json:"model_path"`
	Samples     int           `json:"samples"`
	TrainSize   int           `json:"train_size"`
	TestSize    int           `json:"test_size"`
	NEstimators int           `json:"n_estimators"`
	Seed        uint64        `json:"seed"`
	Evaluation  Evaluation    `json:"evaluation"`
	Duration    time.Duration `json:"duration"`
	TrainedAt   time.Time     `json:"trained_at"`
}

// TrainStudyModel generates the synthetic dataset, fits a forest on the training split,
// evaluates it on the held-out split and writes the artifact to cfg.ModelPath.
// A failure to write the artifact fails the run.
func TrainStudyModel(ctx context.Context, cfg TrainingConfig, logger *zap.Logger) (*RandomForest, TrainingReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ModelPath == "" {
		return nil, TrainingReport{}, errors.New("model path is required")
	}
	start := time.Now()

	samples, err := GenerateSyntheticData(cfg.Samples, cfg.Seed)
	if err != nil {
		return nil, TrainingReport{}, fmt.Errorf("generate data: %w", err)
	}
	logger.Info("generated synthetic training data", zap.Int("samples", len(samples)), zap.Uint64("seed", cfg.Seed))

	features, targets := SamplesToDataset(samples)
	trainX, trainY, testX, testY := SplitDataset(features, targets, cfg.TestRatio, cfg.SplitSeed)
	logger.Info("split dataset", zap.Int("train", len(trainX)), zap.Int("test", len(testX)))

	model := NewRandomForest(cfg.NEstimators, cfg.Seed, cfg.Params)
	model.Workers = cfg.Workers
	if err := model.Train(ctx, trainX, trainY); err != nil {
		return nil, TrainingReport{}, fmt.Errorf("train model: %w", err)
	}

	var evaluation Evaluation
	if len(testX) > 0 {
		evaluation, err = Evaluate(model, testX, testY)
		if err != nil {
			return nil, TrainingReport{}, fmt.Errorf("evaluate model: %w", err)
		}
	}
	logger.Info("model evaluated", zap.Float64("mae", evaluation.MAE), zap.Float64("r2", evaluation.R2))

	if err := model.Save(cfg.ModelPath); err != nil {
		return nil, TrainingReport{}, fmt.Errorf("save model: %w", err)
	}

	report := TrainingReport{
		ModelType:   ModelTypeRandomForest,
		ModelPath:   cfg.ModelPath,
		Samples:     len(samples),
		TrainSize:   len(trainX),
		TestSize:    len(testX),
		NEstimators: model.NEstimators,
		Seed:        cfg.Seed,
		Evaluation:  evaluation,
		Duration:    time.Since(start),
		TrainedAt:   time.Now().UTC(),
	}
	return model, report, nil
}
