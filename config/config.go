// Package config loads the YAML configuration shared by the server and the trainer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"studyplan/logging"
	"studyplan/ml"
)

// EnvPath names the environment variable that selects the config file.
const EnvPath = "STUDYPLAN_CONFIG"

const defaultPath = "config.yaml"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      logging.Config `yaml:"log"`
	ML       MLConfig       `yaml:"ml"`
	Training TrainingConfig `yaml:"training"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type MLConfig struct {
	ModelType string `yaml:"model_type"`
	ModelPath string `yaml:"model_path"`
	// LazyLoad defers reading the artifact to the first request instead of failing at startup.
	LazyLoad        bool `yaml:"lazy_load"`
	AveragePerTopic bool `yaml:"average_per_topic"`
	CacheSize       int  `yaml:"cache_size"`
}

type TrainingConfig struct {
	Samples         int     `yaml:"samples"`
	Seed            uint64  `yaml:"seed"`
	SplitSeed       uint64  `yaml:"split_seed"`
	TestRatio       float64 `yaml:"test_ratio"`
	NEstimators     int     `yaml:"n_estimators"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	MinSamplesLeaf  int     `yaml:"min_samples_leaf"`
	Workers         int     `yaml:"workers"`
	HistoryDB       string  `yaml:"history_db"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:           5000,
			AllowedOrigins: []string{"*"},
			Timeout:        30 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Log: logging.Config{
			Level: "info",
		},
		ML: MLConfig{
			ModelType:       ml.ModelTypeRandomForest,
			ModelPath:       "model/study_schedule_model.json",
			AveragePerTopic: true,
			CacheSize:       1024,
		},
		Training: TrainingConfig{
			Samples:         ml.DefaultSampleCount,
			Seed:            ml.DefaultSeed,
			SplitSeed:       ml.DefaultSeed,
			TestRatio:       ml.DefaultTestRatio,
			NEstimators:     ml.DefaultEstimators,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			HistoryDB:       "data/training_history.db",
		},
	}
}

// ResolvePath picks the config file: explicit path, then $STUDYPLAN_CONFIG, then config.yaml
// in the working directory or its parent.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	// Look for config in root even if run from cmd/
	if _, err := os.Stat(defaultPath); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat(filepath.Join("..", defaultPath)); err == nil {
			return filepath.Join("..", defaultPath)
		}
	}
	return defaultPath
}

// Load reads path over the defaults. Keys missing from the file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	if c.ML.CacheSize < 0 {
		return errors.New("ml.cache_size must not be negative")
	}
	if c.Training.Samples <= 0 {
		return errors.New("training.samples must be positive")
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("training.test_ratio %v must be in (0, 1)", c.Training.TestRatio)
	}
	return nil
}

// TrainingRun converts the training section into the trainer's run configuration.
func (c *Config) TrainingRun() ml.TrainingConfig {
	t := c.Training
	return ml.TrainingConfig{
		Samples:     t.Samples,
		Seed:        t.Seed,
		SplitSeed:   t.SplitSeed,
		TestRatio:   t.TestRatio,
		NEstimators: t.NEstimators,
		Params: ml.TreeParams{
			MaxDepth:        t.MaxDepth,
			MinSamplesSplit: t.MinSamplesSplit,
			MinSamplesLeaf:  t.MinSamplesLeaf,
		},
		Workers:   t.Workers,
		ModelPath: c.ML.ModelPath,
	}
}
