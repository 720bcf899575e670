// Package db keeps the history of offline training runs in SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"studyplan/ml"
)

const schema = `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_type VARCHAR(50),
        model_path TEXT,
        estimators INTEGER,
        samples INTEGER,
        train_size INTEGER,
        test_size INTEGER,
        seed INTEGER,
        mae REAL,
        r2 REAL,
        duration_ms INTEGER,
        trained_at DATETIME
    );
    CREATE INDEX IF NOT EXISTS idx_training_log_trained_at ON training_log(trained_at);
`

type TrainingLog struct {
	ID         int64     `json:"id"`
	ModelType  string    `json:"model_type"`
	ModelPath  string    `json:"model_path"`
	Estimators int       `json:"estimators"`
	Samples    int       `json:"samples"`
	TrainSize  int       `json:"train_size"`
	TestSize   int       `json:"test_size"`
	Seed       uint64    `json:"seed"`
	MAE        float64   `json:"mae"`
	R2         float64   `json:"r2"`
	DurationMS int64     `json:"duration_ms"`
	TrainedAt  time.Time `json:"trained_at"`
}

// FromReport maps a finished training run onto a history row.
func FromReport(report ml.TrainingReport) TrainingLog {
	return TrainingLog{
		ModelType:  report.ModelType,
		ModelPath:  report.ModelPath,
		Estimators: report.NEstimators,
		Samples:    report.Samples,
		TrainSize:  report.TrainSize,
		TestSize:   report.TestSize,
		Seed:       report.Seed,
		MAE:        report.Evaluation.MAE,
		R2:         report.Evaluation.R2,
		DurationMS: report.Duration.Milliseconds(),
		TrainedAt:  report.TrainedAt,
	}
}

// Store is the training history database.
type Store struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	database.SetMaxOpenConns(1)
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, entry TrainingLog) (int64, error) {
	if entry.TrainedAt.IsZero() {
		entry.TrainedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO training_log
            (model_type, model_path, estimators, samples, train_size, test_size, seed, mae, r2, duration_ms, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ModelType, entry.ModelPath, entry.Estimators, entry.Samples, entry.TrainSize, entry.TestSize,
		int64(entry.Seed), entry.MAE, entry.R2, entry.DurationMS, entry.TrainedAt)
	if err != nil {
		return 0, fmt.Errorf("insert training log: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]TrainingLog, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, model_type, model_path, estimators, samples, train_size, test_size, seed, mae, r2, duration_ms, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		var seed int64
		if err := rows.Scan(&log.ID, &log.ModelType, &log.ModelPath, &log.Estimators, &log.Samples, &log.TrainSize,
			&log.TestSize, &seed, &log.MAE, &log.R2, &log.DurationMS, &log.TrainedAt); err != nil {
			return nil, err
		}
		log.Seed = uint64(seed)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
