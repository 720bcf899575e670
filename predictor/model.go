package predictor

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"studyplan/ml"
	"studyplan/monitoring"
)

// ModelHandle hands out the estimator used for a request.
type ModelHandle interface {
	Model(ctx context.Context) (ml.Regressor, error)
}

// StaticModel wraps an estimator that was loaded before serving began.
type StaticModel struct {
	regressor ml.Regressor
}

func NewStaticModel(regressor ml.Regressor) *StaticModel {
	return &StaticModel{regressor: regressor}
}

func (m *StaticModel) Model(context.Context) (ml.Regressor, error) {
	return m.regressor, nil
}

// LoadStaticModel reads the artifact once. The caller treats an error as fatal.
func LoadStaticModel(modelType, path string, metrics *monitoring.Metrics) (*StaticModel, error) {
	regressor, err := ml.LoadModel(modelType, path)
	metrics.ObserveModelLoad(err)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	return NewStaticModel(regressor), nil
}

// LazyModel reads the artifact on first use. A failed load is returned to the request that
// triggered it and attempted again by the next request; a successful load is kept for the
// life of the process.
type LazyModel struct {
	modelType string
	path      string
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	load      func(modelType, path string) (ml.MLModel, error)

	mu     sync.Mutex
	loaded atomic.Pointer[loadedModel]
}

type loadedModel struct {
	regressor ml.Regressor
}

func NewLazyModel(modelType, path string, logger *zap.Logger, metrics *monitoring.Metrics) *LazyModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LazyModel{
		modelType: modelType,
		path:      path,
		logger:    logger,
		metrics:   metrics,
		load:      ml.LoadModel,
	}
}

func (m *LazyModel) Model(context.Context) (ml.Regressor, error) {
	if loaded := m.loaded.Load(); loaded != nil {
		return loaded.regressor, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if loaded := m.loaded.Load(); loaded != nil {
		return loaded.regressor, nil
	}
	model, err := m.load(m.modelType, m.path)
	m.metrics.ObserveModelLoad(err)
	if err != nil {
		m.logger.Error("model load failed", zap.String("path", m.path), zap.Error(err))
		return nil, &ModelLoadError{Path: m.path, Err: err}
	}
	m.logger.Info("model loaded", zap.String("path", m.path), zap.String("type", m.modelType))
	m.loaded.Store(&loadedModel{regressor: model})
	return model, nil
}
