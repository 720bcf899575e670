package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"studyplan/ml"
	"studyplan/monitoring"
)

// Options selects the response variant and the result cache size.
type Options struct {
	AveragePerTopic bool
	// CacheSize of zero disables the result cache.
	CacheSize int
}

// Service answers prediction requests against one read-only model. It holds no per-request
// state, so a single Service is shared by all concurrent requests.
type Service struct {
	models   ModelHandle
	opts     Options
	validate *validator.Validate
	cache    *lru.Cache[ml.StudyPlan, prediction]
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// prediction is the cached, variant-independent outcome for one plan.
type prediction struct {
	minutes int
	hours   float64
	average float64
}

func NewService(models ModelHandle, opts Options, logger *zap.Logger, metrics *monitoring.Metrics) (*Service, error) {
	if models == nil {
		return nil, errors.New("model handle is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	s := &Service{
		models:   models,
		opts:     opts,
		validate: validate,
		logger:   logger,
		metrics:  metrics,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[ml.StudyPlan, prediction](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Predict validates req, evaluates the model on its feature row and converts the
// estimate to hours. Identical requests always yield identical results.
func (s *Service) Predict(ctx context.Context, req StudyPlanRequest) (PredictionResult, error) {
	start := time.Now()

	if missing := s.missingFields(req); len(missing) > 0 {
		s.metrics.ObservePrediction(monitoring.ResultMissingInput, time.Since(start))
		return PredictionResult{}, &MissingInputError{Fields: missing}
	}
	plan := req.Plan()

	p, err := s.predict(ctx, plan)
	if err != nil {
		var loadErr *ModelLoadError
		result := monitoring.ResultPrediction
		if errors.As(err, &loadErr) {
			result = monitoring.ResultModelLoad
		}
		s.metrics.ObservePrediction(result, time.Since(start))
		return PredictionResult{}, err
	}

	s.metrics.ObservePrediction(monitoring.ResultSuccess, time.Since(start))
	s.metrics.ObservePredictedHours(p.hours)
	s.logger.Debug("prediction served",
		zap.Int("num_subjects", plan.NumSubjects),
		zap.Float64("hours_per_day", plan.HoursPerDay),
		zap.Int("num_topics", plan.NumTopics),
		zap.Int("num_days", plan.NumDays),
		zap.Int("predicted_minutes", p.minutes),
	)

	out := PredictionResult{PredictHours: p.hours}
	if s.opts.AveragePerTopic {
		average := p.average
		out.AverageHoursPerTopic = &average
	}
	return out, nil
}

func (s *Service) predict(ctx context.Context, plan ml.StudyPlan) (prediction, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(plan); ok {
			s.metrics.CacheHit()
			return p, nil
		}
		s.metrics.CacheMiss()
	}

	model, err := s.models.Model(ctx)
	if err != nil {
		return prediction{}, err
	}
	raw, err := model.Predict(ml.FeatureVector(plan))
	if err != nil {
		return prediction{}, &PredictionError{Err: err}
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw >= math.MaxInt64 {
		return prediction{}, &PredictionError{Err: fmt.Errorf("model returned %v", raw)}
	}

	minutes := PredictedMinutes(raw)
	p := prediction{
		minutes: minutes,
		hours:   MinutesToHours(float64(minutes)),
		average: MinutesToHours(AverageMinutesPerTopic(minutes, plan.NumTopics)),
	}
	if s.cache != nil {
		s.cache.Add(plan, p)
	}
	return p, nil
}

func (s *Service) missingFields(req StudyPlanRequest) []string {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
