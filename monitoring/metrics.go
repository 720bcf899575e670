// Package monitoring exposes Prometheus metrics for the prediction service.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prediction outcomes used as the "result" label.
const (
	ResultSuccess      = "success"
	ResultMissingInput = "missing_input"
	ResultModelLoad    = "model_load_error"
	ResultPrediction   = "prediction_error"
)

// Metrics holds the service's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PredictionsTotal    *prometheus.CounterVec
	PredictionDuration  prometheus.Histogram
	PredictedHours      prometheus.Histogram
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	ModelLoads          *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PredictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyplan_predictions_total",
				Help: "Total number of prediction requests by result",
			},
			[]string{"result"},
		),
		PredictionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studyplan_prediction_duration_seconds",
			Help:    "Time spent assembling features and evaluating the model",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
		}),
		PredictedHours: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studyplan_predicted_hours",
			Help:    "Distribution of recommended total study hours",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "studyplan_prediction_cache_hits_total",
			Help: "Predictions served from the result cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "studyplan_prediction_cache_misses_total",
			Help: "Predictions that had to evaluate the model",
		}),
		ModelLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyplan_model_loads_total",
				Help: "Model artifact load attempts by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyplan_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyplan_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePrediction(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.PredictionDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObservePredictedHours(hours float64) {
	if m == nil {
		return
	}
	m.PredictedHours.Observe(hours)
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) ObserveModelLoad(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ModelLoads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
