package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"studyplan/monitoring"
	"studyplan/predictor"
)

const (
	msgMissingInput   = "Missing input values"
	msgInvalidBody    = "Invalid request body"
	msgModelNotFound  = "Model file not found"
	msgPredictionFail = "Prediction failed"
)

// Predictor is the part of predictor.Service the handlers depend on.
type Predictor interface {
	Predict(ctx context.Context, req predictor.StudyPlanRequest) (predictor.PredictionResult, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func RegisterHandlers(mux *http.ServeMux, p Predictor, metrics *monitoring.Metrics, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &predictHandler{predictor: p, logger: logger}
	mux.Handle("POST /predict", h)
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type predictHandler struct {
	predictor Predictor
	logger    *zap.Logger
}

func (h *predictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req predictor.StudyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("decode predict body", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	result, err := h.predictor.Predict(r.Context(), req)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("predict failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// errorStatus maps predictor errors to the response status and body message.
func errorStatus(err error) (int, string) {
	var (
		missing *predictor.MissingInputError
		loadErr *predictor.ModelLoadError
	)
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, msgMissingInput
	case errors.As(err, &loadErr):
		return http.StatusInternalServerError, msgModelNotFound
	default:
		return http.StatusInternalServerError, msgPredictionFail
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
