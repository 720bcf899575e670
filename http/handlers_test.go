package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studyplan/predictor"
)

type fakePredictor struct {
	result predictor.PredictionResult
	err    error
	got    []predictor.StudyPlanRequest
}

func (f *fakePredictor) Predict(ctx context.Context, req predictor.StudyPlanRequest) (predictor.PredictionResult, error) {
	f.got = append(f.got, req)
	return f.result, f.err
}

func newTestMux(p Predictor) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterHandlers(mux, p, nil, nil)
	return mux
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json %q: %v", rr.Body.String(), err)
	}
	return payload
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(handleHealth).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	expected := `{"status":"ok"}`
	if strings.TrimSpace(rr.Body.String()) != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestHandlePredict(t *testing.T) {
	avg := 0.82
	fake := &fakePredictor{result: predictor.PredictionResult{PredictHours: 20.57, AverageHoursPerTopic: &avg}}
	mux := newTestMux(fake)

	body := `{"num_subjects": 3, "hours_per_day": 4, "num_topics": 25, "num_days": 30}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	payload := decodeBody(t, rr)
	if payload["predict_hours"].(float64) != 20.57 {
		t.Fatalf("unexpected predict_hours: %v", payload["predict_hours"])
	}
	if payload["average_hours_per_topic"].(float64) != 0.82 {
		t.Fatalf("unexpected average_hours_per_topic: %v", payload["average_hours_per_topic"])
	}

	if len(fake.got) != 1 {
		t.Fatalf("expected one call, got %d", len(fake.got))
	}
	plan := fake.got[0].Plan()
	if plan.NumSubjects != 3 || plan.HoursPerDay != 4 || plan.NumTopics != 25 || plan.NumDays != 30 {
		t.Fatalf("request decoded incorrectly: %+v", plan)
	}
}

func TestHandlePredictOmitsAverageWhenDisabled(t *testing.T) {
	mux := newTestMux(&fakePredictor{result: predictor.PredictionResult{PredictHours: 1.5}})

	req := httptest.NewRequest(http.MethodPost, "/predict",
		strings.NewReader(`{"num_subjects":1,"hours_per_day":2,"num_topics":3,"num_days":4}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	payload := decodeBody(t, rr)
	if _, ok := payload["average_hours_per_topic"]; ok {
		t.Fatalf("average_hours_per_topic should be absent: %s", rr.Body.String())
	}
}

func TestHandlePredictErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{
			name:   "malformed json",
			body:   `{"num_subjects": 3,`,
			status: http.StatusBadRequest,
			msg:    "Invalid request body",
		},
		{
			name:   "wrong type",
			body:   `{"num_subjects": "three", "hours_per_day": 4, "num_topics": 25, "num_days": 30}`,
			status: http.StatusBadRequest,
			msg:    "Invalid request body",
		},
		{
			name:   "missing field",
			body:   `{"hours_per_day": 4, "num_topics": 25, "num_days": 30}`,
			err:    &predictor.MissingInputError{Fields: []string{"num_subjects"}},
			status: http.StatusBadRequest,
			msg:    "Missing input values",
		},
		{
			name:   "model load failure",
			body:   `{"num_subjects": 3, "hours_per_day": 4, "num_topics": 25, "num_days": 30}`,
			err:    &predictor.ModelLoadError{Path: "model/study_schedule_model.json", Err: errors.New("no such file")},
			status: http.StatusInternalServerError,
			msg:    "Model file not found",
		},
		{
			name:   "prediction failure",
			body:   `{"num_subjects": 3, "hours_per_day": 4, "num_topics": 25, "num_days": 30}`,
			err:    &predictor.PredictionError{Err: errors.New("boom")},
			status: http.StatusInternalServerError,
			msg:    "Prediction failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&fakePredictor{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			if got := decodeBody(t, rr)["error"]; got != tt.msg {
				t.Fatalf("expected error %q, got %v", tt.msg, got)
			}
		})
	}
}

func TestRegisterHandlersWithoutLogger(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux, &fakePredictor{err: &predictor.PredictionError{Err: errors.New("boom")}}, nil, nil)

	for _, body := range []string{`not json`, `{"num_subjects":1,"hours_per_day":1,"num_topics":1,"num_days":1}`} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
		if rr.Code != http.StatusBadRequest && rr.Code != http.StatusInternalServerError {
			t.Fatalf("unexpected status %d for %q", rr.Code, body)
		}
	}
}

func TestPredictRouteRejectsGet(t *testing.T) {
	mux := newTestMux(&fakePredictor{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/predict", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
