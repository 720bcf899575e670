// Package predictor turns a study plan request into a recommended study time.
package predictor

import "studyplan/ml"

// StudyPlanRequest is the body of POST /predict. Fields are pointers so that an absent
// or null field can be told apart from zero; zero and negative values are accepted
// and reach the model unchanged.
type StudyPlanRequest struct {
	NumSubjects *int     `json:"num_subjects" validate:"required"`
	HoursPerDay *float64 `json:"hours_per_day" validate:"required"`
	NumTopics   *int     `json:"num_topics" validate:"required"`
	NumDays     *int     `json:"num_days" validate:"required"`
}

// Plan returns the request as model input. Call it only on a validated request.
func (r StudyPlanRequest) Plan() ml.StudyPlan {
	return ml.StudyPlan{
		NumSubjects: *r.NumSubjects,
		HoursPerDay: *r.HoursPerDay,
		NumTopics:   *r.NumTopics,
		NumDays:     *r.NumDays,
	}
}

// PredictionResult is the response body of POST /predict.
type PredictionResult struct {
	PredictHours         float64  `json:"predict_hours"`
	AverageHoursPerTopic *float64 `json:"average_hours_per_topic,omitempty"`
}

// NewRequest builds a complete request; handy for callers that already hold the values.
func NewRequest(subjects int, hoursPerDay float64, topics, days int) StudyPlanRequest {
	return StudyPlanRequest{
		NumSubjects: &subjects,
		HoursPerDay: &hoursPerDay,
		NumTopics:   &topics,
		NumDays:     &days,
	}
}
