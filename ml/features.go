package ml

// StudyPlan is the model input: the parameters of one study plan.
type StudyPlan struct {
	NumSubjects int
	HoursPerDay float64
	NumTopics   int
	NumDays     int
}

// FeatureCount is the width of every feature row the model sees.
const FeatureCount = 4

// FeatureVector returns the plan as a row in the column order the model was trained on.
func FeatureVector(plan StudyPlan) []float64 {
	return []float64{
		float64(plan.NumSubjects),
		plan.HoursPerDay,
		float64(plan.NumTopics),
		float64(plan.NumDays),
	}
}

func FeatureNames() []string {
	return []string{
		"num_subjects",
		"hours_per_day",
		"num_topics",
		"num_days",
	}
}

// MaxPossibleMinutes is the study time the plan allows if every scheduled hour is used.
func MaxPossibleMinutes(plan StudyPlan) float64 {
	return plan.HoursPerDay * float64(plan.NumDays) * 60
}
