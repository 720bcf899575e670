package ml

import (
	"testing"
)

func TestGenerateSyntheticDataRanges(t *testing.T) {
	samples, err := GenerateSyntheticData(DefaultSampleCount, DefaultSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != DefaultSampleCount {
		t.Fatalf("expected %d samples, got %d", DefaultSampleCount, len(samples))
	}
	for i, s := range samples {
		p := s.Plan
		if p.NumSubjects < 1 || p.NumSubjects > 5 {
			t.Fatalf("sample %d: num_subjects %d out of range", i, p.NumSubjects)
		}
		if p.HoursPerDay < 1 || p.HoursPerDay > 8 {
			t.Fatalf("sample %d: hours_per_day %f out of range", i, p.HoursPerDay)
		}
		if p.NumTopics < 5 || p.NumTopics > 50 {
			t.Fatalf("sample %d: num_topics %d out of range", i, p.NumTopics)
		}
		if p.NumDays < 1 || p.NumDays > 60 {
			t.Fatalf("sample %d: num_days %d out of range", i, p.NumDays)
		}
		if s.RecommendedTotalStudyMinutes < 0 {
			t.Fatalf("sample %d: negative label %d", i, s.RecommendedTotalStudyMinutes)
		}
	}
}

func TestGenerateSyntheticDataCoversBounds(t *testing.T) {
	samples, err := GenerateSyntheticData(DefaultSampleCount, DefaultSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[int]bool{}
	for _, s := range samples {
		seen[s.Plan.NumSubjects] = true
	}
	for v := 1; v <= 5; v++ {
		if !seen[v] {
			t.Fatalf("num_subjects value %d never drawn", v)
		}
	}
}

func TestGenerateSyntheticDataIsSeeded(t *testing.T) {
	a, err := GenerateSyntheticData(200, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateSyntheticData(200, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}

	c, err := GenerateSyntheticData(200, 43)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected a different dataset for a different seed")
	}
}

func TestGenerateSyntheticDataSaturates(t *testing.T) {
	samples, err := GenerateSyntheticData(DefaultSampleCount, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Normal(0, 50) noise stays within 6 sigma for any realistic draw.
	for i, s := range samples {
		ceiling := 0.9*MaxPossibleMinutes(s.Plan) + 300
		if float64(s.RecommendedTotalStudyMinutes) > ceiling {
			t.Fatalf("sample %d: label %d exceeds saturation ceiling %f", i, s.RecommendedTotalStudyMinutes, ceiling)
		}
	}
}

func TestGenerateSyntheticDataRejectsEmpty(t *testing.T) {
	if _, err := GenerateSyntheticData(0, 1); err == nil {
		t.Fatal("expected error for zero samples")
	}
}

func TestSamplesToDataset(t *testing.T) {
	samples := []TrainingSample{{
		Plan:                         StudyPlan{NumSubjects: 3, HoursPerDay: 4, NumTopics: 25, NumDays: 30},
		RecommendedTotalStudyMinutes: 900,
	}}
	features, targets := SamplesToDataset(samples)
	want := []float64{3, 4, 25, 30}
	for i, v := range want {
		if features[0][i] != v {
			t.Fatalf("column %s: expected %f, got %f", FeatureNames()[i], v, features[0][i])
		}
	}
	if targets[0] != 900 {
		t.Fatalf("expected target 900, got %f", targets[0])
	}
}
