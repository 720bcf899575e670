package predictor

import (
	"math"
	"strconv"
)

// PredictedMinutes clamps a raw model output at zero and rounds it half to even.
func PredictedMinutes(prediction float64) int {
	if math.IsNaN(prediction) || prediction < 0 {
		return 0
	}
	return int(math.RoundToEven(prediction))
}

// MinutesToHours converts minutes to hours rounded to two decimals.
func MinutesToHours(minutes float64) float64 {
	return round2(minutes / 60)
}

// AverageMinutesPerTopic divides the total across topics; zero or fewer topics yield 0.
func AverageMinutesPerTopic(minutes, topics int) float64 {
	if topics <= 0 {
		return 0
	}
	return float64(minutes) / float64(topics)
}

// round2 rounds the exact binary value of v to two decimals: 0.025 is stored slightly
// above 0.025 and becomes 0.03.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}
