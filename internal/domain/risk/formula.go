// Package risk implements the reference risk-score formula.
//
// The formula is the ground truth of the system: it labels the synthetic
// training corpus, and the predictive models are trained to approximate it.
// It is never applied directly on the serving path, but it must stay exact
// so labels and explainability cross-checks agree.
package risk

import (
	"math"

	"github.com/okian/nourish/internal/domain/model"
)

// Formula constants. Each factor contributes a non-negative amount; the
// clamped sum is the 0-100 risk score.
const (
	mealFrequencyLowRisk  = 25 // fewer than 3 meals/day
	mealFrequencyMidRisk  = 10 // exactly 3 meals/day
	diversityWeight       = 5  // per missing diversity point below 7
	diversityMin          = 1
	diversityMax          = 7
	proteinSevereRisk     = 20 // below 30g
	proteinModerateRisk   = 10 // below 40g
	proteinSevereCutoffG  = 30
	proteinModerateCutG   = 40
	calorieDeficitWeight  = 30
	attendanceSevereRisk  = 20 // below 0.5
	attendanceModerateRsk = 10 // below 0.75
	attendanceSevereCut   = 0.5
	attendanceModerateCut = 0.75
	stalenessWindowDays   = 45
	stalenessMaxRisk      = 10
	scoreMax              = 100
)

// Category thresholds.
const (
	highThreshold   = 60
	mediumThreshold = 30
)

// Breakdown holds the per-factor contributions of one evaluation. It is
// exposed so callers can cross-check model output factor by factor.
type Breakdown struct {
	MealFrequency  float64
	FoodDiversity  float64
	Protein        float64
	CalorieDeficit float64
	Attendance     float64
	Staleness      float64
}

// Sum returns the unclamped total of all contributions.
func (b Breakdown) Sum() float64 {
	return b.MealFrequency + b.FoodDiversity + b.Protein + b.CalorieDeficit + b.Attendance + b.Staleness
}

// Factors evaluates the six risk contributions for the given inputs.
func Factors(age model.AgeGroup, b model.Behavior) Breakdown {
	var out Breakdown

	switch {
	case b.MealsPerDay < 3:
		out.MealFrequency = mealFrequencyLowRisk
	case b.MealsPerDay == 3:
		out.MealFrequency = mealFrequencyMidRisk
	}

	diversity := float64(b.FoodDiversityScore)
	diversity = math.Max(diversityMin, math.Min(diversityMax, diversity))
	out.FoodDiversity = (diversityMax - diversity) * diversityWeight

	switch {
	case b.ProteinIntakeG < proteinSevereCutoffG:
		out.Protein = proteinSevereRisk
	case b.ProteinIntakeG < proteinModerateCutG:
		out.Protein = proteinModerateRisk
	}

	required := age.RequiredCalories()
	if required > 0 {
		deficit := math.Max(0, (required-b.CalorieIntakeKcal)/required)
		out.CalorieDeficit = deficit * calorieDeficitWeight
	}

	switch {
	case b.AttendanceRate < attendanceSevereCut:
		out.Attendance = attendanceSevereRisk
	case b.AttendanceRate < attendanceModerateCut:
		out.Attendance = attendanceModerateRsk
	}

	out.Staleness = math.Min(float64(b.DaysSinceLastCheck)/stalenessWindowDays*stalenessMaxRisk, stalenessMaxRisk)

	return out
}

// Score evaluates the formula without noise and clamps to [0,100]. This is
// the deterministic inference-context variant: same input, same output.
func Score(age model.AgeGroup, b model.Behavior) float64 {
	return clamp(Factors(age, b).Sum())
}

// Categorize maps a score to its band. Thresholds are inclusive on the
// lower bound: 60.0 is High, 30.0 is Medium.
func Categorize(score float64) model.RiskCategory {
	switch {
	case score >= highThreshold:
		return model.RiskHigh
	case score >= mediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(scoreMax, score))
}
