// Package recommend turns raw inputs and a risk score into ordered guidance.
//
// The engine is a fixed, order-sensitive rule list. The behavioral rules are
// independent and cumulative: every matching rule fires, and output preserves
// declaration order. The score-tier rules are mutually exclusive and always
// evaluated after the behavioral ones. This ordering is a contract consumed
// by field staff workflows; do not reorder the rules.
package recommend

import (
	"github.com/okian/nourish/internal/domain/model"
)

// Rule trigger thresholds.
const (
	minMealsPerDay      = 3
	minDiversityScore   = 4
	minProteinIntakeG   = 40
	minAttendanceRate   = 0.75
	highRiskScoreCutoff = 60
	monitorScoreCutoff  = 40
)

// Advisory texts, in rule-declaration order.
const (
	adviceMealFrequency = "🍽️ Increase meal frequency to at least 3 times per day"
	adviceDiversity     = "🥗 Add more variety - include vegetables, fruits, and protein sources"
	adviceProtein       = "🥚 Increase protein through dal, eggs, milk, or soy products"
	adviceAttendance    = "📅 Improve program attendance for consistent nutrition"
	adviceHighRisk      = "⚠️ HIGH RISK - Schedule health checkup within 7 days"
	adviceCoordinator   = "📞 Contact program coordinator immediately"
	adviceMonitor       = "⚡ Monitor closely - recheck within 14 days"
	adviceContinue      = "✅ Continue current nutrition plan"
)

// behavioralRule is one independent advisory rule over the raw input.
type behavioralRule struct {
	name    string
	applies func(model.AssessmentInput) bool
	advice  string
}

// behavioralRules fire cumulatively, in this order.
var behavioralRules = []behavioralRule{
	{
		name:    "meal_frequency",
		applies: func(in model.AssessmentInput) bool { return in.MealsPerDay < minMealsPerDay },
		advice:  adviceMealFrequency,
	},
	{
		name:    "food_diversity",
		applies: func(in model.AssessmentInput) bool { return in.FoodDiversityScore < minDiversityScore },
		advice:  adviceDiversity,
	},
	{
		name:    "protein_intake",
		applies: func(in model.AssessmentInput) bool { return in.ProteinIntakeG < minProteinIntakeG },
		advice:  adviceProtein,
	},
	{
		name:    "attendance",
		applies: func(in model.AssessmentInput) bool { return in.AttendanceRate < minAttendanceRate },
		advice:  adviceAttendance,
	},
}

// Engine generates recommendations from raw inputs and a computed score.
// It is stateless and safe for concurrent use.
type Engine struct{}

// New creates a recommendation engine.
func New() *Engine {
	return &Engine{}
}

// Advise evaluates the rule list against the raw (unencoded) input and the
// predicted score. If nothing fires at all, a single continue-current-plan
// advisory is returned so the response is never empty.
func (e *Engine) Advise(in model.AssessmentInput, score float64) []string {
	recs := make([]string, 0, len(behavioralRules)+2)

	for _, r := range behavioralRules {
		if r.applies(in) {
			recs = append(recs, r.advice)
		}
	}

	// Score tiers are mutually exclusive and come after the behavioral rules.
	switch {
	case score > highRiskScoreCutoff:
		recs = append(recs, adviceHighRisk, adviceCoordinator)
	case score > monitorScoreCutoff:
		recs = append(recs, adviceMonitor)
	}

	if len(recs) == 0 {
		recs = append(recs, adviceContinue)
	}

	return recs
}
