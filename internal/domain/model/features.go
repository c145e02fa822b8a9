package model

// FeatureCount is the fixed length of the model input vector.
const FeatureCount = 10

// Features builds the feature vector consumed by both predictive models.
// The order is fixed and shared between training and inference:
//
//	[age_months, meals_per_day, food_diversity_score, protein_intake_g,
//	 calorie_intake_kcal, attendance_rate, days_since_last_check,
//	 age_group_code, region_code, gender_code]
//
// Categorical codes come from the fitted encoders; they are passed in as
// plain integers so this package stays free of encoder state.
func Features(in AssessmentInput, ageCode, regionCode, genderCode int) []float64 {
	return []float64{
		in.AgeGroup.Months(),
		float64(in.MealsPerDay),
		float64(in.FoodDiversityScore),
		in.ProteinIntakeG,
		in.CalorieIntakeKcal,
		in.AttendanceRate,
		float64(in.DaysSinceLastCheck),
		float64(ageCode),
		float64(regionCode),
		float64(genderCode),
	}
}
