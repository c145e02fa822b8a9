// Package types contains common read types used across the application
package types

// Entry represents one row of the highest-risk-first triage listing.
type Entry struct {
	Rank          int     `json:"rank"`
	BeneficiaryID string  `json:"beneficiary_id"`
	RiskScore     float64 `json:"risk_score"`
	RiskCategory  string  `json:"risk_category"`
	Region        string  `json:"region"`
}

// RegionStats summarizes one region's assessed population.
type RegionStats struct {
	AvgRiskScore float64 `json:"avg_risk_score"`
	Count        int     `json:"beneficiary_count"`
}

// DashboardStats aggregates population-level risk for the operator dashboard.
type DashboardStats struct {
	TotalBeneficiaries int                       `json:"total_beneficiaries"`
	HighRiskCount      int                       `json:"high_risk_count"`
	MediumRiskCount    int                       `json:"medium_risk_count"`
	LowRiskCount       int                       `json:"low_risk_count"`
	AvgRiskScore       float64                   `json:"avg_risk_score"`
	Regions            []string                  `json:"regions"`
	RegionStats        map[string]RegionStats    `json:"region_stats"`
	RiskByAgeGroup     map[string]map[string]int `json:"risk_by_age"`
}
