// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// AgeGroup is a closed enumeration of the program's age bands.
type AgeGroup string

// Age bands tracked by the program.
const (
	AgeGroup0To2   AgeGroup = "0-2 years"
	AgeGroup3To5   AgeGroup = "3-5 years"
	AgeGroup6To12  AgeGroup = "6-12 years"
	AgeGroup13To18 AgeGroup = "13-18 years"
)

// AgeGroups lists all bands in ascending order.
func AgeGroups() []AgeGroup {
	return []AgeGroup{AgeGroup0To2, AgeGroup3To5, AgeGroup6To12, AgeGroup13To18}
}

// ParseAgeGroup validates a raw age group value. Unrecognized values are
// rejected here, before any feature building or encoding takes place.
func ParseAgeGroup(s string) (AgeGroup, error) {
	switch AgeGroup(s) {
	case AgeGroup0To2, AgeGroup3To5, AgeGroup6To12, AgeGroup13To18:
		return AgeGroup(s), nil
	}
	return "", &MalformedInputError{Field: "age_group", Reason: fmt.Sprintf("unknown age group %q", s)}
}

// Months returns the representative age in months used as a model feature.
func (a AgeGroup) Months() float64 {
	switch a {
	case AgeGroup0To2:
		return 12
	case AgeGroup3To5:
		return 48
	case AgeGroup6To12:
		return 108
	case AgeGroup13To18:
		return 180
	}
	return 0
}

// RequiredCalories returns the daily calorie requirement for the band.
func (a AgeGroup) RequiredCalories() float64 {
	switch a {
	case AgeGroup0To2:
		return 1000
	case AgeGroup3To5:
		return 1400
	case AgeGroup6To12:
		return 1800
	case AgeGroup13To18:
		return 2200
	}
	return 0
}

// Gender is a closed enumeration of recorded genders.
type Gender string

// Recorded genders.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Genders lists the recorded genders.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

// ParseGender validates a raw gender value.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", &MalformedInputError{Field: "gender", Reason: fmt.Sprintf("unknown gender %q", s)}
}

// RiskCategory is the banded simplification of a risk score.
type RiskCategory string

// Risk bands, from least to most severe.
const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

// RiskCategories lists the bands from least to most severe.
func RiskCategories() []RiskCategory {
	return []RiskCategory{RiskLow, RiskMedium, RiskHigh}
}

// ParseRiskCategory validates a raw risk category value.
func ParseRiskCategory(s string) (RiskCategory, error) {
	switch RiskCategory(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskCategory(s), nil
	}
	return "", &MalformedInputError{Field: "risk_category", Reason: fmt.Sprintf("unknown risk category %q", s)}
}

// Behavior holds the behavioral measurements collected for a beneficiary.
type Behavior struct {
	MealsPerDay        int
	FoodDiversityScore int
	ProteinIntakeG     float64
	CalorieIntakeKcal  float64
	AttendanceRate     float64
	DaysSinceLastCheck int
}

// Validate checks schema/range constraints on the measurements.
func (b Behavior) Validate() error {
	switch {
	case b.MealsPerDay < 0:
		return &MalformedInputError{Field: "meals_per_day", Reason: "must be >= 0"}
	case b.ProteinIntakeG < 0:
		return &MalformedInputError{Field: "protein_intake_g", Reason: "must be >= 0"}
	case b.CalorieIntakeKcal < 0:
		return &MalformedInputError{Field: "calorie_intake_kcal", Reason: "must be >= 0"}
	case b.AttendanceRate < 0 || b.AttendanceRate > 1:
		return &MalformedInputError{Field: "attendance_rate", Reason: "must be in [0,1]"}
	case b.DaysSinceLastCheck < 0:
		return &MalformedInputError{Field: "days_since_last_check", Reason: "must be >= 0"}
	}
	return nil
}

// AssessmentInput is one subject's raw attributes submitted for scoring.
type AssessmentInput struct {
	AgeGroup AgeGroup
	Gender   Gender
	Region   string
	Behavior
}

// Validate checks the categorical fields and the behavioral ranges.
func (in AssessmentInput) Validate() error {
	if _, err := ParseAgeGroup(string(in.AgeGroup)); err != nil {
		return err
	}
	if _, err := ParseGender(string(in.Gender)); err != nil {
		return err
	}
	if in.Region == "" {
		return &MalformedInputError{Field: "region", Reason: "must not be empty"}
	}
	return in.Behavior.Validate()
}

// Assessment is the outcome of one scoring call. It is created per request
// and never persisted by the core.
type Assessment struct {
	RiskScore       float64
	RiskCategory    RiskCategory
	Confidence      float64
	Recommendations []string
	Timestamp       time.Time
}

// BeneficiaryRecord is one assessed subject as stored in the registry.
type BeneficiaryRecord struct {
	ID       string
	Name     string
	AgeGroup AgeGroup
	Gender   Gender
	Region   string
	Behavior
	RiskScore    float64
	RiskCategory RiskCategory
	LastUpdated  time.Time
}

// Input projects the record's raw attributes for re-assessment.
func (r BeneficiaryRecord) Input() AssessmentInput {
	return AssessmentInput{
		AgeGroup: r.AgeGroup,
		Gender:   r.Gender,
		Region:   r.Region,
		Behavior: r.Behavior,
	}
}
