package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// timestampLayout matches the last_updated format of the reference dataset.
const timestampLayout = "2006-01-02 15:04:05"

// Columns is the dataset schema, in on-disk order.
var Columns = []string{
	"beneficiary_id", "name", "age_group", "age_months", "gender", "region",
	"meals_per_day", "food_diversity_score", "protein_intake_g",
	"calorie_intake_kcal", "attendance_rate", "days_since_last_check",
	"risk_score", "risk_category", "last_updated",
}

// WriteCSV streams rows in the dataset schema.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.Name,
			string(r.AgeGroup),
			strconv.Itoa(r.AgeMonths),
			string(r.Gender),
			r.Region,
			strconv.Itoa(r.MealsPerDay),
			strconv.Itoa(r.FoodDiversityScore),
			formatFloat(r.ProteinIntakeG),
			formatFloat(r.CalorieIntakeKcal),
			formatFloat(r.AttendanceRate),
			strconv.Itoa(r.DaysSinceLastCheck),
			formatFloat(r.RiskScore),
			string(r.RiskCategory),
			r.LastUpdated.Format(timestampLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseTimestamp reads a last_updated value in the dataset layout.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
