package recommend_test

import (
	"testing"

	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

// wellNourished triggers none of the behavioral rules.
var wellNourished = model.AssessmentInput{
	AgeGroup: model.AgeGroup3To5,
	Gender:   model.GenderFemale,
	Region:   "Kerala",
	Behavior: model.Behavior{
		MealsPerDay:        3,
		FoodDiversityScore: 5,
		ProteinIntakeG:     45,
		CalorieIntakeKcal:  1400,
		AttendanceRate:     0.9,
		DaysSinceLastCheck: 5,
	},
}

func TestAdvise(t *testing.T) {
	Convey("Given the recommendation engine", t, func() {
		e := recommend.New()

		Convey("When nothing fires", func() {
			recs := e.Advise(wellNourished, 20)

			Convey("Then a single continue advisory should be returned", func() {
				So(recs, ShouldResemble, []string{"✅ Continue current nutrition plan"})
			})
		})

		Convey("When every behavioral rule fires with a high score", func() {
			in := wellNourished
			in.MealsPerDay = 2
			in.FoodDiversityScore = 2
			in.ProteinIntakeG = 20
			in.AttendanceRate = 0.5

			recs := e.Advise(in, 75)

			Convey("Then all six advisories should appear in declaration order", func() {
				So(recs, ShouldResemble, []string{
					"🍽️ Increase meal frequency to at least 3 times per day",
					"🥗 Add more variety - include vegetables, fruits, and protein sources",
					"🥚 Increase protein through dal, eggs, milk, or soy products",
					"📅 Improve program attendance for consistent nutrition",
					"⚠️ HIGH RISK - Schedule health checkup within 7 days",
					"📞 Contact program coordinator immediately",
				})
			})
		})

		Convey("When a single behavioral rule fires", func() {
			in := wellNourished
			in.ProteinIntakeG = 35

			recs := e.Advise(in, 10)

			So(recs, ShouldResemble, []string{
				"🥚 Increase protein through dal, eggs, milk, or soy products",
			})
		})

		Convey("When only the score tier fires", func() {
			Convey("And the score is in the monitor tier", func() {
				recs := e.Advise(wellNourished, 45)

				So(recs, ShouldResemble, []string{
					"⚡ Monitor closely - recheck within 14 days",
				})
			})

			Convey("And the score is in the high-risk tier", func() {
				recs := e.Advise(wellNourished, 61)

				So(recs, ShouldResemble, []string{
					"⚠️ HIGH RISK - Schedule health checkup within 7 days",
					"📞 Contact program coordinator immediately",
				})
			})
		})

		Convey("When the score sits exactly on a tier cutoff", func() {
			Convey("Then 60 should fall in the monitor tier, not high risk", func() {
				recs := e.Advise(wellNourished, 60)

				So(recs, ShouldResemble, []string{
					"⚡ Monitor closely - recheck within 14 days",
				})
			})

			Convey("Then 40 should produce no score advisory", func() {
				recs := e.Advise(wellNourished, 40)

				So(recs, ShouldResemble, []string{"✅ Continue current nutrition plan"})
			})
		})

		Convey("When behavioral thresholds sit exactly on a bound", func() {
			in := wellNourished
			in.MealsPerDay = 3
			in.FoodDiversityScore = 4
			in.ProteinIntakeG = 40
			in.AttendanceRate = 0.75

			recs := e.Advise(in, 0)

			Convey("Then none of the rules should fire", func() {
				So(recs, ShouldResemble, []string{"✅ Continue current nutrition plan"})
			})
		})
	})
}
