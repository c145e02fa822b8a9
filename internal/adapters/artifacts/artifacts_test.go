package artifacts_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/nourish/internal/adapters/artifacts"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/predict"
	. "github.com/smartystreets/goconvey/convey"
)

func testBundle() artifacts.Bundle {
	weights := make([]float64, model.FeatureCount)
	weights[0] = 1.5
	means := make([]float64, model.FeatureCount)
	stds := make([]float64, model.FeatureCount)
	for i := range stds {
		stds[i] = 1
	}

	classes := len(model.RiskCategories())
	clfWeights := make([][]float64, classes)
	for k := range clfWeights {
		clfWeights[k] = make([]float64, model.FeatureCount)
	}

	return artifacts.Bundle{
		RegressorParams: predict.LinearParams{
			Weights:      weights,
			Intercept:    42,
			FeatureMeans: means,
			FeatureStds:  stds,
		},
		ClassifierParams: predict.SoftmaxParams{
			Weights:      clfWeights,
			Intercepts:   make([]float64, classes),
			FeatureMeans: means,
			FeatureStds:  stds,
		},
		AgeClasses:    []string{"0-2 years", "13-18 years", "3-5 years", "6-12 years"},
		RegionClasses: []string{"Assam", "Bihar", "Kerala"},
		GenderClasses: []string{"Female", "Male"},
		TrainedAt:     time.Date(2026, 7, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestSaveLoad(t *testing.T) {
	Convey("Given a trained bundle", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "models.gob")
		b := testBundle()

		Convey("When saving and loading it", func() {
			So(artifacts.Save(path, b), ShouldBeNil)

			loaded, err := artifacts.Load(path)

			So(err, ShouldBeNil)

			Convey("Then the models should be reconstructed", func() {
				features := make([]float64, model.FeatureCount)
				features[0] = 2

				score, predErr := loaded.Regressor.Predict(features)
				So(predErr, ShouldBeNil)
				So(score, ShouldAlmostEqual, 45, 1e-9)

				dist, clfErr := loaded.Classifier.PredictProba(features)
				So(clfErr, ShouldBeNil)
				var sum float64
				for _, p := range dist {
					sum += p
				}
				So(sum, ShouldAlmostEqual, 1, 1e-9)
			})

			Convey("Then the encoders should carry the persisted classes", func() {
				So(loaded.AgeEncoder.Classes(), ShouldResemble, b.AgeClasses)
				So(loaded.RegionEncoder.Classes(), ShouldResemble, b.RegionClasses)
				So(loaded.GenderEncoder.Classes(), ShouldResemble, b.GenderClasses)

				code, encErr := loaded.RegionEncoder.Encode("Bihar")
				So(encErr, ShouldBeNil)
				So(code, ShouldEqual, 1)
			})

			Convey("Then the training timestamp should survive", func() {
				So(loaded.TrainedAt.Equal(b.TrainedAt), ShouldBeTrue)
			})

			Convey("Then no temp file should be left behind", func() {
				_, statErr := os.Stat(path + ".tmp")
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the artifact file is missing", func() {
			_, err := artifacts.Load(filepath.Join(dir, "absent.gob"))

			So(errors.Is(err, artifacts.ErrModelUnavailable), ShouldBeTrue)
		})

		Convey("When the artifact file is corrupt", func() {
			So(os.WriteFile(path, []byte("not a gob stream"), 0o600), ShouldBeNil)

			_, err := artifacts.Load(path)
			So(errors.Is(err, artifacts.ErrModelUnavailable), ShouldBeTrue)
		})

		Convey("When the bundle holds malformed model parameters", func() {
			b.RegressorParams.Weights = []float64{1, 2}
			So(artifacts.Save(path, b), ShouldBeNil)

			_, err := artifacts.Load(path)
			So(errors.Is(err, artifacts.ErrModelUnavailable), ShouldBeTrue)
		})

		Convey("When the bundle holds an unsorted class list", func() {
			b.RegionClasses = []string{"Kerala", "Assam"}
			So(artifacts.Save(path, b), ShouldBeNil)

			_, err := artifacts.Load(path)
			So(errors.Is(err, artifacts.ErrModelUnavailable), ShouldBeTrue)
		})
	})
}
