package training_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/nourish/internal/adapters/artifacts"
	"github.com/okian/nourish/internal/datagen"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/predict"
	"github.com/okian/nourish/internal/training"
	. "github.com/smartystreets/goconvey/convey"
)

func generateDataset(count int) []datagen.Row {
	return datagen.NewGenerator(
		datagen.WithCount(count),
		datagen.WithSeed(42),
		datagen.WithClock(func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }),
	).Generate()
}

func datasetCSV(count int) *bytes.Buffer {
	var buf bytes.Buffer
	if err := datagen.WriteCSV(&buf, generateDataset(count)); err != nil {
		panic(err)
	}
	return &buf
}

func TestLoadCSV(t *testing.T) {
	Convey("Given a dataset in the generator schema", t, func() {
		rows := generateDataset(80)
		var buf bytes.Buffer
		So(datagen.WriteCSV(&buf, rows), ShouldBeNil)

		Convey("When loading it", func() {
			examples, err := training.LoadCSV(&buf)

			So(err, ShouldBeNil)
			So(len(examples), ShouldEqual, len(rows))

			Convey("Then fields should round-trip", func() {
				for i, ex := range examples {
					So(ex.Input.AgeGroup, ShouldEqual, rows[i].AgeGroup)
					So(ex.Input.Gender, ShouldEqual, rows[i].Gender)
					So(ex.Input.Region, ShouldEqual, rows[i].Region)
					So(ex.Input.Behavior, ShouldResemble, rows[i].Behavior)
					So(ex.RiskScore, ShouldEqual, rows[i].RiskScore)
					So(ex.RiskCategory, ShouldEqual, rows[i].RiskCategory)
				}
			})
		})

		Convey("When a required column is missing", func() {
			csv := "beneficiary_id,name\nBEN00001,Test\n"

			_, err := training.LoadCSV(strings.NewReader(csv))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "missing column")
		})

		Convey("When a row carries a malformed value", func() {
			lines := strings.SplitN(buf.String(), "\n", 3)
			broken := lines[0] + "\n" + strings.Replace(lines[1], string(rows[0].RiskCategory), "Critical", 1) + "\n"

			_, err := training.LoadCSV(strings.NewReader(broken))

			So(errors.Is(err, model.ErrMalformedInput), ShouldBeTrue)
		})
	})
}

func TestTrain(t *testing.T) {
	Convey("Given a labeled synthetic dataset", t, func() {
		examples, err := training.LoadCSV(datasetCSV(400))
		So(err, ShouldBeNil)

		Convey("When training the model pair", func() {
			result, err := training.Train(examples)

			So(err, ShouldBeNil)

			Convey("Then the split sizes should follow the 80/20 rule", func() {
				So(result.Report.TestSize, ShouldEqual, 80)
				So(result.Report.TrainSize, ShouldEqual, 320)
			})

			Convey("Then the held-out metrics should be reasonable", func() {
				// Labels are the formula total plus N(0,5) noise, so a
				// linear fit should track them closely.
				So(result.Report.MAE, ShouldBeLessThan, 12)
				So(result.Report.Accuracy, ShouldBeGreaterThan, 0.6)
			})

			Convey("Then the encoders should cover the dataset", func() {
				So(result.AgeEncoder.Len(), ShouldBeLessThanOrEqualTo, 4)
				So(result.GenderEncoder.Len(), ShouldEqual, 2)
				So(result.RegionEncoder.Len(), ShouldBeGreaterThan, 1)
			})

			Convey("Then the trained models should score an unseen-style input", func() {
				in := examples[0].Input
				ageCode, _ := result.AgeEncoder.Encode(string(in.AgeGroup))
				regionCode, _ := result.RegionEncoder.Encode(in.Region)
				genderCode, _ := result.GenderEncoder.Encode(string(in.Gender))

				vec := model.Features(in, ageCode, regionCode, genderCode)

				score, predErr := result.Regressor.Predict(vec)
				So(predErr, ShouldBeNil)
				So(score, ShouldBeBetween, -50, 150)

				dist, clfErr := result.Classifier.PredictProba(vec)
				So(clfErr, ShouldBeNil)
				var sum float64
				for _, p := range dist {
					sum += p
				}
				So(sum, ShouldAlmostEqual, 1, 1e-9)
			})
		})

		Convey("When the dataset is empty", func() {
			_, err := training.Train(nil)

			So(errors.Is(err, predict.ErrEmptyTrainingSet), ShouldBeTrue)
		})
	})
}

func TestTrainFile(t *testing.T) {
	Convey("Given a dataset file", t, func() {
		dir := t.TempDir()
		datasetPath := filepath.Join(dir, "dataset.csv")
		artifactsPath := filepath.Join(dir, "models.gob")
		So(os.WriteFile(datasetPath, datasetCSV(200).Bytes(), 0o600), ShouldBeNil)

		Convey("When training from the file", func() {
			result, err := training.TrainFile(datasetPath, artifactsPath)

			So(err, ShouldBeNil)
			So(result.Report.TrainSize, ShouldEqual, 160)

			Convey("Then the persisted bundle should be loadable for serving", func() {
				loaded, loadErr := artifacts.Load(artifactsPath)

				So(loadErr, ShouldBeNil)
				So(loaded.TrainedAt.Equal(result.Report.TrainedAt), ShouldBeTrue)
				So(loaded.AgeEncoder.Classes(), ShouldResemble, result.AgeEncoder.Classes())

				Convey("And its regressor should agree with the in-memory one", func() {
					in := generateDataset(1)[0].Input()
					ageCode, _ := loaded.AgeEncoder.Encode(string(in.AgeGroup))
					regionCode, _ := loaded.RegionEncoder.Encode(in.Region)
					genderCode, _ := loaded.GenderEncoder.Encode(string(in.Gender))
					vec := model.Features(in, ageCode, regionCode, genderCode)

					want, wantErr := result.Regressor.Predict(vec)
					got, gotErr := loaded.Regressor.Predict(vec)
					So(wantErr, ShouldBeNil)
					So(gotErr, ShouldBeNil)
					So(got, ShouldAlmostEqual, want, 1e-12)
				})
			})
		})

		Convey("When the dataset file does not exist", func() {
			_, err := training.TrainFile(filepath.Join(dir, "missing.csv"), artifactsPath)

			So(err, ShouldNotBeNil)
		})
	})
}
