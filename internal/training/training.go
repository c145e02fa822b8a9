// Package training fits the model pair on a labeled beneficiary dataset and
// persists the resulting artifact bundle.
package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/okian/nourish/internal/adapters/artifacts"
	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/predict"
)

// Split and shuffle constants.
const (
	testShare   = 0.2
	shuffleSeed = 42
)

// Example is one labeled training case.
type Example struct {
	Input        model.AssessmentInput
	RiskScore    float64
	RiskCategory model.RiskCategory
}

// Report summarizes one training run.
type Report struct {
	TrainSize int
	TestSize  int
	MAE       float64
	Accuracy  float64
	TrainedAt time.Time
}

// LoadCSV reads a labeled dataset in the generator's schema.
func LoadCSV(r io.Reader) ([]Example, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{
		"age_group", "gender", "region", "meals_per_day", "food_diversity_score",
		"protein_intake_g", "calorie_intake_kcal", "attendance_rate",
		"days_since_last_check", "risk_score", "risk_category",
	} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var examples []Example
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		ex, err := parseExample(record, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func parseExample(record []string, col map[string]int) (Example, error) {
	age, err := model.ParseAgeGroup(record[col["age_group"]])
	if err != nil {
		return Example{}, err
	}
	gender, err := model.ParseGender(record[col["gender"]])
	if err != nil {
		return Example{}, err
	}
	category, err := model.ParseRiskCategory(record[col["risk_category"]])
	if err != nil {
		return Example{}, err
	}

	meals, err := strconv.Atoi(record[col["meals_per_day"]])
	if err != nil {
		return Example{}, fmt.Errorf("meals_per_day: %w", err)
	}
	diversity, err := strconv.Atoi(record[col["food_diversity_score"]])
	if err != nil {
		return Example{}, fmt.Errorf("food_diversity_score: %w", err)
	}
	protein, err := strconv.ParseFloat(record[col["protein_intake_g"]], 64)
	if err != nil {
		return Example{}, fmt.Errorf("protein_intake_g: %w", err)
	}
	calories, err := strconv.ParseFloat(record[col["calorie_intake_kcal"]], 64)
	if err != nil {
		return Example{}, fmt.Errorf("calorie_intake_kcal: %w", err)
	}
	attendance, err := strconv.ParseFloat(record[col["attendance_rate"]], 64)
	if err != nil {
		return Example{}, fmt.Errorf("attendance_rate: %w", err)
	}
	days, err := strconv.Atoi(record[col["days_since_last_check"]])
	if err != nil {
		return Example{}, fmt.Errorf("days_since_last_check: %w", err)
	}
	score, err := strconv.ParseFloat(record[col["risk_score"]], 64)
	if err != nil {
		return Example{}, fmt.Errorf("risk_score: %w", err)
	}

	return Example{
		Input: model.AssessmentInput{
			AgeGroup: age,
			Gender:   gender,
			Region:   record[col["region"]],
			Behavior: model.Behavior{
				MealsPerDay:        meals,
				FoodDiversityScore: diversity,
				ProteinIntakeG:     protein,
				CalorieIntakeKcal:  calories,
				AttendanceRate:     attendance,
				DaysSinceLastCheck: days,
			},
		},
		RiskScore:    score,
		RiskCategory: category,
	}, nil
}

// Result carries the trained state and its evaluation.
type Result struct {
	Regressor     *predict.LinearRegressor
	Classifier    *predict.SoftmaxClassifier
	AgeEncoder    *encoding.Encoder
	RegionEncoder *encoding.Encoder
	GenderEncoder *encoding.Encoder
	Report        Report
}

// Train fits the three encoders and both models on an 80/20 split of the
// examples and evaluates on the held-out portion.
func Train(examples []Example) (*Result, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("train: %w", predict.ErrEmptyTrainingSet)
	}

	ageEnc, regionEnc, genderEnc := fitEncoders(examples)

	features := make([][]float64, 0, len(examples))
	for _, ex := range examples {
		vec, err := buildFeatures(ex.Input, ageEnc, regionEnc, genderEnc)
		if err != nil {
			return nil, err
		}
		features = append(features, vec)
	}

	trainIdx, testIdx := split(len(examples))

	trainX := make([][]float64, 0, len(trainIdx))
	trainScores := make([]float64, 0, len(trainIdx))
	trainCats := make([]model.RiskCategory, 0, len(trainIdx))
	for _, i := range trainIdx {
		trainX = append(trainX, features[i])
		trainScores = append(trainScores, examples[i].RiskScore)
		trainCats = append(trainCats, examples[i].RiskCategory)
	}

	regressor, err := predict.TrainLinearRegressor(trainX, trainScores)
	if err != nil {
		return nil, fmt.Errorf("train regressor: %w", err)
	}
	classifier, err := predict.TrainSoftmaxClassifier(trainX, trainCats)
	if err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}

	report, err := evaluate(regressor, classifier, features, examples, testIdx)
	if err != nil {
		return nil, err
	}
	report.TrainSize = len(trainIdx)
	report.TestSize = len(testIdx)
	report.TrainedAt = time.Now().UTC()

	return &Result{
		Regressor:     regressor,
		Classifier:    classifier,
		AgeEncoder:    ageEnc,
		RegionEncoder: regionEnc,
		GenderEncoder: genderEnc,
		Report:        report,
	}, nil
}

// fitEncoders fits the categorical encoders on every example, matching how
// the dataset's full column is encoded before splitting.
func fitEncoders(examples []Example) (age, region, gender *encoding.Encoder) {
	ages := make([]string, 0, len(examples))
	regions := make([]string, 0, len(examples))
	genders := make([]string, 0, len(examples))
	for _, ex := range examples {
		ages = append(ages, string(ex.Input.AgeGroup))
		regions = append(regions, ex.Input.Region)
		genders = append(genders, string(ex.Input.Gender))
	}
	return encoding.Fit("age_group", ages),
		encoding.Fit("region", regions),
		encoding.Fit("gender", genders)
}

func buildFeatures(in model.AssessmentInput, age, region, gender *encoding.Encoder) ([]float64, error) {
	ageCode, err := age.Encode(string(in.AgeGroup))
	if err != nil {
		return nil, err
	}
	regionCode, err := region.Encode(in.Region)
	if err != nil {
		return nil, err
	}
	genderCode, err := gender.Encode(string(in.Gender))
	if err != nil {
		return nil, err
	}
	return model.Features(in, ageCode, regionCode, genderCode), nil
}

// split shuffles indices deterministically and carves off the test share.
func split(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(shuffleSeed)) //nolint:gosec // deterministic split
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testSize := int(float64(n) * testShare)
	if testSize == 0 && n > 1 {
		testSize = 1
	}
	return idx[testSize:], idx[:testSize]
}

// evaluate computes regression MAE and classification accuracy on the
// held-out examples.
func evaluate(reg *predict.LinearRegressor, clf *predict.SoftmaxClassifier, features [][]float64, examples []Example, testIdx []int) (Report, error) {
	var report Report
	if len(testIdx) == 0 {
		return report, nil
	}

	var absErrSum float64
	var correct int
	for _, i := range testIdx {
		predicted, err := reg.Predict(features[i])
		if err != nil {
			return report, fmt.Errorf("evaluate regressor: %w", err)
		}
		absErrSum += math.Abs(predicted - examples[i].RiskScore)

		dist, err := clf.PredictProba(features[i])
		if err != nil {
			return report, fmt.Errorf("evaluate classifier: %w", err)
		}
		if best, _ := dist.Best(); best == examples[i].RiskCategory {
			correct++
		}
	}
	report.MAE = absErrSum / float64(len(testIdx))
	report.Accuracy = float64(correct) / float64(len(testIdx))
	return report, nil
}

// TrainFile loads a dataset from disk, trains, and persists the bundle.
func TrainFile(datasetPath, artifactsPath string) (*Result, error) {
	f, err := os.Open(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	examples, err := LoadCSV(f)
	if err != nil {
		return nil, err
	}

	result, err := Train(examples)
	if err != nil {
		return nil, err
	}

	bundle := artifacts.Bundle{
		RegressorParams:  result.Regressor.Params(),
		ClassifierParams: result.Classifier.Params(),
		AgeClasses:       result.AgeEncoder.Classes(),
		RegionClasses:    result.RegionEncoder.Classes(),
		GenderClasses:    result.GenderEncoder.Classes(),
		TrainedAt:        result.Report.TrainedAt,
	}
	if err := artifacts.Save(artifactsPath, bundle); err != nil {
		return nil, err
	}
	return result, nil
}
