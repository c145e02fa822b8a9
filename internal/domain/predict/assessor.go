package predict

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/recommend"
)

// Output rounding and clamping constants.
const (
	roundFactor   = 10 // one decimal place
	confidencePct = 100
	scoreCeiling  = 100
)

// AssessorOption applies a configuration option to the Assessor.
type AssessorOption func(*Assessor)

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) AssessorOption {
	return func(a *Assessor) {
		if now != nil {
			a.now = now
		}
	}
}

// Assessor composes the full prediction operation: encode, build features,
// invoke both models, generate recommendations, stamp the result. It holds
// only immutably loaded state and is safe for unlimited concurrent callers.
type Assessor struct {
	regressor   Regressor
	classifier  Classifier
	ageEnc      *encoding.Encoder
	regionEnc   *encoding.Encoder
	genderEnc   *encoding.Encoder
	recommender *recommend.Engine
	now         func() time.Time
}

// NewAssessor wires the model pair, the three fitted encoders, and the
// recommendation engine into one assessment pipeline.
func NewAssessor(reg Regressor, clf Classifier, age, region, gender *encoding.Encoder, opts ...AssessorOption) *Assessor {
	a := &Assessor{
		regressor:   reg,
		classifier:  clf,
		ageEnc:      age,
		regionEnc:   region,
		genderEnc:   gender,
		recommender: recommend.New(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assess scores one subject. The operation is all-or-nothing: validation and
// encoding failures surface before any model runs, and no partial result is
// ever returned.
func (a *Assessor) Assess(_ context.Context, in model.AssessmentInput) (model.Assessment, error) {
	if err := in.Validate(); err != nil {
		return model.Assessment{}, err
	}

	ageCode, err := a.ageEnc.Encode(string(in.AgeGroup))
	if err != nil {
		return model.Assessment{}, err
	}
	regionCode, err := a.regionEnc.Encode(in.Region)
	if err != nil {
		return model.Assessment{}, err
	}
	genderCode, err := a.genderEnc.Encode(string(in.Gender))
	if err != nil {
		return model.Assessment{}, err
	}

	features := model.Features(in, ageCode, regionCode, genderCode)

	rawScore, err := a.regressor.Predict(features)
	if err != nil {
		return model.Assessment{}, fmt.Errorf("score regression failed: %w", err)
	}
	dist, err := a.classifier.PredictProba(features)
	if err != nil {
		return model.Assessment{}, fmt.Errorf("category classification failed: %w", err)
	}

	category, maxProb := dist.Best()
	score := round1(math.Max(0, math.Min(scoreCeiling, rawScore)))

	return model.Assessment{
		RiskScore:       score,
		RiskCategory:    category,
		Confidence:      round1(maxProb * confidencePct),
		Recommendations: a.recommender.Advise(in, score),
		Timestamp:       a.now(),
	}, nil
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*roundFactor) / roundFactor
}
