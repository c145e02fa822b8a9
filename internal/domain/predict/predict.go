// Package predict defines the predictive model pair and the composed
// assessment operation.
//
// Two independently trained models share the same fixed-order feature
// vector: a regressor estimating the continuous risk score and a classifier
// producing a category with per-class probabilities. The shipped
// implementations are a ridge-regularized linear regressor and a multinomial
// softmax classifier, both trained offline by gradient descent and loaded
// read-only at serving time.
package predict

import (
	"github.com/okian/nourish/internal/domain/model"
)

// Regressor predicts a continuous risk score estimate from a feature vector.
type Regressor interface {
	// Predict returns the score estimate. Malformed vectors fail with
	// ErrInvalidFeatureVector.
	Predict(features []float64) (float64, error)
}

// Classifier predicts a risk category with a probability distribution.
type Classifier interface {
	// PredictProba returns the per-class probabilities. Malformed vectors
	// fail with ErrInvalidFeatureVector.
	PredictProba(features []float64) (Distribution, error)
}

// Distribution maps each risk category to its predicted probability.
type Distribution map[model.RiskCategory]float64

// Best returns the most probable category and its probability. Ties break
// toward the less severe band by scanning categories in severity order and
// requiring a strict improvement.
func (d Distribution) Best() (model.RiskCategory, float64) {
	best := model.RiskLow
	var bestP float64
	for _, c := range model.RiskCategories() {
		if p := d[c]; p > bestP {
			best, bestP = c, p
		}
	}
	return best, bestP
}

// checkVector validates the feature vector shape shared by both models.
func checkVector(features []float64) error {
	if len(features) != model.FeatureCount {
		return &InvalidFeatureVectorError{Want: model.FeatureCount, Got: len(features)}
	}
	return nil
}
