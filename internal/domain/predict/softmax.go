package predict

import (
	"math"

	"github.com/okian/nourish/internal/domain/model"
)

// Default classifier training constants.
const (
	defaultClassifierEpochs = 600
	defaultClassifierRate   = 0.1
	defaultClassifierL2     = 1e-4
)

// SoftmaxParams is the persisted state of a trained classifier. Weight rows
// follow the severity order of model.RiskCategories().
type SoftmaxParams struct {
	Weights      [][]float64
	Intercepts   []float64
	FeatureMeans []float64
	FeatureStds  []float64
}

// SoftmaxClassifier predicts the risk category via multinomial logistic
// regression over the standardized feature vector. Immutable after
// construction; safe for unlimited concurrent readers.
type SoftmaxClassifier struct {
	weights    [][]float64 // one row per category
	intercepts []float64
	sc         scaler
}

// NewSoftmaxClassifier rebuilds a classifier from persisted parameters.
func NewSoftmaxClassifier(p SoftmaxParams) (*SoftmaxClassifier, error) {
	classes := len(model.RiskCategories())
	if len(p.Weights) != classes || len(p.Intercepts) != classes ||
		len(p.FeatureMeans) != model.FeatureCount || len(p.FeatureStds) != model.FeatureCount {
		return nil, ErrInvalidParams
	}
	weights := make([][]float64, classes)
	for k, row := range p.Weights {
		if len(row) != model.FeatureCount {
			return nil, ErrInvalidParams
		}
		weights[k] = append([]float64(nil), row...)
	}
	return &SoftmaxClassifier{
		weights:    weights,
		intercepts: append([]float64(nil), p.Intercepts...),
		sc:         scaler{means: append([]float64(nil), p.FeatureMeans...), stds: append([]float64(nil), p.FeatureStds...)},
	}, nil
}

// Params exports the trained state for persistence.
func (m *SoftmaxClassifier) Params() SoftmaxParams {
	weights := make([][]float64, len(m.weights))
	for k, row := range m.weights {
		weights[k] = append([]float64(nil), row...)
	}
	return SoftmaxParams{
		Weights:      weights,
		Intercepts:   append([]float64(nil), m.intercepts...),
		FeatureMeans: append([]float64(nil), m.sc.means...),
		FeatureStds:  append([]float64(nil), m.sc.stds...),
	}
}

// PredictProba returns the probability distribution over risk categories.
func (m *SoftmaxClassifier) PredictProba(features []float64) (Distribution, error) {
	if err := checkVector(features); err != nil {
		return nil, err
	}
	z := m.sc.transform(features)
	probs := m.softmax(z)

	dist := make(Distribution, len(probs))
	for k, c := range model.RiskCategories() {
		dist[c] = probs[k]
	}
	return dist, nil
}

// softmax computes class probabilities for one standardized row.
func (m *SoftmaxClassifier) softmax(row []float64) []float64 {
	logits := make([]float64, len(m.weights))
	maxLogit := math.Inf(-1)
	for k, w := range m.weights {
		l := m.intercepts[k]
		for j, v := range row {
			l += w[j] * v
		}
		logits[k] = l
		if l > maxLogit {
			maxLogit = l
		}
	}
	// Shift by the max logit for numerical stability.
	var sum float64
	probs := make([]float64, len(logits))
	for k, l := range logits {
		probs[k] = math.Exp(l - maxLogit)
		sum += probs[k]
	}
	for k := range probs {
		probs[k] /= sum
	}
	return probs
}

// TrainSoftmaxClassifier fits a multinomial logistic model by full-batch
// gradient descent on cross-entropy loss. Training is deterministic.
func TrainSoftmaxClassifier(x [][]float64, y []model.RiskCategory) (*SoftmaxClassifier, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrEmptyTrainingSet
	}
	for _, row := range x {
		if err := checkVector(row); err != nil {
			return nil, err
		}
	}

	classIndex := make(map[model.RiskCategory]int, len(model.RiskCategories()))
	for k, c := range model.RiskCategories() {
		classIndex[c] = k
	}
	labels := make([]int, len(y))
	for i, c := range y {
		k, ok := classIndex[c]
		if !ok {
			return nil, ErrInvalidParams
		}
		labels[i] = k
	}

	sc := fitScaler(x)
	z := make([][]float64, len(x))
	for i, row := range x {
		z[i] = sc.transform(row)
	}

	classes := len(model.RiskCategories())
	m := &SoftmaxClassifier{
		weights:    make([][]float64, classes),
		intercepts: make([]float64, classes),
		sc:         sc,
	}
	for k := range m.weights {
		m.weights[k] = make([]float64, model.FeatureCount)
	}
	n := float64(len(z))

	for epoch := 0; epoch < defaultClassifierEpochs; epoch++ {
		gradW := make([][]float64, classes)
		for k := range gradW {
			gradW[k] = make([]float64, model.FeatureCount)
		}
		gradB := make([]float64, classes)

		for i, row := range z {
			probs := m.softmax(row)
			for k := range probs {
				resid := probs[k]
				if k == labels[i] {
					resid -= 1
				}
				for j, v := range row {
					gradW[k][j] += resid * v
				}
				gradB[k] += resid
			}
		}

		for k := range m.weights {
			for j := range m.weights[k] {
				m.weights[k][j] -= defaultClassifierRate * (gradW[k][j]/n + defaultClassifierL2*m.weights[k][j])
			}
			m.intercepts[k] -= defaultClassifierRate * (gradB[k] / n)
		}
	}

	return m, nil
}
