package predict

import (
	"github.com/okian/nourish/internal/domain/model"
)

// Default regressor training constants.
const (
	defaultRegressorEpochs = 800
	defaultRegressorRate   = 0.05
	defaultRegressorL2     = 1e-4
)

// LinearParams is the persisted state of a trained regressor.
type LinearParams struct {
	Weights      []float64
	Intercept    float64
	FeatureMeans []float64
	FeatureStds  []float64
}

// LinearRegressor estimates the risk score as a linear function of the
// standardized feature vector. Immutable after construction; safe for
// unlimited concurrent readers.
type LinearRegressor struct {
	weights   []float64
	intercept float64
	sc        scaler
}

// NewLinearRegressor rebuilds a regressor from persisted parameters.
func NewLinearRegressor(p LinearParams) (*LinearRegressor, error) {
	if len(p.Weights) != model.FeatureCount ||
		len(p.FeatureMeans) != model.FeatureCount ||
		len(p.FeatureStds) != model.FeatureCount {
		return nil, ErrInvalidParams
	}
	return &LinearRegressor{
		weights:   append([]float64(nil), p.Weights...),
		intercept: p.Intercept,
		sc:        scaler{means: append([]float64(nil), p.FeatureMeans...), stds: append([]float64(nil), p.FeatureStds...)},
	}, nil
}

// Params exports the trained state for persistence.
func (m *LinearRegressor) Params() LinearParams {
	return LinearParams{
		Weights:      append([]float64(nil), m.weights...),
		Intercept:    m.intercept,
		FeatureMeans: append([]float64(nil), m.sc.means...),
		FeatureStds:  append([]float64(nil), m.sc.stds...),
	}
}

// Predict returns the score estimate for one feature vector.
func (m *LinearRegressor) Predict(features []float64) (float64, error) {
	if err := checkVector(features); err != nil {
		return 0, err
	}
	z := m.sc.transform(features)
	out := m.intercept
	for j, w := range m.weights {
		out += w * z[j]
	}
	return out, nil
}

// TrainLinearRegressor fits a ridge-regularized linear model by full-batch
// gradient descent. Training is deterministic: no shuffling, fixed epoch
// count, fixed learning rate.
func TrainLinearRegressor(x [][]float64, y []float64) (*LinearRegressor, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrEmptyTrainingSet
	}
	for _, row := range x {
		if err := checkVector(row); err != nil {
			return nil, err
		}
	}

	sc := fitScaler(x)
	z := make([][]float64, len(x))
	for i, row := range x {
		z[i] = sc.transform(row)
	}

	m := &LinearRegressor{
		weights: make([]float64, model.FeatureCount),
		sc:      sc,
	}
	n := float64(len(z))

	for epoch := 0; epoch < defaultRegressorEpochs; epoch++ {
		gradW := make([]float64, model.FeatureCount)
		var gradB float64
		for i, row := range z {
			pred := m.intercept
			for j, w := range m.weights {
				pred += w * row[j]
			}
			resid := pred - y[i]
			for j, v := range row {
				gradW[j] += resid * v
			}
			gradB += resid
		}
		for j := range m.weights {
			m.weights[j] -= defaultRegressorRate * (gradW[j]/n + defaultRegressorL2*m.weights[j])
		}
		m.intercept -= defaultRegressorRate * (gradB / n)
	}

	return m, nil
}
