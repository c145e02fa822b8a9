package predict

import "math"

// minStd guards against zero-variance columns blowing up standardization.
const minStd = 1e-9

// scaler standardizes feature columns to zero mean and unit variance. It is
// fit on the training matrix and reused verbatim at inference time; both
// models carry their own copy in their persisted parameters.
type scaler struct {
	means []float64
	stds  []float64
}

// fitScaler computes per-column means and standard deviations.
func fitScaler(x [][]float64) scaler {
	cols := len(x[0])
	s := scaler{
		means: make([]float64, cols),
		stds:  make([]float64, cols),
	}
	n := float64(len(x))

	for _, row := range x {
		for j, v := range row {
			s.means[j] += v
		}
	}
	for j := range s.means {
		s.means[j] /= n
	}

	for _, row := range x {
		for j, v := range row {
			d := v - s.means[j]
			s.stds[j] += d * d
		}
	}
	for j := range s.stds {
		s.stds[j] = math.Sqrt(s.stds[j] / n)
		if s.stds[j] < minStd {
			s.stds[j] = 1
		}
	}

	return s
}

// transform standardizes one row.
func (s scaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.means[j]) / s.stds[j]
	}
	return out
}
