package risk

import (
	"math/rand"

	"github.com/okian/nourish/internal/domain/model"
)

// Default labeler configuration constants.
const (
	defaultNoiseStd   = 5
	defaultNoiseSeed  = 42
	disabledNoiseStd  = 0
	minNoiseStdAllowd = 0
)

// Option applies a configuration option to the Labeler.
type Option func(*Labeler)

// WithNoiseStd sets the Gaussian noise standard deviation. Zero disables
// noise entirely.
func WithNoiseStd(std float64) Option {
	return func(l *Labeler) {
		if std >= minNoiseStdAllowd {
			l.noiseStd = std
		}
	}
}

// WithSeed fixes the noise source for reproducible dataset synthesis.
func WithSeed(seed int64) Option {
	return func(l *Labeler) {
		l.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible synthesis
	}
}

// Labeler produces ground-truth labels for synthetic training data. It adds
// Gaussian noise (mean 0) to the formula total so the trained models do not
// degenerate into a lookup table. Noise exists only here; inference-time
// evaluation uses Score, which is noise-free.
type Labeler struct {
	noiseStd float64
	rng      *rand.Rand
}

// NewLabeler creates a Labeler with configuration options.
func NewLabeler(opts ...Option) *Labeler {
	l := &Labeler{
		noiseStd: defaultNoiseStd,
		rng:      rand.New(rand.NewSource(defaultNoiseSeed)), //nolint:gosec // deterministic seed for reproducible synthesis
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Label evaluates the formula, perturbs the unclamped total with noise, and
// returns the clamped score with its category. The category is derived from
// the noisy score, so no label pair can violate the threshold invariant.
func (l *Labeler) Label(age model.AgeGroup, b model.Behavior) (float64, model.RiskCategory) {
	total := Factors(age, b).Sum()
	if l.noiseStd > disabledNoiseStd {
		total += l.rng.NormFloat64() * l.noiseStd
	}
	score := clamp(total)
	return score, Categorize(score)
}
