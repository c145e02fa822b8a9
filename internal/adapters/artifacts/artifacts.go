// Package artifacts persists and loads the trained model bundle.
//
// One gob file carries both model parameter sets and the three fitted
// encoder class lists, so training output is loaded (or rejected) as a
// unit: a bundle whose encoders and models disagree about feature codes
// cannot exist.
package artifacts

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/predict"
)

// Bundle is the on-disk form of one training run's output.
type Bundle struct {
	RegressorParams  predict.LinearParams
	ClassifierParams predict.SoftmaxParams
	AgeClasses       []string
	RegionClasses    []string
	GenderClasses    []string
	TrainedAt        time.Time
}

// Loaded holds the reconstructed, read-only serving artifacts.
type Loaded struct {
	Regressor     *predict.LinearRegressor
	Classifier    *predict.SoftmaxClassifier
	AgeEncoder    *encoding.Encoder
	RegionEncoder *encoding.Encoder
	GenderEncoder *encoding.Encoder
	TrainedAt     time.Time
}

// Save writes the bundle to path. The write goes through a temp file and a
// rename so a crash cannot leave a truncated bundle behind.
func Save(path string, b Bundle) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode artifact bundle: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close artifact file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename artifact file: %w", err)
	}
	return nil
}

// Load reads the bundle at path and reconstructs the serving artifacts. Any
// failure wraps ErrModelUnavailable; callers treat it as fatal at process
// start, never as a per-request condition.
func Load(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrModelUnavailable, path, err)
	}
	defer f.Close()

	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrModelUnavailable, path, err)
	}

	reg, err := predict.NewLinearRegressor(b.RegressorParams)
	if err != nil {
		return nil, fmt.Errorf("%w: regressor params: %w", ErrModelUnavailable, err)
	}
	clf, err := predict.NewSoftmaxClassifier(b.ClassifierParams)
	if err != nil {
		return nil, fmt.Errorf("%w: classifier params: %w", ErrModelUnavailable, err)
	}
	ageEnc, err := encoding.FromClasses("age_group", b.AgeClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: age encoder: %w", ErrModelUnavailable, err)
	}
	regionEnc, err := encoding.FromClasses("region", b.RegionClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: region encoder: %w", ErrModelUnavailable, err)
	}
	genderEnc, err := encoding.FromClasses("gender", b.GenderClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: gender encoder: %w", ErrModelUnavailable, err)
	}

	return &Loaded{
		Regressor:     reg,
		Classifier:    clf,
		AgeEncoder:    ageEnc,
		RegionEncoder: regionEnc,
		GenderEncoder: genderEnc,
		TrainedAt:     b.TrainedAt,
	}, nil
}
