package predict

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidFeatureVector = errors.New("invalid feature vector")
	ErrInvalidParams        = errors.New("invalid model parameters")
	ErrEmptyTrainingSet     = errors.New("empty training set")
)

// InvalidFeatureVectorError reports a malformed model input.
type InvalidFeatureVectorError struct {
	Want int
	Got  int
}

func (e *InvalidFeatureVectorError) Error() string {
	return fmt.Sprintf("invalid feature vector: want length %d, got %d", e.Want, e.Got)
}

func (e *InvalidFeatureVectorError) Unwrap() error { return ErrInvalidFeatureVector }
