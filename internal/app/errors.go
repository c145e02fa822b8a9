package service

import (
	"errors"

	"github.com/okian/nourish/internal/adapters/artifacts"
	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/predict"
)

// errorKind maps a domain error to a stable metric label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, encoding.ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, model.ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, predict.ErrInvalidFeatureVector):
		return "invalid_feature_vector"
	case errors.Is(err, artifacts.ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "internal"
	}
}
