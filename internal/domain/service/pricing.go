package service

import (
	"context"

	"FareFlex/internal/domain/models"
)

// Estimator is the opaque base-price regressor. It consumes the encoded
// feature vector in trained column order and returns currency units.
type Estimator interface {
	Infer(ctx context.Context, features [models.FeatureCount]float64) (float64, error)
}

// Encoders maps categorical string columns to trained integer codes.
// Unseen categories encode to 0; encoding never fails a request.
type Encoders interface {
	Encode(column, value string) int
	Categories(column string) []string
	Columns() []string
}
