package model

import (
	"context"
	"fmt"
	"time"

	"FareFlex/internal/domain/models"
	"FareFlex/pkg/config"
	xhttp "FareFlex/pkg/http"
)

// HTTPEstimator delegates inference to an external model server that hosts
// the trained regressor behind a JSON API.
type HTTPEstimator struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPEstimator builds a model-server client with timeout and base URL
// from config.
func NewHTTPEstimator(cfg *config.Config) *HTTPEstimator {
	timeout := cfg.Model.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPEstimator{
		baseURL: cfg.Model.URL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type inferReq struct {
	Features []float64 `json:"features"`
}

type inferResp struct {
	Price float64 `json:"price"`
}

// Infer posts the encoded feature vector to the model server and returns its
// price estimate.
func (e *HTTPEstimator) Infer(ctx context.Context, feats [models.FeatureCount]float64) (float64, error) {
	var resp inferResp
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     e.baseURL + "/predict",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    inferReq{Features: feats[:]},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("post predict: %w", err)
	}
	if resp.Price < 0 {
		return 0, fmt.Errorf("model server returned negative price %.2f", resp.Price)
	}
	return resp.Price, nil
}
