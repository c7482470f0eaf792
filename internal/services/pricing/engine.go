package pricing

import (
	"fmt"
	"math"

	"FareFlex/internal/domain/models"
)

// Safety bounds on the final price relative to the model estimate. The clip
// is the principal invariant protecting against runaway pricing: no combined
// factor extreme may move the price below -30% or above +50% of base.
const (
	MinPriceRatio = 0.70
	MaxPriceRatio = 1.50
)

// Engine combines a base price estimate with the weighted adjustment factors.
// Stateless and safe for concurrent use.
type Engine struct {
	weights models.FactorWeights
}

// EngineOption configures Engine.
type EngineOption func(*Engine)

// WithWeights overrides the default factor weights.
func WithWeights(w models.FactorWeights) EngineOption {
	return func(e *Engine) { e.weights = w }
}

// NewEngine creates a pricing engine with default weights.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{weights: models.DefaultFactorWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the configured factor weights.
func (e *Engine) Weights() models.FactorWeights { return e.weights }

// Price evaluates the factors, applies weights and safety bounds and rounds
// to the nearest whole currency unit. The realized adjustment percentage is
// computed from the clipped, rounded price, while the per-factor breakdown
// uses the pre-clip ratios; the two diverge when bounds are hit.
func (e *Engine) Price(base float64, ctx models.PricingContext, feats models.FeatureVector) models.PricingResult {
	ctx.BasePrice = base
	factors := Evaluate(ctx)

	w := e.weights
	totalAdj := factors.Demand*w.Demand +
		factors.Competition*w.Competition +
		factors.Inventory*w.Inventory +
		factors.Time*w.Time +
		factors.Seasonality*w.Seasonality

	adjusted := base * (1 + totalAdj)
	final := math.Round(clip(adjusted, base*MinPriceRatio, base*MaxPriceRatio))

	realizedPct := 0.0
	if base != 0 {
		realizedPct = (final - base) / base * 100
	}

	return models.PricingResult{
		BasePrice:          base,
		FinalPrice:         final,
		TotalAdjustmentPct: realizedPct,
		Factors:            factors,
		FactorsApplied: map[string]string{
			"demand":      signedPct(factors.Demand),
			"competition": signedPct(factors.Competition),
			"inventory":   signedPct(factors.Inventory),
			"time":        signedPct(factors.Time),
			"seasonality": signedPct(factors.Seasonality),
		},
		Breakdown: map[string]float64{
			"base":            base,
			"demand_adj":      base * factors.Demand * w.Demand,
			"competition_adj": base * factors.Competition * w.Competition,
			"inventory_adj":   base * factors.Inventory * w.Inventory,
			"time_adj":        base * factors.Time * w.Time,
			"seasonality_adj": base * factors.Seasonality * w.Seasonality,
		},
		Confidence: Confidence(feats, base),
		Features:   feats,
	}
}

// Clipped reports whether the weighted adjustment would have escaped the
// safety bounds for the given base price, and in which direction.
func (e *Engine) Clipped(result models.PricingResult) (bool, string) {
	lo := math.Round(result.BasePrice * MinPriceRatio)
	hi := math.Round(result.BasePrice * MaxPriceRatio)
	switch result.FinalPrice {
	case lo:
		return true, "floor"
	case hi:
		return true, "ceiling"
	}
	return false, ""
}

func signedPct(ratio float64) string {
	return fmt.Sprintf("%+.1f%%", ratio*100)
}
