package models

// PricingContext is the derived view the adjustment factors operate on.
// BasePrice is filled in after estimation; the competition factor needs it.
type PricingContext struct {
	SeatsRemaining  int
	TotalSeats      int
	DaysUntilFlight int
	FlightWeekday   int // ISO: 1=Monday .. 7=Sunday
	FlightMonth     int
	IsWeekend       bool

	CompetitorPrices []float64
	Season           string

	BasePrice    float64
	CurrentPrice float64 // optional explicit price; wins over BasePrice for competition
}

// FactorWeights weighs the five adjustment ratios. The defaults sum to 1.0 by
// convention; nothing enforces it.
type FactorWeights struct {
	Demand      float64 `yaml:"demand"`
	Competition float64 `yaml:"competition"`
	Inventory   float64 `yaml:"inventory"`
	Time        float64 `yaml:"time"`
	Seasonality float64 `yaml:"seasonality"`
}

// DefaultFactorWeights returns the tuned production weights.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		Demand:      0.30,
		Competition: 0.25,
		Inventory:   0.20,
		Time:        0.15,
		Seasonality: 0.10,
	}
}

// FactorSet holds the five raw (unweighted) adjustment ratios.
type FactorSet struct {
	Demand      float64 `json:"demand"`
	Competition float64 `json:"competition"`
	Inventory   float64 `json:"inventory"`
	Time        float64 `json:"time"`
	Seasonality float64 `json:"seasonality"`
}

// Confidence labels. Coarse heuristic tags, not calibrated probabilities.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// PricingResult is the output of one pricing call.
//
// TotalAdjustmentPct reflects the realized adjustment (computed after clipping
// and rounding) while Breakdown is derived from the pre-clip weighted ratios,
// so the breakdown sum can disagree with the realized total when the safety
// bounds were hit. Known reporting inconsistency, kept deliberately.
type PricingResult struct {
	BasePrice          float64           `json:"base_price"`
	FinalPrice         float64           `json:"final_price"`
	TotalAdjustmentPct float64           `json:"total_adjustment_pct"`
	Factors            FactorSet         `json:"factors"`
	FactorsApplied     map[string]string `json:"factors_applied"`
	Breakdown          map[string]float64 `json:"breakdown"`
	Confidence         string            `json:"confidence"`
	Features           FeatureVector     `json:"-"`
}
