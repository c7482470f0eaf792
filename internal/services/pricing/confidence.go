package pricing

import (
	"FareFlex/internal/domain/models"
)

// popularRoutes is a small allowlist of high-traffic routes the model has
// seen plenty of training data for. Matched exactly or reversed.
var popularRoutes = map[string]struct{}{
	"JFK-LAX": {},
	"LAX-JFK": {},
	"ORD-LAX": {},
	"JFK-SFO": {},
	"ATL-LAX": {},
}

// Confidence scores prediction trustworthiness from four independent checks.
// A coarse heuristic, not a calibrated probability: route popularity (0/2),
// booking-window reasonableness (0/1/2), inventory sanity (0/1) and price
// plausibility (0/1). Deterministic for identical (features, base) input.
func Confidence(f models.FeatureVector, basePrice float64) string {
	score := 0

	route := f.Route()
	reversed := f.Destination + "-" + f.Origin
	if _, ok := popularRoutes[route]; ok {
		score += 2
	} else if _, ok := popularRoutes[reversed]; ok {
		score += 2
	}

	switch days := f.DaysUntilFlight; {
	case days >= 7 && days <= 60:
		score += 2
	case days >= 3 && days <= 90:
		score += 1
	}

	if f.SeatsRemaining >= 10 && f.SeatsRemaining <= 150 {
		score++
	}

	if basePrice >= 100 && basePrice <= 1500 {
		score++
	}

	switch {
	case score >= 4:
		return models.ConfidenceHigh
	case score >= 2:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
