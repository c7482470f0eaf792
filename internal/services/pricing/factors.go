package pricing

import (
	"FareFlex/internal/domain/models"
)

// The five adjustment factors. Each is a pure function of the pricing context
// returning a raw (unweighted) ratio; the engine applies weights and bounds.

// DemandFactor scores demand pressure, clipped to [-0.20, 0.50].
// Summer and winter-holiday months are mutually exclusive: a month can earn
// at most one seasonal bonus.
func DemandFactor(ctx models.PricingContext) float64 {
	score := 0.0
	if ctx.IsWeekend {
		score += 0.10
	}
	switch ctx.FlightMonth {
	case 6, 7, 8: // summer
		score += 0.15
	case 12, 1: // winter holidays
		score += 0.15
	}
	// ISO weekday: 5=Friday, 6=Saturday.
	if ctx.FlightWeekday == 5 || ctx.FlightWeekday == 6 {
		score += 0.10
	}
	if ctx.DaysUntilFlight >= 7 && ctx.DaysUntilFlight <= 21 {
		score += 0.10
	}
	return clip(score, -0.20, 0.50)
}

// inventoryBrackets maps percentage of seats remaining to an adjustment,
// ordered tightest scarcity first. Brackets must stay non-overlapping;
// firstBracket gives first-match-wins semantics.
var inventoryBrackets = []bracket{
	{le, 2, 0.50},
	{le, 5, 0.40},
	{le, 10, 0.25},
	{le, 15, 0.15},
	{ge, 60, -0.25},
	{ge, 50, -0.15},
	{ge, 40, -0.10},
}

// InventoryFactor rewards scarcity: few seats left raises price, a near-empty
// cabin discounts to fill. Zero capacity resolves to the neutral 50% midpoint
// instead of dividing by zero.
func InventoryFactor(ctx models.PricingContext) float64 {
	remainingPct := 50.0
	if ctx.TotalSeats > 0 {
		remainingPct = float64(ctx.SeatsRemaining) / float64(ctx.TotalSeats) * 100
	}
	return firstBracket(remainingPct, inventoryBrackets, 0.0)
}

var timeBrackets = []bracket{
	{le, 1, 0.50},
	{le, 3, 0.30},
	{le, 7, 0.20},
	{le, 14, 0.10},
	{ge, 60, -0.10},
}

// TimeFactor surges last-minute bookings and discounts far-out ones.
func TimeFactor(ctx models.PricingContext) float64 {
	return firstBracket(float64(ctx.DaysUntilFlight), timeBrackets, 0.0)
}

// CompetitionFactor positions against the mean competitor fare: above market
// lowers price, below market raises it slightly. No competitor data or a zero
// own-price yields no signal.
func CompetitionFactor(ctx models.PricingContext) float64 {
	if len(ctx.CompetitorPrices) == 0 {
		return 0.0
	}
	ourPrice := ctx.BasePrice
	if ctx.CurrentPrice != 0 {
		ourPrice = ctx.CurrentPrice
	}
	if ourPrice == 0 {
		return 0.0
	}

	sum := 0.0
	for _, p := range ctx.CompetitorPrices {
		sum += p
	}
	mean := sum / float64(len(ctx.CompetitorPrices))
	if mean == 0 {
		return 0.0
	}
	diffPct := (ourPrice - mean) / mean

	switch {
	case diffPct > 0.15:
		return -0.20
	case diffPct > 0.10:
		return -0.15
	case diffPct > 0.05:
		return -0.08
	case diffPct < -0.10:
		return 0.10
	case diffPct < -0.05:
		return 0.05
	}
	return 0.0
}

// seasonTable maps season labels to direct adjustments; unknown labels are
// neutral.
var seasonTable = map[string]float64{
	"peak_summer": 0.20,
	"peak_winter": 0.15,
	"shoulder":    0.05,
	"standard":    0.0,
	"off_season":  -0.10,
}

// SeasonalityFactor looks up the supplied season label.
func SeasonalityFactor(ctx models.PricingContext) float64 {
	return seasonTable[ctx.Season]
}

// Evaluate runs all five factors against the context.
func Evaluate(ctx models.PricingContext) models.FactorSet {
	return models.FactorSet{
		Demand:      DemandFactor(ctx),
		Competition: CompetitionFactor(ctx),
		Inventory:   InventoryFactor(ctx),
		Time:        TimeFactor(ctx),
		Seasonality: SeasonalityFactor(ctx),
	}
}
