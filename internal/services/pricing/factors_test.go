package pricing

import (
	"testing"

	"FareFlex/internal/domain/models"
)

func TestDemandFactor(t *testing.T) {
	cases := []struct {
		name string
		ctx  models.PricingContext
		want float64
	}{
		{"quiet midweek", models.PricingContext{FlightMonth: 3, FlightWeekday: 2, DaysUntilFlight: 30}, 0.0},
		{"weekend only", models.PricingContext{IsWeekend: true, FlightMonth: 3, FlightWeekday: 7, DaysUntilFlight: 30}, 0.10},
		{"summer month", models.PricingContext{FlightMonth: 7, FlightWeekday: 2, DaysUntilFlight: 30}, 0.15},
		{"winter holidays", models.PricingContext{FlightMonth: 12, FlightWeekday: 2, DaysUntilFlight: 30}, 0.15},
		{"friday departure", models.PricingContext{FlightMonth: 3, FlightWeekday: 5, DaysUntilFlight: 30}, 0.10},
		{"sweet-spot lead", models.PricingContext{FlightMonth: 3, FlightWeekday: 2, DaysUntilFlight: 14}, 0.10},
		{
			// weekend + summer + saturday + 7..21 lead stacks to 0.45, under the clip
			"everything stacks",
			models.PricingContext{IsWeekend: true, FlightMonth: 8, FlightWeekday: 6, DaysUntilFlight: 10},
			0.45,
		},
	}
	for _, c := range cases {
		if got := DemandFactor(c.ctx); !almost(got, c.want) {
			t.Errorf("%s: demand = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDemandSeasonalBonusesExclusive(t *testing.T) {
	// A month can be only one of summer/winter, but the switch guarantees a
	// single bonus even if the bracket sets ever overlapped.
	for _, m := range []int{1, 6, 7, 8, 12} {
		ctx := models.PricingContext{FlightMonth: m, FlightWeekday: 2, DaysUntilFlight: 30}
		if got := DemandFactor(ctx); !almost(got, 0.15) {
			t.Errorf("month %d: demand = %v, want single 0.15 bonus", m, got)
		}
	}
}

func TestInventoryFactorBrackets(t *testing.T) {
	cases := []struct {
		seats, total int
		want         float64
	}{
		{2, 180, 0.50},   // 1.1%, tightest bracket
		{9, 180, 0.40},   // 5.0%
		{18, 180, 0.25},  // 10%
		{27, 180, 0.15},  // 15%
		{50, 180, 0.0},   // 27.8%, no bracket
		{72, 180, -0.10}, // 40%
		{90, 180, -0.15}, // 50%
		{110, 180, -0.25},
		{180, 180, -0.25},
	}
	for _, c := range cases {
		ctx := models.PricingContext{SeatsRemaining: c.seats, TotalSeats: c.total}
		if got := InventoryFactor(ctx); !almost(got, c.want) {
			t.Errorf("seats %d/%d: inventory = %v, want %v", c.seats, c.total, got, c.want)
		}
	}
}

func TestInventoryFactorZeroCapacity(t *testing.T) {
	// Zero total seats resolves to the 50% midpoint: -0.15, never a panic.
	ctx := models.PricingContext{SeatsRemaining: 10, TotalSeats: 0}
	if got := InventoryFactor(ctx); !almost(got, -0.15) {
		t.Fatalf("inventory = %v, want neutral midpoint -0.15", got)
	}
}

func TestInventoryFactorMonotone(t *testing.T) {
	// For fixed capacity, fewer remaining seats never lowers the adjustment.
	prev := -1.0
	for seats := 180; seats >= 0; seats-- {
		ctx := models.PricingContext{SeatsRemaining: seats, TotalSeats: 180}
		got := InventoryFactor(ctx)
		if got < prev {
			t.Fatalf("seats %d: adjustment %v dropped below %v", seats, got, prev)
		}
		prev = got
	}
}

func TestTimeFactor(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{0, 0.50}, {1, 0.50}, {2, 0.30}, {3, 0.30},
		{7, 0.20}, {14, 0.10}, {15, 0.0}, {30, 0.0},
		{59, 0.0}, {60, -0.10}, {120, -0.10},
	}
	for _, c := range cases {
		ctx := models.PricingContext{DaysUntilFlight: c.days}
		if got := TimeFactor(ctx); !almost(got, c.want) {
			t.Errorf("days %d: time = %v, want %v", c.days, got, c.want)
		}
	}
}

func TestCompetitionFactor(t *testing.T) {
	comp := []float64{100, 110, 90} // mean 100
	cases := []struct {
		name string
		ctx  models.PricingContext
		want float64
	}{
		{"no competitors", models.PricingContext{BasePrice: 120}, 0.0},
		{"zero own price", models.PricingContext{CompetitorPrices: comp}, 0.0},
		{"well above market", models.PricingContext{CompetitorPrices: comp, BasePrice: 120}, -0.20},
		{"above market", models.PricingContext{CompetitorPrices: comp, BasePrice: 112}, -0.15},
		{"slightly above", models.PricingContext{CompetitorPrices: comp, BasePrice: 107}, -0.08},
		{"at market", models.PricingContext{CompetitorPrices: comp, BasePrice: 100}, 0.0},
		{"slightly below", models.PricingContext{CompetitorPrices: comp, BasePrice: 93}, 0.05},
		{"well below", models.PricingContext{CompetitorPrices: comp, BasePrice: 85}, 0.10},
		{
			"current price wins over base",
			models.PricingContext{CompetitorPrices: comp, BasePrice: 100, CurrentPrice: 120},
			-0.20,
		},
	}
	for _, c := range cases {
		if got := CompetitionFactor(c.ctx); !almost(got, c.want) {
			t.Errorf("%s: competition = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSeasonalityFactor(t *testing.T) {
	cases := map[string]float64{
		"peak_summer": 0.20,
		"peak_winter": 0.15,
		"shoulder":    0.05,
		"standard":    0.0,
		"off_season":  -0.10,
		"monsoon":     0.0, // unknown labels are neutral
		"":            0.0,
	}
	for season, want := range cases {
		ctx := models.PricingContext{Season: season}
		if got := SeasonalityFactor(ctx); !almost(got, want) {
			t.Errorf("season %q: got %v, want %v", season, got, want)
		}
	}
}

func almost(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
