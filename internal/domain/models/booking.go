package models

// BookingRequest is the immutable per-call input to the pricing core.
// Optional fields resolve to documented defaults inside the feature builder;
// only the two date strings are hard requirements.
type BookingRequest struct {
	SearchDate string // YYYY-MM-DD
	FlightDate string // YYYY-MM-DD

	Origin      string
	Destination string
	Carrier     string

	SeatsRemaining  int
	TotalDistance   float64 // miles
	DurationMinutes float64
	NumSegments     int

	DepartureHour *int // 0-23, nil when unknown

	IsBasicEconomy bool
	IsNonStop      bool
	IsRefundable   bool
	IsHoliday      bool

	FareCode string

	// Explicit overrides win over values parsed from the fare code.
	CabinCategoryOverride *int
	PassengerTypeOverride *int
}

// MarketData carries the optional real-time market signals accompanying a
// pricing call: competitor fares, aircraft capacity and a season label.
type MarketData struct {
	CompetitorPrices []float64
	TotalSeats       int
	Season           string
	// CurrentPrice, when set, replaces the model estimate as "our price"
	// inside the competition factor.
	CurrentPrice float64
}
