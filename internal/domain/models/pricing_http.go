package models

// Requests for pricing HTTP endpoints. Defined in domain for consistency and reuse.

type QuoteHTTPRequest struct {
	SearchDate string `json:"searchDate" validate:"required,datetime=2006-01-02"`
	FlightDate string `json:"flightDate" validate:"required,datetime=2006-01-02"`

	Origin      string `json:"startingAirport" validate:"required,len=3,alpha"`
	Destination string `json:"destinationAirport" validate:"required,len=3,alpha"`
	Carrier     string `json:"carrier" default:"DL" validate:"min=2,max=3"`

	SeatsRemaining  int     `json:"seatsRemaining" default:"50" validate:"gte=0,lte=500"`
	TotalDistance   float64 `json:"totalTravelDistance" default:"1000" validate:"gte=0"`
	DurationMinutes float64 `json:"durationMinutes" default:"180" validate:"gte=0"`
	NumSegments     int     `json:"numSegments" default:"1" validate:"gte=1,lte=6"`

	DepartureHour *int `json:"departureHour,omitempty" validate:"omitempty,gte=0,lte=23"`

	IsBasicEconomy bool `json:"isBasicEconomy"`
	IsNonStop      bool `json:"isNonStop"`
	IsRefundable   bool `json:"isRefundable"`
	IsHoliday      bool `json:"isHoliday"`

	FareCode string `json:"fareBasisCode" default:"Y14"`

	CabinCategory *int `json:"cabinCategory,omitempty" validate:"omitempty,gte=1,lte=5"`
	PassengerType *int `json:"passengerType,omitempty" validate:"omitempty,gte=0,lte=2"`

	CompetitorPrices []float64 `json:"competitorPrices,omitempty" validate:"omitempty,dive,gte=0"`
	TotalSeats       int       `json:"totalSeats" default:"180" validate:"gte=0,lte=1000"`
	Season           string    `json:"season" default:"standard" validate:"oneof=peak_summer peak_winter shoulder standard off_season"`
}

// ToBooking converts the validated DTO into the core request value.
func (r *QuoteHTTPRequest) ToBooking() BookingRequest {
	return BookingRequest{
		SearchDate:            r.SearchDate,
		FlightDate:            r.FlightDate,
		Origin:                r.Origin,
		Destination:           r.Destination,
		Carrier:               r.Carrier,
		SeatsRemaining:        r.SeatsRemaining,
		TotalDistance:         r.TotalDistance,
		DurationMinutes:       r.DurationMinutes,
		NumSegments:           r.NumSegments,
		DepartureHour:         r.DepartureHour,
		IsBasicEconomy:        r.IsBasicEconomy,
		IsNonStop:             r.IsNonStop,
		IsRefundable:          r.IsRefundable,
		IsHoliday:             r.IsHoliday,
		FareCode:              r.FareCode,
		CabinCategoryOverride: r.CabinCategory,
		PassengerTypeOverride: r.PassengerType,
	}
}

// ToMarket extracts the market signals from the DTO.
func (r *QuoteHTTPRequest) ToMarket() MarketData {
	return MarketData{
		CompetitorPrices: r.CompetitorPrices,
		TotalSeats:       r.TotalSeats,
		Season:           r.Season,
	}
}

type BatchQuoteHTTPRequest struct {
	Requests []QuoteHTTPRequest `json:"requests" validate:"required,min=1,max=500,dive"`
}

// QuoteHTTPResponse mirrors one priced itinerary.
type QuoteHTTPResponse struct {
	Success            bool               `json:"success"`
	BasePrice          float64            `json:"ml_base_price"`
	FinalPrice         float64            `json:"dynamic_price"`
	TotalAdjustmentPct float64            `json:"total_adjustment"`
	Confidence         string             `json:"confidence"`
	Factors            map[string]string  `json:"factors"`
	Breakdown          map[string]float64 `json:"breakdown"`
	Route              string             `json:"route"`
	FlightDate         string             `json:"flight_date"`
	FeaturesSummary    map[string]any     `json:"features_summary,omitempty"`
	Error              string             `json:"error,omitempty"`
}

// BatchQuoteHTTPResponse aggregates per-item outcomes; one failure never
// aborts the batch.
type BatchQuoteHTTPResponse struct {
	Total      int                 `json:"total"`
	Successful int                 `json:"successful"`
	Results    []QuoteHTTPResponse `json:"results"`
}
