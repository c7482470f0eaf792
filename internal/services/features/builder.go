package features

import (
	"errors"
	"fmt"
	"time"

	"FareFlex/internal/domain/models"
	"FareFlex/internal/services/fare"
)

// ErrMalformedDate marks the only non-recoverable builder input: a required
// date string that does not parse. Lead time cannot be computed without it.
var ErrMalformedDate = errors.New("malformed date")

const dateLayout = "2006-01-02"

// Defaults for optional numeric/categorical fields. They exist so Build never
// fails on partial input; user-facing validation belongs at the boundary.
const (
	DefaultSeatsRemaining  = 50
	DefaultDistance        = 1000.0
	DefaultDurationMinutes = 180.0
	DefaultSegments        = 1
	DefaultCarrier         = "DL"
	DefaultOrigin          = "JFK"
	DefaultDestination     = "LAX"
)

// Build turns a booking request into the fixed 23-field model input.
// Field order is owned by models.FeatureOrder; this function only fills the
// named struct, so it cannot reorder anything.
func Build(req models.BookingRequest) (models.FeatureVector, error) {
	searchDate, err := time.Parse(dateLayout, req.SearchDate)
	if err != nil {
		return models.FeatureVector{}, fmt.Errorf("%w: search date %q", ErrMalformedDate, req.SearchDate)
	}
	flightDate, err := time.Parse(dateLayout, req.FlightDate)
	if err != nil {
		return models.FeatureVector{}, fmt.Errorf("%w: flight date %q", ErrMalformedDate, req.FlightDate)
	}

	// Negative lead time clamps to zero: a flight date before the search
	// date is not an error, just zero lead.
	leadDays := int(flightDate.Sub(searchDate).Hours() / 24)
	if leadDays < 0 {
		leadDays = 0
	}

	wd := isoWeekday(flightDate)

	signals := fare.Parse(req.FareCode, fare.Context{
		DepartureHour: req.DepartureHour,
		FlightDate:    req.FlightDate,
	})
	if req.CabinCategoryOverride != nil {
		signals.CabinCategory = *req.CabinCategoryOverride
	}
	if req.PassengerTypeOverride != nil {
		signals.PassengerType = *req.PassengerTypeOverride
	}

	f := models.FeatureVector{
		DaysUntilFlight: leadDays,
		SeatsRemaining:  intOr(req.SeatsRemaining, DefaultSeatsRemaining),
		TotalDistance:   floatOr(req.TotalDistance, DefaultDistance),
		DurationMinutes: floatOr(req.DurationMinutes, DefaultDurationMinutes),
		NumSegments:     intOr(req.NumSegments, DefaultSegments),
		Carrier:         strOr(req.Carrier, DefaultCarrier),
		Origin:          strOr(req.Origin, DefaultOrigin),
		Destination:     strOr(req.Destination, DefaultDestination),
		FlightYear:      flightDate.Year(),
		FlightMonth:     int(flightDate.Month()),
		FlightWeekday:   wd,
		IsWeekend:       wd >= 6,
		IsHoliday:       req.IsHoliday,
		IsBasicEconomy:  req.IsBasicEconomy,
		IsNonStop:       req.IsNonStop,
		IsRefundable:    req.IsRefundable,
		Fare:            signals,
	}
	return f, nil
}

// Context derives the adjustment-factor view from built features plus market
// data. The base price is injected later, once the estimator has run.
func Context(f models.FeatureVector, market models.MarketData) models.PricingContext {
	return models.PricingContext{
		SeatsRemaining:   f.SeatsRemaining,
		TotalSeats:       market.TotalSeats,
		DaysUntilFlight:  f.DaysUntilFlight,
		FlightWeekday:    f.FlightWeekday,
		FlightMonth:      f.FlightMonth,
		IsWeekend:        f.IsWeekend,
		CompetitorPrices: market.CompetitorPrices,
		Season:           market.Season,
		CurrentPrice:     market.CurrentPrice,
	}
}

// isoWeekday converts Go's Sunday-first weekday to ISO 1=Monday .. 7=Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func intOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func floatOr(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func strOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
