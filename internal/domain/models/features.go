package models

// FeatureCount is the width of the model's trained schema.
const FeatureCount = 23

// Categorical string columns resolved through the external label encoders.
const (
	ColCarrier     = "AIRLINE_CODE"
	ColOrigin      = "ORIGIN_CITY"
	ColDestination = "DEST_CITY"
)

// FeatureOrder is the fixed column order the price model was trained against.
// The order is load-bearing: reordering silently corrupts predictions.
var FeatureOrder = [FeatureCount]string{
	"DAYS_UNTIL_FLIGHT", "SEATS_REMAINING", "TOTAL_TRAVEL_DISTANCE",
	"TRAVEL_DURATION_MINUTES", "NUM_SEGMENTS", ColCarrier,
	ColOrigin, ColDestination, "FLIGHT_YEAR", "FLIGHT_MONTH",
	"FLIGHT_DAY_OF_WEEK", "IS_WEEKEND", "IS_HOLIDAY",
	"IS_BASIC_ECONOMY", "IS_NON_STOP", "IS_REFUNDABLE",
	"cabin_category", "fare_rule_number", "passenger_type",
	"seasonality_proxy", "has_numeric_rule", "is_night_fare_proxy",
	"is_weekend_fare_proxy",
}

// FeatureVector holds the 23 model inputs. The three categorical columns stay
// raw strings until encoded; everything else is numeric or boolean.
// Weekday is ISO style: 1=Monday .. 7=Sunday.
type FeatureVector struct {
	DaysUntilFlight int
	SeatsRemaining  int
	TotalDistance   float64
	DurationMinutes float64
	NumSegments     int

	Carrier     string
	Origin      string
	Destination string

	FlightYear    int
	FlightMonth   int
	FlightWeekday int
	IsWeekend     bool
	IsHoliday     bool

	IsBasicEconomy bool
	IsNonStop      bool
	IsRefundable   bool

	Fare FareSignals
}

// Encoded flattens the vector into the trained column order. encode resolves
// the categorical string columns; unseen categories are expected to map to 0.
func (f FeatureVector) Encoded(encode func(column, value string) int) [FeatureCount]float64 {
	return [FeatureCount]float64{
		float64(f.DaysUntilFlight),
		float64(f.SeatsRemaining),
		f.TotalDistance,
		f.DurationMinutes,
		float64(f.NumSegments),
		float64(encode(ColCarrier, f.Carrier)),
		float64(encode(ColOrigin, f.Origin)),
		float64(encode(ColDestination, f.Destination)),
		float64(f.FlightYear),
		float64(f.FlightMonth),
		float64(f.FlightWeekday),
		b2f(f.IsWeekend),
		b2f(f.IsHoliday),
		b2f(f.IsBasicEconomy),
		b2f(f.IsNonStop),
		b2f(f.IsRefundable),
		float64(f.Fare.CabinCategory),
		float64(f.Fare.FareRuleNumber),
		float64(f.Fare.PassengerType),
		float64(f.Fare.SeasonalityProxy),
		b2f(f.Fare.HasNumericRule),
		b2f(f.Fare.IsNightFare),
		b2f(f.Fare.IsWeekendFare),
	}
}

// Route returns the "ORIGIN-DEST" pair used by the confidence scorer.
func (f FeatureVector) Route() string {
	return f.Origin + "-" + f.Destination
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
