package models

// Passenger type codes extracted from fare codes.
const (
	PassengerAdult  = 0
	PassengerChild  = 1
	PassengerInfant = 2
)

// Seasonality proxy codes.
const (
	SeasonLow      = 0
	SeasonStandard = 1
	SeasonHigh     = 2
)

// FareSignals is the structured view of an opaque fare basis code.
// A pure function of (code, context); see services/fare.
type FareSignals struct {
	CabinCategory    int  // ordinal 1-5, 5 = first
	FareRuleNumber   int  // first embedded digit run, 0 if none
	PassengerType    int  // PassengerAdult/Child/Infant
	SeasonalityProxy int  // SeasonLow/Standard/High
	HasNumericRule   bool
	IsNightFare      bool
	IsWeekendFare    bool
}

// DefaultFareSignals is returned for an empty or missing fare code.
func DefaultFareSignals() FareSignals {
	return FareSignals{
		CabinCategory:    1,
		FareRuleNumber:   0,
		PassengerType:    PassengerAdult,
		SeasonalityProxy: SeasonStandard,
	}
}
