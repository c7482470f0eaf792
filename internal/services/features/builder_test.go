package features

import (
	"errors"
	"testing"

	"FareFlex/internal/domain/models"
)

func baseRequest() models.BookingRequest {
	return models.BookingRequest{
		SearchDate: "2026-06-01",
		FlightDate: "2026-07-01",
	}
}

func TestBuildLeadTimeAndCalendar(t *testing.T) {
	f, err := Build(baseRequest())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.DaysUntilFlight != 30 {
		t.Errorf("lead days = %d, want 30", f.DaysUntilFlight)
	}
	if f.FlightYear != 2026 || f.FlightMonth != 7 {
		t.Errorf("calendar = %d-%d, want 2026-7", f.FlightYear, f.FlightMonth)
	}
	// 2026-07-01 is a Wednesday.
	if f.FlightWeekday != 3 || f.IsWeekend {
		t.Errorf("weekday = %d (weekend=%v), want 3 (false)", f.FlightWeekday, f.IsWeekend)
	}
}

func TestBuildNegativeLeadClampsToZero(t *testing.T) {
	req := baseRequest()
	req.FlightDate = "2026-05-01" // before the search date
	f, err := Build(req)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.DaysUntilFlight != 0 {
		t.Errorf("lead days = %d, want 0", f.DaysUntilFlight)
	}
}

func TestBuildDefaults(t *testing.T) {
	f, err := Build(baseRequest())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.SeatsRemaining != DefaultSeatsRemaining {
		t.Errorf("seats = %d, want %d", f.SeatsRemaining, DefaultSeatsRemaining)
	}
	if f.TotalDistance != DefaultDistance || f.DurationMinutes != DefaultDurationMinutes {
		t.Errorf("distance/duration = %v/%v, want defaults", f.TotalDistance, f.DurationMinutes)
	}
	if f.NumSegments != DefaultSegments {
		t.Errorf("segments = %d, want %d", f.NumSegments, DefaultSegments)
	}
	if f.Carrier != DefaultCarrier || f.Origin != DefaultOrigin || f.Destination != DefaultDestination {
		t.Errorf("categoricals = %s/%s/%s, want defaults", f.Carrier, f.Origin, f.Destination)
	}
}

func TestBuildMalformedDates(t *testing.T) {
	req := baseRequest()
	req.SearchDate = "06/01/2026"
	if _, err := Build(req); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}

	req = baseRequest()
	req.FlightDate = ""
	if _, err := Build(req); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}
}

func TestBuildOverridesWinOverParsedSignals(t *testing.T) {
	cabin, pax := 5, models.PassengerInfant
	req := baseRequest()
	req.FareCode = "Y14CH" // parses to cabin 2, child
	req.CabinCategoryOverride = &cabin
	req.PassengerTypeOverride = &pax

	f, err := Build(req)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.Fare.CabinCategory != 5 {
		t.Errorf("cabin = %d, want override 5", f.Fare.CabinCategory)
	}
	if f.Fare.PassengerType != models.PassengerInfant {
		t.Errorf("passenger = %d, want override infant", f.Fare.PassengerType)
	}
	// Non-overridden parsed fields survive.
	if f.Fare.FareRuleNumber != 14 {
		t.Errorf("rule = %d, want 14", f.Fare.FareRuleNumber)
	}
}

func TestBuildEncodedWidthAndOrder(t *testing.T) {
	req := baseRequest()
	req.FareCode = "Y14"
	f, err := Build(req)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	vals := f.Encoded(func(column, value string) int { return 7 })
	if len(vals) != models.FeatureCount {
		t.Fatalf("width = %d, want %d", len(vals), models.FeatureCount)
	}
	if vals[0] != 30 {
		t.Errorf("position 0 (lead days) = %v, want 30", vals[0])
	}
	// The three categorical slots sit at positions 5..7.
	for i := 5; i <= 7; i++ {
		if vals[i] != 7 {
			t.Errorf("position %d should be encoder output, got %v", i, vals[i])
		}
	}
	if vals[16] != 2 {
		t.Errorf("position 16 (cabin) = %v, want 2", vals[16])
	}
	if vals[17] != 14 {
		t.Errorf("position 17 (rule) = %v, want 14", vals[17])
	}
}
