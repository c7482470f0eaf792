package fare

import (
	"testing"

	"FareFlex/internal/domain/models"
)

func TestParseEmptyCodeDefaults(t *testing.T) {
	got := Parse("", Context{})
	want := models.DefaultFareSignals()
	if got != want {
		t.Fatalf("expected default signals, got %+v", got)
	}
}

func TestParseCabinMapping(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"F00", 5}, {"A1", 5}, {"P9", 5},
		{"J3", 4}, {"C", 4}, {"D", 4}, {"I", 4}, {"Z", 4},
		{"W7", 3},
		{"Y14", 2}, {"B2", 2}, {"M", 2}, {"H8", 2},
		{"Q22", 1}, {"X", 1}, {"7K", 1},
	}
	for _, c := range cases {
		if got := Parse(c.code, Context{}).CabinCategory; got != c.want {
			t.Errorf("Parse(%q) cabin = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestParseLowercaseCode(t *testing.T) {
	s := Parse("y14ch", Context{})
	if s.CabinCategory != 2 {
		t.Errorf("cabin = %d, want 2", s.CabinCategory)
	}
	if s.PassengerType != models.PassengerChild {
		t.Errorf("passenger = %d, want child", s.PassengerType)
	}
}

func TestParseFareRuleNumber(t *testing.T) {
	cases := []struct {
		code    string
		want    int
		hasRule bool
	}{
		{"Y14", 14, true},
		{"Y14X7", 14, true}, // first run only
		{"QOWFLEX", 0, false},
		{"007A", 7, true},
	}
	for _, c := range cases {
		s := Parse(c.code, Context{})
		if s.FareRuleNumber != c.want || s.HasNumericRule != c.hasRule {
			t.Errorf("Parse(%q) rule = (%d,%v), want (%d,%v)",
				c.code, s.FareRuleNumber, s.HasNumericRule, c.want, c.hasRule)
		}
	}
}

func TestParsePassengerTypePrecedence(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"YCH25", models.PassengerChild},
		{"YIN90", models.PassengerInfant},
		{"YCHIN", models.PassengerChild}, // child check precedes infant
		{"Y26", models.PassengerAdult},
	}
	for _, c := range cases {
		if got := Parse(c.code, Context{}).PassengerType; got != c.want {
			t.Errorf("Parse(%q) passenger = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestParseSeasonalityEscapeHatch(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"YH2", models.SeasonHigh},
		{"QL9", models.SeasonLow},
		{"LH2", models.SeasonStandard}, // "LH" unit overrides both letters
		{"Y26", models.SeasonStandard},
	}
	for _, c := range cases {
		if got := Parse(c.code, Context{}).SeasonalityProxy; got != c.want {
			t.Errorf("Parse(%q) seasonality = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestParseNightFare(t *testing.T) {
	hour := func(h int) *int { return &h }

	if !Parse("Y1", Context{DepartureHour: hour(23)}).IsNightFare {
		t.Errorf("23h departure should be a night fare")
	}
	if !Parse("Y1", Context{DepartureHour: hour(5)}).IsNightFare {
		t.Errorf("5h departure should be a night fare")
	}
	if Parse("Y1N", Context{DepartureHour: hour(12)}).IsNightFare {
		t.Errorf("explicit hour must win over the N substring")
	}
	if !Parse("Y1N", Context{}).IsNightFare {
		t.Errorf("without an hour the N substring applies")
	}
}

func TestParseWeekendFare(t *testing.T) {
	// 2026-09-05 is a Saturday, 2026-09-07 a Monday.
	if !Parse("Y1", Context{FlightDate: "2026-09-05"}).IsWeekendFare {
		t.Errorf("saturday flight should flag weekend fare")
	}
	if Parse("Y1WE", Context{FlightDate: "2026-09-07"}).IsWeekendFare {
		t.Errorf("a parsed weekday date wins over the WE substring")
	}
	if !Parse("Y1WK", Context{FlightDate: "not-a-date"}).IsWeekendFare {
		t.Errorf("unparseable date should fall back to the WK substring")
	}
	if Parse("Y1", Context{}).IsWeekendFare {
		t.Errorf("no date and no substring means no weekend fare")
	}
}

func TestParseDeterministic(t *testing.T) {
	ctx := Context{FlightDate: "2026-07-04"}
	a := Parse("JH7WE", ctx)
	for i := 0; i < 10; i++ {
		if b := Parse("JH7WE", ctx); b != a {
			t.Fatalf("parse not deterministic: %+v vs %+v", a, b)
		}
	}
}
