package fare

import (
	"strings"
	"time"
	"unicode"

	"FareFlex/internal/domain/models"
)

// Context carries the optional flight details that refine fare-code parsing.
// When present they take precedence over the substring heuristics.
type Context struct {
	DepartureHour *int
	FlightDate    string // YYYY-MM-DD
}

// cabinTable maps the first character of an uppercased fare code to an
// ordinal cabin category. Anything absent falls back to economy (1).
var cabinTable = map[byte]int{
	'F': 5, 'A': 5, 'P': 5, // first
	'J': 4, 'C': 4, 'D': 4, 'I': 4, 'Z': 4, // business
	'W': 3, // premium economy
	'Y': 2, 'B': 2, 'M': 2, 'H': 2, // full economy
}

// substringRule resolves a categorical signal from an uppercased code.
// Rules are evaluated in order; the first match wins, which makes the
// precedence auditable (child before infant, the "LH" escape hatch before the
// individual H/L matches).
type substringRule struct {
	match  func(code string) bool
	result int
}

func contains(sub string) func(string) bool {
	return func(code string) bool { return strings.Contains(code, sub) }
}

func containsAny(subs ...string) func(string) bool {
	return func(code string) bool {
		for _, s := range subs {
			if strings.Contains(code, s) {
				return true
			}
		}
		return false
	}
}

func containsWithout(sub, without string) func(string) bool {
	return func(code string) bool {
		return strings.Contains(code, sub) && !strings.Contains(code, without)
	}
}

var passengerRules = []substringRule{
	{contains("CH"), models.PassengerChild},
	{contains("IN"), models.PassengerInfant},
}

// "LH" as a unit forces standard seasonality regardless of the individual
// H/L checks; the rule order preserves that quirk.
var seasonalityRules = []substringRule{
	{containsWithout("H", "LH"), models.SeasonHigh},
	{containsWithout("L", "LH"), models.SeasonLow},
}

func firstMatch(rules []substringRule, code string, fallback int) int {
	for _, r := range rules {
		if r.match(code) {
			return r.result
		}
	}
	return fallback
}

// Parse decodes an opaque fare basis code into structured signals.
// A pure function: same (code, ctx) always yields the same signals, malformed
// input degrades to the nearest fallback and never errors.
func Parse(code string, ctx Context) models.FareSignals {
	if code == "" {
		return models.DefaultFareSignals()
	}

	fc := strings.ToUpper(code)
	s := models.FareSignals{
		CabinCategory:    1,
		PassengerType:    firstMatch(passengerRules, fc, models.PassengerAdult),
		SeasonalityProxy: firstMatch(seasonalityRules, fc, models.SeasonStandard),
	}
	if c, ok := cabinTable[fc[0]]; ok {
		s.CabinCategory = c
	}
	s.FareRuleNumber, s.HasNumericRule = firstDigitRun(fc)
	s.IsNightFare = nightFare(fc, ctx.DepartureHour)
	s.IsWeekendFare = weekendFare(fc, ctx.FlightDate)
	return s
}

// firstDigitRun extracts the integer value of the first contiguous run of
// decimal digits. Overlong runs saturate rather than overflow.
func firstDigitRun(code string) (int, bool) {
	start := -1
	for i, r := range code {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return atoiSaturating(code[start:i]), true
		}
	}
	if start >= 0 {
		return atoiSaturating(code[start:]), true
	}
	return 0, false
}

func atoiSaturating(s string) int {
	const max = int(^uint(0) >> 1)
	n := 0
	for i := 0; i < len(s); i++ {
		d := int(s[i] - '0')
		if n > (max-d)/10 {
			return max
		}
		n = n*10 + d
	}
	return n
}

// nightFare prefers the actual departure hour; the "N" substring is only a
// proxy for codes quoted without flight context.
func nightFare(code string, hour *int) bool {
	if hour != nil {
		return *hour < 6 || *hour >= 22
	}
	return strings.Contains(code, "N")
}

// weekendFare prefers the actual flight date; parse failure or a missing date
// falls back to the WE/WK substrings.
func weekendFare(code, flightDate string) bool {
	if flightDate != "" {
		if t, err := time.Parse("2006-01-02", flightDate); err == nil {
			wd := t.Weekday()
			return wd == time.Saturday || wd == time.Sunday
		}
	}
	return containsAny("WE", "WK")(code)
}
