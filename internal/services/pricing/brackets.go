package pricing

// op compares a value against a bracket threshold.
type op int

const (
	le op = iota // value <= threshold
	ge           // value >= threshold
)

// bracket is one (condition, adjustment) row of a threshold table.
type bracket struct {
	op        op
	threshold float64
	adj       float64
}

// firstBracket evaluates brackets top-down and returns the adjustment of the
// first satisfied row, or fallback when none matches. All threshold-chain
// factors (inventory, time) share this routine so the first-match tie-break rule
// is identical everywhere thresholds get tuned.
func firstBracket(v float64, rows []bracket, fallback float64) float64 {
	for _, r := range rows {
		switch r.op {
		case le:
			if v <= r.threshold {
				return r.adj
			}
		case ge:
			if v >= r.threshold {
				return r.adj
			}
		}
	}
	return fallback
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
