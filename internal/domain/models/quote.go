package models

import "time"

// QuoteRecord is the audit row written for every priced quote and the payload
// of quote.priced events.
type QuoteRecord struct {
	Route         string    `json:"route"`
	Carrier       string    `json:"carrier"`
	FlightDate    string    `json:"flight_date"`
	QuotedAt      time.Time `json:"quoted_at"`
	BasePrice     float64   `json:"base_price"`
	FinalPrice    float64   `json:"final_price"`
	AdjustmentPct float64   `json:"adjustment_pct"`
	Confidence    string    `json:"confidence"`
	LeadDays      int       `json:"lead_days"`
	Seats         int       `json:"seats"`
}

// FareTick is one competitor fare observation from the market.fares topic.
type FareTick struct {
	Route     string  `json:"route"`
	Carrier   string  `json:"carrier"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"t"` // unix seconds (ms tolerated on ingest)
}
