package repository

import (
	"context"
	"time"

	"FareFlex/internal/domain/models"
)

// QuoteStore persists priced quotes for offline analysis and retraining feeds.
type QuoteStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, q *models.QuoteRecord) error
	StoreBatch(ctx context.Context, qs []*models.QuoteRecord) error
	Query(ctx context.Context, route string, from, to time.Time, limit int) ([]*models.QuoteRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits priced-quote events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, q *models.QuoteRecord) error
	PublishBatch(ctx context.Context, qs []*models.QuoteRecord) error
	Close() error
}

// TickRecorder accepts one competitor fare observation.
type TickRecorder interface {
	Record(ctx context.Context, tick *models.FareTick) error
}

// MarketSnapshots serves the latest known competitor fares per route, fed by
// the market ticks consumer. Empty slice means no signal.
type MarketSnapshots interface {
	TickRecorder
	CompetitorPrices(ctx context.Context, route string) []float64
}

// Metrics abstracts operational metric recording.
type Metrics interface {
	RecordQuote(route, confidence string)
	RecordError(kind string)
	RecordFinalPrice(route string, price float64)
	RecordFactor(factor string, ratio float64)
	RecordClip(direction string)
	RecordLatency(op string, seconds float64)
}
