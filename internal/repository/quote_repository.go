package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FareFlex/internal/domain/models"
	"FareFlex/internal/domain/repository"
	pkgkafka "FareFlex/pkg/kafka"
)

// ClickHouseQuoteStore implements QuoteStore on ClickHouse. Every priced
// quote lands here for offline analysis and retraining extracts.
type ClickHouseQuoteStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseQuoteStore creates ClickHouse quote storage.
func NewClickHouseQuoteStore(db *sql.DB, table string) repository.QuoteStore {
	return &ClickHouseQuoteStore{db: db, table: table}
}

func (s *ClickHouseQuoteStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

const quoteColumns = "quoted_at, route, carrier, flight_date, base_price, final_price, adjustment_pct, confidence, lead_days, seats"

func (s *ClickHouseQuoteStore) Store(ctx context.Context, q *models.QuoteRecord) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, quoteColumns)
	_, err := s.db.ExecContext(ctx, query, quoteArgs(q)...)
	return err
}

func (s *ClickHouseQuoteStore) StoreBatch(ctx context.Context, qs []*models.QuoteRecord) error {
	if len(qs) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked.
	const chunkSize = 2000
	for start := 0; start < len(qs); start += chunkSize {
		end := start + chunkSize
		if end > len(qs) {
			end = len(qs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, q := range qs[start:end] {
			if q == nil || q.Route == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, quoteArgs(q)...)
		}
		if len(values) == 0 {
			continue
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, quoteColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func quoteArgs(q *models.QuoteRecord) []interface{} {
	quotedAt := q.QuotedAt
	if quotedAt.IsZero() {
		quotedAt = time.Now().UTC()
	}
	return []interface{}{
		quotedAt,
		q.Route,
		q.Carrier,
		q.FlightDate,
		q.BasePrice,
		q.FinalPrice,
		q.AdjustmentPct,
		q.Confidence,
		q.LeadDays,
		q.Seats,
	}
}

func (s *ClickHouseQuoteStore) Query(ctx context.Context, route string, from, to time.Time, limit int) ([]*models.QuoteRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE route = ? AND quoted_at >= ? AND quoted_at <= ? ORDER BY quoted_at DESC LIMIT ?", quoteColumns, s.table)
	rows, err := s.db.QueryContext(ctx, query, route, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*models.QuoteRecord
	for rows.Next() {
		var q models.QuoteRecord
		if err := rows.Scan(&q.QuotedAt, &q.Route, &q.Carrier, &q.FlightDate,
			&q.BasePrice, &q.FinalPrice, &q.AdjustmentPct, &q.Confidence,
			&q.LeadDays, &q.Seats); err != nil {
			return nil, err
		}
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

func (s *ClickHouseQuoteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseQuoteStore) Close() error {
	return nil // Managed by pkg
}

// KafkaQuotePublisher implements Publisher for Kafka.
type KafkaQuotePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaQuotePublisher creates the quote.priced event publisher.
func NewKafkaQuotePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaQuotePublisher{producer: producer, topic: topic}
}

func (p *KafkaQuotePublisher) Publish(ctx context.Context, q *models.QuoteRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(q.Route), quoteEvent(q))
}

func (p *KafkaQuotePublisher) PublishBatch(ctx context.Context, qs []*models.QuoteRecord) error {
	if len(qs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(qs))
	for i, q := range qs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(q.Route),
			Value: quoteEvent(q),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// Keyed by route so per-route consumers see quotes in order.
func quoteEvent(q *models.QuoteRecord) map[string]interface{} {
	return map[string]interface{}{
		"route":          q.Route,
		"carrier":        q.Carrier,
		"flight_date":    q.FlightDate,
		"quoted_at":      q.QuotedAt.Unix(),
		"base_price":     q.BasePrice,
		"final_price":    q.FinalPrice,
		"adjustment_pct": q.AdjustmentPct,
		"confidence":     q.Confidence,
		"lead_days":      q.LeadDays,
		"seats":          q.Seats,
	}
}

func (p *KafkaQuotePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
