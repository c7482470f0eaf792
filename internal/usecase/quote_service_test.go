package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FareFlex/internal/domain/models"
	drepo "FareFlex/internal/domain/repository"
	"FareFlex/internal/services/features"
	"FareFlex/internal/services/pricing"
	"FareFlex/pkg/logger"
)

type stubEstimator struct {
	price float64
	err   error
}

func (s stubEstimator) Infer(_ context.Context, _ [models.FeatureCount]float64) (float64, error) {
	return s.price, s.err
}

type stubEncoders struct{}

func (stubEncoders) Encode(_, _ string) int       { return 0 }
func (stubEncoders) Categories(_ string) []string { return nil }
func (stubEncoders) Columns() []string            { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordQuote(_, _ string)              {}
func (nopMetrics) RecordError(_ string)                 {}
func (nopMetrics) RecordFinalPrice(_ string, _ float64) {}
func (nopMetrics) RecordFactor(_ string, _ float64)     {}
func (nopMetrics) RecordClip(_ string)                  {}
func (nopMetrics) RecordLatency(_ string, _ float64)    {}

type fakeStore struct {
	mu      sync.Mutex
	stored  []*models.QuoteRecord
	batched int
	fail    bool
}

func (f *fakeStore) Init(context.Context) error { return nil }

func (f *fakeStore) Store(_ context.Context, q *models.QuoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("store down")
	}
	f.stored = append(f.stored, q)
	return nil
}

func (f *fakeStore) StoreBatch(_ context.Context, qs []*models.QuoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("store down")
	}
	f.stored = append(f.stored, qs...)
	f.batched++
	return nil
}

func (f *fakeStore) Query(context.Context, string, time.Time, time.Time, int) ([]*models.QuoteRecord, error) {
	return nil, nil
}
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type fakeSnapshots struct {
	mu       sync.Mutex
	prices   map[string][]float64
	recorded []*models.FareTick
}

func (f *fakeSnapshots) CompetitorPrices(_ context.Context, route string) []float64 {
	return f.prices[route]
}

func (f *fakeSnapshots) Record(_ context.Context, tick *models.FareTick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, tick)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestService(t *testing.T, est stubEstimator, store *fakeStore, snaps *fakeSnapshots) *QuoteService {
	t.Helper()
	var ms drepo.MarketSnapshots
	if snaps != nil {
		ms = snaps
	}
	return NewQuoteService(est, stubEncoders{}, pricing.NewEngine(), store, nil, ms, nopMetrics{}, testLogger(t))
}

// 30-day lead to a midweek March departure: every adjustment factor is zero.
func neutralBooking() models.BookingRequest {
	return models.BookingRequest{
		SearchDate:     "2026-02-16",
		FlightDate:     "2026-03-18",
		Origin:         "JFK",
		Destination:    "LAX",
		Carrier:        "DL",
		SeatsRemaining: 50,
		FareCode:       "Y14",
	}
}

func neutralMarket() models.MarketData {
	return models.MarketData{TotalSeats: 180, Season: "standard"}
}

func TestQuotePassThrough(t *testing.T) {
	svc := newTestService(t, stubEstimator{price: 400}, &fakeStore{}, nil)

	res, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket())
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if res.FinalPrice != 400 {
		t.Errorf("final = %v, want 400", res.FinalPrice)
	}
	if res.TotalAdjustmentPct != 0 {
		t.Errorf("adjustment = %v, want 0", res.TotalAdjustmentPct)
	}
	if res.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want High", res.Confidence)
	}
}

func TestQuoteAuditRecord(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, stubEstimator{price: 400}, store, nil)

	if _, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket()); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.stored))
	}
	rec := store.stored[0]
	if rec.Route != "JFK-LAX" || rec.FinalPrice != 400 || rec.LeadDays != 30 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestQuoteSnapshotCompetitorFallback(t *testing.T) {
	snaps := &fakeSnapshots{prices: map[string][]float64{
		"JFK-LAX": {100, 110, 90}, // mean 100, base 400 is far above market
	}}
	svc := newTestService(t, stubEstimator{price: 400}, &fakeStore{}, snaps)

	res, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket())
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// competition -0.20 at weight 0.25 takes 5% off
	if res.FinalPrice != 380 {
		t.Errorf("final = %v, want 380 from snapshot competitors", res.FinalPrice)
	}

	// Caller-supplied competitor prices win over the snapshot.
	market := neutralMarket()
	market.CompetitorPrices = []float64{400}
	res, err = svc.Quote(context.Background(), neutralBooking(), market)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if res.FinalPrice != 400 {
		t.Errorf("final = %v, want 400 with caller competitors", res.FinalPrice)
	}
}

func TestQuoteMalformedDate(t *testing.T) {
	svc := newTestService(t, stubEstimator{price: 400}, &fakeStore{}, nil)

	req := neutralBooking()
	req.FlightDate = "07/01/2026"
	if _, err := svc.Quote(context.Background(), req, neutralMarket()); !errors.Is(err, features.ErrMalformedDate) {
		t.Fatalf("err = %v, want ErrMalformedDate", err)
	}
}

func TestQuoteEstimatorFailure(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, stubEstimator{err: errors.New("model offline")}, store, nil)

	if _, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket()); err == nil {
		t.Fatal("expected estimator error")
	}
	if len(store.stored) != 0 {
		t.Errorf("failed quote must not be audited, stored %d", len(store.stored))
	}
}

func TestQuoteAuditBestEffort(t *testing.T) {
	store := &fakeStore{fail: true}
	svc := newTestService(t, stubEstimator{price: 400}, store, nil)

	res, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket())
	if err != nil {
		t.Fatalf("audit outage must not fail the quote: %v", err)
	}
	if res.FinalPrice != 400 {
		t.Errorf("final = %v, want 400", res.FinalPrice)
	}
}

func TestQuoteBatchPreservesOrderAndIsolatesErrors(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, stubEstimator{price: 400}, store, nil)

	good := QuoteInput{Booking: neutralBooking(), Market: neutralMarket()}
	bad := good
	bad.Booking.FlightDate = "not-a-date"
	other := good
	other.Booking.Origin = "ORD"

	out := svc.QuoteBatch(context.Background(), []QuoteInput{good, bad, other})
	if len(out) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(out))
	}
	if out[0].Err != nil || out[0].Result == nil {
		t.Errorf("slot 0: %+v", out[0])
	}
	if out[1].Err == nil {
		t.Error("slot 1: expected error for malformed date")
	}
	if out[2].Err != nil || out[2].Result == nil {
		t.Fatalf("slot 2: %+v", out[2])
	}
	if route := out[2].Result.Features.Route(); route != "ORD-LAX" {
		t.Errorf("slot 2 route = %s, order not preserved", route)
	}

	if len(store.stored) != 2 || store.batched != 1 {
		t.Errorf("stored=%d batched=%d, want 2 records in 1 batch", len(store.stored), store.batched)
	}
}

func TestQuoteBatchEmpty(t *testing.T) {
	svc := newTestService(t, stubEstimator{price: 400}, &fakeStore{}, nil)
	if out := svc.QuoteBatch(context.Background(), nil); len(out) != 0 {
		t.Fatalf("got %d outcomes for empty input", len(out))
	}
}

type fakeSpool struct {
	mu    sync.Mutex
	types []string
	recs  []*models.QuoteRecord
}

func (f *fakeSpool) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, msgType)
	if rec, ok := payload.(*models.QuoteRecord); ok {
		f.recs = append(f.recs, rec)
	}
	return nil
}

func TestQuoteAuditSpoolsOnStoreFailure(t *testing.T) {
	store := &fakeStore{fail: true}
	svc := newTestService(t, stubEstimator{price: 400}, store, nil)
	spool := &fakeSpool{}
	svc.SetAuditSpool(spool)

	if _, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket()); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(spool.recs) != 1 {
		t.Fatalf("spooled %d records, want 1", len(spool.recs))
	}
	if spool.types[0] != AuditRetryType {
		t.Errorf("message type = %q, want %q", spool.types[0], AuditRetryType)
	}
	if spool.recs[0].Route != "JFK-LAX" {
		t.Errorf("spooled route = %q", spool.recs[0].Route)
	}
}

func TestQuoteAuditSkipsSpoolOnSuccess(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, stubEstimator{price: 400}, store, nil)
	spool := &fakeSpool{}
	svc.SetAuditSpool(spool)

	if _, err := svc.Quote(context.Background(), neutralBooking(), neutralMarket()); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(spool.recs) != 0 {
		t.Errorf("spooled %d records after successful store", len(spool.recs))
	}
}

func TestAuditRetryJobReplaysRecord(t *testing.T) {
	store := &fakeStore{}
	job := NewAuditRetryJob(store, nopMetrics{})

	// payloads arrive as generic maps after the queue's JSON round-trip
	payload := map[string]interface{}{
		"route":       "JFK-LAX",
		"final_price": 420.0,
	}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0].Route != "JFK-LAX" {
		t.Fatalf("stored = %+v", store.stored)
	}
	if store.stored[0].FinalPrice != 420 {
		t.Errorf("final price = %v, want 420", store.stored[0].FinalPrice)
	}
}

func TestAuditRetryJobPropagatesStoreError(t *testing.T) {
	store := &fakeStore{fail: true}
	job := NewAuditRetryJob(store, nopMetrics{})

	err := job.Handle(context.Background(), map[string]interface{}{"route": "JFK-LAX"})
	if err == nil {
		t.Fatal("expected store error so the queue schedules a retry")
	}
}
