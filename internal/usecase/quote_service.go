package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FareFlex/internal/domain/models"
	drepo "FareFlex/internal/domain/repository"
	"FareFlex/internal/domain/service"
	"FareFlex/internal/services/features"
	"FareFlex/internal/services/pricing"
	"FareFlex/pkg/logger"
	"FareFlex/pkg/queue"
)

// QuoteService wires the full quote path: feature building, base-price
// inference, factor adjustment, then audit and event emission.
type QuoteService struct {
	estimator service.Estimator
	encoders  service.Encoders
	engine    *pricing.Engine
	store     drepo.QuoteStore
	pub       drepo.Publisher
	snapshots drepo.MarketSnapshots
	metrics   drepo.Metrics
	log       *logger.Logger
	spool     queue.QueueService
	batchPar  int
}

// NewQuoteService creates a new QuoteService instance. Store, publisher and
// snapshots may be nil when the corresponding backend is disabled.
func NewQuoteService(
	estimator service.Estimator,
	encoders service.Encoders,
	engine *pricing.Engine,
	store drepo.QuoteStore,
	pub drepo.Publisher,
	snapshots drepo.MarketSnapshots,
	metrics drepo.Metrics,
	log *logger.Logger,
) *QuoteService {
	return &QuoteService{
		estimator: estimator,
		encoders:  encoders,
		engine:    engine,
		store:     store,
		pub:       pub,
		snapshots: snapshots,
		metrics:   metrics,
		log:       log,
		batchPar:  8,
	}
}

// SetBatchParallelism overrides the batch worker bound.
func (s *QuoteService) SetBatchParallelism(n int) {
	if n > 0 {
		s.batchPar = n
	}
}

// SetAuditSpool installs a retry spool for failed audit store writes.
func (s *QuoteService) SetAuditSpool(q queue.QueueService) {
	s.spool = q
}

// QuoteInput pairs one booking request with its market context.
type QuoteInput struct {
	Booking models.BookingRequest
	Market  models.MarketData
}

// QuoteOutcome is one batch slot: a result or the error that produced none.
type QuoteOutcome struct {
	Result *models.PricingResult
	Err    error
}

// Quote prices a single booking request. When the caller supplies no
// competitor prices the route's latest market snapshot fills in.
func (s *QuoteService) Quote(ctx context.Context, req models.BookingRequest, market models.MarketData) (*models.PricingResult, error) {
	res, rec, err := s.quote(ctx, req, market)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, rec)
	return res, nil
}

// quote runs the pricing path and returns the audit record alongside the
// result, so batch callers can persist records in one round-trip.
func (s *QuoteService) quote(ctx context.Context, req models.BookingRequest, market models.MarketData) (*models.PricingResult, *models.QuoteRecord, error) {
	start := time.Now()

	feats, err := features.Build(req)
	if err != nil {
		s.metrics.RecordError("build_features")
		return nil, nil, err
	}

	if len(market.CompetitorPrices) == 0 && s.snapshots != nil {
		market.CompetitorPrices = s.snapshots.CompetitorPrices(ctx, feats.Route())
	}
	pctx := features.Context(feats, market)

	base, err := s.estimator.Infer(ctx, feats.Encoded(s.encoders.Encode))
	if err != nil {
		s.metrics.RecordError("infer")
		return nil, nil, fmt.Errorf("estimate base price: %w", err)
	}

	res := s.engine.Price(base, pctx, feats)

	route := feats.Route()
	if clipped, dir := s.engine.Clipped(res); clipped {
		s.metrics.RecordClip(dir)
	}
	s.metrics.RecordFactor("demand", res.Factors.Demand)
	s.metrics.RecordFactor("competition", res.Factors.Competition)
	s.metrics.RecordFactor("inventory", res.Factors.Inventory)
	s.metrics.RecordFactor("time", res.Factors.Time)
	s.metrics.RecordFactor("seasonality", res.Factors.Seasonality)
	s.metrics.RecordQuote(route, res.Confidence)
	s.metrics.RecordFinalPrice(route, res.FinalPrice)
	s.metrics.RecordLatency("quote", time.Since(start).Seconds())

	rec := &models.QuoteRecord{
		Route:         route,
		Carrier:       feats.Carrier,
		FlightDate:    req.FlightDate,
		QuotedAt:      time.Now().UTC(),
		BasePrice:     res.BasePrice,
		FinalPrice:    res.FinalPrice,
		AdjustmentPct: res.TotalAdjustmentPct,
		Confidence:    res.Confidence,
		LeadDays:      feats.DaysUntilFlight,
		Seats:         feats.SeatsRemaining,
	}
	return &res, rec, nil
}

// QuoteBatch prices inputs with bounded parallelism, preserving order.
// Failures are captured per slot and never abort sibling quotes; the combined
// audit write happens once at the end.
func (s *QuoteService) QuoteBatch(ctx context.Context, inputs []QuoteInput) []QuoteOutcome {
	out := make([]QuoteOutcome, len(inputs))
	recs := make([]*models.QuoteRecord, len(inputs))
	if len(inputs) == 0 {
		return out
	}

	sem := make(chan struct{}, s.batchPar)
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			res, rec, err := s.quote(ctx, inputs[i].Booking, inputs[i].Market)
			out[i] = QuoteOutcome{Result: res, Err: err}
			recs[i] = rec
		}(i)
	}
	wg.Wait()

	kept := recs[:0]
	for _, r := range recs {
		if r != nil {
			kept = append(kept, r)
		}
	}
	s.auditBatch(ctx, kept)
	return out
}

// audit persists and publishes a priced quote. Best effort: a storage or
// broker outage must not fail a quote the customer already received.
func (s *QuoteService) audit(ctx context.Context, rec *models.QuoteRecord) {
	if rec == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Store(ctx, rec); err != nil {
			s.metrics.RecordError("audit_store")
			s.log.Warn("quote audit store failed",
				logger.String("route", rec.Route), logger.Error(err))
			s.spoolRecords(ctx, rec)
		}
	}
	if s.pub != nil {
		if err := s.pub.Publish(ctx, rec); err != nil {
			s.metrics.RecordError("audit_publish")
			s.log.Warn("quote event publish failed",
				logger.String("route", rec.Route), logger.Error(err))
		}
	}
}

func (s *QuoteService) auditBatch(ctx context.Context, recs []*models.QuoteRecord) {
	if len(recs) == 0 {
		return
	}
	if s.store != nil {
		if err := s.store.StoreBatch(ctx, recs); err != nil {
			s.metrics.RecordError("audit_store")
			s.log.Warn("quote batch audit store failed",
				logger.Int("count", len(recs)), logger.Error(err))
			s.spoolRecords(ctx, recs...)
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishBatch(ctx, recs); err != nil {
			s.metrics.RecordError("audit_publish")
			s.log.Warn("quote batch publish failed",
				logger.Int("count", len(recs)), logger.Error(err))
		}
	}
}

// spoolRecords parks records that failed to store so the retry job can
// replay them. Also best effort.
func (s *QuoteService) spoolRecords(ctx context.Context, recs ...*models.QuoteRecord) {
	if s.spool == nil {
		return
	}
	for _, rec := range recs {
		if err := s.spool.PublishMessage(ctx, AuditRetryType, rec); err != nil {
			s.metrics.RecordError("audit_spool")
			s.log.Warn("quote audit spool failed",
				logger.String("route", rec.Route), logger.Error(err))
		}
	}
}

// Close releases the audit sinks.
func (s *QuoteService) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.pub != nil {
		_ = s.pub.Close()
	}
}
