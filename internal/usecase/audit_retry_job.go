package usecase

import (
	"context"

	"FareFlex/internal/domain/models"
	drepo "FareFlex/internal/domain/repository"
	"FareFlex/pkg/queue"
)

// AuditRetryType is the queue message type for quote records whose first
// audit write failed.
const AuditRetryType = "quote.audit"

// AuditRetryJob replays failed quote audit writes from the Redis spool back
// into the quote store. The queue's own retry schedule and dead-letter list
// handle a store that stays down.
type AuditRetryJob struct {
	store   drepo.QuoteStore
	metrics drepo.Metrics
}

func NewAuditRetryJob(store drepo.QuoteStore, metrics drepo.Metrics) *AuditRetryJob {
	return &AuditRetryJob{store: store, metrics: metrics}
}

func (j *AuditRetryJob) Name() string { return "quote-audit-retry" }

func (j *AuditRetryJob) Type() string { return AuditRetryType }

func (j *AuditRetryJob) Handle(ctx context.Context, payload interface{}) error {
	rec, err := queue.ParsePayload[models.QuoteRecord](payload)
	if err != nil {
		j.metrics.RecordError("audit_retry_payload")
		return err
	}
	if err := j.store.Store(ctx, rec); err != nil {
		j.metrics.RecordError("audit_retry_store")
		return err
	}
	return nil
}

var _ queue.Job = (*AuditRetryJob)(nil)
