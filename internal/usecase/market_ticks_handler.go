package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FareFlex/internal/domain/models"
	drepo "FareFlex/internal/domain/repository"
	pkgkafka "FareFlex/pkg/kafka"
)

// MarketTicksHandler consumes competitor fare observations from Kafka and
// feeds the per-route market snapshots that back the competition factor.
// The recorder is usually the tick pipeline wrapping the snapshot store.
type MarketTicksHandler struct {
	topic    string
	recorder drepo.TickRecorder
	metrics  drepo.Metrics
}

func NewMarketTicksHandler(topic string, recorder drepo.TickRecorder, metrics drepo.Metrics) *MarketTicksHandler {
	return &MarketTicksHandler{topic: topic, recorder: recorder, metrics: metrics}
}

func (h *MarketTicksHandler) Topic() string { return h.topic }

// incoming message schema: {route, carrier, price, t}
func (h *MarketTicksHandler) Handle(ctx context.Context, b []byte) error {
	var tick models.FareTick
	if err := json.Unmarshal(b, &tick); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if tick.Route == "" || tick.Price <= 0 {
		h.metrics.RecordError("consumer_invalid_tick")
		return fmt.Errorf("invalid fare tick: route %q price %v", tick.Route, tick.Price)
	}
	if tick.Timestamp > 1e11 { // ms
		tick.Timestamp = tick.Timestamp / 1000
	}
	if tick.Timestamp <= 0 {
		tick.Timestamp = time.Now().Unix()
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(tick.Timestamp, 0)).Seconds())

	start := time.Now()
	err := h.recorder.Record(ctx, &tick)
	h.metrics.RecordLatency("snapshot_record_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_record")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*MarketTicksHandler)(nil)
