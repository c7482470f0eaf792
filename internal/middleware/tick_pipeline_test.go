package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FareFlex/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordQuote(_, _ string)              {}
func (nopMetrics) RecordError(_ string)                 {}
func (nopMetrics) RecordFinalPrice(_ string, _ float64) {}
func (nopMetrics) RecordFactor(_ string, _ float64)     {}
func (nopMetrics) RecordClip(_ string)                  {}
func (nopMetrics) RecordLatency(_ string, _ float64)    {}

type fakeRecorder struct {
	mu       sync.Mutex
	fail     bool
	recorded []*models.FareTick
}

func (f *fakeRecorder) Record(_ context.Context, t *models.FareTick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("store down")
	}
	f.recorded = append(f.recorded, t)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recorded)
}

func (f *fakeRecorder) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func tick(route string) *models.FareTick {
	return &models.FareTick{
		Route:     route,
		Carrier:   "AA",
		Price:     312.50,
		Timestamp: time.Now().Unix(),
	}
}

func TestPipelineForwardsValidTick(t *testing.T) {
	rec := &fakeRecorder{}
	p := NewTickPipeline(rec, nopMetrics{})

	if err := p.Record(context.Background(), tick("JFK-LAX")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("recorded %d ticks, want 1", rec.count())
	}
}

func TestPipelineRejectsInvalidTicks(t *testing.T) {
	rec := &fakeRecorder{}
	p := NewTickPipeline(rec, nopMetrics{})
	ctx := context.Background()

	bad := []*models.FareTick{
		nil,
		{Carrier: "AA", Price: 100, Timestamp: 1},
		{Route: "JFK-LAX", Carrier: "AA", Price: 0, Timestamp: 1},
		{Route: "JFK-LAX", Carrier: "AA", Price: 100, Timestamp: 0},
	}
	for i, b := range bad {
		if err := p.Record(ctx, b); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if rec.count() != 0 {
		t.Errorf("invalid ticks reached the store: %d", rec.count())
	}
}

func TestPipelineThrottlesPerRoute(t *testing.T) {
	rec := &fakeRecorder{}
	p := NewTickPipeline(rec, nopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	if err := p.Record(ctx, tick("JFK-LAX")); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	// second tick inside the window is dropped without error
	if err := p.Record(ctx, tick("JFK-LAX")); err != nil {
		t.Fatalf("throttled tick must not error: %v", err)
	}
	// an unrelated route has its own budget
	if err := p.Record(ctx, tick("ORD-SFO")); err != nil {
		t.Fatalf("other route: %v", err)
	}
	if rec.count() != 2 {
		t.Errorf("recorded %d ticks, want 2", rec.count())
	}
}

func TestPipelineBuffersAndFlushesOnRecovery(t *testing.T) {
	rec := &fakeRecorder{fail: true}
	p := NewTickPipeline(rec, nopMetrics{})
	ctx := context.Background()

	if err := p.Record(ctx, tick("JFK-LAX")); err == nil {
		t.Fatal("expected downstream error while store is failing")
	}

	rec.setFail(false)
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rec.count() != 1 {
		t.Fatalf("buffered tick not flushed, recorded %d", rec.count())
	}
}
