package logger

import (
	"context"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	batches [][]AggregatedLogEntry
	topics  []string
}

func (c *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	if logs, ok := payload.([]AggregatedLogEntry); ok {
		c.batches = append(c.batches, logs)
	}
	return nil
}

func (c *capturePublisher) batchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestCollectorDeduplicatesAndFlushesOnThreshold(t *testing.T) {
	pub := &capturePublisher{}
	col := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour, // only the count threshold should trigger
		CountThreshold: 2,
		Topic:          "svc.logs",
		Publisher:      pub,
	})
	defer col.Close()

	// same log three times collapses to one entry, no flush yet
	for i := 0; i < 3; i++ {
		col.AddLog("error", "store down", map[string]interface{}{"route": "JFK-LAX"}, "repo.go:40")
	}
	if pub.batchCount() != 0 {
		t.Fatalf("flushed before reaching threshold")
	}

	// a second unique entry hits the threshold
	col.AddLog("error", "publish failed", nil, "repo.go:90")

	deadline := time.Now().Add(2 * time.Second)
	for pub.batchCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if pub.batchCount() != 1 {
		t.Fatalf("batches = %d, want 1", pub.batchCount())
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.topics[0] != "svc.logs" {
		t.Errorf("topic = %q", pub.topics[0])
	}
	batch := pub.batches[0]
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2 unique entries", len(batch))
	}
	for _, entry := range batch {
		if entry.Message == "store down" && entry.Count != 3 {
			t.Errorf("repeated entry count = %d, want 3", entry.Count)
		}
	}
}
