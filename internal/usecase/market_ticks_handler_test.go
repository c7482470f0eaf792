package usecase

import (
	"context"
	"testing"
)

func TestMarketTicksHandlerRecords(t *testing.T) {
	snaps := &fakeSnapshots{}
	h := NewMarketTicksHandler("market.fares", snaps, nopMetrics{})

	if h.Topic() != "market.fares" {
		t.Fatalf("topic = %s", h.Topic())
	}

	msg := []byte(`{"route":"JFK-LAX","carrier":"AA","price":389.5,"t":1756400000000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(snaps.recorded) != 1 {
		t.Fatalf("recorded %d ticks, want 1", len(snaps.recorded))
	}
	tick := snaps.recorded[0]
	if tick.Route != "JFK-LAX" || tick.Price != 389.5 {
		t.Errorf("unexpected tick: %+v", tick)
	}
	// Millisecond event times normalize to seconds.
	if tick.Timestamp != 1756400000 {
		t.Errorf("timestamp = %d, want seconds", tick.Timestamp)
	}
}

func TestMarketTicksHandlerRejectsBadMessages(t *testing.T) {
	snaps := &fakeSnapshots{}
	h := NewMarketTicksHandler("market.fares", snaps, nopMetrics{})

	cases := []struct {
		name string
		msg  string
	}{
		{"not json", `garbage`},
		{"missing route", `{"carrier":"AA","price":100,"t":1756400000}`},
		{"zero price", `{"route":"JFK-LAX","price":0,"t":1756400000}`},
	}
	for _, c := range cases {
		if err := h.Handle(context.Background(), []byte(c.msg)); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
	if len(snaps.recorded) != 0 {
		t.Errorf("bad messages must not be recorded, got %d", len(snaps.recorded))
	}
}
