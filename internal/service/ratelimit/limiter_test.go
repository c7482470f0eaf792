package ratelimit

import "testing"

func TestAllowWithinCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		if !l.Allow("client-a", 5, 0) {
			t.Fatalf("request %d: expected allow", i)
		}
	}
	if l.Allow("client-a", 5, 0) {
		t.Error("expected deny after capacity exhausted")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Allow("client-a", 3, 0)
	}
	if l.Allow("client-a", 3, 0) {
		t.Error("client-a should be exhausted")
	}
	if !l.Allow("client-b", 3, 0) {
		t.Error("client-b should have a fresh bucket")
	}
}
