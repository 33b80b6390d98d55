package resilience

import (
	"testing"
	"time"
)

func TestBucket(t *testing.T) {
	clk := newClock()
	b := NewBucket(1, 2, clk.now())

	if !b.Take(clk.now()) || !b.Take(clk.now()) {
		t.Fatal("expected the burst to pass")
	}
	if b.Take(clk.now()) {
		t.Fatal("expected an empty bucket")
	}

	clk.advance(time.Second)
	if !b.Take(clk.now()) {
		t.Fatal("expected one token after a second")
	}
	if b.Full(clk.now()) {
		t.Error("bucket should not be full yet")
	}
	clk.advance(time.Hour)
	if !b.Full(clk.now()) {
		t.Error("expected the bucket to refill to its burst")
	}
}

func TestKeyedLimiter_PerKey(t *testing.T) {
	clk := newClock()
	l := PerMinute(2, clk.now)

	if !l.Allow("user:a") || !l.Allow("user:a") {
		t.Fatal("expected two calls to pass")
	}
	if l.Allow("user:a") {
		t.Fatal("expected the third call in a minute to be limited")
	}
	if !l.Allow("user:b") {
		t.Fatal("expected another key to be unaffected")
	}

	clk.advance(31 * time.Second)
	if !l.Allow("user:a") {
		t.Fatal("expected one token back after half a minute")
	}
	if l.Allow("user:a") {
		t.Fatal("expected only one token back")
	}
}

func TestKeyedLimiter_SweepsIdleKeys(t *testing.T) {
	clk := newClock()
	l := PerMinute(10, clk.now)

	l.Allow("user:a")
	l.Allow("user:b")
	if l.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", l.Len())
	}

	clk.advance(sweepEvery + time.Second)
	l.Allow("user:c")
	if l.Len() != 1 {
		t.Fatalf("expected idle keys swept, got %d", l.Len())
	}
}
