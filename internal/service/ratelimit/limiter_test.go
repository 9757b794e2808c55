package ratelimit

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(capacity, refill float64, idle time.Duration) (*Limiter, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(capacity, refill, idle)
	l.now = clk.now
	return l, clk
}

func TestAllowBurstThenReject(t *testing.T) {
	l, _ := newTestLimiter(3, 1, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("fourth request should be rejected")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("other keys have their own bucket")
	}
}

func TestAllowRefills(t *testing.T) {
	l, clk := newTestLimiter(1, 2, time.Minute)
	if !l.Allow("k") {
		t.Fatalf("first request should pass")
	}
	if l.Allow("k") {
		t.Fatalf("bucket should be empty")
	}
	clk.advance(500 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatalf("bucket should have refilled one token")
	}
	clk.advance(10 * time.Second)
	if !l.Allow("k") || l.Allow("k") {
		t.Fatalf("refill must be capped at capacity")
	}
}

func TestIdleBucketsAreSwept(t *testing.T) {
	l, clk := newTestLimiter(1, 1, time.Minute)
	l.Allow("a")
	l.Allow("b")
	if l.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", l.Len())
	}
	clk.advance(2 * time.Minute)
	l.Allow("c")
	if l.Len() != 1 {
		t.Fatalf("expected idle buckets swept, got %d", l.Len())
	}
}
