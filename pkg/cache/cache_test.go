package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type item struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryTTL(time.Minute))

	if err := mc.Set(ctx, "a", item{Name: "a", Score: 0.5}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got item
	if err := mc.Get(ctx, "a", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Score != 0.5 {
		t.Fatalf("unexpected value %+v", got)
	}

	if err := mc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	_ = mc.Set(ctx, "a", "1", 0)
	_ = mc.Set(ctx, "b", "2", 0)
	var s string
	_ = mc.Get(ctx, "a", &s) // touch a
	_ = mc.Set(ctx, "c", "3", 0)

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &s); err != nil || s != "1" {
		t.Fatalf("expected a retained, got %q %v", s, err)
	}
	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryTTL(20 * time.Millisecond))
	_ = mc.Set(ctx, "a", "1", 0)
	time.Sleep(60 * time.Millisecond)
	var s string
	if err := mc.Get(ctx, "a", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestLayeredCacheBackfillsL1(t *testing.T) {
	ctx := context.Background()
	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l1, l2)

	_ = l2.Set(ctx, "k", item{Name: "remote"}, 0)
	var got item
	if err := lc.Get(ctx, "k", &got); err != nil || got.Name != "remote" {
		t.Fatalf("expected L2 hit, got %+v %v", got, err)
	}
	if l1.Len() != 1 {
		t.Fatalf("expected L1 backfill")
	}

	if err := lc.Set(ctx, "n", item{Name: "new"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if l2.Len() != 2 || l1.Len() != 2 {
		t.Fatalf("expected write-through, l1=%d l2=%d", l1.Len(), l2.Len())
	}

	_ = lc.Delete(ctx, "k")
	if err := lc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestHashKey(t *testing.T) {
	a, err := HashKey("mlp", 0.5, item{Name: "x", Score: 1})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, _ := HashKey("mlp", 0.5, item{Name: "x", Score: 1})
	c, _ := HashKey("mlp", 0.6, item{Name: "x", Score: 1})
	if a != b {
		t.Fatalf("hash not stable")
	}
	if a == c {
		t.Fatalf("different inputs must hash differently")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
	if _, err := HashKey(func() {}); err == nil {
		t.Fatalf("expected encode error")
	}
}

func TestRedisWrapKey(t *testing.T) {
	c := &RedisCache{prefix: "churn"}
	if got := c.wrapKey("pred:abc"); got != "churn:pred:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}
