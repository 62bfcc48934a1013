package aicache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("empty cache should miss, hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(got) != "v" {
		t.Fatalf("get after set: got=%q hit=%v err=%v", got, hit, err)
	}

	if err := c.Expire(ctx, "k"); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("expired key should miss")
	}
}

func TestMemoryCache_TTLElapses(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	if err := c.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "short"); !hit {
		t.Fatalf("entry should be live before TTL")
	}
	time.Sleep(40 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Fatalf("entry should expire after TTL")
	}
}

func TestMemoryCache_BoundedEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	// "a" expires soonest, so it is the eviction victim when "c" arrives.
	if err := c.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := c.Set(ctx, "c", []byte("3"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Fatalf("entry closest to expiry should have been evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Fatalf("entry %q should survive eviction", k)
		}
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	if err := c.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := c.Set(ctx, "a", []byte("updated"), time.Minute); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, hit, _ := c.Get(ctx, "a")
	if !hit || string(got) != "updated" {
		t.Fatalf("overwrite lost: got=%q hit=%v", got, hit)
	}
	if _, hit, _ := c.Get(ctx, "b"); !hit {
		t.Fatalf("overwriting an existing key must not evict others")
	}
}
