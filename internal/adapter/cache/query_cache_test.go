package cache

import (
	"testing"
	"time"
)

func TestQueryCacheHitAndMiss(t *testing.T) {
	c := NewQueryCache[string](10, time.Minute)

	if _, ok := c.Get("how do I reset?", 3); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("how do I reset?", 3, "hold the menu button")

	if v, ok := c.Get("  how do I reset?\n", 3); !ok || v != "hold the menu button" {
		t.Errorf("expected hit, got %q %v", v, ok)
	}
	if _, ok := c.Get("how do I reset?", 5); ok {
		t.Error("different k should miss")
	}
}

func TestQueryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewQueryCache[int](2, time.Minute)

	c.Put("a", 1, 1)
	c.Put("b", 1, 2)
	c.Get("a", 1)
	c.Put("c", 1, 3)

	if _, ok := c.Get("b", 1); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a", 1); !ok {
		t.Error("expected a to survive")
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}

func TestQueryCacheExpires(t *testing.T) {
	c := NewQueryCache[int](10, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("q", 3, 42)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("q", 3); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Size() != 0 {
		t.Errorf("expected expired entry to be removed, size %d", c.Size())
	}
}

func TestQueryCacheInvalidate(t *testing.T) {
	c := NewQueryCache[int](10, time.Minute)
	c.Put("q", 3, 1)

	c.Invalidate()

	if _, ok := c.Get("q", 3); ok {
		t.Error("expected miss after invalidate")
	}

	c.Put("q", 3, 2)
	if v, ok := c.Get("q", 3); !ok || v != 2 {
		t.Errorf("expected fresh entry after invalidate, got %d %v", v, ok)
	}
}

func TestQueryCachePutAtRejectsStaleGeneration(t *testing.T) {
	c := NewQueryCache[string](10, time.Minute)

	gen := c.Generation()
	c.Invalidate()

	if c.PutAt(gen, "q", 3, "old document") {
		t.Error("expected stale put to be rejected")
	}
	if _, ok := c.Get("q", 3); ok {
		t.Error("stale value should not be served")
	}

	if !c.PutAt(c.Generation(), "q", 3, "new document") {
		t.Fatal("expected current put to be stored")
	}
	if v, ok := c.Get("q", 3); !ok || v != "new document" {
		t.Errorf("expected new document, got %q %v", v, ok)
	}
}
