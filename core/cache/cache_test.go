package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewCache()
	c.Set("categories|stock", []string{"a", "b"}, 0, nil)

	v, ok := c.Get("categories|stock")
	if !ok {
		t.Fatal("expected hit")
	}
	if got := v.([]string); len(got) != 2 || got[0] != "a" {
		t.Errorf("got %v", got)
	}
}

func TestGetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss")
	}
	if v := c.GetOrDef("nope", 42); v != 42 {
		t.Errorf("GetOrDef = %v, want 42", v)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewCache()
	c.Set("k", "v", 1, nil)
	// Force the entry past its deadline instead of sleeping a full second.
	v, _ := c.m.Load("k")
	item := v.(cacheItem)
	item.ExpiresAt = time.Now().Add(-time.Second).UnixNano()
	c.m.Store("k", item)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCompositeKeys(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"stats", "stock", 7}, 99, 0, nil)
	v, ok := c.GetN("stats", "stock", 7)
	if !ok || v != 99 {
		t.Fatalf("GetN = %v, %v", v, ok)
	}
	c.DeleteN("stats", "stock", 7)
	if _, ok := c.GetN("stats", "stock", 7); ok {
		t.Error("expected miss after DeleteN")
	}
}

func TestDeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set("categories|stock", 1, 0, []string{"catalog:stock"})
	c.Set("stats|stock|1,2", 2, 0, []string{"catalog:stock"})
	c.Set("categories|order", 3, 0, []string{"catalog:order"})

	if keys := c.GetKeysByTag("catalog:stock"); len(keys) != 2 {
		t.Fatalf("tag index has %d keys, want 2", len(keys))
	}

	c.DeleteByTag("catalog:stock")

	if _, ok := c.Get("categories|stock"); ok {
		t.Error("tagged entry survived DeleteByTag")
	}
	if _, ok := c.Get("stats|stock|1,2"); ok {
		t.Error("tagged entry survived DeleteByTag")
	}
	if _, ok := c.Get("categories|order"); !ok {
		t.Error("unrelated tag was dropped")
	}
}
