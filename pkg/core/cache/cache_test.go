package cache

import (
	"errors"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string](Config{MaxItems: 10, TTL: time.Minute})
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() found a missing key")
	}

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	c.Delete("a")
	if c.Size() != 0 {
		t.Errorf("Size() after Delete = %d", c.Size())
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.HitRate != 50 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New[int](Config{TTL: time.Minute})
	defer c.Close()

	c.SetWithTTL("short", 1, time.Millisecond)
	c.SetWithTTL("forever", 2, 0)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expired entry returned")
	}
	if v, ok := c.Get("forever"); !ok || v != 2 {
		t.Error("entry without TTL expired")
	}

	c.SetWithTTL("short", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	c.cleanup()
	if c.Size() != 1 {
		t.Errorf("Size() after cleanup = %d, want 1", c.Size())
	}
}

func TestCache_Eviction(t *testing.T) {
	c := New[int](Config{MaxItems: 2, TTL: time.Hour})
	defer c.Close()

	c.SetWithTTL("old", 1, time.Minute)
	c.SetWithTTL("new", 2, time.Hour)
	c.Set("new", 3) // replacing does not evict
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}

	c.Set("third", 4)
	if _, ok := c.Get("old"); ok {
		t.Error("entry closest to expiry was not evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c := New[int](DefaultConfig())
	defer c.Close()

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet("k", compute)
		if err != nil || v != 42 {
			t.Fatalf("GetOrSet() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrSet("bad", func() (int, error) { return 0, boom }); err != boom {
		t.Errorf("GetOrSet() error = %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed computation was cached")
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() must separate its parts")
	}
	if Key("x") != Key("x") || len(Key("x")) != 64 {
		t.Error("Key() must be a stable sha256 hex digest")
	}
}
