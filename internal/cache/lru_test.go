package cache

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLRU(size int, ttl time.Duration) (*LRU[string], *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUEviction(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry b should be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", "2b")
	clk.t = clk.t.Add(45 * time.Second)

	if got := c.CleanExpired(); got != 1 {
		t.Errorf("CleanExpired() = %d, want 1", got)
	}
	if v, ok := c.Get("b"); !ok || v != "2b" {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}
	clk.t = clk.t.Add(time.Minute)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have expired")
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d/%d, want 1/1", hits, misses)
	}
}

func TestLRUPurgeAndDelete(t *testing.T) {
	c, _ := newTestLRU(0, time.Hour)
	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, k)
	}
	c.Delete("a")
	c.Delete("missing")
	if got := c.Purge(); got != 2 {
		t.Errorf("Purge() = %d, want 2", got)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after purge", c.Size())
	}
	c.Set("d", "d")
	if _, ok := c.Get("d"); !ok {
		t.Error("cache unusable after purge")
	}
}

func TestManagerSweep(t *testing.T) {
	c, clk := newTestLRU(10, time.Second)
	c.Set("a", "1")
	m := NewManager(nil)
	m.Register(c)

	if got := m.Sweep(); got != 0 {
		t.Errorf("Sweep() = %d before expiry", got)
	}
	clk.t = clk.t.Add(2 * time.Second)
	if got := m.Sweep(); got != 1 {
		t.Errorf("Sweep() = %d, want 1", got)
	}

	m.Start(time.Hour)
	m.Stop()
	m.Stop()
}
