package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	_, ok = c.Get("nonexistent")
	if ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	createCalled := 0

	val := c.GetOrCreate("key1", func() int {
		createCalled++
		return 100
	})
	if val != 100 {
		t.Errorf("expected 100, got %d", val)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}

	val = c.GetOrCreate("key1", func() int {
		createCalled++
		return 200
	})
	if val != 100 {
		t.Errorf("expected 100 (cached), got %d", val)
	}
	if createCalled != 1 {
		t.Errorf("expected create still called once, got %d", createCalled)
	}
}

func TestDelete(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)

	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be gone after Delete")
	}
	if c.Delete("key1") {
		t.Error("expected Delete to return false for missing key")
	}
}

func TestEviction(t *testing.T) {
	// Capacity 2 per shard; hash all keys into one shard to force
	// eviction deterministically.
	sameShard := func(string) uint64 { return 0 }
	c := NewSharded[string, int](2, sameShard)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts "a", the least recently used

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
}

func TestLRUOrder(t *testing.T) {
	sameShard := func(string) uint64 { return 0 }
	c := NewSharded[string, int](2, sameShard)

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to exist")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted after a was touched")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
}

func TestClearAndLen(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	for i := 0; i < 20; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	if c.Len() != 20 {
		t.Errorf("expected 20 entries, got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestStats(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	c.Set("k", 1)
	c.Get("k")
	c.Get("missing")

	hits, misses := c.Stats()
	if hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("expected 1 miss, got %d", misses)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewSharded[string, int](32, StringHasher)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := strconv.Itoa(i % 50)
				c.Set(key, g*1000+i)
				c.Get(key)
				c.GetOrCreate(key, func() int { return -1 })
			}
		}(g)
	}
	wg.Wait()

	if c.Len() == 0 {
		t.Error("expected entries after concurrent writes")
	}
}
