package overlay

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryProgramCacheStoresPrograms(t *testing.T) {
	cache := NewMemoryProgramCache()

	if _, ok := cache.Get("current > previous"); ok {
		t.Fatal("expected empty cache miss")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}

	cache.Set("current > previous", "program-a")
	cache.Set("has_previous", "program-b")

	value, ok := cache.Get("current > previous")
	if !ok || value != "program-a" {
		t.Fatalf("expected program-a, got %v (ok=%v)", value, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}

	cache.Set("current > previous", "program-c")
	value, _ = cache.Get("current > previous")
	if value != "program-c" {
		t.Fatalf("expected replacement to win, got %v", value)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected replacement to keep 2 entries, got %d", cache.Len())
	}
}

func TestMemoryProgramCacheNilReceiver(t *testing.T) {
	var cache *MemoryProgramCache

	cache.Set("expr", "program")
	if _, ok := cache.Get("expr"); ok {
		t.Fatal("expected nil cache to stay empty")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected nil cache length 0, got %d", cache.Len())
	}
}

func TestMemoryProgramCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryProgramCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("expr-%d", j%10)
				cache.Set(key, worker)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != 10 {
		t.Fatalf("expected 10 distinct keys, got %d", cache.Len())
	}
}
