package overlay

import "testing"

func buildLayeredMap(t *testing.T) *Map[string, int] {
	t.Helper()
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("a", 2)
	m.Set("b", 10)
	m.Set("c", 100)
	m.Set("c", 200)
	m.Set("c", 300)
	return m
}

func TestAllYieldsCurrentValues(t *testing.T) {
	m := buildLayeredMap(t)

	got := map[string]int{}
	for key, value := range m.All() {
		got[key] = value
	}

	want := map[string]int{"a": 2, "b": 10, "c": 300}
	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(got))
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("key %q yielded %d, want %d", key, got[key], value)
		}
	}
}

func TestPreviousSkipsSingleLayerKeys(t *testing.T) {
	m := buildLayeredMap(t)

	got := map[string]int{}
	for key, value := range m.Previous() {
		got[key] = value
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 keys with previous layers, got %d", len(got))
	}
	if got["a"] != 1 || got["c"] != 200 {
		t.Fatalf("unexpected previous values: %v", got)
	}
	if _, ok := got["b"]; ok {
		t.Fatal("expected single-layer key b to be skipped")
	}
}

func TestEntriesYieldsCopies(t *testing.T) {
	m := buildLayeredMap(t)

	count := 0
	for key, entry := range m.Entries() {
		count++
		entry.Set(-1)
		if key == "a" {
			if got, _ := entry.Previous(); got != 1 {
				t.Fatalf("expected entry previous 1, got %v", got)
			}
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 entries, got %d", count)
	}

	if got, _ := m.Get("a"); got != 2 {
		t.Fatalf("expected stored values untouched by copy mutation, got %v", got)
	}
}

func TestKeysAndValues(t *testing.T) {
	m := buildLayeredMap(t)

	keys := map[string]bool{}
	for key := range m.Keys() {
		keys[key] = true
	}
	if len(keys) != 3 || !keys["a"] || !keys["b"] || !keys["c"] {
		t.Fatalf("unexpected key set: %v", keys)
	}

	sum := 0
	for value := range m.Values() {
		sum += value
	}
	if sum != 2+10+300 {
		t.Fatalf("expected current values to sum to 312, got %d", sum)
	}
}

func TestIterationEarlyBreak(t *testing.T) {
	m := buildLayeredMap(t)

	seen := 0
	for range m.All() {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected iteration to stop after break, saw %d", seen)
	}

	seen = 0
	for range m.Keys() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("expected two keys before break, saw %d", seen)
	}
}

func TestIterationOnEmptyMap(t *testing.T) {
	m := New[string, int]()

	for range m.All() {
		t.Fatal("expected no yields from empty map")
	}
	for range m.Previous() {
		t.Fatal("expected no previous yields from empty map")
	}
}
