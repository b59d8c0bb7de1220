package overlay

import "iter"

// Iteration order is unspecified: it follows group layout and the per-map
// hash seed. Mutating the map while ranging is undefined behavior.

// All yields every live key with its current value.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.tbl.iterate(func(key K, e *Entry[V]) bool {
			current, _ := e.Current()
			return yield(key, current)
		})
	}
}

// Previous yields every key whose previous layer is populated, with that
// previous value.
func (m *Map[K, V]) Previous() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.tbl.iterate(func(key K, e *Entry[V]) bool {
			previous, ok := e.Previous()
			if !ok {
				return true
			}
			return yield(key, previous)
		})
	}
}

// Entries yields every live key with a copy of its full two-layer entry.
func (m *Map[K, V]) Entries() iter.Seq2[K, Entry[V]] {
	return func(yield func(K, Entry[V]) bool) {
		m.tbl.iterate(func(key K, e *Entry[V]) bool {
			return yield(key, *e)
		})
	}
}

// Keys yields every live key.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.tbl.iterate(func(key K, _ *Entry[V]) bool {
			return yield(key)
		})
	}
}

// Values yields every current value.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		m.tbl.iterate(func(_ K, e *Entry[V]) bool {
			current, _ := e.Current()
			return yield(current)
		})
	}
}
