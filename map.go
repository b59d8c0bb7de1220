package overlay

import (
	"fmt"
	"hash/maphash"
	"iter"

	"github.com/jameslkingsley/overlaymap/pkg/audit"
)

// Map is a two-layered associative container. Every key carries a current
// value and, once a commit-style update has happened, the value that
// preceded it. Layer transitions (Set, Rollback, Pull, Swap) rotate roles
// inside the entry in place; they never clone values, reallocate payload
// storage, or disturb table structure.
//
// Map is not internally synchronized. Callers sharing one across goroutines
// must provide their own mutual exclusion, the same discipline as the
// built-in map type.
type Map[K comparable, V any] struct {
	tbl     *table[K, V]
	seed    maphash.Seed
	hasher  Hasher[K]
	cfg     mapConfig
	emitter *audit.Emitter
}

// New constructs an empty map hashing keys via hash/maphash.
func New[K comparable, V any](opts ...Option) *Map[K, V] {
	return NewHasher[K, V](defaultHasher[K](), opts...)
}

// NewHasher constructs an empty map using the supplied hasher. A nil hasher
// falls back to the hash/maphash default.
func NewHasher[K comparable, V any](hasher Hasher[K], opts ...Option) *Map[K, V] {
	cfg := applyOptions(opts)
	if hasher == nil {
		hasher = defaultHasher[K]()
	}
	m := &Map[K, V]{
		seed:   maphash.MakeSeed(),
		hasher: hasher,
		cfg:    cfg,
	}
	m.tbl = newTable[K, V](cfg.capacity, func(key K) uint64 {
		return m.hasher(m.seed, key)
	})
	m.emitter = audit.NewEmitter(cfg.auditHooks, audit.Config{
		Enabled: len(cfg.auditHooks) > 0,
		Channel: cfg.auditChannel,
	})
	return m
}

// Collect builds a map from a key/value sequence, pushing duplicates.
func Collect[K comparable, V any](seq iter.Seq2[K, V], opts ...Option) *Map[K, V] {
	m := New[K, V](opts...)
	m.SetAll(seq)
	return m
}

// Len reports the number of live keys. A key counts once whether or not its
// previous layer is populated.
func (m *Map[K, V]) Len() int {
	return m.tbl.len()
}

// Cap reports how many keys the map can hold before the next rehash.
func (m *Map[K, V]) Cap() int {
	return m.tbl.capacity()
}

// Contains reports whether key is live.
func (m *Map[K, V]) Contains(key K) bool {
	return m.tbl.find(key) != nil
}

// Get returns the current value for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if e := m.tbl.find(key); e != nil {
		return e.Current()
	}
	var zero V
	return zero, false
}

// GetPrevious returns the previous value for key. It reports false until a
// commit-style update has happened for the key.
func (m *Map[K, V]) GetPrevious(key K) (V, bool) {
	if e := m.tbl.find(key); e != nil {
		return e.Previous()
	}
	var zero V
	return zero, false
}

// Entry returns a copy of the full two-layer entry for key.
func (m *Map[K, V]) Entry(key K) (Entry[V], bool) {
	if e := m.tbl.find(key); e != nil {
		return *e, true
	}
	return Entry[V]{}, false
}

// Set installs value as the current value for key. An absent key gets a
// fresh entry with no previous layer; a live key commits first, so the
// outgoing current value becomes the previous one and any older previous is
// dropped.
func (m *Map[K, V]) Set(key K, value V) {
	e, existed := m.tbl.insertOrGet(key)
	if !existed {
		*e = NewEntry(value)
		m.emitInsert(key, value)
		return
	}
	old, _ := e.Current()
	e.Push(value)
	m.emitSet(key, old, value)
}

// Replace overwrites the current value in place, leaving the previous layer
// untouched. It reports false, inserting nothing, when key is absent.
func (m *Map[K, V]) Replace(key K, value V) bool {
	e := m.tbl.find(key)
	if e == nil {
		return false
	}
	old, _ := e.Current()
	e.Set(value)
	m.emitReplace(key, old, value, e.HasPrevious())
	return true
}

// Rollback restores the previous value into the current role for key and
// clears the previous layer. It reports false, leaving the map untouched,
// when key is absent or has no previous value; the key itself is never
// removed.
func (m *Map[K, V]) Rollback(key K) bool {
	e := m.tbl.find(key)
	if e == nil {
		return false
	}
	dropped, _ := e.Current()
	if !e.Rollback() {
		return false
	}
	restored, _ := e.Current()
	m.emitRollback(key, dropped, restored)
	return true
}

// Remove deletes key entirely and returns its current value. Both layers are
// dropped; the previous value is discarded without being surfaced. Use Take
// when the caller needs both layers.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	entry, ok := m.tbl.remove(key)
	if !ok {
		var zero V
		return zero, false
	}
	current, _ := entry.Current()
	m.emitRemove(key, current, entry.HasPrevious())
	return current, true
}

// Take deletes key entirely and returns the full two-layer entry.
func (m *Map[K, V]) Take(key K) (Entry[V], bool) {
	entry, ok := m.tbl.remove(key)
	if !ok {
		return Entry[V]{}, false
	}
	current, _ := entry.Current()
	m.emitRemove(key, current, entry.HasPrevious())
	return entry, true
}

// Pull takes the current value out of the map. A populated previous layer is
// promoted to current; otherwise the key is removed. The deleting
// counterpart of Rollback.
func (m *Map[K, V]) Pull(key K) (V, bool) {
	e := m.tbl.find(key)
	if e == nil {
		var zero V
		return zero, false
	}
	out, ok := e.Pull()
	if !ok {
		var zero V
		return zero, false
	}
	promoted := e.HasCurrent()
	if !promoted {
		m.tbl.remove(key)
	}
	m.emitPull(key, out, promoted)
	return out, true
}

// Swap pushes value and returns the previous value evicted by the rotation.
// An absent key gets a fresh entry and reports no eviction.
func (m *Map[K, V]) Swap(key K, value V) (V, bool) {
	e, existed := m.tbl.insertOrGet(key)
	if !existed {
		*e = NewEntry(value)
		m.emitInsert(key, value)
		var zero V
		return zero, false
	}
	evicted, had := e.Swap(value)
	m.emitSwap(key, evicted, had, value)
	return evicted, had
}

// PushIf pushes value when pred accepts the live current value. An absent
// key is inserted unconditionally. Reports whether the map changed.
func (m *Map[K, V]) PushIf(key K, value V, pred func(current V) bool) bool {
	e, existed := m.tbl.insertOrGet(key)
	if !existed {
		*e = NewEntry(value)
		m.emitInsert(key, value)
		return true
	}
	current, _ := e.Current()
	if pred != nil && !pred(current) {
		return false
	}
	e.Push(value)
	m.emitSet(key, current, value)
	return true
}

// SwapIf swaps value in when pred accepts the live current value, returning
// the evicted previous value. The last result reports whether the swap ran;
// an absent key is inserted unconditionally.
func (m *Map[K, V]) SwapIf(key K, value V, pred func(current V) bool) (V, bool, bool) {
	var zero V
	e, existed := m.tbl.insertOrGet(key)
	if !existed {
		*e = NewEntry(value)
		m.emitInsert(key, value)
		return zero, false, true
	}
	current, _ := e.Current()
	if pred != nil && !pred(current) {
		return zero, false, false
	}
	evicted, had := e.Swap(value)
	m.emitSwap(key, evicted, had, value)
	return evicted, had, true
}

// PullIf pulls the current value when pred accepts it.
func (m *Map[K, V]) PullIf(key K, pred func(current V) bool) (V, bool) {
	e := m.tbl.find(key)
	if e == nil {
		var zero V
		return zero, false
	}
	current, _ := e.Current()
	if pred != nil && !pred(current) {
		var zero V
		return zero, false
	}
	return m.Pull(key)
}

// SetAll pushes every pair produced by seq, in sequence order.
func (m *Map[K, V]) SetAll(seq iter.Seq2[K, V]) {
	for key, value := range seq {
		m.Set(key, value)
	}
}

// Clear drops every entry while keeping allocated buckets for reuse.
func (m *Map[K, V]) Clear() {
	dropped := m.tbl.len()
	m.tbl.clear()
	m.emitClear(dropped)
}

func keyString(key any) string {
	return fmt.Sprintf("%v", key)
}
