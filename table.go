package overlay

// Open-addressing backend in the SwissTable family: fixed-size groups of
// eight slots, one control byte per slot, quadratic probing across groups.
// A control byte is either a seven-bit hash fingerprint (slot full), empty,
// or deleted (tombstone). The dual-slot Entry payload is embedded directly
// in the group, so a key, its control byte, and both value layers share one
// allocation and rehashing moves whole entries without touching layer state.

const (
	groupSlots      = 8
	maxAvgGroupLoad = 7 // grow once load passes 7 of 8 slots per group

	ctrlEmpty   uint8 = 0b1000_0000
	ctrlDeleted uint8 = 0b1111_1110
)

// ctrlIsFull reports whether a control byte carries a fingerprint.
func ctrlIsFull(c uint8) bool {
	return c&0x80 == 0
}

type group[K comparable, V any] struct {
	ctrl    [groupSlots]uint8
	keys    [groupSlots]K
	entries [groupSlots]Entry[V]
}

func (g *group[K, V]) reset() {
	*g = group[K, V]{}
	for i := range g.ctrl {
		g.ctrl[i] = ctrlEmpty
	}
}

type table[K comparable, V any] struct {
	groups []group[K, V]
	mask   uint64 // len(groups) - 1; group count is a power of two
	hash   func(K) uint64

	live       int // keys currently stored
	tombstones int // deleted slots awaiting the next rehash
	growthLeft int // empty slots that may be claimed before rehashing
	rehashes   int // lifetime rehash count
}

func newTable[K comparable, V any](capacity int, hash func(K) uint64) *table[K, V] {
	t := &table[K, V]{hash: hash}
	t.alloc(groupsFor(capacity))
	return t
}

// groupsFor returns the power-of-two group count able to hold capacity keys
// within the load-factor bound.
func groupsFor(capacity int) int {
	n := 1
	for n*maxAvgGroupLoad < capacity {
		n *= 2
	}
	return n
}

func (t *table[K, V]) alloc(n int) {
	t.groups = make([]group[K, V], n)
	for i := range t.groups {
		t.groups[i].reset()
	}
	t.mask = uint64(n - 1)
	t.live = 0
	t.tombstones = 0
	t.growthLeft = n * maxAvgGroupLoad
}

func (t *table[K, V]) len() int {
	return t.live
}

func (t *table[K, V]) capacity() int {
	return len(t.groups) * maxAvgGroupLoad
}

// find returns the entry stored under key, or nil. The pointer stays valid
// until the next insert or rehash.
func (t *table[K, V]) find(key K) *Entry[V] {
	if t.live == 0 {
		return nil
	}
	h1, h2 := splitHash(t.hash(key))
	g := h1 & t.mask
	for step := uint64(1); ; step++ {
		grp := &t.groups[g]
		hasEmpty := false
		for i := 0; i < groupSlots; i++ {
			c := grp.ctrl[i]
			if c == h2 && grp.keys[i] == key {
				return &grp.entries[i]
			}
			if c == ctrlEmpty {
				hasEmpty = true
			}
		}
		if hasEmpty {
			return nil
		}
		g = (g + step) & t.mask
	}
}

// insertOrGet returns the entry for key, claiming a fresh slot when the key
// is absent. The second result reports whether the key already existed. A
// fresh slot holds an empty entry for the caller to populate.
func (t *table[K, V]) insertOrGet(key K) (*Entry[V], bool) {
	h1, h2 := splitHash(t.hash(key))

	var spare *group[K, V]
	spareSlot := -1
	spareDeleted := false

	g := h1 & t.mask
	for step := uint64(1); ; step++ {
		grp := &t.groups[g]
		hasEmpty := false
		for i := 0; i < groupSlots; i++ {
			c := grp.ctrl[i]
			switch {
			case c == h2 && grp.keys[i] == key:
				return &grp.entries[i], true
			case c == ctrlEmpty:
				hasEmpty = true
				if spareSlot < 0 {
					spare, spareSlot = grp, i
				}
			case c == ctrlDeleted:
				if spareSlot < 0 {
					spare, spareSlot, spareDeleted = grp, i, true
				}
			}
		}
		if hasEmpty {
			break
		}
		g = (g + step) & t.mask
	}

	if spareDeleted {
		spare.ctrl[spareSlot] = h2
		spare.keys[spareSlot] = key
		t.tombstones--
		t.live++
		return &spare.entries[spareSlot], false
	}
	if t.growthLeft == 0 {
		t.rehash()
		return t.insertOrGet(key)
	}
	spare.ctrl[spareSlot] = h2
	spare.keys[spareSlot] = key
	t.growthLeft--
	t.live++
	return &spare.entries[spareSlot], false
}

// remove deletes key and returns the full entry, both layers intact. The
// slot becomes a tombstone, or reverts straight to empty when its group was
// never full (probes for other keys already terminate there).
func (t *table[K, V]) remove(key K) (Entry[V], bool) {
	if t.live == 0 {
		return Entry[V]{}, false
	}
	h1, h2 := splitHash(t.hash(key))
	g := h1 & t.mask
	for step := uint64(1); ; step++ {
		grp := &t.groups[g]
		hasEmpty := false
		found := -1
		for i := 0; i < groupSlots; i++ {
			c := grp.ctrl[i]
			if c == h2 && grp.keys[i] == key {
				found = i
			}
			if c == ctrlEmpty {
				hasEmpty = true
			}
		}
		if found >= 0 {
			out := grp.entries[found]
			var zeroK K
			grp.keys[found] = zeroK
			grp.entries[found] = Entry[V]{}
			if hasEmpty {
				grp.ctrl[found] = ctrlEmpty
				t.growthLeft++
			} else {
				grp.ctrl[found] = ctrlDeleted
				t.tombstones++
			}
			t.live--
			return out, true
		}
		if hasEmpty {
			return Entry[V]{}, false
		}
		g = (g + step) & t.mask
	}
}

// rehash rebuilds the group array, doubling it under genuine load and
// reusing the current size when tombstones dominate. Entries move wholesale;
// neither layer of any entry is read or rewritten.
func (t *table[K, V]) rehash() {
	n := len(t.groups) * 2
	if t.live < t.capacity()/2 {
		n = len(t.groups)
	}
	old := t.groups
	t.alloc(n)
	t.rehashes++
	for gi := range old {
		grp := &old[gi]
		for i := 0; i < groupSlots; i++ {
			if ctrlIsFull(grp.ctrl[i]) {
				t.uncheckedPut(grp.keys[i], grp.entries[i])
			}
		}
	}
}

// uncheckedPut claims the first empty slot along the probe chain. Only valid
// during rehash: the key is known absent and the array holds no tombstones.
func (t *table[K, V]) uncheckedPut(key K, e Entry[V]) {
	h1, h2 := splitHash(t.hash(key))
	g := h1 & t.mask
	for step := uint64(1); ; step++ {
		grp := &t.groups[g]
		for i := 0; i < groupSlots; i++ {
			if grp.ctrl[i] == ctrlEmpty {
				grp.ctrl[i] = h2
				grp.keys[i] = key
				grp.entries[i] = e
				t.growthLeft--
				t.live++
				return
			}
		}
		g = (g + step) & t.mask
	}
}

func (t *table[K, V]) clear() {
	for i := range t.groups {
		t.groups[i].reset()
	}
	t.live = 0
	t.tombstones = 0
	t.growthLeft = len(t.groups) * maxAvgGroupLoad
}

// iterate visits every live slot until yield returns false. Mutating the
// table during iteration is undefined.
func (t *table[K, V]) iterate(yield func(K, *Entry[V]) bool) {
	for gi := range t.groups {
		grp := &t.groups[gi]
		for i := 0; i < groupSlots; i++ {
			if ctrlIsFull(grp.ctrl[i]) {
				if !yield(grp.keys[i], &grp.entries[i]) {
					return
				}
			}
		}
	}
}
