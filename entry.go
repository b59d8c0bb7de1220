package overlay

const (
	presentSlot0 uint8 = 1 << 0 // slots[0] holds a value
	presentSlot1 uint8 = 1 << 1 // slots[1] holds a value
	currentSlot1 uint8 = 1 << 2 // slots[1] plays the current role
)

// Entry is the per-key storage cell: two value slots plus packed occupancy
// bits. One slot plays the "current" role and the other the "previous" role;
// transitions flip the role designator instead of moving values between
// slots, so Push, Rollback, and Swap never copy or clone V.
//
// The zero Entry is empty. Entries are single-owner values, the same
// discipline as the Map that embeds them.
type Entry[V any] struct {
	slots [2]V
	bits  uint8
}

// NewEntry returns an entry holding only a current value.
func NewEntry[V any](current V) Entry[V] {
	var e Entry[V]
	e.slots[0] = current
	e.bits = presentSlot0
	return e
}

// NewEntryWithPrevious returns an entry populated on both layers.
func NewEntryWithPrevious[V any](current, previous V) Entry[V] {
	var e Entry[V]
	e.slots[0] = previous
	e.slots[1] = current
	e.bits = presentSlot0 | presentSlot1 | currentSlot1
	return e
}

// cur is the index of the slot playing the current role.
func (e *Entry[V]) cur() int {
	return int(e.bits>>2) & 1
}

func (e *Entry[V]) present(slot int) bool {
	return e.bits&(uint8(1)<<slot) != 0
}

func (e *Entry[V]) setPresent(slot int) {
	e.bits |= uint8(1) << slot
}

func (e *Entry[V]) clearSlot(slot int) {
	var zero V
	e.slots[slot] = zero
	e.bits &^= uint8(1) << slot
}

// Current returns the current value.
func (e *Entry[V]) Current() (V, bool) {
	cur := e.cur()
	if !e.present(cur) {
		var zero V
		return zero, false
	}
	return e.slots[cur], true
}

// Previous returns the previous value without consuming it.
func (e *Entry[V]) Previous() (V, bool) {
	prev := e.cur() ^ 1
	if !e.present(prev) {
		var zero V
		return zero, false
	}
	return e.slots[prev], true
}

// Set overwrites the current value in place. The previous layer is left
// untouched; use Push for commit-then-set semantics.
func (e *Entry[V]) Set(v V) {
	cur := e.cur()
	e.slots[cur] = v
	e.setPresent(cur)
}

// Push rotates the current value into the previous role, dropping any value
// already there, and installs v as the new current. On an entry with no
// current value it behaves like Set.
func (e *Entry[V]) Push(v V) {
	cur := e.cur()
	if !e.present(cur) {
		e.slots[cur] = v
		e.setPresent(cur)
		return
	}
	next := cur ^ 1
	e.slots[next] = v
	e.setPresent(next)
	e.bits ^= currentSlot1
}

// Commit rotates the current value into the previous role, dropping any
// existing previous, and leaves the current role unset until the next Set or
// Push. Reports false when there is no current value to commit.
func (e *Entry[V]) Commit() bool {
	cur := e.cur()
	if !e.present(cur) {
		return false
	}
	old := cur ^ 1
	if e.present(old) {
		e.clearSlot(old)
	}
	e.bits ^= currentSlot1
	return true
}

// Rollback restores the previous value into the current role and clears the
// previous layer. Reports false, leaving the entry untouched, when no
// previous value exists.
func (e *Entry[V]) Rollback() bool {
	cur := e.cur()
	prev := cur ^ 1
	if !e.present(prev) {
		return false
	}
	if e.present(cur) {
		e.clearSlot(cur)
	}
	e.bits ^= currentSlot1
	return true
}

// Pull takes the current value out of the entry. A present previous value is
// promoted to current; otherwise the entry becomes empty.
func (e *Entry[V]) Pull() (V, bool) {
	cur := e.cur()
	if !e.present(cur) {
		var zero V
		return zero, false
	}
	out := e.slots[cur]
	e.clearSlot(cur)
	if e.present(cur ^ 1) {
		e.bits ^= currentSlot1
	}
	return out, true
}

// Swap pushes v and returns the previous value evicted by the rotation.
func (e *Entry[V]) Swap(v V) (V, bool) {
	cur := e.cur()
	if !e.present(cur) {
		e.slots[cur] = v
		e.setPresent(cur)
		var zero V
		return zero, false
	}
	next := cur ^ 1
	var evicted V
	had := e.present(next)
	if had {
		evicted = e.slots[next]
	}
	e.slots[next] = v
	e.setPresent(next)
	e.bits ^= currentSlot1
	return evicted, had
}

// TakePrevious removes and returns the previous value, keeping current.
func (e *Entry[V]) TakePrevious() (V, bool) {
	prev := e.cur() ^ 1
	if !e.present(prev) {
		var zero V
		return zero, false
	}
	out := e.slots[prev]
	e.clearSlot(prev)
	return out, true
}

// HasCurrent reports whether the current layer is populated.
func (e *Entry[V]) HasCurrent() bool {
	return e.present(e.cur())
}

// HasPrevious reports whether the previous layer is populated.
func (e *Entry[V]) HasPrevious() bool {
	return e.present(e.cur() ^ 1)
}

// Len counts populated layers: 0, 1, or 2.
func (e *Entry[V]) Len() int {
	n := 0
	if e.bits&presentSlot0 != 0 {
		n++
	}
	if e.bits&presentSlot1 != 0 {
		n++
	}
	return n
}

// IsEmpty reports whether neither layer is populated.
func (e *Entry[V]) IsEmpty() bool {
	return e.bits&(presentSlot0|presentSlot1) == 0
}
