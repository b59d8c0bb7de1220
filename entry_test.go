package overlay

import "testing"

func TestEntryZeroValueIsEmpty(t *testing.T) {
	var e Entry[int]

	if !e.IsEmpty() {
		t.Fatal("expected zero entry to be empty")
	}
	if e.Len() != 0 {
		t.Fatalf("expected len 0, got %d", e.Len())
	}
	if _, ok := e.Current(); ok {
		t.Fatal("expected no current value")
	}
	if _, ok := e.Previous(); ok {
		t.Fatal("expected no previous value")
	}
}

func TestEntryPushRotatesLayers(t *testing.T) {
	e := NewEntry(1)

	if got, ok := e.Current(); !ok || got != 1 {
		t.Fatalf("expected current 1, got %v (present=%v)", got, ok)
	}
	if e.HasPrevious() {
		t.Fatal("expected no previous after construction")
	}

	e.Push(2)
	if got, _ := e.Current(); got != 2 {
		t.Fatalf("expected current 2, got %v", got)
	}
	if got, ok := e.Previous(); !ok || got != 1 {
		t.Fatalf("expected previous 1, got %v (present=%v)", got, ok)
	}

	e.Push(3)
	if got, _ := e.Current(); got != 3 {
		t.Fatalf("expected current 3, got %v", got)
	}
	if got, _ := e.Previous(); got != 2 {
		t.Fatalf("expected previous 2 after second push, got %v", got)
	}
	if e.Len() != 2 {
		t.Fatalf("expected len 2, got %d", e.Len())
	}
}

func TestEntryPushOnEmptyBehavesLikeSet(t *testing.T) {
	var e Entry[string]
	e.Push("first")

	if got, ok := e.Current(); !ok || got != "first" {
		t.Fatalf("expected current %q, got %q (present=%v)", "first", got, ok)
	}
	if e.HasPrevious() {
		t.Fatal("expected no previous layer")
	}
}

func TestEntrySetOverwritesCurrentOnly(t *testing.T) {
	e := NewEntry(1)
	e.Push(2)

	e.Set(9)
	if got, _ := e.Current(); got != 9 {
		t.Fatalf("expected current 9, got %v", got)
	}
	if got, _ := e.Previous(); got != 1 {
		t.Fatalf("expected previous untouched at 1, got %v", got)
	}
}

func TestEntryCommitLeavesCurrentUnset(t *testing.T) {
	e := NewEntry(5)

	if !e.Commit() {
		t.Fatal("expected commit to succeed")
	}
	if e.HasCurrent() {
		t.Fatal("expected current role unset after commit")
	}
	if got, ok := e.Previous(); !ok || got != 5 {
		t.Fatalf("expected previous 5, got %v (present=%v)", got, ok)
	}

	var empty Entry[int]
	if empty.Commit() {
		t.Fatal("expected commit of empty entry to fail")
	}

	e.Set(6)
	if got, _ := e.Current(); got != 6 {
		t.Fatalf("expected current 6 after set, got %v", got)
	}
	if got, _ := e.Previous(); got != 5 {
		t.Fatalf("expected previous 5 preserved, got %v", got)
	}
}

func TestEntryRollbackRestoresPrevious(t *testing.T) {
	e := NewEntry(1)
	e.Push(2)

	if !e.Rollback() {
		t.Fatal("expected rollback to succeed")
	}
	if got, _ := e.Current(); got != 1 {
		t.Fatalf("expected current 1 after rollback, got %v", got)
	}
	if e.HasPrevious() {
		t.Fatal("expected previous cleared after rollback")
	}
	if e.Rollback() {
		t.Fatal("expected second rollback to fail")
	}
	if got, _ := e.Current(); got != 1 {
		t.Fatalf("expected failed rollback to leave current at 1, got %v", got)
	}
}

func TestEntryPullPromotesPrevious(t *testing.T) {
	e := NewEntry(1)
	e.Push(2)

	out, ok := e.Pull()
	if !ok || out != 2 {
		t.Fatalf("expected pull to return 2, got %v (ok=%v)", out, ok)
	}
	if got, _ := e.Current(); got != 1 {
		t.Fatalf("expected previous promoted to current, got %v", got)
	}
	if e.HasPrevious() {
		t.Fatal("expected previous layer empty after promotion")
	}

	out, ok = e.Pull()
	if !ok || out != 1 {
		t.Fatalf("expected pull to return 1, got %v (ok=%v)", out, ok)
	}
	if !e.IsEmpty() {
		t.Fatal("expected entry empty after final pull")
	}
	if _, ok := e.Pull(); ok {
		t.Fatal("expected pull of empty entry to fail")
	}
}

func TestEntrySwapReturnsEvicted(t *testing.T) {
	var e Entry[int]

	if _, had := e.Swap(1); had {
		t.Fatal("expected swap into empty entry to evict nothing")
	}
	if _, had := e.Swap(2); had {
		t.Fatal("expected swap with empty previous to evict nothing")
	}

	evicted, had := e.Swap(3)
	if !had || evicted != 1 {
		t.Fatalf("expected eviction of 1, got %v (had=%v)", evicted, had)
	}
	if got, _ := e.Current(); got != 3 {
		t.Fatalf("expected current 3, got %v", got)
	}
	if got, _ := e.Previous(); got != 2 {
		t.Fatalf("expected previous 2, got %v", got)
	}
}

func TestEntryTakePrevious(t *testing.T) {
	e := NewEntry(1)
	e.Push(2)

	out, ok := e.TakePrevious()
	if !ok || out != 1 {
		t.Fatalf("expected take to return 1, got %v (ok=%v)", out, ok)
	}
	if got, _ := e.Current(); got != 2 {
		t.Fatalf("expected current kept at 2, got %v", got)
	}
	if e.HasPrevious() {
		t.Fatal("expected previous empty after take")
	}
	if _, ok := e.TakePrevious(); ok {
		t.Fatal("expected second take to fail")
	}
}

func TestEntryNewWithPrevious(t *testing.T) {
	e := NewEntryWithPrevious(2, 1)

	if got, _ := e.Current(); got != 2 {
		t.Fatalf("expected current 2, got %v", got)
	}
	if got, _ := e.Previous(); got != 1 {
		t.Fatalf("expected previous 1, got %v", got)
	}
	if e.Len() != 2 {
		t.Fatalf("expected len 2, got %d", e.Len())
	}
}

// Transitions rotate the role designator, so the stored values must come
// back as the same pointers that went in.
func TestEntryTransitionsPreservePointerIdentity(t *testing.T) {
	first := &struct{ n int }{1}
	second := &struct{ n int }{2}

	e := NewEntry(first)
	e.Push(second)

	if got, _ := e.Previous(); got != first {
		t.Fatal("expected previous to be the original pointer")
	}
	if got, _ := e.Current(); got != second {
		t.Fatal("expected current to be the pushed pointer")
	}

	if !e.Rollback() {
		t.Fatal("expected rollback to succeed")
	}
	if got, _ := e.Current(); got != first {
		t.Fatal("expected rollback to surface the original pointer")
	}
}

// Vacated slots must drop their references so the values can be collected.
func TestEntryClearsVacatedSlots(t *testing.T) {
	first := &struct{ n int }{1}
	second := &struct{ n int }{2}

	e := NewEntry(first)
	e.Push(second)
	if _, ok := e.Pull(); !ok {
		t.Fatal("expected pull to succeed")
	}

	for i := range e.slots {
		if !e.present(i) && e.slots[i] != nil {
			t.Fatalf("expected vacated slot %d to be zeroed", i)
		}
	}

	e.Push(second)
	if !e.Rollback() {
		t.Fatal("expected rollback to succeed")
	}
	for i := range e.slots {
		if !e.present(i) && e.slots[i] != nil {
			t.Fatalf("expected rolled-back slot %d to be zeroed", i)
		}
	}
}
