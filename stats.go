package overlay

import (
	"fmt"

	"github.com/gholt/brimtext"
)

// Stats is a point-in-time report of map occupancy and backend shape.
// Debug-gated fields walk every entry and so cost O(n) to gather.
type Stats struct {
	// Keys is the number of live keys when Stats() was called.
	Keys int
	// Capacity is how many keys fit before the next rehash.
	Capacity int

	statsDebug   bool
	withPrevious int
	groups       int
	slots        int
	tombstones   int
	growthLeft   int
	rehashes     int
	loadFactor   float64
}

// Stats gathers occupancy counters. With debug true it also walks the
// entries to count populated previous layers and computes the exact load
// factor.
func (m *Map[K, V]) Stats(debug bool) *Stats {
	s := &Stats{
		Keys:       m.tbl.len(),
		Capacity:   m.tbl.capacity(),
		statsDebug: debug,
	}
	if !debug {
		return s
	}
	s.groups = len(m.tbl.groups)
	s.slots = len(m.tbl.groups) * groupSlots
	s.tombstones = m.tbl.tombstones
	s.growthLeft = m.tbl.growthLeft
	s.rehashes = m.tbl.rehashes
	if s.slots > 0 {
		s.loadFactor = float64(s.Keys) / float64(s.slots)
	}
	m.tbl.iterate(func(_ K, e *Entry[V]) bool {
		if e.HasPrevious() {
			s.withPrevious++
		}
		return true
	})
	return s
}

func (s *Stats) String() string {
	report := [][]string{
		{"Keys", fmt.Sprintf("%d", s.Keys)},
		{"Capacity", fmt.Sprintf("%d", s.Capacity)},
	}
	if s.statsDebug {
		report = append(report, [][]string{
			{"withPrevious", fmt.Sprintf("%d", s.withPrevious)},
			{"groups", fmt.Sprintf("%d", s.groups)},
			{"slots", fmt.Sprintf("%d", s.slots)},
			{"tombstones", fmt.Sprintf("%d", s.tombstones)},
			{"growthLeft", fmt.Sprintf("%d", s.growthLeft)},
			{"rehashes", fmt.Sprintf("%d", s.rehashes)},
			{"loadFactor", fmt.Sprintf("%.3f", s.loadFactor)},
		}...)
	}
	return brimtext.Align(report, nil)
}
