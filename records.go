package overlay

// Record is the flat, JSON-friendly form of one entry, used by Export and
// FromRecords and persisted by pkg/snapshot stores.
type Record[K comparable, V any] struct {
	Key         K    `json:"key"`
	Current     V    `json:"current"`
	Previous    V    `json:"previous,omitzero"`
	HasPrevious bool `json:"has_previous,omitempty"`
}

// Export flattens the map into records, one per live key. Order is
// unspecified.
func (m *Map[K, V]) Export() []Record[K, V] {
	records := make([]Record[K, V], 0, m.Len())
	m.tbl.iterate(func(key K, e *Entry[V]) bool {
		record := Record[K, V]{Key: key}
		record.Current, _ = e.Current()
		record.Previous, record.HasPrevious = e.Previous()
		records = append(records, record)
		return true
	})
	return records
}

// FromRecords rebuilds a map from exported records, both layers intact.
// Later duplicates of a key overwrite earlier ones.
func FromRecords[K comparable, V any](records []Record[K, V], opts ...Option) *Map[K, V] {
	opts = append([]Option{WithCapacity(len(records))}, opts...)
	m := New[K, V](opts...)
	for _, record := range records {
		e, _ := m.tbl.insertOrGet(record.Key)
		if record.HasPrevious {
			*e = NewEntryWithPrevious(record.Current, record.Previous)
		} else {
			*e = NewEntry(record.Current)
		}
	}
	return m
}
