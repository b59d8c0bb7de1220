package overlay

import "hash/maphash"

// Hasher computes a 64-bit hash for a key under the supplied seed. Hashers
// must be deterministic for the lifetime of the map and distribute well in
// the low bits; hash/maphash based functions satisfy both.
type Hasher[K comparable] func(maphash.Seed, K) uint64

func defaultHasher[K comparable]() Hasher[K] {
	return func(seed maphash.Seed, key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// splitHash derives the probe hash and the control-byte fingerprint. The low
// seven bits become the fingerprint; the rest select the starting group.
func splitHash(h uint64) (h1 uint64, h2 uint8) {
	return h >> 7, uint8(h & 0x7f)
}
