// Package shardhash provides the stable, non-cryptographic 64-bit hash used
// by the signal phase framework (C5) to split work across independently
// launched processes without coordination.
package shardhash

import "github.com/cespare/xxhash/v2"

// StableHash returns a fixed 64-bit hash of id. Two processes running the
// same phase with complementary --shard N/M arguments partition the corpus
// by comparing StableHash(id) % M against N.
func StableHash(id string) uint64 {
	return xxhash.Sum64String(id)
}

// InShard reports whether id belongs to shard n of m (0 <= n < m). A
// disabled shard (m <= 1) always includes every id.
func InShard(id string, n, m int) bool {
	if m <= 1 {
		return true
	}
	return StableHash(id)%uint64(m) == uint64(n)
}
