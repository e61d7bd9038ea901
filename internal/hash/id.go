// Package hash provides the xxHash64 helpers backing the snapshot cache's
// content fingerprint.
//
// Adapted from arloliu/mebo/internal/hash, which hashes metric names into
// 64-bit metric IDs; here the same primitive hashes a file's leading bytes
// into a cache key instead.
package hash

import "github.com/cespare/xxhash/v2"

// String computes the xxHash64 of data.
func String(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of data.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
