// Package hash computes the identifier hashes stored alongside the string
// table. Identifier strings carry a precomputed 32-bit hash in a parallel
// array so the VM can seed its symbol table without rehashing at load time.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Identifier computes the 32-bit identifier hash written into the identifier
// hash array: the low 32 bits of the xxHash64 of the identifier's bytes.
func Identifier(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}
