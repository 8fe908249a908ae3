// Package hashkey provides the default Hasher capability: a stable digest
// of a file path used as the work list's primary key.
package hashkey

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hasher produces a stable short digest string from a UTF-8 path.
type Hasher interface {
	Hash(path string) string
}

// XXHash is the default Hasher, grounded in the pack's use of
// cespare/xxhash/v2 for stable content keys. Collisions are accepted as
// "treated as not-present" per the work list's invariants.
type XXHash struct{}

// Hash returns the lowercase hex xxhash64 digest of path.
func (XXHash) Hash(path string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(path))
}
