package mission

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// NewRand returns a generator seeded from crypto/rand. A *rand.Rand is not
// safe for concurrent use; each generation pass gets its own.
func NewRand() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// fallback to the runtime-seeded global source
		binary.LittleEndian.PutUint64(seed[:8], rand.Uint64())
		binary.LittleEndian.PutUint64(seed[8:16], rand.Uint64())
	}
	return rand.New(rand.NewChaCha8(seed))
}

// Shuffle returns a uniformly random permutation of in (Fisher-Yates).
// The input slice is left untouched. A nil rng uses the global source.
func Shuffle[T any](in []T, rng *rand.Rand) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := intN(rng, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
