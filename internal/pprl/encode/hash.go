package encode

import (
	"crypto/md5"
	"crypto/sha1"
	"math/big"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// positionsDouble derives k bit positions for a q-gram under double hashing.
// The q-gram is digested with two distinct cryptographic hash functions, each
// digest is interpreted as a large unsigned integer, and the positions are
// (int1 + i*int2) mod L for i = 1..k. The i=0 term is deliberately skipped so
// that int2 always contributes.
//
// The result is a pure function of (gram, L, k).
func positionsDouble(gram string, bfLen, k int) []int {
	d1 := sha1.Sum([]byte(gram))
	d2 := md5.Sum([]byte(gram))

	mod := big.NewInt(int64(bfLen))
	r1 := new(big.Int).Mod(new(big.Int).SetBytes(d1[:]), mod).Int64()
	r2 := new(big.Int).Mod(new(big.Int).SetBytes(d2[:]), mod).Int64()

	positions := make([]int, k)
	for i := 1; i <= k; i++ {
		positions[i-1] = int((r1 + int64(i)*r2) % int64(bfLen))
	}
	return positions
}

// positionsRandom derives k bit positions for a q-gram under random hashing:
// a generator seeded from the q-gram and the run seed draws k independent
// uniform positions in [0, L).
//
// The result is a pure function of (gram, L, k, seed).
func positionsRandom(gram string, bfLen, k int, seed int64) []int {
	rng := rand.New(rand.NewSource(int64(xxhash.Sum64String(gram)) ^ seed))

	positions := make([]int, k)
	for i := range positions {
		positions[i] = rng.Intn(bfLen)
	}
	return positions
}

// positionsFor dispatches on the hashing scheme. Params must already be
// validated; an unknown scheme here is a programming error.
func positionsFor(gram string, p Params) []int {
	switch p.Scheme {
	case SchemeDouble:
		return positionsDouble(gram, p.BFLen, p.NumHash)
	case SchemeRandom:
		return positionsRandom(gram, p.BFLen, p.NumHash, p.Seed)
	default:
		panic("encode: positionsFor called with unvalidated scheme " + string(p.Scheme))
	}
}
