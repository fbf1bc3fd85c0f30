// Package bitset provides the fixed-length bit vector used for Bloom filter
// encodings, and the prefix (segment) extraction applied to them.
//
// Unlike the blocked filters common in serving-path code, these vectors are
// positional: bit i of a record filter and bit i of an atom filter mean the
// same hash position, and a segment is literally the first S bits of the
// vector. Every operation here preserves that positional alignment, which is
// what the attack's bitwise reasoning depends on.
//
// Bits are packed little-endian into uint64 words, with bit position p stored
// at word p/64, bit p%64. Word-level AND/AND-NOT is what makes the Stage-1
// subset scan over tens of thousands of atoms cheap.
package bitset

import (
	"fmt"
	"math/bits"
	"strings"
)

// Vector is a fixed-length bit vector. The zero value is not usable; create
// vectors with New.
type Vector struct {
	words []uint64
	nbits int
}

// New returns an all-zero vector of n bits. n must be positive.
func New(n int) *Vector {
	if n < 0 {
		n = 0
	}
	return &Vector{
		words: make([]uint64, (n+63)/64),
		nbits: n,
	}
}

// Len returns the number of bits in the vector.
func (v *Vector) Len() int {
	return v.nbits
}

// Set sets bit pos to 1. Positions outside [0, Len) indicate a hashing logic
// defect, so Set panics rather than silently wrapping.
func (v *Vector) Set(pos int) {
	if pos < 0 || pos >= v.nbits {
		panic(fmt.Sprintf("bitset: position %d out of range [0,%d)", pos, v.nbits))
	}
	v.words[pos>>6] |= 1 << (pos & 63)
}

// Test reports whether bit pos is 1.
func (v *Vector) Test(pos int) bool {
	if pos < 0 || pos >= v.nbits {
		return false
	}
	return v.words[pos>>6]&(1<<(pos&63)) != 0
}

// OnesCount returns the number of 1-bits.
func (v *Vector) OnesCount() int {
	total := 0
	for _, w := range v.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Clone returns an independent copy of the vector.
func (v *Vector) Clone() *Vector {
	c := &Vector{
		words: make([]uint64, len(v.words)),
		nbits: v.nbits,
	}
	copy(c.words, v.words)
	return c
}

// Prefix returns a new vector holding the first segLen bits of v. Bits are
// positionally identical to the source: Prefix(v, s).Test(p) == v.Test(p)
// for all p < s. segLen larger than the vector length is a caller defect.
func (v *Vector) Prefix(segLen int) (*Vector, error) {
	if segLen < 0 || segLen > v.nbits {
		return nil, fmt.Errorf("bitset: segment length %d out of range for %d-bit vector", segLen, v.nbits)
	}

	seg := New(segLen)
	copy(seg.words, v.words[:len(seg.words)])

	// Zero any bits of the last word that fall beyond segLen.
	if tail := segLen & 63; tail != 0 {
		seg.words[len(seg.words)-1] &= (1 << tail) - 1
	}
	return seg, nil
}

// SubsetOf reports whether every 1-bit of v is also set in other. This is the
// Stage-1 atom candidacy test: v AND other == v. Both vectors must have the
// same length; mismatched lengths mean the caller mixed segment sizes and the
// answer would be meaningless.
func (v *Vector) SubsetOf(other *Vector) bool {
	if v.nbits != other.nbits {
		return false
	}
	for i, w := range v.words {
		if w&^other.words[i] != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both vectors have identical length and bits.
func (v *Vector) Equal(other *Vector) bool {
	if v.nbits != other.nbits {
		return false
	}
	for i, w := range v.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// String renders the bits as a 0/1 string, lowest position first. Intended
// for diagnostics and test failure output only.
func (v *Vector) String() string {
	var sb strings.Builder
	sb.Grow(v.nbits)
	for p := 0; p < v.nbits; p++ {
		if v.Test(p) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// SegmentLength returns the number of prefix bits that a segment covering
// percent% of an L-bit filter contains: floor(L * percent / 100).
func SegmentLength(totalBits, percent int) int {
	return totalBits * percent / 100
}
