// Package encode builds the Bloom filter artifacts of one dataset: a filter
// per unique attribute value, an atom filter per unique q-gram, and the
// bit-position provenance index that records which q-grams hash to which
// positions.
//
// All three artifacts are returned as one Encoding value owned by the caller.
// There is no package-level state: an Encoding lives for one experiment and
// the attack stage receives it by reference.
//
// Atom filters are the attack's dictionary. The atom of q-gram g is the
// filter that encoding g alone would produce, so for any value containing g,
// the atom's 1-bits are a subset of the value filter's 1-bits. Atoms are
// built on first sight of a q-gram and never mutated afterwards; later
// occurrences reuse the cached positions.
package encode

import (
	"fmt"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/bitset"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/qgram"
)

// PositionIndex maps each bit position 0..L-1 to the set of q-grams that hash
// to it anywhere in the dataset. Unused positions hold empty sets.
type PositionIndex []qgram.Set

// GramsAt returns the q-grams known to hash to pos. The returned set is
// shared, not a copy; callers must not mutate it.
func (idx PositionIndex) GramsAt(pos int) qgram.Set {
	if pos < 0 || pos >= len(idx) {
		return nil
	}
	return idx[pos]
}

// Encoding is the complete encoded view of one dataset under one set of
// parameters. All maps are read-only after Encode returns.
type Encoding struct {
	Params Params

	// Filters maps each attribute value to its Bloom filter: the OR of the
	// bit positions of every q-gram in the value's set.
	Filters map[string]*bitset.Vector

	// Atoms maps each q-gram to its atom filter.
	Atoms map[string]*bitset.Vector

	// Positions is the bit-position provenance index over the full,
	// untruncated filter length.
	Positions PositionIndex
}

// Encode builds filters, atoms and the position index for every value in
// values. Each map entry associates an attribute value with its (non-empty)
// q-gram set; the loader guarantees non-emptiness by skipping values shorter
// than q.
//
// Parameters are validated before any work happens, so an unrecognized scheme
// produces no partial state.
func Encode(values map[string]qgram.Set, p Params) (*Encoding, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	enc := &Encoding{
		Params:    p,
		Filters:   make(map[string]*bitset.Vector, len(values)),
		Atoms:     make(map[string]*bitset.Vector),
		Positions: make(PositionIndex, p.BFLen),
	}
	for pos := range enc.Positions {
		enc.Positions[pos] = make(qgram.Set)
	}

	// Positions are a pure function of the q-gram, so they are derived once
	// per distinct q-gram and reused for every later occurrence.
	gramPositions := make(map[string][]int)

	for value, grams := range values {
		if len(grams) == 0 {
			return nil, fmt.Errorf("encode: value %q has an empty q-gram set", value)
		}

		rec := bitset.New(p.BFLen)

		for gram := range grams {
			positions, seen := gramPositions[gram]
			if !seen {
				positions = positionsFor(gram, p)
				gramPositions[gram] = positions

				atom := bitset.New(p.BFLen)
				for _, pos := range positions {
					atom.Set(pos)
				}
				enc.Atoms[gram] = atom
			}

			// The provenance index records every touched position on every
			// occurrence; the set semantics make repeats idempotent.
			for _, pos := range positions {
				rec.Set(pos)
				enc.Positions[pos].Add(gram)
			}
		}

		enc.Filters[value] = rec
	}

	return enc, nil
}

// FilterSegments returns the first segLen bits of every value filter, keyed
// as in Filters.
func (e *Encoding) FilterSegments(segLen int) (map[string]*bitset.Vector, error) {
	return segmentMap(e.Filters, segLen)
}

// AtomSegments returns the first segLen bits of every atom filter, keyed by
// q-gram. Record and atom segments must be extracted with the same segLen so
// that bit positions stay aligned between the two.
func (e *Encoding) AtomSegments(segLen int) (map[string]*bitset.Vector, error) {
	return segmentMap(e.Atoms, segLen)
}

func segmentMap(src map[string]*bitset.Vector, segLen int) (map[string]*bitset.Vector, error) {
	out := make(map[string]*bitset.Vector, len(src))
	for key, bf := range src {
		seg, err := bf.Prefix(segLen)
		if err != nil {
			return nil, fmt.Errorf("encode: segment of %q: %w", key, err)
		}
		out[key] = seg
	}
	return out, nil
}
