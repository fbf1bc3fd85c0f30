// Package qgram converts strings into sets of overlapping fixed-length
// substrings (q-grams). Q-gram sets are the unit of encoding for the Bloom
// filter layer: a value is represented by the union of its q-grams, and the
// attack reasons about individual q-grams rather than whole values.
package qgram

import "sort"

// Set is a set of q-grams. All q-grams in a Set have the same length, the q
// they were extracted with.
type Set map[string]struct{}

// Extract slides a window of width q across value with stride 1 and returns
// the set of all substrings of that length. Duplicate substrings collapse
// into a single entry.
//
// The result is empty when len(value) < q (or q < 1); callers must treat such
// values as unencodable and exclude them.
func Extract(value string, q int) Set {
	if q < 1 || len(value) < q {
		return Set{}
	}

	s := make(Set, len(value)-q+1)
	for i := 0; i+q <= len(value); i++ {
		s[value[i:i+q]] = struct{}{}
	}
	return s
}

// Contains reports whether g is a member of the set.
func (s Set) Contains(g string) bool {
	_, ok := s[g]
	return ok
}

// Add inserts g into the set.
func (s Set) Add(g string) {
	s[g] = struct{}{}
}

// Sorted returns the members in lexicographic order. Map iteration order is
// randomized in Go, so anything that must be reproducible across runs
// (sampling, logging, tests) iterates via Sorted.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
