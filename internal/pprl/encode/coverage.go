package encode

import (
	"fmt"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/stats"
)

// GramCounts returns, for every bit position that at least one q-gram hashes
// to, the number of distinct q-grams at that position. The counts feed the
// encoder statistics in the report.
func (idx PositionIndex) GramCounts() []int {
	counts := make([]int, 0, len(idx))
	for _, grams := range idx {
		if len(grams) > 0 {
			counts = append(counts, len(grams))
		}
	}
	return counts
}

// SegmentCoverage describes how much q-gram information a segment retains:
// how many q-grams have at least one bit position inside the segment, and the
// distribution of positions per q-gram inside the segment versus in the full
// filter.
type SegmentCoverage struct {
	SegmentGrams int // q-grams with >= 1 position below segLen
	TotalGrams   int // all q-grams in the index

	Segment stats.Summary // positions per q-gram inside the segment
	Full    stats.Summary // positions per q-gram in the full filter
}

// Coverage computes the segment coverage for a prefix of segLen bits.
//
// It also checks the provenance invariant: no q-gram can occupy more than
// numHash positions across the full filter (fewer is normal, due to
// self-collisions). A violation indicates a defect in the encoder, not a
// recoverable condition.
func (idx PositionIndex) Coverage(segLen, numHash int) (SegmentCoverage, error) {
	if segLen < 0 || segLen > len(idx) {
		return SegmentCoverage{}, fmt.Errorf("encode: coverage segment length %d out of range [0,%d]", segLen, len(idx))
	}

	segCounts := make(map[string]int)
	fullCounts := make(map[string]int)

	for pos, grams := range idx {
		for gram := range grams {
			fullCounts[gram]++
			if pos < segLen {
				segCounts[gram]++
			}
		}
	}

	for gram, n := range fullCounts {
		if n > numHash {
			return SegmentCoverage{}, fmt.Errorf(
				"encode: q-gram %q occupies %d bit positions, more than the %d hash functions", gram, n, numHash)
		}
	}

	cov := SegmentCoverage{
		SegmentGrams: len(segCounts),
		TotalGrams:   len(fullCounts),
		Segment:      stats.Summarize(values(segCounts)),
		Full:         stats.Summarize(values(fullCounts)),
	}
	return cov, nil
}

func values(m map[string]int) []int {
	out := make([]int, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
