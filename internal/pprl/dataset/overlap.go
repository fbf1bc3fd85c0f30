package dataset

// Overlap describes how much two datasets have in common. The attack's
// resolving power depends directly on this: a value of the other party that
// shares no q-grams with the reference dataset can never be reconstructed.
type Overlap struct {
	MyValues     int
	OtValues     int
	CommonValues int
	Jaccard      float64 // |common| / |union| over unique values

	MyQGrams     int
	OtQGrams     int
	AllQGrams    int
	CommonQGrams int
}

// ComputeOverlap compares the unique value and q-gram universes of the two
// datasets.
func ComputeOverlap(my, ot *Dataset) Overlap {
	ov := Overlap{
		MyValues: len(my.ValueQGrams),
		OtValues: len(ot.ValueQGrams),
		MyQGrams: len(my.QGramValues),
		OtQGrams: len(ot.QGramValues),
	}

	for v := range my.ValueQGrams {
		if _, ok := ot.ValueQGrams[v]; ok {
			ov.CommonValues++
		}
	}
	if union := ov.MyValues + ov.OtValues - ov.CommonValues; union > 0 {
		ov.Jaccard = float64(ov.CommonValues) / float64(union)
	}

	for g := range my.QGramValues {
		if _, ok := ot.QGramValues[g]; ok {
			ov.CommonQGrams++
		}
	}
	ov.AllQGrams = ov.MyQGrams + ov.OtQGrams - ov.CommonQGrams

	return ov
}

// MergeQGramValues unions the q-gram to value indexes of both datasets. The
// attack's value-resolution stage tallies against this combined index, so a
// candidate q-gram votes for every value, from either dataset, known to
// contain it.
func MergeQGramValues(my, ot *Dataset) map[string]map[string]struct{} {
	merged := make(map[string]map[string]struct{}, len(my.QGramValues))

	for gram, vals := range my.QGramValues {
		set := make(map[string]struct{}, len(vals))
		for v := range vals {
			set[v] = struct{}{}
		}
		merged[gram] = set
	}

	for gram, vals := range ot.QGramValues {
		set, ok := merged[gram]
		if !ok {
			set = make(map[string]struct{}, len(vals))
			merged[gram] = set
		}
		for v := range vals {
			set[v] = struct{}{}
		}
	}

	return merged
}
