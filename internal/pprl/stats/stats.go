// Package stats provides the small descriptive-statistics summary used by the
// dataset loader, the encoder diagnostics, and the reporting layer.
package stats

import "sort"

// Summary describes a sample of integer counts. Count is the sample size;
// the remaining fields are meaningless (zero) when Count is 0.
type Summary struct {
	Count  int
	Min    int
	Max    int
	Mean   float64
	Median float64
}

// Summarize computes min, max, mean and median of xs. The input is not
// modified. An empty sample yields the zero Summary.
func Summarize(xs []int) Summary {
	if len(xs) == 0 {
		return Summary{}
	}

	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)

	total := 0
	for _, x := range sorted {
		total += x
	}

	// Median of an even-sized sample is the mean of the two middle values.
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   float64(total) / float64(len(sorted)),
		Median: median,
	}
}
