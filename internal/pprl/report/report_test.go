package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/attack"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/dataset"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/encode"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/stats"
)

func sampleTrial() (RunInfo, Trial) {
	info := RunInfo{
		RunID:   "run-1",
		Command: "segattack -q 2 -sep , -my a.csv",
		Attrs:   "first;last",
		NumHash: 10,
		Overlap: dataset.Overlap{
			MyValues: 100, OtValues: 90, CommonValues: 60, Jaccard: 0.4615,
			MyQGrams: 300, OtQGrams: 280, AllQGrams: 350, CommonQGrams: 230,
		},
	}
	tr := Trial{
		SegPercent: 50,
		SegLen:     500,
		My: encode.SegmentCoverage{
			SegmentGrams: 250, TotalGrams: 300,
			Segment: stats.Summary{Count: 250, Min: 1, Max: 10, Mean: 4.8, Median: 5},
		},
		Ot: encode.SegmentCoverage{
			SegmentGrams: 240, TotalGrams: 280,
			Segment: stats.Summary{Count: 240, Min: 1, Max: 9, Mean: 4.5, Median: 4},
		},
		Attack: &attack.Result{
			TargetsTotal: 90, TargetsAttacked: 90,
			Correct11: 40, Correct1M: 10, Wrong11: 5, Wrong1M: 15, NoMatch: 20,
		},
	}
	return info, tr
}

func TestCSVLine(t *testing.T) {
	info, tr := sampleTrial()
	line := CSVLine(info, tr)

	require.True(t, strings.HasPrefix(line, "### run-1, "))

	// The header and the line must agree on the column count.
	require.Equal(t,
		len(strings.Split(CSVHeader(), ",")),
		len(strings.Split(line, ",")),
		"column count mismatch between header and line")

	// The separator argument must not introduce a stray column.
	require.Contains(t, line, "-sep comma")
	require.Contains(t, line, "500, 50%")
	require.Contains(t, line, "40, 10, 5, 15, 20")
}

func TestWriteTrial(t *testing.T) {
	_, tr := sampleTrial()

	var sb strings.Builder
	WriteTrial(&sb, tr)
	out := sb.String()

	require.Contains(t, out, "50% segments (500 bits)")
	require.Contains(t, out, "Correct 1-to-1:    40 (44.44%)")
	require.Contains(t, out, "No match:          20 (22.22%)")
}

func TestWriteTrial_NoTargets(t *testing.T) {
	_, tr := sampleTrial()
	tr.Attack = &attack.Result{}

	var sb strings.Builder
	WriteTrial(&sb, tr)
	require.Contains(t, sb.String(), "Correct 1-to-1:    0 (0.00%)")
}
