// Package report formats the structured results of an attack run. The core
// packages expose plain structs; everything textual lives here, in two forms:
// a human-readable summary per trial, and a single machine-readable CSV line
// per trial for downstream result collection.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/attack"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/dataset"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/encode"
)

// RunInfo carries the per-run context shared by every trial line.
type RunInfo struct {
	RunID   string // unique identifier of this run
	Command string // the command line that produced the run
	Attrs   string // names of the encoded attributes
	NumHash int    // resolved hash count
	Overlap dataset.Overlap
}

// Trial is the outcome of attacking one segment percentage.
type Trial struct {
	SegPercent int
	SegLen     int

	My encode.SegmentCoverage // attacker-side coverage stats
	Ot encode.SegmentCoverage // target-side coverage stats

	Attack *attack.Result
}

// CSVHeader names the columns of the per-trial result line.
func CSVHeader() string {
	return "### run_id, command, encoded_attrs, num_hash_funct, " +
		"num_my_attr_val, num_ot_attr_val, num_common_attr_val, jacc_common_perc, " +
		"my_num_q_gram, ot_num_q_gram, num_all_q_gram, num_common_q_gram, " +
		"bf_seg_len, bf_seg_perc, " +
		"my_num_q_gram_bf_seg, my_min_num_bit_pos, my_avr_num_bit_pos, my_med_num_bit_pos, my_max_num_bit_pos, " +
		"ot_num_q_gram_bf_seg, ot_min_num_bit_pos, ot_avr_num_bit_pos, ot_med_num_bit_pos, ot_max_num_bit_pos, " +
		"num_corr_1_1, num_corr_1_m, num_wrong_1_1, num_wrong_1_m, num_no_match"
}

// CSVLine renders one trial as a comma-separated result line matching
// CSVHeader. Commas inside the quoted command are rewritten so the line
// splits cleanly.
func CSVLine(info RunInfo, tr Trial) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s, %q, ", info.RunID, sanitizeCommand(info.Command))
	fmt.Fprintf(&sb, "%s, %d, ", info.Attrs, info.NumHash)
	fmt.Fprintf(&sb, "%d, %d, %d, %.1f, ",
		info.Overlap.MyValues, info.Overlap.OtValues, info.Overlap.CommonValues, 100*info.Overlap.Jaccard)
	fmt.Fprintf(&sb, "%d, %d, %d, %d, ",
		info.Overlap.MyQGrams, info.Overlap.OtQGrams, info.Overlap.AllQGrams, info.Overlap.CommonQGrams)
	fmt.Fprintf(&sb, "%d, %d%%, ", tr.SegLen, tr.SegPercent)
	fmt.Fprintf(&sb, "%d, %d, %.2f, %.1f, %d, ",
		tr.My.SegmentGrams, tr.My.Segment.Min, tr.My.Segment.Mean, tr.My.Segment.Median, tr.My.Segment.Max)
	fmt.Fprintf(&sb, "%d, %d, %.2f, %.1f, %d, ",
		tr.Ot.SegmentGrams, tr.Ot.Segment.Min, tr.Ot.Segment.Mean, tr.Ot.Segment.Median, tr.Ot.Segment.Max)
	fmt.Fprintf(&sb, "%d, %d, %d, %d, %d",
		tr.Attack.Correct11, tr.Attack.Correct1M, tr.Attack.Wrong11, tr.Attack.Wrong1M, tr.Attack.NoMatch)

	return sb.String()
}

// WriteTrial renders the human-readable summary of one trial.
func WriteTrial(w io.Writer, tr Trial) {
	res := tr.Attack

	fmt.Fprintf(w, "Segment attack results for %d%% segments (%d bits):\n", tr.SegPercent, tr.SegLen)
	fmt.Fprintf(w, "  Attacker q-grams with bits in segment: %d of %d\n", tr.My.SegmentGrams, tr.My.TotalGrams)
	fmt.Fprintf(w, "  Target q-grams with bits in segment:   %d of %d\n", tr.Ot.SegmentGrams, tr.Ot.TotalGrams)
	fmt.Fprintf(w, "  Zero-bit filtering removed %d candidate q-grams\n", res.ZeroBitRemovals)
	fmt.Fprintf(w, "  Targets attacked: %d of %d\n", res.TargetsAttacked, res.TargetsTotal)
	fmt.Fprintf(w, "    Correct 1-to-1:    %d (%s)\n", res.Correct11, pct(res.Correct11, res.TargetsAttacked))
	fmt.Fprintf(w, "    Correct 1-to-many: %d (%s)\n", res.Correct1M, pct(res.Correct1M, res.TargetsAttacked))
	fmt.Fprintf(w, "    Wrong 1-to-1:      %d (%s)\n", res.Wrong11, pct(res.Wrong11, res.TargetsAttacked))
	fmt.Fprintf(w, "    Wrong 1-to-many:   %d (%s)\n", res.Wrong1M, pct(res.Wrong1M, res.TargetsAttacked))
	fmt.Fprintf(w, "    No match:          %d (%s)\n", res.NoMatch, pct(res.NoMatch, res.TargetsAttacked))
}

func pct(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100*float64(n)/float64(total))
}

// sanitizeCommand keeps the result line splittable on commas: the separator
// argument becomes the word "comma", any remaining commas become semicolons.
func sanitizeCommand(cmd string) string {
	cmd = strings.ReplaceAll(cmd, " , ", " comma ")
	return strings.ReplaceAll(cmd, ",", ";")
}
