// Package dataset loads a delimited data file into the in-memory maps that
// the encoder and the attack engine consume: unique normalized attribute
// values with their q-gram sets, and the reverse q-gram to value index.
//
// Normalization follows the linkage convention: each selected field is
// trimmed and lower-cased, fields are joined with a single space, and the
// resulting string is treated as one attribute value per record. Duplicate
// values across records collapse into a single entry, since identical values
// encode to identical filters.
//
// Values shorter than q yield an empty q-gram set and are skipped. They are
// counted in Skipped but are absent from the attack universe, which is a
// correctness property: an unencodable value cannot be resolved.
package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lazybeaver/entropy"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/qgram"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/stats"
)

// Options configures a load. AttrCols are zero-based column indexes of the
// fields to concatenate into the encoded attribute value.
type Options struct {
	Path     string
	Sep      rune
	Header   bool  // first row carries attribute names
	RecIDCol int   // record identifier column (reported, not encoded)
	AttrCols []int // columns to normalize and concatenate
	Q        int   // q-gram length
}

func (o Options) validate() error {
	if o.Path == "" {
		return errors.New("dataset: no input path")
	}
	if o.Q < 1 {
		return fmt.Errorf("dataset: q must be positive, got %d", o.Q)
	}
	if o.RecIDCol < 0 {
		return fmt.Errorf("dataset: record id column %d is negative", o.RecIDCol)
	}
	if len(o.AttrCols) == 0 {
		return errors.New("dataset: no attribute columns selected")
	}
	for _, c := range o.AttrCols {
		if c < 0 {
			return fmt.Errorf("dataset: attribute column %d is negative", c)
		}
	}
	return nil
}

// Dataset is the loaded, derived view of one input file. All maps are
// read-only after Load returns.
type Dataset struct {
	Name  string // base file name without .csv/.gz suffixes
	Attrs string // ";"-joined names (or indexes) of the encoded attributes

	// ValueQGrams maps each unique normalized attribute value to its q-gram
	// set. Every set is non-empty.
	ValueQGrams map[string]qgram.Set

	// QGramValues maps each q-gram to the set of values containing it.
	QGramValues map[string]map[string]struct{}

	Records   int     // data rows read
	Skipped   int     // unique values dropped for yielding zero q-grams
	AvgQGrams float64 // average q-gram count per kept value

	// ValuesPerQGram summarizes how many values each q-gram occurs in.
	ValuesPerQGram stats.Summary

	// ValueEntropy is the Shannon entropy (bits per byte) of the
	// concatenated unique normalized values, a rough measure of how much
	// identifying signal the selected attributes carry.
	ValueEntropy float64
}

// Load reads the file at opts.Path (gzip-compressed when it ends in .gz) and
// builds the dataset maps. The logger receives progress and summary lines;
// pass slog.New with a discard handler to silence them.
func Load(opts Options, logger *slog.Logger) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(opts.Path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: %w", opts.Path, err)
		}
		defer zr.Close()
		r = zr
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Sep
	reader.FieldsPerRecord = -1 // column checks are done per row below

	ds := &Dataset{
		Name:        baseName(opts.Path),
		ValueQGrams: make(map[string]qgram.Set),
		QGramValues: make(map[string]map[string]struct{}),
	}

	attrNames := make([]string, len(opts.AttrCols))
	for i, c := range opts.AttrCols {
		attrNames[i] = strconv.Itoa(c)
	}

	if opts.Header {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: reading header: %w", opts.Path, err)
		}
		for i, c := range opts.AttrCols {
			if c >= len(header) {
				return nil, fmt.Errorf("dataset: %s: attribute column %d beyond header width %d", opts.Path, c, len(header))
			}
			attrNames[i] = header[c]
		}
		logger.Info("loading data set", "file", opts.Path, "attributes", strings.Join(attrNames, ";"), "q", opts.Q)
	} else {
		logger.Info("loading data set", "file", opts.Path, "attribute_columns", strings.Join(attrNames, ";"), "q", opts.Q)
	}
	ds.Attrs = strings.Join(attrNames, ";")

	shannon := entropy.NewShannonEstimator()

	var qgramCounts []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: row %d: %w", opts.Path, ds.Records+1, err)
		}
		ds.Records++

		fields := make([]string, 0, len(opts.AttrCols))
		for _, c := range opts.AttrCols {
			if c >= len(row) {
				return nil, fmt.Errorf("dataset: %s: row %d has %d columns, need column %d", opts.Path, ds.Records, len(row), c)
			}
			fields = append(fields, strings.ToLower(strings.TrimSpace(row[c])))
		}
		value := strings.TrimSpace(strings.Join(fields, " "))

		// Each unique value is processed once.
		if _, seen := ds.ValueQGrams[value]; seen {
			continue
		}

		grams := qgram.Extract(value, opts.Q)
		if len(grams) == 0 {
			ds.Skipped++
			continue
		}

		ds.ValueQGrams[value] = grams
		qgramCounts = append(qgramCounts, len(grams))
		_, _ = io.WriteString(shannon, value)

		for gram := range grams {
			vals, ok := ds.QGramValues[gram]
			if !ok {
				vals = make(map[string]struct{})
				ds.QGramValues[gram] = vals
			}
			vals[value] = struct{}{}
		}
	}

	if len(ds.ValueQGrams) == 0 {
		return nil, fmt.Errorf("dataset: %s: no encodable values (all shorter than q=%d?)", opts.Path, opts.Q)
	}

	perGram := make([]int, 0, len(ds.QGramValues))
	for _, vals := range ds.QGramValues {
		perGram = append(perGram, len(vals))
	}
	ds.ValuesPerQGram = stats.Summarize(perGram)

	sum := stats.Summarize(qgramCounts)
	ds.AvgQGrams = sum.Mean
	ds.ValueEntropy = shannon.Value()

	logger.Info("data set loaded",
		"file", ds.Name,
		"records", ds.Records,
		"unique_values", len(ds.ValueQGrams),
		"skipped_values", ds.Skipped,
		"unique_qgrams", len(ds.QGramValues),
		"avg_qgrams_per_value", fmt.Sprintf("%.2f", ds.AvgQGrams),
		"value_entropy_bits", fmt.Sprintf("%.3f", ds.ValueEntropy),
	)

	return ds, nil
}

// baseName strips the directory and the trailing .gz / .csv suffixes.
func baseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".csv")
	return name
}
