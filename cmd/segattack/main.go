// segattack runs an atom-based reconstruction attack against Bloom filter
// segments, simulating what an adversary who knows the encoding parameters
// can learn from bit-prefixes leaked by another database owner.
//
// Pipeline
// ========
//
// The run proceeds in three steps, mirroring the two-party setting:
//
// Step 1: both data sets are loaded and every selected attribute value is
// normalized and converted into its q-gram set. The "my" data set is the
// attacker's own (full filters and provenance known); the "ot" data set
// plays the other database owner, of which only segments will be used.
//
// Step 2: both data sets are encoded with identical parameters into per-value
// Bloom filters, per-q-gram atom filters, and a bit-position provenance
// index. The number of hash functions is either fixed or resolved via the
// fill-rate heuristic (opt / opt_half / opt_quarter) from the attacker's
// average q-gram count.
//
// Step 3: for every configured segment percentage, the other owner's record
// filters and the attacker's atom filters are truncated to the same prefix
// length and the three-stage attack classifies each target segment. One
// human-readable block and one machine-readable CSV line are emitted per
// trial.
//
// Only the attacker's indexes carry across trials; target segments are
// re-extracted per percentage because the prefix length changes.
//
// Reproducibility
// ===============
//
// A single -seed value drives both the random-hashing scheme and the target
// sampler, so identical invocations produce identical numbers.
//
// Example
// =======
//
//	segattack -q 2 -hash dh -num-hash opt -bf-len 1000 \
//	    -my ncvoter-a.csv.gz -ot ncvoter-b.csv.gz \
//	    -attrs 5 -header -seg-percents 100,50,25,10,5,2,1 \
//	    -attack-sample 1000
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/attack"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/bitset"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/dataset"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/encode"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/report"
)

type config struct {
	q           int
	hashType    string
	numHash     string
	bfLen       int
	myPath      string
	otPath      string
	recIDCol    int
	sep         string
	header      bool
	attrs       string
	segPercents string
	sample      string
	seed        int64
	workers     int
}

func main() {
	var cfg config

	flag.IntVar(&cfg.q, "q", 2, "Length of q-grams to extract")
	flag.StringVar(&cfg.hashType, "hash", "dh", "Hashing scheme: dh (double hashing) or rh (random hashing)")
	flag.StringVar(&cfg.numHash, "num-hash", "opt", "Number of hash functions: a positive integer, opt, opt_half or opt_quarter")
	flag.IntVar(&cfg.bfLen, "bf-len", 1000, "Bloom filter length in bits")
	flag.StringVar(&cfg.myPath, "my", "", "CSV file of the attacker's data set (full filters known)")
	flag.StringVar(&cfg.otPath, "ot", "", "CSV file of the other database owner (only segments leaked)")
	flag.IntVar(&cfg.recIDCol, "rec-id-col", 0, "Column holding record identifiers")
	flag.StringVar(&cfg.sep, "sep", ",", "Field separator in the input files")
	flag.BoolVar(&cfg.header, "header", true, "Input files carry a header line with attribute names")
	flag.StringVar(&cfg.attrs, "attrs", "", "Comma-separated column indexes of the attributes to encode")
	flag.StringVar(&cfg.segPercents, "seg-percents", "100,50,25,10,5,2,1", "Segment percentages to attack")
	flag.StringVar(&cfg.sample, "attack-sample", "all", "Number of target segments to attack: all or a positive integer")
	flag.Int64Var(&cfg.seed, "seed", 42, "Seed for random hashing and target sampling")
	flag.IntVar(&cfg.workers, "workers", 0, "Attack worker count (0 uses all CPUs)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	run, err := buildRun(cfg)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run.execute(logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run is the validated form of the configuration: every loose string has
// been parsed, so execute can fail only on data or logic errors.
type run struct {
	cfg         config
	loadOpts    dataset.Options
	scheme      encode.Scheme
	hashCount   encode.HashCount
	segPercents []int
	sample      int // 0 means all
}

// buildRun validates the configuration before any encoding work begins, so a
// bad scheme or parameter never produces partial state.
func buildRun(cfg config) (*run, error) {
	if cfg.myPath == "" || cfg.otPath == "" {
		return nil, fmt.Errorf("both -my and -ot input files are required")
	}
	if cfg.q < 1 {
		return nil, fmt.Errorf("q must be positive, got %d", cfg.q)
	}
	if cfg.bfLen < 2 {
		return nil, fmt.Errorf("bf-len must be at least 2, got %d", cfg.bfLen)
	}

	scheme := encode.Scheme(strings.ToLower(cfg.hashType))
	if scheme != encode.SchemeDouble && scheme != encode.SchemeRandom {
		return nil, fmt.Errorf("%w: %q", encode.ErrUnknownScheme, cfg.hashType)
	}

	hashCount, err := encode.ParseHashCount(cfg.numHash)
	if err != nil {
		return nil, err
	}

	sep, err := parseSeparator(cfg.sep)
	if err != nil {
		return nil, err
	}

	attrCols, err := parseIntList(cfg.attrs)
	if err != nil || len(attrCols) == 0 {
		return nil, fmt.Errorf("attrs must list at least one column index: %q", cfg.attrs)
	}

	percents, err := parseIntList(cfg.segPercents)
	if err != nil || len(percents) == 0 {
		return nil, fmt.Errorf("seg-percents must list at least one percentage: %q", cfg.segPercents)
	}
	for _, p := range percents {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("segment percentage %d outside [0,100]", p)
		}
	}

	sample, err := parseSample(cfg.sample)
	if err != nil {
		return nil, err
	}

	return &run{
		cfg: cfg,
		loadOpts: dataset.Options{
			Sep:      sep,
			Header:   cfg.header,
			RecIDCol: cfg.recIDCol,
			AttrCols: attrCols,
			Q:        cfg.q,
		},
		scheme:      scheme,
		hashCount:   hashCount,
		segPercents: percents,
		sample:      sample,
	}, nil
}

func (r *run) execute(logger *slog.Logger) error {
	start := time.Now()

	// Step 1: load both data sets and extract q-grams.
	myOpts := r.loadOpts
	myOpts.Path = r.cfg.myPath
	my, err := dataset.Load(myOpts, logger)
	if err != nil {
		return err
	}

	otOpts := r.loadOpts
	otOpts.Path = r.cfg.otPath
	ot, err := dataset.Load(otOpts, logger)
	if err != nil {
		return err
	}

	if my.Attrs != ot.Attrs {
		return fmt.Errorf("data sets encode different attributes: %q vs %q", my.Attrs, ot.Attrs)
	}

	overlap := dataset.ComputeOverlap(my, ot)
	logger.Info("data set overlap",
		"common_values", overlap.CommonValues,
		"jaccard_pct", fmt.Sprintf("%.1f", 100*overlap.Jaccard),
		"common_qgrams", overlap.CommonQGrams,
		"all_qgrams", overlap.AllQGrams,
	)

	// Step 2: resolve the hash count and encode both data sets with
	// identical parameters.
	numHash, err := r.hashCount.Resolve(r.cfg.bfLen, my.AvgQGrams)
	if err != nil {
		return err
	}

	params := encode.Params{
		Scheme:  r.scheme,
		BFLen:   r.cfg.bfLen,
		NumHash: numHash,
		Seed:    r.cfg.seed,
	}

	logger.Info("encoding bloom filters",
		"scheme", string(params.Scheme),
		"bf_len", params.BFLen,
		"num_hash", params.NumHash,
	)

	myEnc, err := encode.Encode(my.ValueQGrams, params)
	if err != nil {
		return err
	}
	otEnc, err := encode.Encode(ot.ValueQGrams, params)
	if err != nil {
		return err
	}

	qgramValues := dataset.MergeQGramValues(my, ot)

	if r.sample > len(otEnc.Filters) {
		return fmt.Errorf("attack sample %d exceeds the %d available targets", r.sample, len(otEnc.Filters))
	}

	info := report.RunInfo{
		RunID:   uuid.NewString(),
		Command: strings.Join(os.Args, " "),
		Attrs:   my.Attrs,
		NumHash: numHash,
		Overlap: overlap,
	}

	fmt.Println(report.CSVHeader())

	// Step 3: one attack trial per segment percentage. The attacker's
	// encoding carries across trials; segments are re-extracted because the
	// prefix length changes.
	for _, segPct := range r.segPercents {
		segLen := bitset.SegmentLength(params.BFLen, segPct)

		atomSegs, err := myEnc.AtomSegments(segLen)
		if err != nil {
			return err
		}
		targets, err := otEnc.FilterSegments(segLen)
		if err != nil {
			return err
		}

		myCov, err := myEnc.Positions.Coverage(segLen, numHash)
		if err != nil {
			return err
		}
		otCov, err := otEnc.Positions.Coverage(segLen, numHash)
		if err != nil {
			return err
		}

		engine, err := attack.New(attack.Config{
			MyParams:     myEnc.Params,
			OtParams:     otEnc.Params,
			AtomSegments: atomSegs,
			SegmentLen:   segLen,
			Positions:    myEnc.Positions,
			QGramValues:  qgramValues,
			Workers:      r.cfg.workers,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		res, err := engine.Attack(targets, r.sample, r.cfg.seed)
		if err != nil {
			return err
		}

		trial := report.Trial{
			SegPercent: segPct,
			SegLen:     segLen,
			My:         myCov,
			Ot:         otCov,
			Attack:     res,
		}

		report.WriteTrial(os.Stdout, trial)
		fmt.Println(report.CSVLine(info, trial))
	}

	logger.Info("run complete", "run_id", info.RunID, "duration", time.Since(start))
	return nil
}
