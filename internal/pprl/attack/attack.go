// Package attack implements the atom-based reconstruction attack on Bloom
// filter segments.
//
// The attacker holds one side's full encoding (atom filters and the
// bit-position provenance index) plus the combined q-gram to value index of
// both datasets, and observes only bit segments from the other side. Each
// observed segment is classified in three stages:
//
//  1. Atom candidacy: a q-gram is a candidate iff its atom segment's 1-bits
//     are a subset of the target segment's 1-bits. Necessary but not
//     sufficient; collisions produce false positives.
//  2. Zero-bit elimination: any candidate known (from the full provenance
//     index) to hash to a position where the target has a 0-bit is removed.
//     A true q-gram would have forced that bit to 1, so every removal
//     corrects a Stage-1 false positive.
//  3. Value resolution: each surviving q-gram votes for every plaintext
//     value containing it; the values with the maximal tally form the
//     resolved set, ties unbroken.
//
// Classification is read-only on all shared indexes and embarrassingly
// parallel across targets, so Attack fans targets out over a bounded worker
// pool and accumulates outcome counts on the way back in.
package attack

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/bitset"
	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/encode"
)

var (
	// ErrIncompatibleEncodings is returned when the attacker's and the
	// target's filters were not produced with identical encoding
	// parameters. Stage 2 reasons about the target's 0-bits through the
	// attacker's own provenance index, which is only sound when both sides
	// hashed q-grams identically.
	ErrIncompatibleEncodings = errors.New("attack: attacker and target encodings use different parameters")

	// ErrSampleSize is returned for a sample size outside [0, number of
	// targets].
	ErrSampleSize = errors.New("attack: sample size out of range")
)

// Config assembles the attacker's view for one segment length.
type Config struct {
	// MyParams are the parameters behind AtomSegments and Positions;
	// OtParams those behind the target segments. Their fingerprints must
	// match (see ErrIncompatibleEncodings).
	MyParams encode.Params
	OtParams encode.Params

	// AtomSegments maps each known q-gram to its atom filter truncated to
	// SegmentLen bits.
	AtomSegments map[string]*bitset.Vector

	// SegmentLen is the number of leaked prefix bits.
	SegmentLen int

	// Positions is the attacker's full, untruncated provenance index.
	Positions encode.PositionIndex

	// QGramValues is the combined q-gram to value index of both datasets.
	QGramValues map[string]map[string]struct{}

	// Workers bounds the classification worker pool. Zero or negative
	// selects GOMAXPROCS.
	Workers int

	Logger *slog.Logger
}

// Metrics holds the atomic counters the engine accumulates across runs.
type Metrics struct {
	TargetsProcessed atomic.Uint64 // targets classified, all Attack calls
	ZeroBitRemovals  atomic.Uint64 // Stage-2 candidate removals, all Attack calls
}

// Engine classifies target segments. It is safe for concurrent use once
// constructed; all referenced indexes are treated as read-only.
type Engine struct {
	atoms     map[string]*bitset.Vector
	segLen    int
	positions encode.PositionIndex
	values    map[string]map[string]struct{}
	workers   int
	logger    *slog.Logger
	metrics   Metrics
}

// New validates the configuration and builds an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.MyParams.Fingerprint() != cfg.OtParams.Fingerprint() {
		return nil, fmt.Errorf("%w: mine=%+v theirs=%+v", ErrIncompatibleEncodings, cfg.MyParams, cfg.OtParams)
	}
	if cfg.SegmentLen < 0 || cfg.SegmentLen > len(cfg.Positions) {
		return nil, fmt.Errorf("attack: segment length %d out of range for a %d-bit provenance index",
			cfg.SegmentLen, len(cfg.Positions))
	}
	for gram, seg := range cfg.AtomSegments {
		if seg.Len() != cfg.SegmentLen {
			return nil, fmt.Errorf("attack: atom segment for %q has %d bits, want %d", gram, seg.Len(), cfg.SegmentLen)
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		atoms:     cfg.AtomSegments,
		segLen:    cfg.SegmentLen,
		positions: cfg.Positions,
		values:    cfg.QGramValues,
		workers:   workers,
		logger:    logger,
	}, nil
}

// Metrics exposes the engine's cumulative counters.
func (e *Engine) Metrics() *Metrics {
	return &e.metrics
}

// Result summarizes one Attack run. The five outcome counts always sum to
// TargetsAttacked.
type Result struct {
	TargetsTotal    int // segments available
	TargetsAttacked int // segments actually classified

	Correct11 int // resolved set of size 1 containing the true value
	Correct1M int // larger resolved set containing the true value
	Wrong11   int // resolved set of size 1 missing the true value
	Wrong1M   int // larger resolved set missing the true value
	NoMatch   int // empty resolved set

	ZeroBitRemovals uint64 // Stage-2 removals in this run
}

// Attack classifies the given target segments, keyed by their true plaintext
// value. sampleSize restricts how many targets are attacked: 0 means all,
// otherwise a uniform sample without replacement drawn with the given seed.
func (e *Engine) Attack(targets map[string]*bitset.Vector, sampleSize int, seed int64) (*Result, error) {
	if sampleSize < 0 || sampleSize > len(targets) {
		return nil, fmt.Errorf("%w: %d of %d targets", ErrSampleSize, sampleSize, len(targets))
	}
	for val, seg := range targets {
		if seg.Len() != e.segLen {
			return nil, fmt.Errorf("attack: target segment for %q has %d bits, want %d", val, seg.Len(), e.segLen)
		}
	}

	attacked := sampleKeys(targets, sampleSize, seed)

	e.logger.Info("attacking bloom filter segments",
		"segment_bits", e.segLen,
		"targets", len(attacked),
		"atoms", len(e.atoms),
		"workers", e.workers,
	)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		removals uint64
		counts   [outcomeCount]int
	)

	jobs := make(chan string)
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var localCounts [outcomeCount]int
			var localRemovals uint64

			for trueVal := range jobs {
				out, removed := e.classify(trueVal, targets[trueVal])
				localCounts[out]++
				localRemovals += removed
			}

			mu.Lock()
			for i, n := range localCounts {
				counts[i] += n
			}
			removals += localRemovals
			mu.Unlock()
		}()
	}

	for _, trueVal := range attacked {
		jobs <- trueVal
	}
	close(jobs)
	wg.Wait()

	res := &Result{
		TargetsTotal:    len(targets),
		TargetsAttacked: len(attacked),
		Correct11:       counts[outcomeCorrect11],
		Correct1M:       counts[outcomeCorrect1M],
		Wrong11:         counts[outcomeWrong11],
		Wrong1M:         counts[outcomeWrong1M],
		NoMatch:         counts[outcomeNoMatch],
		ZeroBitRemovals: removals,
	}

	e.metrics.TargetsProcessed.Add(uint64(len(attacked)))
	e.metrics.ZeroBitRemovals.Add(removals)

	// The five outcomes partition the attacked targets. Anything else is an
	// internal logic defect and must abort the run.
	if sum := res.Correct11 + res.Correct1M + res.Wrong11 + res.Wrong1M + res.NoMatch; sum != res.TargetsAttacked {
		return nil, fmt.Errorf("attack: outcome counts sum to %d for %d targets", sum, res.TargetsAttacked)
	}

	return res, nil
}

type outcome int

const (
	outcomeNoMatch outcome = iota
	outcomeCorrect11
	outcomeCorrect1M
	outcomeWrong11
	outcomeWrong1M
	outcomeCount
)

// classify runs the three attack stages against one target segment and
// compares the resolved values with the target's true plaintext value.
func (e *Engine) classify(trueVal string, seg *bitset.Vector) (outcome, uint64) {
	// Stage 1: atom candidacy. A q-gram survives iff all of its atom's
	// 1-bits are set in the target segment.
	candidates := make(map[string]struct{})
	for gram, atomSeg := range e.atoms {
		if atomSeg.SubsetOf(seg) {
			candidates[gram] = struct{}{}
		}
	}

	// Stage 2: zero-bit elimination. Any candidate known to hash to a 0-bit
	// position of the target was a Stage-1 false positive.
	var removed uint64
	for pos := 0; pos < e.segLen; pos++ {
		if seg.Test(pos) {
			continue
		}
		for gram := range e.positions.GramsAt(pos) {
			if _, ok := candidates[gram]; ok {
				delete(candidates, gram)
				removed++
			}
		}
	}

	// Stage 3: value resolution by majority vote over the combined q-gram
	// to value index. All values tied at the maximal tally are resolved.
	tally := make(map[string]int)
	maxCount := 0
	for gram := range candidates {
		for val := range e.values[gram] {
			tally[val]++
			if tally[val] > maxCount {
				maxCount = tally[val]
			}
		}
	}

	if len(tally) == 0 {
		return outcomeNoMatch, removed
	}

	resolvedSize := 0
	containsTrue := false
	for val, n := range tally {
		if n == maxCount {
			resolvedSize++
			if val == trueVal {
				containsTrue = true
			}
		}
	}

	switch {
	case containsTrue && resolvedSize == 1:
		return outcomeCorrect11, removed
	case containsTrue:
		return outcomeCorrect1M, removed
	case resolvedSize == 1:
		return outcomeWrong11, removed
	default:
		return outcomeWrong1M, removed
	}
}
