package encode

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Scheme selects how the k bit positions of a q-gram are derived.
type Scheme string

const (
	// SchemeDouble derives positions from two independent cryptographic
	// digests of the q-gram: (int1 + i*int2) mod L for i = 1..k.
	SchemeDouble Scheme = "dh"

	// SchemeRandom seeds a pseudo-random generator deterministically from
	// the q-gram and the run seed, then draws k uniform positions in [0, L).
	SchemeRandom Scheme = "rh"
)

var (
	// ErrUnknownScheme is returned for a hashing scheme identifier that is
	// neither "dh" nor "rh". This is a configuration error: no filters are
	// produced.
	ErrUnknownScheme = errors.New("encode: unknown hashing scheme")

	// ErrBadParams is returned for non-positive filter length or hash count.
	ErrBadParams = errors.New("encode: invalid encoding parameters")
)

// Params are the encoding parameters shared by every filter of a run. Two
// datasets can only be attacked against each other if they were encoded with
// identical Params; Fingerprint gives the attack engine a cheap way to
// enforce that precondition.
type Params struct {
	Scheme  Scheme
	BFLen   int   // filter length L in bits
	NumHash int   // k, already resolved from the HashCount variant
	Seed    int64 // drives random hashing; ignored by double hashing
}

// Validate reports whether the parameters describe a usable encoding.
func (p Params) Validate() error {
	switch p.Scheme {
	case SchemeDouble, SchemeRandom:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScheme, p.Scheme)
	}
	if p.BFLen < 2 {
		return fmt.Errorf("%w: filter length %d", ErrBadParams, p.BFLen)
	}
	if p.NumHash < 1 {
		return fmt.Errorf("%w: hash count %d", ErrBadParams, p.NumHash)
	}
	return nil
}

// Fingerprint returns a digest of the parameters. Equal fingerprints mean two
// encodings used the same scheme, length, hash count and seed, so their bit
// positions are comparable.
func (p Params) Fingerprint() uint64 {
	return xxh3.HashString(fmt.Sprintf("%s|%d|%d|%d", p.Scheme, p.BFLen, p.NumHash, p.Seed))
}

// HashCountMode distinguishes a fixed hash count from the fill-rate
// heuristics.
type HashCountMode int

const (
	// HashCountFixed uses the integer k as given.
	HashCountFixed HashCountMode = iota

	// HashCountOptimal targets an average fill rate of 50% of the filter
	// bits: k = round(ln 2 * L / avgQGrams).
	HashCountOptimal

	// HashCountOptimalHalf halves the optimal count (25% fill).
	HashCountOptimalHalf

	// HashCountOptimalQuarter quarters the optimal count (12.5% fill).
	HashCountOptimalQuarter
)

// HashCount is the tagged variant behind the num-hash configuration value,
// which accepts either an integer or one of the heuristic tags. It is
// resolved to a concrete integer exactly once, before encoding begins.
type HashCount struct {
	Mode HashCountMode
	K    int // meaningful only for HashCountFixed
}

// ParseHashCount parses the command-line form of a hash count: a positive
// integer, or one of "opt", "opt_half", "opt_quarter".
func ParseHashCount(s string) (HashCount, error) {
	switch s {
	case "opt":
		return HashCount{Mode: HashCountOptimal}, nil
	case "opt_half":
		return HashCount{Mode: HashCountOptimalHalf}, nil
	case "opt_quarter":
		return HashCount{Mode: HashCountOptimalQuarter}, nil
	}

	k, err := strconv.Atoi(s)
	if err != nil || k < 1 {
		return HashCount{}, fmt.Errorf("%w: hash count %q", ErrBadParams, s)
	}
	return HashCount{Mode: HashCountFixed, K: k}, nil
}

// Resolve turns the variant into a concrete hash count. The heuristic modes
// need the average number of q-grams per value of the reference dataset. The
// half and quarter variants divide the already-rounded optimal count, not the
// raw ratio.
func (hc HashCount) Resolve(bfLen int, avgQGrams float64) (int, error) {
	if hc.Mode == HashCountFixed {
		if hc.K < 1 {
			return 0, fmt.Errorf("%w: hash count %d", ErrBadParams, hc.K)
		}
		return hc.K, nil
	}

	if bfLen < 2 || avgQGrams <= 0 {
		return 0, fmt.Errorf("%w: cannot resolve optimal hash count for bf_len=%d avg_qgrams=%.2f",
			ErrBadParams, bfLen, avgQGrams)
	}

	opt := int(math.Round(math.Ln2 * float64(bfLen) / avgQGrams))

	var k int
	switch hc.Mode {
	case HashCountOptimal:
		k = opt
	case HashCountOptimalHalf:
		k = int(math.Round(float64(opt) / 2))
	case HashCountOptimalQuarter:
		k = int(math.Round(float64(opt) / 4))
	default:
		return 0, fmt.Errorf("%w: hash count mode %d", ErrBadParams, hc.Mode)
	}

	if k < 1 {
		k = 1
	}
	return k, nil
}
