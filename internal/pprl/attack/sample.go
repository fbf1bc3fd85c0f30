package attack

import (
	"math/rand"
	"sort"

	"github.com/anushkavidanage/bc-pprlSegmentAtomAttack/internal/pprl/bitset"
)

// sampleKeys draws sampleSize target keys uniformly without replacement,
// deterministically for a given seed. A sampleSize of 0 selects every target.
//
// Map iteration order is randomized, so the keys are sorted before sampling;
// the permutation then depends only on the seed and the key set.
func sampleKeys(targets map[string]*bitset.Vector, sampleSize int, seed int64) []string {
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if sampleSize == 0 || sampleSize >= len(keys) {
		return keys
	}

	rng := rand.New(rand.NewSource(seed))
	picked := make([]string, 0, sampleSize)
	for _, i := range rng.Perm(len(keys))[:sampleSize] {
		picked = append(picked, keys[i])
	}
	return picked
}
