// Package sample implements the sampling strategies over a sharded
// columnar dataset: indexed uniform sampling, streaming reservoir sampling
// (plain and stratified), and per-shard daily bounded sampling.
//
// Every sampler takes an explicit seeded RNG; nothing reads global random
// state, so runs with equal seeds over an unmodified dataset are
// bit-identical.
package sample

import (
	"math/rand"

	"github.com/pkg/errors"
)

// RNG is a deterministic random source. All draws are a pure function of
// the seed and the call sequence; there is no I/O and no retry.
type RNG struct {
	r *rand.Rand
}

// NewRNG returns a source seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// IntBetween draws an integer from the closed interval [low, high]. The
// inclusive upper bound is what reservoir replacement relies on: the draw
// over [0, seen-1] must be able to produce seen-1.
func (g *RNG) IntBetween(low, high int64) int64 {
	if high < low {
		panic("sample: IntBetween bounds inverted")
	}
	return low + g.r.Int63n(high-low+1)
}

// ChooseWithoutReplacement draws k distinct integers from [0, population)
// in O(k) time and memory using Floyd's algorithm. The returned order is
// the draw order, deterministic per seed. Fails with ErrInvalidArgument if
// k > population or either argument is negative.
func (g *RNG) ChooseWithoutReplacement(population, k int64) ([]int64, error) {
	if k < 0 || population < 0 || k > population {
		return nil, errors.Wrapf(ErrInvalidArgument, "cannot choose %d of %d without replacement", k, population)
	}

	chosen := make(map[int64]struct{}, k)
	out := make([]int64, 0, k)
	for i := population - k; i < population; i++ {
		j := g.r.Int63n(i + 1)
		if _, taken := chosen[j]; taken {
			j = i
		}
		chosen[j] = struct{}{}
		out = append(out, j)
	}
	return out, nil
}
