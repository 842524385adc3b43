package nav

import (
	"time"

	xrand "golang.org/x/exp/rand"
)

// Rand is the randomness the bootstrap needs. *rand.Rand from
// golang.org/x/exp/rand satisfies it.
type Rand interface {
	Perm(n int) []int
}

// NewRand returns a PCG generator seeded with seed.
func NewRand(seed uint64) *xrand.Rand {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(seed)
	return rnd
}

// randFor returns the generator for one solve: fixed when the config asks
// for repeatable runs, time seeded otherwise.
func randFor(cfg Config) Rand {
	if cfg.Repeatable {
		return NewRand(cfg.Seed)
	}
	return NewRand(uint64(time.Now().UnixNano()))
}
