package interp

// Rand is a deterministic linear-congruential generator backing the
// language's built-in pseudo-random source, grounded in
// original_source/src/runtime/deterministic.rs's DeterministicRng: a
// replay or test harness pins the seed via execute_with_seed so two
// runs of the same script produce bit-identical output.
type Rand struct {
	state uint64
}

const defaultSeed uint64 = 0x2545F4914F6CDD1D

// LCG constants from Numerical Recipes, matched to deterministic.rs's
// choice so values stay comparable to what a replayed trace recorded.
const (
	lcgMul = 6364136223846793005
	lcgInc = 1442695040888963407
)

func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return &Rand{state: seed}
}

// Next returns the next pseudo-random uint64 and advances the state.
func (r *Rand) Next() uint64 {
	r.state = r.state*lcgMul + lcgInc
	return r.state
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Next()>>11) / float64(1<<53)
}

// IntRange returns a value in [lo, hi).
func (r *Rand) IntRange(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	span := uint64(hi - lo)
	return lo + int64(r.Next()%span)
}
