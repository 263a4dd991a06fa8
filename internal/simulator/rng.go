package simulator

import "math/rand/v2"

// Outage sampling uses one PCG stream per (unit, trial), keyed off the
// master seed with a splitmix64 finalizer. Draws within a stream are
// hour-ordered, so the matrix is identical for any worker count.

func splitmix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// unitStream returns the RNG stream for one unit in one trial.
func unitStream(seed uint64, unitID, trial int) *rand.Rand {
	hi := splitmix64(seed ^ splitmix64(uint64(unitID)))
	lo := splitmix64(hi ^ uint64(trial))
	return rand.New(rand.NewPCG(hi, lo))
}
