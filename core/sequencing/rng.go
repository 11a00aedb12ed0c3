package sequencing

import "math/rand"

// defaultSeed replaces a zero seed so that the zero value of a strategy is
// still reproducible.
const defaultSeed int64 = 1

// streamRNG returns the deterministic random stream for one restart. Streams
// of the same seed are decorrelated with a SplitMix64 finalizer, so restarts
// can run on any worker in any order and still produce the same schedules.
func streamRNG(seed int64, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	x := uint64(seed) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return rand.New(rand.NewSource(int64(x)))
}
