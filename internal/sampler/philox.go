package sampler

import "math/bits"

// Philox-4x32-10 round constants (Salmon et al., 2011), as used by the
// reference basic_event kernel.
const (
	philoxW32A = 0x9E3779B9
	philoxW32B = 0xBB67AE85
	philoxM4x32A = 0xD2511F53
	philoxM4x32B = 0xCD9E8D57
)

// Initial whitening key, carried over from the reference kernel's fixed
// key schedule start.
const (
	philoxInitialK0 = 382307844
	philoxInitialK1 = 293830103
)

type philoxState [4]uint32

// philoxRound applies one Philox-4x32 round: two 32x32->64 multiplies,
// cross-mixed with the previous counter half and the current round key.
func philoxRound(k0, k1 uint32, c philoxState) philoxState {
	hi0, lo0 := bits.Mul32(philoxM4x32A, c[0])
	hi1, lo1 := bits.Mul32(philoxM4x32B, c[2])
	return philoxState{
		hi1 ^ c[1] ^ k0,
		lo1,
		hi0 ^ c[3] ^ k1,
		lo0,
	}
}

// philoxGenerate runs the full 10-round Philox-4x32-10 permutation over the
// given counter (seeds) and returns the resulting four pseudo-random
// 32-bit words.
func philoxGenerate(seeds philoxState) philoxState {
	k0, k1 := uint32(philoxInitialK0), uint32(philoxInitialK1)
	c := seeds
	for round := 0; round < 10; round++ {
		c = philoxRound(k0, k1, c)
		k0 += philoxW32A
		k1 += philoxW32B
	}
	return c
}
