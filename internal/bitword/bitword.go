// Package bitword provides the generic bit-pack word abstraction shared by
// the sampler, gate and tally kernels. It stands in for the C++ template
// parameter bitpack_t_: the only two supported instantiations are uint8 and
// uint64, selected at compile time via Go generics instead of templates.
package bitword

import "math/bits"

// Word is the set of types a bit-pack may be stored as. Only exact uint8 and
// uint64 instantiations are supported; see Width and PopCount.
type Word interface {
	uint8 | uint64
}

// Width returns the number of Monte Carlo samples packed into one Word, i.e.
// the bit width of W.
func Width[W Word]() int {
	var zero W
	switch any(zero).(type) {
	case uint8:
		return 8
	case uint64:
		return 64
	default:
		panic("bitword: unsupported word width")
	}
}

// AllOnes returns a Word with every bit set, the fold identity for AND.
func AllOnes[W Word]() W {
	return ^W(0)
}

// Bit reports whether the bit at pos (0 = least significant) is set.
func Bit[W Word](w W, pos uint) bool {
	return (w>>pos)&1 != 0
}

// PopCount returns the number of set bits in w.
func PopCount[W Word](w W) int {
	switch v := any(w).(type) {
	case uint8:
		return bits.OnesCount8(v)
	case uint64:
		return bits.OnesCount64(v)
	default:
		panic("bitword: unsupported word width")
	}
}

// Buffer is a bit-packed sample buffer: one Word per (batch, bitpack) slot,
// indexed batch_id*bitpacks_per_batch + bitpack_id. Buffers are shared by
// reference between a node's kernel output and its consumers' kernel inputs.
type Buffer[W Word] []W
