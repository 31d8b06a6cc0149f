// Package sampler implements the Sample Generator (C3): it fills each basic
// event's bit-pack buffer with one fresh Bernoulli draw per Monte Carlo
// sample bit, using the counter-based Philox-4x32-10 PRNG so that no
// goroutine needs to own per-thread RNG state.
package sampler

import (
	"context"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/internal/bitword"
)

// BasicEvent is one Bernoulli leaf: a stable PDAG index, its success
// probability, and the bit-pack buffer the kernel writes into.
type BasicEvent[W bitword.Word] struct {
	Index       int
	Probability float64
	Buffer      bitword.Buffer[W]
}

// Kernel draws fresh samples for a wave's basic events.
type Kernel[W bitword.Word] struct {
	Events []*BasicEvent[W]
	Shape  accel.SampleShape

	// Local is the Working-Set Planner's work-group shape for this
	// dispatch (accel.Planner.LocalRange), set by the pipeline when the
	// kernel is built. It governs how the (event, batch, bitpack) ND-range
	// is partitioned across goroutines.
	Local accel.LocalRange
}

// Run fills every event's buffer for the given iteration. eventID is each
// event's position within Events (the kernel's own launch-local id), kept
// distinct from BasicEvent.Index (the PDAG's stable id) exactly as the
// reference kernel seeds on both.
func (k *Kernel[W]) Run(ctx context.Context, iteration uint32, workers int) error {
	width := bitword.Width[W]()
	rounds := width / 4

	return accel.Dispatch3D(ctx, len(k.Events), k.Shape, k.Local, workers, func(_ context.Context, wg accel.WorkGroup) error {
		for eventIdx := wg.UnitStart; eventIdx < wg.UnitEnd; eventIdx++ {
			event := k.Events[eventIdx]
			for _, index := range wg.Indices {
				batchID := index / k.Shape.BitpacksPerBatch
				bitpackID := index % k.Shape.BitpacksPerBatch
				event.Buffer[index] = generate[W](
					uint32(event.Index), uint32(eventIdx), uint32(batchID), uint32(bitpackID),
					iteration, event.Probability, rounds,
				)
			}
		}
		return nil
	})
}

const invUint32Max = 1.0 / 4294967296.0

// generate produces one W-wide bit-pack for a single basic event at one
// (batch, bitpack) slot. It runs the Philox permutation width/4 times,
// each call yielding four Bernoulli bits compared against probability via
// the standard "draw / 2^32 < p" construction.
//
// The fourth seed word is bitpackIdx + (iteration << shift), shift growing
// with the round index exactly as the reference kernel's
// "bitpack_idx + (iteration << (num_bits_in_dtype << i))" — except shift
// counts here are computed as plain Go uint values, which are well-defined
// (the shift evaluates to zero) at or beyond the operand width, instead of
// the C++ original's undefined behavior for the same case. This makes the
// generator deterministic and reproducible for a fixed (index, iteration)
// pair, but intentionally not bit-identical to the C++ reference (see
// DESIGN.md, resolved open question on Philox seed mixing).
func generate[W bitword.Word](indexID, eventID, batchID, bitpackIdx, iteration uint32, probability float64, rounds int) W {
	var out uint64
	for i := 0; i < rounds; i++ {
		shift := uint(bitword.Width[W]()) << uint(i)
		seeds := philoxState{
			indexID + 1,
			eventID + 1,
			batchID + 1,
			bitpackIdx + (iteration << shift),
		}
		c := philoxGenerate(seeds)

		var nibble uint64
		for b := 0; b < 4; b++ {
			if float64(c[b])*invUint32Max < probability {
				nibble |= 1 << uint(b)
			}
		}
		out |= nibble << uint(4*i)
	}
	return W(out)
}
