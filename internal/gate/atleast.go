package gate

import (
	"context"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/internal/bitword"
)

// AtLeastGate is a K-of-N gate: its output bit is set wherever at least K
// of its (possibly negated) input bits are set.
type AtLeastGate[W bitword.Word] struct {
	Gate[W]
	K int
}

// RunAtLeast evaluates a wave of K-of-N gates via per-bit population
// counting across inputs. The per-bit counter is always widened to uint32
// regardless of the Word width in use, so it cannot overflow even for the
// largest supported fan-in (resolved open question: the reference kernel's
// 8-bit counter truncates silently once N reaches 256).
func RunAtLeast[W bitword.Word](ctx context.Context, gates []*AtLeastGate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	width := bitword.Width[W]()
	return accel.Dispatch3D(ctx, len(gates), shape, local, workers, func(_ context.Context, wg accel.WorkGroup) error {
		var counts [64]uint32
		for gi := wg.UnitStart; gi < wg.UnitEnd; gi++ {
			g := gates[gi]
			for _, index := range wg.Indices {
				for i := range counts {
					counts[i] = 0
				}
				for i := 0; i < g.NegatedInputsOffset; i++ {
					addCounts(&counts, g.Inputs[i][index], width, false)
				}
				for i := g.NegatedInputsOffset; i < len(g.Inputs); i++ {
					addCounts(&counts, g.Inputs[i][index], width, true)
				}
				var out uint64
				for pos := 0; pos < width; pos++ {
					if int(counts[pos]) >= g.K {
						out |= 1 << uint(pos)
					}
				}
				g.Output[index] = W(out)
			}
		}
		return nil
	})
}

func addCounts[W bitword.Word](counts *[64]uint32, val W, width int, negate bool) {
	if negate {
		val = ^val
	}
	for pos := 0; pos < width; pos++ {
		if bitword.Bit(val, uint(pos)) {
			counts[pos]++
		}
	}
}
