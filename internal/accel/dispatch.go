package accel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dispatch runs fn once per unit in [0, numUnits), fanned out across at
// most workers goroutines, and waits for all of them. It is the goroutine
// stand-in for a device queue's kernel launch: each unit (a basic event, a
// gate, or a tally node) owns a disjoint slice of its output buffer, so no
// synchronization beyond the final Wait is required between units.
func Dispatch(ctx context.Context, numUnits, workers int, fn func(ctx context.Context, unit int) error) error {
	if numUnits <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < numUnits; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

// WorkGroup is one work-group's share of an ND-range dispatch: the
// half-open unit range [UnitStart, UnitEnd) it covers on the events axis,
// and the flattened (batch, bitpack) indices it owns within that range.
// Every index in Indices belongs to exactly one WorkGroup for a given
// dispatch; WorkGroups never overlap.
type WorkGroup struct {
	UnitStart, UnitEnd int
	Indices            []int
}

// Dispatch3D fans out one goroutine per work-group implied by local over
// numUnits x shape — the Working-Set Planner's ND-range, realized as a
// goroutine grid instead of a device queue's kernel launch. Each work-group
// is handed a disjoint (unit range, index range) slice of the iteration
// space, so a kernel's output buffer position (batch, bitpack) is always
// written by exactly one work-group, and — for a tally reducer accumulating
// across several work-groups into the same node — the caller's per-group
// partial result only needs one atomic add per group, not per element.
func Dispatch3D(ctx context.Context, numUnits int, shape SampleShape, local LocalRange, workers int, fn func(ctx context.Context, wg WorkGroup) error) error {
	if numUnits <= 0 {
		return nil
	}
	le, lb, lj := maxInt(1, local.Events), maxInt(1, local.Batch), maxInt(1, local.Bitpacks)

	var groups []WorkGroup
	for uStart := 0; uStart < numUnits; uStart += le {
		uEnd := minInt(uStart+le, numUnits)
		for bStart := 0; bStart < shape.BatchSize; bStart += lb {
			bEnd := minInt(bStart+lb, shape.BatchSize)
			for jStart := 0; jStart < shape.BitpacksPerBatch; jStart += lj {
				jEnd := minInt(jStart+lj, shape.BitpacksPerBatch)
				indices := make([]int, 0, (bEnd-bStart)*(jEnd-jStart))
				for b := bStart; b < bEnd; b++ {
					for j := jStart; j < jEnd; j++ {
						indices = append(indices, b*shape.BitpacksPerBatch+j)
					}
				}
				groups = append(groups, WorkGroup{UnitStart: uStart, UnitEnd: uEnd, Indices: indices})
			}
		}
	}

	return Dispatch(ctx, len(groups), workers, func(ctx context.Context, gi int) error {
		return fn(ctx, groups[gi])
	})
}
