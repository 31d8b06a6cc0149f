// Package tally implements the Tally/Reducer (C5): popcounting each
// tallied node's buffer, accumulating the running one-bit count, and
// deriving the Bernoulli mean, standard error and confidence intervals the
// pipeline reports back to the caller.
package tally

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/internal/bitword"
)

// Z-scores for the two-sided 95% and 99% confidence intervals.
const (
	z95 = 1.959963984540054
	z99 = 2.5758293035489004
)

// Snapshot is a tally node's running estimate, safe to read concurrently
// with further Reducer.Run calls (it is always replaced atomically as a
// whole, never mutated in place).
type Snapshot struct {
	NumOneBits uint64
	Mean       float64
	StdErr     float64
	CI95Low    float64
	CI95High   float64
	CI99Low    float64
	CI99High   float64
}

// Event is a tallied node: the buffer to popcount (aliasing a basic
// event's or gate's output buffer) plus the running accumulator.
type Event[W bitword.Word] struct {
	Index      int
	Buffer     bitword.Buffer[W]
	numOneBits atomic.Uint64
	snapshot   atomic.Pointer[Snapshot]
}

// NewEvent wraps buffer for tallying.
func NewEvent[W bitword.Word](index int, buffer bitword.Buffer[W]) *Event[W] {
	e := &Event[W]{Index: index, Buffer: buffer}
	e.snapshot.Store(&Snapshot{})
	return e
}

// Snapshot returns the node's most recently finalized statistics.
func (e *Event[W]) Snapshot() Snapshot { return *e.snapshot.Load() }

func (e *Event[W]) finalize(totalBits uint64) {
	oneBits := e.numOneBits.Load()
	snap := Snapshot{NumOneBits: oneBits}
	if totalBits > 0 {
		mean := float64(oneBits) / float64(totalBits)
		variance := mean * (1 - mean)
		stdErr := math.Sqrt(variance / float64(totalBits))

		snap.Mean = mean
		snap.StdErr = stdErr
		snap.CI95Low = clamp01(mean - z95*stdErr)
		snap.CI95High = clamp01(mean + z95*stdErr)
		snap.CI99Low = clamp01(mean - z99*stdErr)
		snap.CI99High = clamp01(mean + z99*stdErr)
	}
	e.snapshot.Store(&snap)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Reducer drives one or more Events through one tally pass. Each work-group
// of the Working-Set Planner's local range popcounts its own disjoint slice
// of an Event's buffer, folds it into one local partial sum, and does a
// single atomic add of that partial sum to the Event's accumulator — the
// device-scope "reduction over work-group with plus, then one atomic add
// per group" the reference tally kernel performs. Because several
// work-groups can contribute to the same Event's accumulator in parallel,
// finalize only runs once Run's dispatch has fully returned (the host-side
// wait standing in for the reference kernel's local-memory barrier before
// the single designated thread reads num_one_bits).
type Reducer[W bitword.Word] struct {
	Events []*Event[W]
	Shape  accel.SampleShape

	// Local is the Working-Set Planner's work-group shape for this
	// dispatch (accel.Planner.PlanTally), set by the pipeline when the
	// reducer is built.
	Local accel.LocalRange
}

// Run popcounts every Event's buffer, accumulates into its running total,
// and refreshes its Snapshot, treating iteration as the total number of
// tally() submissions made so far (used to compute total sample count).
func (r *Reducer[W]) Run(ctx context.Context, iteration uint64, workers int) error {
	width := uint64(bitword.Width[W]())
	totalBits := iteration * uint64(r.Shape.NumBitpacks()) * width

	err := accel.Dispatch3D(ctx, len(r.Events), r.Shape, r.Local, workers, func(_ context.Context, wg accel.WorkGroup) error {
		for ei := wg.UnitStart; ei < wg.UnitEnd; ei++ {
			event := r.Events[ei]
			var groupSum uint64
			for _, index := range wg.Indices {
				groupSum += uint64(bitword.PopCount(event.Buffer[index]))
			}
			event.numOneBits.Add(groupSum)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, event := range r.Events {
		event.finalize(totalBits)
	}
	return nil
}
