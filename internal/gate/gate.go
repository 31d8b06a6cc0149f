// Package gate implements the Boolean gate kernels (C4): AND, OR, NOT,
// NAND, NOR, XOR, NULL and K-of-N (Atleast), each folding a gate's input
// buffers, bit by bit, into its output buffer.
package gate

import (
	"context"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/internal/bitword"
)

// Gate is one gate node: its positive inputs (indices
// [0, NegatedInputsOffset)), its negated inputs (the remainder), and its
// output buffer.
type Gate[W bitword.Word] struct {
	Index               int
	Inputs              []bitword.Buffer[W]
	NegatedInputsOffset int
	Output              bitword.Buffer[W]
}

// op is the per-connective fold: Identity seeds the accumulator, Fold
// combines it with one (possibly complemented) input word, and PostInvert
// reports whether the final accumulator should be complemented (NAND/NOR).
type op[W bitword.Word] interface {
	Identity() W
	Fold(acc, val W) W
	PostInvert() bool
}

// run dispatches one goroutine per work-group of the planner's local range
// over gates x shape: each work-group owns a disjoint (gate range, index
// range) slice of the iteration space, matching the Working-Set Planner's
// ND-range rather than looping the whole shape inside one goroutine per gate.
func run[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int, o op[W]) error {
	return accel.Dispatch3D(ctx, len(gates), shape, local, workers, func(_ context.Context, wg accel.WorkGroup) error {
		for gi := wg.UnitStart; gi < wg.UnitEnd; gi++ {
			g := gates[gi]
			for _, index := range wg.Indices {
				acc := o.Identity()
				for i := 0; i < g.NegatedInputsOffset; i++ {
					acc = o.Fold(acc, g.Inputs[i][index])
				}
				for i := g.NegatedInputsOffset; i < len(g.Inputs); i++ {
					acc = o.Fold(acc, ^g.Inputs[i][index])
				}
				if o.PostInvert() {
					acc = ^acc
				}
				g.Output[index] = acc
			}
		}
		return nil
	})
}

type andOp[W bitword.Word] struct{}

func (andOp[W]) Identity() W       { return bitword.AllOnes[W]() }
func (andOp[W]) Fold(acc, val W) W { return acc & val }
func (andOp[W]) PostInvert() bool  { return false }

type orOp[W bitword.Word] struct{}

func (orOp[W]) Identity() W       { return W(0) }
func (orOp[W]) Fold(acc, val W) W { return acc | val }
func (orOp[W]) PostInvert() bool  { return false }

type xorOp[W bitword.Word] struct{}

func (xorOp[W]) Identity() W       { return W(0) }
func (xorOp[W]) Fold(acc, val W) W { return acc ^ val }
func (xorOp[W]) PostInvert() bool  { return false }

type nandOp[W bitword.Word] struct{ andOp[W] }

func (nandOp[W]) PostInvert() bool { return true }

type norOp[W bitword.Word] struct{ orOp[W] }

func (norOp[W]) PostInvert() bool { return true }

// passOp implements NOT and NULL: a single-input gate whose output is its
// (possibly complemented) input, copied through unchanged.
type passOp[W bitword.Word] struct{}

func (passOp[W]) Identity() W      { return W(0) }
func (passOp[W]) Fold(_, val W) W  { return val }
func (passOp[W]) PostInvert() bool { return false }

// RunAnd evaluates a wave of AND gates.
func RunAnd[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, andOp[W]{})
}

// RunOr evaluates a wave of OR gates.
func RunOr[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, orOp[W]{})
}

// RunXor evaluates a wave of XOR gates.
func RunXor[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, xorOp[W]{})
}

// RunNand evaluates a wave of NAND gates.
func RunNand[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, nandOp[W]{})
}

// RunNor evaluates a wave of NOR gates.
func RunNor[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, norOp[W]{})
}

// RunNot evaluates a wave of NOT gates (single input). It applies no
// complement of its own: the input is complemented only when the gate's
// NegatedInputsOffset is 0, which is how the pipeline builds NOT gates.
func RunNot[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, passOp[W]{})
}

// RunNull evaluates a wave of NULL gates (single input): each gate's input
// is copied into its own output buffer, complemented when the gate's
// NegatedInputsOffset is 0.
func RunNull[W bitword.Word](ctx context.Context, gates []*Gate[W], shape accel.SampleShape, local accel.LocalRange, workers int) error {
	return run(ctx, gates, shape, local, workers, passOp[W]{})
}
