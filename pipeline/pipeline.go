// Package pipeline implements the Execution Queue (C6): it plans a PDAG
// into waves, builds one kernel per wave (a sample generator for that
// wave's basic events, one gate kernel per connective present), and drives
// them through repeated Tally calls.
package pipeline

import (
	"context"
	"fmt"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/internal/bitword"
	"github.com/luxfi/canopy/internal/gate"
	"github.com/luxfi/canopy/internal/layer"
	"github.com/luxfi/canopy/internal/sampler"
	"github.com/luxfi/canopy/internal/tally"
	"github.com/luxfi/canopy/pdag"
	"github.com/sirupsen/logrus"
)

// Pipeline drives one Monte Carlo evaluation of a PDAG for a fixed Word
// width W (the bit-pack type: uint8 or uint64).
type Pipeline[W bitword.Word] struct {
	shape      accel.SampleShape
	planner    *accel.Planner
	wordBytes  int
	workers    int
	logger     logrus.FieldLogger
	queueables []Queueable
	tallies    map[int]*tally.Event[W]
}

// New plans g and builds the kernel pipeline for it. A model-consistency
// error from layer.Plan (unsupported connective, duplicate index, unknown
// argument, or a cycle) is logged and returned; it is fatal to this
// Pipeline instance, not to the process.
func New[W bitword.Word](g pdag.Graph, opts Options) (*Pipeline[W], error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	waves, err := layer.Plan(g)
	if err != nil {
		logger.WithError(err).Error("pipeline: failed to plan graph into waves")
		return nil, err
	}

	planner := accel.NewPlanner(opts.Device, opts.DesiredOccupancy)
	shape := planner.RoundSampleShape(accel.SampleShape{
		BatchSize:        opts.BatchSize,
		BitpacksPerBatch: opts.BitpacksPerBatch,
	})
	workers := planner.Workers()

	logger.WithFields(logrus.Fields{
		"device":             planner.Device().Name(),
		"waves":              len(waves),
		"batch_size":         shape.BatchSize,
		"bitpacks_per_batch": shape.BitpacksPerBatch,
		"workers":            workers,
	}).Info("pipeline: planned pdag")

	p := &Pipeline[W]{shape: shape, planner: planner, wordBytes: bitword.Width[W]() / 8, workers: workers, logger: logger}

	basicEvents := g.BasicEvents()
	buffers := make(map[int]bitword.Buffer[W])

	for waveIdx, wave := range waves {
		if len(wave.Variables) > 0 {
			if err := p.addSampleWave(waveIdx, wave.Variables, basicEvents, buffers); err != nil {
				return nil, err
			}
		}
		for _, conn := range wave.Connectives {
			if err := p.addGateWave(waveIdx, conn, wave.Gates[conn], buffers); err != nil {
				return nil, err
			}
		}
	}

	p.tallies = make(map[int]*tally.Event[W])
	if len(waves) > 0 {
		last := waves[len(waves)-1]
		nodes := append(append([]pdag.Node{}, last.Variables...), flattenGates(last)...)
		events := make([]*tally.Event[W], 0, len(nodes))
		for _, n := range nodes {
			ev := tally.NewEvent(n.Index(), buffers[n.Index()])
			events = append(events, ev)
			p.tallies[n.Index()] = ev
		}
		local, _ := planner.PlanTally(len(events), shape, p.wordBytes)
		reducer := &tally.Reducer[W]{Events: events, Shape: shape, Local: local}
		p.queueables = append(p.queueables, newIterable("tally", func(ctx context.Context, iteration uint64) error {
			return reducer.Run(ctx, iteration, p.workers)
		}))
	}

	return p, nil
}

func flattenGates(w layer.Wave) []pdag.Node {
	var out []pdag.Node
	for _, conn := range w.Connectives {
		out = append(out, w.Gates[conn]...)
	}
	return out
}

func (p *Pipeline[W]) addSampleWave(waveIdx int, variables []pdag.Node, basicEvents map[int]pdag.BasicEventRef, buffers map[int]bitword.Buffer[W]) error {
	events := make([]*sampler.BasicEvent[W], len(variables))
	for i, v := range variables {
		ref, ok := basicEvents[v.Index()]
		if !ok {
			return fmt.Errorf("pipeline: variable node %d has no matching basic event", v.Index())
		}
		buf := make(bitword.Buffer[W], p.shape.NumBitpacks())
		buffers[v.Index()] = buf
		events[i] = &sampler.BasicEvent[W]{Index: v.Index(), Probability: ref.Probability(), Buffer: buf}
	}
	local := p.planner.LocalRange(len(events), p.shape, p.wordBytes)
	k := &sampler.Kernel[W]{Events: events, Shape: p.shape, Local: local}
	name := fmt.Sprintf("wave[%d]:sample", waveIdx)
	p.queueables = append(p.queueables, newIterable(name, func(ctx context.Context, iteration uint64) error {
		return k.Run(ctx, uint32(iteration), p.workers)
	}))
	return nil
}

func (p *Pipeline[W]) addGateWave(waveIdx int, conn pdag.Connective, nodes []pdag.Node, buffers map[int]bitword.Buffer[W]) error {
	name := fmt.Sprintf("wave[%d]:%s", waveIdx, conn)
	shape, workers := p.shape, p.workers
	local := p.planner.LocalRange(len(nodes), shape, p.wordBytes)

	if conn == pdag.Not || conn == pdag.Null {
		gates := make([]*gate.Gate[W], len(nodes))
		for i, n := range nodes {
			if len(n.Args()) != 1 {
				return fmt.Errorf("pipeline: %s gate %d must have exactly one argument", conn, n.Index())
			}
			arg := n.Args()[0]
			out := make(bitword.Buffer[W], shape.NumBitpacks())
			buffers[n.Index()] = out

			// The connective itself complements the argument for Not, on
			// top of whatever the argument's own Negated flag says; Null
			// never complements.
			effectiveNegate := arg.Negated
			if conn == pdag.Not {
				effectiveNegate = !effectiveNegate
			}
			offset := 1
			if effectiveNegate {
				offset = 0
			}
			gates[i] = &gate.Gate[W]{Index: n.Index(), Inputs: []bitword.Buffer[W]{buffers[arg.Node.Index()]}, NegatedInputsOffset: offset, Output: out}
		}
		runner := gate.RunNull[W]
		if conn == pdag.Not {
			runner = gate.RunNot[W]
		}
		p.queueables = append(p.queueables, newSingleShot(name, func(ctx context.Context) error {
			return runner(ctx, gates, shape, local, workers)
		}))
		return nil
	}

	if conn == pdag.Atleast {
		gates := make([]*gate.AtLeastGate[W], len(nodes))
		for i, n := range nodes {
			out := make(bitword.Buffer[W], shape.NumBitpacks())
			buffers[n.Index()] = out
			inputs, offset := partitionArgs(n.Args(), buffers)
			gates[i] = &gate.AtLeastGate[W]{
				Gate: gate.Gate[W]{Index: n.Index(), Inputs: inputs, NegatedInputsOffset: offset, Output: out},
				K:    n.MinNumber(),
			}
		}
		p.queueables = append(p.queueables, newSingleShot(name, func(ctx context.Context) error {
			return gate.RunAtLeast(ctx, gates, shape, local, workers)
		}))
		return nil
	}

	var runner func(context.Context, []*gate.Gate[W], accel.SampleShape, accel.LocalRange, int) error
	switch conn {
	case pdag.And:
		runner = gate.RunAnd[W]
	case pdag.Or:
		runner = gate.RunOr[W]
	case pdag.Xor:
		runner = gate.RunXor[W]
	case pdag.Nand:
		runner = gate.RunNand[W]
	case pdag.Nor:
		runner = gate.RunNor[W]
	default:
		return fmt.Errorf("pipeline: unsupported connective %s", conn)
	}

	gates := make([]*gate.Gate[W], len(nodes))
	for i, n := range nodes {
		out := make(bitword.Buffer[W], shape.NumBitpacks())
		buffers[n.Index()] = out
		inputs, offset := partitionArgs(n.Args(), buffers)
		gates[i] = &gate.Gate[W]{Index: n.Index(), Inputs: inputs, NegatedInputsOffset: offset, Output: out}
	}
	p.queueables = append(p.queueables, newSingleShot(name, func(ctx context.Context) error {
		return runner(ctx, gates, shape, local, workers)
	}))
	return nil
}

// partitionArgs splits args into positive inputs followed by negated
// inputs, resolving each argument to its predecessor's already-built
// buffer (guaranteed present: a gate's arguments all belong to strictly
// earlier waves).
func partitionArgs[W bitword.Word](args []pdag.Arg, buffers map[int]bitword.Buffer[W]) ([]bitword.Buffer[W], int) {
	var positive, negated []bitword.Buffer[W]
	for _, a := range args {
		if a.Negated {
			negated = append(negated, buffers[a.Node.Index()])
		} else {
			positive = append(positive, buffers[a.Node.Index()])
		}
	}
	return append(positive, negated...), len(positive)
}

// Tally submits count iterations and returns the resulting snapshot for
// index. An index outside the final wave (the only nodes a tally record is
// ever built for, mirroring the reference pipeline) is a logic error: it is
// logged and a zero Snapshot is returned, with a nil error, since no device
// resource was ever at fault.
func (p *Pipeline[W]) Tally(ctx context.Context, index int, count int) (tally.Snapshot, error) {
	ev, ok := p.tallies[index]
	if !ok {
		p.logger.WithField("index", index).Warn("pipeline: unable to tally probability for unknown event")
		return tally.Snapshot{}, nil
	}

	for i := 0; i < count; i++ {
		if err := p.submitAll(ctx); err != nil {
			p.logger.WithError(err).Error("pipeline: iteration failed")
			return ev.Snapshot(), err
		}
	}
	return ev.Snapshot(), nil
}

func (p *Pipeline[W]) submitAll(ctx context.Context) error {
	for _, q := range p.queueables {
		if err := q.Submit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shape returns the pipeline's rounded sample shape.
func (p *Pipeline[W]) Shape() accel.SampleShape { return p.shape }
