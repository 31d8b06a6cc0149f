package accel

import "math"

// SampleShape is the batch_size x bitpacks_per_batch sample grid: every
// kernel buffer is indexed batch_id*BitpacksPerBatch + bitpack_id.
type SampleShape struct {
	BatchSize        int
	BitpacksPerBatch int
}

// NumBitpacks is the flattened (batch, bitpack) extent.
func (s SampleShape) NumBitpacks() int { return s.BatchSize * s.BitpacksPerBatch }

// Each invokes f once per flattened (batch, bitpack) index in [0, NumBitpacks()).
func (s SampleShape) Each(f func(index int)) {
	n := s.NumBitpacks()
	for i := 0; i < n; i++ {
		f(i)
	}
}

// LocalRange is the work-group shape along the three ND-range axes: events
// (or tallies), batch, bitpacks.
type LocalRange struct {
	Events   int
	Batch    int
	Bitpacks int
}

func (l LocalRange) product() int { return l.Events * l.Batch * l.Bitpacks }

// NDRange is a rounded-up global extent plus the local work-group shape
// used to reach it.
type NDRange struct {
	Global [3]int
	Local  [3]int
}

// Planner is the Working-Set Planner: given a Device's capabilities and a
// requested sample shape, it derives a concrete local/global dispatch plan.
type Planner struct {
	device           Device
	desiredOccupancy int
}

// NewPlanner builds a Planner for device. A desiredOccupancy <= 0 falls
// back to the device-class heuristic from DefaultDesiredOccupancy.
func NewPlanner(device Device, desiredOccupancy int) *Planner {
	if device == nil {
		device = NewHostDevice()
	}
	if desiredOccupancy <= 0 {
		desiredOccupancy = DefaultDesiredOccupancy(device)
	}
	return &Planner{device: device, desiredOccupancy: desiredOccupancy}
}

// DefaultDesiredOccupancy estimates a reasonable total work-item count for
// device when the caller does not specify one, following the reference
// planner's per-backend heuristics: CPU-class backends scale down from a
// baseline tuned for 128 hardware threads, GPU-class backends target a
// fixed large occupancy.
func DefaultDesiredOccupancy(device Device) int {
	if device.IsCPU() {
		threads := 128
		if hd, ok := device.(*HostDevice); ok {
			threads = hd.ComputeUnits()
		}
		if threads < 1 {
			threads = 1
		}
		return int(6400.0 * math.Pow(128.0/float64(threads), 4.0/3.0))
	}
	return 204800
}

// Device returns the planner's device.
func (p *Planner) Device() Device { return p.device }

// DesiredOccupancy is the total work-item count target this planner was
// constructed with.
func (p *Planner) DesiredOccupancy() int { return p.desiredOccupancy }

// Workers is the goroutine fan-out the planner recommends for a single
// dispatch, standing in for the device's compute-unit count.
func (p *Planner) Workers() int {
	if hd, ok := p.device.(*HostDevice); ok {
		return hd.ComputeUnits()
	}
	return 1
}

// RoundSampleShape rounds a requested shape up to the nearest power of two
// in each dimension, the alignment the reference planner expects callers to
// have already applied before requesting a dispatch plan.
func (p *Planner) RoundSampleShape(s SampleShape) SampleShape {
	return SampleShape{
		BatchSize:        nextPow2(maxInt(1, s.BatchSize)),
		BitpacksPerBatch: nextPow2(maxInt(1, s.BitpacksPerBatch)),
	}
}

// LocalRange chooses the work-group shape for a dispatch over numUnits
// (events or gates) x shape. wordWidthBytes is sizeof(bitpack_t) for the
// Word instantiation this dispatch packs samples into (1 for uint8, 8 for
// uint64). CPU-class devices force the events and batch dimensions to 1 and
// set the bitpack dimension to 8/wordWidthBytes, so that one work-item
// processes exactly one 64-bit word's worth of samples regardless of W —
// there is no benefit to a wider SIMD-style local range over plain
// goroutines on a CPU-class backend, matching how the reference planner
// special-cases CPU backends.
func (p *Planner) LocalRange(numUnits int, shape SampleShape, wordWidthBytes int) LocalRange {
	if p.device.IsCPU() {
		if wordWidthBytes < 1 {
			wordWidthBytes = 1
		}
		bitpacks := maxInt(1, 8/wordWidthBytes)
		return LocalRange{Events: 1, Batch: 1, Bitpacks: minInt(bitpacks, maxInt(1, shape.BitpacksPerBatch))}
	}

	hw := p.device.MaxWorkItemSizes()
	budget := log2Floor(p.device.MaxWorkGroupSize())
	dims := [3]int{numUnits, shape.BatchSize, shape.BitpacksPerBatch}
	var local [3]int
	for i := 0; i < 3; i++ {
		cap := minInt(pow2Floor(maxInt(1, dims[i])), pow2Floor(maxInt(1, hw[i])))
		spend := minInt(log2Floor(cap), budget)
		local[i] = 1 << uint(spend)
		budget -= spend
	}
	return LocalRange{Events: local[0], Batch: local[1], Bitpacks: local[2]}
}

// Plan returns the local range and the rounded-up ND-range for a dispatch
// over numUnits x shape, for a Word instantiation wordWidthBytes bytes wide.
func (p *Planner) Plan(numUnits int, shape SampleShape, wordWidthBytes int) (LocalRange, NDRange) {
	local := p.LocalRange(numUnits, shape, wordWidthBytes)
	if local.product() > p.device.MaxWorkGroupSize() {
		panic("accel: planned work-group size exceeds device limit")
	}
	global := [3]int{
		roundUp(numUnits, local.Events),
		roundUp(shape.BatchSize, local.Batch),
		roundUp(shape.BitpacksPerBatch, local.Bitpacks),
	}
	return local, NDRange{Global: global, Local: [3]int{local.Events, local.Batch, local.Bitpacks}}
}

// PlanTally is Plan specialized for the tally kernel, which requires
// exactly one work-group per tally node along the events axis so that the
// node's running statistics are only ever finalized once every work-group
// contributing to its accumulator has completed (see tally.Reducer and
// SPEC_FULL.md §4.5, open question 3).
func (p *Planner) PlanTally(numTallies int, shape SampleShape, wordWidthBytes int) (LocalRange, NDRange) {
	local, nd := p.Plan(numTallies, shape, wordWidthBytes)
	local.Events = 1
	nd.Local[0] = 1
	nd.Global[0] = roundUp(numTallies, 1)
	return local, nd
}

func roundUp(x, mult int) int {
	if mult <= 0 {
		return x
	}
	return (x+mult-1)/mult*mult
}

func log2Floor(n int) int {
	if n < 1 {
		return 0
	}
	b := 0
	for n > 1 {
		n >>= 1
		b++
	}
	return b
}

func pow2Floor(n int) int {
	if n < 1 {
		return 1
	}
	return 1 << uint(log2Floor(n))
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
