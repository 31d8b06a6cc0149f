package pipeline

import "context"

// Queueable is one schedulable unit of a pipeline iteration: either a
// single-shot kernel (the gate kernels, recomputed fresh every iteration
// from that iteration's sampled inputs) or an iterable kernel (the sample
// generator and the tally reducer, which both need to know how many times
// they have already run). Submission order across a Pipeline's queueables
// already encodes the wave dependency graph — every queueable for wave N
// is appended after every queueable for wave N-1 — so Submit itself needs
// no dependency bookkeeping beyond that program order.
type Queueable interface {
	Submit(ctx context.Context) error
}

type singleShot struct {
	name   string
	kernel func(ctx context.Context) error
}

func newSingleShot(name string, kernel func(ctx context.Context) error) *singleShot {
	return &singleShot{name: name, kernel: kernel}
}

func (s *singleShot) Submit(ctx context.Context) error { return s.kernel(ctx) }

type iterable struct {
	name      string
	iteration uint64
	kernel    func(ctx context.Context, iteration uint64) error
}

func newIterable(name string, kernel func(ctx context.Context, iteration uint64) error) *iterable {
	return &iterable{name: name, kernel: kernel}
}

func (it *iterable) Submit(ctx context.Context) error {
	it.iteration++
	return it.kernel(ctx, it.iteration)
}
