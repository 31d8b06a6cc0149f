package accel_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/stretchr/testify/require"
)

func TestRoundSampleShapeRoundsUpToPowerOfTwo(t *testing.T) {
	p := accel.NewPlanner(accel.NewHostDevice(), 0)
	got := p.RoundSampleShape(accel.SampleShape{BatchSize: 5, BitpacksPerBatch: 9})
	require.Equal(t, accel.SampleShape{BatchSize: 8, BitpacksPerBatch: 16}, got)
}

func TestHostDeviceForcesTrivialEventsLocalRange(t *testing.T) {
	p := accel.NewPlanner(accel.NewHostDevice(), 0)
	local := p.LocalRange(64, accel.SampleShape{BatchSize: 16, BitpacksPerBatch: 32}, 8)
	require.Equal(t, 1, local.Events)
	require.Equal(t, 1, local.Batch)
}

func TestHostDeviceLocalRangeBitpacksScalesWithWordWidth(t *testing.T) {
	p := accel.NewPlanner(accel.NewHostDevice(), 0)
	shape := accel.SampleShape{BatchSize: 16, BitpacksPerBatch: 32}

	wide := p.LocalRange(64, shape, 8)
	require.Equal(t, 1, wide.Bitpacks, "uint64 bitpacks: 8/8 == 1")

	narrow := p.LocalRange(64, shape, 1)
	require.Equal(t, 8, narrow.Bitpacks, "uint8 bitpacks: 8/1 == 8")
}

func TestPlanTallyForcesSingleEventsGroup(t *testing.T) {
	p := accel.NewPlanner(accel.NewHostDevice(), 0)
	local, nd := p.PlanTally(37, accel.SampleShape{BatchSize: 8, BitpacksPerBatch: 8}, 8)
	require.Equal(t, 1, local.Events)
	require.Equal(t, 1, nd.Local[0])
	require.GreaterOrEqual(t, nd.Global[0], 37)
}

func TestDispatchRunsEveryUnitExactlyOnce(t *testing.T) {
	var seen [100]atomic.Bool
	err := accel.Dispatch(context.Background(), 100, 8, func(_ context.Context, unit int) error {
		seen[unit].Store(true)
		return nil
	})
	require.NoError(t, err)
	for i, s := range seen {
		require.Truef(t, s.Load(), "unit %d not dispatched", i)
	}
}

func TestDispatchPropagatesError(t *testing.T) {
	sentinel := context.Canceled
	err := accel.Dispatch(context.Background(), 10, 4, func(_ context.Context, unit int) error {
		if unit == 5 {
			return sentinel
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel)
}
