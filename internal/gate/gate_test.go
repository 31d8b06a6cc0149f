package gate_test

import (
	"context"
	"testing"

	"github.com/luxfi/canopy/internal/accel"
	"github.com/luxfi/canopy/internal/bitword"
	"github.com/luxfi/canopy/internal/gate"
	"github.com/stretchr/testify/require"
)

var shape = accel.SampleShape{BatchSize: 1, BitpacksPerBatch: 1}
var local = accel.LocalRange{Events: 1, Batch: 1, Bitpacks: 1}

func buf(v uint8) bitword.Buffer[uint8] { return bitword.Buffer[uint8]{v} }

func TestRunAnd(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0b1100), buf(0b1010)},
		NegatedInputsOffset: 2,
		Output:              out,
	}}
	require.NoError(t, gate.RunAnd(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0b1000), out[0])
}

func TestRunOr(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0b1100), buf(0b0010)},
		NegatedInputsOffset: 2,
		Output:              out,
	}}
	require.NoError(t, gate.RunOr(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0b1110), out[0])
}

func TestRunXor(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0b1100), buf(0b1010)},
		NegatedInputsOffset: 2,
		Output:              out,
	}}
	require.NoError(t, gate.RunXor(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0b0110), out[0])
}

func TestRunNand(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0xFF), buf(0xFF)},
		NegatedInputsOffset: 2,
		Output:              out,
	}}
	require.NoError(t, gate.RunNand(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0), out[0])
}

func TestRunNor(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0), buf(0)},
		NegatedInputsOffset: 2,
		Output:              out,
	}}
	require.NoError(t, gate.RunNor(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0xFF), out[0])
}

func TestRunNotNegatesInput(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0b1010)},
		NegatedInputsOffset: 0,
		Output:              out,
	}}
	require.NoError(t, gate.RunNot(context.Background(), g, shape, local, 1))
	require.Equal(t, ^uint8(0b1010), out[0])
}

func TestRunNullPassesInputThrough(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.Gate[uint8]{{
		Inputs:              []bitword.Buffer[uint8]{buf(0b1010)},
		NegatedInputsOffset: 1,
		Output:              out,
	}}
	require.NoError(t, gate.RunNull(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0b1010), out[0])
}

func TestRunAtLeastMatchesOrAtK1(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.AtLeastGate[uint8]{{
		Gate: gate.Gate[uint8]{
			Inputs:              []bitword.Buffer[uint8]{buf(0b1100), buf(0b0010)},
			NegatedInputsOffset: 2,
			Output:              out,
		},
		K: 1,
	}}
	require.NoError(t, gate.RunAtLeast(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0b1110), out[0])
}

func TestRunAtLeastMatchesAndAtKEqualsN(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.AtLeastGate[uint8]{{
		Gate: gate.Gate[uint8]{
			Inputs:              []bitword.Buffer[uint8]{buf(0b1100), buf(0b1010)},
			NegatedInputsOffset: 2,
			Output:              out,
		},
		K: 2,
	}}
	require.NoError(t, gate.RunAtLeast(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0b1000), out[0])
}

func TestRunAtLeastKZeroIsAllOnes(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.AtLeastGate[uint8]{{
		Gate: gate.Gate[uint8]{
			Inputs:              []bitword.Buffer[uint8]{buf(0), buf(0)},
			NegatedInputsOffset: 2,
			Output:              out,
		},
		K: 0,
	}}
	require.NoError(t, gate.RunAtLeast(context.Background(), g, shape, local, 1))
	require.Equal(t, bitword.AllOnes[uint8](), out[0])
}

func TestRunAtLeastKExceedsNIsAllZero(t *testing.T) {
	out := make(bitword.Buffer[uint8], 1)
	g := []*gate.AtLeastGate[uint8]{{
		Gate: gate.Gate[uint8]{
			Inputs:              []bitword.Buffer[uint8]{buf(0xFF), buf(0xFF)},
			NegatedInputsOffset: 2,
			Output:              out,
		},
		K: 3,
	}}
	require.NoError(t, gate.RunAtLeast(context.Background(), g, shape, local, 1))
	require.Equal(t, uint8(0), out[0])
}
