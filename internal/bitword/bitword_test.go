package bitword_test

import (
	"testing"

	"github.com/luxfi/canopy/internal/bitword"
	"github.com/stretchr/testify/require"
)

func TestWidth(t *testing.T) {
	require.Equal(t, 8, bitword.Width[uint8]())
	require.Equal(t, 64, bitword.Width[uint64]())
}

func TestAllOnes(t *testing.T) {
	require.Equal(t, uint8(0xFF), bitword.AllOnes[uint8]())
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), bitword.AllOnes[uint64]())
}

func TestBit(t *testing.T) {
	var w uint8 = 0b0000_0101
	require.True(t, bitword.Bit(w, 0))
	require.False(t, bitword.Bit(w, 1))
	require.True(t, bitword.Bit(w, 2))
	require.False(t, bitword.Bit(w, 7))
}

func TestPopCount(t *testing.T) {
	require.Equal(t, 0, bitword.PopCount(uint8(0)))
	require.Equal(t, 8, bitword.PopCount(bitword.AllOnes[uint8]()))
	require.Equal(t, 64, bitword.PopCount(bitword.AllOnes[uint64]()))
	require.Equal(t, 3, bitword.PopCount(uint64(0b1011)))
}
