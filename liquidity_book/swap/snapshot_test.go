package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := newPair(t, feeStatic(), map[uint32]packed.Uint128Pair{
		activeId:     packed.Encode(u(1_000_000), u(1_000_000)),
		activeId - 1: packed.EncodeSecond(u(1_000_000)),
		activeId + 7: packed.EncodeFirst(u(42)),
	})
	require.NoError(t, s.IncreaseOracleLength(3))
	_, err := NewEngine().Swap(s, u(1_200_000), true, 1000)
	require.NoError(t, err)

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	var restored PairState
	require.NoError(t, restored.UnmarshalBinary(data))

	assert.Equal(t, s.BinStep, restored.BinStep)
	assert.Equal(t, s.Parameters, restored.Parameters)
	assert.Equal(t, s.Bins, restored.Bins)
	assert.Equal(t, s.Reserves, restored.Reserves)
	assert.Equal(t, s.ProtocolFees, restored.ProtocolFees)
	assert.Equal(t, s.Tree.Ids(), restored.Tree.Ids())
	assert.Equal(t, s.Oracle.Words(), restored.Oracle.Words())

	again, err := restored.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	// the restored pair keeps trading like the original
	a, err := NewEngine().GetSwapOut(s, u(1000), false, 2000)
	require.NoError(t, err)
	b, err := NewEngine().GetSwapOut(&restored, u(1000), false, 2000)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUnmarshalBinaryRejectsGarbage(t *testing.T) {
	var s PairState
	assert.Error(t, s.UnmarshalBinary([]byte{1, 2, 3}))
}
