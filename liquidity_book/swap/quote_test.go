package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
)

func TestGetSwapIn(t *testing.T) {
	bins := map[uint32]packed.Uint128Pair{
		activeId: packed.Encode(u(1000), u(1000)),
	}

	tests := []struct {
		name        string
		amountOut   uint64
		swapForY    bool
		wantIn      uint64
		wantOutLeft uint64
		wantFee     uint64
	}{
		// 500 plus ceil(500 * f / (1e18 - f))
		{"inside the bin", 500, true, 501, 0, 1},
		{"inside the bin for x", 500, false, 501, 0, 1},
		{"more than available", 5000, true, 1002, 4000, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newPair(t, feeStatic(), bins)
			quote, err := NewEngine().GetSwapIn(s, u(tt.amountOut), tt.swapForY, 1000)
			require.NoError(t, err)
			assert.Equal(t, u(tt.wantIn), quote.AmountIn)
			assert.Equal(t, u(tt.wantOutLeft), quote.AmountOutLeft)
			assert.Equal(t, u(tt.wantFee), quote.Fee)
		})
	}
}

func TestGetSwapInIsEnoughForSwap(t *testing.T) {
	s := newPair(t, feeStatic(), map[uint32]packed.Uint128Pair{
		activeId:     packed.Encode(u(1_000_000), u(1_000_000)),
		activeId - 1: packed.EncodeSecond(u(1_000_000)),
	})
	engine := NewEngine()

	quote, err := engine.GetSwapIn(s, u(1_500_000), true, 1000)
	require.NoError(t, err)
	require.True(t, quote.AmountOutLeft.IsZero())

	res, err := engine.GetSwapOut(s, quote.AmountIn, true, 1000)
	require.NoError(t, err)
	// per bin rounding may cost a unit of output
	assert.InDelta(t, 1_500_000, res.AmountOut.Big().Uint64(), 2)
	assert.True(t, res.AmountInLeft.IsZero())
}
