package liquiditybook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/helpers"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/swap"
)

func TestQuoteAndSwap(t *testing.T) {
	presets, err := LoadPresets([]byte(helpers.DefaultPresets))
	require.NoError(t, err)

	pair, err := NewPairStateFromPreset(presets[10], 1<<23)
	require.NoError(t, err)
	require.NoError(t, LoadBins(pair, []byte(`{"bins": [
		{"id": 8388606, "y": "1000000000"},
		{"id": 8388607, "y": "1000000000"},
		{"id": 8388608, "x": "1000000000", "y": "1000000000"},
		{"id": 8388609, "x": "1000000000"}
	]}`)))

	engine := NewEngine(swap.WithMaxBinsPerSwap(10))
	quote, err := engine.GetSwapOut(pair, uint128.From64(1_500_000_000), true, 1_700_000_000)
	require.NoError(t, err)

	result, err := engine.Swap(pair, uint128.From64(1_500_000_000), true, 1_700_000_000)
	require.NoError(t, err)
	assert.Equal(t, quote, result)
	assert.Equal(t, swap.StateDone, result.State)
	assert.Equal(t, uint32(8388607), pair.ActiveId())

	p, err := GetPriceFromId(pair.ActiveId(), pair.BinStep)
	require.NoError(t, err)
	id, err := GetIdFromPrice(p, pair.BinStep)
	require.NoError(t, err)
	assert.Equal(t, pair.ActiveId(), id)
}
