package liquiditybook

import (
	"github.com/krazyTry/liquidity-book-go/liquidity_book/helpers"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/price"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/swap"
)

// NewEngine creates a swap engine.
//
// Example:
//
// engine := NewEngine(swap.WithLogger(logger), swap.WithMaxBinsPerSwap(50))
//
// result, _ := engine.Swap(pair, amountIn, true, uint64(time.Now().Unix()))
//
// quote, _ := engine.GetSwapOut(pair, amountIn, true, uint64(time.Now().Unix()))
var NewEngine = swap.NewEngine

// NewPairState creates an empty pair.
//
// Example:
//
// pair, _ := NewPairState(25, staticFeeParameters, 1<<23)
//
// pair.DepositToBin(1<<23, packed.Encode(amountX, amountY))
var NewPairState = swap.NewPairState

// NewPairStateFromPreset creates an empty pair from a preset.
//
// Example:
//
// presets := helpers.MustDefaultPresets()
//
// pair, _ := NewPairStateFromPreset(presets[25], 1<<23)
var NewPairStateFromPreset = helpers.NewPairState

// LoadPresets parses a JSON preset table.
var LoadPresets = helpers.LoadPresets

// LoadBins seeds a pair with the bins of a JSON document.
var LoadBins = helpers.LoadBins

// GetPriceFromId returns the 128.128 price of a bin.
var GetPriceFromId = price.GetPriceFromId

// GetIdFromPrice returns the highest bin priced at or below a 128.128 price.
var GetIdFromPrice = price.GetIdFromPrice
