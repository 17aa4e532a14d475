package helpers

import (
	"fmt"

	"github.com/tidwall/gjson"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/swap"
	"github.com/krazyTry/liquidity-book-go/u128"
)

// LoadBins deposits the bins described by
//
//	{"bins": [{"id": 8388608, "x": "1000", "y": "0"}, ...]}
//
// into state. Amounts are base 10 strings so they can exceed 2^53.
func LoadBins(state *swap.PairState, data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidPresetJSON
	}
	bins := gjson.GetBytes(data, "bins")
	if !bins.IsArray() {
		return fmt.Errorf("%w: missing bins array", ErrInvalidPresetJSON)
	}

	for i, b := range bins.Array() {
		id := b.Get("id")
		if id.Type != gjson.Number || id.Uint() > shared.MaxBinId {
			return fmt.Errorf("%w: bins[%d].id", ErrInvalidPresetJSON, i)
		}
		x, err := parseAmount(b.Get("x"))
		if err != nil {
			return fmt.Errorf("bins[%d].x: %w", i, err)
		}
		y, err := parseAmount(b.Get("y"))
		if err != nil {
			return fmt.Errorf("bins[%d].y: %w", i, err)
		}
		if err := state.DepositToBin(uint32(id.Uint()), packed.Encode(x, y)); err != nil {
			return fmt.Errorf("bins[%d]: %w", i, err)
		}
	}
	return nil
}

func parseAmount(v gjson.Result) (uint128.Uint128, error) {
	if !v.Exists() {
		return uint128.Zero, nil
	}
	return u128.Parse(v.String())
}
