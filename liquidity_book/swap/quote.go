package swap

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/fee"
	lbmath "github.com/krazyTry/liquidity-book-go/liquidity_book/math"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/price"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

// SwapInQuote is the input needed to receive a given output.
type SwapInQuote struct {
	AmountIn      uint128.Uint128
	AmountOutLeft uint128.Uint128
	Fee           uint128.Uint128
}

// GetSwapIn returns the input, fees included, needed to receive amountOut.
// AmountOutLeft is non-zero when the pair cannot provide amountOut.
func (e *Engine) GetSwapIn(state *PairState, amountOut uint128.Uint128, swapForY bool, now uint64) (SwapInQuote, error) {
	params := state.Parameters
	if err := params.UpdateReferences(now); err != nil {
		return SwapInQuote{}, err
	}

	amountIn := new(uint256.Int)
	totalFee := new(uint256.Int)
	amountOutLeft := amountOut
	id := params.ActiveId()

	for visited := 1; ; visited++ {
		reserve := state.GetBin(id).DecodeAlt(!swapForY)
		if !reserve.IsZero() {
			p, err := price.GetPriceFromId(id, state.BinStep)
			if err != nil {
				return SwapInQuote{}, err
			}
			outOfBin := lbmath.Min128(reserve, amountOutLeft)

			if err := params.UpdateVolatilityAccumulator(id); err != nil {
				return SwapInQuote{}, err
			}

			var inWithoutFee *uint256.Int
			if swapForY {
				inWithoutFee, err = lbmath.ShiftDivRoundUp(lbmath.FromUint128(outOfBin), shared.ScaleOffset, p)
			} else {
				inWithoutFee, err = lbmath.MulShiftRoundUp(lbmath.FromUint128(outOfBin), p, shared.ScaleOffset)
			}
			if err != nil {
				return SwapInQuote{}, err
			}
			in128, err := lbmath.ToUint128(inWithoutFee)
			if err != nil {
				return SwapInQuote{}, err
			}
			feeAmount, err := fee.GetFeeAmount(in128, params.GetTotalFee(state.BinStep))
			if err != nil {
				return SwapInQuote{}, err
			}

			amountIn.Add(amountIn, inWithoutFee)
			amountIn.Add(amountIn, lbmath.FromUint128(feeAmount))
			totalFee.Add(totalFee, lbmath.FromUint128(feeAmount))
			amountOutLeft = amountOutLeft.Sub(outOfBin)
		}

		if amountOutLeft.IsZero() || visited >= e.maxBinsPerSwap {
			break
		}
		next, ok := state.NextNonEmptyBin(swapForY, id)
		if !ok {
			break
		}
		id = next
	}

	in, err := lbmath.ToUint128(amountIn)
	if err != nil {
		return SwapInQuote{}, err
	}
	feeTotal, err := lbmath.ToUint128(totalFee)
	if err != nil {
		return SwapInQuote{}, err
	}
	return SwapInQuote{AmountIn: in, AmountOutLeft: amountOutLeft, Fee: feeTotal}, nil
}
